package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/iliyamo/laundry-pass-booking/internal/model"
	"github.com/iliyamo/laundry-pass-booking/internal/repository"
	"github.com/iliyamo/laundry-pass-booking/internal/utils"
)

// UserService is the person/privilege directory: it resolves usernames
// to identities, registers accounts and performs the cascading deletion
// of a user and everything referencing it.
type UserService struct {
	DB         *sql.DB
	Log        *zap.Logger
	Persons    *repository.PersonRepo
	Tokens     *repository.TokenRepo
	Bookings   *repository.BookingRepo
	Locks      *repository.LockRepo
	BcryptCost int
}

// Registration carries the fields needed to create a person+account pair.
// Formats are validated at the HTTP boundary; the directory re-checks
// uniqueness against stored data.
type Registration struct {
	FirstName      string
	LastName       string
	PersonalNumber string
	Email          string
	Username       string
	Password       string
}

// Login verifies credentials and returns the identity with its
// privilege. Unknown usernames and wrong passwords are the same
// LoginFailure; nothing leaks which half was wrong.
func (s *UserService) Login(ctx context.Context, username, password string) (model.PersonInfo, model.UserStatus, error) {
	info, err := s.Persons.GetByUsername(ctx, username)
	if err == sql.ErrNoRows {
		return model.PersonInfo{}, model.UserLoginFailure, nil
	}
	if err != nil {
		s.Log.Error("user: login lookup", zap.String("username", username), zap.Error(err))
		return model.PersonInfo{}, 0, err
	}
	if info.Privilege == model.PrivilegeInvalid || !utils.VerifyPassword(info.PasswordHash, password) {
		return model.PersonInfo{}, model.UserLoginFailure, nil
	}
	return info, model.UserOK, nil
}

// RegisterResident creates a standard-privilege person+account. Only an
// administrator may issue it; email and username conflicts map to their
// own statuses.
func (s *UserService) RegisterResident(ctx context.Context, issuer string, reg Registration) (model.PersonInfo, model.UserStatus, error) {
	var status model.UserStatus
	var created model.PersonInfo
	err := runTx(ctx, s.DB, func(tx *sql.Tx) error {
		issuerInfo, err := s.Persons.GetByUsernameTx(ctx, tx, issuer)
		if err == sql.ErrNoRows {
			status = model.UserInvalidUser
			return nil
		}
		if err != nil {
			return err
		}
		if issuerInfo.Privilege != model.PrivilegeAdministrator {
			status = model.UserInvalidPrivilege
			return nil
		}
		created, status, err = s.register(ctx, tx, reg, model.PrivilegeStandard)
		return err
	})
	if err != nil {
		s.Log.Error("user: register resident",
			zap.String("issuer", issuer), zap.String("username", reg.Username), zap.Error(err))
		return model.PersonInfo{}, 0, err
	}
	return created, status, nil
}

// RegisterAdministrator creates an administrator account. It is the
// bootstrap path and takes no issuer; the HTTP layer decides who may
// reach it.
func (s *UserService) RegisterAdministrator(ctx context.Context, reg Registration) (model.PersonInfo, model.UserStatus, error) {
	var status model.UserStatus
	var created model.PersonInfo
	err := runTx(ctx, s.DB, func(tx *sql.Tx) error {
		var err error
		created, status, err = s.register(ctx, tx, reg, model.PrivilegeAdministrator)
		return err
	})
	if err != nil {
		s.Log.Error("user: register administrator", zap.String("username", reg.Username), zap.Error(err))
		return model.PersonInfo{}, 0, err
	}
	return created, status, nil
}

// register checks uniqueness, hashes the password and inserts the
// person+account pair inside the caller's transaction.
func (s *UserService) register(ctx context.Context, tx *sql.Tx, reg Registration, priv model.Privilege) (model.PersonInfo, model.UserStatus, error) {
	exists, err := s.Persons.EmailExistsTx(ctx, tx, reg.Email)
	if err != nil {
		return model.PersonInfo{}, 0, err
	}
	if exists {
		return model.PersonInfo{}, model.UserExistentEmail, nil
	}
	exists, err = s.Persons.UsernameExistsTx(ctx, tx, reg.Username)
	if err != nil {
		return model.PersonInfo{}, 0, err
	}
	if exists {
		return model.PersonInfo{}, model.UserExistentUsername, nil
	}

	hash, err := utils.HashPassword(reg.Password, s.BcryptCost)
	if err != nil {
		return model.PersonInfo{}, 0, err
	}
	p := model.Person{
		FirstName:      reg.FirstName,
		LastName:       reg.LastName,
		PersonalNumber: reg.PersonalNumber,
		Email:          reg.Email,
		Privilege:      priv,
	}
	accountID, err := s.Persons.CreateTx(ctx, tx, &p, reg.Username, hash)
	if err == repository.ErrEmailExists {
		return model.PersonInfo{}, model.UserExistentEmail, nil
	}
	if err == repository.ErrUsernameExists {
		return model.PersonInfo{}, model.UserExistentUsername, nil
	}
	if err != nil {
		return model.PersonInfo{}, 0, err
	}
	return model.PersonInfo{
		PersonID:       p.ID,
		AccountID:      accountID,
		Username:       reg.Username,
		FirstName:      reg.FirstName,
		LastName:       reg.LastName,
		PersonalNumber: reg.PersonalNumber,
		Email:          reg.Email,
		Privilege:      priv,
	}, model.UserOK, nil
}

// ListUsers returns every resident. Administrator privilege is required.
func (s *UserService) ListUsers(ctx context.Context, issuer string) ([]model.PersonInfo, model.UserStatus, error) {
	info, err := s.Persons.GetByUsername(ctx, issuer)
	if err == sql.ErrNoRows {
		return nil, model.UserInvalidUser, nil
	}
	if err != nil {
		s.Log.Error("user: list issuer lookup", zap.String("issuer", issuer), zap.Error(err))
		return nil, 0, err
	}
	if info.Privilege != model.PrivilegeAdministrator {
		return nil, model.UserInvalidPrivilege, nil
	}
	residents, err := s.Persons.ListResidents(ctx)
	if err != nil {
		s.Log.Error("user: list residents", zap.Error(err))
		return nil, 0, err
	}
	return residents, model.UserOK, nil
}

// DeleteUser removes the target and everything referencing it: locks and
// bookings first, then refresh tokens, then the account, then the
// person. The order matters: the later rows are referenced by the
// earlier ones and must not dangle.
func (s *UserService) DeleteUser(ctx context.Context, issuer, target string) (bool, error) {
	deleted := false
	err := runTx(ctx, s.DB, func(tx *sql.Tx) error {
		issuerInfo, err := s.Persons.GetByUsernameTx(ctx, tx, issuer)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		if issuerInfo.Privilege != model.PrivilegeAdministrator {
			return nil
		}

		targetInfo, err := s.Persons.GetByUsernameTx(ctx, tx, target)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}

		if err := s.Locks.DeleteByAccountTx(ctx, tx, targetInfo.AccountID); err != nil {
			return err
		}
		if err := s.Bookings.DeleteByAccountTx(ctx, tx, targetInfo.AccountID); err != nil {
			return err
		}
		if err := s.Tokens.DeleteByAccountTx(ctx, tx, targetInfo.AccountID); err != nil {
			return err
		}
		if err := s.Persons.DeleteTx(ctx, tx, targetInfo.AccountID, targetInfo.PersonID); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		s.Log.Error("user: delete failed",
			zap.String("issuer", issuer), zap.String("target", target), zap.Error(err))
		return false, err
	}
	return deleted, nil
}
