package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/laundry-pass-booking/internal/model"
)

// PersonRepo resolves usernames to identity records and manages the
// person+account pair. It is the gate every privileged operation passes
// through first.
type PersonRepo struct{ DB *sql.DB }

func NewPersonRepo(db *sql.DB) *PersonRepo { return &PersonRepo{DB: db} }

const personInfoColumns = `p.id, a.id, a.username, p.first_name, p.last_name,
       p.personal_number, p.email, p.privilege, a.password_hash`

// GetByUsername returns the joined person+account record for a username,
// or sql.ErrNoRows when the username is unknown. Callers treat the
// missing row as an Invalid-user business status, never as an
// infrastructure error.
func (r *PersonRepo) GetByUsername(ctx context.Context, username string) (model.PersonInfo, error) {
	return scanPersonInfo(r.DB.QueryRowContext(ctx,
		`SELECT `+personInfoColumns+`
		 FROM accounts a JOIN persons p ON p.id = a.person_id
		 WHERE a.username = ? LIMIT 1`, username))
}

// GetByUsernameTx is GetByUsername inside an existing transaction.
func (r *PersonRepo) GetByUsernameTx(ctx context.Context, tx *sql.Tx, username string) (model.PersonInfo, error) {
	return scanPersonInfo(tx.QueryRowContext(ctx,
		`SELECT `+personInfoColumns+`
		 FROM accounts a JOIN persons p ON p.id = a.person_id
		 WHERE a.username = ? LIMIT 1`, username))
}

// GetByAccountID resolves an account ID back to the joined record. The
// refresh flow uses it to reissue access tokens from a stored token row.
func (r *PersonRepo) GetByAccountID(ctx context.Context, accountID uint64) (model.PersonInfo, error) {
	return scanPersonInfo(r.DB.QueryRowContext(ctx,
		`SELECT `+personInfoColumns+`
		 FROM accounts a JOIN persons p ON p.id = a.person_id
		 WHERE a.id = ? LIMIT 1`, accountID))
}

type rowScanner interface{ Scan(dest ...any) error }

func scanPersonInfo(row rowScanner) (model.PersonInfo, error) {
	var info model.PersonInfo
	var priv uint8
	err := row.Scan(&info.PersonID, &info.AccountID, &info.Username,
		&info.FirstName, &info.LastName, &info.PersonalNumber,
		&info.Email, &priv, &info.PasswordHash)
	info.Privilege = model.Privilege(priv)
	return info, err
}

// EmailExistsTx reports whether any person already uses the email.
func (r *PersonRepo) EmailExistsTx(ctx context.Context, tx *sql.Tx, email string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM persons WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))).Scan(&n)
	return n > 0, err
}

// UsernameExistsTx reports whether any account already uses the username.
func (r *PersonRepo) UsernameExistsTx(ctx context.Context, tx *sql.Tx, username string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE username = ?`, username).Scan(&n)
	return n > 0, err
}

// CreateTx inserts a person and its account atomically within the given
// transaction. Duplicate-key races that slip past the existence checks
// are mapped to the matching sentinel error.
func (r *PersonRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Person, username, passwordHash string) (accountID uint64, err error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO persons (first_name, last_name, personal_number, email, privilege) VALUES (?,?,?,?,?)`,
		p.FirstName, p.LastName, p.PersonalNumber,
		strings.ToLower(strings.TrimSpace(p.Email)), uint8(p.Privilege))
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	pid, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	p.ID = uint64(pid)

	res, err = tx.ExecContext(ctx,
		`INSERT INTO accounts (person_id, username, password_hash) VALUES (?,?,?)`,
		p.ID, username, passwordHash)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	aid, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(aid), nil
}

// ListResidents returns every standard-privilege person with its account,
// ordered by username for deterministic output.
func (r *PersonRepo) ListResidents(ctx context.Context) ([]model.PersonInfo, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+personInfoColumns+`
		 FROM accounts a JOIN persons p ON p.id = a.person_id
		 WHERE p.privilege = ?
		 ORDER BY a.username`, uint8(model.PrivilegeStandard))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.PersonInfo
	for rows.Next() {
		info, err := scanPersonInfo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteTx removes the account and then the person. Bookings, locks and
// refresh tokens referencing the account must already be gone; the
// foreign keys enforce the ordering the cascade relies on.
func (r *PersonRepo) DeleteTx(ctx context.Context, tx *sql.Tx, accountID, personID uint64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, accountID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM persons WHERE id = ?`, personID)
	return err
}
