package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/laundry-pass-booking/internal/model"
	"github.com/iliyamo/laundry-pass-booking/internal/repository"
)

// LockService grants and revokes short-lived exclusive holds on slot
// cells. An account holds at most one live lock system-wide; acquiring a
// new one silently releases the previous hold.
type LockService struct {
	DB                  *sql.DB
	Log                 *zap.Logger
	Persons             *repository.PersonRepo
	Slots               *repository.SlotRepo
	Bookings            *repository.BookingRepo
	Locks               *repository.LockRepo
	LockDuration        time.Duration
	ActivePassesAllowed int
}

// Lock tries to acquire a hold on one slot cell. It returns false on any
// business-rule rejection and a non-nil error only on infrastructure
// failure; callers must be able to tell "no" from "broken".
func (s *LockService) Lock(ctx context.Context, username string, req model.PassRequest) (bool, error) {
	now := time.Now().UTC()
	granted := false
	err := runTx(ctx, s.DB, func(tx *sql.Tx) error {
		info, err := s.Persons.GetByUsernameTx(ctx, tx, username)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}

		slot, err := s.Slots.GetByCellTx(ctx, tx, req.Room, req.TimeRange)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}

		// A lock on an already-elapsed same-day range is meaningless.
		if rangeElapsed(now, req.Date, slot.EndHour) {
			return nil
		}

		booked, err := s.Bookings.ExistsForCellTx(ctx, tx, slot.ID, req.Date)
		if err != nil {
			return err
		}
		if booked {
			return nil
		}

		// Any live lock on the cell rejects: a foreign holder keeps its
		// exclusivity, and re-locking one's own cell requires an unlock first.
		_, live, err := s.Locks.LiveForCellTx(ctx, tx, slot.ID, req.Date, now.Add(-s.LockDuration))
		if err != nil {
			return err
		}
		if live {
			return nil
		}

		active, err := s.Bookings.CountActiveTx(ctx, tx, info.AccountID, midnight(now), slot.EndHour)
		if err != nil {
			return err
		}
		if active >= s.ActivePassesAllowed {
			return nil
		}

		// One lock per account: drop any hold elsewhere, then take this cell.
		if err := s.Locks.DeleteByAccountTx(ctx, tx, info.AccountID); err != nil {
			return err
		}
		if err := s.Locks.CreateTx(ctx, tx, slot.ID, info.AccountID, req.Date, now); err != nil {
			return err
		}
		granted = true
		return nil
	})
	if err != nil {
		s.Log.Error("lock: acquire failed",
			zap.String("username", username), zap.Int("room", req.Room),
			zap.String("time_range", req.TimeRange), zap.Error(err))
		return false, err
	}
	return granted, nil
}

// Unlock releases any lock held by the account. Deleting zero rows is
// still success; only unknown users and infrastructure failures are not.
func (s *LockService) Unlock(ctx context.Context, username string) (bool, error) {
	released := false
	err := runTx(ctx, s.DB, func(tx *sql.Tx) error {
		info, err := s.Persons.GetByUsernameTx(ctx, tx, username)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.Locks.DeleteByAccountTx(ctx, tx, info.AccountID); err != nil {
			return err
		}
		released = true
		return nil
	})
	if err != nil {
		s.Log.Error("lock: release failed", zap.String("username", username), zap.Error(err))
		return false, err
	}
	return released, nil
}
