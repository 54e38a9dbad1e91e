package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/laundry-pass-booking/internal/model"
	"github.com/iliyamo/laundry-pass-booking/internal/repository"
)

// BookingService is the allocator: it validates and commits permanent
// reservations, enforcing the date window, quotas and mutual exclusion
// with locks and other bookings.
type BookingService struct {
	DB                  *sql.DB
	Log                 *zap.Logger
	Persons             *repository.PersonRepo
	Slots               *repository.SlotRepo
	Bookings            *repository.BookingRepo
	Locks               *repository.LockRepo
	LockDuration        time.Duration
	ActivePassesAllowed int
	MonthPassesAllowed  int
}

// Book validates the request in a fixed order, each failure mapping to
// its own status, and commits the booking only after every check passes.
// The caller's own lock on the cell is cleared in the same transaction.
func (s *BookingService) Book(ctx context.Context, username string, req model.PassRequest) (model.BookingResult, error) {
	now := time.Now().UTC()
	result := model.BookingResult{Status: model.BookingInvalidDate}

	if !withinBookingWindow(now, req.Date) {
		return result, nil
	}

	err := runTx(ctx, s.DB, func(tx *sql.Tx) error {
		info, err := s.Persons.GetByUsernameTx(ctx, tx, username)
		if err == sql.ErrNoRows {
			result.Status = model.BookingInvalidUser
			return nil
		}
		if err != nil {
			return err
		}

		slot, err := s.Slots.GetByCellTx(ctx, tx, req.Room, req.TimeRange)
		if err == sql.ErrNoRows {
			result.Status = model.BookingInvalidPassInfo
			return nil
		}
		if err != nil {
			return err
		}
		if rangeElapsed(now, req.Date, slot.EndHour) {
			result.Status = model.BookingInvalidPassInfo
			return nil
		}

		booked, err := s.Bookings.ExistsForCellTx(ctx, tx, slot.ID, req.Date)
		if err != nil {
			return err
		}
		if booked {
			result.Status = model.BookingBookedPass
			return nil
		}

		// A live lock held by someone else blocks the cell; confirming
		// one's own hold proceeds.
		lock, live, err := s.Locks.LiveForCellTx(ctx, tx, slot.ID, req.Date, now.Add(-s.LockDuration))
		if err != nil {
			return err
		}
		if live && lock.AccountID != info.AccountID {
			result.Status = model.BookingLockedPass
			return nil
		}

		active, err := s.Bookings.CountActiveTx(ctx, tx, info.AccountID, midnight(now), slot.EndHour)
		if err != nil {
			return err
		}
		if active >= s.ActivePassesAllowed {
			result.Status = model.BookingExistentActivePass
			return nil
		}

		monthly, err := s.Bookings.CountInMonthTx(ctx, tx, info.AccountID, req.Date)
		if err != nil {
			return err
		}
		if monthly >= s.MonthPassesAllowed {
			result.Status = model.BookingPassCountExceeded
			return nil
		}

		b := model.Booking{
			Reference: uuid.NewString(),
			SlotID:    slot.ID,
			AccountID: info.AccountID,
			Date:      req.Date,
		}
		if err := s.Bookings.CreateTx(ctx, tx, &b); err != nil {
			// Lost the insert race: the uniqueness constraint turned it
			// into a duplicate key, which is just a late BookedPass.
			if err == repository.ErrDuplicateBooking {
				result.Status = model.BookingBookedPass
				return nil
			}
			return err
		}
		if err := s.Locks.DeleteForCellByAccountTx(ctx, tx, slot.ID, info.AccountID, req.Date); err != nil {
			return err
		}

		result = model.BookingResult{
			Status:    model.BookingOK,
			Reference: b.Reference,
			Room:      req.Room,
			Date:      req.Date.Format(model.DateLayout),
			TimeRange: req.TimeRange,
		}
		return nil
	})
	if err != nil {
		s.Log.Error("booking: commit failed",
			zap.String("username", username), zap.Int("room", req.Room),
			zap.String("date", req.Date.Format(model.DateLayout)),
			zap.String("time_range", req.TimeRange), zap.Error(err))
		return model.BookingResult{}, err
	}
	return result, nil
}

// ActivePass returns the caller's active booking (date not past, range
// not yet elapsed), or NoBooking.
func (s *BookingService) ActivePass(ctx context.Context, username string) (model.BookingResult, error) {
	info, err := s.Persons.GetByUsername(ctx, username)
	if err == sql.ErrNoRows {
		return model.BookingResult{Status: model.BookingInvalidUser}, nil
	}
	if err != nil {
		s.Log.Error("booking: resolve user", zap.String("username", username), zap.Error(err))
		return model.BookingResult{}, err
	}

	d, err := s.Bookings.ActiveForAccount(ctx, info.AccountID, time.Now().UTC())
	if err == sql.ErrNoRows {
		return model.BookingResult{Status: model.BookingNoBooking}, nil
	}
	if err != nil {
		s.Log.Error("booking: active lookup", zap.String("username", username), zap.Error(err))
		return model.BookingResult{}, err
	}
	return model.BookingResult{
		Status:    model.BookingOK,
		Reference: d.Reference,
		Room:      d.Room,
		Date:      d.Date.Format(model.DateLayout),
		TimeRange: d.TimeRange,
	}, nil
}

// Cancel deletes a booking when it exists, its date is not past, and the
// caller owns it or is an administrator. Any precondition failure is a
// plain false.
func (s *BookingService) Cancel(ctx context.Context, username string, req model.PassRequest) (bool, error) {
	now := time.Now().UTC()
	cancelled := false
	err := runTx(ctx, s.DB, func(tx *sql.Tx) error {
		info, err := s.Persons.GetByUsernameTx(ctx, tx, username)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		if req.Date.Before(midnight(now)) {
			return nil
		}

		slot, err := s.Slots.GetByCellTx(ctx, tx, req.Room, req.TimeRange)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}

		d, err := s.Bookings.GetForCellTx(ctx, tx, slot.ID, req.Date)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		if info.Privilege != model.PrivilegeAdministrator && d.AccountID != info.AccountID {
			return nil
		}

		if err := s.Bookings.DeleteTx(ctx, tx, d.ID); err != nil {
			return err
		}
		cancelled = true
		return nil
	})
	if err != nil {
		s.Log.Error("booking: cancel failed",
			zap.String("username", username), zap.Int("room", req.Room),
			zap.String("date", req.Date.Format(model.DateLayout)), zap.Error(err))
		return false, err
	}
	return cancelled, nil
}
