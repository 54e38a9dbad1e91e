package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/laundry-pass-booking/internal/model"
	"github.com/iliyamo/laundry-pass-booking/internal/repository"
)

// errNoSlotConfig surfaces a missing pass_slots configuration. It is an
// infrastructure failure, not a business rejection: the grid cannot be
// built at all.
var errNoSlotConfig = errors.New("no pass slots configured")

// ScheduleService resolves weekly schedule views: the canonical grid
// with bookings and live locks overlaid per request.
type ScheduleService struct {
	DB           *sql.DB
	Log          *zap.Logger
	Persons      *repository.PersonRepo
	Slots        *repository.SlotRepo
	Bookings     *repository.BookingRepo
	Locks        *repository.LockRepo
	LockDuration time.Duration
}

// AdminWeekPasses returns the full grid for any week relative to the
// current one, with occupant usernames attached to every taken cell.
// Administrator privilege is required.
func (s *ScheduleService) AdminWeekPasses(ctx context.Context, issuer string, relativeWeek int) (model.ScheduleResult, error) {
	info, err := s.Persons.GetByUsername(ctx, issuer)
	if err == sql.ErrNoRows {
		return model.ScheduleResult{Status: model.ScheduleInvalidUser}, nil
	}
	if err != nil {
		s.Log.Error("schedule: resolve issuer", zap.String("username", issuer), zap.Error(err))
		return model.ScheduleResult{}, err
	}
	if info.Privilege != model.PrivilegeAdministrator {
		return model.ScheduleResult{Status: model.ScheduleInvalidPrivilege}, nil
	}

	grid, err := s.weekView(ctx, relativeWeek, 0, true)
	if err != nil {
		s.Log.Error("schedule: build admin view", zap.Int("relative_week", relativeWeek), zap.Error(err))
		return model.ScheduleResult{}, err
	}
	return model.ScheduleResult{Status: model.ScheduleOK, Schedule: grid}, nil
}

// ResidentWeekPasses returns the grid for the previous, current or next
// week. The caller's own booking is marked SelfBooking; every occupant
// username is scrubbed so residents never learn who holds another slot.
func (s *ScheduleService) ResidentWeekPasses(ctx context.Context, username string, relativeWeek int) (model.ScheduleResult, error) {
	info, err := s.Persons.GetByUsername(ctx, username)
	if err == sql.ErrNoRows {
		return model.ScheduleResult{Status: model.ScheduleInvalidUser}, nil
	}
	if err != nil {
		s.Log.Error("schedule: resolve resident", zap.String("username", username), zap.Error(err))
		return model.ScheduleResult{}, err
	}
	if info.Privilege != model.PrivilegeStandard && info.Privilege != model.PrivilegeAdministrator {
		return model.ScheduleResult{Status: model.ScheduleInvalidPrivilege}, nil
	}
	if relativeWeek < -1 || relativeWeek > 1 {
		return model.ScheduleResult{Status: model.ScheduleInvalidWeek}, nil
	}

	grid, err := s.weekView(ctx, relativeWeek, info.AccountID, false)
	if err != nil {
		s.Log.Error("schedule: build resident view",
			zap.String("username", username), zap.Int("relative_week", relativeWeek), zap.Error(err))
		return model.ScheduleResult{}, err
	}
	return model.ScheduleResult{Status: model.ScheduleOK, Schedule: grid}, nil
}

// weekView builds the requested week's grid and overlays bookings first,
// then live locks, so a booking is never shadowed by a stale lock row.
// One `now` drives the week window, the lock cutoff and the today bound,
// and one transaction covers all three reads: a booking committing
// between them (which also deletes its lock) can never leave its cell
// looking Available in the response.
func (s *ScheduleService) weekView(ctx context.Context, relativeWeek int, selfAccountID uint64, exposeOccupants bool) (*model.WeekSchedule, error) {
	now := time.Now().UTC()
	weekStart := mondayOf(now).AddDate(0, 0, 7*relativeWeek)
	weekEnd := weekStart.AddDate(0, 0, 6)

	var grid *model.WeekSchedule
	err := runTx(ctx, s.DB, func(tx *sql.Tx) error {
		slots, err := s.Slots.AllTx(ctx, tx)
		if err != nil {
			return err
		}
		grid = buildWeekGrid(slots, weekStart)
		if grid == nil {
			return errNoSlotConfig
		}

		booked, err := s.Bookings.ListRangeTx(ctx, tx, weekStart, weekEnd)
		if err != nil {
			return err
		}
		overlayBookings(grid, booked, selfAccountID, exposeOccupants)

		locked, err := s.Locks.ListLiveFromTx(ctx, tx, midnight(now), now.Add(-s.LockDuration))
		if err != nil {
			return err
		}
		overlayLocks(grid, locked, exposeOccupants)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grid, nil
}
