package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/laundry-pass-booking/internal/model"
)

// LockRepo provides data access to the pass_locks table. Lock rows are
// never swept; liveness is a derived property computed against a cutoff
// (now minus the lock duration) at read time.
type LockRepo struct{ DB *sql.DB }

func NewLockRepo(db *sql.DB) *LockRepo { return &LockRepo{DB: db} }

// LiveForCellTx returns the live lock on a slot cell, if any. A row is
// live when locked_at is after the cutoff. Stale rows for the same cell
// are ignored, not deleted.
func (r *LockRepo) LiveForCellTx(ctx context.Context, tx *sql.Tx, slotID uint64, date, cutoff time.Time) (model.PassLock, bool, error) {
	var l model.PassLock
	err := tx.QueryRowContext(ctx,
		`SELECT id, slot_id, account_id, pass_date, locked_at
		 FROM pass_locks
		 WHERE slot_id = ? AND pass_date = ? AND locked_at > ?
		 ORDER BY locked_at DESC LIMIT 1`,
		slotID, date, cutoff).Scan(&l.ID, &l.SlotID, &l.AccountID, &l.Date, &l.LockedAt)
	if err == sql.ErrNoRows {
		return model.PassLock{}, false, nil
	}
	if err != nil {
		return model.PassLock{}, false, err
	}
	return l, true, nil
}

// CreateTx inserts a new lock row with the given acquisition time.
func (r *LockRepo) CreateTx(ctx context.Context, tx *sql.Tx, slotID, accountID uint64, date, lockedAt time.Time) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO pass_locks (slot_id, account_id, pass_date, locked_at) VALUES (?,?,?,?)`,
		slotID, accountID, date, lockedAt)
	return err
}

// DeleteByAccountTx removes every lock row owned by the account. Both
// the single-lock-per-account migration on acquire and the idempotent
// unlock use it; deleting zero rows is success.
func (r *LockRepo) DeleteByAccountTx(ctx context.Context, tx *sql.Tx, accountID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM pass_locks WHERE account_id = ?`, accountID)
	return err
}

// DeleteForCellByAccountTx removes the account's lock rows on one cell.
// The allocator clears the caller's own hold this way after a booking
// commits.
func (r *LockRepo) DeleteForCellByAccountTx(ctx context.Context, tx *sql.Tx, slotID, accountID uint64, date time.Time) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM pass_locks WHERE slot_id = ? AND account_id = ? AND pass_date = ?`,
		slotID, accountID, date)
	return err
}

// ListLiveFromTx returns every live lock dated from the given day
// onward, joined with slot and username, for schedule overlays. It runs
// inside the view's transaction alongside the booking read.
func (r *LockRepo) ListLiveFromTx(ctx context.Context, tx *sql.Tx, from, cutoff time.Time) ([]ScheduleRow, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT s.room, s.time_range, l.pass_date, l.account_id, a.username
		 FROM pass_locks l
		 JOIN pass_slots s ON s.id = l.slot_id
		 JOIN accounts a ON a.id = l.account_id
		 WHERE l.pass_date >= ? AND l.locked_at > ?`,
		from, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ScheduleRow
	for rows.Next() {
		var row ScheduleRow
		if err := rows.Scan(&row.Room, &row.TimeRange, &row.Date, &row.AccountID, &row.Username); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
