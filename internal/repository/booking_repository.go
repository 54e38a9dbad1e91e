package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/laundry-pass-booking/internal/model"
)

// BookingRepo provides data access to the bookings table. All dates are
// midnight UTC so DATE column comparisons are exact.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

// BookingDetail is a booking joined with its slot, as echoed to clients.
type BookingDetail struct {
	ID        uint64
	Reference string
	AccountID uint64
	Room      int
	TimeRange string
	Date      time.Time
}

// ScheduleRow is one booked or locked cell as consumed by the slot state
// resolver when overlaying a weekly grid.
type ScheduleRow struct {
	Room      int
	TimeRange string
	Date      time.Time
	AccountID uint64
	Username  string
}

// ExistsForCellTx reports whether the slot cell already has a committed
// booking.
func (r *BookingRepo) ExistsForCellTx(ctx context.Context, tx *sql.Tx, slotID uint64, date time.Time) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE slot_id = ? AND pass_date = ?`,
		slotID, date).Scan(&n)
	return n > 0, err
}

// GetForCellTx returns the booking occupying a cell, or sql.ErrNoRows.
func (r *BookingRepo) GetForCellTx(ctx context.Context, tx *sql.Tx, slotID uint64, date time.Time) (BookingDetail, error) {
	var d BookingDetail
	err := tx.QueryRowContext(ctx,
		`SELECT b.id, b.reference, b.account_id, s.room, s.time_range, b.pass_date
		 FROM bookings b JOIN pass_slots s ON s.id = b.slot_id
		 WHERE b.slot_id = ? AND b.pass_date = ? LIMIT 1`,
		slotID, date).Scan(&d.ID, &d.Reference, &d.AccountID, &d.Room, &d.TimeRange, &d.Date)
	return d, err
}

// CreateTx inserts a booking. A duplicate-key error on the
// (pass_date, slot_id) constraint is mapped to ErrDuplicateBooking so
// the allocator can translate the lost race into a BookedPass status.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (reference, slot_id, account_id, pass_date) VALUES (?,?,?,?)`,
		b.Reference, b.SlotID, b.AccountID, b.Date)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateBooking
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// CountActiveTx counts the account's bookings that are still ahead of the
// quota window: dated today or later, for ranges ending no earlier than
// endHour. Quota checks for both locking and booking share this count.
func (r *BookingRepo) CountActiveTx(ctx context.Context, tx *sql.Tx, accountID uint64, today time.Time, endHour int) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM bookings b JOIN pass_slots s ON s.id = b.slot_id
		 WHERE b.account_id = ? AND b.pass_date >= ? AND s.end_hour >= ?`,
		accountID, today, endHour).Scan(&n)
	return n, err
}

// CountInMonthTx counts the account's bookings within the calendar month
// of the given date.
func (r *BookingRepo) CountInMonthTx(ctx context.Context, tx *sql.Tx, accountID uint64, date time.Time) (int, error) {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE account_id = ? AND pass_date >= ? AND pass_date < ?`,
		accountID, first, next).Scan(&n)
	return n, err
}

// ActiveForAccount returns the account's earliest booking whose range has
// not yet elapsed: a future date, or today with an end hour still ahead
// of the current hour. sql.ErrNoRows means no active booking.
func (r *BookingRepo) ActiveForAccount(ctx context.Context, accountID uint64, now time.Time) (BookingDetail, error) {
	today := midnight(now)
	var d BookingDetail
	err := r.DB.QueryRowContext(ctx,
		`SELECT b.id, b.reference, b.account_id, s.room, s.time_range, b.pass_date
		 FROM bookings b JOIN pass_slots s ON s.id = b.slot_id
		 WHERE b.account_id = ? AND (b.pass_date > ? OR (b.pass_date = ? AND s.end_hour >= ?))
		 ORDER BY b.pass_date, s.start_hour LIMIT 1`,
		accountID, today, today, now.UTC().Hour()).Scan(
		&d.ID, &d.Reference, &d.AccountID, &d.Room, &d.TimeRange, &d.Date)
	return d, err
}

// DeleteTx removes a single booking by id.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, bookingID)
	return err
}

// DeleteByAccountTx removes every booking owned by the account. Used by
// the cascading user deletion.
func (r *BookingRepo) DeleteByAccountTx(ctx context.Context, tx *sql.Tx, accountID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE account_id = ?`, accountID)
	return err
}

// ListRangeTx returns every booking whose date falls in [from, to],
// joined with slot and username, for schedule overlays. It runs inside
// the view's transaction so the booking and lock reads see one snapshot.
func (r *BookingRepo) ListRangeTx(ctx context.Context, tx *sql.Tx, from, to time.Time) ([]ScheduleRow, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT s.room, s.time_range, b.pass_date, b.account_id, a.username
		 FROM bookings b
		 JOIN pass_slots s ON s.id = b.slot_id
		 JOIN accounts a ON a.id = b.account_id
		 WHERE b.pass_date BETWEEN ? AND ?`,
		from, to)
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

func midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
