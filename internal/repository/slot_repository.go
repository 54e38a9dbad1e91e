package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/laundry-pass-booking/internal/model"
)

// SlotRepo reads the static pass slot configuration. The rows are seeded
// by migration and never written at runtime.
type SlotRepo struct{ DB *sql.DB }

func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{DB: db} }

// AllTx returns every configured slot ordered by room then start hour,
// the order the canonical weekly grid is built in. An empty result
// signals misconfiguration and is passed upward untouched.
func (r *SlotRepo) AllTx(ctx context.Context, tx *sql.Tx) ([]model.PassSlot, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, room, time_range, start_hour, end_hour
		 FROM pass_slots ORDER BY room, start_hour`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var slots []model.PassSlot
	for rows.Next() {
		var s model.PassSlot
		if err := rows.Scan(&s.ID, &s.Room, &s.TimeRange, &s.StartHour, &s.EndHour); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// GetByCellTx resolves a (room, time range) pair to its configured slot
// inside a transaction. sql.ErrNoRows means the cell is not part of the
// schedule.
func (r *SlotRepo) GetByCellTx(ctx context.Context, tx *sql.Tx, room int, timeRange string) (model.PassSlot, error) {
	var s model.PassSlot
	err := tx.QueryRowContext(ctx,
		`SELECT id, room, time_range, start_hour, end_hour
		 FROM pass_slots WHERE room = ? AND time_range = ? LIMIT 1`,
		room, timeRange).Scan(&s.ID, &s.Room, &s.TimeRange, &s.StartHour, &s.EndHour)
	return s, err
}
