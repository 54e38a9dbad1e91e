package model

import (
	"errors"
	"time"
)

// DateLayout is the wire format for pass dates.
const DateLayout = "2006-01-02"

// Booking mirrors the `bookings` table: a permanent reservation of one
// slot cell by one account. At most one booking exists per
// (pass_date, slot_id); the table carries a uniqueness constraint so a
// concurrent double insert surfaces as a duplicate-key error instead of
// a silent race.
type Booking struct {
	ID        uint64    // bookings.id
	Reference string    // bookings.reference (uuid echoed to clients)
	SlotID    uint64    // bookings.slot_id
	AccountID uint64    // bookings.account_id
	Date      time.Time // bookings.pass_date (midnight UTC)
	CreatedAt time.Time // bookings.created_at
}

// PassLock mirrors the `pass_locks` table: a short, single-holder hold
// on one slot cell. Liveness is never persisted or computed here; the
// repository's cutoff comparison on locked_at is the one place that
// decides whether a row still holds its cell.
type PassLock struct {
	ID        uint64    // pass_locks.id
	SlotID    uint64    // pass_locks.slot_id
	AccountID uint64    // pass_locks.account_id
	Date      time.Time // pass_locks.pass_date
	LockedAt  time.Time // pass_locks.locked_at
}

// PassRequest identifies one slot cell as addressed by clients. All core
// operations on a single cell take one of these.
type PassRequest struct {
	Room      int
	Date      time.Time
	TimeRange string
}

var errBadPassRequest = errors.New("pass request needs a positive room, a date and an HH-HH range")

// NewPassRequest validates and normalizes a cell address. The date is
// truncated to midnight UTC so equality against stored DATE columns is
// exact regardless of the caller's clock.
func NewPassRequest(room int, date time.Time, timeRange string) (PassRequest, error) {
	if room <= 0 || date.IsZero() || !ValidTimeRange(timeRange) {
		return PassRequest{}, errBadPassRequest
	}
	y, m, d := date.UTC().Date()
	return PassRequest{
		Room:      room,
		Date:      time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		TimeRange: timeRange,
	}, nil
}

// BookingResult is the echo returned by the booking allocator. Reference,
// Room, Date and TimeRange are only populated when Status is
// BookingOK (or, for lookups, when a booking was found).
type BookingResult struct {
	Status    BookingStatus `json:"status"`
	Reference string        `json:"reference,omitempty"`
	Room      int           `json:"room,omitempty"`
	Date      string        `json:"date,omitempty"`
	TimeRange string        `json:"time_range,omitempty"`
}
