// Package repository provides data access to the laundry booking schema.
// Sentinel errors let the service layer distinguish expected conflicts
// from infrastructure failures without parsing driver messages at every
// call site.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when a person insert collides on the unique
// email column.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when an account insert collides on the
// unique username column.
var ErrUsernameExists = errors.New("username already exists")

// ErrDuplicateBooking is returned when a booking insert loses the race on
// the (pass_date, slot_id) uniqueness constraint. The allocator maps it
// to a BookedPass rejection, turning the check-then-insert window into a
// storage-level guarantee.
var ErrDuplicateBooking = errors.New("slot cell already booked")

// isDuplicateKey reports whether err is a MySQL 1062 duplicate entry.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
