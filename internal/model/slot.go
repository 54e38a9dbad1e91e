package model

import (
	"errors"
	"strconv"
)

// PassSlot is one statically configured (room, time range) cell of the
// weekly grid. The configuration is seeded by migration and never changes
// at runtime.
type PassSlot struct {
	ID        uint64 // pass_slots.id
	Room      int    // pass_slots.room
	TimeRange string // pass_slots.time_range ("HH-HH")
	StartHour int    // pass_slots.start_hour
	EndHour   int    // pass_slots.end_hour
}

var errBadTimeRange = errors.New("time range must be HH-HH with start < end")

// ParseTimeRange splits an "HH-HH" range into start and end hours. Both
// hours must be two digits, zero padded, within 0-24, start strictly
// before end.
func ParseTimeRange(s string) (start, end int, err error) {
	if len(s) != 5 || s[2] != '-' {
		return 0, 0, errBadTimeRange
	}
	start, err = strconv.Atoi(s[:2])
	if err != nil {
		return 0, 0, errBadTimeRange
	}
	end, err = strconv.Atoi(s[3:])
	if err != nil {
		return 0, 0, errBadTimeRange
	}
	if start < 0 || end > 24 || start >= end {
		return 0, 0, errBadTimeRange
	}
	return start, end, nil
}

// ValidTimeRange reports whether s is a well-formed "HH-HH" range.
func ValidTimeRange(s string) bool {
	_, _, err := ParseTimeRange(s)
	return err == nil
}
