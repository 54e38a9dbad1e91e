package model

import "time"

// Slot cell statuses as rendered in schedule views. Stored nowhere;
// derived per request from bookings and live locks.
const (
	SlotAvailable   = "AVAILABLE"
	SlotTaken       = "TAKEN"
	SlotSelfBooking = "SELF_BOOKING"
)

// SlotState is one cell of a rendered weekly schedule. Occupant is only
// populated in administrator views; resident views are scrubbed.
type SlotState struct {
	TimeRange string `json:"time_range"`
	Status    string `json:"status"`
	Occupant  string `json:"occupant,omitempty"`
}

// DaySchedule holds the slot states of one room for one calendar day.
type DaySchedule struct {
	Date  string      `json:"date"`
	Slots []SlotState `json:"slots"`
}

// RoomSchedule holds the seven Monday-first days of one room.
type RoomSchedule struct {
	Room int           `json:"room"`
	Days []DaySchedule `json:"days"`
}

// WeekSchedule is the derived, read-only weekly grid: every configured
// room crossed with the seven days of the requested week.
type WeekSchedule struct {
	WeekStart string         `json:"week_start"`
	Rooms     []RoomSchedule `json:"rooms"`
}

// ScheduleResult pairs a grid with its operation status. Schedule is nil
// unless Status is ScheduleOK.
type ScheduleResult struct {
	Status   ScheduleStatus `json:"status"`
	Schedule *WeekSchedule  `json:"schedule,omitempty"`
}

// CellAt returns a pointer into the grid for the given room, date and
// range, or nil when the cell is not part of the canonical schedule.
// Overlay passes use it to mark booked and locked cells.
func (w *WeekSchedule) CellAt(room int, date time.Time, timeRange string) *SlotState {
	day := date.UTC().Format(DateLayout)
	for ri := range w.Rooms {
		if w.Rooms[ri].Room != room {
			continue
		}
		for di := range w.Rooms[ri].Days {
			if w.Rooms[ri].Days[di].Date != day {
				continue
			}
			for si := range w.Rooms[ri].Days[di].Slots {
				if w.Rooms[ri].Days[di].Slots[si].TimeRange == timeRange {
					return &w.Rooms[ri].Days[di].Slots[si]
				}
			}
		}
	}
	return nil
}
