package service

import (
	"time"

	"github.com/iliyamo/laundry-pass-booking/internal/model"
	"github.com/iliyamo/laundry-pass-booking/internal/repository"
)

// buildWeekGrid constructs the canonical empty weekly schedule from the
// static slot configuration: every configured room crossed with the
// seven Monday-first days starting at weekStart, each day holding one
// Available cell per configured range. Slots must be ordered by room
// then start hour. A nil grid is returned when no slots are configured.
func buildWeekGrid(slots []model.PassSlot, weekStart time.Time) *model.WeekSchedule {
	if len(slots) == 0 {
		return nil
	}
	byRoom := make(map[int][]model.PassSlot)
	var roomOrder []int
	for _, s := range slots {
		if _, seen := byRoom[s.Room]; !seen {
			roomOrder = append(roomOrder, s.Room)
		}
		byRoom[s.Room] = append(byRoom[s.Room], s)
	}

	grid := &model.WeekSchedule{WeekStart: weekStart.Format(model.DateLayout)}
	for _, room := range roomOrder {
		rs := model.RoomSchedule{Room: room}
		for day := 0; day < 7; day++ {
			ds := model.DaySchedule{Date: weekStart.AddDate(0, 0, day).Format(model.DateLayout)}
			for _, s := range byRoom[room] {
				ds.Slots = append(ds.Slots, model.SlotState{
					TimeRange: s.TimeRange,
					Status:    model.SlotAvailable,
				})
			}
			rs.Days = append(rs.Days, ds)
		}
		grid.Rooms = append(grid.Rooms, rs)
	}
	return grid
}

// overlayBookings marks booked cells Taken. When selfAccountID is
// non-zero, that account's bookings are marked SelfBooking instead.
// Occupant usernames are attached only when exposeOccupants is set
// (administrator views); resident views stay scrubbed.
func overlayBookings(grid *model.WeekSchedule, rows []repository.ScheduleRow, selfAccountID uint64, exposeOccupants bool) {
	for _, row := range rows {
		cell := grid.CellAt(row.Room, row.Date, row.TimeRange)
		if cell == nil {
			continue
		}
		cell.Status = model.SlotTaken
		if selfAccountID != 0 && row.AccountID == selfAccountID {
			cell.Status = model.SlotSelfBooking
		}
		if exposeOccupants {
			cell.Occupant = row.Username
		}
	}
}

// overlayLocks marks live-locked cells Taken. Cells already claimed by a
// booking are left alone: bookings win over any lingering lock row.
func overlayLocks(grid *model.WeekSchedule, rows []repository.ScheduleRow, exposeOccupants bool) {
	for _, row := range rows {
		cell := grid.CellAt(row.Room, row.Date, row.TimeRange)
		if cell == nil || cell.Status != model.SlotAvailable {
			continue
		}
		cell.Status = model.SlotTaken
		if exposeOccupants {
			cell.Occupant = row.Username
		}
	}
}
