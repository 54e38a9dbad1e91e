package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/laundry-pass-booking/internal/model"
	"github.com/iliyamo/laundry-pass-booking/internal/repository"
)

func testSlots() []model.PassSlot {
	ranges := []struct {
		tr         string
		start, end int
	}{
		{"07-12", 7, 12},
		{"12-17", 12, 17},
		{"17-22", 17, 22},
	}
	var slots []model.PassSlot
	id := uint64(1)
	for room := 1; room <= 2; room++ {
		for _, r := range ranges {
			slots = append(slots, model.PassSlot{
				ID:        id,
				Room:      room,
				TimeRange: r.tr,
				StartHour: r.start,
				EndHour:   r.end,
			})
			id++
		}
	}
	return slots
}

func TestBuildWeekGrid(t *testing.T) {
	weekStart := day(2026, time.March, 9)
	grid := buildWeekGrid(testSlots(), weekStart)
	require.NotNil(t, grid)

	assert.Equal(t, "2026-03-09", grid.WeekStart)
	require.Len(t, grid.Rooms, 2)
	for _, room := range grid.Rooms {
		require.Len(t, room.Days, 7)
		assert.Equal(t, "2026-03-09", room.Days[0].Date)
		assert.Equal(t, "2026-03-15", room.Days[6].Date)
		for _, d := range room.Days {
			require.Len(t, d.Slots, 3)
			for _, s := range d.Slots {
				assert.Equal(t, model.SlotAvailable, s.Status)
				assert.Empty(t, s.Occupant)
			}
		}
	}
}

func TestBuildWeekGridEmptyConfig(t *testing.T) {
	assert.Nil(t, buildWeekGrid(nil, day(2026, time.March, 9)))
}

func TestOverlayBookingsScrubsResidentView(t *testing.T) {
	weekStart := day(2026, time.March, 9)
	grid := buildWeekGrid(testSlots(), weekStart)

	rows := []repository.ScheduleRow{
		{Room: 1, TimeRange: "07-12", Date: day(2026, time.March, 10), AccountID: 7, Username: "anna42"},
		{Room: 2, TimeRange: "17-22", Date: day(2026, time.March, 12), AccountID: 9, Username: "bjorn7"},
	}
	overlayBookings(grid, rows, 7, false)

	self := grid.CellAt(1, day(2026, time.March, 10), "07-12")
	require.NotNil(t, self)
	assert.Equal(t, model.SlotSelfBooking, self.Status)
	assert.Empty(t, self.Occupant, "resident views never carry names")

	other := grid.CellAt(2, day(2026, time.March, 12), "17-22")
	require.NotNil(t, other)
	assert.Equal(t, model.SlotTaken, other.Status)
	assert.Empty(t, other.Occupant)
}

func TestOverlayBookingsAdminSeesOccupants(t *testing.T) {
	weekStart := day(2026, time.March, 9)
	grid := buildWeekGrid(testSlots(), weekStart)

	rows := []repository.ScheduleRow{
		{Room: 1, TimeRange: "12-17", Date: day(2026, time.March, 11), AccountID: 7, Username: "anna42"},
	}
	overlayBookings(grid, rows, 0, true)

	cell := grid.CellAt(1, day(2026, time.March, 11), "12-17")
	require.NotNil(t, cell)
	assert.Equal(t, model.SlotTaken, cell.Status)
	assert.Equal(t, "anna42", cell.Occupant)
}

func TestOverlayLocksNeverShadowBookings(t *testing.T) {
	weekStart := day(2026, time.March, 9)
	grid := buildWeekGrid(testSlots(), weekStart)

	booked := []repository.ScheduleRow{
		{Room: 1, TimeRange: "07-12", Date: day(2026, time.March, 10), AccountID: 7, Username: "anna42"},
	}
	overlayBookings(grid, booked, 0, true)

	locked := []repository.ScheduleRow{
		// Stale lock row on the booked cell plus a live lock elsewhere.
		{Room: 1, TimeRange: "07-12", Date: day(2026, time.March, 10), AccountID: 9, Username: "bjorn7"},
		{Room: 1, TimeRange: "12-17", Date: day(2026, time.March, 10), AccountID: 9, Username: "bjorn7"},
	}
	overlayLocks(grid, locked, true)

	bookedCell := grid.CellAt(1, day(2026, time.March, 10), "07-12")
	assert.Equal(t, model.SlotTaken, bookedCell.Status)
	assert.Equal(t, "anna42", bookedCell.Occupant, "booking keeps its occupant")

	lockedCell := grid.CellAt(1, day(2026, time.March, 10), "12-17")
	assert.Equal(t, model.SlotTaken, lockedCell.Status)
	assert.Equal(t, "bjorn7", lockedCell.Occupant)
}

func TestOverlayIgnoresCellsOutsideGrid(t *testing.T) {
	weekStart := day(2026, time.March, 9)
	grid := buildWeekGrid(testSlots(), weekStart)

	rows := []repository.ScheduleRow{
		{Room: 99, TimeRange: "07-12", Date: day(2026, time.March, 10)},
		{Room: 1, TimeRange: "06-11", Date: day(2026, time.March, 10)},
		{Room: 1, TimeRange: "07-12", Date: day(2026, time.April, 10)},
	}
	overlayBookings(grid, rows, 0, true)
	overlayLocks(grid, rows, true)

	for _, room := range grid.Rooms {
		for _, d := range room.Days {
			for _, s := range d.Slots {
				assert.Equal(t, model.SlotAvailable, s.Status)
			}
		}
	}
}
