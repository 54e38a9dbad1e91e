//go:build integration
// +build integration

package service

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/laundry-pass-booking/internal/model"
	"github.com/iliyamo/laundry-pass-booking/internal/repository"
	"github.com/iliyamo/laundry-pass-booking/internal/testutil/testdb"
)

var handle *testdb.DBHandle

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	var err error
	handle, err = testdb.Start(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "testdb:", err)
		os.Exit(1)
	}
	code := m.Run()
	handle.Close()
	os.Exit(code)
}

type services struct {
	users    *UserService
	locks    *LockService
	bookings *BookingService
	schedule *ScheduleService
}

// newServices builds the full core on the shared container. Policy knobs
// are per call so each test can pick the quota it exercises.
func newServices(t *testing.T, lockDur time.Duration, activeAllowed, monthAllowed int) services {
	t.Helper()
	persons := repository.NewPersonRepo(handle.DB)
	slots := repository.NewSlotRepo(handle.DB)
	bookings := repository.NewBookingRepo(handle.DB)
	locks := repository.NewLockRepo(handle.DB)
	tokens := repository.NewTokenRepo(handle.DB)
	log := zap.NewNop()

	return services{
		users: &UserService{
			DB: handle.DB, Log: log,
			Persons: persons, Tokens: tokens, Bookings: bookings, Locks: locks,
			BcryptCost: 4,
		},
		locks: &LockService{
			DB: handle.DB, Log: log,
			Persons: persons, Slots: slots, Bookings: bookings, Locks: locks,
			LockDuration: lockDur, ActivePassesAllowed: activeAllowed,
		},
		bookings: &BookingService{
			DB: handle.DB, Log: log,
			Persons: persons, Slots: slots, Bookings: bookings, Locks: locks,
			LockDuration: lockDur, ActivePassesAllowed: activeAllowed, MonthPassesAllowed: monthAllowed,
		},
		schedule: &ScheduleService{
			DB: handle.DB, Log: log,
			Persons: persons, Slots: slots, Bookings: bookings, Locks: locks,
			LockDuration: lockDur,
		},
	}
}

var userSeq int

// registerResident creates a fresh resident through the admin path and
// returns its username. Usernames and identities never collide across
// tests because the sequence is monotonic.
func registerResident(t *testing.T, s services, admin string) string {
	t.Helper()
	userSeq++
	username := fmt.Sprintf("resident%d", userSeq)
	_, status, err := s.users.RegisterResident(context.Background(), admin, Registration{
		FirstName:      "Test",
		LastName:       "Resident",
		PersonalNumber: freshPersonalNumber(),
		Email:          fmt.Sprintf("%s@example.com", username),
		Username:       username,
		Password:       "correcthorse",
	})
	require.NoError(t, err)
	require.Equal(t, model.UserOK, status)
	return username
}

var adminName string

func admin(t *testing.T, s services) string {
	t.Helper()
	if adminName != "" {
		return adminName
	}
	_, status, err := s.users.RegisterAdministrator(context.Background(), Registration{
		FirstName:      "Board",
		LastName:       "Chair",
		PersonalNumber: freshPersonalNumber(),
		Email:          "chair@example.com",
		Username:       "chief1",
		Password:       "correcthorse",
	})
	require.NoError(t, err)
	require.Equal(t, model.UserOK, status)
	adminName = "chief1"
	return adminName
}

var pnSeq int

// freshPersonalNumber mints a unique valid identification number by
// picking the next serial and computing its Luhn check digit.
func freshPersonalNumber() string {
	pnSeq++
	serial := fmt.Sprintf("%03d", pnSeq)
	short := "900101" + serial
	sum := 0
	for i := 0; i < 9; i++ {
		d := int(short[i] - '0')
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	return fmt.Sprintf("19900101-%s%d", serial, check)
}

// tomorrow is always inside the booking window and its ranges are never
// elapsed, which keeps the tests independent of the wall clock hour.
func tomorrow() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

func cell(room int, date time.Time, timeRange string) model.PassRequest {
	req, err := model.NewPassRequest(room, date, timeRange)
	if err != nil {
		panic(err)
	}
	return req
}

func TestLoginRoundTrip(t *testing.T) {
	s := newServices(t, 5*time.Minute, 1, 6)
	username := registerResident(t, s, admin(t, s))

	info, status, err := s.users.Login(context.Background(), username, "correcthorse")
	require.NoError(t, err)
	assert.Equal(t, model.UserOK, status)
	assert.Equal(t, username, info.Username)
	assert.Equal(t, model.PrivilegeStandard, info.Privilege)

	_, status, err = s.users.Login(context.Background(), username, "wrong")
	require.NoError(t, err)
	assert.Equal(t, model.UserLoginFailure, status)

	_, status, err = s.users.Login(context.Background(), "nobody", "correcthorse")
	require.NoError(t, err)
	assert.Equal(t, model.UserLoginFailure, status)
}

func TestRegistrationConflicts(t *testing.T) {
	s := newServices(t, 5*time.Minute, 1, 6)
	adm := admin(t, s)
	username := registerResident(t, s, adm)

	_, status, err := s.users.RegisterResident(context.Background(), adm, Registration{
		FirstName: "Other", LastName: "Person",
		PersonalNumber: freshPersonalNumber(),
		Email:          username + "@example.com", // taken
		Username:       "brandnew1",
		Password:       "correcthorse",
	})
	require.NoError(t, err)
	assert.Equal(t, model.UserExistentEmail, status)

	_, status, err = s.users.RegisterResident(context.Background(), adm, Registration{
		FirstName: "Other", LastName: "Person",
		PersonalNumber: freshPersonalNumber(),
		Email:          "brandnew@example.com",
		Username:       username, // taken
		Password:       "correcthorse",
	})
	require.NoError(t, err)
	assert.Equal(t, model.UserExistentUsername, status)

	// A resident cannot register anyone.
	_, status, err = s.users.RegisterResident(context.Background(), username, Registration{
		FirstName: "Other", LastName: "Person",
		PersonalNumber: freshPersonalNumber(),
		Email:          "sneaky@example.com",
		Username:       "sneaky1",
		Password:       "correcthorse",
	})
	require.NoError(t, err)
	assert.Equal(t, model.UserInvalidPrivilege, status)
}

func TestBookThenDoubleBook(t *testing.T) {
	s := newServices(t, 5*time.Minute, 1, 6)
	adm := admin(t, s)
	first := registerResident(t, s, adm)
	second := registerResident(t, s, adm)
	target := cell(1, tomorrow(), "07-12")

	won, err := s.bookings.Book(context.Background(), first, target)
	require.NoError(t, err)
	require.Equal(t, model.BookingOK, won.Status)
	assert.NotEmpty(t, won.Reference)
	assert.Equal(t, 1, won.Room)
	assert.Equal(t, "07-12", won.TimeRange)

	res, err := s.bookings.Book(context.Background(), second, target)
	require.NoError(t, err)
	assert.Equal(t, model.BookingBookedPass, res.Status)

	// The winner sees it as the active pass.
	active, err := s.bookings.ActivePass(context.Background(), first)
	require.NoError(t, err)
	assert.Equal(t, model.BookingOK, active.Status)
	assert.Equal(t, won.Reference, active.Reference)

	active, err = s.bookings.ActivePass(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, model.BookingNoBooking, active.Status)
}

func TestActivePassQuota(t *testing.T) {
	s := newServices(t, 5*time.Minute, 1, 6)
	adm := admin(t, s)
	resident := registerResident(t, s, adm)

	res, err := s.bookings.Book(context.Background(), resident, cell(1, tomorrow(), "12-17"))
	require.NoError(t, err)
	require.Equal(t, model.BookingOK, res.Status)

	res, err = s.bookings.Book(context.Background(), resident, cell(2, tomorrow(), "17-22"))
	require.NoError(t, err)
	assert.Equal(t, model.BookingExistentActivePass, res.Status)

	// Cancelling frees the quota again.
	cancelled, err := s.bookings.Cancel(context.Background(), resident, cell(1, tomorrow(), "12-17"))
	require.NoError(t, err)
	require.True(t, cancelled)

	res, err = s.bookings.Book(context.Background(), resident, cell(2, tomorrow(), "17-22"))
	require.NoError(t, err)
	assert.Equal(t, model.BookingOK, res.Status)
}

func TestMonthQuota(t *testing.T) {
	// Quota of two bookings per month, active quota effectively off.
	s := newServices(t, 5*time.Minute, 100, 2)
	adm := admin(t, s)
	resident := registerResident(t, s, adm)
	// One date, three cells: a single calendar day never straddles a
	// month boundary. The shared container means every test books its
	// own cells.
	date := tomorrow().AddDate(0, 0, 2)

	res, err := s.bookings.Book(context.Background(), resident, cell(1, date, "07-12"))
	require.NoError(t, err)
	require.Equal(t, model.BookingOK, res.Status)

	res, err = s.bookings.Book(context.Background(), resident, cell(1, date, "12-17"))
	require.NoError(t, err)
	require.Equal(t, model.BookingOK, res.Status)

	res, err = s.bookings.Book(context.Background(), resident, cell(1, date, "17-22"))
	require.NoError(t, err)
	assert.Equal(t, model.BookingPassCountExceeded, res.Status)
}

func TestBookingWindow(t *testing.T) {
	s := newServices(t, 5*time.Minute, 1, 6)
	adm := admin(t, s)
	resident := registerResident(t, s, adm)

	res, err := s.bookings.Book(context.Background(), resident, cell(1, tomorrow().AddDate(0, 0, -2), "07-12"))
	require.NoError(t, err)
	assert.Equal(t, model.BookingInvalidDate, res.Status)

	res, err = s.bookings.Book(context.Background(), resident, cell(1, tomorrow().AddDate(0, 0, 21), "07-12"))
	require.NoError(t, err)
	assert.Equal(t, model.BookingInvalidDate, res.Status)
}

func TestUnknownCellAndUser(t *testing.T) {
	s := newServices(t, 5*time.Minute, 1, 6)
	adm := admin(t, s)
	resident := registerResident(t, s, adm)

	res, err := s.bookings.Book(context.Background(), resident, cell(99, tomorrow(), "07-12"))
	require.NoError(t, err)
	assert.Equal(t, model.BookingInvalidPassInfo, res.Status)

	res, err = s.bookings.Book(context.Background(), resident, cell(1, tomorrow(), "08-13"))
	require.NoError(t, err)
	assert.Equal(t, model.BookingInvalidPassInfo, res.Status)

	res, err = s.bookings.Book(context.Background(), "ghost", cell(1, tomorrow(), "07-12"))
	require.NoError(t, err)
	assert.Equal(t, model.BookingInvalidUser, res.Status)
}

func TestLockBlocksOthersButNotHolder(t *testing.T) {
	s := newServices(t, 5*time.Minute, 1, 6)
	adm := admin(t, s)
	holder := registerResident(t, s, adm)
	rival := registerResident(t, s, adm)
	target := cell(2, tomorrow(), "07-12")

	granted, err := s.locks.Lock(context.Background(), holder, target)
	require.NoError(t, err)
	require.True(t, granted)

	// The cell is exclusively held: no rival lock, no rival booking.
	granted, err = s.locks.Lock(context.Background(), rival, target)
	require.NoError(t, err)
	assert.False(t, granted)

	res, err := s.bookings.Book(context.Background(), rival, target)
	require.NoError(t, err)
	assert.Equal(t, model.BookingLockedPass, res.Status)

	// The holder confirms its own hold, which also consumes the lock.
	res, err = s.bookings.Book(context.Background(), holder, target)
	require.NoError(t, err)
	assert.Equal(t, model.BookingOK, res.Status)

	granted, err = s.locks.Lock(context.Background(), rival, target)
	require.NoError(t, err)
	assert.False(t, granted, "booked cells cannot be locked")
}

func TestLockMovesWithItsAccount(t *testing.T) {
	s := newServices(t, 5*time.Minute, 1, 6)
	adm := admin(t, s)
	holder := registerResident(t, s, adm)
	rival := registerResident(t, s, adm)
	date := tomorrow().AddDate(0, 0, 2)
	first := cell(2, date, "07-12")
	second := cell(2, date, "12-17")

	granted, err := s.locks.Lock(context.Background(), holder, first)
	require.NoError(t, err)
	require.True(t, granted)

	// Re-locking one's own held cell is rejected; unlock first.
	granted, err = s.locks.Lock(context.Background(), holder, first)
	require.NoError(t, err)
	assert.False(t, granted)

	// Taking a second cell moves the account's single hold there.
	granted, err = s.locks.Lock(context.Background(), holder, second)
	require.NoError(t, err)
	require.True(t, granted)

	granted, err = s.locks.Lock(context.Background(), rival, first)
	require.NoError(t, err)
	assert.True(t, granted, "the old cell is free once the holder moved on")

	granted, err = s.locks.Lock(context.Background(), rival, second)
	require.NoError(t, err)
	assert.False(t, granted, "the new cell is held")
}

func TestUnlockWithoutLockIsSuccess(t *testing.T) {
	s := newServices(t, 5*time.Minute, 1, 6)
	adm := admin(t, s)
	resident := registerResident(t, s, adm)

	released, err := s.locks.Unlock(context.Background(), resident)
	require.NoError(t, err)
	assert.True(t, released, "releasing nothing is still success")

	released, err = s.locks.Unlock(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, released, "unknown users are the only rejection")
}

func TestLockExpiry(t *testing.T) {
	s := newServices(t, time.Second, 1, 6)
	adm := admin(t, s)
	holder := registerResident(t, s, adm)
	rival := registerResident(t, s, adm)
	target := cell(2, tomorrow(), "12-17")

	granted, err := s.locks.Lock(context.Background(), holder, target)
	require.NoError(t, err)
	require.True(t, granted)

	time.Sleep(1500 * time.Millisecond)

	granted, err = s.locks.Lock(context.Background(), rival, target)
	require.NoError(t, err)
	assert.True(t, granted, "expired locks do not hold the cell")
}

func TestUnlockReleasesHold(t *testing.T) {
	s := newServices(t, 5*time.Minute, 1, 6)
	adm := admin(t, s)
	holder := registerResident(t, s, adm)
	rival := registerResident(t, s, adm)
	target := cell(1, tomorrow(), "17-22")

	granted, err := s.locks.Lock(context.Background(), holder, target)
	require.NoError(t, err)
	require.True(t, granted)

	released, err := s.locks.Unlock(context.Background(), holder)
	require.NoError(t, err)
	require.True(t, released)

	granted, err = s.locks.Lock(context.Background(), rival, target)
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestCancelOwnership(t *testing.T) {
	s := newServices(t, 5*time.Minute, 1, 6)
	adm := admin(t, s)
	owner := registerResident(t, s, adm)
	other := registerResident(t, s, adm)
	target := cell(1, tomorrow().AddDate(0, 0, 1), "07-12")

	res, err := s.bookings.Book(context.Background(), owner, target)
	require.NoError(t, err)
	require.Equal(t, model.BookingOK, res.Status)

	cancelled, err := s.bookings.Cancel(context.Background(), other, target)
	require.NoError(t, err)
	assert.False(t, cancelled, "only the owner or an administrator may cancel")

	cancelled, err = s.bookings.Cancel(context.Background(), adm, target)
	require.NoError(t, err)
	assert.True(t, cancelled)

	cancelled, err = s.bookings.Cancel(context.Background(), adm, target)
	require.NoError(t, err)
	assert.False(t, cancelled, "already gone")
}

func TestScheduleViews(t *testing.T) {
	s := newServices(t, 5*time.Minute, 1, 6)
	adm := admin(t, s)
	booker := registerResident(t, s, adm)
	watcher := registerResident(t, s, adm)
	date := tomorrow().AddDate(0, 0, 3)
	target := cell(1, date, "07-12")

	res, err := s.bookings.Book(context.Background(), booker, target)
	require.NoError(t, err)
	require.Equal(t, model.BookingOK, res.Status)

	// Booker sees its own cell marked, with no occupant name anywhere.
	view, err := s.schedule.ResidentWeekPasses(context.Background(), booker, weekOf(date))
	require.NoError(t, err)
	require.Equal(t, model.ScheduleOK, view.Status)
	ownCell := view.Schedule.CellAt(1, date, "07-12")
	require.NotNil(t, ownCell)
	assert.Equal(t, model.SlotSelfBooking, ownCell.Status)
	assertNoOccupants(t, view.Schedule)

	// Another resident sees it merely taken.
	view, err = s.schedule.ResidentWeekPasses(context.Background(), watcher, weekOf(date))
	require.NoError(t, err)
	require.Equal(t, model.ScheduleOK, view.Status)
	otherCell := view.Schedule.CellAt(1, date, "07-12")
	require.NotNil(t, otherCell)
	assert.Equal(t, model.SlotTaken, otherCell.Status)
	assertNoOccupants(t, view.Schedule)

	// The administrator sees who holds it.
	adminView, err := s.schedule.AdminWeekPasses(context.Background(), adm, weekOf(date))
	require.NoError(t, err)
	require.Equal(t, model.ScheduleOK, adminView.Status)
	adminCell := adminView.Schedule.CellAt(1, date, "07-12")
	require.NotNil(t, adminCell)
	assert.Equal(t, model.SlotTaken, adminCell.Status)
	assert.Equal(t, booker, adminCell.Occupant)

	// Residents cannot wander outside the adjacent weeks.
	view, err = s.schedule.ResidentWeekPasses(context.Background(), watcher, 2)
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleInvalidWeek, view.Status)

	// The admin view is role-gated in the core, not just at the router.
	view, err = s.schedule.AdminWeekPasses(context.Background(), watcher, 0)
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleInvalidPrivilege, view.Status)
}

// weekOf maps a date to its week relative to the current one.
func weekOf(date time.Time) int {
	cur := mondayOf(time.Now().UTC())
	return int(mondayOf(date).Sub(cur).Hours() / 24 / 7)
}

func assertNoOccupants(t *testing.T, grid *model.WeekSchedule) {
	t.Helper()
	for _, room := range grid.Rooms {
		for _, d := range room.Days {
			for _, slot := range d.Slots {
				assert.Empty(t, slot.Occupant)
			}
		}
	}
}

func TestDeleteUserCascades(t *testing.T) {
	s := newServices(t, 5*time.Minute, 1, 6)
	adm := admin(t, s)
	doomed := registerResident(t, s, adm)
	target := cell(2, tomorrow().AddDate(0, 0, 1), "17-22")

	res, err := s.bookings.Book(context.Background(), doomed, target)
	require.NoError(t, err)
	require.Equal(t, model.BookingOK, res.Status)

	deleted, err := s.users.DeleteUser(context.Background(), adm, doomed)
	require.NoError(t, err)
	require.True(t, deleted)

	// Identity, credentials and booking are all gone.
	_, status, err := s.users.Login(context.Background(), doomed, "correcthorse")
	require.NoError(t, err)
	assert.Equal(t, model.UserLoginFailure, status)

	other := registerResident(t, s, adm)
	res, err = s.bookings.Book(context.Background(), other, target)
	require.NoError(t, err)
	assert.Equal(t, model.BookingOK, res.Status, "the cell is free again")

	deleted, err = s.users.DeleteUser(context.Background(), adm, doomed)
	require.NoError(t, err)
	assert.False(t, deleted, "unknown target")
}
