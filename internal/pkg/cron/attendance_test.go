package cron

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoster() roster.Roster {
	return roster.Roster{
		Members: []roster.Member{
			{UserID: "u1", Name: "Ayu", Email: "ayu@example.com"},
			{UserID: "u2", Name: "Budi", TelegramChatID: 42},
			{UserID: "u3", Name: "Citra", Email: "citra@example.com"},
		},
		Locations: map[string]roster.Location{
			"u1": {Latitude: -6.2, Longitude: 106.8, Address: "Jakarta HQ"},
			"u2": {Latitude: -7.25, Longitude: 112.75, Address: "Surabaya Branch"},
		},
	}
}

type attendanceFixture struct {
	clock      *clock
	attendance *fakeAttendanceRepo
	notifier   *fakeNotifier
	jobs       *SimulatedAttendanceJobs
}

func newAttendanceFixture(start time.Time) *attendanceFixture {
	f := &attendanceFixture{
		clock:      &clock{t: start},
		attendance: newFakeAttendanceRepo(),
		notifier:   &fakeNotifier{},
	}
	f.jobs = NewSimulatedAttendanceJobs(testRoster(), f.attendance, f.notifier, defaultSnapshots(),
		time.UTC, f.clock.Now, rand.New(rand.NewPCG(1, 2)))
	return f
}

func at(d, h, m int) time.Time {
	return time.Date(2026, 3, d, h, m, 0, 0, time.UTC)
}

func TestNewDailySchedule_TimesWithinWindows(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	members := testRoster().Members

	for i := 0; i < 50; i++ {
		s := NewDailySchedule(at(10, 13, 45), members, rng)
		assert.True(t, s.Date.Equal(at(10, 0, 0)))

		for _, m := range members {
			in := s.CheckIns[m.UserID]
			out := s.CheckOuts[m.UserID]
			assert.False(t, in.Before(at(10, 7, 0)), "check-in %s too early", in)
			assert.True(t, in.Before(at(10, 9, 0)), "check-in %s too late", in)
			assert.False(t, out.Before(at(10, 20, 0)), "check-out %s too early", out)
			assert.True(t, out.Before(at(10, 22, 0)), "check-out %s too late", out)
			assert.True(t, s.PendingCheckIn(m.UserID))
			assert.True(t, s.PendingCheckOut(m.UserID))
		}
	}
}

func TestSimulatedAttendance_OutsideWindowsDoesNothing(t *testing.T) {
	f := newAttendanceFixture(at(10, 12, 0))

	require.NoError(t, f.jobs.Tick(context.Background()))
	require.NotNil(t, f.jobs.Schedule())
	assert.Empty(t, f.attendance.records)
	assert.Empty(t, f.notifier.checkIns)
}

func TestSimulatedAttendance_FullDay(t *testing.T) {
	f := newAttendanceFixture(at(10, 9, 4))
	ctx := context.Background()

	require.NoError(t, f.jobs.Tick(ctx))

	for _, id := range []string{"u1", "u2"} {
		rec, ok := f.attendance.get(id, at(10, 0, 0))
		require.True(t, ok, "%s should be checked in", id)
		require.NotNil(t, rec.CheckIn)
		assert.True(t, rec.CheckIn.Equal(at(10, 9, 4)))
		assert.False(t, rec.IsLate)
		assert.True(t, rec.TotalHours.IsZero())
		require.NotNil(t, rec.CheckInAddress)
	}
	rec, _ := f.attendance.get("u1", at(10, 0, 0))
	assert.Equal(t, "Jakarta HQ", *rec.CheckInAddress)
	assert.Equal(t, -6.2, *rec.CheckInLatitude)

	_, ok := f.attendance.get("u3", at(10, 0, 0))
	assert.False(t, ok, "member without location is skipped")
	assert.False(t, f.jobs.Schedule().PendingCheckIn("u3"))

	require.Len(t, f.notifier.checkIns, 2)
	assert.Equal(t, "u1", f.notifier.checkIns[0].Person.UserID)
	assert.Equal(t, "Jakarta HQ", f.notifier.checkIns[0].Address)
	assert.False(t, f.notifier.checkIns[0].IsLate)

	// A second tick in the same window does not duplicate anything.
	f.clock.Set(at(10, 9, 4).Add(30 * time.Second))
	require.NoError(t, f.jobs.Tick(ctx))
	assert.Len(t, f.notifier.checkIns, 2)

	f.clock.Set(at(10, 22, 4))
	require.NoError(t, f.jobs.Tick(ctx))

	rec, _ = f.attendance.get("u2", at(10, 0, 0))
	require.NotNil(t, rec.CheckOut)
	assert.True(t, rec.CheckOut.Equal(at(10, 22, 4)))
	assert.Equal(t, "Surabaya Branch", *rec.CheckOutAddress)
	assert.Equal(t, "13", rec.TotalHours.String())

	require.Len(t, f.notifier.checkOuts, 2)
	assert.Equal(t, 13.0, f.notifier.checkOuts[0].TotalHours)
	assert.Equal(t, 5.0, f.notifier.checkOuts[0].OvertimeHours)
}

func TestSimulatedAttendance_WaitsForScheduledTime(t *testing.T) {
	f := newAttendanceFixture(at(10, 6, 0))
	ctx := context.Background()

	require.NoError(t, f.jobs.Tick(ctx))
	s := f.jobs.Schedule()
	for _, m := range testRoster().Members {
		s.CheckIns[m.UserID] = at(10, 8, 30)
	}

	f.clock.Set(at(10, 8, 0))
	require.NoError(t, f.jobs.Tick(ctx))
	assert.Empty(t, f.notifier.checkIns)

	f.clock.Set(at(10, 8, 31))
	require.NoError(t, f.jobs.Tick(ctx))
	assert.Len(t, f.notifier.checkIns, 2)
}

func TestSimulatedAttendance_ExistingRecordIsNotDuplicated(t *testing.T) {
	f := newAttendanceFixture(at(10, 9, 4))
	manual := at(10, 7, 15)
	f.attendance.put(attendance.AttendanceRecord{UserID: "u1", WorkDate: at(10, 0, 0), CheckIn: &manual})

	require.NoError(t, f.jobs.Tick(context.Background()))

	rec, _ := f.attendance.get("u1", at(10, 0, 0))
	assert.True(t, rec.CheckIn.Equal(manual))
	require.Len(t, f.notifier.checkIns, 1)
	assert.Equal(t, "u2", f.notifier.checkIns[0].Person.UserID)
	assert.False(t, f.jobs.Schedule().PendingCheckIn("u1"))
}

func TestSimulatedAttendance_CheckOutWithoutCheckInIsSkipped(t *testing.T) {
	f := newAttendanceFixture(at(10, 22, 4))

	require.NoError(t, f.jobs.Tick(context.Background()))
	assert.Empty(t, f.notifier.checkOuts)
	assert.Empty(t, f.attendance.records)
}

func TestSimulatedAttendance_ShortDayHasNoOvertime(t *testing.T) {
	f := newAttendanceFixture(at(10, 20, 30))
	checkIn := at(10, 14, 0)
	f.attendance.put(attendance.AttendanceRecord{UserID: "u1", WorkDate: at(10, 0, 0), CheckIn: &checkIn})

	require.NoError(t, f.jobs.Tick(context.Background()))
	s := f.jobs.Schedule()
	s.CheckOuts["u1"] = at(10, 20, 0)

	require.NoError(t, f.jobs.Tick(context.Background()))
	require.Len(t, f.notifier.checkOuts, 1)
	assert.Equal(t, 6.5, f.notifier.checkOuts[0].TotalHours)
	assert.Equal(t, 0.0, f.notifier.checkOuts[0].OvertimeHours)
}

func TestSimulatedAttendance_ScheduleResetsOnDateChange(t *testing.T) {
	f := newAttendanceFixture(at(10, 9, 4))
	ctx := context.Background()

	require.NoError(t, f.jobs.Tick(ctx))
	first := f.jobs.Schedule()
	assert.False(t, first.PendingCheckIn("u1"))

	f.clock.Set(at(11, 6, 0))
	require.NoError(t, f.jobs.Tick(ctx))
	second := f.jobs.Schedule()

	assert.NotSame(t, first, second)
	assert.True(t, second.Date.Equal(at(11, 0, 0)))
	assert.True(t, second.PendingCheckIn("u1"))
	assert.True(t, second.PendingCheckOut("u1"))
}

func TestSimulatedAttendance_UsesBusinessTimezone(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	f := newAttendanceFixture(time.Date(2026, 3, 10, 2, 4, 0, 0, time.UTC))
	f.jobs.loc = jakarta

	require.NoError(t, f.jobs.Tick(context.Background()))

	assert.Equal(t, 10, f.jobs.Schedule().Date.Day())
	assert.Len(t, f.notifier.checkIns, 2, "02:04 UTC is 09:04 WIB")
}

func TestSimulatedAttendance_AlreadyCheckedOutIsLeftAlone(t *testing.T) {
	f := newAttendanceFixture(at(10, 22, 4))
	checkIn := at(10, 8, 0)
	manualOut := at(10, 17, 0)
	f.attendance.put(attendance.AttendanceRecord{
		UserID:   "u1",
		WorkDate: at(10, 0, 0),
		CheckIn:  &checkIn,
		CheckOut: &manualOut,
	})

	require.NoError(t, f.jobs.Tick(context.Background()))

	rec, _ := f.attendance.get("u1", at(10, 0, 0))
	assert.True(t, rec.CheckOut.Equal(manualOut))
	assert.Equal(t, 0, f.attendance.updates)
	assert.Empty(t, f.notifier.checkOuts)
	assert.False(t, f.jobs.Schedule().PendingCheckOut("u1"))
}
