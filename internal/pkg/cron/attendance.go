package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/policy"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/roster"
	"github.com/shopspring/decimal"
)

// Daily windows of the simulated roster, as minutes since local midnight.
// Processing windows run a few minutes past the last scheduled time.
const (
	checkInFrom       = 7 * 60
	checkInUntil      = 9 * 60
	checkInWindowEnd  = 9*60 + 5
	checkOutFrom      = 20 * 60
	checkOutUntil     = 22 * 60
	checkOutWindowEnd = 22*60 + 5
)

// DailySchedule holds one local day's randomized check-in and check-out times
// and the members still waiting for each event.
type DailySchedule struct {
	Date      time.Time
	CheckIns  map[string]time.Time
	CheckOuts map[string]time.Time

	pendingCheckIn  map[string]struct{}
	pendingCheckOut map[string]struct{}
}

// NewDailySchedule draws a check-in in [07:00, 09:00) and a check-out in
// [20:00, 22:00) for every member on date.
func NewDailySchedule(date time.Time, members []roster.Member, rng *rand.Rand) *DailySchedule {
	day := attendance.DateOnly(date)
	s := &DailySchedule{
		Date:            day,
		CheckIns:        make(map[string]time.Time, len(members)),
		CheckOuts:       make(map[string]time.Time, len(members)),
		pendingCheckIn:  make(map[string]struct{}, len(members)),
		pendingCheckOut: make(map[string]struct{}, len(members)),
	}

	for _, m := range members {
		s.CheckIns[m.UserID] = randomTime(day, checkInFrom, checkInUntil, rng)
		s.CheckOuts[m.UserID] = randomTime(day, checkOutFrom, checkOutUntil, rng)
		s.pendingCheckIn[m.UserID] = struct{}{}
		s.pendingCheckOut[m.UserID] = struct{}{}
	}

	return s
}

func randomTime(day time.Time, fromMinute, untilMinute int, rng *rand.Rand) time.Time {
	span := (untilMinute - fromMinute) * 60
	offset := fromMinute*60 + rng.IntN(span)
	return day.Add(time.Duration(offset) * time.Second)
}

// PendingCheckIn reports whether userID has not checked in yet today
func (s *DailySchedule) PendingCheckIn(userID string) bool {
	_, ok := s.pendingCheckIn[userID]
	return ok
}

// PendingCheckOut reports whether userID has not checked out yet today
func (s *DailySchedule) PendingCheckOut(userID string) bool {
	_, ok := s.pendingCheckOut[userID]
	return ok
}

// SimulatedAttendanceJobs checks a fixed roster in and out at random times
// each day. The schedule lives in memory only; a restart draws a new one.
type SimulatedAttendanceJobs struct {
	roster         roster.Roster
	attendanceRepo attendance.AttendanceRepository
	notifier       notification.Notifier
	snapshots      policy.SnapshotProvider
	loc            *time.Location
	now            func() time.Time
	rng            *rand.Rand

	schedule *DailySchedule
}

func NewSimulatedAttendanceJobs(
	r roster.Roster,
	attendanceRepo attendance.AttendanceRepository,
	notifier notification.Notifier,
	snapshots policy.SnapshotProvider,
	loc *time.Location,
	now func() time.Time,
	rng *rand.Rand,
) *SimulatedAttendanceJobs {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &SimulatedAttendanceJobs{
		roster:         r,
		attendanceRepo: attendanceRepo,
		notifier:       notifier,
		snapshots:      snapshots,
		loc:            loc,
		now:            now,
		rng:            rng,
	}
}

func (j *SimulatedAttendanceJobs) RegisterJobs(scheduler *Scheduler, pollInterval time.Duration) {
	scheduler.AddJob("simulated_attendance", pollInterval, j.Tick)
}

// Schedule returns the current day's schedule, nil before the first tick
func (j *SimulatedAttendanceJobs) Schedule() *DailySchedule {
	return j.schedule
}

// Tick processes every member whose scheduled time has passed inside the
// current check-in or check-out window.
func (j *SimulatedAttendanceJobs) Tick(ctx context.Context) error {
	now := j.now().In(j.loc)
	today := attendance.DateOnly(now)

	if j.schedule == nil || !j.schedule.Date.Equal(today) {
		j.schedule = NewDailySchedule(today, j.roster.Members, j.rng)
		slog.Info("Cron: Generated simulated attendance schedule", "date", today.Format("2006-01-02"), "members", len(j.roster.Members))
	}

	minute := now.Hour()*60 + now.Minute()
	switch {
	case minute >= checkInFrom && minute < checkInWindowEnd:
		return j.processCheckIns(ctx, now)
	case minute >= checkOutFrom && minute < checkOutWindowEnd:
		return j.processCheckOuts(ctx, now)
	}
	return nil
}

func (j *SimulatedAttendanceJobs) processCheckIns(ctx context.Context, now time.Time) error {
	s := j.schedule

	for _, member := range j.roster.Members {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !s.PendingCheckIn(member.UserID) || now.Before(s.CheckIns[member.UserID]) {
			continue
		}

		loc, ok := j.roster.LocationOf(member.UserID)
		if !ok {
			slog.Warn("Cron: Roster member has no fixed location, skipping check-in", "user_id", member.UserID)
			delete(s.pendingCheckIn, member.UserID)
			continue
		}

		existing, err := j.attendanceRepo.GetByUserAndDate(ctx, member.UserID, s.Date)
		if err != nil {
			slog.Error("Cron: Failed to load attendance", "action", "SIMULATED_CHECK_IN", "user_id", member.UserID, "error", err)
			continue
		}
		if existing != nil {
			delete(s.pendingCheckIn, member.UserID)
			continue
		}

		at := now
		lat, long, address := loc.Latitude, loc.Longitude, loc.Address
		record := attendance.AttendanceRecord{
			UserID:           member.UserID,
			WorkDate:         s.Date,
			CheckIn:          &at,
			CheckInLatitude:  &lat,
			CheckInLongitude: &long,
			CheckInAddress:   &address,
			TotalHours:       decimal.Zero,
			IsLate:           false,
			SalaryMultiplier: decimal.NewFromInt(1),
		}

		if _, err := j.attendanceRepo.Create(ctx, record); err != nil {
			if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
				delete(s.pendingCheckIn, member.UserID)
				continue
			}
			slog.Error("Cron: Failed to create attendance", "action", "SIMULATED_CHECK_IN", "user_id", member.UserID, "error", err)
			continue
		}
		delete(s.pendingCheckIn, member.UserID)

		if err := j.notifier.SendCheckIn(ctx, member.Person(), at, address, false); err != nil {
			slog.Warn("Cron: Failed to queue check-in notification", "user_id", member.UserID, "error", err)
		}
		slog.Info("Cron: Simulated check-in", "user_id", member.UserID, "at", at.Format("15:04:05"))
	}

	return nil
}

func (j *SimulatedAttendanceJobs) processCheckOuts(ctx context.Context, now time.Time) error {
	s := j.schedule
	workHours := j.snapshots.Snapshot(ctx).Pay.WorkHoursPerDay.InexactFloat64()

	for _, member := range j.roster.Members {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !s.PendingCheckOut(member.UserID) || now.Before(s.CheckOuts[member.UserID]) {
			continue
		}

		loc, ok := j.roster.LocationOf(member.UserID)
		if !ok {
			slog.Warn("Cron: Roster member has no fixed location, skipping check-out", "user_id", member.UserID)
			delete(s.pendingCheckOut, member.UserID)
			continue
		}

		record, err := j.attendanceRepo.GetByUserAndDate(ctx, member.UserID, s.Date)
		if err != nil {
			slog.Error("Cron: Failed to load attendance", "action", "SIMULATED_CHECK_OUT", "user_id", member.UserID, "error", err)
			continue
		}
		if record == nil {
			slog.Debug("Cron: No attendance today, skipping check-out", "user_id", member.UserID)
			delete(s.pendingCheckOut, member.UserID)
			continue
		}

		at := now
		total, err := record.RecordCheckOut(at, loc.Latitude, loc.Longitude, loc.Address)
		if err != nil {
			slog.Debug("Cron: Skipping check-out", "user_id", member.UserID, "reason", err)
			delete(s.pendingCheckOut, member.UserID)
			continue
		}
		overtime := max(0, total-workHours)

		if err := j.attendanceRepo.Update(ctx, *record); err != nil {
			slog.Error("Cron: Failed to update attendance", "action", "SIMULATED_CHECK_OUT", "user_id", member.UserID, "error", err)
			continue
		}
		delete(s.pendingCheckOut, member.UserID)

		if err := j.notifier.SendCheckOut(ctx, member.Person(), at, round2(total), round2(overtime)); err != nil {
			slog.Warn("Cron: Failed to queue check-out notification", "user_id", member.UserID, "error", err)
		}
		slog.Info("Cron: Simulated check-out", "user_id", member.UserID, "at", at.Format("15:04:05"),
			"total_hours", fmt.Sprintf("%.2f", total))
	}

	return nil
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
