package cron

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/audit"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/policy"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/request"
	"github.com/cmlabs-hris/hris-policy-engine/internal/service/settings"
)

type staticSnapshots struct {
	snap policy.Snapshot
}

func (s staticSnapshots) Snapshot(ctx context.Context) policy.Snapshot {
	return s.snap
}

func defaultSnapshots() staticSnapshots {
	return staticSnapshots{snap: settings.Defaults()}
}

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]attendance.AttendanceRecord
	getErr  error
	updates int
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]attendance.AttendanceRecord)}
}

func attendanceKey(userID string, date time.Time) string {
	return userID + "|" + date.Format("2006-01-02")
}

func (f *fakeAttendanceRepo) put(rec attendance.AttendanceRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[attendanceKey(rec.UserID, rec.WorkDate)] = rec
}

func (f *fakeAttendanceRepo) get(userID string, date time.Time) (attendance.AttendanceRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[attendanceKey(userID, date)]
	return rec, ok
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := attendanceKey(record.UserID, record.WorkDate)
	if _, ok := f.records[key]; ok {
		return attendance.AttendanceRecord{}, attendance.ErrAlreadyCheckedIn
	}
	record.ID = key
	f.records[key] = record
	return record, nil
}

func (f *fakeAttendanceRepo) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	rec, ok := f.records[attendanceKey(userID, date)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeAttendanceRepo) Update(ctx context.Context, record attendance.AttendanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := attendanceKey(record.UserID, record.WorkDate)
	if _, ok := f.records[key]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	f.records[key] = record
	f.updates++
	return nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	overtime []request.OvertimeRequest
	leave    []request.LeaveRequest
	late     []request.LateRequest

	saveErr map[request.Kind]error
	saved   []request.Review
}

func (f *fakeRequestRepo) ListStaleOvertime(ctx context.Context, cutoff time.Time) ([]request.OvertimeRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []request.OvertimeRequest
	for _, r := range f.overtime {
		if r.Status == request.StatusPending && r.CreatedAt.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListStaleLeave(ctx context.Context, cutoff time.Time) ([]request.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []request.LeaveRequest
	for _, r := range f.leave {
		if r.Status == request.StatusPending && r.CreatedAt.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListStaleLate(ctx context.Context, cutoff time.Time) ([]request.LateRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []request.LateRequest
	for _, r := range f.late {
		if r.Status == request.StatusPending && r.CreatedAt.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) SaveReview(ctx context.Context, kind request.Kind, review request.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.saveErr[kind]; err != nil {
		return err
	}

	apply := func(r *request.Review) error {
		if r.ID != review.ID {
			return nil
		}
		if r.Status != request.StatusPending {
			return request.ErrRequestAlreadyProcessed
		}
		*r = review
		return errFound
	}

	var err error
	switch kind {
	case request.KindOvertime:
		for i := range f.overtime {
			if err = apply(&f.overtime[i].Review); err != nil {
				break
			}
		}
	case request.KindLeave:
		for i := range f.leave {
			if err = apply(&f.leave[i].Review); err != nil {
				break
			}
		}
	case request.KindLate:
		for i := range f.late {
			if err = apply(&f.late[i].Review); err != nil {
				break
			}
		}
	}

	switch {
	case errors.Is(err, errFound):
		f.saved = append(f.saved, review)
		return nil
	case err != nil:
		return err
	default:
		return request.ErrRequestNotFound
	}
}

var errFound = errors.New("found")

func (f *fakeRequestRepo) FindLatestApprovedLate(ctx context.Context, userID string, from, to time.Time) (*request.LateRequest, error) {
	return nil, nil
}

// fakeTx snapshots both fakes and restores them when fn fails
type fakeTx struct {
	requests   *fakeRequestRepo
	attendance *fakeAttendanceRepo
	calls      int
}

func (t *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++

	t.requests.mu.Lock()
	overtime := append([]request.OvertimeRequest(nil), t.requests.overtime...)
	leave := append([]request.LeaveRequest(nil), t.requests.leave...)
	late := append([]request.LateRequest(nil), t.requests.late...)
	t.requests.mu.Unlock()

	t.attendance.mu.Lock()
	records := make(map[string]attendance.AttendanceRecord, len(t.attendance.records))
	for k, v := range t.attendance.records {
		records[k] = v
	}
	t.attendance.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.requests.mu.Lock()
		t.requests.overtime, t.requests.leave, t.requests.late = overtime, leave, late
		t.requests.mu.Unlock()

		t.attendance.mu.Lock()
		t.attendance.records = records
		t.attendance.mu.Unlock()
		return err
	}
	return nil
}

type fakeSink struct {
	mu      sync.Mutex
	records []audit.Record
}

func (f *fakeSink) Record(ctx context.Context, rec audit.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
}

type sentCheckIn struct {
	Person  notification.Person
	At      time.Time
	Address string
	IsLate  bool
}

type sentCheckOut struct {
	Person        notification.Person
	At            time.Time
	TotalHours    float64
	OvertimeHours float64
}

type fakeNotifier struct {
	mu        sync.Mutex
	checkIns  []sentCheckIn
	checkOuts []sentCheckOut
	err       error
}

func (f *fakeNotifier) SendCheckIn(ctx context.Context, person notification.Person, at time.Time, address string, isLate bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkIns = append(f.checkIns, sentCheckIn{Person: person, At: at, Address: address, IsLate: isLate})
	return f.err
}

func (f *fakeNotifier) SendCheckOut(ctx context.Context, person notification.Person, at time.Time, totalHours, overtimeHours float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkOuts = append(f.checkOuts, sentCheckOut{Person: person, At: at, TotalHours: totalHours, OvertimeHours: overtimeHours})
	return f.err
}

type fakeRetention struct {
	calls         int
	retentionDays int
	batchSize     int
	err           error
}

func (f *fakeRetention) Purge(ctx context.Context, retentionDays, batchSize int) (audit.PurgeResult, error) {
	f.calls++
	f.retentionDays = retentionDays
	f.batchSize = batchSize
	if f.err != nil {
		return audit.PurgeResult{}, f.err
	}
	return audit.PurgeResult{Deleted: 3, Batches: 1}, nil
}

func (f *fakeRetention) Status(ctx context.Context) (audit.RetentionStatus, error) {
	return audit.RetentionStatus{}, nil
}

// clock is a settable time source
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}
