package policy

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/policy"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/request"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/salary"
	"github.com/cmlabs-hris/hris-policy-engine/internal/service/settings"
)

type fakeSnapshots struct {
	snap policy.Snapshot
}

func (f *fakeSnapshots) Snapshot(ctx context.Context) policy.Snapshot {
	return f.snap
}

func defaultSnapshots() *fakeSnapshots {
	return &fakeSnapshots{snap: settings.Defaults()}
}

type fakeSalaryRepo struct {
	settings map[string]salary.SalarySetting
	err      error
}

func (f *fakeSalaryRepo) GetActiveByUserID(ctx context.Context, userID string) (salary.SalarySetting, error) {
	if f.err != nil {
		return salary.SalarySetting{}, f.err
	}
	s, ok := f.settings[userID]
	if !ok {
		return salary.SalarySetting{}, salary.ErrSalarySettingNotFound
	}
	return s, nil
}

type fakeRequestRepo struct {
	approvedLate []request.LateRequest
	err          error

	lastFrom, lastTo time.Time
}

func (f *fakeRequestRepo) ListStaleOvertime(ctx context.Context, cutoff time.Time) ([]request.OvertimeRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) ListStaleLeave(ctx context.Context, cutoff time.Time) ([]request.LeaveRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) ListStaleLate(ctx context.Context, cutoff time.Time) ([]request.LateRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) SaveReview(ctx context.Context, kind request.Kind, review request.Review) error {
	return nil
}

func (f *fakeRequestRepo) FindLatestApprovedLate(ctx context.Context, userID string, from, to time.Time) (*request.LateRequest, error) {
	f.lastFrom, f.lastTo = from, to
	if f.err != nil {
		return nil, f.err
	}
	var latest *request.LateRequest
	for i := range f.approvedLate {
		l := f.approvedLate[i]
		if l.UserID != userID || l.Status != request.StatusApproved {
			continue
		}
		if l.RequestDate.Before(from) || l.RequestDate.After(to) {
			continue
		}
		if latest == nil || l.RequestDate.After(latest.RequestDate) {
			latest = &l
		}
	}
	return latest, nil
}
