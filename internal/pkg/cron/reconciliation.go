package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/audit"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/policy"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/request"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxManager runs fn in one storage transaction, committing when fn returns nil
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReconcileResult counts the requests rejected in one pass, per kind
type ReconcileResult struct {
	Overtime int
	Leave    int
	Late     int
}

// Total is the number of requests rejected in the pass
func (r ReconcileResult) Total() int {
	return r.Overtime + r.Leave + r.Late
}

type ReconciliationJobs struct {
	requestRepo    request.RequestRepository
	attendanceRepo attendance.AttendanceRepository
	snapshots      policy.SnapshotProvider
	auditSink      audit.Sink
	tx             TxManager
	now            func() time.Time
}

func NewReconciliationJobs(
	requestRepo request.RequestRepository,
	attendanceRepo attendance.AttendanceRepository,
	snapshots policy.SnapshotProvider,
	auditSink audit.Sink,
	tx TxManager,
	now func() time.Time,
) *ReconciliationJobs {
	if now == nil {
		now = time.Now
	}
	return &ReconciliationJobs{
		requestRepo:    requestRepo,
		attendanceRepo: attendanceRepo,
		snapshots:      snapshots,
		auditSink:      auditSink,
		tx:             tx,
		now:            now,
	}
}

func (j *ReconciliationJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("auto_reject_stale_requests", interval, j.AutoRejectStaleRequests)
}

// AutoRejectStaleRequests is the scheduler entry point of Reconcile
func (j *ReconciliationJobs) AutoRejectStaleRequests(ctx context.Context) error {
	_, err := j.Reconcile(ctx)
	return err
}

// pass carries the values shared by every kind within one reconciliation pass
type pass struct {
	runID   string
	now     time.Time
	cutoff  time.Time
	maxDays int
	note    string
	policy  policy.ReconcilePolicy
}

// Reconcile rejects every pending request older than the configured maximum.
// Each kind commits in its own transaction, so a failure in one kind keeps
// the others' work; audit entries are appended only after a kind commits.
func (j *ReconciliationJobs) Reconcile(ctx context.Context) (ReconcileResult, error) {
	rp := j.snapshots.Snapshot(ctx).Reconcile
	now := j.now()

	p := pass{
		runID:   uuid.New().String(),
		now:     now,
		cutoff:  now.AddDate(0, 0, -rp.MaxPendingDays),
		maxDays: rp.MaxPendingDays,
		note:    fmt.Sprintf("Automatically rejected: request pending for more than %d days", rp.MaxPendingDays),
		policy:  rp,
	}

	slog.Info("Cron: Starting stale request reconciliation", "run_id", p.runID, "cutoff", p.cutoff, "max_pending_days", p.maxDays)

	var result ReconcileResult
	var errs []error

	for _, kind := range request.AllKinds() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		var records []audit.Record
		err := j.tx.WithinTx(ctx, func(ctx context.Context) error {
			var err error
			switch kind {
			case request.KindOvertime:
				records, err = j.rejectOvertime(ctx, p)
			case request.KindLeave:
				records, err = j.rejectLeave(ctx, p)
			case request.KindLate:
				records, err = j.rejectLate(ctx, p)
			}
			return err
		})
		if err != nil {
			slog.Error("Cron: Reconciliation failed for request kind, changes rolled back",
				"run_id", p.runID, "kind", kind, "error", err)
			errs = append(errs, fmt.Errorf("%s requests: %w", kind, err))
			continue
		}

		for _, rec := range records {
			j.auditSink.Record(ctx, rec)
		}

		switch kind {
		case request.KindOvertime:
			result.Overtime = len(records)
		case request.KindLeave:
			result.Leave = len(records)
		case request.KindLate:
			result.Late = len(records)
		}
	}

	if result.Total() == 0 && len(errs) == 0 {
		slog.Info("Cron: No stale requests found, reconciliation no-op", "run_id", p.runID)
		return result, nil
	}

	slog.Info("Cron: Stale request reconciliation finished",
		"run_id", p.runID,
		"overtime_rejected", result.Overtime,
		"leave_rejected", result.Leave,
		"late_rejected", result.Late,
		"failed_kinds", len(errs),
	)

	return result, errors.Join(errs...)
}

func (j *ReconciliationJobs) rejectOvertime(ctx context.Context, p pass) ([]audit.Record, error) {
	stale, err := j.requestRepo.ListStaleOvertime(ctx, p.cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale requests: %w", err)
	}

	var records []audit.Record
	for _, req := range stale {
		ok, err := j.reject(ctx, request.KindOvertime, &req.Review, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		rec, err := j.attendanceRepo.GetByUserAndDate(ctx, req.UserID, req.WorkDate)
		if err != nil {
			return nil, j.storageError(request.KindOvertime, req.Review, err)
		}
		if rec != nil {
			notApproved := false
			rec.IsOvertimeApproved = &notApproved
			rec.ApprovedOvertimeHours = decimal.Zero
			rec.HasOvertimeRequest = true
			rec.OvertimeRequestID = &req.ID
			if err := j.attendanceRepo.Update(ctx, *rec); err != nil {
				return nil, j.storageError(request.KindOvertime, req.Review, err)
			}
		}

		records = append(records, j.auditRecord(request.KindOvertime, req.Review, p, map[string]interface{}{
			"date":               req.WorkDate.Format("2006-01-02"),
			"attendance_updated": rec != nil,
		}))
	}

	return records, nil
}

func (j *ReconciliationJobs) rejectLeave(ctx context.Context, p pass) ([]audit.Record, error) {
	stale, err := j.requestRepo.ListStaleLeave(ctx, p.cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale requests: %w", err)
	}

	multiplier := p.policy.UnpaidLeaveMultiplier()

	var records []audit.Record
	for _, req := range stale {
		ok, err := j.reject(ctx, request.KindLeave, &req.Review, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		// Only days that already have an attendance record are marked unpaid.
		updated := 0
		for _, day := range req.Days() {
			rec, err := j.attendanceRepo.GetByUserAndDate(ctx, req.UserID, day)
			if err != nil {
				return nil, j.storageError(request.KindLeave, req.Review, err)
			}
			if rec == nil {
				continue
			}
			rec.SalaryMultiplier = multiplier
			if err := j.attendanceRepo.Update(ctx, *rec); err != nil {
				return nil, j.storageError(request.KindLeave, req.Review, err)
			}
			updated++
		}

		records = append(records, j.auditRecord(request.KindLeave, req.Review, p, map[string]interface{}{
			"start_date":        req.StartDate.Format("2006-01-02"),
			"end_date":          req.EndDate.Format("2006-01-02"),
			"leave_type":        req.LeaveType,
			"salary_multiplier": multiplier.String(),
			"days_updated":      updated,
		}))
	}

	return records, nil
}

func (j *ReconciliationJobs) rejectLate(ctx context.Context, p pass) ([]audit.Record, error) {
	stale, err := j.requestRepo.ListStaleLate(ctx, p.cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale requests: %w", err)
	}

	var records []audit.Record
	for _, req := range stale {
		ok, err := j.reject(ctx, request.KindLate, &req.Review, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		// An already applied deduction stays in place.
		rec, err := j.attendanceRepo.GetByUserAndDate(ctx, req.UserID, req.RequestDate)
		if err != nil {
			return nil, j.storageError(request.KindLate, req.Review, err)
		}
		if rec != nil {
			rec.HasLateRequest = true
			rec.LateRequestID = &req.ID
			if err := j.attendanceRepo.Update(ctx, *rec); err != nil {
				return nil, j.storageError(request.KindLate, req.Review, err)
			}
		}

		records = append(records, j.auditRecord(request.KindLate, req.Review, p, map[string]interface{}{
			"date":               req.RequestDate.Format("2006-01-02"),
			"attendance_updated": rec != nil,
		}))
	}

	return records, nil
}

// reject moves a pending request to Rejected and persists it. It reports false
// when the request was already processed elsewhere.
func (j *ReconciliationJobs) reject(ctx context.Context, kind request.Kind, review *request.Review, p pass) (bool, error) {
	if err := review.Reject(p.note, p.now); err != nil {
		slog.Warn("Cron: Skipping request that is no longer pending", "kind", kind, "request_id", review.ID, "status", review.Status)
		return false, nil
	}

	if err := j.requestRepo.SaveReview(ctx, kind, *review); err != nil {
		if errors.Is(err, request.ErrRequestAlreadyProcessed) {
			slog.Warn("Cron: Request was processed concurrently, skipping", "kind", kind, "request_id", review.ID)
			return false, nil
		}
		return false, j.storageError(kind, *review, err)
	}

	return true, nil
}

func (j *ReconciliationJobs) storageError(kind request.Kind, review request.Review, err error) error {
	slog.Error("Cron: Failed to persist auto-rejection",
		"action", actionFor(kind),
		"entity", kind.EntityName(),
		"request_id", review.ID,
		"user_id", review.UserID,
		"error", err,
	)
	return fmt.Errorf("request %s: %w", review.ID, err)
}

func (j *ReconciliationJobs) auditRecord(kind request.Kind, review request.Review, p pass, metadata map[string]interface{}) audit.Record {
	daysExpired := int(p.now.Sub(review.CreatedAt).Hours() / 24)

	metadata["run_id"] = p.runID
	metadata["user_id"] = review.UserID
	metadata["days_expired"] = daysExpired

	id := review.ID
	return audit.Record{
		Action:     actionFor(kind),
		EntityName: kind.EntityName(),
		EntityID:   &id,
		OldValue:   map[string]interface{}{"status": request.StatusPending},
		NewValue: map[string]interface{}{
			"status":      review.Status,
			"review_note": p.note,
			"reviewed_at": p.now,
		},
		Description: fmt.Sprintf("%s auto-rejected after %d days pending (limit %d days)", kind.EntityName(), daysExpired, p.maxDays),
		Metadata:    metadata,
	}
}

func actionFor(kind request.Kind) string {
	return "AUTO_REJECT_" + strings.ToUpper(string(kind))
}
