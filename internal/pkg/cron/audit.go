package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/audit"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/policy"
)

type AuditJobs struct {
	retention audit.RetentionService
	snapshots policy.SnapshotProvider
	loc       *time.Location
	runHour   int
	now       func() time.Time

	lastRun time.Time
}

func NewAuditJobs(
	retention audit.RetentionService,
	snapshots policy.SnapshotProvider,
	loc *time.Location,
	runHour int,
	now func() time.Time,
) *AuditJobs {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &AuditJobs{
		retention: retention,
		snapshots: snapshots,
		loc:       loc,
		runHour:   runHour,
		now:       now,
	}
}

func (j *AuditJobs) RegisterJobs(scheduler *Scheduler, checkInterval time.Duration) {
	scheduler.AddJob("purge_expired_audit_entries", checkInterval, j.PurgeExpiredAuditEntries)
}

// PurgeExpiredAuditEntries purges once per local day, on the first check at or
// after the run hour. Checks spaced wider than an hour still catch up that day.
func (j *AuditJobs) PurgeExpiredAuditEntries(ctx context.Context) error {
	now := j.now().In(j.loc)
	if now.Hour() < j.runHour {
		return nil
	}

	today := attendance.DateOnly(now)
	if !today.After(j.lastRun) {
		return nil
	}

	rp := j.snapshots.Snapshot(ctx).Retention
	slog.Info("Cron: Starting audit retention purge", "retention_days", rp.RetentionDays, "batch_size", rp.BatchSize)

	result, err := j.retention.Purge(ctx, rp.RetentionDays, rp.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to purge audit entries: %w", err)
	}
	j.lastRun = today

	slog.Info("Cron: Audit retention purge completed",
		"deleted", result.Deleted,
		"batches", result.Batches,
		"cutoff", result.Cutoff,
	)
	return nil
}
