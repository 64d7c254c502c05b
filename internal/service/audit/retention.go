package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/audit"
	"golang.org/x/sync/errgroup"
)

type retentionService struct {
	repo audit.AuditRepository
	now  func() time.Time
}

// NewRetentionService returns the audit purge and status service. now may be nil.
func NewRetentionService(repo audit.AuditRepository, now func() time.Time) audit.RetentionService {
	if now == nil {
		now = time.Now
	}
	return &retentionService{repo: repo, now: now}
}

// Purge implements audit.RetentionService. Every batch commits on its own, so
// a cancelled or failed run keeps what was already deleted.
func (s *retentionService) Purge(ctx context.Context, retentionDays, batchSize int) (audit.PurgeResult, error) {
	if batchSize <= 0 {
		return audit.PurgeResult{}, audit.ErrInvalidBatchSize
	}
	if retentionDays <= 0 {
		return audit.PurgeResult{}, audit.ErrInvalidRetentionDays
	}

	result := audit.PurgeResult{Cutoff: s.now().AddDate(0, 0, -retentionDays)}
	slog.Info("Audit retention: purge started", "cutoff", result.Cutoff, "retention_days", retentionDays, "batch_size", batchSize)

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		deleted, err := s.repo.DeleteOlderThan(ctx, result.Cutoff, batchSize)
		if err != nil {
			return result, fmt.Errorf("delete batch %d: %w", result.Batches+1, err)
		}

		result.Batches++
		result.Deleted += deleted
		slog.Info("Audit retention: batch deleted", "batch", result.Batches, "deleted", deleted, "total_deleted", result.Deleted)

		if deleted < int64(batchSize) {
			break
		}
	}

	slog.Info("Audit retention: purge completed", "total_deleted", result.Deleted, "batches", result.Batches)
	return result, nil
}

// Status implements audit.RetentionService.
func (s *retentionService) Status(ctx context.Context) (audit.RetentionStatus, error) {
	var status audit.RetentionStatus

	now := s.now()
	twoMonthsAgo := now.AddDate(0, -2, 0)
	sixMonthsAgo := now.AddDate(0, -6, 0)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, err := s.repo.Count(gctx, nil)
		if err != nil {
			return fmt.Errorf("count total: %w", err)
		}
		status.TotalRecords = total
		return nil
	})

	g.Go(func() error {
		recent, err := s.repo.Count(gctx, &twoMonthsAgo)
		if err != nil {
			return fmt.Errorf("count last 2 months: %w", err)
		}
		status.Last2Months = recent
		return nil
	})

	g.Go(func() error {
		recent, err := s.repo.Count(gctx, &sixMonthsAgo)
		if err != nil {
			return fmt.Errorf("count last 6 months: %w", err)
		}
		status.Last6Months = recent
		return nil
	})

	g.Go(func() error {
		oldest, newest, err := s.repo.Bounds(gctx)
		if err != nil {
			return fmt.Errorf("get bounds: %w", err)
		}
		status.Oldest = oldest
		status.Newest = newest
		return nil
	})

	if err := g.Wait(); err != nil {
		return audit.RetentionStatus{}, err
	}

	return status, nil
}
