package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/request"
	"github.com/cmlabs-hris/hris-policy-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type requestRepository struct {
	db *database.DB
}

// ListStaleOvertime implements request.RequestRepository.
func (r *requestRepository) ListStaleOvertime(ctx context.Context, cutoff time.Time) ([]request.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, work_date, start_time, end_time, hours, reason,
			   status, reviewed_by, review_note, reviewed_at, created_at, updated_at
		FROM overtime_requests
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, request.StatusPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale overtime requests: %w", err)
	}
	defer rows.Close()

	var requests []request.OvertimeRequest
	for rows.Next() {
		var o request.OvertimeRequest
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.WorkDate, &o.StartTime, &o.EndTime, &o.Hours, &o.Reason,
			&o.Status, &o.ReviewedBy, &o.ReviewNote, &o.ReviewedAt, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan overtime request: %w", err)
		}
		requests = append(requests, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate overtime requests: %w", err)
	}

	return requests, nil
}

// ListStaleLeave implements request.RequestRepository.
func (r *requestRepository) ListStaleLeave(ctx context.Context, cutoff time.Time) ([]request.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, leave_type, start_date, end_date, total_days, reason,
			   status, reviewed_by, review_note, reviewed_at, created_at, updated_at
		FROM leave_requests
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, request.StatusPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale leave requests: %w", err)
	}
	defer rows.Close()

	var requests []request.LeaveRequest
	for rows.Next() {
		var l request.LeaveRequest
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.LeaveType, &l.StartDate, &l.EndDate, &l.TotalDays, &l.Reason,
			&l.Status, &l.ReviewedBy, &l.ReviewNote, &l.ReviewedAt, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave requests: %w", err)
	}

	return requests, nil
}

// ListStaleLate implements request.RequestRepository.
func (r *requestRepository) ListStaleLate(ctx context.Context, cutoff time.Time) ([]request.LateRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, request_date, expected_arrival, reason,
			   status, reviewed_by, review_note, reviewed_at, created_at, updated_at
		FROM late_requests
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, request.StatusPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale late requests: %w", err)
	}
	defer rows.Close()

	var requests []request.LateRequest
	for rows.Next() {
		var l request.LateRequest
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.RequestDate, &l.ExpectedArrival, &l.Reason,
			&l.Status, &l.ReviewedBy, &l.ReviewNote, &l.ReviewedAt, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan late request: %w", err)
		}
		requests = append(requests, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate late requests: %w", err)
	}

	return requests, nil
}

// SaveReview implements request.RequestRepository.
func (r *requestRepository) SaveReview(ctx context.Context, kind request.Kind, review request.Review) error {
	q := GetQuerier(ctx, r.db)

	table, err := requestTable(kind)
	if err != nil {
		return err
	}

	// Only pending rows move; a concurrent approval wins.
	query := `
		UPDATE ` + table + ` SET
			status = $2, reviewed_by = $3, review_note = $4, reviewed_at = $5, updated_at = $6
		WHERE id = $1 AND status = $7
	`

	result, err := q.Exec(ctx, query,
		review.ID, review.Status, review.ReviewedBy, review.ReviewNote, review.ReviewedAt, review.UpdatedAt,
		request.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to save %s request review %s: %w", kind, review.ID, err)
	}

	if result.RowsAffected() == 0 {
		return request.ErrRequestAlreadyProcessed
	}

	return nil
}

// FindLatestApprovedLate implements request.RequestRepository.
func (r *requestRepository) FindLatestApprovedLate(ctx context.Context, userID string, from, to time.Time) (*request.LateRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, request_date, expected_arrival, reason,
			   status, reviewed_by, review_note, reviewed_at, created_at, updated_at
		FROM late_requests
		WHERE user_id = $1
		  AND status = $2
		  AND request_date >= $3
		  AND request_date <= $4
		ORDER BY request_date DESC, created_at DESC
		LIMIT 1
	`

	var l request.LateRequest
	err := q.QueryRow(ctx, query, userID, request.StatusApproved, from, to).Scan(
		&l.ID, &l.UserID, &l.RequestDate, &l.ExpectedArrival, &l.Reason,
		&l.Status, &l.ReviewedBy, &l.ReviewNote, &l.ReviewedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find approved late request: %w", err)
	}

	return &l, nil
}

func requestTable(kind request.Kind) (string, error) {
	switch kind {
	case request.KindOvertime:
		return "overtime_requests", nil
	case request.KindLeave:
		return "leave_requests", nil
	case request.KindLate:
		return "late_requests", nil
	default:
		return "", fmt.Errorf("unknown request kind %q", kind)
	}
}

func NewRequestRepository(db *database.DB) request.RequestRepository {
	return &requestRepository{db: db}
}
