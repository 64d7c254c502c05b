package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/audit"
	"github.com/cmlabs-hris/hris-policy-engine/internal/pkg/database"
)

type auditRepository struct {
	db *database.DB
}

// Insert implements audit.AuditRepository.
func (r *auditRepository) Insert(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO audit_entries (
			actor_id, action, entity_name, entity_id, old_value, new_value, description, metadata
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		) RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		entry.ActorID,
		entry.Action,
		entry.EntityName,
		entry.EntityID,
		entry.OldValue,
		entry.NewValue,
		entry.Description,
		entry.Metadata,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return audit.Entry{}, fmt.Errorf("failed to insert audit entry: %w", err)
	}

	return entry, nil
}

// DeleteOlderThan implements audit.AuditRepository.
func (r *auditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	q := GetQuerier(ctx, r.db)

	// Postgres has no DELETE ... LIMIT; bound the batch through the primary key.
	query := `
		DELETE FROM audit_entries
		WHERE id IN (
			SELECT id FROM audit_entries
			WHERE created_at < $1
			ORDER BY created_at
			LIMIT $2
		)
	`

	result, err := q.Exec(ctx, query, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit entries: %w", err)
	}

	return result.RowsAffected(), nil
}

// Count implements audit.AuditRepository.
func (r *auditRepository) Count(ctx context.Context, since *time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	var err error
	if since == nil {
		err = q.QueryRow(ctx, `SELECT COUNT(*) FROM audit_entries`).Scan(&count)
	} else {
		err = q.QueryRow(ctx, `SELECT COUNT(*) FROM audit_entries WHERE created_at >= $1`, *since).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	return count, nil
}

// Bounds implements audit.AuditRepository.
func (r *auditRepository) Bounds(ctx context.Context) (*time.Time, *time.Time, error) {
	q := GetQuerier(ctx, r.db)

	// MIN/MAX over zero rows yield NULL, scanned as nil.
	var oldest, newest *time.Time
	err := q.QueryRow(ctx, `SELECT MIN(created_at), MAX(created_at) FROM audit_entries`).Scan(&oldest, &newest)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get audit bounds: %w", err)
	}

	return oldest, newest, nil
}

func NewAuditRepository(db *database.DB) audit.AuditRepository {
	return &auditRepository{db: db}
}
