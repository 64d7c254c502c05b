package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/setting"
	"github.com/cmlabs-hris/hris-policy-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type settingRepository struct {
	db *database.DB
}

// ListActive implements setting.SettingRepository.
func (r *settingRepository) ListActive(ctx context.Context) ([]setting.Setting, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, key, value, value_type, category, is_active, created_at, updated_at
		FROM settings
		WHERE is_active = TRUE
		ORDER BY key
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active settings: %w", err)
	}
	defer rows.Close()

	var settings []setting.Setting
	for rows.Next() {
		var s setting.Setting
		if err := rows.Scan(&s.ID, &s.Key, &s.Value, &s.ValueType, &s.Category, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}

	return settings, nil
}

// GetActive implements setting.SettingRepository.
func (r *settingRepository) GetActive(ctx context.Context, key string) (setting.Setting, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, key, value, value_type, category, is_active, created_at, updated_at
		FROM settings
		WHERE key = $1 AND is_active = TRUE
		LIMIT 1
	`

	var s setting.Setting
	err := q.QueryRow(ctx, query, key).Scan(&s.ID, &s.Key, &s.Value, &s.ValueType, &s.Category, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return setting.Setting{}, setting.ErrSettingNotFound
		}
		return setting.Setting{}, fmt.Errorf("failed to get setting %s: %w", key, err)
	}

	return s, nil
}

func NewSettingRepository(db *database.DB) setting.SettingRepository {
	return &settingRepository{db: db}
}
