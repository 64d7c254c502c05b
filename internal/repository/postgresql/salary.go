package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/salary"
	"github.com/cmlabs-hris/hris-policy-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type salaryRepository struct {
	db *database.DB
}

// GetActiveByUserID implements salary.SalaryRepository.
func (r *salaryRepository) GetActiveByUserID(ctx context.Context, userID string) (salary.SalarySetting, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, base_salary, hourly_rate, overtime_multiplier, is_active, created_at, updated_at
		FROM salary_settings
		WHERE user_id = $1 AND is_active = TRUE
		LIMIT 1
	`

	var s salary.SalarySetting
	err := q.QueryRow(ctx, query, userID).Scan(
		&s.ID, &s.UserID, &s.BaseSalary, &s.HourlyRate, &s.OvertimeMultiplier, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.SalarySetting{}, salary.ErrSalarySettingNotFound
		}
		return salary.SalarySetting{}, fmt.Errorf("failed to get salary setting for user %s: %w", userID, err)
	}

	return s, nil
}

func NewSalaryRepository(db *database.DB) salary.SalaryRepository {
	return &salaryRepository{db: db}
}
