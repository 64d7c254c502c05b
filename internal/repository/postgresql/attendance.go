package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-policy-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type attendanceRepository struct {
	db *database.DB
}

const attendanceColumns = `
	id, user_id, work_date,
	check_in, check_out,
	check_in_latitude, check_in_longitude, check_in_address,
	check_out_latitude, check_out_longitude, check_out_address,
	total_hours, is_late, late_minutes, deduction_hours, deduction_amount, salary_multiplier,
	is_overtime_approved, approved_overtime_hours, has_overtime_request, overtime_request_id,
	has_late_request, late_request_id,
	created_at, updated_at`

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			user_id, work_date,
			check_in, check_in_latitude, check_in_longitude, check_in_address,
			total_hours, is_late, late_minutes, deduction_hours, deduction_amount, salary_multiplier
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.UserID,
		record.WorkDate,
		record.CheckIn,
		record.CheckInLatitude,
		record.CheckInLongitude,
		record.CheckInAddress,
		record.TotalHours,
		record.IsLate,
		record.LateMinutes,
		record.DeductionHours,
		record.DeductionAmount,
		record.SalaryMultiplier,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return attendance.AttendanceRecord{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return record, nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE user_id = $1
		  AND work_date = $2
		LIMIT 1
	`

	var att attendance.AttendanceRecord
	err := q.QueryRow(ctx, query, userID, date).Scan(
		&att.ID, &att.UserID, &att.WorkDate,
		&att.CheckIn, &att.CheckOut,
		&att.CheckInLatitude, &att.CheckInLongitude, &att.CheckInAddress,
		&att.CheckOutLatitude, &att.CheckOutLongitude, &att.CheckOutAddress,
		&att.TotalHours, &att.IsLate, &att.LateMinutes, &att.DeductionHours, &att.DeductionAmount, &att.SalaryMultiplier,
		&att.IsOvertimeApproved, &att.ApprovedOvertimeHours, &att.HasOvertimeRequest, &att.OvertimeRequestID,
		&att.HasLateRequest, &att.LateRequestID,
		&att.CreatedAt, &att.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by user and date: %w", err)
	}

	return &att, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, record attendance.AttendanceRecord) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records SET
			check_in = $2, check_out = $3,
			check_in_latitude = $4, check_in_longitude = $5, check_in_address = $6,
			check_out_latitude = $7, check_out_longitude = $8, check_out_address = $9,
			total_hours = $10, is_late = $11, late_minutes = $12,
			deduction_hours = $13, deduction_amount = $14, salary_multiplier = $15,
			is_overtime_approved = $16, approved_overtime_hours = $17,
			has_overtime_request = $18, overtime_request_id = $19,
			has_late_request = $20, late_request_id = $21,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query,
		record.ID,
		record.CheckIn, record.CheckOut,
		record.CheckInLatitude, record.CheckInLongitude, record.CheckInAddress,
		record.CheckOutLatitude, record.CheckOutLongitude, record.CheckOutAddress,
		record.TotalHours, record.IsLate, record.LateMinutes,
		record.DeductionHours, record.DeductionAmount, record.SalaryMultiplier,
		record.IsOvertimeApproved, record.ApprovedOvertimeHours,
		record.HasOvertimeRequest, record.OvertimeRequestID,
		record.HasLateRequest, record.LateRequestID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance %s: %w", record.ID, err)
	}

	if result.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
