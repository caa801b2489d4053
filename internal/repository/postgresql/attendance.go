package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceRecordColumns = `
	id, employee_id, date, start_day_time, end_day_time, status, presence, source,
	has_discrepancy, discrepancy_minutes, worked_minutes, created_at, updated_at`

func scanAttendanceRecord(row pgx.Row) (attendance.AttendanceRecord, error) {
	var rec attendance.AttendanceRecord
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Date, &rec.StartDayTime, &rec.EndDayTime,
		&rec.Status, &rec.Presence, &rec.Source,
		&rec.HasDiscrepancy, &rec.DiscrepancyMinutes, &rec.WorkedMinutes,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// Upsert implements attendance.AttendanceRepository.
func (r *attendanceRepository) Upsert(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_records (
			id, employee_id, date, start_day_time, end_day_time, status, presence, source,
			has_discrepancy, discrepancy_minutes, worked_minutes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			start_day_time = EXCLUDED.start_day_time,
			end_day_time = EXCLUDED.end_day_time,
			status = EXCLUDED.status,
			presence = EXCLUDED.presence,
			source = EXCLUDED.source,
			has_discrepancy = EXCLUDED.has_discrepancy,
			discrepancy_minutes = EXCLUDED.discrepancy_minutes,
			worked_minutes = EXCLUDED.worked_minutes,
			updated_at = NOW()
		RETURNING ` + attendanceRecordColumns

	saved, err := scanAttendanceRecord(q.QueryRow(ctx, query,
		record.ID,
		record.EmployeeID,
		record.Date,
		record.StartDayTime,
		record.EndDayTime,
		record.Status,
		record.Presence,
		record.Source,
		record.HasDiscrepancy,
		record.DiscrepancyMinutes,
		record.WorkedMinutes,
	))
	if err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to upsert attendance record: %w", err)
	}

	return saved, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceRecordColumns + `
		FROM attendance_records
		WHERE employee_id = $1 AND date = $2
	`

	rec, err := scanAttendanceRecord(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return &rec, nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceRecordColumns + `
		FROM attendance_records
		WHERE employee_id = $1
		  AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendanceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance records: %w", err)
	}

	return records, nil
}

type attendanceEventRepository struct {
	db *database.DB
}

func NewAttendanceEventRepository(db *database.DB) attendance.AttendanceEventRepository {
	return &attendanceEventRepository{db: db}
}

// Create implements attendance.AttendanceEventRepository.
func (r *attendanceEventRepository) Create(ctx context.Context, event attendance.AttendanceEvent) (attendance.AttendanceEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_events (id, employee_id, date, kind, occurred_at, source, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		event.ID,
		event.EmployeeID,
		event.Date,
		event.Kind,
		event.OccurredAt,
		event.Source,
		event.Note,
	).Scan(&event.CreatedAt)
	if err != nil {
		return attendance.AttendanceEvent{}, fmt.Errorf("failed to create attendance event: %w", err)
	}

	return event, nil
}

// CreateBatch inserts events with a single multi-row statement
func (r *attendanceEventRepository) CreateBatch(ctx context.Context, events []attendance.AttendanceEvent) error {
	if len(events) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	valueStrings := make([]string, 0, len(events))
	valueArgs := make([]interface{}, 0, len(events)*7)

	for i, e := range events {
		base := i * 7
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
		))
		valueArgs = append(valueArgs,
			e.ID,
			e.EmployeeID,
			e.Date,
			string(e.Kind),
			e.OccurredAt,
			string(e.Source),
			e.Note,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO attendance_events (id, employee_id, date, kind, occurred_at, source, note)
		VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to batch create attendance events: %w", err)
	}

	return nil
}

// ListByEmployeeAndDate implements attendance.AttendanceEventRepository.
func (r *attendanceEventRepository) ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]attendance.AttendanceEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, date, kind, occurred_at, source, note, created_at
		FROM attendance_events
		WHERE employee_id = $1 AND date = $2
		ORDER BY created_at ASC, id ASC
	`

	rows, err := q.Query(ctx, query, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance events: %w", err)
	}
	defer rows.Close()

	var events []attendance.AttendanceEvent
	for rows.Next() {
		var e attendance.AttendanceEvent
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.Date, &e.Kind, &e.OccurredAt, &e.Source, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance events: %w", err)
	}

	return events, nil
}

// ListEmployeeIDsByDate implements attendance.AttendanceEventRepository.
func (r *attendanceEventRepository) ListEmployeeIDsByDate(ctx context.Context, date time.Time) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id FROM attendance_events WHERE date = $1
		UNION
		SELECT employee_id FROM work_sessions WHERE date = $1
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees with attendance: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employee ids: %w", err)
	}

	return ids, nil
}
