package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/worksession"
	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const workSessionColumns = `
	id, employee_id, date, start_time, end_time, work_location,
	start_latitude, start_longitude, start_accuracy, start_address,
	end_latitude, end_longitude, end_accuracy, end_address,
	paused_at, resumed_at, target_hours, status, total_break_time,
	keystroke_count, mouse_activity, active_time, idle_time,
	violation_count, work_related_time, non_work_time,
	notes, created_at, updated_at`

type workSessionRepository struct {
	db *database.DB
}

func NewWorkSessionRepository(db *database.DB) worksession.WorkSessionRepository {
	return &workSessionRepository{db: db}
}

// locationColumns flattens a snapshot into nullable columns.
type locationColumns struct {
	Latitude  *float64
	Longitude *float64
	Accuracy  *float64
	Address   *string
}

func fromSnapshot(s *worksession.LocationSnapshot) locationColumns {
	if s == nil {
		return locationColumns{}
	}
	return locationColumns{Latitude: &s.Latitude, Longitude: &s.Longitude, Accuracy: s.Accuracy, Address: s.Address}
}

func (c locationColumns) snapshot() *worksession.LocationSnapshot {
	if c.Latitude == nil || c.Longitude == nil {
		return nil
	}
	return &worksession.LocationSnapshot{
		Latitude:  *c.Latitude,
		Longitude: *c.Longitude,
		Accuracy:  c.Accuracy,
		Address:   c.Address,
	}
}

func scanWorkSession(row pgx.Row) (worksession.WorkSession, error) {
	var (
		s          worksession.WorkSession
		start, end locationColumns
	)
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.Date, &s.StartTime, &s.EndTime, &s.WorkLocation,
		&start.Latitude, &start.Longitude, &start.Accuracy, &start.Address,
		&end.Latitude, &end.Longitude, &end.Accuracy, &end.Address,
		&s.PausedAt, &s.ResumedAt, &s.TargetHours, &s.Status, &s.TotalBreakTime,
		&s.Productivity.KeystrokeCount, &s.Productivity.MouseActivity,
		&s.Productivity.ActiveTime, &s.Productivity.IdleTime,
		&s.Productivity.ViolationCount, &s.Productivity.WorkRelatedTime, &s.Productivity.NonWorkTime,
		&s.Notes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return worksession.WorkSession{}, err
	}
	s.StartLocation = start.snapshot()
	s.EndLocation = end.snapshot()
	return s, nil
}

// Create implements worksession.WorkSessionRepository.
func (r *workSessionRepository) Create(ctx context.Context, session worksession.WorkSession) (worksession.WorkSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO work_sessions (
			id, employee_id, date, start_time, work_location,
			start_latitude, start_longitude, start_accuracy, start_address,
			target_hours, status, total_break_time
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		) RETURNING created_at, updated_at
	`

	start := fromSnapshot(session.StartLocation)
	err := q.QueryRow(ctx, query,
		session.ID,
		session.EmployeeID,
		session.Date,
		session.StartTime,
		session.WorkLocation,
		start.Latitude,
		start.Longitude,
		start.Accuracy,
		start.Address,
		session.TargetHours,
		session.Status,
		session.TotalBreakTime,
	).Scan(&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "work_sessions_employee_date_key") {
			return worksession.WorkSession{}, worksession.ErrDayAlreadyStarted
		}
		return worksession.WorkSession{}, fmt.Errorf("failed to create work session: %w", err)
	}

	return session, nil
}

// GetByEmployeeAndDate implements worksession.WorkSessionRepository.
func (r *workSessionRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*worksession.WorkSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workSessionColumns + `
		FROM work_sessions
		WHERE employee_id = $1 AND date = $2
		LIMIT 1
	`

	session, err := scanWorkSession(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get work session by employee and date: %w", err)
	}
	return &session, nil
}

// GetOpenSession implements worksession.WorkSessionRepository.
func (r *workSessionRepository) GetOpenSession(ctx context.Context, employeeID string) (*worksession.WorkSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workSessionColumns + `
		FROM work_sessions
		WHERE employee_id = $1
		  AND status <> $2
		ORDER BY start_time DESC
		LIMIT 1
	`

	session, err := scanWorkSession(q.QueryRow(ctx, query, employeeID, worksession.StatusCompleted))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open work session: %w", err)
	}
	return &session, nil
}

// Update implements worksession.WorkSessionRepository.
func (r *workSessionRepository) Update(ctx context.Context, session worksession.WorkSession) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE work_sessions SET
			end_time = $2,
			end_latitude = $3, end_longitude = $4, end_accuracy = $5, end_address = $6,
			paused_at = $7, resumed_at = $8,
			status = $9, total_break_time = $10,
			keystroke_count = $11, mouse_activity = $12, active_time = $13, idle_time = $14,
			violation_count = $15, work_related_time = $16, non_work_time = $17,
			notes = $18,
			updated_at = NOW()
		WHERE id = $1
	`

	end := fromSnapshot(session.EndLocation)
	tag, err := q.Exec(ctx, query,
		session.ID,
		session.EndTime,
		end.Latitude, end.Longitude, end.Accuracy, end.Address,
		session.PausedAt, session.ResumedAt,
		session.Status, session.TotalBreakTime,
		session.Productivity.KeystrokeCount, session.Productivity.MouseActivity,
		session.Productivity.ActiveTime, session.Productivity.IdleTime,
		session.Productivity.ViolationCount, session.Productivity.WorkRelatedTime, session.Productivity.NonWorkTime,
		session.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update work session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return worksession.ErrSessionNotFound
	}
	return nil
}

// ListByEmployee implements worksession.WorkSessionRepository.
func (r *workSessionRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]worksession.WorkSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workSessionColumns + `
		FROM work_sessions
		WHERE employee_id = $1
		  AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list work sessions: %w", err)
	}
	defer rows.Close()

	var sessions []worksession.WorkSession
	for rows.Next() {
		s, err := scanWorkSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating work sessions: %w", err)
	}

	return sessions, nil
}
