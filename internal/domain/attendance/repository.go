package attendance

import (
	"context"
	"time"
)

// AttendanceRepository stores derived attendance records, one per employee per day.
type AttendanceRepository interface {
	// Upsert inserts or replaces the record for (employee, date)
	Upsert(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error)

	// GetByEmployeeAndDate returns nil when no record exists
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*AttendanceRecord, error)

	// ListByEmployee returns records with date in [from, to], oldest first
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]AttendanceRecord, error)
}

// AttendanceEventRepository stores raw attendance events. Events are never updated.
type AttendanceEventRepository interface {
	Create(ctx context.Context, event AttendanceEvent) (AttendanceEvent, error)
	CreateBatch(ctx context.Context, events []AttendanceEvent) error

	ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]AttendanceEvent, error)

	// ListEmployeeIDsByDate returns every employee with an event or a work session on date.
	ListEmployeeIDsByDate(ctx context.Context, date time.Time) ([]string, error)
}
