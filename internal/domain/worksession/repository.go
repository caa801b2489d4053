package worksession

import (
	"context"
	"time"
)

// WorkSessionRepository defines data access methods for work sessions.
// Sessions are never deleted.
type WorkSessionRepository interface {
	// Create inserts a new session. A second session for the same (employee, date)
	// returns ErrDayAlreadyStarted.
	Create(ctx context.Context, session WorkSession) (WorkSession, error)

	// GetByEmployeeAndDate returns nil when the employee has no session on date
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*WorkSession, error)

	// GetOpenSession returns the latest session that is not completed, or nil.
	GetOpenSession(ctx context.Context, employeeID string) (*WorkSession, error)

	Update(ctx context.Context, session WorkSession) error

	// ListByEmployee returns sessions with date in [from, to], oldest first
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]WorkSession, error)
}
