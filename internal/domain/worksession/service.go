package worksession

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// WorkSessionService drives the daily work-session lifecycle
type WorkSessionService interface {
	// StartDay opens today's session. Office starts must be inside the office perimeter.
	StartDay(ctx context.Context, req StartDayRequest) (StartDayResponse, error)

	// EndDay completes the open session once today's aim is finished and commented.
	EndDay(ctx context.Context, req EndDayRequest) (EndDayResponse, error)

	PauseSession(ctx context.Context, employeeID string) (WorkSessionResponse, error)
	ResumeSession(ctx context.Context, employeeID string) (WorkSessionResponse, error)

	// GetTodaySession returns nil when the day has not been started
	GetTodaySession(ctx context.Context, employeeID string) (*WorkSessionResponse, error)

	UpdateProductivity(ctx context.Context, req UpdateProductivityRequest) (WorkSessionResponse, error)

	ListSessions(ctx context.Context, filter SessionFilter) ([]WorkSessionResponse, error)
}

// AttendanceRecorder re-derives the attendance record after a session changes.
// It is called inside the transaction that persists the session.
type AttendanceRecorder interface {
	SyncSession(ctx context.Context, session WorkSession) error
}

// EarningsEstimator prices worked hours for the end-of-day summary.
type EarningsEstimator interface {
	EstimateEarnings(ctx context.Context, employeeID string, at time.Time, hours float64) (decimal.Decimal, string, error)
}
