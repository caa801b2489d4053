package aim

import (
	"context"
	"time"
)

// AimRepository reads daily aims. Aims are written by the task subsystem, never by this service.
type AimRepository interface {
	// GetByEmployeeAndDate returns nil when the employee has no aim for the day.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*DailyAim, error)
}
