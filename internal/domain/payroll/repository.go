package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access for salary profiles, the adjustment
// ledger and working-days configuration.
type PayrollRepository interface {
	// GetProfile returns ErrSalaryNotConfigured when the employee has no profile
	GetProfile(ctx context.Context, employeeID string) (SalaryProfile, error)
	UpsertProfile(ctx context.Context, profile SalaryProfile) (SalaryProfile, error)
	ListProfiledEmployeeIDs(ctx context.Context) ([]string, error)

	// Adjustments are append-only
	CreateAdjustment(ctx context.Context, adjustment SalaryAdjustment) (SalaryAdjustment, error)
	// ListAdjustments returns adjustments effective on or before until, oldest first
	ListAdjustments(ctx context.Context, employeeID string, until time.Time) ([]SalaryAdjustment, error)

	// GetWorkingDays returns nil when (month, year) is not configured
	GetWorkingDays(ctx context.Context, month, year int) (*WorkingDaysConfig, error)
	UpsertWorkingDays(ctx context.Context, config WorkingDaysConfig) (WorkingDaysConfig, error)
}
