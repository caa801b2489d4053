package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PayrollService computes pay periods and manages the salary inputs
type PayrollService interface {
	// CalculateSalary computes one employee's pay for a month. Nothing is stored.
	CalculateSalary(ctx context.Context, req CalculateSalaryRequest) (PayPeriodResultResponse, error)

	// CalculatePayroll computes many employees in parallel; missing profiles are
	// reported per employee instead of failing the batch.
	CalculatePayroll(ctx context.Context, req CalculatePayrollRequest) (CalculatePayrollResponse, error)

	SetWorkingDaysConfig(ctx context.Context, req SetWorkingDaysRequest) (WorkingDaysResponse, error)

	SetSalaryProfile(ctx context.Context, req SetSalaryProfileRequest) (SalaryProfileResponse, error)
	GetSalaryProfile(ctx context.Context, employeeID string) (SalaryProfileResponse, error)

	AddAdjustment(ctx context.Context, req AddAdjustmentRequest) (AdjustmentResponse, error)
	ListAdjustments(ctx context.Context, employeeID string) ([]AdjustmentResponse, error)

	// EstimateEarnings prices worked hours at the employee's hourly-equivalent rate
	EstimateEarnings(ctx context.Context, employeeID string, at time.Time, hours float64) (decimal.Decimal, string, error)
}
