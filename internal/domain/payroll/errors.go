package payroll

import "errors"

var (
	ErrSalaryNotConfigured = errors.New("salary profile is not configured for this employee")
	ErrInvalidWorkingDays  = errors.New("working days must be greater than zero")
)
