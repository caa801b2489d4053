package payroll

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ========== SALARY PROFILE DTOs ==========

type AllowancesDTO struct {
	Housing   decimal.Decimal `json:"housing"`
	Transport decimal.Decimal `json:"transport"`
	Medical   decimal.Decimal `json:"medical"`
	Other     decimal.Decimal `json:"other"`
}

type DeductionRulesDTO struct {
	TaxPercent decimal.Decimal            `json:"tax_percent"`
	Fixed      map[string]decimal.Decimal `json:"fixed,omitempty"`
}

type BankDetailsDTO struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
}

type SetSalaryProfileRequest struct {
	EmployeeID     string            `json:"-"`
	BaseSalary     decimal.Decimal   `json:"base_salary"`
	Currency       string            `json:"currency"`
	PayType        string            `json:"pay_type"`
	Allowances     AllowancesDTO     `json:"allowances"`
	DeductionRules DeductionRulesDTO `json:"deduction_rules"`
	ProbationStart *string           `json:"probation_start,omitempty"` // YYYY-MM-DD
	ProbationEnd   *string           `json:"probation_end,omitempty"`   // YYYY-MM-DD
	BankDetails    *BankDetailsDTO   `json:"bank_details,omitempty"`
}

func (r *SetSalaryProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !r.BaseSalary.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: "must be greater than zero"})
	}
	if !validator.IsValidCurrency(r.Currency) {
		errs = append(errs, validator.ValidationError{Field: "currency", Message: "must be a 3-letter ISO 4217 code"})
	}
	if !validator.IsInSlice(r.PayType, []string{string(PayTypeMonthly), string(PayTypeAnnual), string(PayTypeHourly)}) {
		errs = append(errs, validator.ValidationError{Field: "pay_type", Message: "must be one of: Monthly, Annual, Hourly"})
	}

	allowances := map[string]decimal.Decimal{
		"allowances.housing":   r.Allowances.Housing,
		"allowances.transport": r.Allowances.Transport,
		"allowances.medical":   r.Allowances.Medical,
		"allowances.other":     r.Allowances.Other,
	}
	for field, amount := range allowances {
		if amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}

	if r.DeductionRules.TaxPercent.IsNegative() || r.DeductionRules.TaxPercent.GreaterThan(hundred) {
		errs = append(errs, validator.ValidationError{Field: "deduction_rules.tax_percent", Message: "must be between 0 and 100"})
	}
	for name, amount := range r.DeductionRules.Fixed {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, validator.ValidationError{Field: "deduction_rules.fixed", Message: "deduction names must not be empty"})
		}
		if amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "deduction_rules.fixed." + name, Message: "must be non-negative"})
		}
	}

	var hasStart, hasEnd bool
	if r.ProbationStart != nil && *r.ProbationStart != "" {
		if _, hasStart = validator.IsValidDate(*r.ProbationStart); !hasStart {
			errs = append(errs, validator.ValidationError{Field: "probation_start", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if r.ProbationEnd != nil && *r.ProbationEnd != "" {
		if _, hasEnd = validator.IsValidDate(*r.ProbationEnd); !hasEnd {
			errs = append(errs, validator.ValidationError{Field: "probation_end", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if hasEnd && !hasStart {
		errs = append(errs, validator.ValidationError{Field: "probation_start", Message: "is required when probation_end is set"})
	}
	if hasStart && hasEnd && *r.ProbationEnd < *r.ProbationStart {
		errs = append(errs, validator.ValidationError{Field: "probation_end", Message: "must not be before probation_start"})
	}

	if r.BankDetails != nil && validator.IsEmpty(r.BankDetails.AccountNumber) {
		errs = append(errs, validator.ValidationError{Field: "bank_details.account_number", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SalaryProfileResponse struct {
	EmployeeID     string            `json:"employee_id"`
	BaseSalary     decimal.Decimal   `json:"base_salary"`
	Currency       string            `json:"currency"`
	PayType        string            `json:"pay_type"`
	Allowances     AllowancesDTO     `json:"allowances"`
	DeductionRules DeductionRulesDTO `json:"deduction_rules"`
	ProbationStart *string           `json:"probation_start,omitempty"`
	ProbationEnd   *string           `json:"probation_end,omitempty"`
	BankDetails    *BankDetailsDTO   `json:"bank_details,omitempty"`
	UpdatedAt      string            `json:"updated_at"`
}

// ========== ADJUSTMENT DTOs ==========

type AddAdjustmentRequest struct {
	EmployeeID    string           `json:"-"`
	Type          string           `json:"type"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Percentage    *decimal.Decimal `json:"percentage,omitempty"`
	EffectiveDate string           `json:"effective_date"` // YYYY-MM-DD
	Recurring     bool             `json:"recurring"`
	Description   *string          `json:"description,omitempty"`
}

func (r *AddAdjustmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !validator.IsInSlice(r.Type, AdjustmentTypes) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "must be one of: " + strings.Join(AdjustmentTypes, ", "),
		})
	}

	switch {
	case r.Amount == nil && r.Percentage == nil, r.Amount != nil && r.Percentage != nil:
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "exactly one of amount or percentage is required"})
	case r.Amount != nil && !r.Amount.IsPositive():
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be greater than zero"})
	case r.Percentage != nil && (!r.Percentage.IsPositive() || r.Percentage.GreaterThan(hundred)):
		errs = append(errs, validator.ValidationError{Field: "percentage", Message: "must be greater than 0 and at most 100"})
	}

	if _, ok := validator.IsValidDate(r.EffectiveDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_date", Message: "must be in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AdjustmentResponse struct {
	ID            string           `json:"id"`
	EmployeeID    string           `json:"employee_id"`
	Type          string           `json:"type"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Percentage    *decimal.Decimal `json:"percentage,omitempty"`
	EffectiveDate string           `json:"effective_date"`
	Recurring     bool             `json:"recurring"`
	Description   *string          `json:"description,omitempty"`
	CreatedAt     string           `json:"created_at"`
}

// ========== WORKING DAYS DTOs ==========

type SetWorkingDaysRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
	// WorkingDays defaults to the month's weekdays minus holidays
	WorkingDays *int     `json:"working_days,omitempty"`
	Holidays    []string `json:"holidays"` // YYYY-MM-DD
}

func (r *SetWorkingDaysRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidPeriod(r.Month, r.Year) {
		errs = append(errs, validator.ValidationError{Field: "period", Message: "month must be 1-12 and year 2000-9999"})
	}

	if r.WorkingDays != nil && (*r.WorkingDays < 1 || *r.WorkingDays > 31) {
		errs = append(errs, validator.ValidationError{Field: "working_days", Message: "must be between 1 and 31"})
	}

	for i, h := range r.Holidays {
		date, ok := validator.IsValidDate(h)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("holidays[%d]", i),
				Message: "must be in YYYY-MM-DD format",
			})
			continue
		}
		if int(date.Month()) != r.Month || date.Year() != r.Year {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("holidays[%d]", i),
				Message: "must fall inside the configured month",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type WorkingDaysResponse struct {
	Month       int      `json:"month"`
	Year        int      `json:"year"`
	WorkingDays int      `json:"working_days"`
	Holidays    []string `json:"holidays"`
}

// ========== CALCULATION DTOs ==========

type CalculateSalaryRequest struct {
	EmployeeID string `json:"employee_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	// WorkingDays overrides the stored configuration; zero is rejected as INVALID_WORKING_DAYS
	WorkingDays *int `json:"working_days,omitempty"`
}

func (r *CalculateSalaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !validator.IsValidPeriod(r.Month, r.Year) {
		errs = append(errs, validator.ValidationError{Field: "period", Message: "month must be 1-12 and year 2000-9999"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CalculatePayrollRequest struct {
	Month       int  `json:"month"`
	Year        int  `json:"year"`
	WorkingDays *int `json:"working_days,omitempty"`
	// EmployeeIDs defaults to every employee with a salary profile
	EmployeeIDs []string `json:"employee_ids,omitempty"`
}

func (r *CalculatePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidPeriod(r.Month, r.Year) {
		errs = append(errs, validator.ValidationError{Field: "period", Message: "month must be 1-12 and year 2000-9999"})
	}
	for i, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("employee_ids[%d]", i), Message: "must not be empty"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AppliedAdjustmentResponse struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

type PayPeriodResultResponse struct {
	EmployeeID      string          `json:"employee_id"`
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	Currency        string          `json:"currency"`
	PayType         string          `json:"pay_type"`
	WorkingDays     int             `json:"working_days"`
	AttendedDays    int             `json:"attended_days"`
	TotalHours      decimal.Decimal `json:"total_hours"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	AttendanceRate  decimal.Decimal `json:"attendance_rate"`
	OnProbation     bool            `json:"on_probation"`
	DailyWage       decimal.Decimal `json:"daily_wage"`
	BasePay         decimal.Decimal `json:"base_pay"`
	Allowances      decimal.Decimal `json:"allowances"`
	Bonuses         decimal.Decimal `json:"bonuses"`
	OvertimePay     decimal.Decimal `json:"overtime_pay"`
	AttendanceBonus decimal.Decimal `json:"attendance_bonus"`
	GrossPay        decimal.Decimal `json:"gross_pay"`

	AdjustmentDeductions decimal.Decimal `json:"adjustment_deductions"`
	FixedDeductions      decimal.Decimal `json:"fixed_deductions"`
	Tax                  decimal.Decimal `json:"tax"`
	AttendancePenalty    decimal.Decimal `json:"attendance_penalty"`
	TotalDeductions      decimal.Decimal `json:"total_deductions"`

	NetPay      decimal.Decimal             `json:"net_pay"`
	Adjustments []AppliedAdjustmentResponse `json:"adjustments"`
}

// PayrollFailure reports an employee the batch could not compute.
type PayrollFailure struct {
	EmployeeID string `json:"employee_id"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

type CalculatePayrollResponse struct {
	Month    int                       `json:"month"`
	Year     int                       `json:"year"`
	Results  []PayPeriodResultResponse `json:"results"`
	Failures []PayrollFailure          `json:"failures"`
}
