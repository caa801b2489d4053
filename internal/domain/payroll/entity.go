package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayType enum
type PayType string

const (
	PayTypeMonthly PayType = "Monthly"
	PayTypeAnnual  PayType = "Annual"
	PayTypeHourly  PayType = "Hourly"
)

// StandardDailyHours converts between hourly rates and daily wages.
const StandardDailyHours = 8

var monthsPerYear = decimal.NewFromInt(12)

type Allowances struct {
	Housing   decimal.Decimal
	Transport decimal.Decimal
	Medical   decimal.Decimal
	Other     decimal.Decimal
}

func (a Allowances) Total() decimal.Decimal {
	return a.Housing.Add(a.Transport).Add(a.Medical).Add(a.Other)
}

// DeductionRules are the statutory deductions of a profile. TaxPercent is
// applied to gross pay; Fixed amounts are taken every period.
type DeductionRules struct {
	TaxPercent decimal.Decimal
	Fixed      map[string]decimal.Decimal
}

func (d DeductionRules) FixedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range d.Fixed {
		total = total.Add(amount)
	}
	return total
}

type BankDetails struct {
	BankName      string
	AccountName   string
	AccountNumber string
}

// SalaryProfile is changed only by administrative action.
// BaseSalary is a monthly amount, an annual amount or an hourly rate depending on PayType.
type SalaryProfile struct {
	EmployeeID     string
	BaseSalary     decimal.Decimal
	Currency       string
	PayType        PayType
	Allowances     Allowances
	DeductionRules DeductionRules
	ProbationStart *time.Time
	ProbationEnd   *time.Time
	BankDetails    *BankDetails
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MonthlyBase is the base salary of a month with workingDays working days.
func (p SalaryProfile) MonthlyBase(workingDays int) decimal.Decimal {
	switch p.PayType {
	case PayTypeAnnual:
		return p.BaseSalary.Div(monthsPerYear)
	case PayTypeHourly:
		return p.BaseSalary.Mul(decimal.NewFromInt(StandardDailyHours * int64(workingDays)))
	default:
		return p.BaseSalary
	}
}

// DailyWage is the pay of one attended day.
func (p SalaryProfile) DailyWage(workingDays int) decimal.Decimal {
	if p.PayType == PayTypeHourly {
		return p.BaseSalary.Mul(decimal.NewFromInt(StandardDailyHours))
	}
	if workingDays <= 0 {
		return decimal.Zero
	}
	return p.MonthlyBase(workingDays).Div(decimal.NewFromInt(int64(workingDays)))
}

// HourlyRate is the pay of one worked hour.
func (p SalaryProfile) HourlyRate(workingDays int) decimal.Decimal {
	if p.PayType == PayTypeHourly {
		return p.BaseSalary
	}
	return p.DailyWage(workingDays).Div(decimal.NewFromInt(StandardDailyHours))
}

// OnProbation reports whether the probation window overlaps [from, to].
func (p SalaryProfile) OnProbation(from, to time.Time) bool {
	if p.ProbationStart == nil {
		return false
	}
	if p.ProbationStart.After(to) {
		return false
	}
	return p.ProbationEnd == nil || !p.ProbationEnd.Before(from)
}

// AdjustmentType enum
type AdjustmentType string

const (
	AdjustmentBonus      AdjustmentType = "Bonus"
	AdjustmentIncrement  AdjustmentType = "Increment"
	AdjustmentOvertime   AdjustmentType = "Overtime"
	AdjustmentDeduction  AdjustmentType = "Deduction"
	AdjustmentCommission AdjustmentType = "Commission"
)

var AdjustmentTypes = []string{
	string(AdjustmentBonus),
	string(AdjustmentIncrement),
	string(AdjustmentOvertime),
	string(AdjustmentDeduction),
	string(AdjustmentCommission),
}

func (t AdjustmentType) IsDeduction() bool {
	return t == AdjustmentDeduction
}

// SalaryAdjustment is an append-only ledger entry. Exactly one of Amount and
// Percentage is set; percentages apply to the monthly base.
type SalaryAdjustment struct {
	ID            string
	EmployeeID    string
	Type          AdjustmentType
	Amount        *decimal.Decimal
	Percentage    *decimal.Decimal
	EffectiveDate time.Time
	Recurring     bool
	Description   *string
	CreatedAt     time.Time
}

// AppliesTo reports whether the adjustment counts in the period [start, end].
// One-off entries must fall inside it; recurring ones apply from their effective date on.
func (a SalaryAdjustment) AppliesTo(start, end time.Time) bool {
	if a.EffectiveDate.After(end) {
		return false
	}
	return a.Recurring || !a.EffectiveDate.Before(start)
}

// Value is the adjustment amount for a month with the given base.
func (a SalaryAdjustment) Value(monthlyBase decimal.Decimal) decimal.Decimal {
	if a.Amount != nil {
		return *a.Amount
	}
	if a.Percentage != nil {
		return monthlyBase.Mul(*a.Percentage).Div(decimal.NewFromInt(100))
	}
	return decimal.Zero
}

// WorkingDaysConfig overrides the computed working days of a month.
type WorkingDaysConfig struct {
	Month       int
	Year        int
	WorkingDays int
	Holidays    []time.Time
	UpdatedAt   time.Time
}

// AttendanceSummary aggregates a period's attendance records
type AttendanceSummary struct {
	AttendedDays  int
	TotalHours    decimal.Decimal
	OvertimeHours decimal.Decimal
}

// AppliedAdjustment is an adjustment valued for one period.
type AppliedAdjustment struct {
	ID     string
	Type   AdjustmentType
	Amount decimal.Decimal
}

// PayPeriodResult is computed on demand and never stored.
type PayPeriodResult struct {
	EmployeeID      string
	Month           int
	Year            int
	Currency        string
	PayType         PayType
	WorkingDays     int
	AttendedDays    int
	TotalHours      decimal.Decimal
	OvertimeHours   decimal.Decimal
	AttendanceRate  decimal.Decimal
	OnProbation     bool
	MonthlyBase     decimal.Decimal
	DailyWage       decimal.Decimal
	BasePay         decimal.Decimal
	Allowances      decimal.Decimal
	Bonuses         decimal.Decimal
	OvertimePay     decimal.Decimal
	AttendanceBonus decimal.Decimal
	GrossPay        decimal.Decimal

	AdjustmentDeductions decimal.Decimal
	FixedDeductions      decimal.Decimal
	Tax                  decimal.Decimal
	AttendancePenalty    decimal.Decimal
	TotalDeductions      decimal.Decimal

	NetPay      decimal.Decimal
	Adjustments []AppliedAdjustment
}
