package payroll

import (
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/config"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	sixty   = decimal.NewFromInt(60)
)

// Policy holds the configurable parts of the salary computation. Attendance
// thresholds are rates in [0,1]; a zero threshold or percent disables the hook.
type Policy struct {
	TaxPercent                 decimal.Decimal
	OvertimeMultiplier         decimal.Decimal
	PerfectAttendanceThreshold decimal.Decimal
	PerfectAttendanceBonusPct  decimal.Decimal
	PoorAttendanceThreshold    decimal.Decimal
	PoorAttendancePenaltyPct   decimal.Decimal
}

func PolicyFromConfig(cfg config.PayrollConfig) Policy {
	return Policy{
		TaxPercent:                 decimal.NewFromFloat(cfg.TaxPercent),
		OvertimeMultiplier:         decimal.NewFromFloat(cfg.OvertimeMultiplier),
		PerfectAttendanceThreshold: decimal.NewFromFloat(cfg.PerfectAttendanceThreshold),
		PerfectAttendanceBonusPct:  decimal.NewFromFloat(cfg.PerfectAttendanceBonusPct),
		PoorAttendanceThreshold:    decimal.NewFromFloat(cfg.PoorAttendanceThreshold),
		PoorAttendancePenaltyPct:   decimal.NewFromFloat(cfg.PoorAttendancePenaltyPercent),
	}
}

// Calculator turns a profile, attendance and the adjustment ledger into a
// PayPeriodResult. It performs no I/O.
type Calculator struct {
	Policy   Policy
	Location *time.Location
}

// PeriodBounds returns the first and last day of (month, year) at midnight in loc.
func PeriodBounds(month, year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, -1)
	return start, end
}

// Calculate computes the pay of one employee for (month, year).
func (c Calculator) Calculate(
	profile payroll.SalaryProfile,
	month, year, workingDays int,
	summary payroll.AttendanceSummary,
	adjustments []payroll.SalaryAdjustment,
) (payroll.PayPeriodResult, error) {
	if workingDays <= 0 {
		return payroll.PayPeriodResult{}, payroll.ErrInvalidWorkingDays
	}

	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	periodStart, periodEnd := PeriodBounds(month, year, loc)

	result := payroll.PayPeriodResult{
		EmployeeID:    profile.EmployeeID,
		Month:         month,
		Year:          year,
		Currency:      profile.Currency,
		PayType:       profile.PayType,
		WorkingDays:   workingDays,
		AttendedDays:  summary.AttendedDays,
		TotalHours:    summary.TotalHours,
		OvertimeHours: summary.OvertimeHours,
		OnProbation:   profile.OnProbation(periodStart, periodEnd),
	}

	days := decimal.NewFromInt(int64(workingDays))
	result.MonthlyBase = profile.MonthlyBase(workingDays)
	result.DailyWage = profile.DailyWage(workingDays)

	// 1-2. base pay from attendance
	if profile.PayType == payroll.PayTypeHourly {
		result.BasePay = profile.BaseSalary.Mul(summary.TotalHours)
	} else {
		result.BasePay = result.DailyWage.Mul(decimal.NewFromInt(int64(summary.AttendedDays)))
	}

	result.AttendanceRate = decimal.Min(decimal.NewFromInt(int64(summary.AttendedDays)).Div(days), decimal.NewFromInt(1))

	// 3. gross
	result.Allowances = profile.Allowances.Total()
	result.Bonuses = decimal.Zero
	result.AdjustmentDeductions = decimal.Zero
	for _, adj := range adjustments {
		if !adj.AppliesTo(periodStart, periodEnd) {
			continue
		}
		value := adj.Value(result.MonthlyBase)
		if adj.Type.IsDeduction() {
			result.AdjustmentDeductions = result.AdjustmentDeductions.Add(value)
		} else {
			result.Bonuses = result.Bonuses.Add(value)
		}
		result.Adjustments = append(result.Adjustments, payroll.AppliedAdjustment{
			ID:     adj.ID,
			Type:   adj.Type,
			Amount: value,
		})
	}

	result.OvertimePay = decimal.Zero
	if c.Policy.OvertimeMultiplier.IsPositive() {
		result.OvertimePay = summary.OvertimeHours.
			Mul(profile.HourlyRate(workingDays)).
			Mul(c.Policy.OvertimeMultiplier)
	}

	result.AttendanceBonus = decimal.Zero
	if c.Policy.PerfectAttendanceThreshold.IsPositive() && c.Policy.PerfectAttendanceBonusPct.IsPositive() &&
		result.AttendanceRate.GreaterThanOrEqual(c.Policy.PerfectAttendanceThreshold) {
		result.AttendanceBonus = percentOf(result.MonthlyBase, c.Policy.PerfectAttendanceBonusPct)
	}

	result.GrossPay = result.BasePay.
		Add(result.Allowances).
		Add(result.Bonuses).
		Add(result.OvertimePay).
		Add(result.AttendanceBonus)

	// 4. deductions
	taxPercent := profile.DeductionRules.TaxPercent
	if !taxPercent.IsPositive() {
		taxPercent = c.Policy.TaxPercent
	}
	result.Tax = percentOf(result.GrossPay, taxPercent)
	result.FixedDeductions = profile.DeductionRules.FixedTotal()

	result.AttendancePenalty = decimal.Zero
	if c.Policy.PoorAttendanceThreshold.IsPositive() && c.Policy.PoorAttendancePenaltyPct.IsPositive() &&
		result.AttendanceRate.LessThan(c.Policy.PoorAttendanceThreshold) {
		result.AttendancePenalty = percentOf(result.MonthlyBase, c.Policy.PoorAttendancePenaltyPct)
	}

	result.TotalDeductions = result.AdjustmentDeductions.
		Add(result.FixedDeductions).
		Add(result.Tax).
		Add(result.AttendancePenalty)

	// 5. net
	result.NetPay = result.GrossPay.Sub(result.TotalDeductions).Round(2)

	return result, nil
}

func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	if !pct.IsPositive() {
		return decimal.Zero
	}
	return amount.Mul(pct).Div(hundred)
}

// SummarizeAttendance aggregates records into attended days and hours.
// Overtime is time beyond dailyTargetHours on each attended day.
func SummarizeAttendance(records []attendance.AttendanceRecord, dailyTargetHours float64) payroll.AttendanceSummary {
	summary := payroll.AttendanceSummary{
		TotalHours:    decimal.Zero,
		OvertimeHours: decimal.Zero,
	}
	target := decimal.NewFromFloat(dailyTargetHours)

	for _, r := range records {
		if !r.Attended() {
			continue
		}
		summary.AttendedDays++

		hours := decimal.NewFromFloat(r.WorkedMinutes).Div(sixty)
		summary.TotalHours = summary.TotalHours.Add(hours)
		if hours.GreaterThan(target) {
			summary.OvertimeHours = summary.OvertimeHours.Add(hours.Sub(target))
		}
	}

	summary.TotalHours = summary.TotalHours.Round(2)
	summary.OvertimeHours = summary.OvertimeHours.Round(2)
	return summary
}

// DefaultWorkingDays counts Monday-Friday days of the month that are not holidays.
func DefaultWorkingDays(month, year int, holidays []time.Time) int {
	off := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		off[h.Format("2006-01-02")] = true
	}

	count := 0
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	for d := start; d.Month() == start.Month(); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if off[d.Format("2006-01-02")] {
			continue
		}
		count++
	}
	return count
}
