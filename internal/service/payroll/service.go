package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/config"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/worksession"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// endOfLedger bounds adjustment listings that should include every entry.
var endOfLedger = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

type PayrollServiceImpl struct {
	payrollRepo      payroll.PayrollRepository
	recordRepo       attendance.AttendanceRepository
	calculator       Calculator
	dailyTargetHours float64
	workers          int
	loc              *time.Location
}

// NewPayrollService returns the concrete type because it also serves as the
// worksession.EarningsEstimator.
func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	recordRepo attendance.AttendanceRepository,
	cfg *config.Config,
) *PayrollServiceImpl {
	workers := cfg.Payroll.Workers
	if workers < 1 {
		workers = 1
	}
	targetHours := cfg.Attendance.DefaultTargetHours
	if targetHours <= 0 {
		targetHours = worksession.DefaultTargetHours
	}
	return &PayrollServiceImpl{
		payrollRepo: payrollRepo,
		recordRepo:  recordRepo,
		calculator: Calculator{
			Policy:   PolicyFromConfig(cfg.Payroll),
			Location: cfg.Location(),
		},
		dailyTargetHours: targetHours,
		workers:          workers,
		loc:              cfg.Location(),
	}
}

var (
	_ payroll.PayrollService        = (*PayrollServiceImpl)(nil)
	_ worksession.EarningsEstimator = (*PayrollServiceImpl)(nil)
)

// CalculateSalary implements payroll.PayrollService.
func (s *PayrollServiceImpl) CalculateSalary(ctx context.Context, req payroll.CalculateSalaryRequest) (payroll.PayPeriodResultResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayPeriodResultResponse{}, err
	}

	workingDays, err := s.resolveWorkingDays(ctx, req.Month, req.Year, req.WorkingDays)
	if err != nil {
		return payroll.PayPeriodResultResponse{}, err
	}

	result, err := s.calculate(ctx, req.EmployeeID, req.Month, req.Year, workingDays)
	if err != nil {
		return payroll.PayPeriodResultResponse{}, err
	}
	return toResultResponse(result), nil
}

// CalculatePayroll implements payroll.PayrollService.
func (s *PayrollServiceImpl) CalculatePayroll(ctx context.Context, req payroll.CalculatePayrollRequest) (payroll.CalculatePayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.CalculatePayrollResponse{}, err
	}

	workingDays, err := s.resolveWorkingDays(ctx, req.Month, req.Year, req.WorkingDays)
	if err != nil {
		return payroll.CalculatePayrollResponse{}, err
	}

	employeeIDs := req.EmployeeIDs
	if len(employeeIDs) == 0 {
		if employeeIDs, err = s.payrollRepo.ListProfiledEmployeeIDs(ctx); err != nil {
			return payroll.CalculatePayrollResponse{}, fmt.Errorf("failed to list employees with salary profiles: %w", err)
		}
	}

	results := make([]*payroll.PayPeriodResult, len(employeeIDs))
	failures := make([]*payroll.PayrollFailure, len(employeeIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, employeeID := range employeeIDs {
		g.Go(func() error {
			result, err := s.calculate(gctx, employeeID, req.Month, req.Year, workingDays)
			if errors.Is(err, payroll.ErrSalaryNotConfigured) {
				failures[i] = &payroll.PayrollFailure{
					EmployeeID: employeeID,
					Code:       "SALARY_NOT_CONFIGURED",
					Message:    err.Error(),
				}
				return nil
			}
			if err != nil {
				return fmt.Errorf("employee %s: %w", employeeID, err)
			}
			results[i] = &result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return payroll.CalculatePayrollResponse{}, err
	}

	resp := payroll.CalculatePayrollResponse{
		Month:    req.Month,
		Year:     req.Year,
		Results:  make([]payroll.PayPeriodResultResponse, 0, len(employeeIDs)),
		Failures: []payroll.PayrollFailure{},
	}
	for i := range employeeIDs {
		if results[i] != nil {
			resp.Results = append(resp.Results, toResultResponse(*results[i]))
		}
		if failures[i] != nil {
			resp.Failures = append(resp.Failures, *failures[i])
		}
	}

	slog.Info("Payroll calculated",
		"month", req.Month,
		"year", req.Year,
		"employees", len(employeeIDs),
		"failures", len(resp.Failures),
	)
	return resp, nil
}

func (s *PayrollServiceImpl) calculate(ctx context.Context, employeeID string, month, year, workingDays int) (payroll.PayPeriodResult, error) {
	profile, err := s.payrollRepo.GetProfile(ctx, employeeID)
	if err != nil {
		return payroll.PayPeriodResult{}, err
	}

	start, end := PeriodBounds(month, year, s.loc)
	records, err := s.recordRepo.ListByEmployee(ctx, employeeID, start, end)
	if err != nil {
		return payroll.PayPeriodResult{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	adjustments, err := s.payrollRepo.ListAdjustments(ctx, employeeID, end)
	if err != nil {
		return payroll.PayPeriodResult{}, fmt.Errorf("failed to list salary adjustments: %w", err)
	}

	summary := SummarizeAttendance(records, s.dailyTargetHours)
	return s.calculator.Calculate(profile, month, year, workingDays, summary, adjustments)
}

// resolveWorkingDays prefers the explicit override, then the stored
// configuration, then the month's weekdays.
func (s *PayrollServiceImpl) resolveWorkingDays(ctx context.Context, month, year int, override *int) (int, error) {
	if override != nil {
		if *override <= 0 {
			return 0, payroll.ErrInvalidWorkingDays
		}
		return *override, nil
	}

	stored, err := s.payrollRepo.GetWorkingDays(ctx, month, year)
	if err != nil {
		return 0, fmt.Errorf("failed to get working days configuration: %w", err)
	}
	if stored != nil {
		if stored.WorkingDays <= 0 {
			return 0, payroll.ErrInvalidWorkingDays
		}
		return stored.WorkingDays, nil
	}

	days := DefaultWorkingDays(month, year, nil)
	if days <= 0 {
		return 0, payroll.ErrInvalidWorkingDays
	}
	return days, nil
}

// SetWorkingDaysConfig implements payroll.PayrollService.
func (s *PayrollServiceImpl) SetWorkingDaysConfig(ctx context.Context, req payroll.SetWorkingDaysRequest) (payroll.WorkingDaysResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.WorkingDaysResponse{}, err
	}

	holidays := make([]time.Time, 0, len(req.Holidays))
	for _, h := range req.Holidays {
		date, _ := time.ParseInLocation("2006-01-02", h, s.loc)
		holidays = append(holidays, date)
	}

	workingDays := DefaultWorkingDays(req.Month, req.Year, holidays)
	if req.WorkingDays != nil {
		workingDays = *req.WorkingDays
	}
	if workingDays <= 0 {
		return payroll.WorkingDaysResponse{}, payroll.ErrInvalidWorkingDays
	}

	saved, err := s.payrollRepo.UpsertWorkingDays(ctx, payroll.WorkingDaysConfig{
		Month:       req.Month,
		Year:        req.Year,
		WorkingDays: workingDays,
		Holidays:    holidays,
	})
	if err != nil {
		return payroll.WorkingDaysResponse{}, fmt.Errorf("failed to save working days configuration: %w", err)
	}

	slog.Info("Working days configured", "month", saved.Month, "year", saved.Year, "working_days", saved.WorkingDays)

	resp := payroll.WorkingDaysResponse{
		Month:       saved.Month,
		Year:        saved.Year,
		WorkingDays: saved.WorkingDays,
		Holidays:    make([]string, 0, len(saved.Holidays)),
	}
	for _, h := range saved.Holidays {
		resp.Holidays = append(resp.Holidays, h.Format("2006-01-02"))
	}
	return resp, nil
}

// SetSalaryProfile implements payroll.PayrollService.
func (s *PayrollServiceImpl) SetSalaryProfile(ctx context.Context, req payroll.SetSalaryProfileRequest) (payroll.SalaryProfileResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryProfileResponse{}, err
	}

	profile := payroll.SalaryProfile{
		EmployeeID: req.EmployeeID,
		BaseSalary: req.BaseSalary,
		Currency:   req.Currency,
		PayType:    payroll.PayType(req.PayType),
		Allowances: payroll.Allowances{
			Housing:   req.Allowances.Housing,
			Transport: req.Allowances.Transport,
			Medical:   req.Allowances.Medical,
			Other:     req.Allowances.Other,
		},
		DeductionRules: payroll.DeductionRules{
			TaxPercent: req.DeductionRules.TaxPercent,
			Fixed:      req.DeductionRules.Fixed,
		},
		ProbationStart: s.parseDatePtr(req.ProbationStart),
		ProbationEnd:   s.parseDatePtr(req.ProbationEnd),
	}
	if req.BankDetails != nil {
		profile.BankDetails = &payroll.BankDetails{
			BankName:      req.BankDetails.BankName,
			AccountName:   req.BankDetails.AccountName,
			AccountNumber: req.BankDetails.AccountNumber,
		}
	}

	saved, err := s.payrollRepo.UpsertProfile(ctx, profile)
	if err != nil {
		return payroll.SalaryProfileResponse{}, fmt.Errorf("failed to save salary profile: %w", err)
	}

	slog.Info("Salary profile updated", "employee_id", saved.EmployeeID, "pay_type", saved.PayType)
	return toProfileResponse(saved), nil
}

// GetSalaryProfile implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetSalaryProfile(ctx context.Context, employeeID string) (payroll.SalaryProfileResponse, error) {
	profile, err := s.payrollRepo.GetProfile(ctx, employeeID)
	if err != nil {
		return payroll.SalaryProfileResponse{}, err
	}
	return toProfileResponse(profile), nil
}

// AddAdjustment implements payroll.PayrollService.
func (s *PayrollServiceImpl) AddAdjustment(ctx context.Context, req payroll.AddAdjustmentRequest) (payroll.AdjustmentResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.AdjustmentResponse{}, err
	}

	if _, err := s.payrollRepo.GetProfile(ctx, req.EmployeeID); err != nil {
		return payroll.AdjustmentResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.AdjustmentResponse{}, fmt.Errorf("failed to generate adjustment id: %w", err)
	}
	effective, _ := time.ParseInLocation("2006-01-02", req.EffectiveDate, s.loc)

	created, err := s.payrollRepo.CreateAdjustment(ctx, payroll.SalaryAdjustment{
		ID:            id.String(),
		EmployeeID:    req.EmployeeID,
		Type:          payroll.AdjustmentType(req.Type),
		Amount:        req.Amount,
		Percentage:    req.Percentage,
		EffectiveDate: effective,
		Recurring:     req.Recurring,
		Description:   req.Description,
	})
	if err != nil {
		return payroll.AdjustmentResponse{}, fmt.Errorf("failed to create salary adjustment: %w", err)
	}

	slog.Info("Salary adjustment added", "employee_id", created.EmployeeID, "type", created.Type, "recurring", created.Recurring)
	return toAdjustmentResponse(created), nil
}

// ListAdjustments implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListAdjustments(ctx context.Context, employeeID string) ([]payroll.AdjustmentResponse, error) {
	adjustments, err := s.payrollRepo.ListAdjustments(ctx, employeeID, endOfLedger)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary adjustments: %w", err)
	}

	responses := make([]payroll.AdjustmentResponse, 0, len(adjustments))
	for _, a := range adjustments {
		responses = append(responses, toAdjustmentResponse(a))
	}
	return responses, nil
}

// EstimateEarnings implements worksession.EarningsEstimator.
// Employees without a profile earn zero rather than failing the caller.
func (s *PayrollServiceImpl) EstimateEarnings(ctx context.Context, employeeID string, at time.Time, hours float64) (decimal.Decimal, string, error) {
	profile, err := s.payrollRepo.GetProfile(ctx, employeeID)
	if errors.Is(err, payroll.ErrSalaryNotConfigured) {
		return decimal.Zero, "", nil
	}
	if err != nil {
		return decimal.Zero, "", err
	}

	local := at.In(s.loc)
	workingDays, err := s.resolveWorkingDays(ctx, int(local.Month()), local.Year(), nil)
	if err != nil {
		return decimal.Zero, "", err
	}

	earned := profile.HourlyRate(workingDays).Mul(decimal.NewFromFloat(hours)).Round(2)
	return earned, profile.Currency, nil
}

func (s *PayrollServiceImpl) parseDatePtr(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", *value, s.loc)
	if err != nil {
		return nil
	}
	return &t
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format("2006-01-02")
	return &formatted
}

func toProfileResponse(p payroll.SalaryProfile) payroll.SalaryProfileResponse {
	resp := payroll.SalaryProfileResponse{
		EmployeeID: p.EmployeeID,
		BaseSalary: p.BaseSalary,
		Currency:   p.Currency,
		PayType:    string(p.PayType),
		Allowances: payroll.AllowancesDTO{
			Housing:   p.Allowances.Housing,
			Transport: p.Allowances.Transport,
			Medical:   p.Allowances.Medical,
			Other:     p.Allowances.Other,
		},
		DeductionRules: payroll.DeductionRulesDTO{
			TaxPercent: p.DeductionRules.TaxPercent,
			Fixed:      p.DeductionRules.Fixed,
		},
		ProbationStart: formatDatePtr(p.ProbationStart),
		ProbationEnd:   formatDatePtr(p.ProbationEnd),
		UpdatedAt:      p.UpdatedAt.Format(time.RFC3339),
	}
	if p.BankDetails != nil {
		resp.BankDetails = &payroll.BankDetailsDTO{
			BankName:      p.BankDetails.BankName,
			AccountName:   p.BankDetails.AccountName,
			AccountNumber: p.BankDetails.AccountNumber,
		}
	}
	return resp
}

func toAdjustmentResponse(a payroll.SalaryAdjustment) payroll.AdjustmentResponse {
	return payroll.AdjustmentResponse{
		ID:            a.ID,
		EmployeeID:    a.EmployeeID,
		Type:          string(a.Type),
		Amount:        a.Amount,
		Percentage:    a.Percentage,
		EffectiveDate: a.EffectiveDate.Format("2006-01-02"),
		Recurring:     a.Recurring,
		Description:   a.Description,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
}

func toResultResponse(r payroll.PayPeriodResult) payroll.PayPeriodResultResponse {
	resp := payroll.PayPeriodResultResponse{
		EmployeeID:           r.EmployeeID,
		Month:                r.Month,
		Year:                 r.Year,
		Currency:             r.Currency,
		PayType:              string(r.PayType),
		WorkingDays:          r.WorkingDays,
		AttendedDays:         r.AttendedDays,
		TotalHours:           r.TotalHours,
		OvertimeHours:        r.OvertimeHours,
		AttendanceRate:       r.AttendanceRate.Round(4),
		OnProbation:          r.OnProbation,
		DailyWage:            r.DailyWage.Round(2),
		BasePay:              r.BasePay.Round(2),
		Allowances:           r.Allowances.Round(2),
		Bonuses:              r.Bonuses.Round(2),
		OvertimePay:          r.OvertimePay.Round(2),
		AttendanceBonus:      r.AttendanceBonus.Round(2),
		GrossPay:             r.GrossPay.Round(2),
		AdjustmentDeductions: r.AdjustmentDeductions.Round(2),
		FixedDeductions:      r.FixedDeductions.Round(2),
		Tax:                  r.Tax.Round(2),
		AttendancePenalty:    r.AttendancePenalty.Round(2),
		TotalDeductions:      r.TotalDeductions.Round(2),
		NetPay:               r.NetPay,
		Adjustments:          make([]payroll.AppliedAdjustmentResponse, 0, len(r.Adjustments)),
	}
	for _, a := range r.Adjustments {
		resp.Adjustments = append(resp.Adjustments, payroll.AppliedAdjustmentResponse{
			ID:     a.ID,
			Type:   string(a.Type),
			Amount: a.Amount.Round(2),
		})
	}
	return resp
}
