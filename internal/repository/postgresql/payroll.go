package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== SALARY PROFILES ==========

const salaryProfileColumns = `
	employee_id, base_salary, currency, pay_type,
	housing_allowance, transport_allowance, medical_allowance, other_allowance,
	tax_percent, fixed_deductions,
	probation_start, probation_end,
	bank_name, bank_account_name, bank_account_number,
	created_at, updated_at`

func scanSalaryProfile(row pgx.Row) (payroll.SalaryProfile, error) {
	var (
		p                                payroll.SalaryProfile
		fixedBytes                       []byte
		bankName, accountName, accountNo *string
	)
	err := row.Scan(
		&p.EmployeeID, &p.BaseSalary, &p.Currency, &p.PayType,
		&p.Allowances.Housing, &p.Allowances.Transport, &p.Allowances.Medical, &p.Allowances.Other,
		&p.DeductionRules.TaxPercent, &fixedBytes,
		&p.ProbationStart, &p.ProbationEnd,
		&bankName, &accountName, &accountNo,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return payroll.SalaryProfile{}, err
	}

	if len(fixedBytes) > 0 {
		if err := json.Unmarshal(fixedBytes, &p.DeductionRules.Fixed); err != nil {
			return payroll.SalaryProfile{}, fmt.Errorf("failed to decode fixed deductions: %w", err)
		}
	}
	if accountNo != nil {
		p.BankDetails = &payroll.BankDetails{AccountNumber: *accountNo}
		if bankName != nil {
			p.BankDetails.BankName = *bankName
		}
		if accountName != nil {
			p.BankDetails.AccountName = *accountName
		}
	}
	return p, nil
}

func (r *payrollRepository) GetProfile(ctx context.Context, employeeID string) (payroll.SalaryProfile, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + salaryProfileColumns + `
		FROM salary_profiles
		WHERE employee_id = $1
	`

	p, err := scanSalaryProfile(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryProfile{}, payroll.ErrSalaryNotConfigured
		}
		return payroll.SalaryProfile{}, fmt.Errorf("failed to get salary profile: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) UpsertProfile(ctx context.Context, profile payroll.SalaryProfile) (payroll.SalaryProfile, error) {
	q := GetQuerier(ctx, r.db)

	fixed := profile.DeductionRules.Fixed
	if fixed == nil {
		fixed = map[string]decimal.Decimal{}
	}
	fixedJSON, err := json.Marshal(fixed)
	if err != nil {
		return payroll.SalaryProfile{}, fmt.Errorf("failed to encode fixed deductions: %w", err)
	}

	var bankName, accountName, accountNo *string
	if profile.BankDetails != nil {
		bankName = &profile.BankDetails.BankName
		accountName = &profile.BankDetails.AccountName
		accountNo = &profile.BankDetails.AccountNumber
	}

	query := `
		INSERT INTO salary_profiles (
			employee_id, base_salary, currency, pay_type,
			housing_allowance, transport_allowance, medical_allowance, other_allowance,
			tax_percent, fixed_deductions,
			probation_start, probation_end,
			bank_name, bank_account_name, bank_account_number
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (employee_id) DO UPDATE SET
			base_salary = EXCLUDED.base_salary,
			currency = EXCLUDED.currency,
			pay_type = EXCLUDED.pay_type,
			housing_allowance = EXCLUDED.housing_allowance,
			transport_allowance = EXCLUDED.transport_allowance,
			medical_allowance = EXCLUDED.medical_allowance,
			other_allowance = EXCLUDED.other_allowance,
			tax_percent = EXCLUDED.tax_percent,
			fixed_deductions = EXCLUDED.fixed_deductions,
			probation_start = EXCLUDED.probation_start,
			probation_end = EXCLUDED.probation_end,
			bank_name = EXCLUDED.bank_name,
			bank_account_name = EXCLUDED.bank_account_name,
			bank_account_number = EXCLUDED.bank_account_number,
			updated_at = NOW()
		RETURNING ` + salaryProfileColumns

	saved, err := scanSalaryProfile(q.QueryRow(ctx, query,
		profile.EmployeeID, profile.BaseSalary, profile.Currency, profile.PayType,
		profile.Allowances.Housing, profile.Allowances.Transport, profile.Allowances.Medical, profile.Allowances.Other,
		profile.DeductionRules.TaxPercent, fixedJSON,
		profile.ProbationStart, profile.ProbationEnd,
		bankName, accountName, accountNo,
	))
	if err != nil {
		return payroll.SalaryProfile{}, fmt.Errorf("failed to upsert salary profile: %w", err)
	}
	return saved, nil
}

func (r *payrollRepository) ListProfiledEmployeeIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT employee_id FROM salary_profiles ORDER BY employee_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary profiles: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating salary profiles: %w", err)
	}
	return ids, nil
}

// ========== ADJUSTMENTS ==========

func (r *payrollRepository) CreateAdjustment(ctx context.Context, adjustment payroll.SalaryAdjustment) (payroll.SalaryAdjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_adjustments (
			id, employee_id, type, amount, percentage, effective_date, recurring, description
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		adjustment.ID,
		adjustment.EmployeeID,
		adjustment.Type,
		adjustment.Amount,
		adjustment.Percentage,
		adjustment.EffectiveDate,
		adjustment.Recurring,
		adjustment.Description,
	).Scan(&adjustment.CreatedAt)
	if err != nil {
		return payroll.SalaryAdjustment{}, fmt.Errorf("failed to create salary adjustment: %w", err)
	}

	return adjustment, nil
}

func (r *payrollRepository) ListAdjustments(ctx context.Context, employeeID string, until time.Time) ([]payroll.SalaryAdjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, type, amount, percentage, effective_date, recurring, description, created_at
		FROM salary_adjustments
		WHERE employee_id = $1
		  AND effective_date <= $2
		ORDER BY effective_date ASC, created_at ASC
	`

	rows, err := q.Query(ctx, query, employeeID, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []payroll.SalaryAdjustment
	for rows.Next() {
		var a payroll.SalaryAdjustment
		if err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.Type, &a.Amount, &a.Percentage,
			&a.EffectiveDate, &a.Recurring, &a.Description, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan salary adjustment: %w", err)
		}
		adjustments = append(adjustments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating salary adjustments: %w", err)
	}

	return adjustments, nil
}

// ========== WORKING DAYS ==========

func (r *payrollRepository) GetWorkingDays(ctx context.Context, month, year int) (*payroll.WorkingDaysConfig, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT month, year, working_days, holidays, updated_at
		FROM working_days_configs
		WHERE month = $1 AND year = $2
	`

	var c payroll.WorkingDaysConfig
	err := q.QueryRow(ctx, query, month, year).Scan(&c.Month, &c.Year, &c.WorkingDays, &c.Holidays, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get working days configuration: %w", err)
	}
	return &c, nil
}

func (r *payrollRepository) UpsertWorkingDays(ctx context.Context, config payroll.WorkingDaysConfig) (payroll.WorkingDaysConfig, error) {
	q := GetQuerier(ctx, r.db)

	holidays := config.Holidays
	if holidays == nil {
		holidays = []time.Time{}
	}

	query := `
		INSERT INTO working_days_configs (month, year, working_days, holidays)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (month, year) DO UPDATE SET
			working_days = EXCLUDED.working_days,
			holidays = EXCLUDED.holidays,
			updated_at = NOW()
		RETURNING month, year, working_days, holidays, updated_at
	`

	var c payroll.WorkingDaysConfig
	err := q.QueryRow(ctx, query, config.Month, config.Year, config.WorkingDays, holidays).
		Scan(&c.Month, &c.Year, &c.WorkingDays, &c.Holidays, &c.UpdatedAt)
	if err != nil {
		return payroll.WorkingDaysConfig{}, fmt.Errorf("failed to upsert working days configuration: %w", err)
	}
	return c, nil
}
