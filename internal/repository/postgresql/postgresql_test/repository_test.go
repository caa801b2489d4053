package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/worksession"
	"github.com/cmlabs-hris/worksession-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newID(t *testing.T) string {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return id.String()
}

func TestWorkSessionRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewWorkSessionRepository(setup.DB)
	ctx := context.Background()

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	address := "Jl. Sudirman"
	session := worksession.NewWorkSession("emp-1", start, worksession.WorkLocationOffice, 8,
		&worksession.LocationSnapshot{Latitude: -6.2, Longitude: 106.8, Address: &address})
	session.ID = newID(t)

	created, err := repo.Create(ctx, session)
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	duplicate := session
	duplicate.ID = newID(t)
	_, err = repo.Create(ctx, duplicate)
	assert.ErrorIs(t, err, worksession.ErrDayAlreadyStarted)

	open, err := repo.GetOpenSession(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, open)
	require.NotNil(t, open.StartLocation)
	assert.Equal(t, "Jl. Sudirman", *open.StartLocation.Address)
	assert.Nil(t, open.EndLocation)

	require.NoError(t, open.Complete(start.Add(8*time.Hour), &worksession.LocationSnapshot{Latitude: -6.2, Longitude: 106.8}, nil))
	open.Productivity.KeystrokeCount = 1200
	require.NoError(t, repo.Update(ctx, *open))

	open, err = repo.GetOpenSession(ctx, "emp-1")
	require.NoError(t, err)
	assert.Nil(t, open)

	got, err := repo.GetByEmployeeAndDate(ctx, "emp-1", session.Date)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, worksession.StatusCompleted, got.Status)
	assert.Equal(t, 1200, got.Productivity.KeystrokeCount)
	require.NotNil(t, got.EndLocation)

	missing, err := repo.GetByEmployeeAndDate(ctx, "emp-2", session.Date)
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := repo.ListByEmployee(ctx, "emp-1", session.Date.AddDate(0, 0, -1), session.Date)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAttendanceRepositories(t *testing.T) {
	setup := NewTestDatabase(t)
	records := postgresql.NewAttendanceRepository(setup.DB)
	events := postgresql.NewAttendanceEventRepository(setup.DB)
	ctx := context.Background()

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	startAt := day.Add(9 * time.Hour)

	require.NoError(t, events.CreateBatch(ctx, []attendance.AttendanceEvent{
		{ID: newID(t), EmployeeID: "emp-1", Date: day, Kind: attendance.EventKindStart, OccurredAt: startAt, Source: attendance.SourceBiometric},
		{ID: newID(t), EmployeeID: "emp-2", Date: day, Kind: attendance.EventKindStart, OccurredAt: startAt, Source: attendance.SourceBiometric},
	}))

	listed, err := events.ListByEmployeeAndDate(ctx, "emp-1", day)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, attendance.SourceBiometric, listed[0].Source)

	ids, err := events.ListEmployeeIDsByDate(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, []string{"emp-1", "emp-2"}, ids)

	record := attendance.AttendanceRecord{
		ID:           newID(t),
		EmployeeID:   "emp-1",
		Date:         day,
		StartDayTime: &startAt,
		Status:       attendance.RecordStatusActive,
		Presence:     attendance.PresencePresent,
		Source:       attendance.SourceBiometric,
	}
	_, err = records.Upsert(ctx, record)
	require.NoError(t, err)

	endAt := startAt.Add(8 * time.Hour)
	record.EndDayTime = &endAt
	record.Status = attendance.RecordStatusCompleted
	record.WorkedMinutes = 480
	saved, err := records.Upsert(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, attendance.RecordStatusCompleted, saved.Status)

	all, err := records.ListByEmployee(ctx, "emp-1", day, day)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 480.0, all[0].WorkedMinutes)
}

func TestPayrollRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	ctx := context.Background()

	_, err := repo.GetProfile(ctx, "emp-1")
	assert.ErrorIs(t, err, payroll.ErrSalaryNotConfigured)

	profile, err := repo.UpsertProfile(ctx, payroll.SalaryProfile{
		EmployeeID: "emp-1",
		BaseSalary: decimal.NewFromInt(10000000),
		Currency:   "IDR",
		PayType:    payroll.PayTypeMonthly,
		DeductionRules: payroll.DeductionRules{
			TaxPercent: decimal.NewFromInt(5),
			Fixed:      map[string]decimal.Decimal{"bpjs": decimal.NewFromInt(100000)},
		},
		BankDetails: &payroll.BankDetails{BankName: "BCA", AccountName: "Jane", AccountNumber: "123"},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100000).Equal(profile.DeductionRules.FixedTotal()))
	require.NotNil(t, profile.BankDetails)

	amount := decimal.NewFromInt(500000)
	_, err = repo.CreateAdjustment(ctx, payroll.SalaryAdjustment{
		ID:            newID(t),
		EmployeeID:    "emp-1",
		Type:          payroll.AdjustmentBonus,
		Amount:        &amount,
		EffectiveDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	before, err := repo.ListAdjustments(ctx, "emp-1", time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, before)

	after, err := repo.ListAdjustments(ctx, "emp-1", time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Nil(t, after[0].Percentage)

	cfg, err := repo.GetWorkingDays(ctx, 3, 2025)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	_, err = repo.UpsertWorkingDays(ctx, payroll.WorkingDaysConfig{
		Month: 3, Year: 2025, WorkingDays: 20,
		Holidays: []time.Time{time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)

	cfg, err = repo.GetWorkingDays(ctx, 3, 2025)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 20, cfg.WorkingDays)
	assert.Len(t, cfg.Holidays, 1)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewWorkSessionRepository(setup.DB)
	transactor := postgresql.NewTransactor(setup.DB)
	ctx := context.Background()

	start := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	session := worksession.NewWorkSession("emp-1", start, worksession.WorkLocationHome, 8, nil)
	session.ID = newID(t)

	boom := errors.New("sync failed")
	err := transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.Create(ctx, session); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.GetByEmployeeAndDate(ctx, "emp-1", session.Date)
	require.NoError(t, err)
	assert.Nil(t, got)
}
