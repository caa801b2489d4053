package worksession

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/config"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/aim"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/worksession"
	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	officeLat = -6.2
	officeLng = 106.816666
	employee  = "emp-1"
)

var dayStart = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc        *WorkSessionServiceImpl
	repo       *memorySessionRepo
	aims       *memoryAimRepo
	attendance *recordingAttendance
	clock      *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{
		App:        config.AppConfig{Timezone: "UTC"},
		Office:     config.OfficeConfig{Latitude: officeLat, Longitude: officeLng, RadiusMeters: 500},
		Attendance: config.AttendanceConfig{DefaultTargetHours: 8},
	}

	repo := newMemorySessionRepo()
	aims := &memoryAimRepo{aims: map[string]aim.DailyAim{}}
	att := &recordingAttendance{}
	clock := &fakeClock{t: dayStart}

	svc := NewWorkSessionService(
		snapshotTransactor{repo: repo},
		repo,
		aims,
		att,
		hourlyEstimator{rate: decimal.NewFromInt(50000)},
		cfg,
	).(*WorkSessionServiceImpl)
	svc.now = clock.Now

	return &fixture{svc: svc, repo: repo, aims: aims, attendance: att, clock: clock}
}

func (f *fixture) completeAim(status aim.CompletionStatus, comment string, progress *float64) {
	f.aims.aims[sessionKey(employee, worksession.NormalizeDate(dayStart))] = aim.DailyAim{
		EmployeeID:         employee,
		Date:               worksession.NormalizeDate(dayStart),
		CompletionStatus:   status,
		CompletionComment:  comment,
		ProgressPercentage: progress,
	}
}

func ptr[T any](v T) *T { return &v }

func officeStart() worksession.StartDayRequest {
	return worksession.StartDayRequest{
		EmployeeID:   employee,
		Latitude:     ptr(officeLat),
		Longitude:    ptr(officeLng + 0.001),
		Accuracy:     ptr(10.0),
		WorkLocation: "Office",
	}
}

func TestStartDay_OfficeInsidePerimeter(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.StartDay(context.Background(), officeStart())
	require.NoError(t, err)

	assert.Equal(t, "active", resp.Session.Status)
	assert.Equal(t, "2025-03-10", resp.Session.Date)
	assert.Equal(t, 8.0, resp.Session.TargetHours)
	assert.NotEmpty(t, resp.Session.ID)
	require.NotNil(t, resp.Session.StartLocation)
	assert.Equal(t, officeLat, resp.Session.StartLocation.Latitude)
	assert.Len(t, f.attendance.synced, 1)
}

func TestStartDay_PerimeterDependsOnWorkLocation(t *testing.T) {
	farAway := func(location string) worksession.StartDayRequest {
		// roughly 5 km south of the office
		return worksession.StartDayRequest{
			EmployeeID:   employee,
			Latitude:     ptr(officeLat - 0.045),
			Longitude:    ptr(officeLng),
			WorkLocation: location,
		}
	}

	t.Run("office is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.StartDay(context.Background(), farAway("Office"))
		assert.ErrorIs(t, err, worksession.ErrLocationTooFar)

		today, err := f.svc.GetTodaySession(context.Background(), employee)
		require.NoError(t, err)
		assert.Nil(t, today)
	})

	for _, location := range []string{"Home", "Remote"} {
		t.Run(location+" is accepted", func(t *testing.T) {
			f := newFixture(t)
			resp, err := f.svc.StartDay(context.Background(), farAway(location))
			require.NoError(t, err)
			assert.Equal(t, location, resp.Session.WorkLocation)
		})
	}
}

func TestStartDay_MissingLocation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.StartDay(context.Background(), worksession.StartDayRequest{
		EmployeeID:   employee,
		WorkLocation: "Office",
	})
	assert.ErrorIs(t, err, worksession.ErrLocationUnavailable)

	resp, err := f.svc.StartDay(context.Background(), worksession.StartDayRequest{
		EmployeeID:   employee,
		WorkLocation: "Home",
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Session.StartLocation)
}

func TestStartDay_AlreadyStartedRegardlessOfStatus(t *testing.T) {
	transitions := map[string]func(f *fixture){
		"active": func(f *fixture) {},
		"paused": func(f *fixture) {
			_, err := f.svc.PauseSession(context.Background(), employee)
			require.NoError(t, err)
		},
		"completed": func(f *fixture) {
			f.completeAim(aim.CompletionCompleted, "shipped", ptr(100.0))
			_, err := f.svc.EndDay(context.Background(), worksession.EndDayRequest{EmployeeID: employee})
			require.NoError(t, err)
		},
	}

	for status, transition := range transitions {
		t.Run(status, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.StartDay(context.Background(), officeStart())
			require.NoError(t, err)

			f.clock.Advance(time.Hour)
			transition(f)
			f.clock.Advance(time.Hour)

			_, err = f.svc.StartDay(context.Background(), officeStart())
			assert.ErrorIs(t, err, worksession.ErrDayAlreadyStarted)
		})
	}
}

func TestStartDay_Validation(t *testing.T) {
	f := newFixture(t)

	req := officeStart()
	req.TargetHours = ptr(13.0)
	_, err := f.svc.StartDay(context.Background(), req)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "target_hours")
	assert.Empty(t, f.repo.sessions)
}

func TestStartDay_AttendanceFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.attendance.err = errors.New("attendance store down")

	_, err := f.svc.StartDay(context.Background(), officeStart())
	require.Error(t, err)
	assert.Empty(t, f.repo.sessions)
}

func TestPauseResume_AccumulatesBreak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.StartDay(ctx, officeStart())
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	paused, err := f.svc.PauseSession(ctx, employee)
	require.NoError(t, err)
	assert.Equal(t, "paused", paused.Status)

	_, err = f.svc.PauseSession(ctx, employee)
	assert.ErrorIs(t, err, worksession.ErrInvalidTransition)

	f.clock.Advance(30 * time.Minute)
	resumed, err := f.svc.ResumeSession(ctx, employee)
	require.NoError(t, err)
	assert.Equal(t, "active", resumed.Status)
	assert.Equal(t, 30.0, resumed.TotalBreakTime)
	assert.Equal(t, 60.0, resumed.ActualWorkDuration)

	_, err = f.svc.ResumeSession(ctx, employee)
	assert.ErrorIs(t, err, worksession.ErrInvalidTransition)
}

func TestPause_WithoutSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PauseSession(context.Background(), employee)
	assert.ErrorIs(t, err, worksession.ErrSessionNotFound)
}

func TestEndDay_AimPreconditions(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture)
		wantErr error
	}{
		{
			name:    "no aim record",
			setup:   func(f *fixture) {},
			wantErr: worksession.ErrProgressNotSet,
		},
		{
			name:    "pending aim",
			setup:   func(f *fixture) { f.completeAim(aim.CompletionPending, "still going", ptr(40.0)) },
			wantErr: worksession.ErrAimNotCompleted,
		},
		{
			name:    "pending aim without progress",
			setup:   func(f *fixture) { f.completeAim(aim.CompletionPending, "", nil) },
			wantErr: worksession.ErrAimNotCompleted,
		},
		{
			name:    "missing comment",
			setup:   func(f *fixture) { f.completeAim(aim.CompletionMVPAchieved, "   ", ptr(80.0)) },
			wantErr: worksession.ErrAimCommentMissing,
		},
		{
			name:    "missing progress",
			setup:   func(f *fixture) { f.completeAim(aim.CompletionCompleted, "done", nil) },
			wantErr: worksession.ErrProgressNotSet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			_, err := f.svc.StartDay(ctx, officeStart())
			require.NoError(t, err)

			tt.setup(f)
			f.clock.Advance(4 * time.Hour)

			_, err = f.svc.EndDay(ctx, worksession.EndDayRequest{EmployeeID: employee})
			assert.ErrorIs(t, err, tt.wantErr)

			today, err := f.svc.GetTodaySession(ctx, employee)
			require.NoError(t, err)
			require.NotNil(t, today)
			assert.Equal(t, "active", today.Status)
			assert.Nil(t, today.EndTime)
		})
	}
}

func TestEndDay_SnapsShortSessionToOneMinute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.completeAim(aim.CompletionCompleted, "done", ptr(100.0))

	_, err := f.svc.StartDay(ctx, officeStart())
	require.NoError(t, err)

	f.clock.Advance(30 * time.Second)
	resp, err := f.svc.EndDay(ctx, worksession.EndDayRequest{EmployeeID: employee})
	require.NoError(t, err)

	stored := f.repo.sessions[sessionKey(employee, dayStart)]
	require.NotNil(t, stored.EndTime)
	assert.Equal(t, dayStart.Add(time.Minute), *stored.EndTime)
	assert.Equal(t, 1.0, resp.Session.ActualWorkDuration)
	assert.Equal(t, "completed", resp.Session.Status)
}

func TestEndDay_ClosesDanglingPauseAndPricesHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.completeAim(aim.CompletionCompleted, "done", ptr(100.0))

	_, err := f.svc.StartDay(ctx, officeStart())
	require.NoError(t, err)

	f.clock.Advance(8 * time.Hour)
	_, err = f.svc.PauseSession(ctx, employee)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	resp, err := f.svc.EndDay(ctx, worksession.EndDayRequest{
		EmployeeID: employee,
		Latitude:   ptr(officeLat),
		Longitude:  ptr(officeLng),
		Notes:      ptr("wrapped up"),
	})
	require.NoError(t, err)

	assert.Equal(t, 8.0, resp.TotalHours)
	assert.True(t, decimal.NewFromInt(400000).Equal(resp.EarnedAmount))
	assert.Equal(t, "IDR", resp.Currency)
	assert.Equal(t, 60.0, resp.Session.TotalBreakTime)
	assert.Equal(t, 100.0, resp.Session.CompletionPercentage)
	assert.Equal(t, 0.0, resp.Session.RemainingTime)
	assert.NotNil(t, resp.Session.EndLocation)
	assert.Equal(t, "wrapped up", *resp.Session.Notes)
	assert.Len(t, f.attendance.synced, 3)

	_, err = f.svc.EndDay(ctx, worksession.EndDayRequest{EmployeeID: employee})
	assert.ErrorIs(t, err, worksession.ErrSessionAlreadyCompleted)
}

func TestEndDay_WithoutSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.EndDay(context.Background(), worksession.EndDayRequest{EmployeeID: employee})
	assert.ErrorIs(t, err, worksession.ErrSessionNotFound)
}

func TestGetTodaySession_DerivedFieldsFollowClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.StartDay(ctx, officeStart())
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	first, err := f.svc.GetTodaySession(ctx, employee)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	second, err := f.svc.GetTodaySession(ctx, employee)
	require.NoError(t, err)

	assert.Equal(t, 120.0, first.ActualWorkDuration)
	assert.Equal(t, 25.0, first.CompletionPercentage)
	assert.Equal(t, 6.0, first.RemainingTime)
	assert.Equal(t, 240.0, second.ActualWorkDuration)
	assert.Greater(t, second.CompletionPercentage, first.CompletionPercentage)
}

func TestUpdateProductivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.StartDay(ctx, officeStart())
	require.NoError(t, err)
	f.clock.Advance(4 * time.Hour)

	resp, err := f.svc.UpdateProductivity(ctx, worksession.UpdateProductivityRequest{
		EmployeeID:      employee,
		KeystrokeCount:  2000,
		ActiveTime:      200,
		WorkRelatedTime: 180,
		ViolationCount:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, 81.08, resp.Productivity.Score)

	_, err = f.svc.UpdateProductivity(ctx, worksession.UpdateProductivityRequest{
		EmployeeID: employee,
		IdleTime:   -1,
	})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestListSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.completeAim(aim.CompletionCompleted, "done", ptr(100.0))

	_, err := f.svc.StartDay(ctx, officeStart())
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	_, err = f.svc.EndDay(ctx, worksession.EndDayRequest{EmployeeID: employee})
	require.NoError(t, err)

	sessions, err := f.svc.ListSessions(ctx, worksession.SessionFilter{EmployeeID: employee})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "completed", sessions[0].Status)

	_, err = f.svc.ListSessions(ctx, worksession.SessionFilter{EmployeeID: employee, StartDate: ptr("10-03-2025")})
	assert.Error(t, err)
}
