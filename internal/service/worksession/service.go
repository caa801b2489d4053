package worksession

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/config"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/aim"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/worksession"
	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/geo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// locationTimeout bounds how long a start/end waits for a location.
const locationTimeout = 15 * time.Second

type WorkSessionServiceImpl struct {
	transactor  database.Transactor
	sessionRepo worksession.WorkSessionRepository
	aimRepo     aim.AimRepository
	attendance  worksession.AttendanceRecorder
	earnings    worksession.EarningsEstimator

	office        geo.Point
	radiusMeters  float64
	defaultTarget float64
	loc           *time.Location
	now           func() time.Time
}

func NewWorkSessionService(
	transactor database.Transactor,
	sessionRepo worksession.WorkSessionRepository,
	aimRepo aim.AimRepository,
	attendance worksession.AttendanceRecorder,
	earnings worksession.EarningsEstimator,
	cfg *config.Config,
) worksession.WorkSessionService {
	return &WorkSessionServiceImpl{
		transactor:    transactor,
		sessionRepo:   sessionRepo,
		aimRepo:       aimRepo,
		attendance:    attendance,
		earnings:      earnings,
		office:        geo.Point{Latitude: cfg.Office.Latitude, Longitude: cfg.Office.Longitude},
		radiusMeters:  cfg.Office.RadiusMeters,
		defaultTarget: cfg.Attendance.DefaultTargetHours,
		loc:           cfg.Location(),
		now:           time.Now,
	}
}

func (s *WorkSessionServiceImpl) clock() time.Time {
	return s.now().In(s.loc)
}

// StartDay implements worksession.WorkSessionService.
func (s *WorkSessionServiceImpl) StartDay(ctx context.Context, req worksession.StartDayRequest) (worksession.StartDayResponse, error) {
	if err := req.Validate(); err != nil {
		return worksession.StartDayResponse{}, err
	}
	now := s.clock()
	date := worksession.NormalizeDate(now)

	existing, err := s.sessionRepo.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
	if err != nil {
		return worksession.StartDayResponse{}, fmt.Errorf("failed to get today's session: %w", err)
	}
	if existing != nil {
		return worksession.StartDayResponse{}, worksession.ErrDayAlreadyStarted
	}

	workLocation := req.NormalizedWorkLocation()
	point := worksession.ResolveLocation(ctx, &req, locationTimeout)

	if workLocation.RequiresPerimeter() {
		if point == nil {
			return worksession.StartDayResponse{}, worksession.ErrLocationUnavailable
		}
		if !geo.IsWithinPerimeter(*point, s.office, s.radiusMeters) {
			slog.Info("Office start rejected outside perimeter",
				"employee_id", req.EmployeeID,
				"distance_meters", geo.DistanceMeters(*point, s.office),
				"radius_meters", s.radiusMeters,
			)
			return worksession.StartDayResponse{}, worksession.ErrLocationTooFar
		}
	}

	targetHours := s.defaultTarget
	if req.TargetHours != nil {
		targetHours = *req.TargetHours
	}

	session := worksession.NewWorkSession(req.EmployeeID, now, workLocation, targetHours, snapshot(point, req.Address))
	id, err := uuid.NewV7()
	if err != nil {
		return worksession.StartDayResponse{}, fmt.Errorf("failed to generate session id: %w", err)
	}
	session.ID = id.String()

	var created worksession.WorkSession
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.sessionRepo.Create(ctx, session)
		if err != nil {
			return err
		}
		return s.attendance.SyncSession(ctx, created)
	})
	if err != nil {
		return worksession.StartDayResponse{}, fmt.Errorf("failed to start work day: %w", err)
	}

	slog.Info("Work day started",
		"employee_id", created.EmployeeID,
		"session_id", created.ID,
		"work_location", created.WorkLocation,
	)

	return worksession.StartDayResponse{
		Session: s.toResponse(created, now),
		Message: "Work day started successfully",
	}, nil
}

// EndDay implements worksession.WorkSessionService.
func (s *WorkSessionServiceImpl) EndDay(ctx context.Context, req worksession.EndDayRequest) (worksession.EndDayResponse, error) {
	if err := req.Validate(); err != nil {
		return worksession.EndDayResponse{}, err
	}
	now := s.clock()

	session, err := s.currentSession(ctx, req.EmployeeID, now)
	if err != nil {
		return worksession.EndDayResponse{}, err
	}
	if session.Status == worksession.StatusCompleted {
		return worksession.EndDayResponse{}, worksession.ErrSessionAlreadyCompleted
	}

	if err := s.checkAim(ctx, session.EmployeeID, session.Date); err != nil {
		return worksession.EndDayResponse{}, err
	}

	point := worksession.ResolveLocation(ctx, &req, locationTimeout)
	if err := session.Complete(now, snapshot(point, req.Address), req.Notes); err != nil {
		return worksession.EndDayResponse{}, err
	}

	if err := s.persist(ctx, *session); err != nil {
		return worksession.EndDayResponse{}, fmt.Errorf("failed to end work day: %w", err)
	}

	totalHours := round2(session.ActualWorkDuration(now) / 60)

	earned, currency := decimal.Zero, ""
	if s.earnings != nil {
		earned, currency, err = s.earnings.EstimateEarnings(ctx, session.EmployeeID, session.Date, totalHours)
		if err != nil {
			slog.Warn("Failed to estimate earnings", "employee_id", session.EmployeeID, "error", err)
			earned, currency = decimal.Zero, ""
		}
	}

	slog.Info("Work day ended",
		"employee_id", session.EmployeeID,
		"session_id", session.ID,
		"total_hours", totalHours,
	)

	return worksession.EndDayResponse{
		TotalHours:   totalHours,
		EarnedAmount: earned,
		Currency:     currency,
		Session:      s.toResponse(*session, now),
	}, nil
}

// PauseSession implements worksession.WorkSessionService.
func (s *WorkSessionServiceImpl) PauseSession(ctx context.Context, employeeID string) (worksession.WorkSessionResponse, error) {
	now := s.clock()
	session, err := s.currentSession(ctx, employeeID, now)
	if err != nil {
		return worksession.WorkSessionResponse{}, err
	}
	if err := session.Pause(now); err != nil {
		return worksession.WorkSessionResponse{}, err
	}
	if err := s.persist(ctx, *session); err != nil {
		return worksession.WorkSessionResponse{}, fmt.Errorf("failed to pause session: %w", err)
	}

	slog.Info("Work session paused", "employee_id", employeeID, "session_id", session.ID)
	return s.toResponse(*session, now), nil
}

// ResumeSession implements worksession.WorkSessionService.
func (s *WorkSessionServiceImpl) ResumeSession(ctx context.Context, employeeID string) (worksession.WorkSessionResponse, error) {
	now := s.clock()
	session, err := s.currentSession(ctx, employeeID, now)
	if err != nil {
		return worksession.WorkSessionResponse{}, err
	}
	if err := session.Resume(now); err != nil {
		return worksession.WorkSessionResponse{}, err
	}
	if err := s.persist(ctx, *session); err != nil {
		return worksession.WorkSessionResponse{}, fmt.Errorf("failed to resume session: %w", err)
	}

	slog.Info("Work session resumed",
		"employee_id", employeeID,
		"session_id", session.ID,
		"total_break_minutes", session.TotalBreakTime,
	)
	return s.toResponse(*session, now), nil
}

// GetTodaySession implements worksession.WorkSessionService.
func (s *WorkSessionServiceImpl) GetTodaySession(ctx context.Context, employeeID string) (*worksession.WorkSessionResponse, error) {
	now := s.clock()
	session, err := s.sessionRepo.GetByEmployeeAndDate(ctx, employeeID, worksession.NormalizeDate(now))
	if err != nil {
		return nil, fmt.Errorf("failed to get today's session: %w", err)
	}
	if session == nil {
		// a session started before midnight is still today's work
		session, err = s.sessionRepo.GetOpenSession(ctx, employeeID)
		if err != nil {
			return nil, fmt.Errorf("failed to get open session: %w", err)
		}
	}
	if session == nil {
		return nil, nil
	}

	resp := s.toResponse(*session, now)
	return &resp, nil
}

// UpdateProductivity implements worksession.WorkSessionService.
func (s *WorkSessionServiceImpl) UpdateProductivity(ctx context.Context, req worksession.UpdateProductivityRequest) (worksession.WorkSessionResponse, error) {
	if err := req.Validate(); err != nil {
		return worksession.WorkSessionResponse{}, err
	}
	now := s.clock()

	session, err := s.currentSession(ctx, req.EmployeeID, now)
	if err != nil {
		return worksession.WorkSessionResponse{}, err
	}
	if !session.IsOpen() {
		return worksession.WorkSessionResponse{}, worksession.ErrSessionAlreadyCompleted
	}

	metrics, err := req.Signals(ctx)
	if err != nil {
		return worksession.WorkSessionResponse{}, fmt.Errorf("failed to read device signals: %w", err)
	}
	session.Productivity = metrics

	if err := s.sessionRepo.Update(ctx, *session); err != nil {
		return worksession.WorkSessionResponse{}, fmt.Errorf("failed to update productivity: %w", err)
	}
	return s.toResponse(*session, now), nil
}

// ListSessions implements worksession.WorkSessionService.
// Without dates it lists the current month up to today.
func (s *WorkSessionServiceImpl) ListSessions(ctx context.Context, filter worksession.SessionFilter) ([]worksession.WorkSessionResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	now := s.clock()
	today := worksession.NormalizeDate(now)

	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc)
	to := today
	if filter.StartDate != nil && *filter.StartDate != "" {
		from, _ = time.ParseInLocation("2006-01-02", *filter.StartDate, s.loc)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		to, _ = time.ParseInLocation("2006-01-02", *filter.EndDate, s.loc)
	}

	sessions, err := s.sessionRepo.ListByEmployee(ctx, filter.EmployeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	responses := make([]worksession.WorkSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, s.toResponse(session, now))
	}
	return responses, nil
}

// currentSession returns the open session, falling back to today's
// (possibly completed) one so callers can report the right error.
func (s *WorkSessionServiceImpl) currentSession(ctx context.Context, employeeID string, now time.Time) (*worksession.WorkSession, error) {
	session, err := s.sessionRepo.GetOpenSession(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get open session: %w", err)
	}
	if session != nil {
		return session, nil
	}

	session, err = s.sessionRepo.GetByEmployeeAndDate(ctx, employeeID, worksession.NormalizeDate(now))
	if err != nil {
		return nil, fmt.Errorf("failed to get today's session: %w", err)
	}
	if session == nil {
		return nil, worksession.ErrSessionNotFound
	}
	return session, nil
}

// checkAim enforces the end-of-day aim rules. A pending aim always fails
// with ErrAimNotCompleted, even when progress is missing too.
func (s *WorkSessionServiceImpl) checkAim(ctx context.Context, employeeID string, date time.Time) error {
	dailyAim, err := s.aimRepo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return fmt.Errorf("failed to get daily aim: %w", err)
	}
	if dailyAim == nil {
		return worksession.ErrProgressNotSet
	}
	if dailyAim.IsPending() {
		return worksession.ErrAimNotCompleted
	}
	if !dailyAim.HasComment() {
		return worksession.ErrAimCommentMissing
	}
	if !dailyAim.HasProgress() {
		return worksession.ErrProgressNotSet
	}
	return nil
}

// persist writes the session and its derived attendance record atomically.
func (s *WorkSessionServiceImpl) persist(ctx context.Context, session worksession.WorkSession) error {
	return s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.sessionRepo.Update(ctx, session); err != nil {
			return err
		}
		return s.attendance.SyncSession(ctx, session)
	})
}

// snapshot returns nil for absent or unusable coordinates.
func snapshot(point *geo.Point, address *string) *worksession.LocationSnapshot {
	if point == nil || !point.Valid() {
		return nil
	}
	snap := &worksession.LocationSnapshot{
		Latitude:  point.Latitude,
		Longitude: point.Longitude,
		Address:   address,
	}
	if point.Accuracy > 0 {
		accuracy := point.Accuracy
		snap.Accuracy = &accuracy
	}
	return snap
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

func locationResponse(l *worksession.LocationSnapshot) *worksession.LocationResponse {
	if l == nil {
		return nil
	}
	return &worksession.LocationResponse{
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Accuracy:  l.Accuracy,
		Address:   l.Address,
	}
}

// toResponse recomputes every derived field from the stored primitives.
func (s *WorkSessionServiceImpl) toResponse(session worksession.WorkSession, now time.Time) worksession.WorkSessionResponse {
	duration := session.ActualWorkDuration(now)
	m := session.Productivity

	return worksession.WorkSessionResponse{
		ID:             session.ID,
		EmployeeID:     session.EmployeeID,
		Date:           session.Date.Format("2006-01-02"),
		StartTime:      session.StartTime.Format(time.RFC3339),
		EndTime:        timePtrToString(session.EndTime),
		WorkLocation:   string(session.WorkLocation),
		StartLocation:  locationResponse(session.StartLocation),
		EndLocation:    locationResponse(session.EndLocation),
		PausedAt:       timePtrToString(session.PausedAt),
		ResumedAt:      timePtrToString(session.ResumedAt),
		TargetHours:    session.TargetHours,
		Status:         string(session.Status),
		TotalBreakTime: round2(session.TotalBreakTime),
		Productivity: worksession.ProductivityResponse{
			KeystrokeCount:  m.KeystrokeCount,
			MouseActivity:   m.MouseActivity,
			ActiveTime:      m.ActiveTime,
			IdleTime:        m.IdleTime,
			ViolationCount:  m.ViolationCount,
			WorkRelatedTime: m.WorkRelatedTime,
			NonWorkTime:     m.NonWorkTime,
			Score:           round2(ProductivityScore(m, duration)),
		},
		Notes:                session.Notes,
		ActualWorkDuration:   round2(duration),
		CompletionPercentage: round2(session.CompletionPercentage(now)),
		RemainingTime:        round2(session.RemainingTime(now)),
		CreatedAt:            session.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            session.UpdatedAt.Format(time.RFC3339),
	}
}
