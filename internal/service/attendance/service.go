package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/config"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/worksession"
	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

type AttendanceServiceImpl struct {
	transactor  database.Transactor
	recordRepo  attendance.AttendanceRepository
	eventRepo   attendance.AttendanceEventRepository
	sessionRepo worksession.WorkSessionRepository
	reconciler  Reconciler
	loc         *time.Location
	now         func() time.Time
}

// NewAttendanceService returns the concrete type because it also serves as
// the worksession.AttendanceRecorder.
func NewAttendanceService(
	transactor database.Transactor,
	recordRepo attendance.AttendanceRepository,
	eventRepo attendance.AttendanceEventRepository,
	sessionRepo worksession.WorkSessionRepository,
	cfg *config.Config,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		transactor:  transactor,
		recordRepo:  recordRepo,
		eventRepo:   eventRepo,
		sessionRepo: sessionRepo,
		reconciler:  NewReconciler(cfg.Attendance.DiscrepancyTolerance),
		loc:         cfg.Location(),
		now:         time.Now,
	}
}

var (
	_ attendance.AttendanceService   = (*AttendanceServiceImpl)(nil)
	_ worksession.AttendanceRecorder = (*AttendanceServiceImpl)(nil)
)

func (s *AttendanceServiceImpl) clock() time.Time {
	return s.now().In(s.loc)
}

// SyncSession implements worksession.AttendanceRecorder.
func (s *AttendanceServiceImpl) SyncSession(ctx context.Context, session worksession.WorkSession) error {
	_, err := s.derive(ctx, session.EmployeeID, session.Date, &session)
	return err
}

// RecordEvent implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecordEvent(ctx context.Context, req attendance.RecordEventRequest) (attendance.RecordEventResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordEventResponse{}, err
	}

	event := req.ToEvent(s.loc)
	id, err := uuid.NewV7()
	if err != nil {
		return attendance.RecordEventResponse{}, fmt.Errorf("failed to generate event id: %w", err)
	}
	event.ID = id.String()

	var (
		created attendance.AttendanceEvent
		record  *attendance.AttendanceRecord
	)
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if created, err = s.eventRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("failed to create attendance event: %w", err)
		}
		record, err = s.derive(ctx, created.EmployeeID, created.Date, nil)
		return err
	})
	if err != nil {
		return attendance.RecordEventResponse{}, err
	}

	slog.Info("Attendance event recorded",
		"employee_id", created.EmployeeID,
		"source", created.Source,
		"kind", created.Kind,
		"date", created.Date.Format("2006-01-02"),
	)

	return attendance.RecordEventResponse{
		Event:  toEventResponse(created),
		Record: toRecordResponsePtr(record),
	}, nil
}

type employeeDay struct {
	employeeID string
	date       string
}

// ImportEvents implements attendance.AttendanceService.
// Either every event is stored and every affected day re-derived, or nothing is.
func (s *AttendanceServiceImpl) ImportEvents(ctx context.Context, req attendance.ImportEventsRequest) (attendance.ImportEventsResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ImportEventsResponse{}, err
	}

	events := make([]attendance.AttendanceEvent, 0, len(req.Events))
	days := make(map[employeeDay]time.Time)
	for i := range req.Events {
		event := req.Events[i].ToEvent(s.loc)
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.ImportEventsResponse{}, fmt.Errorf("failed to generate event id: %w", err)
		}
		event.ID = id.String()
		events = append(events, event)
		days[employeeDay{event.EmployeeID, event.Date.Format("2006-01-02")}] = event.Date
	}

	reconciled := 0
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.eventRepo.CreateBatch(ctx, events); err != nil {
			return fmt.Errorf("failed to import attendance events: %w", err)
		}
		for day, date := range days {
			record, err := s.derive(ctx, day.employeeID, date, nil)
			if err != nil {
				return err
			}
			if record != nil {
				reconciled++
			}
		}
		return nil
	})
	if err != nil {
		return attendance.ImportEventsResponse{}, err
	}

	slog.Info("Attendance events imported", "events", len(events), "records", reconciled)

	return attendance.ImportEventsResponse{
		Imported:   len(events),
		Reconciled: reconciled,
	}, nil
}

// GetDailyRecord implements attendance.AttendanceService.
// An empty date means today.
func (s *AttendanceServiceImpl) GetDailyRecord(ctx context.Context, employeeID string, date string) (*attendance.AttendanceRecordResponse, error) {
	day := worksession.NormalizeDate(s.clock())
	if date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", date, s.loc)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", date, err)
		}
		day = parsed
	}

	record, err := s.recordRepo.GetByEmployeeAndDate(ctx, employeeID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return toRecordResponsePtr(record), nil
}

// ListRecords implements attendance.AttendanceService.
// Without dates it lists the current month up to today.
func (s *AttendanceServiceImpl) ListRecords(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.AttendanceRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	today := worksession.NormalizeDate(s.clock())
	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc)
	to := today
	if filter.StartDate != nil && *filter.StartDate != "" {
		from, _ = time.ParseInLocation("2006-01-02", *filter.StartDate, s.loc)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		to, _ = time.ParseInLocation("2006-01-02", *filter.EndDate, s.loc)
	}

	records, err := s.recordRepo.ListByEmployee(ctx, filter.EmployeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}

	responses := make([]attendance.AttendanceRecordResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, toRecordResponse(r))
	}
	return responses, nil
}

// Reconcile implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Reconcile(ctx context.Context, req attendance.ReconcileRequest) (*attendance.AttendanceRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	date, _ := time.ParseInLocation("2006-01-02", req.Date, s.loc)

	var record *attendance.AttendanceRecord
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.derive(ctx, req.EmployeeID, date, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toRecordResponsePtr(record), nil
}

// ReconcileDay implements attendance.AttendanceService.
// A failing employee is logged and skipped so one bad day does not block the rest.
func (s *AttendanceServiceImpl) ReconcileDay(ctx context.Context, date time.Time) (int, error) {
	day := worksession.NormalizeDate(date.In(s.loc))

	employeeIDs, err := s.eventRepo.ListEmployeeIDsByDate(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("failed to list employees for %s: %w", day.Format("2006-01-02"), err)
	}

	written := 0
	for _, employeeID := range employeeIDs {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		record, err := s.derive(ctx, employeeID, day, nil)
		if err != nil {
			slog.Error("Failed to reconcile attendance", "employee_id", employeeID, "date", day.Format("2006-01-02"), "error", err)
			continue
		}
		if record != nil {
			written++
		}
	}

	slog.Info("Attendance day reconciled", "date", day.Format("2006-01-02"), "employees", len(employeeIDs), "records", written)
	return written, nil
}

// derive re-derives and upserts the record for (employeeID, date). A session
// passed in is used as is; otherwise it is loaded from storage.
func (s *AttendanceServiceImpl) derive(ctx context.Context, employeeID string, date time.Time, session *worksession.WorkSession) (*attendance.AttendanceRecord, error) {
	if session == nil {
		var err error
		session, err = s.sessionRepo.GetByEmployeeAndDate(ctx, employeeID, date)
		if err != nil {
			return nil, fmt.Errorf("failed to get work session: %w", err)
		}
	}

	events, err := s.eventRepo.ListByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance events: %w", err)
	}

	record := s.reconciler.Reconcile(employeeID, date, session, events, s.clock())
	if record == nil {
		return nil, nil
	}

	if record.HasDiscrepancy {
		slog.Warn("Attendance origins disagree",
			"employee_id", employeeID,
			"date", date.Format("2006-01-02"),
			"discrepancy_minutes", record.DiscrepancyMinutes,
		)
	}

	if existing, err := s.recordRepo.GetByEmployeeAndDate(ctx, employeeID, date); err != nil {
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	} else if existing != nil {
		record.ID = existing.ID
	} else {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate record id: %w", err)
		}
		record.ID = id.String()
	}

	saved, err := s.recordRepo.Upsert(ctx, *record)
	if err != nil {
		return nil, fmt.Errorf("failed to save attendance record: %w", err)
	}
	return &saved, nil
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

func toRecordResponse(r attendance.AttendanceRecord) attendance.AttendanceRecordResponse {
	return attendance.AttendanceRecordResponse{
		ID:                 r.ID,
		EmployeeID:         r.EmployeeID,
		Date:               r.Date.Format("2006-01-02"),
		StartDayTime:       timePtrToString(r.StartDayTime),
		EndDayTime:         timePtrToString(r.EndDayTime),
		Status:             string(r.Status),
		Presence:           r.Presence,
		Source:             string(r.Source),
		HasDiscrepancy:     r.HasDiscrepancy,
		DiscrepancyMinutes: r.DiscrepancyMinutes,
		WorkedMinutes:      r.WorkedMinutes,
		UpdatedAt:          r.UpdatedAt.Format(time.RFC3339),
	}
}

func toRecordResponsePtr(r *attendance.AttendanceRecord) *attendance.AttendanceRecordResponse {
	if r == nil {
		return nil
	}
	resp := toRecordResponse(*r)
	return &resp
}

func toEventResponse(e attendance.AttendanceEvent) attendance.EventResponse {
	return attendance.EventResponse{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		Date:       e.Date.Format("2006-01-02"),
		Kind:       string(e.Kind),
		OccurredAt: e.OccurredAt.Format(time.RFC3339),
		Source:     string(e.Source),
		Note:       e.Note,
	}
}
