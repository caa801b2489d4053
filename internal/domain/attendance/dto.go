package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/validator"
)

// MaxImportEvents caps a single import batch.
const MaxImportEvents = 5000

// ========================================
// ATTENDANCE EVENT DTOs
// ========================================

type RecordEventRequest struct {
	EmployeeID string  `json:"employee_id"`
	Kind       string  `json:"kind"`
	OccurredAt string  `json:"occurred_at"`    // RFC3339
	Date       *string `json:"date,omitempty"` // YYYY-MM-DD, defaults to the local day of occurred_at
	Source     string  `json:"source"`
	Note       *string `json:"note,omitempty"`
}

func (r *RecordEventRequest) Validate() error {
	return r.validate("")
}

func (r *RecordEventRequest) validate(prefix string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + "employee_id",
			Message: "employee_id is required",
		})
	}

	if !validator.IsInSlice(r.Kind, []string{string(EventKindStart), string(EventKindEnd)}) {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + "kind",
			Message: "kind must be one of: start, end",
		})
	}

	if !validator.IsInSlice(r.Source, EventSources) {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + "source",
			Message: "source must be one of: StartDay, Biometric, AdminOverride",
		})
	}

	if _, ok := validator.IsValidDateTime(r.OccurredAt); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + "occurred_at",
			Message: "occurred_at must be an RFC3339 timestamp",
		})
	}

	if r.Date != nil && *r.Date != "" {
		if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   prefix + "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if r.Note != nil && len(*r.Note) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + "note",
			Message: "note must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToEvent converts a validated request. The event date is resolved in loc.
func (r *RecordEventRequest) ToEvent(loc *time.Location) AttendanceEvent {
	occurredAt, _ := validator.IsValidDateTime(r.OccurredAt)
	occurredAt = occurredAt.In(loc)

	y, m, d := occurredAt.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if r.Date != nil && *r.Date != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", *r.Date, loc); err == nil {
			date = parsed
		}
	}

	return AttendanceEvent{
		EmployeeID: r.EmployeeID,
		Date:       date,
		Kind:       EventKind(r.Kind),
		OccurredAt: occurredAt,
		Source:     Source(r.Source),
		Note:       r.Note,
	}
}

type ImportEventsRequest struct {
	// Source applies to events that do not name one; defaults to Biometric
	Source string               `json:"source,omitempty"`
	Events []RecordEventRequest `json:"events"`
}

func (r *ImportEventsRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Events) == 0 {
		return ErrNoEventsToImport
	}

	if len(r.Events) > MaxImportEvents {
		errs = append(errs, validator.ValidationError{
			Field:   "events",
			Message: fmt.Sprintf("at most %d events can be imported at once", MaxImportEvents),
		})
		return errs
	}

	source := r.Source
	if source == "" {
		source = string(SourceBiometric)
	}

	for i := range r.Events {
		if r.Events[i].Source == "" {
			r.Events[i].Source = source
		}
		errs = append(errs, r.Events[i].validate(fmt.Sprintf("events[%d].", i))...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ReconcileRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"` // YYYY-MM-DD
}

func (r *ReconcileRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceFilter struct {
	EmployeeID string  `json:"employee_id"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	var start, end time.Time
	var hasStart, hasEnd bool

	if f.StartDate != nil && *f.StartDate != "" {
		if start, hasStart = validator.IsValidDate(*f.StartDate); !hasStart {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if end, hasEnd = validator.IsValidDate(*f.EndDate); !hasEnd {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if hasStart && hasEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceRecordResponse struct {
	ID                 string  `json:"id"`
	EmployeeID         string  `json:"employee_id"`
	Date               string  `json:"date"`
	StartDayTime       *string `json:"start_day_time,omitempty"`
	EndDayTime         *string `json:"end_day_time,omitempty"`
	Status             string  `json:"status"`
	Presence           string  `json:"presence"`
	Source             string  `json:"source"`
	HasDiscrepancy     bool    `json:"has_discrepancy"`
	DiscrepancyMinutes float64 `json:"discrepancy_minutes"`
	WorkedMinutes      float64 `json:"worked_minutes"`
	UpdatedAt          string  `json:"updated_at"`
}

type EventResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"`
	Kind       string  `json:"kind"`
	OccurredAt string  `json:"occurred_at"`
	Source     string  `json:"source"`
	Note       *string `json:"note,omitempty"`
}

type RecordEventResponse struct {
	Event  EventResponse             `json:"event"`
	Record *AttendanceRecordResponse `json:"record"`
}

type ImportEventsResponse struct {
	Imported   int `json:"imported"`
	Reconciled int `json:"reconciled"`
}
