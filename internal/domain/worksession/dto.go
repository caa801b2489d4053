package worksession

import (
	"context"
	"math"
	"strings"

	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// WORK SESSION DTOs
// ========================================

type StartDayRequest struct {
	EmployeeID   string   `json:"-"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Accuracy     *float64 `json:"accuracy,omitempty"`
	Address      *string  `json:"address,omitempty"`
	WorkLocation string   `json:"work_location"`
	TargetHours  *float64 `json:"target_hours,omitempty"`
}

func (r *StartDayRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if !WorkLocation(r.WorkLocation).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "work_location",
			Message: "work_location must be one of: Office, Home, Remote",
		})
	}

	if r.TargetHours != nil && (math.IsNaN(*r.TargetHours) || *r.TargetHours < MinTargetHours || *r.TargetHours > MaxTargetHours) {
		errs = append(errs, validator.ValidationError{
			Field:   "target_hours",
			Message: "target_hours must be between 1 and 12",
		})
	}

	errs = append(errs, validateCoordinates(r.Latitude, r.Longitude, r.Accuracy)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Location implements LocationProvider with the coordinates resolved by the client.
func (r *StartDayRequest) Location(ctx context.Context) (*geo.Point, error) {
	return resolvedPoint(r.Latitude, r.Longitude, r.Accuracy), nil
}

type EndDayRequest struct {
	EmployeeID string   `json:"-"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Accuracy   *float64 `json:"accuracy,omitempty"`
	Address    *string  `json:"address,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
}

func (r *EndDayRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.Notes != nil && len(*r.Notes) > 2000 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 2000 characters",
		})
	}

	errs = append(errs, validateCoordinates(r.Latitude, r.Longitude, r.Accuracy)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Location implements LocationProvider with the coordinates resolved by the client.
func (r *EndDayRequest) Location(ctx context.Context) (*geo.Point, error) {
	return resolvedPoint(r.Latitude, r.Longitude, r.Accuracy), nil
}

// validateCoordinates rejects half-specified or out-of-range coordinates.
// Non-finite values are not validation errors; the perimeter check treats them as outside.
func validateCoordinates(lat, lng, accuracy *float64) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if (lat == nil) != (lng == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "latitude and longitude must be provided together",
		})
		return errs
	}

	if lat != nil && isFinite(*lat) && (*lat < -90 || *lat > 90) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if lng != nil && isFinite(*lng) && (*lng < -180 || *lng > 180) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if accuracy != nil && isFinite(*accuracy) && *accuracy < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "accuracy",
			Message: "accuracy must not be negative",
		})
	}

	return errs
}

func resolvedPoint(lat, lng, accuracy *float64) *geo.Point {
	if lat == nil || lng == nil {
		return nil
	}
	p := geo.Point{Latitude: *lat, Longitude: *lng}
	if accuracy != nil {
		p.Accuracy = *accuracy
	}
	return &p
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

type UpdateProductivityRequest struct {
	EmployeeID      string  `json:"-"`
	KeystrokeCount  int     `json:"keystroke_count"`
	MouseActivity   int     `json:"mouse_activity"`
	ActiveTime      float64 `json:"active_time"`
	IdleTime        float64 `json:"idle_time"`
	ViolationCount  int     `json:"violation_count"`
	WorkRelatedTime float64 `json:"work_related_time"`
	NonWorkTime     float64 `json:"non_work_time"`
}

func (r *UpdateProductivityRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}

	counts := map[string]int{
		"keystroke_count": r.KeystrokeCount,
		"mouse_activity":  r.MouseActivity,
		"violation_count": r.ViolationCount,
	}
	for field, v := range counts {
		if v < 0 {
			errs = append(errs, validator.ValidationError{Field: field, Message: field + " must not be negative"})
		}
	}

	minutes := map[string]float64{
		"active_time":       r.ActiveTime,
		"idle_time":         r.IdleTime,
		"work_related_time": r.WorkRelatedTime,
		"non_work_time":     r.NonWorkTime,
	}
	for field, v := range minutes {
		if !isFinite(v) || v < 0 {
			errs = append(errs, validator.ValidationError{Field: field, Message: field + " must be a non-negative number of minutes"})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Signals implements DeviceSignalProvider with the metrics collected on the client.
func (r *UpdateProductivityRequest) Signals(ctx context.Context) (ProductivityMetrics, error) {
	return ProductivityMetrics{
		KeystrokeCount:  r.KeystrokeCount,
		MouseActivity:   r.MouseActivity,
		ActiveTime:      r.ActiveTime,
		IdleTime:        r.IdleTime,
		ViolationCount:  r.ViolationCount,
		WorkRelatedTime: r.WorkRelatedTime,
		NonWorkTime:     r.NonWorkTime,
	}, nil
}

type SessionFilter struct {
	EmployeeID string  `json:"-"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
}

func (f *SessionFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LocationResponse struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Address   *string  `json:"address,omitempty"`
}

type ProductivityResponse struct {
	KeystrokeCount  int     `json:"keystroke_count"`
	MouseActivity   int     `json:"mouse_activity"`
	ActiveTime      float64 `json:"active_time"`
	IdleTime        float64 `json:"idle_time"`
	ViolationCount  int     `json:"violation_count"`
	WorkRelatedTime float64 `json:"work_related_time"`
	NonWorkTime     float64 `json:"non_work_time"`
	Score           float64 `json:"score"`
}

type WorkSessionResponse struct {
	ID                   string               `json:"id"`
	EmployeeID           string               `json:"employee_id"`
	Date                 string               `json:"date"`
	StartTime            string               `json:"start_time"`
	EndTime              *string              `json:"end_time,omitempty"`
	WorkLocation         string               `json:"work_location"`
	StartLocation        *LocationResponse    `json:"start_location,omitempty"`
	EndLocation          *LocationResponse    `json:"end_location,omitempty"`
	PausedAt             *string              `json:"paused_at,omitempty"`
	ResumedAt            *string              `json:"resumed_at,omitempty"`
	TargetHours          float64              `json:"target_hours"`
	Status               string               `json:"status"`
	TotalBreakTime       float64              `json:"total_break_time"`
	Productivity         ProductivityResponse `json:"productivity"`
	Notes                *string              `json:"notes,omitempty"`
	ActualWorkDuration   float64              `json:"actual_work_duration"`
	CompletionPercentage float64              `json:"completion_percentage"`
	RemainingTime        float64              `json:"remaining_time"`
	CreatedAt            string               `json:"created_at"`
	UpdatedAt            string               `json:"updated_at"`
}

type StartDayResponse struct {
	Session WorkSessionResponse `json:"session"`
	Message string              `json:"message"`
}

type EndDayResponse struct {
	TotalHours   float64             `json:"total_hours"`
	EarnedAmount decimal.Decimal     `json:"earned_amount"`
	Currency     string              `json:"currency,omitempty"`
	Session      WorkSessionResponse `json:"session"`
}

// NormalizedWorkLocation trims and returns the requested work location.
func (r *StartDayRequest) NormalizedWorkLocation() WorkLocation {
	return WorkLocation(strings.TrimSpace(r.WorkLocation))
}
