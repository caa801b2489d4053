package worksession

import (
	"math"
	"time"
)

// Status of a work session. Absence of a session for (employee, date) means "not started".
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

type WorkLocation string

const (
	WorkLocationOffice WorkLocation = "Office"
	WorkLocationHome   WorkLocation = "Home"
	WorkLocationRemote WorkLocation = "Remote"
)

// RequiresPerimeter reports whether a start at this location must pass the office geofence.
func (l WorkLocation) RequiresPerimeter() bool {
	return l == WorkLocationOffice
}

func (l WorkLocation) Valid() bool {
	switch l {
	case WorkLocationOffice, WorkLocationHome, WorkLocationRemote:
		return true
	}
	return false
}

const (
	DefaultTargetHours = 8.0
	MinTargetHours     = 1.0
	MaxTargetHours     = 12.0

	// MinSessionLength is the shortest span between start and end; shorter spans are snapped forward.
	MinSessionLength = time.Minute
)

// LocationSnapshot is the location captured at start or end of the day.
type LocationSnapshot struct {
	Latitude  float64
	Longitude float64
	Accuracy  *float64
	Address   *string
}

// ProductivityMetrics are the raw activity signals attached to a session. Times are minutes.
type ProductivityMetrics struct {
	KeystrokeCount  int
	MouseActivity   int
	ActiveTime      float64
	IdleTime        float64
	ViolationCount  int
	WorkRelatedTime float64
	NonWorkTime     float64
}

type WorkSession struct {
	ID             string
	EmployeeID     string
	Date           time.Time
	StartTime      time.Time
	EndTime        *time.Time
	WorkLocation   WorkLocation
	StartLocation  *LocationSnapshot
	EndLocation    *LocationSnapshot
	PausedAt       *time.Time
	ResumedAt      *time.Time
	TargetHours    float64
	Status         Status
	TotalBreakTime float64 // minutes
	Productivity   ProductivityMetrics
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewWorkSession builds an active session started at now. date is normalized to midnight in now's location.
func NewWorkSession(employeeID string, now time.Time, workLocation WorkLocation, targetHours float64, start *LocationSnapshot) WorkSession {
	if targetHours == 0 {
		targetHours = DefaultTargetHours
	}
	return WorkSession{
		EmployeeID:    employeeID,
		Date:          NormalizeDate(now),
		StartTime:     now,
		WorkLocation:  workLocation,
		StartLocation: start,
		TargetHours:   targetHours,
		Status:        StatusActive,
	}
}

// NormalizeDate truncates t to midnight of its calendar day in t's own location.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Pause moves an active session to paused.
func (s *WorkSession) Pause(now time.Time) error {
	if s.Status != StatusActive {
		return ErrInvalidTransition
	}
	s.PausedAt = &now
	s.Status = StatusPaused
	return nil
}

// Resume closes the current pause, adding its length to the accumulated break time.
func (s *WorkSession) Resume(now time.Time) error {
	if s.Status != StatusPaused {
		return ErrInvalidTransition
	}
	s.closePause(now)
	s.ResumedAt = &now
	s.Status = StatusActive
	return nil
}

// Complete ends the session. A dangling pause is closed first, and an end
// less than MinSessionLength after start is snapped forward.
func (s *WorkSession) Complete(now time.Time, end *LocationSnapshot, notes *string) error {
	switch s.Status {
	case StatusActive:
	case StatusPaused:
		s.closePause(now)
		s.ResumedAt = &now
	case StatusCompleted:
		return ErrSessionAlreadyCompleted
	default:
		return ErrInvalidTransition
	}

	endTime := now
	s.EndTime = &endTime
	s.NormalizeEndTime()
	s.EndLocation = end
	if notes != nil {
		s.Notes = notes
	}
	s.Status = StatusCompleted
	return nil
}

// NormalizeEndTime enforces EndTime >= StartTime + MinSessionLength.
func (s *WorkSession) NormalizeEndTime() {
	if s.EndTime == nil {
		return
	}
	minEnd := s.StartTime.Add(MinSessionLength)
	if s.EndTime.Before(minEnd) {
		s.EndTime = &minEnd
	}
}

func (s *WorkSession) closePause(now time.Time) {
	if s.PausedAt == nil {
		return
	}
	if d := now.Sub(*s.PausedAt); d > 0 {
		s.TotalBreakTime += d.Minutes()
	}
}

// ActualWorkDuration returns worked minutes: (end or now) - start - breaks, never negative.
// A session that is currently paused does not accrue the open pause as work.
func (s WorkSession) ActualWorkDuration(now time.Time) float64 {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}

	breakMinutes := s.TotalBreakTime
	if s.Status == StatusPaused && s.PausedAt != nil && s.EndTime == nil {
		if d := end.Sub(*s.PausedAt); d > 0 {
			breakMinutes += d.Minutes()
		}
	}

	worked := end.Sub(s.StartTime).Minutes() - breakMinutes
	return math.Max(0, worked)
}

// CompletionPercentage is the share of TargetHours worked, capped at 100.
func (s WorkSession) CompletionPercentage(now time.Time) float64 {
	if s.TargetHours <= 0 {
		return 0
	}
	pct := 100 * (s.ActualWorkDuration(now) / 60) / s.TargetHours
	return math.Min(100, pct)
}

// RemainingTime is the number of hours still needed to reach TargetHours.
func (s WorkSession) RemainingTime(now time.Time) float64 {
	return math.Max(0, s.TargetHours-s.ActualWorkDuration(now)/60)
}

func (s WorkSession) IsOpen() bool {
	return s.Status != StatusCompleted
}
