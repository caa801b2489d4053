package attendance

import (
	"time"
)

// Source is the origin of an attendance observation.
type Source string

const (
	SourceMonitoring    Source = "Monitoring"
	SourceStartDay      Source = "StartDay"
	SourceBiometric     Source = "Biometric"
	SourceAdminOverride Source = "AdminOverride"
)

// EventSources are the origins that may be recorded as raw events.
// Monitoring observations come from work sessions only.
var EventSources = []string{string(SourceStartDay), string(SourceBiometric), string(SourceAdminOverride)}

type RecordStatus string

const (
	RecordStatusActive    RecordStatus = "active"
	RecordStatusCompleted RecordStatus = "completed"
)

const PresencePresent = "Present"

type EventKind string

const (
	EventKindStart EventKind = "start"
	EventKindEnd   EventKind = "end"
)

// AttendanceEvent is a raw, append-only start or end observation.
type AttendanceEvent struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Kind       EventKind
	OccurredAt time.Time
	Source     Source
	Note       *string
	CreatedAt  time.Time
}

// AttendanceRecord is the canonical per-day view derived from sessions and events.
type AttendanceRecord struct {
	ID                 string
	EmployeeID         string
	Date               time.Time
	StartDayTime       *time.Time
	EndDayTime         *time.Time
	Status             RecordStatus
	Presence           string
	Source             Source
	HasDiscrepancy     bool
	DiscrepancyMinutes float64
	WorkedMinutes      float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Attended reports whether the day counts toward paid attendance.
func (r AttendanceRecord) Attended() bool {
	if r.Status == RecordStatusCompleted {
		return true
	}
	return r.Status == RecordStatusActive && r.WorkedMinutes > 0
}
