package aim

import (
	"strings"
	"time"
)

// CompletionStatus values reported by the task/aim subsystem.
type CompletionStatus string

const (
	CompletionPending     CompletionStatus = "Pending"
	CompletionMVPAchieved CompletionStatus = "MVP Achieved"
	CompletionCompleted   CompletionStatus = "Completed"
)

// DailyAim is the employee's aim and progress for one day, owned by an external subsystem.
type DailyAim struct {
	ID                 string
	EmployeeID         string
	Date               time.Time
	WorkDescription    string
	CompletionStatus   CompletionStatus
	CompletionComment  string
	ProgressPercentage *float64
	UpdatedAt          time.Time
}

func (a DailyAim) IsPending() bool {
	return a.CompletionStatus == "" || a.CompletionStatus == CompletionPending
}

func (a DailyAim) HasComment() bool {
	return strings.TrimSpace(a.CompletionComment) != ""
}

func (a DailyAim) HasProgress() bool {
	return a.ProgressPercentage != nil
}
