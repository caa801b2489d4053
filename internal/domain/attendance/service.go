package attendance

import (
	"context"
	"time"
)

// AttendanceService derives canonical attendance from sessions and raw events
type AttendanceService interface {
	// RecordEvent appends one manual or admin event and re-derives that day's record
	RecordEvent(ctx context.Context, req RecordEventRequest) (RecordEventResponse, error)

	// ImportEvents appends already-parsed events atomically
	ImportEvents(ctx context.Context, req ImportEventsRequest) (ImportEventsResponse, error)

	// GetDailyRecord returns nil when the employee has not started that day
	GetDailyRecord(ctx context.Context, employeeID string, date string) (*AttendanceRecordResponse, error)

	ListRecords(ctx context.Context, filter AttendanceFilter) ([]AttendanceRecordResponse, error)

	Reconcile(ctx context.Context, req ReconcileRequest) (*AttendanceRecordResponse, error)

	// ReconcileDay re-derives every record of date and returns how many were written
	ReconcileDay(ctx context.Context, date time.Time) (int, error)
}
