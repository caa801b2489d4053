package attendance

import "errors"

// Attendance domain errors
var (
	ErrNoEventsToImport = errors.New("import contains no events")
)
