package worksession

import "errors"

// Work session domain errors
var (
	// Start errors
	ErrDayAlreadyStarted   = errors.New("work day has already been started today")
	ErrLocationTooFar      = errors.New("you are outside the allowed office radius")
	ErrLocationUnavailable = errors.New("location is required to start an office work day")

	// End errors
	ErrAimNotCompleted   = errors.New("today's aim is still pending")
	ErrAimCommentMissing = errors.New("today's aim needs a completion comment")
	ErrProgressNotSet    = errors.New("today's progress has not been set")

	// General errors
	ErrSessionNotFound         = errors.New("no work session found for today")
	ErrSessionAlreadyCompleted = errors.New("work session is already completed")
	ErrInvalidTransition       = errors.New("work session cannot move to the requested state")
)
