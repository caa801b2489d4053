package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/worksession"
	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrEmployeeIDRequired), errors.Is(err, auth.ErrManagerAccessRequired):
		Forbidden(w, err.Error())

	// Work session errors
	case errors.Is(err, worksession.ErrDayAlreadyStarted):
		Error(w, http.StatusConflict, "DAY_ALREADY_STARTED", err.Error())
	case errors.Is(err, worksession.ErrLocationTooFar):
		Error(w, http.StatusUnprocessableEntity, "LOCATION_TOO_FAR", err.Error())
	case errors.Is(err, worksession.ErrLocationUnavailable):
		Error(w, http.StatusUnprocessableEntity, "LOCATION_UNAVAILABLE", err.Error())
	case errors.Is(err, worksession.ErrAimNotCompleted):
		Error(w, http.StatusUnprocessableEntity, "AIM_NOT_COMPLETED", err.Error())
	case errors.Is(err, worksession.ErrAimCommentMissing):
		Error(w, http.StatusUnprocessableEntity, "AIM_COMMENT_MISSING", err.Error())
	case errors.Is(err, worksession.ErrProgressNotSet):
		Error(w, http.StatusUnprocessableEntity, "PROGRESS_NOT_SET", err.Error())
	case errors.Is(err, worksession.ErrSessionNotFound):
		Error(w, http.StatusNotFound, "SESSION_NOT_FOUND", err.Error())
	case errors.Is(err, worksession.ErrSessionAlreadyCompleted):
		Error(w, http.StatusConflict, "SESSION_ALREADY_COMPLETED", err.Error())
	case errors.Is(err, worksession.ErrInvalidTransition):
		Error(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())

	// Attendance errors
	case errors.Is(err, attendance.ErrNoEventsToImport):
		Error(w, http.StatusUnprocessableEntity, "NO_EVENTS_TO_IMPORT", err.Error())

	// Payroll errors
	case errors.Is(err, payroll.ErrSalaryNotConfigured):
		Error(w, http.StatusNotFound, "SALARY_NOT_CONFIGURED", err.Error())
	case errors.Is(err, payroll.ErrInvalidWorkingDays):
		Error(w, http.StatusUnprocessableEntity, "INVALID_WORKING_DAYS", err.Error())

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
