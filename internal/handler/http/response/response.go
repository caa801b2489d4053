package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "status", statusCode, "error", err)
	}
}

func succeed(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	writeJSON(w, statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func fail(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	writeJSON(w, statusCode, Response{
		Success: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Success responses
func Success(w http.ResponseWriter, data interface{}) {
	succeed(w, http.StatusOK, "", data)
}

func SuccessWithMessage(w http.ResponseWriter, message string, data interface{}) {
	succeed(w, http.StatusOK, message, data)
}

func Created(w http.ResponseWriter, message string, data interface{}) {
	succeed(w, http.StatusCreated, message, data)
}

// Error responses

// Error writes a failure with a machine-readable domain code.
func Error(w http.ResponseWriter, statusCode int, code string, message string) {
	fail(w, statusCode, code, message, nil)
}

func BadRequest(w http.ResponseWriter, message string, details map[string]string) {
	fail(w, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func ValidationError(w http.ResponseWriter, details map[string]string) {
	fail(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Validation failed", details)
}

func Unauthorized(w http.ResponseWriter, message string) {
	fail(w, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func Forbidden(w http.ResponseWriter, message string) {
	fail(w, http.StatusForbidden, "FORBIDDEN", message, nil)
}

func NotFound(w http.ResponseWriter, message string) {
	fail(w, http.StatusNotFound, "NOT_FOUND", message, nil)
}

func InternalServerError(w http.ResponseWriter, message string) {
	fail(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message, nil)
}
