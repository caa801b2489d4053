package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worksession-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	GetToday(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	RecordEvent(w http.ResponseWriter, r *http.Request)
	ImportEvents(w http.ResponseWriter, r *http.Request)
	Reconcile(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := attendance.AttendanceFilter{
		EmployeeID: employeeID,
		StartDate:  optionalQuery(r, "start_date"),
		EndDate:    optionalQuery(r, "end_date"),
	}

	results, err := h.attendanceService.ListRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// GetToday implements AttendanceHandler. data is null when nothing was observed yet.
func (h *attendanceHandlerImpl) GetToday(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetDailyRecord(r.Context(), employeeID, r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.AttendanceFilter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		StartDate:  optionalQuery(r, "start_date"),
		EndDate:    optionalQuery(r, "end_date"),
	}

	results, err := h.attendanceService.ListRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// RecordEvent implements AttendanceHandler.
func (h *attendanceHandlerImpl) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecordEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.RecordEvent(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance event recorded", result)
}

// ImportEvents implements AttendanceHandler.
func (h *attendanceHandlerImpl) ImportEvents(w http.ResponseWriter, r *http.Request) {
	var req attendance.ImportEventsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.ImportEvents(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance events imported", result)
}

// Reconcile implements AttendanceHandler.
func (h *attendanceHandlerImpl) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req attendance.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.Reconcile(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance reconciled", result)
}
