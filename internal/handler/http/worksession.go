package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/worksession"
	"github.com/cmlabs-hris/worksession-backend-go/internal/handler/http/response"
)

type WorkSessionHandler interface {
	StartDay(w http.ResponseWriter, r *http.Request)
	EndDay(w http.ResponseWriter, r *http.Request)
	Pause(w http.ResponseWriter, r *http.Request)
	Resume(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	UpdateProductivity(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type workSessionHandlerImpl struct {
	workSessionService worksession.WorkSessionService
}

func NewWorkSessionHandler(workSessionService worksession.WorkSessionService) WorkSessionHandler {
	return &workSessionHandlerImpl{workSessionService: workSessionService}
}

// decodeOptionalBody accepts an empty body as the zero request.
func decodeOptionalBody(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// StartDay implements WorkSessionHandler.
func (h *workSessionHandlerImpl) StartDay(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req worksession.StartDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = employeeID

	result, err := h.workSessionService.StartDay(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, result.Message, result.Session)
}

// EndDay implements WorkSessionHandler.
func (h *workSessionHandlerImpl) EndDay(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req worksession.EndDayRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = employeeID

	result, err := h.workSessionService.EndDay(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Work day ended", result)
}

// Pause implements WorkSessionHandler.
func (h *workSessionHandlerImpl) Pause(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.workSessionService.PauseSession(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Work session paused", result)
}

// Resume implements WorkSessionHandler.
func (h *workSessionHandlerImpl) Resume(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.workSessionService.ResumeSession(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Work session resumed", result)
}

// Today implements WorkSessionHandler. data is null when the day has not been started.
func (h *workSessionHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.workSessionService.GetTodaySession(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateProductivity implements WorkSessionHandler.
func (h *workSessionHandlerImpl) UpdateProductivity(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req worksession.UpdateProductivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = employeeID

	result, err := h.workSessionService.UpdateProductivity(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements WorkSessionHandler.
func (h *workSessionHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := worksession.SessionFilter{
		EmployeeID: employeeID,
		StartDate:  optionalQuery(r, "start_date"),
		EndDate:    optionalQuery(r, "end_date"),
	}

	results, err := h.workSessionService.ListSessions(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}
