package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/worksession-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Employee self-service
	GetMySalary(w http.ResponseWriter, r *http.Request)

	// Calculation
	CalculateSalary(w http.ResponseWriter, r *http.Request)
	CalculatePayroll(w http.ResponseWriter, r *http.Request)
	SetWorkingDays(w http.ResponseWriter, r *http.Request)

	// Profiles and adjustments
	SetProfile(w http.ResponseWriter, r *http.Request)
	GetProfile(w http.ResponseWriter, r *http.Request)
	AddAdjustment(w http.ResponseWriter, r *http.Request)
	ListAdjustments(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== CALCULATION ==========

func (h *payrollHandlerImpl) GetMySalary(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	h.calculateFor(w, r, employeeID)
}

func (h *payrollHandlerImpl) CalculateSalary(w http.ResponseWriter, r *http.Request) {
	h.calculateFor(w, r, chi.URLParam(r, "employeeID"))
}

func (h *payrollHandlerImpl) calculateFor(w http.ResponseWriter, r *http.Request, employeeID string) {
	params, err := queryInts(r, "month", "year", "working_days")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req := payroll.CalculateSalaryRequest{
		EmployeeID:  employeeID,
		Month:       intOrZero(params["month"]),
		Year:        intOrZero(params["year"]),
		WorkingDays: params["working_days"],
	}

	result, err := h.payrollService.CalculateSalary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) CalculatePayroll(w http.ResponseWriter, r *http.Request) {
	var req payroll.CalculatePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.CalculatePayroll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) SetWorkingDays(w http.ResponseWriter, r *http.Request) {
	var req payroll.SetWorkingDaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.SetWorkingDaysConfig(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Working days configured", result)
}

// ========== PROFILES ==========

func (h *payrollHandlerImpl) SetProfile(w http.ResponseWriter, r *http.Request) {
	var req payroll.SetSalaryProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")

	result, err := h.payrollService.SetSalaryProfile(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary profile saved", result)
}

func (h *payrollHandlerImpl) GetProfile(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetSalaryProfile(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) AddAdjustment(w http.ResponseWriter, r *http.Request) {
	var req payroll.AddAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")

	result, err := h.payrollService.AddAdjustment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary adjustment added", result)
}

func (h *payrollHandlerImpl) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListAdjustments(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
