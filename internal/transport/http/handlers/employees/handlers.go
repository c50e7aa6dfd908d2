package employeeshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"nomina/internal/domain/audit"
	"nomina/internal/domain/employee"
	"nomina/internal/transport/http/api"
	"nomina/internal/transport/http/middleware"
	"nomina/internal/transport/http/shared"
)

type Handler struct {
	Service *employee.Service
	Store   *employee.Store
	Audit   *audit.Service
}

func NewHandler(service *employee.Service, store *employee.Store, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Store: store, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireAdmin).Get("/", h.handleList)
		r.With(middleware.RequireAdmin).Post("/", h.handleCreate)
		r.Get("/{email}", h.handleGet)
		r.With(middleware.RequireAdmin).Put("/{email}", h.handleUpdate)
		r.With(middleware.RequireAdmin).Delete("/{email}", h.handleDelete)
		r.With(middleware.RequireAdmin).Post("/{email}/reconcile-balance", h.handleReconcile)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email          string  `json:"email" validate:"required,email"`
		Name           string  `json:"name" validate:"required"`
		Role           string  `json:"role" validate:"required,oneof=admin employee"`
		Password       string  `json:"password" validate:"required,min=8"`
		HireDate       string  `json:"hireDate"`
		AllowanceHours float64 `json:"allowanceHours" validate:"gte=0"`
		DefaultRate    float64 `json:"defaultRate" validate:"gte=0"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	hireDate, _ := shared.OptionalDate(v, "hireDate", payload.HireDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	emp, err := h.Service.Create(r.Context(), payload.Email, payload.Name, payload.Role, payload.Password, hireDate, payload.AllowanceHours, payload.DefaultRate)
	switch {
	case errors.Is(err, employee.ErrAlreadyExists):
		api.Fail(w, http.StatusConflict, "employee_exists", "an employee with this email already exists", middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, "employee.create", emp.Email, nil)
	api.Created(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(chi.URLParam(r, "email"))
	user, _ := middleware.GetUser(r.Context())
	if user.Role != employee.RoleAdmin && user.Email != email {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee", middleware.GetRequestID(r.Context()))
		return
	}

	emp, err := h.Store.Get(r.Context(), email)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(chi.URLParam(r, "email"))

	var payload struct {
		Name           string  `json:"name" validate:"required"`
		HireDate       string  `json:"hireDate"`
		AllowanceHours float64 `json:"allowanceHours" validate:"gte=0"`
		DefaultRate    float64 `json:"defaultRate" validate:"gte=0"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	hireDate, _ := shared.OptionalDate(v, "hireDate", payload.HireDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	err := h.Store.UpdateProfile(r.Context(), email, payload.Name, hireDate, payload.AllowanceHours, payload.DefaultRate)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, "employee.update", email, nil)
	api.Success(w, map[string]string{"status": "updated"}, middleware.GetRequestID(r.Context()))
}

// handleDelete removes the profile and the push-token data as independent
// steps. When only one side succeeds the response is 207 with a report of
// which step failed, so an operator can retry the leftover half.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(chi.URLParam(r, "email"))
	user, _ := middleware.GetUser(r.Context())
	if user.Email == email {
		api.Fail(w, http.StatusBadRequest, "self_delete", "cannot delete your own account", middleware.GetRequestID(r.Context()))
		return
	}

	report, err := h.Service.Delete(r.Context(), email)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, "employee.delete", email, report)

	if report.Partial() {
		slog.Warn("employee delete partially failed", "email", email, "failedStep", report.FailedStep)
		api.PartialSuccess(w, report, middleware.GetRequestID(r.Context()))
		return
	}
	if !report.ProfileDeleted && !report.TokensDeleted {
		api.Fail(w, http.StatusInternalServerError, "employee_delete_failed", "failed to delete employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(chi.URLParam(r, "email"))

	balance, err := h.Service.ReconcileBalance(r.Context(), email)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reconcile_failed", "failed to reconcile balance", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, "employee.reconcile_balance", email, balance)
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}

func (h *Handler) recordAudit(r *http.Request, action, entityID string, detail any) {
	if h.Audit == nil {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	if err := h.Audit.Record(r.Context(), user.Email, action, "employee", entityID, middleware.GetRequestID(r.Context()), detail); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
