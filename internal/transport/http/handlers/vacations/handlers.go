package vacationshandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"nomina/internal/domain/employee"
	"nomina/internal/domain/notifications"
	"nomina/internal/domain/vacation"
	"nomina/internal/transport/http/api"
	"nomina/internal/transport/http/middleware"
	"nomina/internal/transport/http/shared"
)

type Handler struct {
	Service *vacation.Service
	Notify  *notifications.Service
}

func NewHandler(service *vacation.Service, notify *notifications.Service) *Handler {
	return &Handler{Service: service, Notify: notify}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/vacations", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleHistory)
		r.Post("/", h.handleSubmit)
		r.Get("/balance", h.handleBalance)
		r.With(middleware.RequireAdmin).Get("/pending", h.handlePending)
		r.With(middleware.RequireAdmin).Get("/off-today", h.handleOffToday)
		r.With(middleware.RequireAdmin).Post("/{requestID}/approve", h.handleApprove)
		r.With(middleware.RequireAdmin).Post("/{requestID}/deny", h.handleDeny)
		r.Post("/{requestID}/cancel", h.handleCancel)
		r.Post("/{requestID}/cancel-partial", h.handleCancelPartial)
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Dates []string `json:"dates" validate:"required,min=1,dive,datetime=2006-01-02"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if issues := shared.CheckStruct(payload); len(issues) > 0 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), issues)
		return
	}

	req, err := h.Service.Submit(r.Context(), user.Email, payload.Dates)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "vacation_submit_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	h.notifyAdmins(r, notifications.TypeVacationSubmitted, "Nueva solicitud de vacaciones",
		fmt.Sprintf("%s ha solicitado %d día(s) de vacaciones", user.Name, len(req.Dates)))
	api.Created(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	email := user.Email
	if target := r.URL.Query().Get("email"); target != "" && user.Role == employee.RoleAdmin {
		email = target
	}

	items, err := h.Service.History(r.Context(), email)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "vacation_list_failed", "failed to list requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	email := user.Email
	if target := r.URL.Query().Get("email"); target != "" && user.Role == employee.RoleAdmin {
		email = target
	}

	balance, err := h.Service.BalanceFor(r.Context(), email)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "balance_failed", "failed to compute balance", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Pending(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "vacation_list_failed", "failed to list pending requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleOffToday(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("date")
	if day == "" {
		day = time.Now().Format("2006-01-02")
	}
	items, err := h.Service.OffToday(r.Context(), day)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "vacation_list_failed", "failed to list absences", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"date": day, "requests": items}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, vacation.StateApproved)
}

func (h *Handler) handleDeny(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, vacation.StateDenied)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, to vacation.State) {
	requestID := chi.URLParam(r, "requestID")

	var req vacation.Request
	var err error
	if to == vacation.StateApproved {
		req, err = h.Service.Approve(r.Context(), requestID)
	} else {
		req, err = h.Service.Deny(r.Context(), requestID)
	}
	switch {
	case errors.Is(err, vacation.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "request not found", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, vacation.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", "request is not pending", middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "vacation_decide_failed", "failed to update request", middleware.GetRequestID(r.Context()))
		return
	}

	if to == vacation.StateApproved {
		h.notifyUser(r, req.Requester, notifications.TypeVacationApproved, "Vacaciones aprobadas",
			fmt.Sprintf("Tu solicitud de %d día(s) ha sido aprobada", len(req.Dates)))
	} else {
		h.notifyUser(r, req.Requester, notifications.TypeVacationDenied, "Vacaciones denegadas",
			fmt.Sprintf("Tu solicitud de %d día(s) ha sido denegada", len(req.Dates)))
	}
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := chi.URLParam(r, "requestID")

	var payload struct {
		Reason string `json:"reason"`
	}
	// Body is optional on full cancellation.
	_ = json.NewDecoder(r.Body).Decode(&payload)

	existing, err := h.Service.Get(r.Context(), requestID)
	if errors.Is(err, vacation.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "request not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "vacation_cancel_failed", "failed to load request", middleware.GetRequestID(r.Context()))
		return
	}
	if user.Role != employee.RoleAdmin && existing.Requester != user.Email {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot cancel another employee's request", middleware.GetRequestID(r.Context()))
		return
	}

	req, err := h.Service.CancelFull(r.Context(), requestID, payload.Reason)
	if !h.checkCancelErr(w, r, err) {
		return
	}

	h.notifyAdmins(r, notifications.TypeVacationCancelled, "Vacaciones canceladas",
		fmt.Sprintf("%s ha cancelado una solicitud de vacaciones", user.Name))
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCancelPartial(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := chi.URLParam(r, "requestID")

	var payload struct {
		Dates  []string `json:"dates" validate:"required,min=1,dive,datetime=2006-01-02"`
		Reason string   `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if issues := shared.CheckStruct(payload); len(issues) > 0 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), issues)
		return
	}

	existing, err := h.Service.Get(r.Context(), requestID)
	if errors.Is(err, vacation.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "request not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "vacation_cancel_failed", "failed to load request", middleware.GetRequestID(r.Context()))
		return
	}
	if user.Role != employee.RoleAdmin && existing.Requester != user.Email {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot cancel another employee's request", middleware.GetRequestID(r.Context()))
		return
	}

	req, err := h.Service.CancelPartial(r.Context(), requestID, payload.Dates, payload.Reason)
	if !h.checkCancelErr(w, r, err) {
		return
	}

	h.notifyAdmins(r, notifications.TypeVacationCancelled, "Cancelación parcial de vacaciones",
		fmt.Sprintf("%s ha cancelado %d día(s) de una solicitud aprobada", user.Name, len(payload.Dates)))
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) checkCancelErr(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, vacation.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "request not found", middleware.GetRequestID(r.Context()))
	case errors.Is(err, vacation.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", "request cannot be cancelled in its current state", middleware.GetRequestID(r.Context()))
	case errors.Is(err, vacation.ErrDateNotRequested):
		api.Fail(w, http.StatusBadRequest, "date_not_requested", "one or more dates are not part of the request", middleware.GetRequestID(r.Context()))
	case errors.Is(err, vacation.ErrDateCancelled):
		api.Fail(w, http.StatusConflict, "date_already_cancelled", "one or more dates are already cancelled", middleware.GetRequestID(r.Context()))
	default:
		api.Fail(w, http.StatusInternalServerError, "vacation_cancel_failed", "failed to cancel request", middleware.GetRequestID(r.Context()))
	}
	return false
}

func (h *Handler) notifyUser(r *http.Request, email, nType, title, body string) {
	if h.Notify == nil {
		return
	}
	h.Notify.NotifyUser(r.Context(), email, notifications.Payload{
		Title:     title,
		Body:      body,
		URL:       "/vacaciones",
		Type:      nType,
		Timestamp: time.Now(),
	})
}

func (h *Handler) notifyAdmins(r *http.Request, nType, title, body string) {
	if h.Notify == nil {
		return
	}
	h.Notify.NotifyAdmins(r.Context(), notifications.Payload{
		Title:     title,
		Body:      body,
		URL:       "/admin/vacaciones",
		Type:      nType,
		Timestamp: time.Now(),
	})
}
