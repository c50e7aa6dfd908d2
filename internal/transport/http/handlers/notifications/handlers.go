package notificationshandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"nomina/internal/domain/employee"
	"nomina/internal/domain/notifications"
	"nomina/internal/transport/http/api"
	"nomina/internal/transport/http/middleware"
	"nomina/internal/transport/http/shared"
)

type Handler struct {
	Service   *notifications.Service
	Employees *employee.Store
}

func NewHandler(service *notifications.Service, employees *employee.Store) *Handler {
	return &Handler{Service: service, Employees: employees}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Post("/tokens", h.handleRegisterToken)
		r.Post("/{notificationID}/read", h.handleMarkRead)
		r.With(middleware.RequireAdmin).Post("/broadcast", h.handleBroadcast)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	items, err := h.Service.List(r.Context(), user.Email, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_list_failed", "failed to list notifications", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRegisterToken(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Token string `json:"token" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if issues := shared.CheckStruct(payload); len(issues) > 0 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), issues)
		return
	}

	if err := h.Service.RegisterToken(r.Context(), user.Email, payload.Token); err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_register_failed", "failed to register device token", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"status": "registered"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	notificationID := chi.URLParam(r, "notificationID")

	err := h.Service.MarkRead(r.Context(), user.Email, notificationID)
	if errors.Is(err, notifications.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "notification not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_update_failed", "failed to update notification", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "read"}, middleware.GetRequestID(r.Context()))
}

// handleBroadcast pushes a message to every employee, or to an explicit
// recipient list when one is given.
func (h *Handler) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title      string   `json:"title" validate:"required"`
		Body       string   `json:"body" validate:"required"`
		URL        string   `json:"url"`
		Recipients []string `json:"recipients" validate:"omitempty,dive,email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if issues := shared.CheckStruct(payload); len(issues) > 0 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), issues)
		return
	}

	recipients := payload.Recipients
	if len(recipients) == 0 {
		all, err := h.Employees.List(r.Context())
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "broadcast_failed", "failed to resolve recipients", middleware.GetRequestID(r.Context()))
			return
		}
		for _, emp := range all {
			recipients = append(recipients, emp.Email)
		}
	}

	msg := notifications.Payload{
		Title:     payload.Title,
		Body:      payload.Body,
		URL:       payload.URL,
		Type:      notifications.TypeBroadcast,
		Timestamp: time.Now(),
	}
	for _, email := range recipients {
		h.Service.NotifyUser(r.Context(), email, msg)
	}

	api.Success(w, map[string]any{"status": "sent", "recipients": len(recipients)}, middleware.GetRequestID(r.Context()))
}
