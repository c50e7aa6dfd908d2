package overtimehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"nomina/internal/domain/overtime"
	"nomina/internal/transport/http/api"
	"nomina/internal/transport/http/middleware"
	"nomina/internal/transport/http/shared"
)

type Handler struct {
	Service *overtime.Service
	Periods *shared.PeriodResolver
}

func NewHandler(service *overtime.Service, periods *shared.PeriodResolver) *Handler {
	return &Handler{Service: service, Periods: periods}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/overtime", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Post("/", h.handleLog)
		r.Get("/totals", h.handleTotals)
		r.Put("/{entryID}", h.handleEdit)
		r.Delete("/{entryID}", h.handleDelete)
	})
}

type entryPayload struct {
	Date    string  `json:"date" validate:"required"`
	Type    string  `json:"type" validate:"required"`
	Hours   int     `json:"hours" validate:"gte=0"`
	Minutes int     `json:"minutes" validate:"gte=0,lte=59"`
	Rate    float64 `json:"rate" validate:"gte=0"`
}

func (h *Handler) decodeEntry(w http.ResponseWriter, r *http.Request) (entryPayload, time.Time, bool) {
	var payload entryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return payload, time.Time{}, false
	}
	v := shared.NewValidator()
	v.Struct(payload)
	date, _ := v.Date("date", payload.Date)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return payload, time.Time{}, false
	}
	return payload, date, true
}

func (h *Handler) handleLog(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	payload, date, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}

	id, err := h.Service.Log(r.Context(), user.Email, date, overtime.EntryType(payload.Type), payload.Hours, payload.Minutes, payload.Rate)
	if errors.Is(err, overtime.ErrInvalidType) {
		api.Fail(w, http.StatusBadRequest, "invalid_type", "unknown overtime type", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "overtime_log_failed", "failed to log overtime", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	entryID := chi.URLParam(r, "entryID")
	payload, date, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}

	err := h.Service.Edit(r.Context(), entryID, user.Email, date, overtime.EntryType(payload.Type), payload.Hours, payload.Minutes, payload.Rate)
	switch {
	case errors.Is(err, overtime.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "overtime entry not found", middleware.GetRequestID(r.Context()))
	case errors.Is(err, overtime.ErrInvalidType):
		api.Fail(w, http.StatusBadRequest, "invalid_type", "unknown overtime type", middleware.GetRequestID(r.Context()))
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "overtime_edit_failed", "failed to update overtime", middleware.GetRequestID(r.Context()))
	default:
		api.Success(w, map[string]string{"status": "updated"}, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	entryID := chi.URLParam(r, "entryID")

	err := h.Service.Remove(r.Context(), entryID, user.Email)
	if errors.Is(err, overtime.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "overtime entry not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "overtime_delete_failed", "failed to delete overtime", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	rng, ok := h.Periods.FromQuery(w, r, user.Email)
	if !ok {
		return
	}

	entries, err := h.Service.ListPeriod(r.Context(), user.Email, rng.Start, rng.End)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "overtime_list_failed", "failed to list overtime", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"period": rng, "entries": entries}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTotals(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	rng, ok := h.Periods.FromQuery(w, r, user.Email)
	if !ok {
		return
	}

	totals, entries, err := h.Service.PeriodTotals(r.Context(), user.Email, rng.Start, rng.End)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "overtime_totals_failed", "failed to compute totals", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"period": rng, "totals": totals, "entries": entries}, middleware.GetRequestID(r.Context()))
}
