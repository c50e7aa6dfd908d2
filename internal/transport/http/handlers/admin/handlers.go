package adminhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"nomina/internal/domain/audit"
	"nomina/internal/platform/jobs"
	"nomina/internal/platform/metrics"
	"nomina/internal/transport/http/api"
	"nomina/internal/transport/http/middleware"
	"nomina/internal/transport/http/shared"
)

type Handler struct {
	Metrics *metrics.Collector
	Jobs    *jobs.Service
	Audit   *audit.Service
}

func NewHandler(collector *metrics.Collector, jobsSvc *jobs.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Metrics: collector, Jobs: jobsSvc, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/metrics", h.handleMetrics)
		r.Get("/audit", h.handleAudit)
		r.Post("/jobs/{jobType}/run", h.handleRunJob)
	})
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.Metrics == nil {
		api.Fail(w, http.StatusServiceUnavailable, "metrics_disabled", "metrics collection is disabled", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, h.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 100, 500)
	filter := audit.Filter{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entityType"),
		ActorEmail: r.URL.Query().Get("actor"),
	}

	events, err := h.Audit.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRunJob(w http.ResponseWriter, r *http.Request) {
	jobType := chi.URLParam(r, "jobType")

	var result any
	var err error
	switch jobType {
	case jobs.JobDailyVacationReport:
		result, err = h.Jobs.RunNow(r.Context(), jobType, h.Jobs.RunDailyVacationReport)
	case jobs.JobTokenCleanup:
		result, err = h.Jobs.RunNow(r.Context(), jobType, h.Jobs.RunTokenCleanup)
	case jobs.JobBalanceReconcile:
		result, err = h.Jobs.RunNow(r.Context(), jobType, h.Jobs.RunBalanceReconcile)
	default:
		api.Fail(w, http.StatusNotFound, "unknown_job", "unknown job type", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"job": jobType, "result": result}, middleware.GetRequestID(r.Context()))
}
