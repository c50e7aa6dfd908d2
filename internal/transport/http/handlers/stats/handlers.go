package statshandler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"nomina/internal/domain/employee"
	"nomina/internal/domain/overtime"
	"nomina/internal/domain/payroll"
	"nomina/internal/domain/timeconv"
	"nomina/internal/transport/http/api"
	"nomina/internal/transport/http/middleware"
	"nomina/internal/transport/http/shared"
)

type Handler struct {
	Overtime *overtime.Service
	Payroll  *payroll.Service
	Periods  *shared.PeriodResolver
}

func NewHandler(overtimeSvc *overtime.Service, payrollSvc *payroll.Service, periods *shared.PeriodResolver) *Handler {
	return &Handler{Overtime: overtimeSvc, Payroll: payrollSvc, Periods: periods}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stats", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/overtime", h.handleOvertimeStats)
		r.Get("/payroll", h.handlePayrollStats)
	})
}

func (h *Handler) targetEmail(r *http.Request) string {
	user, _ := middleware.GetUser(r.Context())
	if target := r.URL.Query().Get("email"); target != "" && user.Role == employee.RoleAdmin {
		return strings.ToLower(target)
	}
	return user.Email
}

func (h *Handler) handleOvertimeStats(w http.ResponseWriter, r *http.Request) {
	email := h.targetEmail(r)
	rng, ok := h.Periods.FromQuery(w, r, email)
	if !ok {
		return
	}

	totals, entries, err := h.Overtime.PeriodTotals(r.Context(), email, rng.Start, rng.End)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "stats_failed", "failed to compute overtime stats", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{
		"period":          rng,
		"totals":          totals,
		"entries":         len(entries),
		"formattedHours":  timeconv.FormatDecimalHours(totals.TotalHours),
		"formattedAmount": timeconv.FormatCurrency(totals.TotalAmount),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePayrollStats(w http.ResponseWriter, r *http.Request) {
	email := h.targetEmail(r)
	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_year", "year must be numeric", middleware.GetRequestID(r.Context()))
			return
		}
		year = parsed
	}

	stats, err := h.Payroll.Stats(r.Context(), email, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "stats_failed", "failed to compute payroll stats", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{
		"stats":              stats,
		"formattedTotalPaid": timeconv.FormatCurrency(stats.TotalPaid),
	}, middleware.GetRequestID(r.Context()))
}
