package payrollhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"nomina/internal/domain/audit"
	"nomina/internal/domain/employee"
	"nomina/internal/domain/notifications"
	"nomina/internal/domain/payroll"
	"nomina/internal/transport/http/api"
	"nomina/internal/transport/http/middleware"
	"nomina/internal/transport/http/shared"
)

type Handler struct {
	Service   *payroll.Service
	Store     *payroll.Store
	Employees *employee.Store
	Notify    *notifications.Service
	Audit     *audit.Service
}

func NewHandler(service *payroll.Service, store *payroll.Store, employees *employee.Store, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Store: store, Employees: employees, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/levels/{year}", h.handleListLevels)
		r.With(middleware.RequireAdmin).Post("/levels/{year}", h.handleUpsertLevel)
		r.With(middleware.RequireAdmin).Post("/levels/{year}/raise", h.handleRaiseLevels)
		r.Get("/config/{email}/{year}", h.handleGetConfig)
		r.With(middleware.RequireAdmin).Put("/config/{email}/{year}", h.handleSaveConfig)
	})
	r.Route("/nominas", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleListNominas)
		r.With(middleware.RequireAdmin).Post("/", h.handleCreateNomina)
		r.Get("/{nominaID}", h.handleGetNomina)
		r.With(middleware.RequireAdmin).Put("/{nominaID}", h.handleUpdateNomina)
		r.With(middleware.RequireAdmin).Delete("/{nominaID}", h.handleDeleteNomina)
		r.Get("/{nominaID}/pdf", h.handleNominaPDF)
	})
}

func yearParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "year"))
}

func (h *Handler) handleListLevels(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_year", "year must be numeric", middleware.GetRequestID(r.Context()))
		return
	}
	levels, err := h.Store.ListLevels(r.Context(), year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "levels_failed", "failed to list salary levels", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, levels, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpsertLevel(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_year", "year must be numeric", middleware.GetRequestID(r.Context()))
		return
	}

	var payload payroll.SalaryLevel
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Level < payroll.MinSalaryLevel || payload.Level > payroll.MaxSalaryLevel {
		api.Fail(w, http.StatusBadRequest, "invalid_level",
			fmt.Sprintf("level must be between %d and %d", payroll.MinSalaryLevel, payroll.MaxSalaryLevel),
			middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.UpsertLevel(r.Context(), year, payload); err != nil {
		api.Fail(w, http.StatusInternalServerError, "level_save_failed", "failed to save salary level", middleware.GetRequestID(r.Context()))
		return
	}
	h.recordAudit(r, "payroll.level_upsert", fmt.Sprintf("%d/%d", year, payload.Level), payload)
	api.Success(w, payload, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRaiseLevels(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_year", "year must be numeric", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Percent float64 `json:"percent" validate:"required,gt=-100"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if issues := shared.CheckStruct(payload); len(issues) > 0 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), issues)
		return
	}

	updated, err := h.Store.RaiseLevels(r.Context(), year, payload.Percent)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "level_raise_failed", "failed to raise salary levels", middleware.GetRequestID(r.Context()))
		return
	}
	h.recordAudit(r, "payroll.levels_raise", strconv.Itoa(year), payload)
	api.Success(w, map[string]any{"year": year, "percent": payload.Percent, "updated": updated}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(chi.URLParam(r, "email"))
	year, err := yearParam(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_year", "year must be numeric", middleware.GetRequestID(r.Context()))
		return
	}
	user, _ := middleware.GetUser(r.Context())
	if user.Role != employee.RoleAdmin && user.Email != email {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's configuration", middleware.GetRequestID(r.Context()))
		return
	}

	cfg, err := h.Service.ConfigForYear(r.Context(), email, year)
	if errors.Is(err, payroll.ErrConfigNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "no payroll configuration for this year", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "config_failed", "failed to load configuration", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cfg, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(chi.URLParam(r, "email"))
	year, err := yearParam(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_year", "year must be numeric", middleware.GetRequestID(r.Context()))
		return
	}

	var cfg payroll.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	cfg.EmployeeEmail = email
	cfg.Year = year

	err = h.Service.SaveConfig(r.Context(), cfg)
	if errors.Is(err, payroll.ErrInvalidLevel) {
		api.Fail(w, http.StatusBadRequest, "invalid_level", "salary level out of range", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "config_save_failed", "failed to save configuration", middleware.GetRequestID(r.Context()))
		return
	}
	h.recordAudit(r, "payroll.config_save", fmt.Sprintf("%s/%d", email, year), cfg)
	api.Success(w, cfg, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListNominas(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	email := user.Email
	if target := r.URL.Query().Get("email"); target != "" && user.Role == employee.RoleAdmin {
		email = strings.ToLower(target)
	}
	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_year", "year must be numeric", middleware.GetRequestID(r.Context()))
			return
		}
		year = parsed
	}

	items, err := h.Store.ListNominas(r.Context(), email, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "nomina_list_failed", "failed to list payroll records", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

type createNominaPayload struct {
	Email        string       `json:"email" validate:"required,email"`
	Year         int          `json:"year" validate:"required,gte=2000,lte=2100"`
	Type         string       `json:"type" validate:"required,oneof=monthly extra"`
	Month        string       `json:"month"`
	Marker       string       `json:"marker"`
	TrienioCount int          `json:"trienioCount"`
	PeriodStart  string       `json:"periodStart"`
	PeriodEnd    string       `json:"periodEnd"`
	Extra        payroll.Line `json:"extra"`
	Deduction    payroll.Line `json:"deduction"`
	Amount       float64      `json:"amount"`
}

func (h *Handler) handleCreateNomina(w http.ResponseWriter, r *http.Request) {
	var payload createNominaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if issues := shared.CheckStruct(payload); len(issues) > 0 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), issues)
		return
	}

	email := strings.ToLower(payload.Email)
	var n payroll.Nomina
	var err error
	if payroll.NominaType(payload.Type) == payroll.TypeExtra {
		n, err = h.Service.CreateExtraPay(r.Context(), email, payload.Year, payload.Marker, payload.Amount)
	} else {
		v := shared.NewValidator()
		v.Required("month", payload.Month, "month is required for monthly records")
		start, _ := v.Date("periodStart", payload.PeriodStart)
		end, _ := v.Date("periodEnd", payload.PeriodEnd)
		v.DateOrder("periodStart", start, "periodEnd", end)
		if v.Reject(w, middleware.GetRequestID(r.Context())) {
			return
		}
		n, err = h.Service.CreateMonthly(r.Context(), email, payload.Year, payload.Month, payload.TrienioCount, start, end, payload.Extra, payload.Deduction)
	}

	switch {
	case errors.Is(err, payroll.ErrDuplicateNomina):
		api.Fail(w, http.StatusConflict, "duplicate_nomina", "a payroll record already exists for this period", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, payroll.ErrConfigNotFound):
		api.Fail(w, http.StatusBadRequest, "config_missing", "no payroll configuration for this employee and year", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, employee.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "nomina_create_failed", "failed to create payroll record", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, "nomina.create", n.ID, map[string]any{"email": n.EmployeeEmail, "year": n.Year, "month": n.Month, "type": n.Type})
	h.notifyNomina(r, n)
	api.Created(w, n, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetNomina(w http.ResponseWriter, r *http.Request) {
	n, ok := h.loadNominaAuthorized(w, r)
	if !ok {
		return
	}
	api.Success(w, n, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateNomina(w http.ResponseWriter, r *http.Request) {
	nominaID := chi.URLParam(r, "nominaID")
	existing, err := h.Store.GetNomina(r.Context(), nominaID)
	if errors.Is(err, payroll.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "payroll record not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "nomina_update_failed", "failed to load payroll record", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Extra     payroll.Line `json:"extra"`
		Deduction payroll.Line `json:"deduction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	n, err := h.Service.Recompute(r.Context(), existing, payload.Extra, payload.Deduction)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "nomina_update_failed", "failed to update payroll record", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, "nomina.update", n.ID, payload)
	api.Success(w, n, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteNomina(w http.ResponseWriter, r *http.Request) {
	nominaID := chi.URLParam(r, "nominaID")
	err := h.Store.DeleteNomina(r.Context(), nominaID)
	if errors.Is(err, payroll.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "payroll record not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "nomina_delete_failed", "failed to delete payroll record", middleware.GetRequestID(r.Context()))
		return
	}
	h.recordAudit(r, "nomina.delete", nominaID, nil)
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleNominaPDF(w http.ResponseWriter, r *http.Request) {
	n, ok := h.loadNominaAuthorized(w, r)
	if !ok {
		return
	}

	name := n.EmployeeEmail
	if emp, err := h.Employees.Get(r.Context(), n.EmployeeEmail); err == nil {
		name = emp.Name
	}

	pdf, err := payroll.RenderPDF(n, name)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "failed to render PDF", middleware.GetRequestID(r.Context()))
		return
	}

	filename := fmt.Sprintf("nomina-%d-%s.pdf", n.Year, n.Month)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) loadNominaAuthorized(w http.ResponseWriter, r *http.Request) (payroll.Nomina, bool) {
	nominaID := chi.URLParam(r, "nominaID")
	n, err := h.Store.GetNomina(r.Context(), nominaID)
	if errors.Is(err, payroll.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "payroll record not found", middleware.GetRequestID(r.Context()))
		return payroll.Nomina{}, false
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "nomina_get_failed", "failed to load payroll record", middleware.GetRequestID(r.Context()))
		return payroll.Nomina{}, false
	}

	user, _ := middleware.GetUser(r.Context())
	if user.Role != employee.RoleAdmin && user.Email != n.EmployeeEmail {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's payroll", middleware.GetRequestID(r.Context()))
		return payroll.Nomina{}, false
	}
	return n, true
}

func (h *Handler) notifyNomina(r *http.Request, n payroll.Nomina) {
	if h.Notify == nil {
		return
	}
	title := "Nómina disponible"
	body := fmt.Sprintf("Tu nómina de %s %d ya está disponible", n.Month, n.Year)
	if n.Type == payroll.TypeExtra {
		title = "Paga extra disponible"
		body = fmt.Sprintf("Tu paga extra de %s %d ya está disponible", n.Month, n.Year)
	}
	h.Notify.NotifyUser(r.Context(), n.EmployeeEmail, notifications.Payload{
		Title:     title,
		Body:      body,
		URL:       "/nominas",
		Type:      notifications.TypeNominaCreated,
		Timestamp: time.Now(),
	})
}

func (h *Handler) recordAudit(r *http.Request, action, entityID string, detail any) {
	if h.Audit == nil {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	_ = h.Audit.Record(r.Context(), user.Email, action, "payroll", entityID, middleware.GetRequestID(r.Context()), detail)
}
