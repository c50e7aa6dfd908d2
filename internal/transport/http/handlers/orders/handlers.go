package ordershandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"nomina/internal/domain/orders"
	"nomina/internal/transport/http/api"
	"nomina/internal/transport/http/middleware"
	"nomina/internal/transport/http/shared"
)

type Handler struct {
	Service *orders.Service
	Store   *orders.Store
}

func NewHandler(service *orders.Service, store *orders.Store) *Handler {
	return &Handler{Service: service, Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleListDay)
		r.Post("/", h.handlePlace)
		r.Delete("/{orderID}", h.handleDelete)
		r.Get("/summary", h.handleSummary)
		r.Get("/products", h.handleListProducts)
		r.With(middleware.RequireAdmin).Post("/products", h.handleCreateProduct)
	})
}

func dayParam(r *http.Request) string {
	if day := r.URL.Query().Get("date"); day != "" {
		return day
	}
	return time.Now().Format("2006-01-02")
}

func (h *Handler) handleListDay(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListOrdersForDay(r.Context(), dayParam(r))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "order_list_failed", "failed to list orders", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePlace(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		ProductID string `json:"productId" validate:"required"`
		Date      string `json:"date" validate:"required,datetime=2006-01-02"`
		Quantity  int    `json:"quantity" validate:"required,gte=1,lte=20"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if issues := shared.CheckStruct(payload); len(issues) > 0 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), issues)
		return
	}

	order, err := h.Service.Place(r.Context(), user.Email, payload.ProductID, payload.Date, payload.Quantity)
	if errors.Is(err, orders.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "product not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "order_place_failed", "failed to place order", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, order, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orderID := chi.URLParam(r, "orderID")

	err := h.Store.DeleteOrder(r.Context(), orderID, user.Email)
	if errors.Is(err, orders.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "order not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "order_delete_failed", "failed to delete order", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summarize(r.Context(), dayParam(r))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "order_summary_failed", "failed to summarize orders", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListProducts(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "product_list_failed", "failed to list products", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name  string  `json:"name" validate:"required"`
		Price float64 `json:"price" validate:"required,gt=0"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if issues := shared.CheckStruct(payload); len(issues) > 0 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), issues)
		return
	}

	id, err := h.Store.CreateProduct(r.Context(), payload.Name, payload.Price)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "product_create_failed", "failed to create product", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}
