package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/auth"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/service"
)

// OrderServicer defines the order workflow used by OrderHandler.
// Satisfied by *service.OrderService.
type OrderServicer interface {
	Place(ctx context.Context, p auth.Principal, req service.PlaceOrderRequest) (database.Order, error)
	Edit(ctx context.Context, p auth.Principal, id uuid.UUID, req service.PlaceOrderRequest) (database.Order, error)
	Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error
	Get(p auth.Principal, id uuid.UUID) (database.Order, error)
}

// OrderHandler handles order placement endpoints.
type OrderHandler struct {
	svc OrderServicer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
	r.Get("/orders/{id}", h.Get)
	r.Put("/orders/{id}", h.Update)
	r.Delete("/orders/{id}", h.Delete)
}

// --- Request types ---

type createOrderRequest struct {
	Date    string `json:"date" validate:"required"`
	ItemID  string `json:"item_id" validate:"required,uuid"`
	Variant *int   `json:"variant"`
	Addons  []int  `json:"addons"`
	Remarks string `json:"remarks" validate:"max=500"`
	For     string `json:"for" validate:"max=100"`
}

type updateOrderRequest struct {
	ItemID  string `json:"item_id" validate:"required,uuid"`
	Variant *int   `json:"variant"`
	Addons  []int  `json:"addons"`
	Remarks string `json:"remarks" validate:"max=500"`
	For     string `json:"for" validate:"max=100"`
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	date, err := service.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	order, err := h.svc.Place(r.Context(), p, service.PlaceOrderRequest{
		Date:         date,
		ItemID:       uuid.MustParse(req.ItemID),
		VariantIndex: req.Variant,
		AddonIndexes: req.Addons,
		Remarks:      req.Remarks,
		For:          req.For,
	})
	if err != nil {
		writeServiceError(w, "place order", err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	order, err := h.svc.Get(p, id)
	if err != nil {
		writeServiceError(w, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// Update handles PUT /orders/{id}.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req updateOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := h.svc.Edit(r.Context(), p, id, service.PlaceOrderRequest{
		ItemID:       uuid.MustParse(req.ItemID),
		VariantIndex: req.Variant,
		AddonIndexes: req.Addons,
		Remarks:      req.Remarks,
		For:          req.For,
	})
	if err != nil {
		writeServiceError(w, "edit order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// Delete handles DELETE /orders/{id}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), p, id); err != nil {
		writeServiceError(w, "delete order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
