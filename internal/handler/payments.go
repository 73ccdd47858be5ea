package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/auth"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/enum"
	"github.com/lunchorder/api/internal/service"
)

// PaymentServicer defines the payment and day operations.
// Satisfied by *service.PaymentService.
type PaymentServicer interface {
	Pay(ctx context.Context, p auth.Principal, ids []uuid.UUID, ref string) (service.BatchResult, error)
	PayAllOutstanding(ctx context.Context, p auth.Principal, target, ref string) (service.BatchResult, error)
	MarkCompleted(ctx context.Context, ids []uuid.UUID) (service.BatchResult, error)
	SetOrderStatus(ctx context.Context, id uuid.UUID, status enum.OrderStatus, ref string) (database.Order, error)
	CancelDay(ctx context.Context, date time.Time) (service.BatchResult, error)
	SetDayStatus(ctx context.Context, date time.Time, status enum.DayStatus) (database.DailyConfig, error)
}

// PaymentHandler handles payment recording and collection endpoints.
type PaymentHandler struct {
	svc PaymentServicer
}

func NewPaymentHandler(svc PaymentServicer) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// RegisterRoutes registers payment endpoints every signed-in user may call.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/payments", h.Pay)
	r.Post("/payments/settle-all", h.SettleAll)
}

// RegisterPrivilegedRoutes registers the admin/collector operations.
func (h *PaymentHandler) RegisterPrivilegedRoutes(r chi.Router) {
	r.Post("/orders/complete", h.Complete)
	r.Patch("/orders/{id}/status", h.SetStatus)
	r.Post("/days/{date}/cancel", h.CancelDay)
	r.Put("/days/{date}/status", h.SetDayStatus)
}

// --- Request types ---

type payRequest struct {
	IDs        []string `json:"ids" validate:"required,min=1,dive,uuid"`
	PaymentRef string   `json:"payment_ref" validate:"max=100"`
}

type settleAllRequest struct {
	User       string `json:"user" validate:"max=100"`
	PaymentRef string `json:"payment_ref" validate:"max=100"`
}

type completeRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

type setStatusRequest struct {
	Status     string `json:"status" validate:"required,oneof=Unpaid Paid Completed Cancelled"`
	PaymentRef string `json:"payment_ref" validate:"max=100"`
}

type setDayStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Ordered Completed"`
}

// --- Handlers ---

// Pay handles POST /payments.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req payRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ids, err := parseIDs(req.IDs)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	res, err := h.svc.Pay(r.Context(), p, ids, req.PaymentRef)
	if err != nil {
		writeServiceError(w, "pay orders", err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchResponse(res))
}

// SettleAll handles POST /payments/settle-all.
func (h *PaymentHandler) SettleAll(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req settleAllRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.svc.PayAllOutstanding(r.Context(), p, req.User, req.PaymentRef)
	if err != nil {
		writeServiceError(w, "settle all", err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchResponse(res))
}

// Complete handles POST /orders/complete.
func (h *PaymentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ids, err := parseIDs(req.IDs)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	res, err := h.svc.MarkCompleted(r.Context(), ids)
	if err != nil {
		writeServiceError(w, "mark completed", err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchResponse(res))
}

// SetStatus handles PATCH /orders/{id}/status.
func (h *PaymentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req setStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := h.svc.SetOrderStatus(r.Context(), id, enum.OrderStatus(req.Status), req.PaymentRef)
	if err != nil {
		writeServiceError(w, "set order status", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// CancelDay handles POST /days/{date}/cancel.
func (h *PaymentHandler) CancelDay(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	res, err := h.svc.CancelDay(r.Context(), date)
	if err != nil {
		writeServiceError(w, "cancel day", err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchResponse(res))
}

// SetDayStatus handles PUT /days/{date}/status.
func (h *PaymentHandler) SetDayStatus(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	var req setDayStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	day, err := h.svc.SetDayStatus(r.Context(), date, enum.DayStatus(req.Status))
	if err != nil {
		writeServiceError(w, "set day status", err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(day))
}
