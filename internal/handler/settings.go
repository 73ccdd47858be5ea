package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/service"
)

// SettingsServicer defines schedule, global config and refresh operations.
// Satisfied by *service.AdminService.
type SettingsServicer interface {
	ListSchedules() []database.DailyConfig
	UpsertSchedule(ctx context.Context, date time.Time, in service.ScheduleInput) (database.DailyConfig, error)
	DeleteSchedule(ctx context.Context, date time.Time) error

	Config() database.GlobalConfig
	SaveConfig(ctx context.Context, c database.GlobalConfig) (database.GlobalConfig, error)

	Refresh(ctx context.Context) error
}

// SettingsHandler handles the admin schedule and config pages.
type SettingsHandler struct {
	svc SettingsServicer
}

func NewSettingsHandler(svc SettingsServicer) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// RegisterRoutes registers admin settings endpoints. Expected to be mounted at /admin.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/schedules", h.ListSchedules)
	r.Put("/schedules/{date}", h.UpsertSchedule)
	r.Delete("/schedules/{date}", h.DeleteSchedule)

	r.Get("/config", h.GetConfig)
	r.Put("/config", h.SaveConfig)

	r.Post("/refresh", h.Refresh)
}

// --- Request types ---

type scheduleRequest struct {
	VendorID string     `json:"vendor_id" validate:"required,uuid"`
	Cutoff   *time.Time `json:"cutoff"`
	Status   string     `json:"status" validate:"omitempty,oneof=Pending Ordered Completed"`
}

type configRequest struct {
	Announcement     string   `json:"announcement"`
	NoServiceBanners []string `json:"no_service_banners"`
	Payment          struct {
		QRURL    string `json:"qr_url"`
		BankName string `json:"bank_name"`
		AccNo    string `json:"acc_no"`
		Holder   string `json:"holder"`
	} `json:"payment"`
}

// --- Handlers ---

// ListSchedules handles GET /admin/schedules.
func (h *SettingsHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	days := h.svc.ListSchedules()
	resp := make([]scheduleResponse, len(days))
	for i, d := range days {
		resp[i] = toScheduleResponse(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpsertSchedule handles PUT /admin/schedules/{date}.
func (h *SettingsHandler) UpsertSchedule(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	var req scheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	day, err := h.svc.UpsertSchedule(r.Context(), date, service.ScheduleInput{
		VendorID: uuid.MustParse(req.VendorID),
		Cutoff:   req.Cutoff,
		Status:   req.Status,
	})
	if err != nil {
		writeServiceError(w, "upsert schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(day))
}

// DeleteSchedule handles DELETE /admin/schedules/{date}.
func (h *SettingsHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSchedule(r.Context(), date); err != nil {
		writeServiceError(w, "delete schedule", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetConfig handles GET /admin/config.
func (h *SettingsHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toConfigResponse(h.svc.Config()))
}

// SaveConfig handles PUT /admin/config.
func (h *SettingsHandler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if !decodeBody(w, r, &req) {
		return
	}
	saved, err := h.svc.SaveConfig(r.Context(), database.GlobalConfig{
		Announcement:     req.Announcement,
		NoServiceBanners: req.NoServiceBanners,
		Payment: database.PaymentConfig{
			QRURL:    req.Payment.QRURL,
			BankName: req.Payment.BankName,
			AccNo:    req.Payment.AccNo,
			Holder:   req.Payment.Holder,
		},
	})
	if err != nil {
		writeServiceError(w, "save config", err)
		return
	}
	writeJSON(w, http.StatusOK, toConfigResponse(saved))
}

// Refresh handles POST /admin/refresh: reload everything from the store.
func (h *SettingsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Refresh(r.Context()); err != nil {
		writeServiceError(w, "refresh state", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}
