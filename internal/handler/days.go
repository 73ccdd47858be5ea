package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lunchorder/api/internal/auth"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/enum"
	"github.com/lunchorder/api/internal/service"
)

// DayViewer builds the ordering page for a date. Satisfied by *service.OrderService.
type DayViewer interface {
	Day(p auth.Principal, date time.Time) service.DayView
}

// BoardReader lists a day's orders. Satisfied by *service.HistoryService.
type BoardReader interface {
	Board(date time.Time, field enum.BoardSortField, dir enum.SortDir) service.Board
}

// ConfigReader returns the global config. Satisfied by *appdata.State.
type ConfigReader interface {
	Config() database.GlobalConfig
}

// DayHandler serves the ordering page: default date, menu, order board and
// the announcement/payment settings every user sees.
type DayHandler struct {
	days   DayViewer
	board  BoardReader
	config ConfigReader
	cal    *service.Calendar
}

func NewDayHandler(days DayViewer, board BoardReader, config ConfigReader, cal *service.Calendar) *DayHandler {
	return &DayHandler{days: days, board: board, config: config, cal: cal}
}

func (h *DayHandler) RegisterRoutes(r chi.Router) {
	r.Get("/calendar/today", h.Today)
	r.Get("/config", h.Config)
	r.Get("/days/{date}", h.Day)
	r.Get("/days/{date}/orders", h.Board)
}

type dayResponse struct {
	Date            string             `json:"date"`
	Vendor          *vendorResponse    `json:"vendor"`
	Cutoff          *time.Time         `json:"cutoff"`
	Status          string             `json:"status"`
	Open            bool               `json:"open"`
	SecondsToCutoff int64              `json:"seconds_to_cutoff"`
	Menu            []menuItemResponse `json:"menu"`
}

type boardGroupResponse struct {
	Category string          `json:"category"`
	Orders   []orderResponse `json:"orders"`
	Total    string          `json:"total"`
}

type boardResponse struct {
	Date       string               `json:"date"`
	Groups     []boardGroupResponse `json:"groups"`
	Count      int                  `json:"count"`
	GrandTotal string               `json:"grand_total"`
}

// Today handles GET /calendar/today: the date new orders default to.
func (h *DayHandler) Today(w http.ResponseWriter, r *http.Request) {
	now := h.cal.Now()
	writeJSON(w, http.StatusOK, map[string]string{
		"date": service.FormatDate(h.cal.EffectiveDate(now)),
		"now":  now.UTC().Format(time.RFC3339),
	})
}

// Config handles GET /config.
func (h *DayHandler) Config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toConfigResponse(h.config.Config()))
}

// Day handles GET /days/{date}.
func (h *DayHandler) Day(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	view := h.days.Day(p, date)
	resp := dayResponse{
		Date:            service.FormatDate(view.Date),
		Cutoff:          view.Cutoff,
		Status:          string(view.Status),
		Open:            view.Open,
		SecondsToCutoff: view.SecondsToCutoff,
		Menu:            toMenuItemResponses(view.Menu),
	}
	if view.Vendor != nil {
		v := toVendorResponse(*view.Vendor)
		resp.Vendor = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

// Board handles GET /days/{date}/orders?sort=&dir=.
func (h *DayHandler) Board(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	field := enum.BoardSortField(r.URL.Query().Get("sort"))
	if field != "" && !field.Valid() {
		writeError(w, http.StatusBadRequest, "invalid sort field")
		return
	}
	dir, ok := sortDir(w, r)
	if !ok {
		return
	}

	b := h.board.Board(date, field, dir)
	resp := boardResponse{
		Date:       service.FormatDate(b.Date),
		Groups:     make([]boardGroupResponse, len(b.Groups)),
		Count:      b.Count,
		GrandTotal: money(b.GrandTotal),
	}
	for i, g := range b.Groups {
		resp.Groups[i] = boardGroupResponse{Category: g.Category, Orders: toOrderResponses(g.Orders), Total: money(g.Total)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func sortDir(w http.ResponseWriter, r *http.Request) (enum.SortDir, bool) {
	dir := enum.SortDir(r.URL.Query().Get("dir"))
	if dir == "" {
		return enum.SortAsc, true
	}
	if !dir.Valid() {
		writeError(w, http.StatusBadRequest, "invalid sort direction")
		return "", false
	}
	return dir, true
}
