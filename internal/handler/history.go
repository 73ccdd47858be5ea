package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/auth"
	"github.com/lunchorder/api/internal/enum"
	"github.com/lunchorder/api/internal/service"
	"github.com/shopspring/decimal"
)

// HistoryReader defines the reports used by HistoryHandler.
// Satisfied by *service.HistoryService.
type HistoryReader interface {
	History(p auth.Principal, q service.HistoryQuery) service.HistoryPage
	Summary(f service.SummaryFilter) service.Summary
	Balance(name string) decimal.Decimal
	Stats() service.Stats
	Payers() []string
	SelectedTotal(p auth.Principal, ids []uuid.UUID) decimal.Decimal
}

// HistoryHandler serves order history and the collection dashboards.
type HistoryHandler struct {
	svc HistoryReader
}

func NewHistoryHandler(svc HistoryReader) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// RegisterRoutes registers history endpoints every signed-in user may call.
func (h *HistoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/history", h.History)
	r.Post("/history/selected-total", h.SelectedTotal)
	r.Get("/balance", h.Balance)
}

// RegisterPrivilegedRoutes registers the admin/collector dashboards.
func (h *HistoryHandler) RegisterPrivilegedRoutes(r chi.Router) {
	r.Get("/summary", h.Summary)
	r.Get("/stats", h.Stats)
	r.Get("/payers", h.Payers)
}

type historyResponse struct {
	Orders     []orderResponse `json:"orders"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
	HasPrev    bool            `json:"has_prev"`
	HasNext    bool            `json:"has_next"`
	PageTotal  string          `json:"page_total"`
}

type summaryRowResponse struct {
	Date       string `json:"date"`
	Count      int    `json:"count"`
	Total      string `json:"total"`
	DayStatus  string `json:"day_status"`
	VendorName string `json:"vendor_name"`
}

type summaryResponse struct {
	Rows       []summaryRowResponse `json:"rows"`
	GrandTotal string               `json:"grand_total"`
}

type selectedTotalRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

// History handles GET /history?search=&status=&user=&sort=&dir=&page=.
func (h *HistoryHandler) History(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	status := q.Get("status")
	if status != "" && status != service.StatusAll && !enum.OrderStatus(status).Valid() {
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}
	field := enum.SortField(q.Get("sort"))
	if field == "" {
		field = enum.SortByDate
	}
	if !field.Valid() {
		writeError(w, http.StatusBadRequest, "invalid sort field")
		return
	}
	dir, ok := sortDir(w, r)
	if !ok {
		return
	}
	page := 1
	if s := q.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid page")
			return
		}
		page = n
	}

	res := h.svc.History(p, service.HistoryQuery{
		Search: q.Get("search"),
		Status: status,
		User:   q.Get("user"),
		Sort:   field,
		Dir:    dir,
		Page:   page,
	})
	writeJSON(w, http.StatusOK, historyResponse{
		Orders:     toOrderResponses(res.Orders),
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   service.PageSize,
		TotalPages: res.TotalPages,
		HasPrev:    res.HasPrev,
		HasNext:    res.HasNext,
		PageTotal:  money(res.PageTotal),
	})
}

// SelectedTotal handles POST /history/selected-total.
func (h *HistoryHandler) SelectedTotal(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req selectedTotalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ids, err := parseIDs(req.IDs)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"total": money(h.svc.SelectedTotal(p, ids))})
}

// Balance handles GET /balance?user=. Only privileged callers may look at
// someone else's balance.
func (h *HistoryHandler) Balance(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("user"))
	if name == "" {
		name = p.Name
	}
	if !p.Role.Privileged() && !strings.EqualFold(name, p.Name) {
		writeError(w, http.StatusForbidden, "insufficient permissions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"user":        name,
		"outstanding": money(h.svc.Balance(name)),
	})
}

// Summary handles GET /summary?start=&end=&vendor_id=&exclude=a,b.
func (h *HistoryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f service.SummaryFilter

	for key, dst := range map[string]**time.Time{"start": &f.Start, "end": &f.End} {
		if s := q.Get(key); s != "" {
			d, err := service.ParseDate(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid "+key+" date")
				return
			}
			*dst = &d
		}
	}
	if s := q.Get("vendor_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid vendor_id")
			return
		}
		f.VendorID = &id
	}
	for _, name := range strings.Split(q.Get("exclude"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			f.ExcludePayers = append(f.ExcludePayers, name)
		}
	}

	s := h.svc.Summary(f)
	resp := summaryResponse{Rows: make([]summaryRowResponse, len(s.Rows)), GrandTotal: money(s.GrandTotal)}
	for i, row := range s.Rows {
		resp.Rows[i] = summaryRowResponse{
			Date:       service.FormatDate(row.Date),
			Count:      row.Count,
			Total:      money(row.Total),
			DayStatus:  string(row.DayStatus),
			VendorName: row.VendorName,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Stats handles GET /stats.
func (h *HistoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Stats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"unpaid_total":        money(st.UnpaidTotal),
		"unpaid_count":        st.UnpaidCount,
		"awaiting_collection": st.AwaitingCollection,
	})
}

// Payers handles GET /payers.
func (h *HistoryHandler) Payers(w http.ResponseWriter, r *http.Request) {
	payers := h.svc.Payers()
	if payers == nil {
		payers = []string{}
	}
	writeJSON(w, http.StatusOK, payers)
}
