package service

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/appdata"
	"github.com/lunchorder/api/internal/auth"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/enum"
	"github.com/shopspring/decimal"
)

// PageSize is the fixed number of history rows per page.
const PageSize = 5

// StatusAll disables the history status filter.
const StatusAll = "all"

// HistoryQuery selects one page of order history.
type HistoryQuery struct {
	Search string
	// Status is StatusAll or an order status.
	Status string
	// User narrows a privileged viewer to one person. Ignored for others.
	User string
	Sort enum.SortField
	Dir  enum.SortDir
	Page int
}

type HistoryPage struct {
	Orders     []database.Order
	Total      int
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	// PageTotal sums the prices of the rows on this page.
	PageTotal decimal.Decimal
}

// ListHistory filters, sorts and paginates orders for viewer. Cancelled
// orders are never listed.
func ListHistory(orders []database.Order, viewer auth.Principal, q HistoryQuery) HistoryPage {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	status := strings.TrimSpace(q.Status)
	if status == "" {
		status = StatusAll
	}
	target := strings.TrimSpace(q.User)

	rows := make([]database.Order, 0, len(orders))
	for _, o := range orders {
		st := o.Status.OrDefault()
		if st == enum.OrderStatusCancelled {
			continue
		}
		if viewer.Role.Privileged() {
			if target != "" && !involves(o, target) {
				continue
			}
		} else if !involves(o, viewer.Name) {
			continue
		}
		if status != StatusAll && string(st) != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(o.Item), search) &&
			!strings.Contains(strings.ToLower(o.User), search) {
			continue
		}
		rows = append(rows, o)
	}

	sortOrders(rows, q.Sort, q.Dir)

	total := len(rows)
	pages := max(1, (total+PageSize-1)/PageSize)
	page := min(max(q.Page, 1), pages)

	start := (page - 1) * PageSize
	end := min(start+PageSize, total)
	out := HistoryPage{
		Orders:     rows[start:end],
		Total:      total,
		Page:       page,
		TotalPages: pages,
		HasPrev:    page > 1,
		HasNext:    page < pages,
		PageTotal:  sumPrices(rows[start:end]),
	}
	return out
}

// sortOrders sorts in place, keeping the input order of equal rows.
// Unknown fields fall back to date.
func sortOrders(rows []database.Order, field enum.SortField, dir enum.SortDir) {
	if !field.Valid() {
		field = enum.SortByDate
	}
	compare := func(a, b database.Order) int {
		switch field {
		case enum.SortByDate:
			return a.Date.Compare(b.Date)
		case enum.SortByPrice:
			return a.Price.Cmp(b.Price)
		case enum.SortByUser:
			return foldCompare(a.User, b.User)
		case enum.SortByPayer:
			return foldCompare(a.Payer, b.Payer)
		case enum.SortByItem:
			return foldCompare(a.Item, b.Item)
		case enum.SortByStatus:
			return foldCompare(string(a.Status.OrDefault()), string(b.Status.OrDefault()))
		case enum.SortByPaymentRef:
			return foldCompare(a.PaymentRef, b.PaymentRef)
		}
		return 0
	}
	if dir == enum.SortDesc {
		slices.SortStableFunc(rows, func(a, b database.Order) int { return compare(b, a) })
		return
	}
	slices.SortStableFunc(rows, compare)
}

func foldCompare(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func sumPrices(orders []database.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Price)
	}
	return total
}

// --- Daily summary ---

type SummaryFilter struct {
	Start *time.Time
	End   *time.Time
	// ExcludePayers hides orders billed to these names (case-insensitive).
	ExcludePayers []string
	VendorID      *uuid.UUID
}

type SummaryRow struct {
	Date       time.Time
	Count      int
	Total      decimal.Decimal
	DayStatus  enum.DayStatus
	VendorName string
}

type Summary struct {
	Rows       []SummaryRow
	GrandTotal decimal.Decimal
}

// DailySummary groups non-cancelled orders by date, newest first.
func DailySummary(snap database.Snapshot, f SummaryFilter) Summary {
	days := make(map[time.Time]database.DailyConfig, len(snap.DailyConfigs))
	for _, c := range snap.DailyConfigs {
		days[c.Date] = c
	}
	vendors := make(map[uuid.UUID]string, len(snap.Vendors))
	for _, v := range snap.Vendors {
		vendors[v.ID] = v.Name
	}

	byDate := make(map[time.Time]*SummaryRow)
	for _, o := range snap.Orders {
		if o.Status.OrDefault() == enum.OrderStatusCancelled {
			continue
		}
		if f.Start != nil && o.Date.Before(*f.Start) {
			continue
		}
		if f.End != nil && o.Date.After(*f.End) {
			continue
		}
		if slices.ContainsFunc(f.ExcludePayers, func(n string) bool { return strings.EqualFold(n, o.Payer) }) {
			continue
		}
		day, scheduled := days[o.Date]
		if f.VendorID != nil && (!scheduled || day.VendorID != *f.VendorID) {
			continue
		}

		row, ok := byDate[o.Date]
		if !ok {
			row = &SummaryRow{Date: o.Date, Total: decimal.Zero, DayStatus: enum.DayStatusPending, VendorName: "Unknown"}
			if scheduled {
				row.DayStatus = day.Status.OrDefault()
				if name, ok := vendors[day.VendorID]; ok {
					row.VendorName = name
				}
			}
			byDate[o.Date] = row
		}
		row.Count++
		row.Total = row.Total.Add(o.Price)
	}

	out := Summary{GrandTotal: decimal.Zero}
	for _, row := range byDate {
		out.Rows = append(out.Rows, *row)
		out.GrandTotal = out.GrandTotal.Add(row.Total)
	}
	slices.SortFunc(out.Rows, func(a, b SummaryRow) int { return b.Date.Compare(a.Date) })
	return out
}

// OutstandingBalance sums the unpaid orders billed to name.
func OutstandingBalance(orders []database.Order, name string) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if strings.EqualFold(o.Payer, name) && o.Status.OrDefault() == enum.OrderStatusUnpaid {
			total = total.Add(o.Price)
		}
	}
	return total
}

type Stats struct {
	UnpaidTotal decimal.Decimal
	UnpaidCount int
	// AwaitingCollection counts paid orders not yet marked completed.
	AwaitingCollection int
}

func AdminStats(orders []database.Order) Stats {
	s := Stats{UnpaidTotal: decimal.Zero}
	for _, o := range orders {
		switch o.Status.OrDefault() {
		case enum.OrderStatusUnpaid:
			s.UnpaidTotal = s.UnpaidTotal.Add(o.Price)
			s.UnpaidCount++
		case enum.OrderStatusPaid:
			s.AwaitingCollection++
		case enum.OrderStatusCompleted, enum.OrderStatusCancelled:
		}
	}
	return s
}

// Payers returns the distinct payer names, sorted case-insensitively.
func Payers(orders []database.Order) []string {
	seen := make(map[string]bool)
	var out []string
	for _, o := range orders {
		key := strings.ToLower(o.Payer)
		if o.Payer == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, o.Payer)
	}
	slices.SortFunc(out, foldCompare)
	return out
}

// SelectedTotal sums the prices of the given orders.
func SelectedTotal(orders []database.Order, ids []uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if containsID(ids, o.ID) {
			total = total.Add(o.Price)
		}
	}
	return total
}

// --- Day board ---

type BoardGroup struct {
	Category string
	Orders   []database.Order
	Total    decimal.Decimal
}

type Board struct {
	Date       time.Time
	Groups     []BoardGroup
	Count      int
	GrandTotal decimal.Decimal
}

// DayBoard lists one date's non-cancelled orders grouped by sub-vendor, or
// by vendor when the item has none. Groups appear in first-seen order unless
// sorted by category.
func DayBoard(orders []database.Order, date time.Time, field enum.BoardSortField, dir enum.SortDir) Board {
	board := Board{Date: date, GrandTotal: decimal.Zero}
	index := make(map[string]int)

	for _, o := range orders {
		if !o.Date.Equal(date) || o.Status.OrDefault() == enum.OrderStatusCancelled {
			continue
		}
		cat := o.SubVendor
		if cat == "" {
			cat = o.Vendor
		}
		i, ok := index[cat]
		if !ok {
			i = len(board.Groups)
			index[cat] = i
			board.Groups = append(board.Groups, BoardGroup{Category: cat, Total: decimal.Zero})
		}
		g := &board.Groups[i]
		g.Orders = append(g.Orders, o)
		g.Total = g.Total.Add(o.Price)
		board.Count++
		board.GrandTotal = board.GrandTotal.Add(o.Price)
	}

	sign := 1
	if dir == enum.SortDesc {
		sign = -1
	}
	switch field {
	case enum.BoardSortCategory:
		slices.SortStableFunc(board.Groups, func(a, b BoardGroup) int { return sign * foldCompare(a.Category, b.Category) })
	case enum.BoardSortItem, enum.BoardSortUser, enum.BoardSortPrice:
		for i := range board.Groups {
			slices.SortStableFunc(board.Groups[i].Orders, func(a, b database.Order) int {
				return sign * compareBoardRow(field, a, b)
			})
		}
	}
	return board
}

func compareBoardRow(field enum.BoardSortField, a, b database.Order) int {
	switch field {
	case enum.BoardSortItem:
		return foldCompare(a.Item, b.Item)
	case enum.BoardSortUser:
		return foldCompare(a.User, b.User)
	case enum.BoardSortPrice:
		return a.Price.Cmp(b.Price)
	case enum.BoardSortCategory:
		return cmp.Compare(a.SubVendor, b.SubVendor)
	}
	return 0
}

// HistoryService exposes the read-side reports over the application state.
type HistoryService struct {
	state *appdata.State
}

func NewHistoryService(state *appdata.State) *HistoryService {
	return &HistoryService{state: state}
}

func (s *HistoryService) History(p auth.Principal, q HistoryQuery) HistoryPage {
	return ListHistory(s.state.Snapshot().Orders, p, q)
}

func (s *HistoryService) Summary(f SummaryFilter) Summary {
	return DailySummary(s.state.Snapshot(), f)
}

func (s *HistoryService) Balance(name string) decimal.Decimal {
	return OutstandingBalance(s.state.Snapshot().Orders, name)
}

func (s *HistoryService) Stats() Stats {
	return AdminStats(s.state.Snapshot().Orders)
}

func (s *HistoryService) Payers() []string {
	return Payers(s.state.Snapshot().Orders)
}

// SelectedTotal sums only orders p can see.
func (s *HistoryService) SelectedTotal(p auth.Principal, ids []uuid.UUID) decimal.Decimal {
	orders := s.state.Snapshot().Orders
	if !p.Role.Privileged() {
		orders = slices.DeleteFunc(orders, func(o database.Order) bool { return !involves(o, p.Name) })
	}
	return SelectedTotal(orders, ids)
}

func (s *HistoryService) Board(date time.Time, field enum.BoardSortField, dir enum.SortDir) Board {
	return DayBoard(s.state.Snapshot().Orders, date, field, dir)
}
