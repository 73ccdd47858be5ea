package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/events"
	"github.com/lunchorder/api/internal/service"
	"github.com/shopspring/decimal"
)

// Money is rendered as a two-decimal string.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type orderResponse = events.OrderView

func toOrderResponse(o database.Order) orderResponse {
	return events.NewOrderView(o)
}

func toOrderResponses(orders []database.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	return out
}

type optionResponse struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

func toOptionResponses(opts []database.Option) []optionResponse {
	out := make([]optionResponse, len(opts))
	for i, o := range opts {
		out[i] = optionResponse{Name: o.Name, Price: money(o.Price)}
	}
	return out
}

type menuItemResponse struct {
	ID          uuid.UUID        `json:"id"`
	VendorID    uuid.UUID        `json:"vendor_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       string           `json:"price"`
	SubVendor   string           `json:"sub_vendor"`
	Addons      []optionResponse `json:"addons"`
	Variants    []optionResponse `json:"variants"`
	IsActive    bool             `json:"is_active"`
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          m.ID,
		VendorID:    m.VendorID,
		Name:        m.Name,
		Description: m.Description,
		Price:       money(m.Price),
		SubVendor:   m.SubVendor,
		Addons:      toOptionResponses(m.Addons),
		Variants:    toOptionResponses(m.Variants),
		IsActive:    m.IsActive,
	}
}

func toMenuItemResponses(items []database.MenuItem) []menuItemResponse {
	out := make([]menuItemResponse, len(items))
	for i, m := range items {
		out[i] = toMenuItemResponse(m)
	}
	return out
}

type vendorResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Banners     []string  `json:"banners"`
	SubVendors  []string  `json:"sub_vendors"`
}

func toVendorResponse(v database.Vendor) vendorResponse {
	return vendorResponse{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description,
		Banners:     nonNil(v.Banners),
		SubVendors:  nonNil(v.SubVendors),
	}
}

func toVendorResponses(vs []database.Vendor) []vendorResponse {
	out := make([]vendorResponse, len(vs))
	for i, v := range vs {
		out[i] = toVendorResponse(v)
	}
	return out
}

type userResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role string    `json:"role"`
}

func toUserResponse(u database.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Role: string(u.Role)}
}

type scheduleResponse struct {
	Date     string     `json:"date"`
	VendorID uuid.UUID  `json:"vendor_id"`
	Cutoff   *time.Time `json:"cutoff"`
	Status   string     `json:"status"`
}

func toScheduleResponse(c database.DailyConfig) scheduleResponse {
	return scheduleResponse{
		Date:     service.FormatDate(c.Date),
		VendorID: c.VendorID,
		Cutoff:   c.Cutoff,
		Status:   string(c.Status.OrDefault()),
	}
}

type paymentResponse struct {
	QRURL    string `json:"qr_url"`
	BankName string `json:"bank_name"`
	AccNo    string `json:"acc_no"`
	Holder   string `json:"holder"`
}

type configResponse struct {
	Announcement     string          `json:"announcement"`
	NoServiceBanners []string        `json:"no_service_banners"`
	Payment          paymentResponse `json:"payment"`
}

func toConfigResponse(c database.GlobalConfig) configResponse {
	return configResponse{
		Announcement:     c.Announcement,
		NoServiceBanners: nonNil(c.NoServiceBanners),
		Payment: paymentResponse{
			QRURL:    c.Payment.QRURL,
			BankName: c.Payment.BankName,
			AccNo:    c.Payment.AccNo,
			Holder:   c.Payment.Holder,
		},
	}
}

type batchFailureResponse struct {
	ID    uuid.UUID `json:"id"`
	Error string    `json:"error"`
}

type batchResponse struct {
	Updated []orderResponse        `json:"updated"`
	Skipped []uuid.UUID            `json:"skipped"`
	Failed  []batchFailureResponse `json:"failed"`
}

func toBatchResponse(res service.BatchResult) batchResponse {
	out := batchResponse{
		Updated: toOrderResponses(res.Updated),
		Skipped: res.Skipped,
		Failed:  make([]batchFailureResponse, len(res.Failed)),
	}
	if out.Skipped == nil {
		out.Skipped = []uuid.UUID{}
	}
	for i, f := range res.Failed {
		out.Failed[i] = batchFailureResponse{ID: f.ID, Error: f.Error}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
