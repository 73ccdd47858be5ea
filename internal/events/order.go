package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/database"
)

// OrderView is the wire shape of an order, shared by the HTTP API and the
// event payloads so board watchers and broker consumers decode one format.
type OrderView struct {
	ID         uuid.UUID  `json:"id"`
	Date       string     `json:"date"`
	User       string     `json:"user"`
	Payer      string     `json:"payer"`
	Vendor     string     `json:"vendor"`
	SubVendor  string     `json:"sub_vendor"`
	Item       string     `json:"item"`
	Addons     []string   `json:"addons"`
	Remarks    string     `json:"remarks"`
	Price      string     `json:"price"`
	Status     string     `json:"status"`
	PaymentRef string     `json:"payment_ref"`
	PaidAt     *time.Time `json:"paid_at"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
}

func NewOrderView(o database.Order) OrderView {
	addons := o.Addons
	if addons == nil {
		addons = []string{}
	}
	return OrderView{
		ID:         o.ID,
		Date:       o.Date.UTC().Format(time.DateOnly),
		User:       o.User,
		Payer:      o.Payer,
		Vendor:     o.Vendor,
		SubVendor:  o.SubVendor,
		Item:       o.Item,
		Addons:     addons,
		Remarks:    o.Remarks,
		Price:      o.Price.StringFixed(2),
		Status:     string(o.Status.OrDefault()),
		PaymentRef: o.PaymentRef,
		PaidAt:     o.PaidAt,
		CreatedBy:  o.CreatedBy,
		CreatedAt:  o.CreatedAt,
	}
}
