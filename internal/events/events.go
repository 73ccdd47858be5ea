package events

import (
	"context"
	"log"
)

// Event types. The type doubles as the RabbitMQ routing key.
const (
	OrderCreated   = "order.created"
	OrderUpdated   = "order.updated"
	OrderDeleted   = "order.deleted"
	OrderPaid      = "order.paid"
	OrderCompleted = "order.completed"
	OrderCancelled = "order.cancelled"
	OrderStatus    = "order.status"
	DayStatus      = "day.status"
)

// Event is an order-board change scoped to one ordering date (YYYY-MM-DD).
type Event struct {
	Type    string `json:"type"`
	Date    string `json:"date"`
	Payload any    `json:"payload"`
}

// Publisher delivers events to one destination.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Fanout publishes to every destination. A failing destination is logged
// and does not stop the others; event delivery never fails a workflow.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e Event) error {
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			log.Printf("WARNING: publish %s for %s: %v", e.Type, e.Date, err)
		}
	}
	return nil
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }
