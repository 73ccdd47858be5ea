package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/appdata"
	"github.com/lunchorder/api/internal/auth"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/enum"
	"github.com/lunchorder/api/internal/events"
	"golang.org/x/sync/errgroup"
)

// maxInFlight bounds concurrent store writes in a batch.
const maxInFlight = 8

// PaymentStore defines the store methods needed by payment and day operations.
// Satisfied by *database.Queries and *database.MemoryStore.
type PaymentStore interface {
	UpdateOrder(ctx context.Context, o database.Order) (database.Order, error)
	UpsertDailyConfig(ctx context.Context, c database.DailyConfig) (database.DailyConfig, error)
}

// BatchFailure is one order a batch operation could not change.
type BatchFailure struct {
	ID    uuid.UUID
	Error string
}

// BatchResult reports a batch operation order by order. There is no
// atomicity across orders.
type BatchResult struct {
	Updated []database.Order
	Skipped []uuid.UUID
	Failed  []BatchFailure
}

// PaymentService handles payment and day-level status changes.
type PaymentService struct {
	state  *appdata.State
	store  PaymentStore
	events events.Publisher
	now    func() time.Time
}

func NewPaymentService(state *appdata.State, store PaymentStore, pub events.Publisher) *PaymentService {
	return &PaymentService{state: state, store: store, events: pub, now: time.Now}
}

// Pay marks every selected unpaid order as paid with ref. Non-privileged
// callers may only pay orders they are named on.
func (s *PaymentService) Pay(ctx context.Context, p auth.Principal, ids []uuid.UUID, ref string) (BatchResult, error) {
	if len(ids) == 0 {
		return BatchResult{}, ErrNoOrdersSelected
	}
	var res BatchResult
	var targets []database.Order
	for _, id := range ids {
		o, ok := s.state.Order(id)
		switch {
		case !ok:
			res.Failed = append(res.Failed, BatchFailure{ID: id, Error: ErrOrderNotFound.Error()})
		case !p.Role.Privileged() && !involves(o, p.Name):
			res.Failed = append(res.Failed, BatchFailure{ID: id, Error: ErrForbidden.Error()})
		case o.Status.OrDefault() != enum.OrderStatusUnpaid:
			res.Skipped = append(res.Skipped, id)
		default:
			targets = append(targets, o)
		}
	}

	paidAt := s.now()
	ref = strings.TrimSpace(ref)
	s.run(ctx, targets, &res, events.OrderPaid, func(o database.Order) database.Order {
		o.Status = enum.OrderStatusPaid
		o.PaymentRef = ref
		o.PaidAt = &paidAt
		return o
	})
	return res, nil
}

// PayAllOutstanding pays every unpaid order where target is user or payer.
// Non-privileged callers can only settle their own orders.
func (s *PaymentService) PayAllOutstanding(ctx context.Context, p auth.Principal, target, ref string) (BatchResult, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		target = p.Name
	}
	if !p.Role.Privileged() && !strings.EqualFold(target, p.Name) {
		return BatchResult{}, ErrForbidden
	}

	var ids []uuid.UUID
	for _, o := range s.state.Snapshot().Orders {
		if o.Status.OrDefault() == enum.OrderStatusUnpaid && involves(o, target) {
			ids = append(ids, o.ID)
		}
	}
	if len(ids) == 0 {
		return BatchResult{}, nil
	}
	return s.Pay(ctx, p, ids, ref)
}

// MarkCompleted sets the selected orders to Completed whatever their status.
func (s *PaymentService) MarkCompleted(ctx context.Context, ids []uuid.UUID) (BatchResult, error) {
	if len(ids) == 0 {
		return BatchResult{}, ErrNoOrdersSelected
	}
	var res BatchResult
	var targets []database.Order
	for _, id := range ids {
		o, ok := s.state.Order(id)
		switch {
		case !ok:
			res.Failed = append(res.Failed, BatchFailure{ID: id, Error: ErrOrderNotFound.Error()})
		case o.Status == enum.OrderStatusCompleted:
			res.Skipped = append(res.Skipped, id)
		default:
			targets = append(targets, o)
		}
	}
	s.run(ctx, targets, &res, events.OrderCompleted, func(o database.Order) database.Order {
		o.Status = enum.OrderStatusCompleted
		return o
	})
	return res, nil
}

// SetOrderStatus is the admin override: any status, any payment reference.
func (s *PaymentService) SetOrderStatus(ctx context.Context, id uuid.UUID, status enum.OrderStatus, ref string) (database.Order, error) {
	if !status.Valid() {
		return database.Order{}, ErrInvalidOrderStatus
	}
	o, ok := s.state.Order(id)
	if !ok {
		return database.Order{}, ErrOrderNotFound
	}

	o.Status = status
	o.PaymentRef = strings.TrimSpace(ref)
	switch status {
	case enum.OrderStatusUnpaid:
		o.PaidAt = nil
	case enum.OrderStatusPaid, enum.OrderStatusCompleted:
		if o.PaidAt == nil {
			now := s.now()
			o.PaidAt = &now
		}
	case enum.OrderStatusCancelled:
	}

	saved, err := s.store.UpdateOrder(ctx, o)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("update order: %w", err)
	}
	s.state.PutOrder(saved)
	s.publish(ctx, events.OrderStatus, FormatDate(saved.Date), events.NewOrderView(saved))
	return saved, nil
}

// CancelDay cancels every order on date.
func (s *PaymentService) CancelDay(ctx context.Context, date time.Time) (BatchResult, error) {
	var res BatchResult
	var targets []database.Order
	for _, o := range s.state.Snapshot().Orders {
		if !o.Date.Equal(date) {
			continue
		}
		if o.Status == enum.OrderStatusCancelled {
			res.Skipped = append(res.Skipped, o.ID)
			continue
		}
		targets = append(targets, o)
	}
	s.run(ctx, targets, &res, events.OrderCancelled, func(o database.Order) database.Order {
		o.Status = enum.OrderStatusCancelled
		return o
	})
	return res, nil
}

// SetDayStatus upserts the schedule row for date. A date with no schedule
// gets the first vendor and no cutoff.
func (s *PaymentService) SetDayStatus(ctx context.Context, date time.Time, status enum.DayStatus) (database.DailyConfig, error) {
	if !status.Valid() {
		return database.DailyConfig{}, ErrInvalidDayStatus
	}
	day, ok := s.state.DailyConfig(date)
	if !ok {
		vendors := s.state.Snapshot().Vendors
		if len(vendors) == 0 {
			return database.DailyConfig{}, ErrNoVendors
		}
		day = database.DailyConfig{Date: date, VendorID: vendors[0].ID}
	}
	day.Status = status

	saved, err := s.store.UpsertDailyConfig(ctx, day)
	if err != nil {
		return database.DailyConfig{}, fmt.Errorf("upsert daily config: %w", err)
	}
	s.state.PutDailyConfig(saved)
	s.publish(ctx, events.DayStatus, FormatDate(date), map[string]any{"date": FormatDate(date), "status": saved.Status})
	return saved, nil
}

// run applies mutate to each target and persists them concurrently. Each
// order is applied to the state only after its own write succeeds.
func (s *PaymentService) run(ctx context.Context, targets []database.Order, res *BatchResult, evType string, mutate func(database.Order) database.Order) {
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(maxInFlight)

	for _, o := range targets {
		g.Go(func() error {
			saved, err := s.store.UpdateOrder(ctx, mutate(o))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("ERROR: batch update order %s: %v", o.ID, err)
				res.Failed = append(res.Failed, BatchFailure{ID: o.ID, Error: err.Error()})
				return nil
			}
			s.state.PutOrder(saved)
			res.Updated = append(res.Updated, saved)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range res.Updated {
		s.publish(ctx, evType, FormatDate(o.Date), events.NewOrderView(o))
	}
}

func (s *PaymentService) publish(ctx context.Context, typ, date string, payload any) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, events.Event{Type: typ, Date: date, Payload: payload})
}
