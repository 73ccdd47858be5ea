package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/enum"
	"github.com/lunchorder/api/internal/events"
)

type capturePublisher struct {
	got []events.Event
}

func (c *capturePublisher) Publish(_ context.Context, e events.Event) error {
	c.got = append(c.got, e)
	return nil
}

func (f *fixture) payments(store PaymentStore, pub events.Publisher) *PaymentService {
	if store == nil {
		store = f.store
	}
	svc := NewPaymentService(f.state, store, pub)
	svc.now = func() time.Time { return f.now }
	return svc
}

func TestPay_MarksUnpaidOnly(t *testing.T) {
	f := newFixture(t)
	pub := &capturePublisher{}
	svc := f.payments(nil, pub)

	unpaid := f.seedOrder(t, database.Order{User: "Alice", Payer: "Alice", Item: "a", Price: dec("4"), Status: enum.OrderStatusUnpaid})
	paid := f.seedOrder(t, database.Order{User: "Alice", Payer: "Alice", Item: "b", Price: dec("4"), Status: enum.OrderStatusPaid})
	missing := uuid.New()

	res, err := svc.Pay(context.Background(), alice, []uuid.UUID{unpaid.ID, paid.ID, missing}, " DN-1234 ")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if len(res.Updated) != 1 || len(res.Skipped) != 1 || len(res.Failed) != 1 {
		t.Fatalf("result: %+v", res)
	}
	got, _ := f.state.Order(unpaid.ID)
	if got.Status != enum.OrderStatusPaid || got.PaymentRef != "DN-1234" || got.PaidAt == nil || !got.PaidAt.Equal(f.now) {
		t.Errorf("paid order: %+v", got)
	}
	if len(pub.got) != 1 || pub.got[0].Type != events.OrderPaid || pub.got[0].Date != "2026-10-19" {
		t.Fatalf("events: %+v", pub.got)
	}
	view, ok := pub.got[0].Payload.(events.OrderView)
	if !ok {
		t.Fatalf("payload type: %T", pub.got[0].Payload)
	}
	if view.ID != unpaid.ID || view.Price != "4.00" || view.Status != "Paid" || view.PaymentRef != "DN-1234" {
		t.Errorf("payload: %+v", view)
	}
}

func TestPay_OtherPeoplesOrders(t *testing.T) {
	f := newFixture(t)
	svc := f.payments(nil, nil)
	bobs := f.seedOrder(t, database.Order{User: "Bob", Payer: "Bob", Item: "a", Price: dec("4")})

	res, err := svc.Pay(context.Background(), alice, []uuid.UUID{bobs.ID}, "x")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if len(res.Failed) != 1 || res.Failed[0].Error != ErrForbidden.Error() {
		t.Fatalf("alice must not pay bob's order: %+v", res)
	}

	res, _ = svc.Pay(context.Background(), coll, []uuid.UUID{bobs.ID}, "x")
	if len(res.Updated) != 1 {
		t.Fatalf("collector may pay any order: %+v", res)
	}
}

func TestPay_PartialFailure(t *testing.T) {
	f := newFixture(t)
	var ids []uuid.UUID
	for range 10 {
		ids = append(ids, f.seedOrder(t, database.Order{User: "Alice", Payer: "Alice", Item: "a", Price: dec("1")}).ID)
	}
	store := &failingStore{MemoryStore: f.store, failIDs: map[uuid.UUID]bool{ids[3]: true, ids[7]: true}}
	svc := f.payments(store, nil)

	res, err := svc.Pay(context.Background(), admin, ids, "ref")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if len(res.Updated) != 8 || len(res.Failed) != 2 {
		t.Fatalf("updated=%d failed=%d", len(res.Updated), len(res.Failed))
	}
	failed, _ := f.state.Order(ids[3])
	if failed.Status.OrDefault() != enum.OrderStatusUnpaid {
		t.Error("a failed write must not change the in-memory order")
	}
}

func TestPay_Empty(t *testing.T) {
	f := newFixture(t)
	if _, err := f.payments(nil, nil).Pay(context.Background(), alice, nil, ""); !errors.Is(err, ErrNoOrdersSelected) {
		t.Fatalf("got %v", err)
	}
}

func TestPayAllOutstanding(t *testing.T) {
	f := newFixture(t)
	svc := f.payments(nil, nil)
	ctx := context.Background()

	f.seedOrder(t, database.Order{User: "Alice", Payer: "Alice", Item: "a", Price: dec("4")})
	f.seedOrder(t, database.Order{User: "Guest", Payer: "Alice", Item: "b", Price: dec("2")})
	f.seedOrder(t, database.Order{User: "Alice", Payer: "Alice", Item: "c", Price: dec("3"), Status: enum.OrderStatusCancelled})
	f.seedOrder(t, database.Order{User: "Bob", Payer: "Bob", Item: "d", Price: dec("5")})

	if _, err := svc.PayAllOutstanding(ctx, alice, "Bob", "x"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}

	res, err := svc.PayAllOutstanding(ctx, alice, "", "DN-1")
	if err != nil {
		t.Fatalf("pay all: %v", err)
	}
	if len(res.Updated) != 2 {
		t.Fatalf("updated: %d", len(res.Updated))
	}
	if bal := OutstandingBalance(f.state.Snapshot().Orders, "Alice"); !bal.IsZero() {
		t.Errorf("balance after settle-all: %s", bal)
	}
}

func TestMarkCompleted(t *testing.T) {
	f := newFixture(t)
	svc := f.payments(nil, nil)
	a := f.seedOrder(t, database.Order{User: "Alice", Payer: "Alice", Item: "a", Price: dec("4"), Status: enum.OrderStatusPaid})
	b := f.seedOrder(t, database.Order{User: "Alice", Payer: "Alice", Item: "b", Price: dec("4")})

	res, err := svc.MarkCompleted(context.Background(), []uuid.UUID{a.ID, b.ID})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(res.Updated) != 2 {
		t.Fatalf("result: %+v", res)
	}
	for _, id := range []uuid.UUID{a.ID, b.ID} {
		if o, _ := f.state.Order(id); o.Status != enum.OrderStatusCompleted {
			t.Errorf("order %s: %s", id, o.Status)
		}
	}
}

func TestSetOrderStatus(t *testing.T) {
	f := newFixture(t)
	svc := f.payments(nil, nil)
	o := f.seedOrder(t, database.Order{User: "Alice", Payer: "Alice", Item: "a", Price: dec("4"), Status: enum.OrderStatusCompleted, PaymentRef: "old"})

	got, err := svc.SetOrderStatus(context.Background(), o.ID, enum.OrderStatusUnpaid, "")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if got.Status != enum.OrderStatusUnpaid || got.PaymentRef != "" || got.PaidAt != nil {
		t.Errorf("override: %+v", got)
	}

	if _, err := svc.SetOrderStatus(context.Background(), o.ID, "Refunded", ""); !errors.Is(err, ErrInvalidOrderStatus) {
		t.Errorf("got %v", err)
	}
	if _, err := svc.SetOrderStatus(context.Background(), uuid.New(), enum.OrderStatusPaid, ""); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("got %v", err)
	}
}

func TestCancelDay_RemovesDayFromSummary(t *testing.T) {
	f := newFixture(t)
	svc := f.payments(nil, nil)
	for _, item := range []string{"a", "b", "c"} {
		f.seedOrder(t, database.Order{User: "Alice", Payer: "Alice", Item: item, Price: dec("4")})
	}
	f.seedOrder(t, database.Order{User: "Alice", Payer: "Alice", Item: "other day", Price: dec("4"), Date: day(2026, 10, 18)})

	res, err := svc.CancelDay(context.Background(), f.date)
	if err != nil {
		t.Fatalf("cancel day: %v", err)
	}
	if len(res.Updated) != 3 {
		t.Fatalf("cancelled: %d", len(res.Updated))
	}

	s := DailySummary(f.state.Snapshot(), SummaryFilter{})
	for _, row := range s.Rows {
		if row.Date.Equal(f.date) {
			t.Fatalf("cancelled day still in summary: %+v", row)
		}
	}
	if len(s.Rows) != 1 {
		t.Fatalf("other days must remain: %+v", s.Rows)
	}
}

func TestSetDayStatus(t *testing.T) {
	f := newFixture(t)
	pub := &capturePublisher{}
	svc := f.payments(nil, pub)
	ctx := context.Background()

	got, err := svc.SetDayStatus(ctx, f.date, enum.DayStatusOrdered)
	if err != nil {
		t.Fatalf("set day status: %v", err)
	}
	if got.Status != enum.DayStatusOrdered || got.Cutoff == nil {
		t.Errorf("existing row should keep its cutoff: %+v", got)
	}

	next := day(2026, 10, 26)
	got, err = svc.SetDayStatus(ctx, next, enum.DayStatusCompleted)
	if err != nil {
		t.Fatalf("set new day status: %v", err)
	}
	if got.VendorID != f.vendor.ID || got.Cutoff != nil {
		t.Errorf("new row should use the first vendor and no cutoff: %+v", got)
	}
	if _, ok := f.state.DailyConfig(next); !ok {
		t.Error("new row not applied to state")
	}
	if len(pub.got) != 2 || pub.got[1].Type != events.DayStatus {
		t.Errorf("events: %+v", pub.got)
	}

	if _, err := svc.SetDayStatus(ctx, next, "Done"); !errors.Is(err, ErrInvalidDayStatus) {
		t.Errorf("got %v", err)
	}
}
