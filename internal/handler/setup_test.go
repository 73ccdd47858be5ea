package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/appdata"
	"github.com/lunchorder/api/internal/auth"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/enum"
	"github.com/lunchorder/api/internal/handler"
	"github.com/lunchorder/api/internal/middleware"
	"github.com/lunchorder/api/internal/service"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

var utc8 = time.FixedZone("UTC+8", 8*3600)

var (
	alice = auth.Principal{UserID: uuid.New(), Name: "Alice", Role: enum.RoleUser}
	bob   = auth.Principal{UserID: uuid.New(), Name: "Bob", Role: enum.RoleUser}
	admin = auth.Principal{UserID: uuid.New(), Name: "Admin", Role: enum.RoleAdmin}
	coll  = auth.Principal{UserID: uuid.New(), Name: "Cara", Role: enum.RoleCollector}
)

// testApp is the whole API over an in-memory store: one vendor scheduled on
// 2026-10-19 with a cutoff at 11:00 local, and the clock at 09:00.
type testApp struct {
	store  *database.MemoryStore
	state  *appdata.State
	vendor database.Vendor
	item   database.MenuItem
	plain  database.MenuItem
	date   time.Time
	now    time.Time
	router chi.Router
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	app := &testApp{
		store: database.NewMemoryStore(),
		date:  time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		now:   time.Date(2026, 10, 19, 9, 0, 0, 0, utc8),
	}
	app.vendor = database.Vendor{ID: uuid.New(), Name: "Kedai Ali", SubVendors: []string{"Rice"}}
	app.item = database.MenuItem{
		ID:        uuid.New(),
		VendorID:  app.vendor.ID,
		Name:      "Chicken Rice",
		Price:     dec("5.00"),
		SubVendor: "Rice",
		Variants:  []database.Option{{Name: "Regular", Price: dec("0")}, {Name: "Large", Price: dec("1.50")}},
		Addons:    []database.Option{{Name: "Egg", Price: dec("0.80")}, {Name: "Extra Rice", Price: dec("1.00")}},
		IsActive:  true,
	}
	app.plain = database.MenuItem{ID: uuid.New(), VendorID: app.vendor.ID, Name: "Teh Ais", Price: dec("2.00"), IsActive: true}
	cutoff := time.Date(2026, 10, 19, 11, 0, 0, 0, utc8)

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	var users []database.User
	for _, p := range []auth.Principal{alice, bob, admin, coll} {
		users = append(users, database.User{ID: p.UserID, Name: p.Name, Role: p.Role, HashedPassword: string(hashed)})
	}

	app.store.Seed(database.Snapshot{
		Vendors:      []database.Vendor{app.vendor},
		Menu:         []database.MenuItem{app.item, app.plain},
		DailyConfigs: []database.DailyConfig{{Date: app.date, VendorID: app.vendor.ID, Cutoff: &cutoff, Status: enum.DayStatusPending}},
		Users:        users,
		Config:       database.GlobalConfig{Announcement: "Order by 11"},
	})
	app.state = appdata.New(app.store)
	if err := app.state.Load(context.Background()); err != nil {
		t.Fatalf("load state: %v", err)
	}

	cal := service.NewCalendar(utc8, 13, 15).WithClock(func() time.Time { return app.now })
	app.router = app.buildRouter(cal)
	return app
}

// buildRouter mirrors the production route table with a fixed clock.
func (app *testApp) buildRouter(cal *service.Calendar) chi.Router {
	orders := service.NewOrderService(app.state, app.store, nil, cal)
	history := service.NewHistoryService(app.state)
	payments := service.NewPaymentService(app.state, app.store, nil)
	adminSvc := service.NewAdminService(app.state, app.store)

	r := chi.NewRouter()
	authHandler := handler.NewAuthHandler(app.state, testSecret)
	authHandler.RegisterRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testSecret, app.state))
		authHandler.RegisterSessionRoutes(r)
		handler.NewDayHandler(orders, history, app.state, cal).RegisterRoutes(r)
		handler.NewOrderHandler(orders).RegisterRoutes(r)

		historyHandler := handler.NewHistoryHandler(history)
		historyHandler.RegisterRoutes(r)
		paymentHandler := handler.NewPaymentHandler(payments)
		paymentHandler.RegisterRoutes(r)
		vendorHandler := handler.NewVendorHandler(adminSvc)
		vendorHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePrivileged)
			historyHandler.RegisterPrivilegedRoutes(r)
			paymentHandler.RegisterPrivilegedRoutes(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enum.RoleAdmin))
			r.Route("/vendors", vendorHandler.RegisterAdminRoutes)
			r.Route("/users", handler.NewUserHandler(adminSvc).RegisterRoutes)
			handler.NewSettingsHandler(adminSvc).RegisterRoutes(r)
		})
	})
	return r
}

// seedOrder writes an order straight to the store and state.
func (app *testApp) seedOrder(t *testing.T, o database.Order) database.Order {
	t.Helper()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Date.IsZero() {
		o.Date = app.date
	}
	if o.Vendor == "" {
		o.Vendor = app.vendor.Name
	}
	if o.Status == "" {
		o.Status = enum.OrderStatusUnpaid
	}
	created, err := app.store.CreateOrder(context.Background(), o)
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	app.state.PutOrder(created)
	return created
}

// --- Request helpers ---

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func doAuthRequest(t *testing.T, router http.Handler, p auth.Principal, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, p.UserID, p.Name, p.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeListResponse(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, want, rr.Body.String())
	}
}
