package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/lunchorder/api/internal/database"
)

func TestToday_RollsOverAtCutoff(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"morning", time.Date(2026, 10, 19, 9, 0, 0, 0, utc8), "2026-10-19"},
		{"just before", time.Date(2026, 10, 19, 13, 14, 0, 0, utc8), "2026-10-19"},
		{"at cutoff", time.Date(2026, 10, 19, 13, 15, 0, 0, utc8), "2026-10-20"},
		{"late utc still same local day", time.Date(2026, 10, 19, 1, 0, 0, 0, time.UTC), "2026-10-19"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app.now = tt.now
			rr := doAuthRequest(t, app.router, alice, "GET", "/calendar/today", nil)
			expectStatus(t, rr, http.StatusOK)
			if got := decodeResponse(t, rr)["date"]; got != tt.want {
				t.Errorf("date: got %v, want %s", got, tt.want)
			}
		})
	}
}

func TestGetConfig(t *testing.T) {
	app := newTestApp(t)

	rr := doAuthRequest(t, app.router, bob, "GET", "/config", nil)
	expectStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["announcement"] != "Order by 11" {
		t.Errorf("announcement: got %v", resp["announcement"])
	}
	if banners, ok := resp["no_service_banners"].([]interface{}); !ok || len(banners) != 0 {
		t.Errorf("no_service_banners: got %v, want empty list", resp["no_service_banners"])
	}
}

func TestGetDay_ScheduledAndOpen(t *testing.T) {
	app := newTestApp(t)
	app.item.IsActive = false
	app.state.PutMenuItem(app.item)

	rr := doAuthRequest(t, app.router, alice, "GET", "/days/2026-10-19", nil)
	expectStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["open"] != true {
		t.Errorf("open: got %v, want true", resp["open"])
	}
	if resp["seconds_to_cutoff"] != float64(2*3600) {
		t.Errorf("seconds_to_cutoff: got %v, want 7200", resp["seconds_to_cutoff"])
	}
	vendor, _ := resp["vendor"].(map[string]interface{})
	if vendor["name"] != "Kedai Ali" {
		t.Errorf("vendor: got %v", resp["vendor"])
	}
	menu, _ := resp["menu"].([]interface{})
	if len(menu) != 1 {
		t.Fatalf("menu: got %d items, want 1 (inactive items hidden)", len(menu))
	}
	if name := menu[0].(map[string]interface{})["name"]; name != "Teh Ais" {
		t.Errorf("menu item: got %v, want Teh Ais", name)
	}
}

func TestGetDay_Unscheduled(t *testing.T) {
	app := newTestApp(t)

	rr := doAuthRequest(t, app.router, alice, "GET", "/days/2026-10-21", nil)
	expectStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["open"] != false {
		t.Errorf("open: got %v, want false", resp["open"])
	}
	if resp["vendor"] != nil {
		t.Errorf("vendor: got %v, want null", resp["vendor"])
	}
	if menu, _ := resp["menu"].([]interface{}); len(menu) != 0 {
		t.Errorf("menu: got %d items, want 0", len(menu))
	}
}

func TestGetDay_InvalidDate(t *testing.T) {
	app := newTestApp(t)

	rr := doAuthRequest(t, app.router, alice, "GET", "/days/tomorrow", nil)
	expectStatus(t, rr, http.StatusBadRequest)
}

func TestDayBoard_GroupsAndTotals(t *testing.T) {
	app := newTestApp(t)
	app.seedOrder(t, database.Order{User: "Alice", Payer: "Alice", SubVendor: "Rice", Item: "Chicken Rice Large", Price: dec("6.50")})
	app.seedOrder(t, database.Order{User: "Bob", Payer: "Bob", Item: "Teh Ais", Price: dec("2.00")})
	app.seedOrder(t, database.Order{User: "Cara", Payer: "Cara", SubVendor: "Rice", Item: "Chicken Rice Regular", Price: dec("5.00")})
	app.seedOrder(t, database.Order{User: "Bob", Payer: "Bob", Item: "Teh Ais", Price: dec("2.00"), Date: app.date.AddDate(0, 0, 1)})

	rr := doAuthRequest(t, app.router, bob, "GET", "/days/2026-10-19/orders?sort=price&dir=desc", nil)
	expectStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["count"] != float64(3) {
		t.Errorf("count: got %v, want 3", resp["count"])
	}
	if resp["grand_total"] != "13.50" {
		t.Errorf("grand_total: got %v, want 13.50", resp["grand_total"])
	}
	groups, _ := resp["groups"].([]interface{})
	if len(groups) != 2 {
		t.Fatalf("groups: got %d, want 2", len(groups))
	}
}

func TestDayBoard_InvalidSort(t *testing.T) {
	app := newTestApp(t)

	expectStatus(t, doAuthRequest(t, app.router, bob, "GET", "/days/2026-10-19/orders?sort=colour", nil), http.StatusBadRequest)
	expectStatus(t, doAuthRequest(t, app.router, bob, "GET", "/days/2026-10-19/orders?dir=up", nil), http.StatusBadRequest)
}
