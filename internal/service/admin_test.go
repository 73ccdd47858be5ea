package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/enum"
	"golang.org/x/crypto/bcrypt"
)

func TestVendorLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewAdminService(f.state, f.store)
	ctx := context.Background()

	if _, err := svc.CreateVendor(ctx, VendorInput{Name: "  "}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("got %v, want ErrNameRequired", err)
	}

	v, err := svc.CreateVendor(ctx, VendorInput{
		Name:       "Mee Stall",
		Banners:    []string{"https://img/1.png", " ", ""},
		SubVendors: []string{"Noodles", ""},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(v.Banners) != 1 || len(v.SubVendors) != 1 {
		t.Errorf("blank entries should be dropped: %+v", v)
	}

	m, err := svc.CreateMenuItem(ctx, v.ID, MenuItemInput{Name: "Mee Goreng", Price: "5.50"})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if !m.IsActive {
		t.Error("new items are active")
	}

	if err := svc.DeleteVendor(ctx, v.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := f.state.MenuItem(m.ID); ok {
		t.Error("menu item should be removed with its vendor")
	}
}

func TestDeleteScheduledVendor(t *testing.T) {
	f := newFixture(t)
	svc := NewAdminService(f.state, f.store)

	err := svc.DeleteVendor(context.Background(), f.vendor.ID)
	if !errors.Is(err, ErrVendorInUse) {
		t.Fatalf("got %v, want ErrVendorInUse", err)
	}
	if _, ok := f.state.Vendor(f.vendor.ID); !ok {
		t.Fatal("vendor must remain in state")
	}
}

func TestMenuItemValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewAdminService(f.state, f.store)
	ctx := context.Background()

	tests := []struct {
		name string
		in   MenuItemInput
		want error
	}{
		{"no name", MenuItemInput{Price: "1"}, ErrNameRequired},
		{"bad price", MenuItemInput{Name: "x", Price: "abc"}, ErrInvalidPrice},
		{"negative price", MenuItemInput{Name: "x", Price: "-1"}, ErrInvalidPrice},
		{"negative addon", MenuItemInput{Name: "x", Price: "1", Addons: []database.Option{{Name: "Egg", Price: dec("-0.5")}}}, ErrInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateMenuItem(ctx, f.vendor.ID, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := svc.CreateMenuItem(ctx, uuid.New(), MenuItemInput{Name: "x", Price: "1"}); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("got %v, want ErrVendorNotFound", err)
	}

	m, err := svc.SetMenuItemActive(ctx, f.item.ID, false)
	if err != nil || m.IsActive {
		t.Fatalf("toggle: %+v %v", m, err)
	}
	if len(m.Variants) != 2 {
		t.Error("toggle must keep variants")
	}
}

func TestUserLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewAdminService(f.state, f.store)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, UserInput{Name: "Dan"}); !errors.Is(err, ErrPasswordRequired) {
		t.Fatalf("got %v", err)
	}
	if _, err := svc.CreateUser(ctx, UserInput{Name: "alice", Password: "pw"}); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("got %v, want ErrNameTaken", err)
	}
	if _, err := svc.CreateUser(ctx, UserInput{Name: "Dan", Password: "pw", Role: "owner"}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("got %v, want ErrInvalidRole", err)
	}

	u, err := svc.CreateUser(ctx, UserInput{Name: "Dan", Password: "secret", Role: "collector"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Role != enum.RoleCollector {
		t.Errorf("role: %s", u.Role)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte("secret")) != nil {
		t.Error("password must be stored as a bcrypt hash")
	}

	updated, err := svc.UpdateUser(ctx, u.ID, UserInput{Name: "Daniel"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.HashedPassword != u.HashedPassword || updated.Role != enum.RoleUser {
		t.Errorf("empty password keeps the hash: %+v", updated)
	}

	if err := svc.DeleteUser(ctx, admin.UserID); !errors.Is(err, ErrProtectedUser) {
		t.Fatalf("got %v, want ErrProtectedUser", err)
	}
	if err := svc.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := f.state.UserByName("Daniel"); ok {
		t.Error("user still in state")
	}
}

func TestSchedules(t *testing.T) {
	f := newFixture(t)
	svc := NewAdminService(f.state, f.store)
	ctx := context.Background()
	next := day(2026, 10, 20)

	if _, err := svc.UpsertSchedule(ctx, next, ScheduleInput{VendorID: uuid.New()}); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("got %v", err)
	}

	cutoff := time.Date(2026, 10, 20, 11, 0, 0, 0, utc8)
	got, err := svc.UpsertSchedule(ctx, next, ScheduleInput{VendorID: f.vendor.ID, Cutoff: &cutoff})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got.Status != enum.DayStatusPending {
		t.Errorf("new schedule status: %s", got.Status)
	}

	list := svc.ListSchedules()
	if len(list) != 2 || !list[0].Date.Equal(next) {
		t.Errorf("schedules should be newest first: %+v", list)
	}

	if err := svc.DeleteSchedule(ctx, next); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteSchedule(ctx, next); !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestSaveConfig(t *testing.T) {
	f := newFixture(t)
	svc := NewAdminService(f.state, f.store)

	saved, err := svc.SaveConfig(context.Background(), database.GlobalConfig{
		Announcement:     " Office closed Friday ",
		NoServiceBanners: []string{"", "https://img/closed.png"},
		Payment:          database.PaymentConfig{BankName: "Maybank", AccNo: "1234", Holder: "Cara"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Announcement != "Office closed Friday" || len(saved.NoServiceBanners) != 1 {
		t.Errorf("saved: %+v", saved)
	}
	if svc.Config().Payment.BankName != "Maybank" {
		t.Error("config not applied to state")
	}
}

func TestRefreshPicksUpStoreChanges(t *testing.T) {
	f := newFixture(t)
	svc := NewAdminService(f.state, f.store)

	f.store.CreateVendor(context.Background(), database.Vendor{ID: uuid.New(), Name: "Outside change"})
	if len(svc.ListVendors()) != 1 {
		t.Fatal("state should not see the change before refresh")
	}
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(svc.ListVendors()) != 2 {
		t.Fatal("refresh should load the new vendor")
	}
}
