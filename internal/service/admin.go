package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/appdata"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/enum"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// MainAdminName is the seeded account that can never be deleted.
const MainAdminName = "Admin"

// AdminStore defines the store methods needed by the settings pages.
// Satisfied by *database.Queries and *database.MemoryStore.
type AdminStore interface {
	CreateVendor(ctx context.Context, v database.Vendor) (database.Vendor, error)
	UpdateVendor(ctx context.Context, v database.Vendor) (database.Vendor, error)
	DeleteVendor(ctx context.Context, id uuid.UUID) error

	CreateMenuItem(ctx context.Context, m database.MenuItem) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, m database.MenuItem) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) error

	CreateUser(ctx context.Context, u database.User) (database.User, error)
	UpdateUser(ctx context.Context, u database.User) (database.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	UpsertDailyConfig(ctx context.Context, c database.DailyConfig) (database.DailyConfig, error)
	DeleteDailyConfig(ctx context.Context, date time.Time) error

	SaveGlobalConfig(ctx context.Context, c database.GlobalConfig) (database.GlobalConfig, error)
}

// AdminService implements the settings workflow: vendors, menu, users,
// schedules and the global config.
type AdminService struct {
	state *appdata.State
	store AdminStore
}

func NewAdminService(state *appdata.State, store AdminStore) *AdminService {
	return &AdminService{state: state, store: store}
}

// Refresh reloads the application state from the store.
func (s *AdminService) Refresh(ctx context.Context) error {
	return s.state.Refresh(ctx)
}

// --- Vendors ---

type VendorInput struct {
	Name        string
	Description string
	Banners     []string
	SubVendors  []string
}

func (in VendorInput) vendor(id uuid.UUID) (database.Vendor, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return database.Vendor{}, ErrNameRequired
	}
	return database.Vendor{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Banners:     compact(in.Banners),
		SubVendors:  compact(in.SubVendors),
	}, nil
}

func (s *AdminService) ListVendors() []database.Vendor {
	return s.state.Snapshot().Vendors
}

func (s *AdminService) GetVendor(id uuid.UUID) (database.Vendor, error) {
	v, ok := s.state.Vendor(id)
	if !ok {
		return database.Vendor{}, ErrVendorNotFound
	}
	return v, nil
}

func (s *AdminService) CreateVendor(ctx context.Context, in VendorInput) (database.Vendor, error) {
	v, err := in.vendor(uuid.New())
	if err != nil {
		return database.Vendor{}, err
	}
	created, err := s.store.CreateVendor(ctx, v)
	if err != nil {
		return database.Vendor{}, fmt.Errorf("create vendor: %w", err)
	}
	s.state.PutVendor(created)
	return created, nil
}

func (s *AdminService) UpdateVendor(ctx context.Context, id uuid.UUID, in VendorInput) (database.Vendor, error) {
	if _, ok := s.state.Vendor(id); !ok {
		return database.Vendor{}, ErrVendorNotFound
	}
	v, err := in.vendor(id)
	if err != nil {
		return database.Vendor{}, err
	}
	saved, err := s.store.UpdateVendor(ctx, v)
	if err != nil {
		return database.Vendor{}, storeErr("update vendor", err, ErrVendorNotFound, ErrNameTaken)
	}
	s.state.PutVendor(saved)
	return saved, nil
}

// DeleteVendor removes a vendor and its menu. A vendor still on the
// schedule cannot be deleted.
func (s *AdminService) DeleteVendor(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.state.Vendor(id); !ok {
		return ErrVendorNotFound
	}
	if err := s.store.DeleteVendor(ctx, id); err != nil {
		return storeErr("delete vendor", err, ErrVendorNotFound, ErrVendorInUse)
	}
	s.state.RemoveVendor(id)
	return nil
}

// --- Menu items ---

type MenuItemInput struct {
	Name        string
	Description string
	Price       string
	SubVendor   string
	Addons      []database.Option
	Variants    []database.Option
	IsActive    *bool
}

func (in MenuItemInput) item(id, vendorID uuid.UUID, active bool) (database.MenuItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return database.MenuItem{}, ErrNameRequired
	}
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil || price.IsNegative() {
		return database.MenuItem{}, ErrInvalidPrice
	}
	addons, err := compactOptions(in.Addons)
	if err != nil {
		return database.MenuItem{}, err
	}
	variants, err := compactOptions(in.Variants)
	if err != nil {
		return database.MenuItem{}, err
	}
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return database.MenuItem{
		ID:          id,
		VendorID:    vendorID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       price,
		SubVendor:   strings.TrimSpace(in.SubVendor),
		Addons:      addons,
		Variants:    variants,
		IsActive:    active,
	}, nil
}

// ListMenu returns a vendor's items, active or not.
func (s *AdminService) ListMenu(vendorID uuid.UUID) ([]database.MenuItem, error) {
	if _, ok := s.state.Vendor(vendorID); !ok {
		return nil, ErrVendorNotFound
	}
	menu := s.state.Snapshot().Menu
	return slices.DeleteFunc(menu, func(m database.MenuItem) bool { return m.VendorID != vendorID }), nil
}

func (s *AdminService) CreateMenuItem(ctx context.Context, vendorID uuid.UUID, in MenuItemInput) (database.MenuItem, error) {
	if _, ok := s.state.Vendor(vendorID); !ok {
		return database.MenuItem{}, ErrVendorNotFound
	}
	m, err := in.item(uuid.New(), vendorID, true)
	if err != nil {
		return database.MenuItem{}, err
	}
	created, err := s.store.CreateMenuItem(ctx, m)
	if err != nil {
		return database.MenuItem{}, storeErr("create menu item", err, ErrVendorNotFound, ErrVendorNotFound)
	}
	s.state.PutMenuItem(created)
	return created, nil
}

func (s *AdminService) UpdateMenuItem(ctx context.Context, id uuid.UUID, in MenuItemInput) (database.MenuItem, error) {
	cur, ok := s.state.MenuItem(id)
	if !ok {
		return database.MenuItem{}, ErrItemNotFound
	}
	m, err := in.item(id, cur.VendorID, cur.IsActive)
	if err != nil {
		return database.MenuItem{}, err
	}
	return s.saveMenuItem(ctx, m)
}

// SetMenuItemActive toggles whether an item can be ordered.
func (s *AdminService) SetMenuItemActive(ctx context.Context, id uuid.UUID, active bool) (database.MenuItem, error) {
	m, ok := s.state.MenuItem(id)
	if !ok {
		return database.MenuItem{}, ErrItemNotFound
	}
	m.IsActive = active
	return s.saveMenuItem(ctx, m)
}

func (s *AdminService) saveMenuItem(ctx context.Context, m database.MenuItem) (database.MenuItem, error) {
	saved, err := s.store.UpdateMenuItem(ctx, m)
	if err != nil {
		return database.MenuItem{}, storeErr("update menu item", err, ErrItemNotFound, ErrItemNotFound)
	}
	s.state.PutMenuItem(saved)
	return saved, nil
}

func (s *AdminService) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.state.MenuItem(id); !ok {
		return ErrItemNotFound
	}
	if err := s.store.DeleteMenuItem(ctx, id); err != nil {
		return storeErr("delete menu item", err, ErrItemNotFound, ErrItemNotFound)
	}
	s.state.RemoveMenuItem(id)
	return nil
}

// --- Users ---

type UserInput struct {
	Name string
	// Password may be left empty on update to keep the current one.
	Password string
	Role     string
}

func (s *AdminService) ListUsers() []database.User {
	users := s.state.Snapshot().Users
	slices.SortFunc(users, func(a, b database.User) int { return foldCompare(a.Name, b.Name) })
	return users
}

func (s *AdminService) CreateUser(ctx context.Context, in UserInput) (database.User, error) {
	if in.Password == "" {
		return database.User{}, ErrPasswordRequired
	}
	u, err := s.buildUser(uuid.New(), in)
	if err != nil {
		return database.User{}, err
	}
	created, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return database.User{}, storeErr("create user", err, ErrUserNotFound, ErrNameTaken)
	}
	s.state.PutUser(created)
	return created, nil
}

func (s *AdminService) UpdateUser(ctx context.Context, id uuid.UUID, in UserInput) (database.User, error) {
	cur, ok := s.state.User(id)
	if !ok {
		return database.User{}, ErrUserNotFound
	}
	u, err := s.buildUser(id, in)
	if err != nil {
		return database.User{}, err
	}
	if in.Password == "" {
		u.HashedPassword = cur.HashedPassword
	}
	saved, err := s.store.UpdateUser(ctx, u)
	if err != nil {
		return database.User{}, storeErr("update user", err, ErrUserNotFound, ErrNameTaken)
	}
	s.state.PutUser(saved)
	return saved, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	u, ok := s.state.User(id)
	if !ok {
		return ErrUserNotFound
	}
	if strings.EqualFold(u.Name, MainAdminName) {
		return ErrProtectedUser
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return storeErr("delete user", err, ErrUserNotFound, ErrUserNotFound)
	}
	s.state.RemoveUser(id)
	return nil
}

func (s *AdminService) buildUser(id uuid.UUID, in UserInput) (database.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return database.User{}, ErrNameRequired
	}
	role := enum.RoleUser
	if in.Role != "" {
		r, err := enum.ParseRole(in.Role)
		if err != nil {
			return database.User{}, ErrInvalidRole
		}
		role = r
	}
	if other, ok := s.state.UserByName(name); ok && other.ID != id {
		return database.User{}, ErrNameTaken
	}
	u := database.User{ID: id, Name: name, Role: role}
	if in.Password != "" {
		hash, err := HashPassword(in.Password)
		if err != nil {
			return database.User{}, err
		}
		u.HashedPassword = hash
	}
	return u, nil
}

// AccountStore is what bootstrapping the main admin needs.
// Satisfied by *database.Queries and *database.MemoryStore.
type AccountStore interface {
	GetUserByName(ctx context.Context, name string) (database.User, error)
	CreateUser(ctx context.Context, u database.User) (database.User, error)
}

// EnsureMainAdmin creates the protected main admin account with password
// unless it already exists. created reports whether a new row was written.
func EnsureMainAdmin(ctx context.Context, store AccountStore, password string) (u database.User, created bool, err error) {
	existing, err := store.GetUserByName(ctx, MainAdminName)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return database.User{}, false, fmt.Errorf("check admin: %w", err)
	}
	if password == "" {
		return database.User{}, false, ErrPasswordRequired
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return database.User{}, false, err
	}
	u, err = store.CreateUser(ctx, database.User{
		ID:             uuid.New(),
		Name:           MainAdminName,
		HashedPassword: hashed,
		Role:           enum.RoleAdmin,
	})
	if err != nil {
		return database.User{}, false, fmt.Errorf("insert admin: %w", err)
	}
	return u, true, nil
}

// HashPassword bcrypt-hashes a password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// --- Schedules ---

type ScheduleInput struct {
	VendorID uuid.UUID
	Cutoff   *time.Time
	Status   string
}

// ListSchedules returns every schedule, newest date first.
func (s *AdminService) ListSchedules() []database.DailyConfig {
	days := s.state.Snapshot().DailyConfigs
	slices.SortFunc(days, func(a, b database.DailyConfig) int { return b.Date.Compare(a.Date) })
	return days
}

// UpsertSchedule sets the vendor, cutoff and status for date. An empty
// status keeps the current one.
func (s *AdminService) UpsertSchedule(ctx context.Context, date time.Time, in ScheduleInput) (database.DailyConfig, error) {
	if _, ok := s.state.Vendor(in.VendorID); !ok {
		return database.DailyConfig{}, ErrVendorNotFound
	}
	day := database.DailyConfig{Date: date, VendorID: in.VendorID, Cutoff: in.Cutoff, Status: enum.DayStatusPending}
	if cur, ok := s.state.DailyConfig(date); ok {
		day.Status = cur.Status.OrDefault()
	}
	if in.Status != "" {
		st, err := enum.ParseDayStatus(in.Status)
		if err != nil {
			return database.DailyConfig{}, ErrInvalidDayStatus
		}
		day.Status = st
	}

	saved, err := s.store.UpsertDailyConfig(ctx, day)
	if err != nil {
		return database.DailyConfig{}, storeErr("upsert schedule", err, ErrVendorNotFound, ErrVendorNotFound)
	}
	s.state.PutDailyConfig(saved)
	return saved, nil
}

func (s *AdminService) DeleteSchedule(ctx context.Context, date time.Time) error {
	if _, ok := s.state.DailyConfig(date); !ok {
		return ErrScheduleNotFound
	}
	if err := s.store.DeleteDailyConfig(ctx, date); err != nil {
		return storeErr("delete schedule", err, ErrScheduleNotFound, ErrScheduleNotFound)
	}
	s.state.RemoveDailyConfig(date)
	return nil
}

// --- Global config ---

func (s *AdminService) Config() database.GlobalConfig {
	return s.state.Config()
}

func (s *AdminService) SaveConfig(ctx context.Context, c database.GlobalConfig) (database.GlobalConfig, error) {
	c.Announcement = strings.TrimSpace(c.Announcement)
	c.NoServiceBanners = compact(c.NoServiceBanners)
	saved, err := s.store.SaveGlobalConfig(ctx, c)
	if err != nil {
		return database.GlobalConfig{}, fmt.Errorf("save config: %w", err)
	}
	s.state.SetConfig(saved)
	return saved, nil
}

// --- Helpers ---

// storeErr translates store sentinels into service errors.
func storeErr(op string, err, notFound, conflict error) error {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return notFound
	case errors.Is(err, database.ErrConflict):
		return conflict
	}
	return fmt.Errorf("%s: %w", op, err)
}

// compact trims entries and drops blanks.
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func compactOptions(in []database.Option) ([]database.Option, error) {
	out := make([]database.Option, 0, len(in))
	for _, o := range in {
		o.Name = strings.TrimSpace(o.Name)
		if o.Name == "" {
			continue
		}
		if o.Price.IsNegative() {
			return nil, ErrInvalidPrice
		}
		out = append(out, o)
	}
	return out, nil
}
