package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Option is a priced choice on a menu item: a variant or an add-on.
type Option struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type User struct {
	ID             uuid.UUID
	Name           string
	HashedPassword string
	Role           enum.Role
	CreatedAt      time.Time
}

type Vendor struct {
	ID          uuid.UUID
	Name        string
	Description string
	Banners     []string
	SubVendors  []string
	CreatedAt   time.Time
}

type MenuItem struct {
	ID          uuid.UUID
	VendorID    uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	SubVendor   string
	Addons      []Option
	Variants    []Option
	IsActive    bool
	CreatedAt   time.Time
}

// DailyConfig schedules a vendor for one calendar date. Date is midnight UTC.
type DailyConfig struct {
	Date     time.Time
	VendorID uuid.UUID
	Cutoff   *time.Time
	Status   enum.DayStatus
}

type Order struct {
	ID         uuid.UUID
	Date       time.Time
	User       string
	Payer      string
	Vendor     string
	SubVendor  string
	Item       string
	Addons     []string
	Remarks    string
	Price      decimal.Decimal
	Status     enum.OrderStatus
	PaymentRef string
	PaidAt     *time.Time
	CreatedBy  string
	CreatedAt  time.Time
}

type PaymentConfig struct {
	QRURL    string `json:"qrUrl"`
	BankName string `json:"bankName"`
	AccNo    string `json:"accNo"`
	Holder   string `json:"holder"`
}

type GlobalConfig struct {
	Announcement     string
	NoServiceBanners []string
	Payment          PaymentConfig
}

// Snapshot is everything the application keeps in memory.
type Snapshot struct {
	Vendors      []Vendor
	Menu         []MenuItem
	Orders       []Order
	DailyConfigs []DailyConfig
	Config       GlobalConfig
	Users        []User
}
