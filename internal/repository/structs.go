package repository

import (
	"errors"
	"time"
)

var (
	ErrObjectNotFound = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrBadCredentials = errors.New("invalid credentials")
)

type Order struct {
	ID                string     `db:"id"`
	OrderNumber       string     `db:"order_number"`
	UserID            string     `db:"user_id"`
	Status            string     `db:"status"`
	Quantity          int        `db:"quantity"`
	TotalPriceCents   int64      `db:"total_price_cents"`
	TrackingNumber    *string    `db:"tracking_number"`
	ShippingAddressID *string    `db:"shipping_address_id"`
	PrintedAt         *time.Time `db:"printed_at"`
	ShippedAt         *time.Time `db:"shipped_at"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

type OrderFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

// OrderUpdate carries the columns a fulfillment transition writes. Nil
// pointers keep the stored value.
type OrderUpdate struct {
	Status         string
	PrintedAt      *time.Time
	ShippedAt      *time.Time
	TrackingNumber *string
	UpdatedAt      time.Time
}

type HistoryEntry struct {
	ID        int64     `db:"id"`
	OrderID   string    `db:"order_id"`
	Status    string    `db:"status"`
	ChangedBy string    `db:"changed_by"`
	ChangedAt time.Time `db:"changed_at"`
}

type PlasticType struct {
	ID           string     `db:"id"`
	Manufacturer string     `db:"manufacturer"`
	PlasticName  string     `db:"plastic_name"`
	DisplayOrder *int       `db:"display_order"`
	Status       string     `db:"status"`
	SubmittedBy  *string    `db:"submitted_by"`
	ApprovedAt   *time.Time `db:"approved_at"`
	ApprovedBy   *string    `db:"approved_by"`
	CreatedAt    time.Time  `db:"created_at"`
}

type PlasticFilter struct {
	Status       string
	Manufacturer string
	Search       string
}

type StatusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

type AdminUser struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Password string `db:"password"`
	Role     string `db:"role"`
}

type DashboardCounts struct {
	PendingOrders        int   `db:"pending_orders"`
	RevenueCents         int64 `db:"revenue_cents"`
	TotalUsers           int   `db:"total_users"`
	TotalDiscs           int   `db:"total_discs"`
	SuccessfulRecoveries int   `db:"successful_recoveries"`
}
