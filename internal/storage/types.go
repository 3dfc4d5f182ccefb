package storage

import (
	"time"

	"gitlab.com/discrescue/admin/internal/fulfillment"
	"gitlab.com/discrescue/admin/internal/repository"
)

const OrdersPageSize = 20

type Order struct {
	ID                string     `json:"id"`
	OrderNumber       string     `json:"order_number"`
	UserID            string     `json:"user_id"`
	Status            string     `json:"status"`
	Quantity          int        `json:"quantity"`
	TotalPriceCents   int64      `json:"total_price_cents"`
	TrackingNumber    *string    `json:"tracking_number,omitempty"`
	ShippingAddressID *string    `json:"shipping_address_id,omitempty"`
	PrintedAt         *time.Time `json:"printed_at,omitempty"`
	ShippedAt         *time.Time `json:"shipped_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Snapshot returns the part of the order the fulfillment machine decides on.
func (o Order) Snapshot() fulfillment.Order {
	return fulfillment.Order{
		ID:             o.ID,
		Status:         fulfillment.Status(o.Status),
		TrackingNumber: o.TrackingNumber,
		PrintedAt:      o.PrintedAt,
		ShippedAt:      o.ShippedAt,
	}
}

func orderFromRepo(o *repository.Order) *Order {
	return &Order{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		UserID:            o.UserID,
		Status:            o.Status,
		Quantity:          o.Quantity,
		TotalPriceCents:   o.TotalPriceCents,
		TrackingNumber:    o.TrackingNumber,
		ShippingAddressID: o.ShippingAddressID,
		PrintedAt:         o.PrintedAt,
		ShippedAt:         o.ShippedAt,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

type OrderFilter struct {
	Status string
	Search string
	Page   int
}

type OrderPage struct {
	Orders     []Order `json:"orders"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
}

type HistoryEntry struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	ChangedBy string    `json:"changed_by,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

type PlasticType struct {
	ID           string     `json:"id"`
	Manufacturer string     `json:"manufacturer"`
	PlasticName  string     `json:"plastic_name"`
	DisplayOrder *int       `json:"display_order,omitempty"`
	Status       string     `json:"status"`
	SubmittedBy  *string    `json:"submitted_by,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	ApprovedBy   *string    `json:"approved_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type PlasticFilter = repository.PlasticFilter

type PlasticPage struct {
	Plastics []PlasticType  `json:"plastics"`
	Counts   map[string]int `json:"counts"`
}

type Alert struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type Dashboard struct {
	PendingOrders        int     `json:"pending_orders"`
	RevenueCents         int64   `json:"revenue_cents"`
	TotalUsers           int     `json:"total_users"`
	TotalDiscs           int     `json:"total_discs"`
	SuccessfulRecoveries int     `json:"successful_recoveries"`
	RecoveryRate         float64 `json:"recovery_rate"`
	Alerts               []Alert `json:"alerts"`
}
