package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusFulfilled Status = "fulfilled"
	StatusCancelled Status = "cancelled"
)

// Order is a customer's purchase. StoreID is nullable on purpose: when a
// store is torn down its orders survive with the reference cleared, so
// purchase history outlives the storefront.
type Order struct {
	ID         uuid.UUID       `json:"id"`
	StoreID    *uuid.UUID      `json:"storeId,omitempty"`
	CustomerID uuid.UUID       `json:"customerId"`
	Number     string          `json:"number"`
	Status     Status          `json:"status"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Total      decimal.Decimal `json:"total"`
	Lines      []*Line         `json:"lines,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Line is a single line item within an order. The unit price is captured
// at purchase time and never re-read from the catalog.
type Line struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"orderId"`
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// PlaceOrderRequest is the payload for creating a new order.
type PlaceOrderRequest struct {
	StoreID string `json:"storeId,omitempty"`
	Items   []Item `json:"items"`
}

// Item describes one product the customer wants.
type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateStatusRequest is the payload for advancing an order's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
