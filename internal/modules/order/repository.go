package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for orders.
type Repository interface {
	// CreateOrder persists a new order and its lines in one transaction.
	CreateOrder(ctx context.Context, o *Order) error

	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*Order, error)

	ListOrdersByStore(ctx context.Context, storeID uuid.UUID, status Status) ([]*Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Order, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}
