package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/soko-labs/storefront-backend/internal/apperr"
	"github.com/soko-labs/storefront-backend/internal/modules/catalog"
)

// ProductSource resolves products at purchase time.
type ProductSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// Service defines the order management business logic.
type Service interface {
	// PlaceOrder validates the items, captures current prices, and
	// persists the order atomically.
	PlaceOrder(ctx context.Context, customerID uuid.UUID, req PlaceOrderRequest) (*Order, error)

	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*Order, error)

	ListStoreOrders(ctx context.Context, storeID uuid.UUID, status string) ([]*Order, error)
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID) ([]*Order, error)

	// UpdateStatus advances an order along pending -> paid -> fulfilled,
	// with cancellation allowed before fulfilment.
	UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*Order, error)
}

type service struct {
	repo     Repository
	products ProductSource
	logger   zerolog.Logger
}

// NewService creates a new order service.
func NewService(repo Repository, products ProductSource, logger zerolog.Logger) Service {
	return &service{
		repo:     repo,
		products: products,
		logger:   logger.With().Str("component", "order").Logger(),
	}
}

// validTransitions defines the allowed status state machine.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusFulfilled, StatusCancelled},
	StatusFulfilled: {},
	StatusCancelled: {},
}

func (s *service) PlaceOrder(ctx context.Context, customerID uuid.UUID, req PlaceOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, apperr.Validation("order must contain at least one item")
	}

	var storeID *uuid.UUID
	if req.StoreID != "" {
		id, err := uuid.Parse(req.StoreID)
		if err != nil {
			return nil, apperr.Validation("storeId must be a valid id")
		}
		storeID = &id
	}

	var lines []*Line
	subtotal := decimal.Zero
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apperr.Validationf("quantity must be positive for product %s", item.ProductID)
		}
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apperr.Validation("productId must be a valid id")
		}
		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if !p.InStock {
			return nil, apperr.Validationf("product %s is out of stock", p.Name)
		}

		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		lines = append(lines, &Line{
			ID:        uuid.New(),
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
			LineTotal: lineTotal,
		})
	}

	o := &Order{
		ID:         uuid.New(),
		StoreID:    storeID,
		CustomerID: customerID,
		Number:     generateOrderNumber(),
		Status:     StatusPending,
		Subtotal:   subtotal,
		Total:      subtotal,
		Lines:      lines,
	}
	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info().Stringer("order_id", o.ID).Str("number", o.Number).Msg("order placed")
	return o, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

func (s *service) GetOrderByNumber(ctx context.Context, number string) (*Order, error) {
	return s.repo.GetOrderByNumber(ctx, number)
}

func (s *service) ListStoreOrders(ctx context.Context, storeID uuid.UUID, status string) ([]*Order, error) {
	return s.repo.ListOrdersByStore(ctx, storeID, Status(strings.ToLower(status)))
}

func (s *service) ListCustomerOrders(ctx context.Context, customerID uuid.UUID) ([]*Order, error) {
	return s.repo.ListOrdersByCustomer(ctx, customerID)
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := Status(strings.ToLower(req.Status))
	allowed := false
	for _, candidate := range validTransitions[o.Status] {
		if candidate == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperr.Validationf("cannot transition order from %s to %s", o.Status, next)
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	o.Status = next
	return o, nil
}

// generateOrderNumber creates a human-readable order number: ORD-YYYYMMDD-XXXX.
func generateOrderNumber() string {
	date := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return fmt.Sprintf("ORD-%s-%s", date, suffix)
}
