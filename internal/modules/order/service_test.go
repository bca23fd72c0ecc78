package order

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soko-labs/storefront-backend/internal/apperr"
	"github.com/soko-labs/storefront-backend/internal/modules/catalog"
)

type fakeRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*Order
}

func newFakeRepo() *fakeRepo { return &fakeRepo{orders: make(map[uuid.UUID]*Order)} }

func (f *fakeRepo) CreateOrder(_ context.Context, o *Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *o
	f.orders[o.ID] = &clone
	return nil
}

func (f *fakeRepo) GetOrderByID(_ context.Context, id uuid.UUID) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, apperr.NotFound("order not found")
	}
	clone := *o
	return &clone, nil
}

func (f *fakeRepo) GetOrderByNumber(_ context.Context, number string) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.Number == number {
			clone := *o
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("order not found")
}

func (f *fakeRepo) ListOrdersByStore(_ context.Context, storeID uuid.UUID, status Status) ([]*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Order
	for _, o := range f.orders {
		if o.StoreID == nil || *o.StoreID != storeID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		clone := *o
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeRepo) ListOrdersByCustomer(_ context.Context, customerID uuid.UUID) ([]*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Order
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			clone := *o
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return apperr.NotFound("order not found")
	}
	o.Status = status
	return nil
}

type stubProducts struct {
	products map[uuid.UUID]*catalog.Product
}

func (s *stubProducts) GetByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, apperr.NotFound("product not found")
	}
	return p, nil
}

func setup() (Service, *fakeRepo, *stubProducts, uuid.UUID) {
	productID := uuid.New()
	products := &stubProducts{products: map[uuid.UUID]*catalog.Product{
		productID: {ID: productID, Name: "Ceramic Mug", Price: decimal.NewFromInt(50), InStock: true},
	}}
	repo := newFakeRepo()
	return NewService(repo, products, zerolog.Nop()), repo, products, productID
}

func TestPlaceOrderCapturesCurrentPrices(t *testing.T) {
	svc, _, products, productID := setup()
	ctx := context.Background()
	customer := uuid.New()

	o, err := svc.PlaceOrder(ctx, customer, PlaceOrderRequest{
		Items: []Item{{ProductID: productID.String(), Quantity: 2}},
	})
	require.NoError(t, err)

	require.Len(t, o.Lines, 1)
	assert.True(t, decimal.NewFromInt(50).Equal(o.Lines[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(100).Equal(o.Subtotal), "got %s", o.Subtotal)
	assert.Equal(t, StatusPending, o.Status)

	// A later price change must not affect the placed order.
	products.products[productID].Price = decimal.NewFromInt(99)
	got, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(got.Subtotal))
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	svc, _, _, _ := setup()

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), PlaceOrderRequest{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestPlaceOrderRejectsUnknownProduct(t *testing.T) {
	svc, _, _, _ := setup()

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), PlaceOrderRequest{
		Items: []Item{{ProductID: uuid.NewString(), Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestPlaceOrderRejectsOutOfStock(t *testing.T) {
	svc, _, products, productID := setup()
	products.products[productID].InStock = false

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), PlaceOrderRequest{
		Items: []Item{{ProductID: productID.String(), Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestOrderNumberFormat(t *testing.T) {
	svc, _, _, productID := setup()

	o, err := svc.PlaceOrder(context.Background(), uuid.New(), PlaceOrderRequest{
		Items: []Item{{ProductID: productID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	parts := strings.Split(o.Number, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "ORD", parts[0])
	assert.Len(t, parts[1], 8)
	assert.Len(t, parts[2], 4)

	got, err := svc.GetOrderByNumber(context.Background(), o.Number)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestStatusTransitions(t *testing.T) {
	svc, _, _, productID := setup()
	ctx := context.Background()

	place := func() *Order {
		o, err := svc.PlaceOrder(ctx, uuid.New(), PlaceOrderRequest{
			Items: []Item{{ProductID: productID.String(), Quantity: 1}},
		})
		require.NoError(t, err)
		return o
	}

	// pending -> paid -> fulfilled is the happy path.
	o := place()
	o, err := svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, o.Status)
	o, err = svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "Fulfilled"})
	require.NoError(t, err, "status comparison is case insensitive")
	assert.Equal(t, StatusFulfilled, o.Status)

	// Fulfilled orders are final.
	_, err = svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "cancelled"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// Skipping payment is not allowed.
	o2 := place()
	_, err = svc.UpdateStatus(ctx, o2.ID, UpdateStatusRequest{Status: "fulfilled"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// Cancellation works before fulfilment.
	o3 := place()
	o3, err = svc.UpdateStatus(ctx, o3.ID, UpdateStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o3.Status)
}

func TestListStoreOrdersFiltersByStatus(t *testing.T) {
	svc, _, _, productID := setup()
	ctx := context.Background()
	storeID := uuid.New()

	for i := 0; i < 2; i++ {
		_, err := svc.PlaceOrder(ctx, uuid.New(), PlaceOrderRequest{
			StoreID: storeID.String(),
			Items:   []Item{{ProductID: productID.String(), Quantity: 1}},
		})
		require.NoError(t, err)
	}
	paid, err := svc.PlaceOrder(ctx, uuid.New(), PlaceOrderRequest{
		StoreID: storeID.String(),
		Items:   []Item{{ProductID: productID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, paid.ID, UpdateStatusRequest{Status: "paid"})
	require.NoError(t, err)

	all, err := svc.ListStoreOrders(ctx, storeID, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := svc.ListStoreOrders(ctx, storeID, "PENDING")
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
