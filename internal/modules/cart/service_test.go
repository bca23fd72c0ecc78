package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soko-labs/storefront-backend/internal/apperr"
	"github.com/soko-labs/storefront-backend/internal/events"
	"github.com/soko-labs/storefront-backend/internal/modules/catalog"
)

type memoryRepo struct {
	mu        sync.Mutex
	carts     map[string]map[string]int
	wishlists map[string]map[string]struct{}
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		carts:     make(map[string]map[string]int),
		wishlists: make(map[string]map[string]struct{}),
	}
}

func (m *memoryRepo) cart(token string) map[string]int {
	if m.carts[token] == nil {
		m.carts[token] = make(map[string]int)
	}
	return m.carts[token]
}

func (m *memoryRepo) Lines(_ context.Context, token string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int)
	for k, v := range m.carts[token] {
		out[k] = v
	}
	return out, nil
}

func (m *memoryRepo) Increment(_ context.Context, token, productID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart(token)[productID] += delta
	return nil
}

func (m *memoryRepo) SetQuantity(_ context.Context, token, productID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart(token)[productID] = qty
	return nil
}

func (m *memoryRepo) Remove(_ context.Context, token, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cart(token), productID)
	return nil
}

func (m *memoryRepo) Clear(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, token)
	return nil
}

func (m *memoryRepo) WishlistAdd(_ context.Context, token, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.wishlists[token] == nil {
		m.wishlists[token] = make(map[string]struct{})
	}
	m.wishlists[token][productID] = struct{}{}
	return nil
}

func (m *memoryRepo) WishlistRemove(_ context.Context, token, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.wishlists[token], productID)
	return nil
}

func (m *memoryRepo) Wishlist(_ context.Context, token string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for id := range m.wishlists[token] {
		out = append(out, id)
	}
	return out, nil
}

func (m *memoryRepo) WishlistContains(_ context.Context, token, productID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.wishlists[token][productID]
	return ok, nil
}

type stubProducts struct {
	prices map[uuid.UUID]decimal.Decimal
}

func (s *stubProducts) GetByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	price, ok := s.prices[id]
	if !ok {
		return nil, apperr.NotFound("product not found")
	}
	return &catalog.Product{ID: id, Price: price, InStock: true}, nil
}

func setup() (Service, *stubProducts, uuid.UUID) {
	productID := uuid.New()
	products := &stubProducts{prices: map[uuid.UUID]decimal.Decimal{
		productID: decimal.NewFromInt(50),
	}}
	svc := NewService(newMemoryRepo(), products, events.NewMemoryBus(), zerolog.Nop())
	return svc, products, productID
}

func TestAddMergesQuantities(t *testing.T) {
	svc, _, productID := setup()
	ctx := context.Background()
	token := uuid.NewString()

	_, err := svc.Add(ctx, token, productID.String(), 1)
	require.NoError(t, err)
	c, err := svc.Add(ctx, token, productID.String(), 2)
	require.NoError(t, err)

	require.Len(t, c.Lines, 1, "same product must merge into one line")
	assert.Equal(t, 3, c.Lines[0].Quantity)
}

func TestAddUnknownProductFails(t *testing.T) {
	svc, _, _ := setup()

	_, err := svc.Add(context.Background(), uuid.NewString(), uuid.NewString(), 1)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	svc, _, productID := setup()

	_, err := svc.Add(context.Background(), uuid.NewString(), productID.String(), 0)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	svc, _, productID := setup()
	ctx := context.Background()
	token := uuid.NewString()

	_, err := svc.Add(ctx, token, productID.String(), 3)
	require.NoError(t, err)

	c, err := svc.UpdateQuantity(ctx, token, productID.String(), 0)
	require.NoError(t, err)
	assert.Empty(t, c.Lines)

	c, err = svc.Get(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
}

func TestTotalsOnUnknownTokenAreZero(t *testing.T) {
	svc, _, _ := setup()

	totals, err := svc.Totals(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, 0, totals.ItemCount)
	assert.True(t, totals.TotalPrice.IsZero())
}

func TestTotalsComputeCountAndPrice(t *testing.T) {
	svc, products, productID := setup()
	ctx := context.Background()
	token := uuid.NewString()

	other := uuid.New()
	products.prices[other] = decimal.NewFromInt(20)

	_, err := svc.Add(ctx, token, productID.String(), 2) // 2 * 50
	require.NoError(t, err)
	_, err = svc.Add(ctx, token, other.String(), 1) // 1 * 20
	require.NoError(t, err)

	totals, err := svc.Totals(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 3, totals.ItemCount)
	assert.True(t, decimal.NewFromInt(120).Equal(totals.TotalPrice), "got %s", totals.TotalPrice)
}

func TestTotalsSkipDeletedProducts(t *testing.T) {
	svc, products, productID := setup()
	ctx := context.Background()
	token := uuid.NewString()

	_, err := svc.Add(ctx, token, productID.String(), 2)
	require.NoError(t, err)

	// Product disappears, e.g. its store was torn down.
	delete(products.prices, productID)

	totals, err := svc.Totals(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 0, totals.ItemCount)
	assert.True(t, totals.TotalPrice.IsZero())
}

func TestWatchSeesChangesFromOtherWriters(t *testing.T) {
	svc, _, productID := setup()
	token := uuid.NewString()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots := make(chan *Cart, 8)
	go func() {
		_ = svc.Watch(ctx, token, func(c *Cart) { snapshots <- c })
	}()

	// Initial empty snapshot.
	select {
	case c := <-snapshots:
		assert.Empty(t, c.Lines)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial snapshot")
	}

	// A write from "another tab" shows up on the stream.
	_, err := svc.Add(context.Background(), token, productID.String(), 1)
	require.NoError(t, err)

	select {
	case c := <-snapshots:
		require.Len(t, c.Lines, 1)
		assert.Equal(t, 1, c.Lines[0].Quantity)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after external write")
	}
}

func TestWishlist(t *testing.T) {
	svc, _, productID := setup()
	ctx := context.Background()
	token := uuid.NewString()

	require.NoError(t, svc.WishlistAdd(ctx, token, productID.String()))
	require.NoError(t, svc.WishlistAdd(ctx, token, productID.String()))

	ids, err := svc.Wishlist(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, []string{productID.String()}, ids)

	require.NoError(t, svc.WishlistRemove(ctx, token, productID.String()))
	ids, err = svc.Wishlist(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
