package cart

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/soko-labs/storefront-backend/internal/apperr"
	"github.com/soko-labs/storefront-backend/internal/events"
	"github.com/soko-labs/storefront-backend/internal/modules/catalog"
)

// ProductSource is the slice of the catalog the cart needs: existence
// checks on add, prices for totals.
type ProductSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// Service defines the cart and wishlist business logic.
type Service interface {
	// Add merges qty into an existing line for the product or appends a
	// new one. qty must be positive.
	Add(ctx context.Context, token, productID string, qty int) (*Cart, error)

	// UpdateQuantity sets a line's quantity; qty <= 0 removes the line.
	UpdateQuantity(ctx context.Context, token, productID string, qty int) (*Cart, error)

	Remove(ctx context.Context, token, productID string) (*Cart, error)
	Get(ctx context.Context, token string) (*Cart, error)
	Clear(ctx context.Context, token string) error
	Totals(ctx context.Context, token string) (*Totals, error)

	// Watch streams the cart state to fn on every change until ctx ends,
	// starting with the current state. Sibling tabs use this to converge
	// without a reload.
	Watch(ctx context.Context, token string, fn func(*Cart)) error

	WishlistAdd(ctx context.Context, token, productID string) error
	WishlistRemove(ctx context.Context, token, productID string) error
	Wishlist(ctx context.Context, token string) ([]string, error)
}

type service struct {
	repo     Repository
	products ProductSource
	bus      events.Bus
	logger   zerolog.Logger
}

// NewService creates a new cart service.
func NewService(repo Repository, products ProductSource, bus events.Bus, logger zerolog.Logger) Service {
	return &service{
		repo:     repo,
		products: products,
		bus:      bus,
		logger:   logger.With().Str("component", "cart").Logger(),
	}
}

// Topic returns the change-stream topic for one cart token.
func Topic(token string) string { return "cart:changed:" + token }

func (s *service) Add(ctx context.Context, token, productID string, qty int) (*Cart, error) {
	if qty <= 0 {
		return nil, apperr.Validation("quantity must be positive")
	}
	id, err := uuid.Parse(productID)
	if err != nil {
		return nil, apperr.Validation("productId must be a valid id")
	}
	if _, err := s.products.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if err := s.repo.Increment(ctx, token, productID, qty); err != nil {
		return nil, err
	}
	return s.snapshotAndPublish(ctx, token)
}

func (s *service) UpdateQuantity(ctx context.Context, token, productID string, qty int) (*Cart, error) {
	if qty <= 0 {
		return s.Remove(ctx, token, productID)
	}
	if err := s.repo.SetQuantity(ctx, token, productID, qty); err != nil {
		return nil, err
	}
	return s.snapshotAndPublish(ctx, token)
}

func (s *service) Remove(ctx context.Context, token, productID string) (*Cart, error) {
	if err := s.repo.Remove(ctx, token, productID); err != nil {
		return nil, err
	}
	return s.snapshotAndPublish(ctx, token)
}

func (s *service) Get(ctx context.Context, token string) (*Cart, error) {
	return s.snapshot(ctx, token)
}

func (s *service) Clear(ctx context.Context, token string) error {
	if err := s.repo.Clear(ctx, token); err != nil {
		return err
	}
	_, err := s.snapshotAndPublish(ctx, token)
	return err
}

func (s *service) Totals(ctx context.Context, token string) (*Totals, error) {
	lines, err := s.repo.Lines(ctx, token)
	if err != nil {
		return nil, err
	}

	totals := &Totals{TotalPrice: decimal.Zero}
	for productID, qty := range lines {
		id, err := uuid.Parse(productID)
		if err != nil {
			continue
		}
		p, err := s.products.GetByID(ctx, id)
		if err != nil {
			// The product may have been deleted since it was added, e.g.
			// by a store teardown. The line doesn't count toward totals.
			if apperr.IsKind(err, apperr.KindNotFound) {
				continue
			}
			return nil, err
		}
		totals.ItemCount += qty
		totals.TotalPrice = totals.TotalPrice.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return totals, nil
}

func (s *service) Watch(ctx context.Context, token string, fn func(*Cart)) error {
	ch, err := s.bus.Subscribe(ctx, Topic(token))
	if err != nil {
		return err
	}

	deliver := func() {
		c, err := s.snapshot(ctx, token)
		if err != nil {
			s.logger.Warn().Err(err).Msg("cart watch re-read failed")
			return
		}
		fn(c)
	}

	deliver()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			deliver()
		}
	}
}

func (s *service) WishlistAdd(ctx context.Context, token, productID string) error {
	id, err := uuid.Parse(productID)
	if err != nil {
		return apperr.Validation("productId must be a valid id")
	}
	if _, err := s.products.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.WishlistAdd(ctx, token, productID)
}

func (s *service) WishlistRemove(ctx context.Context, token, productID string) error {
	return s.repo.WishlistRemove(ctx, token, productID)
}

func (s *service) Wishlist(ctx context.Context, token string) ([]string, error) {
	ids, err := s.repo.Wishlist(ctx, token)
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *service) snapshot(ctx context.Context, token string) (*Cart, error) {
	lines, err := s.repo.Lines(ctx, token)
	if err != nil {
		return nil, err
	}
	c := &Cart{Token: token, Lines: make([]Line, 0, len(lines))}
	for productID, qty := range lines {
		c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: qty})
	}
	sort.Slice(c.Lines, func(i, j int) bool { return c.Lines[i].ProductID < c.Lines[j].ProductID })
	return c, nil
}

func (s *service) snapshotAndPublish(ctx context.Context, token string) (*Cart, error) {
	c, err := s.snapshot(ctx, token)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return c, nil
	}
	if err := s.bus.Publish(ctx, Topic(token), payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish cart change")
	}
	return c, nil
}
