package catalog

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/soko-labs/storefront-backend/internal/apperr"
	"github.com/soko-labs/storefront-backend/internal/events"
)

// TopicChanged is the bus topic fired after every product write.
const TopicChanged = "catalog:changed"

// changeEvent is the payload published on TopicChanged.
type changeEvent struct {
	ProductID uuid.UUID  `json:"productId"`
	StoreID   *uuid.UUID `json:"storeId,omitempty"`
	Category  string     `json:"category"`
	Deleted   bool       `json:"deleted,omitempty"`
}

// Service defines catalog business logic.
type Service interface {
	Create(ctx context.Context, req WritePayload) (*Product, error)
	Update(ctx context.Context, id uuid.UUID, req WritePayload) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, f Filter) ([]*Product, error)

	// Watch re-runs the filtered query whenever the catalog changes and
	// hands the fresh result set to fn, starting with the current state.
	// It returns once ctx is canceled; fn is never called after that.
	Watch(ctx context.Context, f Filter, fn func([]*Product)) error
}

type service struct {
	repo   Repository
	bus    events.Bus
	logger zerolog.Logger
}

// NewService creates a new catalog service.
func NewService(repo Repository, bus events.Bus, logger zerolog.Logger) Service {
	return &service{
		repo:   repo,
		bus:    bus,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// validateWrite applies the write-boundary rules: required fields, positive
// price, and a non-empty validated image set.
func validateWrite(req WritePayload) ([]ProductImage, error) {
	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if req.Price.IsZero() {
		missing = append(missing, "price")
	}
	// Either field can synthesize the other, so only both absent is an error.
	if strings.TrimSpace(req.Category) == "" && strings.TrimSpace(req.DisplayCategory) == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return nil, apperr.Validation("missing required fields").WithDetails(strings.Join(missing, ", "))
	}
	if req.Price.LessThan(decimal.Zero) {
		return nil, apperr.Validation("invalid price").WithDetails("price: must not be negative")
	}
	return normalizeImages(req.Images, req.CloudinaryImages)
}

// resolveCategory synthesizes whichever of category/displayCategory the
// request omitted, normalizing legacy labels into the canonical set.
func resolveCategory(req WritePayload) (id, display string) {
	label := req.Category
	if label == "" {
		label = req.DisplayCategory
	}
	id = CategoryID(label)
	display = req.DisplayCategory
	if display == "" {
		display = DisplayName(id)
	}
	return id, display
}

func (s *service) Create(ctx context.Context, req WritePayload) (*Product, error) {
	images, err := validateWrite(req)
	if err != nil {
		return nil, err
	}

	p := &Product{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Price:         req.Price,
		InStock:       true,
		StockQuantity: req.StockQuantity,
		Tags:          req.Tags,
		Images:        images,
	}
	p.Category, p.DisplayCategory = resolveCategory(req)
	if req.InStock != nil {
		p.InStock = *req.InStock
	}
	if req.StoreID != "" {
		storeID, err := uuid.Parse(req.StoreID)
		if err != nil {
			return nil, apperr.Validation("storeId must be a valid id")
		}
		p.StoreID = &storeID
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.publishChange(ctx, p, false)
	return p, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req WritePayload) (*Product, error) {
	images, err := validateWrite(req)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.Price = req.Price
	p.StockQuantity = req.StockQuantity
	p.Tags = req.Tags
	p.Images = images
	p.Category, p.DisplayCategory = resolveCategory(req)
	if req.InStock != nil {
		p.InStock = *req.InStock
	}
	if req.StoreID != "" {
		storeID, err := uuid.Parse(req.StoreID)
		if err != nil {
			return nil, apperr.Validation("storeId must be a valid id")
		}
		p.StoreID = &storeID
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publishChange(ctx, p, false)
	return p, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publishChange(ctx, p, true)
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, f Filter) ([]*Product, error) {
	return s.repo.List(ctx, f)
}

func (s *service) publishChange(ctx context.Context, p *Product, deleted bool) {
	payload, err := json.Marshal(changeEvent{
		ProductID: p.ID,
		StoreID:   p.StoreID,
		Category:  p.Category,
		Deleted:   deleted,
	})
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, TopicChanged, payload); err != nil {
		// Subscribers converge on the next successful publish.
		s.logger.Warn().Err(err).Msg("failed to publish catalog change")
	}
}
