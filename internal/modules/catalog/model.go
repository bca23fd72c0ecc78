// Package catalog implements product reads and admin writes, category
// normalization, and the live subscription feed over the product set.
package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item, either first-party (StoreID nil) or listed
// under a vendor store.
type Product struct {
	ID              uuid.UUID       `json:"id"`
	StoreID         *uuid.UUID      `json:"storeId,omitempty"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Category        string          `json:"category"`
	DisplayCategory string          `json:"displayCategory"`
	Price           decimal.Decimal `json:"price"`
	InStock         bool            `json:"inStock"`
	StockQuantity   int             `json:"stockQuantity"`
	Tags            []string        `json:"tags,omitempty"`
	Images          []ProductImage  `json:"images"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// WritePayload is the admin create/update request body. The wire names
// follow the storefront's public API contract.
type WritePayload struct {
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	Price            decimal.Decimal   `json:"price"`
	Category         string            `json:"category"`
	DisplayCategory  string            `json:"displayCategory,omitempty"`
	StoreID          string            `json:"storeId,omitempty"`
	Images           []string          `json:"images,omitempty"`
	CloudinaryImages []CDNImagePayload `json:"cloudinaryImages,omitempty"`
	InStock          *bool             `json:"inStock,omitempty"`
	StockQuantity    int               `json:"stockQuantity,omitempty"`
	Tags             []string          `json:"tags,omitempty"`
}

// Filter narrows product reads.
type Filter struct {
	Category    string
	StoreID     *uuid.UUID
	InStockOnly bool
	Search      string
	Limit       int
	Offset      int
}

// WriteResult is the success envelope for admin writes.
type WriteResult struct {
	Success   bool      `json:"success"`
	ProductID uuid.UUID `json:"productId"`
}
