// Package cart implements the per-browser cart and wishlist. The server
// copy is the canonical state: every browser tab shares one cart token and
// reconciles through the change stream, so no tab ever trusts a stale
// local copy.
package cart

import "github.com/shopspring/decimal"

// Line is a single cart entry.
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart is the full cart state for one token.
type Cart struct {
	Token string `json:"token"`
	Lines []Line `json:"lines"`
}

// Totals are derived values over a cart. A cart that has never been
// written reports zeros rather than an error, so a pre-load render and a
// post-load render agree.
type Totals struct {
	ItemCount  int             `json:"itemCount"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}
