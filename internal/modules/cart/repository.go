package cart

import "context"

// Repository defines the interface for cart and wishlist storage. An
// unknown token behaves like an empty cart everywhere.
type Repository interface {
	Lines(ctx context.Context, token string) (map[string]int, error)
	Increment(ctx context.Context, token, productID string, delta int) error
	SetQuantity(ctx context.Context, token, productID string, qty int) error
	Remove(ctx context.Context, token, productID string) error
	Clear(ctx context.Context, token string) error

	WishlistAdd(ctx context.Context, token, productID string) error
	WishlistRemove(ctx context.Context, token, productID string) error
	Wishlist(ctx context.Context, token string) ([]string, error)
	WishlistContains(ctx context.Context, token, productID string) (bool, error)
}
