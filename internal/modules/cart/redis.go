package cart

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/soko-labs/storefront-backend/internal/apperr"
)

// cartTTL keeps abandoned carts from accumulating forever. Every write
// refreshes the clock.
const cartTTL = 30 * 24 * time.Hour

type redisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new Redis cart repository. Carts are hashes
// keyed by token (field = product id, value = quantity); wishlists are sets.
func NewRedisRepository(client *redis.Client) Repository {
	return &redisRepository{client: client}
}

func cartKey(token string) string     { return "cart:" + token }
func wishlistKey(token string) string { return "wishlist:" + token }

func (r *redisRepository) Lines(ctx context.Context, token string) (map[string]int, error) {
	raw, err := r.client.HGetAll(ctx, cartKey(token)).Result()
	if err != nil {
		return nil, apperr.Dependency("failed to load cart", err)
	}
	lines := make(map[string]int, len(raw))
	for productID, qty := range raw {
		n, err := strconv.Atoi(qty)
		if err != nil {
			return nil, apperr.Dependency("corrupt cart quantity", err)
		}
		lines[productID] = n
	}
	return lines, nil
}

func (r *redisRepository) Increment(ctx context.Context, token, productID string, delta int) error {
	key := cartKey(token)
	pipe := r.client.TxPipeline()
	pipe.HIncrBy(ctx, key, productID, int64(delta))
	pipe.Expire(ctx, key, cartTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Dependency("failed to update cart", err)
	}
	return nil
}

func (r *redisRepository) SetQuantity(ctx context.Context, token, productID string, qty int) error {
	key := cartKey(token)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, productID, qty)
	pipe.Expire(ctx, key, cartTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Dependency("failed to update cart", err)
	}
	return nil
}

func (r *redisRepository) Remove(ctx context.Context, token, productID string) error {
	if err := r.client.HDel(ctx, cartKey(token), productID).Err(); err != nil {
		return apperr.Dependency("failed to update cart", err)
	}
	return nil
}

func (r *redisRepository) Clear(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, cartKey(token)).Err(); err != nil {
		return apperr.Dependency("failed to clear cart", err)
	}
	return nil
}

func (r *redisRepository) WishlistAdd(ctx context.Context, token, productID string) error {
	key := wishlistKey(token)
	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, key, productID)
	pipe.Expire(ctx, key, cartTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Dependency("failed to update wishlist", err)
	}
	return nil
}

func (r *redisRepository) WishlistRemove(ctx context.Context, token, productID string) error {
	if err := r.client.SRem(ctx, wishlistKey(token), productID).Err(); err != nil {
		return apperr.Dependency("failed to update wishlist", err)
	}
	return nil
}

func (r *redisRepository) Wishlist(ctx context.Context, token string) ([]string, error) {
	ids, err := r.client.SMembers(ctx, wishlistKey(token)).Result()
	if err != nil {
		return nil, apperr.Dependency("failed to load wishlist", err)
	}
	return ids, nil
}

func (r *redisRepository) WishlistContains(ctx context.Context, token, productID string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, wishlistKey(token), productID).Result()
	if err != nil {
		return false, apperr.Dependency("failed to check wishlist", err)
	}
	return ok, nil
}
