package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-shop/internal/orders"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// OrderCache implements orders.ViewCache. Keys carry the owner's id, so a
// hit never bypasses the ownership check.
type OrderCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func (c *OrderCache) key(userID uuid.UUID, number int64) string {
	return fmt.Sprintf(KeyOrderView, userID, number)
}

func (c *OrderCache) Get(ctx context.Context, userID uuid.UUID, number int64) (*orders.Placement, bool, error) {
	b, err := c.Redis.Get(ctx, c.key(userID, number)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var p orders.Placement
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, false, fmt.Errorf("decode cached order %d: %w", number, err)
	}
	return &p, true, nil
}

func (c *OrderCache) Put(ctx context.Context, userID uuid.UUID, p *orders.Placement) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = TTLOrderView
	}
	return c.Redis.Set(ctx, c.key(userID, p.Number), b, ttl).Err()
}
