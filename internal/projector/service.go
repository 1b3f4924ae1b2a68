// Package projector consumes OrderPlaced events and warms the per-user
// order view cache, so the first read after placement skips Postgres.
package projector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkax "github.com/ariefcatur/go-shop/internal/kafka"
	"github.com/ariefcatur/go-shop/internal/orders"
	"github.com/ariefcatur/go-shop/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Service struct {
	Cache       orders.ViewCache
	Redis       *redis.Client
	DedupTTL    time.Duration
	ServiceName string
	Log         *zap.Logger
}

// HandleOrderPlaced is installed as the consumer handler.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	if t := kafkax.HeaderValue(m.Headers, "x-event-type"); t != "" && t != orders.EventOrderPlaced {
		return nil
	}

	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// Poison message: retrying will not fix it, so log and let it commit.
		s.Log.Error("decode envelope", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		s.Log.Error("decode order placed", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	seen, err := redisx.Exists(ctx, s.Redis, dkey)
	if err != nil {
		return fmt.Errorf("dedup lookup: %w", err)
	}
	if seen {
		return nil
	}

	if err := s.Cache.Put(ctx, p.UserID, &p.Placement); err != nil {
		return fmt.Errorf("cache order %d: %w", p.Placement.Number, err)
	}

	ttl := s.DedupTTL
	if ttl <= 0 {
		ttl = redisx.TTLDedup
	}
	if _, err := redisx.FirstSeen(ctx, s.Redis, dkey, ttl); err != nil {
		s.Log.Warn("dedup mark", zap.String("event_id", env.EventID), zap.Error(err))
	}
	s.Log.Debug("order view cached",
		zap.String("order_id", p.Placement.ID.String()),
		zap.Int64("number", p.Placement.Number))
	return nil
}
