package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// ViewCache holds placed orders per owner. Orders never change after
// placement, so entries need no invalidation.
type ViewCache interface {
	Get(ctx context.Context, userID uuid.UUID, number int64) (*Placement, bool, error)
	Put(ctx context.Context, userID uuid.UUID, p *Placement) error
}

// Service is the entry point used by the HTTP layer. Cache and Publisher
// are optional.
type Service struct {
	Tx          TxRunner
	Cache       ViewCache
	Publisher   Publisher
	Log         *zap.Logger
	ServiceName string
}

// PlaceOrder validates the request, then resolves, locks and places every
// item inside one transaction. Products are locked in slug order so two
// overlapping orders cannot deadlock; lines keep the caller's order.
func (s *Service) PlaceOrder(ctx context.Context, userID uuid.UUID, items []ItemRequest) (*Placement, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	var placed *Placement
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		lines, err := resolveLines(ctx, st.Products, items)
		if err != nil {
			return err
		}
		placed, err = Place(ctx, st, userID, lines)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger().Info("order placed",
		zap.String("order_id", placed.ID.String()),
		zap.Int64("number", placed.Number),
		zap.String("user_id", userID.String()),
		zap.Int("lines", len(placed.Lines)),
	)
	s.remember(ctx, userID, placed)
	s.publishPlaced(userID, placed)
	return placed, nil
}

// GetOrder returns the order with the given number if userID owns it.
// Missing and foreign orders both yield ErrOrderNotFound.
func (s *Service) GetOrder(ctx context.Context, userID uuid.UUID, number int64) (*Placement, error) {
	if s.Cache != nil {
		p, ok, err := s.Cache.Get(ctx, userID, number)
		if err != nil {
			s.logger().Warn("order cache get", zap.Int64("number", number), zap.Error(err))
		} else if ok {
			return p, nil
		}
	}

	var found *Placement
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		o, err := st.Orders.FindByNumber(ctx, number)
		if err != nil {
			return err
		}
		owned, err := st.UserOrders.Exists(ctx, userID, o.ID)
		if err != nil {
			return fmt.Errorf("check order owner: %w", err)
		}
		if !owned {
			return ErrOrderNotFound
		}
		lines, err := st.Lines.FindAllForOrder(ctx, o.ID)
		if err != nil {
			return fmt.Errorf("load order lines: %w", err)
		}
		found = &Placement{Order: *o, Lines: lines}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.remember(ctx, userID, found)
	return found, nil
}

func validateItems(items []ItemRequest) error {
	if len(items) == 0 {
		return &ValidationError{Field: "items", Reason: "at least one item is required"}
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.Product == "" {
			return &ValidationError{Field: "product", Reason: "must not be empty"}
		}
		if it.Quantity < 1 {
			return &ValidationError{Field: "quantity", Reason: fmt.Sprintf("must be at least 1 for %q", it.Product)}
		}
		if _, dup := seen[it.Product]; dup {
			return &ValidationError{Field: "product", Reason: fmt.Sprintf("%q listed more than once", it.Product)}
		}
		seen[it.Product] = struct{}{}
	}
	return nil
}

func resolveLines(ctx context.Context, ps ProductStore, items []ItemRequest) ([]Line, error) {
	refs := make([]string, 0, len(items))
	for _, it := range items {
		refs = append(refs, it.Product)
	}
	slices.Sort(refs)

	locked := make(map[string]*Product, len(refs))
	byID := make(map[uuid.UUID]string, len(refs))
	for _, ref := range refs {
		p, err := ps.FindForUpdate(ctx, ref)
		if err != nil {
			return nil, err
		}
		// A slug and an id can name the same row.
		if first, dup := byID[p.ID]; dup {
			return nil, &ValidationError{Field: "product", Reason: fmt.Sprintf("%q and %q are the same product", first, ref)}
		}
		byID[p.ID] = ref
		locked[ref] = p
	}

	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{Product: locked[it.Product], Quantity: it.Quantity})
	}
	return lines, nil
}

func (s *Service) remember(ctx context.Context, userID uuid.UUID, p *Placement) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Put(ctx, userID, p); err != nil {
		s.logger().Warn("order cache put", zap.Int64("number", p.Number), zap.Error(err))
	}
}

func (s *Service) publishPlaced(userID uuid.UUID, p *Placement) {
	if s.Publisher == nil {
		return
	}
	payload, err := json.Marshal(OrderPlacedPayload{UserID: userID, Placement: *p})
	if err != nil {
		s.logger().Error("encode order placed payload", zap.Error(err))
		return
	}
	orderID := p.ID.String()
	b, err := json.Marshal(Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: orderID,
		Payload:       payload,
	})
	if err != nil {
		s.logger().Error("encode order placed envelope", zap.Error(err))
		return
	}
	s.Publisher.Publish(PartitionKey(orderID), b,
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
