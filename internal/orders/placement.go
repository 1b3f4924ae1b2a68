package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Place turns resolved lines into a persisted order aggregate. It must run
// inside a transaction: on error nothing it wrote may be committed, and it
// never commits or rolls back itself. The order row is created first, so a
// failed placement still consumes an order number.
func Place(ctx context.Context, s Stores, userID uuid.UUID, lines []Line) (*Placement, error) {
	order, err := s.Orders.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	out := make([]OrderLine, 0, len(lines))
	for _, ln := range lines {
		p := ln.Product
		if err := p.Reserve(ln.Quantity); err != nil {
			return nil, &OrderPlacementFailedError{ProductID: p.ID, Slug: p.Slug, Err: err}
		}
		if err := s.Products.Save(ctx, p); err != nil {
			return nil, fmt.Errorf("save stock of %s: %w", p.Slug, err)
		}
		ol, err := s.Lines.Create(ctx, order.ID, p.ID, ln.Quantity)
		if err != nil {
			return nil, fmt.Errorf("create line for %s: %w", p.Slug, err)
		}
		out = append(out, *ol)
	}

	if err := s.UserOrders.Create(ctx, userID, order.ID); err != nil {
		return nil, fmt.Errorf("link order to user: %w", err)
	}
	return &Placement{Order: *order, Lines: out}, nil
}
