package orders

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrOrderNotFound covers both a missing order and one owned by someone else.
	ErrOrderNotFound = errors.New("order not found")
	ErrSlugTaken     = errors.New("product slug already taken")
	ErrProductInUse  = errors.New("product is referenced by orders")
)

// ProductNotFoundError is returned when a slug or id does not resolve.
type ProductNotFoundError struct {
	Ref string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %q not found", e.Ref)
}

type InsufficientStockError struct {
	ProductID uuid.UUID
	Slug      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.Slug, e.Requested, e.Available)
}

// OrderPlacementFailedError aborts a placement. Err is the cause, usually
// an *InsufficientStockError.
type OrderPlacementFailedError struct {
	ProductID uuid.UUID
	Slug      string
	Err       error
}

func (e *OrderPlacementFailedError) Error() string {
	return fmt.Sprintf("order placement failed on product %s: %v", e.Slug, e.Err)
}

func (e *OrderPlacementFailedError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
