package orders

import (
	"context"

	"github.com/google/uuid"
)

// ProductStore resolves products by ref, which is either a slug or the
// textual form of the product id.
type ProductStore interface {
	FindByRef(ctx context.Context, ref string) (*Product, error)
	// FindForUpdate is FindByRef plus a row lock held until the
	// surrounding transaction ends.
	FindForUpdate(ctx context.Context, ref string) (*Product, error)
	// Save persists the stock count of an already loaded product.
	Save(ctx context.Context, p *Product) error
	List(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type OrderStore interface {
	// Create inserts an empty order and assigns its id and next number.
	Create(ctx context.Context) (*Order, error)
	FindByNumber(ctx context.Context, number int64) (*Order, error)
}

type OrderLineStore interface {
	Create(ctx context.Context, orderID, productID uuid.UUID, qty int) (*OrderLine, error)
	FindAllForOrder(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error)
}

type UserOrderStore interface {
	Create(ctx context.Context, userID, orderID uuid.UUID) error
	Exists(ctx context.Context, userID, orderID uuid.UUID) (bool, error)
}

// Stores bundles the collaborators of one unit of work. Inside WithinTx
// every store is bound to the same open transaction.
type Stores struct {
	Products   ProductStore
	Orders     OrderStore
	Lines      OrderLineStore
	UserOrders UserOrderStore
}

// TxRunner runs fn inside a transaction: committed when fn returns nil,
// rolled back otherwise.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
