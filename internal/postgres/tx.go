package postgres

import (
	"context"

	"github.com/ariefcatur/go-shop/internal/orders"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner opens READ COMMITTED transactions on the pool. Placements take
// SELECT ... FOR UPDATE row locks on products, which is what keeps two
// concurrent orders from both spending the same stock.
type TxRunner struct{ DB *pgxpool.Pool }

func (r *TxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, s orders.Stores) error) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, NewStores(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// NewStores binds every order store to db.
func NewStores(db DBTX) orders.Stores {
	return orders.Stores{
		Products:   &ProductStore{DB: db},
		Orders:     &OrderStore{DB: db},
		Lines:      &OrderLineStore{DB: db},
		UserOrders: &UserOrderStore{DB: db},
	}
}
