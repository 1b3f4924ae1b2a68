package orders_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ariefcatur/go-shop/internal/memstore"
	"github.com/ariefcatur/go-shop/internal/orders"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSave struct {
	orders.ProductStore
	err error
}

func (f failingSave) Save(ctx context.Context, p *orders.Product) error { return f.err }

func TestPlace(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")

	testCases := map[string]struct {
		stock         int
		qty           int
		saveErr       error
		expectedStock int
		expectedError error
	}{
		"should reserve stock and record the line": {
			stock:         4,
			qty:           4,
			expectedStock: 0,
		},
		"should stop on a store failure and write nothing": {
			stock:         4,
			qty:           1,
			saveErr:       boom,
			expectedStock: 4,
			expectedError: boom,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			store := memstore.New()
			p := &orders.Product{Name: "Tea", Description: "green tea", Slug: "tea", Price: decimal.NewFromInt(3), LeftInStock: tc.stock}
			require.NoError(t, store.Stores().Products.Create(ctx, p))
			userID := uuid.New()

			var placed *orders.Placement
			err := store.WithinTx(ctx, func(ctx context.Context, st orders.Stores) error {
				if tc.saveErr != nil {
					st.Products = failingSave{ProductStore: st.Products, err: tc.saveErr}
				}
				locked, err := st.Products.FindForUpdate(ctx, "tea")
				if err != nil {
					return err
				}
				placed, err = orders.Place(ctx, st, userID, []orders.Line{{Product: locked, Quantity: tc.qty}})
				return err
			})

			got, ferr := store.Stores().Products.FindByRef(ctx, "tea")
			require.NoError(t, ferr)
			assert.Equal(t, tc.expectedStock, got.LeftInStock)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				_, err := store.Stores().Orders.FindByNumber(ctx, memstore.FirstOrderNumber)
				assert.ErrorIs(t, err, orders.ErrOrderNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []orders.OrderLine{{OrderID: placed.ID, ProductID: p.ID, Quantity: tc.qty}}, placed.Lines)
			owned, err := store.Stores().UserOrders.Exists(ctx, userID, placed.ID)
			require.NoError(t, err)
			assert.True(t, owned)
		})
	}
}
