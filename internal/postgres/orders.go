package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-shop/internal/orders"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderStore struct{ DB DBTX }

// Create draws the number from orders_number_seq. Sequences are not
// transactional, so a rolled back placement leaves a gap.
func (s *OrderStore) Create(ctx context.Context) (*orders.Order, error) {
	o := orders.Order{ID: uuid.New()}
	if err := s.DB.QueryRow(ctx, `INSERT INTO orders (id) VALUES ($1) RETURNING number`, o.ID).Scan(&o.Number); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return &o, nil
}

func (s *OrderStore) FindByNumber(ctx context.Context, number int64) (*orders.Order, error) {
	var o orders.Order
	err := s.DB.QueryRow(ctx, `SELECT id, number FROM orders WHERE number = $1`, number).Scan(&o.ID, &o.Number)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, orders.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order %d: %w", number, err)
	}
	return &o, nil
}

type OrderLineStore struct{ DB DBTX }

func (s *OrderLineStore) Create(ctx context.Context, orderID, productID uuid.UUID, qty int) (*orders.OrderLine, error) {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO orders_products (order_id, product_id, quantity)
		VALUES ($1, $2, $3)`, orderID, productID, qty)
	if err != nil {
		return nil, fmt.Errorf("insert order line: %w", err)
	}
	return &orders.OrderLine{OrderID: orderID, ProductID: productID, Quantity: qty}, nil
}

// FindAllForOrder returns lines in insertion order.
func (s *OrderLineStore) FindAllForOrder(ctx context.Context, orderID uuid.UUID) ([]orders.OrderLine, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT order_id, product_id, quantity
		FROM orders_products WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	var out []orders.OrderLine
	for rows.Next() {
		var l orders.OrderLine
		if err := rows.Scan(&l.OrderID, &l.ProductID, &l.Quantity); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type UserOrderStore struct{ DB DBTX }

func (s *UserOrderStore) Create(ctx context.Context, userID, orderID uuid.UUID) error {
	if _, err := s.DB.Exec(ctx, `INSERT INTO users_orders (user_id, order_id) VALUES ($1, $2)`, userID, orderID); err != nil {
		return fmt.Errorf("insert user order: %w", err)
	}
	return nil
}

func (s *UserOrderStore) Exists(ctx context.Context, userID, orderID uuid.UUID) (bool, error) {
	var ok bool
	err := s.DB.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users_orders WHERE user_id = $1 AND order_id = $2)`,
		userID, orderID).Scan(&ok)
	return ok, err
}
