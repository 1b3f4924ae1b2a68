package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          UUID PRIMARY KEY,
		login       VARCHAR(255) NOT NULL UNIQUE,
		password    VARCHAR(255) NOT NULL,
		first_name  VARCHAR(255) NOT NULL,
		surname     VARCHAR(255) NOT NULL,
		middle_name VARCHAR(255),
		sex         VARCHAR(16),
		age         INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id            UUID PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		description   TEXT NOT NULL,
		slug          VARCHAR(255) NOT NULL UNIQUE,
		price         NUMERIC NOT NULL CHECK (price >= 0),
		left_in_stock INTEGER NOT NULL CHECK (left_in_stock >= 0)
	)`,
	`CREATE SEQUENCE IF NOT EXISTS orders_number_seq START 1001`,
	`CREATE TABLE IF NOT EXISTS orders (
		id     UUID PRIMARY KEY,
		number BIGINT NOT NULL UNIQUE DEFAULT nextval('orders_number_seq')
	)`,
	`CREATE TABLE IF NOT EXISTS orders_products (
		id         BIGSERIAL PRIMARY KEY,
		order_id   UUID NOT NULL REFERENCES orders(id),
		product_id UUID NOT NULL REFERENCES products(id),
		quantity   INTEGER NOT NULL CHECK (quantity >= 1),
		UNIQUE (order_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS users_orders (
		user_id  UUID NOT NULL REFERENCES users(id),
		order_id UUID NOT NULL REFERENCES orders(id),
		PRIMARY KEY (user_id, order_id)
	)`,
}

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db DBTX) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	return nil
}
