package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-shop/internal/orders"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type ProductStore struct{ DB DBTX }

const productColumns = `id, name, description, slug, price::text, left_in_stock`

func scanProduct(row pgx.Row) (*orders.Product, error) {
	var (
		p     orders.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Slug, &price, &p.LeftInStock); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	p.Price = d
	return &p, nil
}

// refCondition matches ref against the id column when it parses as a
// uuid, against the slug otherwise.
func refCondition(ref string) (string, any) {
	if id, err := uuid.Parse(ref); err == nil {
		return "id = $1", id
	}
	return "slug = $1", ref
}

func (s *ProductStore) find(ctx context.Context, ref, suffix string) (*orders.Product, error) {
	cond, arg := refCondition(ref)
	p, err := scanProduct(s.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE `+cond+suffix, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &orders.ProductNotFoundError{Ref: ref}
	}
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", ref, err)
	}
	return p, nil
}

func (s *ProductStore) FindByRef(ctx context.Context, ref string) (*orders.Product, error) {
	return s.find(ctx, ref, "")
}

func (s *ProductStore) FindForUpdate(ctx context.Context, ref string) (*orders.Product, error) {
	return s.find(ctx, ref, " FOR UPDATE")
}

func (s *ProductStore) Save(ctx context.Context, p *orders.Product) error {
	ct, err := s.DB.Exec(ctx, `UPDATE products SET left_in_stock = $2 WHERE id = $1`, p.ID, p.LeftInStock)
	if err != nil {
		return fmt.Errorf("save product %s: %w", p.Slug, err)
	}
	if ct.RowsAffected() != 1 {
		return &orders.ProductNotFoundError{Ref: p.ID.String()}
	}
	return nil
}

func (s *ProductStore) List(ctx context.Context) ([]orders.Product, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []orders.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *ProductStore) Create(ctx context.Context, p *orders.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := s.DB.Exec(ctx, `
		INSERT INTO products (id, name, description, slug, price, left_in_stock)
		VALUES ($1, $2, $3, $4, $5::numeric, $6)`,
		p.ID, p.Name, p.Description, p.Slug, p.Price.String(), p.LeftInStock,
	)
	if hasCode(err, codeUniqueViolation) {
		return orders.ErrSlugTaken
	}
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (s *ProductStore) Update(ctx context.Context, p *orders.Product) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE products
		SET name = $2, description = $3, slug = $4, price = $5::numeric, left_in_stock = $6
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Slug, p.Price.String(), p.LeftInStock,
	)
	if hasCode(err, codeUniqueViolation) {
		return orders.ErrSlugTaken
	}
	if err != nil {
		return fmt.Errorf("update product %s: %w", p.ID, err)
	}
	if ct.RowsAffected() != 1 {
		return &orders.ProductNotFoundError{Ref: p.ID.String()}
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if hasCode(err, codeForeignKeyViolation) {
		return orders.ErrProductInUse
	}
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if ct.RowsAffected() != 1 {
		return &orders.ProductNotFoundError{Ref: id.String()}
	}
	return nil
}
