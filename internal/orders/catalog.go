package orders

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var minPrice = decimal.RequireFromString("0.1")

// ProductInput is the body of product create and update requests.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Slug        string          `json:"slug,omitempty"`
	Price       decimal.Decimal `json:"price"`
	LeftInStock int             `json:"left_in_stock"`
}

func (in *ProductInput) Validate() error {
	if n := utf8.RuneCountInString(in.Name); n < 1 || n > 255 {
		return &ValidationError{Field: "name", Reason: "must be 1-255 characters"}
	}
	if utf8.RuneCountInString(in.Description) < 5 {
		return &ValidationError{Field: "description", Reason: "must be at least 5 characters"}
	}
	if in.Price.LessThan(minPrice) {
		return &ValidationError{Field: "price", Reason: "must be at least 0.1"}
	}
	if in.LeftInStock < 1 {
		return &ValidationError{Field: "left_in_stock", Reason: "must be at least 1"}
	}
	return nil
}

// Apply validates in and copies it onto p. An empty slug is derived from
// the name.
func (in *ProductInput) Apply(p *Product) error {
	if err := in.Validate(); err != nil {
		return err
	}
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.LeftInStock = in.LeftInStock
	p.Slug = in.Slug
	if p.Slug == "" {
		p.Slug = Slugify(in.Name)
	}
	return nil
}
