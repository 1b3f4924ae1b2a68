package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Slug        string          `json:"slug"`
	Price       decimal.Decimal `json:"price"`
	LeftInStock int             `json:"left_in_stock"`
}

// Order is the header of a placed order. Number is the customer-facing
// sequence value, ID the storage key.
type Order struct {
	ID     uuid.UUID `json:"id"`
	Number int64     `json:"number"`
}

type OrderLine struct {
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type UserOrder struct {
	UserID  uuid.UUID `json:"user_id"`
	OrderID uuid.UUID `json:"order_id"`
}

// ItemRequest is one entry of the order body: a product slug and a quantity.
type ItemRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// Line is a resolved ItemRequest, ready for Place.
type Line struct {
	Product  *Product
	Quantity int
}

// Placement is the order aggregate. It serializes as
// {"id", "number", "products": [...]}, lines in placement order.
type Placement struct {
	Order
	Lines []OrderLine `json:"products"`
}
