package models

import (
	"fmt"
	"time"
)

// CartLine is one (owner, product) row. Name, price and image are
// denormalized at add time so the cart renders without a product join;
// checkout re-reads live prices and ignores these copies.
type CartLine struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	UserID    string    `json:"user_id" bson:"user_id"`
	ProductID string    `json:"product_id" bson:"product_id"`
	Name      string    `json:"name" bson:"name"`
	Price     int64     `json:"price" bson:"price"`
	Image     string    `json:"image" bson:"image"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// CartLineID builds the document key. One line per (owner, product):
// repeated adds increment quantity on this key instead of inserting.
func CartLineID(owner, productID string) string {
	return fmt.Sprintf("%s_%s", owner, productID)
}

// TotalQuantity sums line quantities.
func TotalQuantity(lines []CartLine) int {
	var n int
	for _, line := range lines {
		n += line.Quantity
	}
	return n
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type UpdateCartLineRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// CartEvent is published on every cart mutation so other sessions of
// the same owner observe changes without polling.
type CartEvent struct {
	Owner     string    `json:"owner"`
	Action    string    `json:"action"` // added, updated, removed, cleared, merged
	ProductID string    `json:"product_id,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	At        time.Time `json:"at"`
}
