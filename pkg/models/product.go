package models

import (
	"time"
)

// Product is a catalog entry. Price is stored in kobo (minor currency
// units) so totals never touch floating point. Stock is the sellable
// quantity and must never go below zero; the only code path allowed to
// subtract from it is the conditional decrement in pkg/mongo.
type Product struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name" binding:"required"`
	Description string    `json:"description" bson:"description"`
	Price       int64     `json:"price" bson:"price" binding:"required,gt=0"`
	Currency    string    `json:"currency" bson:"currency"`
	Stock       int       `json:"stock" bson:"stock" binding:"gte=0"`
	Images      []string  `json:"images" bson:"images"`
	Status      string    `json:"status" bson:"status"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

func (p *Product) IsInStock() bool {
	return p.Stock > 0 && p.Status == "active"
}

// MainImage returns the first image URL, if any. Image URLs are opaque
// CDN references; the API never inspects them.
func (p *Product) MainImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

func (p *Product) SetTimestamps() {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required,min=2,max=200"`
	Description string   `json:"description" binding:"max=2000"`
	Price       int64    `json:"price" binding:"required,gt=0"`
	Stock       int      `json:"stock" binding:"gte=0"`
	Images      []string `json:"images"`
}

func (req *CreateProductRequest) ToProduct(id string) *Product {
	product := &Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Currency:    "NGN",
		Stock:       req.Stock,
		Images:      req.Images,
		Status:      "active",
	}
	product.SetTimestamps()
	return product
}
