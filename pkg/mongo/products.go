package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/adiretotes/store-api/pkg/models"
)

// ProductRepo owns the products collection and the stock ledger.
type ProductRepo struct{}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := GetCollection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch product %s: %w", id, err)
	}
	return &product, nil
}

func (r *ProductRepo) ListActive(ctx context.Context) ([]models.Product, error) {
	cursor, err := GetCollection("products").Find(ctx, bson.M{"status": "active"})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepo) Create(ctx context.Context, product *models.Product) error {
	product.SetTimestamps()
	_, err := GetCollection("products").InsertOne(ctx, product)
	return err
}

func (r *ProductRepo) Update(ctx context.Context, id string, updates bson.M) (*models.Product, error) {
	updates["updated_at"] = time.Now()

	var updated models.Product
	err := GetCollection("products").FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
		findOneAndUpdateReturnAfter(),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := GetCollection("products").DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrProductNotFound
	}
	return nil
}

// Available returns the sellable quantity. Used only as an advisory
// pre-check; the conditional decrement below is what actually protects
// against overselling.
func (r *ProductRepo) Available(ctx context.Context, productID string) (int, error) {
	product, err := r.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	return product.Stock, nil
}

// DecrementStock subtracts qty iff stock >= qty, in one conditional
// update. Two checkouts racing over the last unit cannot both match the
// filter, so stock never goes negative. Runs inside the reconciliation
// transaction; ctx carries the session.
func (r *ProductRepo) DecrementStock(ctx context.Context, productID string, qty int, reference string) error {
	res, err := GetCollection("products").UpdateOne(
		ctx,
		bson.M{"_id": productID, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}, "$set": bson.M{"updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("decrement stock for %s: %w", productID, err)
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing product from a short one.
		n, err := GetCollection("products").CountDocuments(ctx, bson.M{"_id": productID})
		if err != nil {
			return fmt.Errorf("decrement stock for %s: %w", productID, err)
		}
		if n == 0 {
			return models.ErrProductNotFound
		}
		return models.ErrInsufficientStock
	}

	audit := models.StockAudit{
		ProductID:   productID,
		Delta:       -qty,
		Reason:      "sale",
		Reference:   reference,
		PerformedBy: "reconciler",
		CreatedAt:   time.Now(),
	}
	if _, err := GetCollection("stock_audit").InsertOne(ctx, audit); err != nil {
		return fmt.Errorf("record stock audit for %s: %w", productID, err)
	}
	return nil
}

// SetStock applies an absolute admin restock and records the delta.
func (r *ProductRepo) SetStock(ctx context.Context, productID string, stock int, adminID string) (*models.Product, error) {
	if stock < 0 {
		return nil, fmt.Errorf("stock must not be negative")
	}

	var previous models.Product
	err := GetCollection("products").FindOneAndUpdate(
		ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"stock": stock, "updated_at": time.Now()}},
	).Decode(&previous)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	audit := models.StockAudit{
		ProductID:   productID,
		Delta:       stock - previous.Stock,
		Reason:      "admin_set",
		PerformedBy: adminID,
		CreatedAt:   time.Now(),
	}
	if _, err := GetCollection("stock_audit").InsertOne(ctx, audit); err != nil {
		return nil, err
	}

	previous.Stock = stock
	return &previous, nil
}
