package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/adiretotes/store-api/pkg/models"
)

// CartRepo stores authenticated carts, one document per (owner,
// product) keyed "{uid}_{productId}".
type CartRepo struct{}

func (r *CartRepo) List(ctx context.Context, owner string) ([]models.CartLine, error) {
	cursor, err := GetCollection("cart").Find(ctx, bson.M{"user_id": owner})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lines []models.CartLine
	if err := cursor.All(ctx, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// Upsert folds a line into the cart: an existing (owner, product) row
// gets its quantity incremented, otherwise a new row is created with
// the denormalized product fields. Never produces duplicate rows.
func (r *CartRepo) Upsert(ctx context.Context, owner string, line models.CartLine) error {
	now := time.Now()
	_, err := GetCollection("cart").UpdateOne(
		ctx,
		bson.M{"_id": models.CartLineID(owner, line.ProductID)},
		bson.M{
			"$inc": bson.M{"quantity": line.Quantity},
			"$set": bson.M{
				"user_id":    owner,
				"product_id": line.ProductID,
				"name":       line.Name,
				"price":      line.Price,
				"image":      line.Image,
				"updated_at": now,
			},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert cart line %s: %w", line.ProductID, err)
	}
	return nil
}

func (r *CartRepo) SetQuantity(ctx context.Context, owner, productID string, qty int) error {
	if qty == 0 {
		return r.Remove(ctx, owner, productID)
	}
	res, err := GetCollection("cart").UpdateOne(
		ctx,
		bson.M{"_id": models.CartLineID(owner, productID)},
		bson.M{"$set": bson.M{"quantity": qty, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepo) Remove(ctx context.Context, owner, productID string) error {
	res, err := GetCollection("cart").DeleteOne(ctx, bson.M{"_id": models.CartLineID(owner, productID)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrCartItemNotFound
	}
	return nil
}

// Clear removes every line of the owner. Clearing an already empty
// cart is a no-op, which keeps reconciliation retries idempotent.
func (r *CartRepo) Clear(ctx context.Context, owner string) error {
	_, err := GetCollection("cart").DeleteMany(ctx, bson.M{"user_id": owner})
	return err
}

func (r *CartRepo) Get(ctx context.Context, owner, productID string) (*models.CartLine, error) {
	var line models.CartLine
	err := GetCollection("cart").FindOne(ctx, bson.M{"_id": models.CartLineID(owner, productID)}).Decode(&line)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrCartItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}
