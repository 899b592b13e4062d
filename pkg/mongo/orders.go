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

// OrderRepo owns the orders collection. Every status transition out of
// pending is conditional on the document still being pending, so two
// concurrent reconciliations for one reference cannot both apply.
type OrderRepo struct{}

func (r *OrderRepo) Create(ctx context.Context, order *models.Order) error {
	_, err := GetCollection("orders").InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("create order %s: %w", order.Reference, err)
	}
	return nil
}

func (r *OrderRepo) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order
	err := GetCollection("orders").FindOne(ctx, bson.M{"reference": reference}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch order %s: %w", reference, err)
	}
	return &order, nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	cursor, err := GetCollection("orders").Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// MarkPaid transitions pending -> paid. Returns ErrOrderFinal when the
// order was already taken out of pending by a competing reconciliation;
// callers treat that as the idempotent no-op it is.
func (r *OrderRepo) MarkPaid(ctx context.Context, reference string, payment bson.M, paidAt time.Time) error {
	res, err := GetCollection("orders").UpdateOne(
		ctx,
		bson.M{"reference": reference, "status": models.OrderStatusPending},
		bson.M{"$set": bson.M{
			"status":  models.OrderStatusPaid,
			"paid_at": paidAt,
			"payment": payment,
		}},
	)
	if err != nil {
		return fmt.Errorf("mark order %s paid: %w", reference, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrOrderFinal
	}
	return nil
}

func (r *OrderRepo) MarkFailed(ctx context.Context, reference, reason string, payment bson.M) error {
	res, err := GetCollection("orders").UpdateOne(
		ctx,
		bson.M{"reference": reference, "status": models.OrderStatusPending},
		bson.M{"$set": bson.M{
			"status":         models.OrderStatusFailed,
			"failure_reason": reason,
			"payment":        payment,
		}},
	)
	if err != nil {
		return fmt.Errorf("mark order %s failed: %w", reference, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrOrderFinal
	}
	return nil
}

// SetStatus records a pass-through gateway status, or stock_conflict.
// Same pending-only guard as the other transitions.
func (r *OrderRepo) SetStatus(ctx context.Context, reference, status string, payment bson.M) error {
	res, err := GetCollection("orders").UpdateOne(
		ctx,
		bson.M{"reference": reference, "status": models.OrderStatusPending},
		bson.M{"$set": bson.M{"status": status, "payment": payment}},
	)
	if err != nil {
		return fmt.Errorf("set order %s status %s: %w", reference, status, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrOrderFinal
	}
	return nil
}

// ExpirePending sweeps stale pending orders to failed. The status
// filter makes the sweep lose gracefully against a reconciliation
// racing on the same order.
func (r *OrderRepo) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := GetCollection("orders").UpdateMany(
		ctx,
		bson.M{"status": models.OrderStatusPending, "created_at": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{
			"status":         models.OrderStatusFailed,
			"failure_reason": "expired",
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
