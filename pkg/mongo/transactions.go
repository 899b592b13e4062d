package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/adiretotes/store-api/pkg/models"
)

// TransactionRepo is the append-only payments ledger.
type TransactionRepo struct{}

// RecordOnce writes the ledger entry for a reference. The upsert keyed
// by reference with $setOnInsert means a duplicate reconciliation can
// never create a second row or rewrite the first.
func (r *TransactionRepo) RecordOnce(ctx context.Context, txn *models.Transaction) error {
	_, err := GetCollection("transactions").UpdateOne(
		ctx,
		bson.M{"_id": txn.Reference},
		bson.M{"$setOnInsert": bson.M{
			"user_id": txn.UserID,
			"email":   txn.Email,
			"amount":  txn.Amount,
			"status":  txn.Status,
			"items":   txn.Items,
			"paid_at": txn.PaidAt,
		}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("record transaction %s: %w", txn.Reference, err)
	}
	return nil
}

func (r *TransactionRepo) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	cursor, err := GetCollection("transactions").Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txns []models.Transaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}
