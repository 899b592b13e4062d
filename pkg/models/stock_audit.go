package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// StockAudit records every stock movement: sales applied by the
// reconciler (delta < 0, reference set) and absolute admin restocks.
type StockAudit struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID   string        `bson:"product_id" json:"product_id"`
	Delta       int           `bson:"delta" json:"delta"`
	Reason      string        `bson:"reason" json:"reason"` // sale, admin_set
	Reference   string        `bson:"reference,omitempty" json:"reference,omitempty"`
	PerformedBy string        `bson:"performed_by" json:"performed_by"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
}
