package models

import "time"

// Transaction is one row of the append-only payments ledger, keyed by
// the payment reference so a duplicate reconciliation can only upsert
// the same document.
type Transaction struct {
	Reference string      `json:"reference" bson:"_id"`
	UserID    string      `json:"user_id" bson:"user_id"`
	Email     string      `json:"email" bson:"email"`
	Amount    int64       `json:"amount" bson:"amount"`
	Status    string      `json:"status" bson:"status"`
	Items     []OrderItem `json:"items" bson:"items"`
	PaidAt    time.Time   `json:"paid_at" bson:"paid_at"`
}
