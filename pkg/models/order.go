package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Order statuses. Pending is the only non-terminal state; the
// reconciler owns every transition out of it. Gateway statuses other
// than success/failed are recorded verbatim and are also terminal.
const (
	OrderStatusPending       = "pending"
	OrderStatusPaid          = "paid"
	OrderStatusFailed        = "failed"
	OrderStatusStockConflict = "stock_conflict"
)

// OrderItem is a line snapshot frozen at checkout time. Prices here are
// the server-read prices used to compute the charged amount; later
// product edits never change an existing order.
type OrderItem struct {
	ProductID string `json:"product_id" bson:"product_id"`
	Name      string `json:"name" bson:"name"`
	Price     int64  `json:"price" bson:"price"`
	Image     string `json:"image" bson:"image"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

// Order is created in pending status before the gateway is contacted,
// so a gateway failure still leaves an auditable record. Status is the
// only mutable field after creation. Orders are never deleted.
type Order struct {
	ID            string      `json:"id" bson:"_id"`
	UserID        string      `json:"user_id" bson:"user_id"`
	Email         string      `json:"email" bson:"email"`
	Items         []OrderItem `json:"items" bson:"items"`
	Amount        int64       `json:"amount" bson:"amount"` // kobo
	Currency      string      `json:"currency" bson:"currency"`
	Provider      string      `json:"provider" bson:"provider"`
	Status        string      `json:"status" bson:"status"`
	Reference     string      `json:"reference" bson:"reference"`
	FailureReason string      `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	Payment       bson.M      `json:"payment,omitempty" bson:"payment,omitempty"`
	CreatedAt     time.Time   `json:"created_at" bson:"created_at"`
	PaidAt        *time.Time  `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
}

// IsFinal reports whether the order reached a terminal status. Anything
// other than pending is terminal: paid, failed, stock_conflict, or a
// pass-through gateway status.
func (o *Order) IsFinal() bool {
	return o.Status != OrderStatusPending
}

// TotalAmount recomputes the amount from the item snapshot.
func (o *Order) TotalAmount() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// NewReference generates the per-attempt payment reference, the
// idempotency key for all downstream reconciliation.
func NewReference(userID string) string {
	return fmt.Sprintf("ps_%s_%d_%s", userID, time.Now().UnixMilli(), uuid.NewString()[:8])
}

func NewOrder(userID, email string, items []OrderItem) *Order {
	order := &Order{
		ID:        bson.NewObjectID().Hex(),
		UserID:    userID,
		Email:     email,
		Items:     items,
		Currency:  "NGN",
		Provider:  "paystack",
		Status:    OrderStatusPending,
		Reference: NewReference(userID),
		CreatedAt: time.Now(),
	}
	order.Amount = order.TotalAmount()
	return order
}

// PaymentDoc converts a raw gateway payload into a document that can be
// stored on the order. Unparseable payloads are kept as a string.
func PaymentDoc(raw json.RawMessage) bson.M {
	if len(raw) == 0 {
		return nil
	}
	var doc bson.M
	if err := json.Unmarshal(raw, &doc); err != nil {
		return bson.M{"raw": string(raw)}
	}
	return doc
}
