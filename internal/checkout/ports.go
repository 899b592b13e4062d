package checkout

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/adiretotes/store-api/pkg/models"
	"github.com/adiretotes/store-api/pkg/paystack"
)

// Catalog is the stock ledger view checkout needs: price reads and the
// conditional decrement applied at payment confirmation.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	DecrementStock(ctx context.Context, productID string, qty int, reference string) error
}

// Carts is the slice of the cart store the checkout flow touches.
type Carts interface {
	List(ctx context.Context, owner string) ([]models.CartLine, error)
	Clear(ctx context.Context, owner string) error
}

type Orders interface {
	Create(ctx context.Context, order *models.Order) error
	GetByReference(ctx context.Context, reference string) (*models.Order, error)
	MarkPaid(ctx context.Context, reference string, payment bson.M, paidAt time.Time) error
	MarkFailed(ctx context.Context, reference, reason string, payment bson.M) error
	SetStatus(ctx context.Context, reference, status string, payment bson.M) error
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// Ledger records one idempotent transactions row per reference.
type Ledger interface {
	RecordOnce(ctx context.Context, txn *models.Transaction) error
}

// Gateway is the hosted payment provider.
type Gateway interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeData, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyData, error)
}

// TxRunner executes fn atomically: either every store write inside fn
// lands or none do.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
