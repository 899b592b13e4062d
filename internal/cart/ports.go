package cart

import (
	"context"

	"github.com/adiretotes/store-api/pkg/models"
)

// Lines is a cart line store. Implemented over the cart collection for
// authenticated owners and over Redis for guest sessions; both share
// the fold-on-upsert semantics so merge-on-login can reuse Add.
type Lines interface {
	List(ctx context.Context, owner string) ([]models.CartLine, error)
	Upsert(ctx context.Context, owner string, line models.CartLine) error
	SetQuantity(ctx context.Context, owner, productID string, qty int) error
	Remove(ctx context.Context, owner, productID string) error
	Clear(ctx context.Context, owner string) error
}

// Catalog supplies product details for denormalization and the
// advisory stock pre-check.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// Events receives a notification for every cart mutation.
type Events interface {
	Publish(ctx context.Context, ev models.CartEvent) error
}

// MergeGuard makes the guest cart merge one-shot per session.
type MergeGuard interface {
	TryMergeOnce(ctx context.Context, sessionID string) (bool, error)
}
