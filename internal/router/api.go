package router

import (
	"context"

	"github.com/adiretotes/store-api/internal/cart"
	"github.com/adiretotes/store-api/internal/checkout"
	"github.com/adiretotes/store-api/pkg/models"
	"github.com/adiretotes/store-api/pkg/mongo"
	"github.com/adiretotes/store-api/pkg/redis"
)

// sessions resolves bearer tokens. Satisfied by redis.SessionStore.
type sessions interface {
	Save(ctx context.Context, token string, session models.Session) error
	Get(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
}

// reconciler applies a verified gateway result to local state.
// Satisfied by checkout.Reconciler.
type reconciler interface {
	Reconcile(ctx context.Context, reference string) (checkout.Outcome, error)
}

// eventBus streams cart change events for the SSE endpoint.
type eventBus interface {
	Subscribe(ctx context.Context, owner string) (<-chan models.CartEvent, func())
}

// API bundles the handler dependencies. Handlers hang off it so tests
// can swap any collaborator for a fake.
type API struct {
	Users        *mongo.UserRepo
	Products     *mongo.ProductRepo
	Orders       *mongo.OrderRepo
	Transactions *mongo.TransactionRepo

	Sessions sessions
	Events   eventBus

	Cart       *cart.Service
	Checkout   *checkout.Service
	Reconciler reconciler

	// WebhookSecret signs Paystack webhook bodies (HMAC-SHA512).
	WebhookSecret string
}

func NewAPI(cartSvc *cart.Service, checkoutSvc *checkout.Service, rec reconciler, webhookSecret string) *API {
	return &API{
		Users:         &mongo.UserRepo{},
		Products:      &mongo.ProductRepo{},
		Orders:        &mongo.OrderRepo{},
		Transactions:  &mongo.TransactionRepo{},
		Sessions:      &redis.SessionStore{},
		Events:        &redis.EventBus{},
		Cart:          cartSvc,
		Checkout:      checkoutSvc,
		Reconciler:    rec,
		WebhookSecret: webhookSecret,
	}
}
