package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adiretotes/store-api/pkg/models"
)

func seedProduct(store *memStore, id string, price int64, stock int) {
	store.products[id] = &models.Product{
		ID:       id,
		Name:     "Tote " + id,
		Price:    price,
		Currency: "NGN",
		Stock:    stock,
		Images:   []string{"https://cdn.example.com/" + id + ".jpg"},
		Status:   "active",
	}
}

func seedCart(store *memStore, owner string, lines ...models.CartLine) {
	store.carts[owner] = lines
}

func newCheckoutService(store *memStore, gateway *fakeGateway) *Service {
	return &Service{
		Catalog:         store,
		Carts:           store,
		Orders:          store,
		Gateway:         gateway,
		FrontendBaseURL: "https://adiretotes.example.com",
	}
}

func TestBeginCheckoutPricesFromCatalog(t *testing.T) {
	store := newMemStore()
	seedProduct(store, "tote-indigo", 15000, 10)
	// Stale denormalized price on the cart line must not leak into the
	// order total.
	seedCart(store, "user1", models.CartLine{
		UserID:    "user1",
		ProductID: "tote-indigo",
		Price:     1,
		Quantity:  2,
	})
	gateway := &fakeGateway{}
	svc := newCheckoutService(store, gateway)

	session, err := svc.BeginCheckout(context.Background(), "user1", "buyer@example.com")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Contains(t, session.AuthorizationURL, session.Reference)
	assert.NotEmpty(t, session.OrderID)

	order, err := store.GetByReference(context.Background(), session.Reference)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), order.Amount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(15000), order.Items[0].Price)

	require.Len(t, gateway.initCalls, 1)
	assert.Equal(t, int64(30000), gateway.initCalls[0].Amount)
	assert.Equal(t, session.Reference, gateway.initCalls[0].Reference)
	assert.Contains(t, gateway.initCalls[0].CallbackURL, "/order/complete?ref="+session.Reference)
	assert.Equal(t, "user1", gateway.initCalls[0].Metadata.UserID)
}

func TestBeginCheckoutEmptyCart(t *testing.T) {
	store := newMemStore()
	gateway := &fakeGateway{}
	svc := newCheckoutService(store, gateway)

	_, err := svc.BeginCheckout(context.Background(), "user1", "buyer@example.com")
	assert.ErrorIs(t, err, models.ErrEmptyCart)
	assert.Empty(t, gateway.initCalls)
}

func TestBeginCheckoutRejectsOversizedQuantity(t *testing.T) {
	store := newMemStore()
	seedProduct(store, "tote-indigo", 15000, 1)
	seedCart(store, "user1", models.CartLine{UserID: "user1", ProductID: "tote-indigo", Quantity: 2})
	svc := newCheckoutService(store, &fakeGateway{})

	_, err := svc.BeginCheckout(context.Background(), "user1", "buyer@example.com")
	assert.ErrorIs(t, err, models.ErrInsufficientStock)
	assert.Empty(t, store.orders)
}

func TestBeginCheckoutUnknownProduct(t *testing.T) {
	store := newMemStore()
	seedCart(store, "user1", models.CartLine{UserID: "user1", ProductID: "gone", Quantity: 1})
	svc := newCheckoutService(store, &fakeGateway{})

	_, err := svc.BeginCheckout(context.Background(), "user1", "buyer@example.com")
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestBeginCheckoutInitFailureMarksOrderFailed(t *testing.T) {
	store := newMemStore()
	seedProduct(store, "tote-indigo", 15000, 10)
	seedCart(store, "user1", models.CartLine{UserID: "user1", ProductID: "tote-indigo", Quantity: 2})
	gateway := &fakeGateway{initErr: errors.New("gateway down")}
	svc := newCheckoutService(store, gateway)

	_, err := svc.BeginCheckout(context.Background(), "user1", "buyer@example.com")
	require.Error(t, err)

	// The attempt survives as a failed order for audit, and the cart is
	// untouched so the buyer can simply retry.
	require.Len(t, store.orders, 1)
	for _, order := range store.orders {
		assert.Equal(t, models.OrderStatusFailed, order.Status)
		assert.Contains(t, order.FailureReason, "init failed")
	}
	assert.Len(t, store.carts["user1"], 1)
}

func TestBeginCheckoutDistinctReferencesPerAttempt(t *testing.T) {
	store := newMemStore()
	seedProduct(store, "tote-indigo", 15000, 10)
	seedCart(store, "user1", models.CartLine{UserID: "user1", ProductID: "tote-indigo", Quantity: 1})
	svc := newCheckoutService(store, &fakeGateway{})

	first, err := svc.BeginCheckout(context.Background(), "user1", "buyer@example.com")
	require.NoError(t, err)
	second, err := svc.BeginCheckout(context.Background(), "user1", "buyer@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, first.Reference, second.Reference)
	assert.Len(t, store.orders, 2)
}
