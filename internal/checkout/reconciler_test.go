package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adiretotes/store-api/pkg/models"
)

func newReconciler(store *memStore, gateway *fakeGateway) *Reconciler {
	return &Reconciler{
		Catalog: store,
		Carts:   store,
		Orders:  store,
		Ledger:  store,
		Gateway: gateway,
		Tx:      store,
	}
}

// placeOrder runs a real checkout so reconciliation tests start from
// the same pending state production would.
func placeOrder(t *testing.T, store *memStore, gateway *fakeGateway, owner string) *Session {
	t.Helper()
	svc := newCheckoutService(store, gateway)
	session, err := svc.BeginCheckout(context.Background(), owner, owner+"@example.com")
	require.NoError(t, err)
	return session
}

func TestReconcileSuccess(t *testing.T) {
	store := newMemStore()
	seedProduct(store, "tote-indigo", 15000, 5)
	seedCart(store, "user1", models.CartLine{UserID: "user1", ProductID: "tote-indigo", Quantity: 2})
	gateway := &fakeGateway{}
	session := placeOrder(t, store, gateway, "user1")
	gateway.scriptSuccess(session.Reference, 30000)

	outcome, err := newReconciler(store, gateway).Reconcile(context.Background(), session.Reference)
	require.NoError(t, err)
	assert.True(t, outcome.Applied)
	assert.Equal(t, models.OrderStatusPaid, outcome.Status)

	order := store.orders[session.Reference]
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	require.NotNil(t, order.PaidAt)
	assert.NotNil(t, order.Payment)

	assert.Equal(t, 3, store.products["tote-indigo"].Stock)
	assert.Empty(t, store.carts["user1"])
	require.Contains(t, store.ledger, session.Reference)
	assert.Equal(t, int64(30000), store.ledger[session.Reference].Amount)
}

func TestReconcileFailedPayment(t *testing.T) {
	store := newMemStore()
	seedProduct(store, "tote-indigo", 15000, 5)
	seedCart(store, "user1", models.CartLine{UserID: "user1", ProductID: "tote-indigo", Quantity: 2})
	gateway := &fakeGateway{}
	session := placeOrder(t, store, gateway, "user1")
	gateway.scriptStatus(session.Reference, "failed", 30000)

	outcome, err := newReconciler(store, gateway).Reconcile(context.Background(), session.Reference)
	require.NoError(t, err)
	assert.True(t, outcome.Applied)
	assert.Equal(t, models.OrderStatusFailed, outcome.Status)

	// A declined payment must not touch stock, cart or ledger.
	assert.Equal(t, models.OrderStatusFailed, store.orders[session.Reference].Status)
	assert.Equal(t, "Declined", store.orders[session.Reference].FailureReason)
	assert.Equal(t, 5, store.products["tote-indigo"].Stock)
	assert.Len(t, store.carts["user1"], 1)
	assert.NotContains(t, store.ledger, session.Reference)
}

func TestReconcileDuplicateDeliveryIsNoop(t *testing.T) {
	store := newMemStore()
	seedProduct(store, "tote-indigo", 15000, 5)
	seedCart(store, "user1", models.CartLine{UserID: "user1", ProductID: "tote-indigo", Quantity: 2})
	gateway := &fakeGateway{}
	session := placeOrder(t, store, gateway, "user1")
	gateway.scriptSuccess(session.Reference, 30000)
	rec := newReconciler(store, gateway)

	first, err := rec.Reconcile(context.Background(), session.Reference)
	require.NoError(t, err)
	require.True(t, first.Applied)

	// Paystack redelivers the webhook and the client callback fires too.
	for i := 0; i < 3; i++ {
		again, err := rec.Reconcile(context.Background(), session.Reference)
		require.NoError(t, err)
		assert.False(t, again.Applied)
		assert.Equal(t, models.OrderStatusPaid, again.Status)
	}

	assert.Equal(t, 3, store.products["tote-indigo"].Stock)
	assert.Len(t, store.ledger, 1)
}

func TestReconcileConcurrentDeliveriesDecrementOnce(t *testing.T) {
	store := newMemStore()
	seedProduct(store, "tote-indigo", 15000, 5)
	seedCart(store, "user1", models.CartLine{UserID: "user1", ProductID: "tote-indigo", Quantity: 2})
	gateway := &fakeGateway{}
	session := placeOrder(t, store, gateway, "user1")
	gateway.scriptSuccess(session.Reference, 30000)
	rec := newReconciler(store, gateway)

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = rec.Reconcile(context.Background(), session.Reference)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 3, store.products["tote-indigo"].Stock)
	assert.Equal(t, models.OrderStatusPaid, store.orders[session.Reference].Status)
	assert.Len(t, store.ledger, 1)
}

func TestReconcileNoOversellAtStockOne(t *testing.T) {
	store := newMemStore()
	seedProduct(store, "tote-last", 15000, 1)
	gateway := &fakeGateway{}

	// Two buyers each checked out the last unit before either paid.
	seedCart(store, "user1", models.CartLine{UserID: "user1", ProductID: "tote-last", Quantity: 1})
	first := placeOrder(t, store, gateway, "user1")
	seedCart(store, "user2", models.CartLine{UserID: "user2", ProductID: "tote-last", Quantity: 1})
	second := placeOrder(t, store, gateway, "user2")
	gateway.scriptSuccess(first.Reference, 15000)
	gateway.scriptSuccess(second.Reference, 15000)
	rec := newReconciler(store, gateway)

	var wg sync.WaitGroup
	for _, ref := range []string{first.Reference, second.Reference} {
		wg.Add(1)
		go func(ref string) {
			defer wg.Done()
			rec.Reconcile(context.Background(), ref)
		}(ref)
	}
	wg.Wait()

	assert.GreaterOrEqual(t, store.products["tote-last"].Stock, 0)
	statuses := []string{store.orders[first.Reference].Status, store.orders[second.Reference].Status}
	assert.Contains(t, statuses, models.OrderStatusPaid)
	assert.Contains(t, statuses, models.OrderStatusStockConflict)
}

func TestReconcileStockConflict(t *testing.T) {
	store := newMemStore()
	seedProduct(store, "tote-indigo", 15000, 5)
	seedCart(store, "user1", models.CartLine{UserID: "user1", ProductID: "tote-indigo", Quantity: 2})
	gateway := &fakeGateway{}
	session := placeOrder(t, store, gateway, "user1")
	gateway.scriptSuccess(session.Reference, 30000)

	// Stock drains between checkout and payment confirmation.
	store.products["tote-indigo"].Stock = 1

	outcome, err := newReconciler(store, gateway).Reconcile(context.Background(), session.Reference)
	require.NoError(t, err)
	assert.True(t, outcome.Applied)
	assert.Equal(t, models.OrderStatusStockConflict, outcome.Status)

	// The aborted transaction must leave every counter untouched; only
	// the terminal status lands.
	assert.Equal(t, models.OrderStatusStockConflict, store.orders[session.Reference].Status)
	assert.Equal(t, 1, store.products["tote-indigo"].Stock)
	assert.Len(t, store.carts["user1"], 1)
	assert.NotContains(t, store.ledger, session.Reference)
}

func TestReconcileVerifyErrorLeavesOrderPending(t *testing.T) {
	store := newMemStore()
	seedProduct(store, "tote-indigo", 15000, 5)
	seedCart(store, "user1", models.CartLine{UserID: "user1", ProductID: "tote-indigo", Quantity: 2})
	gateway := &fakeGateway{}
	session := placeOrder(t, store, gateway, "user1")
	gateway.verifyErr = errors.New("connection reset")

	_, err := newReconciler(store, gateway).Reconcile(context.Background(), session.Reference)
	require.Error(t, err)
	assert.Equal(t, models.OrderStatusPending, store.orders[session.Reference].Status)
	assert.Equal(t, 5, store.products["tote-indigo"].Stock)
}

func TestReconcileUnknownReference(t *testing.T) {
	store := newMemStore()
	gateway := &fakeGateway{}
	gateway.scriptSuccess("ps_nobody_1_deadbeef", 30000)

	_, err := newReconciler(store, gateway).Reconcile(context.Background(), "ps_nobody_1_deadbeef")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestReconcilePassThroughStatus(t *testing.T) {
	store := newMemStore()
	seedProduct(store, "tote-indigo", 15000, 5)
	seedCart(store, "user1", models.CartLine{UserID: "user1", ProductID: "tote-indigo", Quantity: 2})
	gateway := &fakeGateway{}
	session := placeOrder(t, store, gateway, "user1")
	gateway.scriptStatus(session.Reference, "abandoned", 30000)

	outcome, err := newReconciler(store, gateway).Reconcile(context.Background(), session.Reference)
	require.NoError(t, err)
	assert.True(t, outcome.Applied)
	assert.Equal(t, "abandoned", outcome.Status)

	assert.Equal(t, "abandoned", store.orders[session.Reference].Status)
	assert.Equal(t, 5, store.products["tote-indigo"].Stock)
	assert.Len(t, store.carts["user1"], 1)
}

func TestSweeperExpiresOnlyStalePending(t *testing.T) {
	store := newMemStore()
	stale := &models.Order{
		ID:        "o1",
		Reference: "ps_u1_1_aaaaaaaa",
		Status:    models.OrderStatusPending,
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	fresh := &models.Order{
		ID:        "o2",
		Reference: "ps_u2_2_bbbbbbbb",
		Status:    models.OrderStatusPending,
		CreatedAt: time.Now(),
	}
	paid := &models.Order{
		ID:        "o3",
		Reference: "ps_u3_3_cccccccc",
		Status:    models.OrderStatusPaid,
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	for _, o := range []*models.Order{stale, fresh, paid} {
		require.NoError(t, store.Create(context.Background(), o))
	}

	NewSweeper(store, time.Minute, time.Hour).SweepOnce(context.Background())

	assert.Equal(t, models.OrderStatusFailed, store.orders[stale.Reference].Status)
	assert.Equal(t, "expired", store.orders[stale.Reference].FailureReason)
	assert.Equal(t, models.OrderStatusPending, store.orders[fresh.Reference].Status)
	assert.Equal(t, models.OrderStatusPaid, store.orders[paid.Reference].Status)
}
