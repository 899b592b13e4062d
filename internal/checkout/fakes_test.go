package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/adiretotes/store-api/pkg/models"
	"github.com/adiretotes/store-api/pkg/paystack"
)

// memStore is an in-memory stand-in for the Mongo repos. Its
// WithinTransaction snapshots all state and restores it when the
// callback fails, mirroring the all-or-nothing behavior of the real
// transaction. A mutex serializes transactions so concurrency tests
// exercise the same one-winner semantics the store provides.
type memStore struct {
	mu       sync.Mutex
	products map[string]*models.Product
	orders   map[string]*models.Order
	carts    map[string][]models.CartLine
	ledger   map[string]*models.Transaction
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]*models.Product),
		orders:   make(map[string]*models.Order),
		carts:    make(map[string][]models.CartLine),
		ledger:   make(map[string]*models.Transaction),
	}
}

// txKey marks a context as running inside WithinTransaction, the same
// way the real store carries its session in the context.
type txKey struct{}

func (m *memStore) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		// WithinTransaction already holds the mutex.
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

// Catalog

func (m *memStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	defer m.lock(ctx)()
	product, ok := m.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (m *memStore) DecrementStock(ctx context.Context, productID string, qty int, _ string) error {
	defer m.lock(ctx)()
	product, ok := m.products[productID]
	if !ok {
		return models.ErrProductNotFound
	}
	if product.Stock < qty {
		return models.ErrInsufficientStock
	}
	product.Stock -= qty
	return nil
}

// Carts

func (m *memStore) List(ctx context.Context, owner string) ([]models.CartLine, error) {
	defer m.lock(ctx)()
	return append([]models.CartLine(nil), m.carts[owner]...), nil
}

func (m *memStore) Clear(ctx context.Context, owner string) error {
	defer m.lock(ctx)()
	delete(m.carts, owner)
	return nil
}

// Orders

func (m *memStore) Create(ctx context.Context, order *models.Order) error {
	defer m.lock(ctx)()
	copied := *order
	m.orders[order.Reference] = &copied
	return nil
}

func (m *memStore) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	defer m.lock(ctx)()
	order, ok := m.orders[reference]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *memStore) MarkPaid(ctx context.Context, reference string, payment bson.M, paidAt time.Time) error {
	defer m.lock(ctx)()
	order, ok := m.orders[reference]
	if !ok {
		return models.ErrOrderNotFound
	}
	if order.Status != models.OrderStatusPending {
		return models.ErrOrderFinal
	}
	order.Status = models.OrderStatusPaid
	order.Payment = payment
	order.PaidAt = &paidAt
	return nil
}

func (m *memStore) MarkFailed(ctx context.Context, reference, reason string, payment bson.M) error {
	defer m.lock(ctx)()
	order, ok := m.orders[reference]
	if !ok {
		return models.ErrOrderNotFound
	}
	if order.Status != models.OrderStatusPending {
		return models.ErrOrderFinal
	}
	order.Status = models.OrderStatusFailed
	order.FailureReason = reason
	order.Payment = payment
	return nil
}

func (m *memStore) SetStatus(ctx context.Context, reference, status string, payment bson.M) error {
	defer m.lock(ctx)()
	order, ok := m.orders[reference]
	if !ok {
		return models.ErrOrderNotFound
	}
	if order.Status != models.OrderStatusPending {
		return models.ErrOrderFinal
	}
	order.Status = status
	order.Payment = payment
	return nil
}

func (m *memStore) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	defer m.lock(ctx)()
	var swept int64
	for _, order := range m.orders {
		if order.Status == models.OrderStatusPending && order.CreatedAt.Before(cutoff) {
			order.Status = models.OrderStatusFailed
			order.FailureReason = "expired"
			swept++
		}
	}
	return swept, nil
}

// Ledger

func (m *memStore) RecordOnce(ctx context.Context, txn *models.Transaction) error {
	defer m.lock(ctx)()
	if _, ok := m.ledger[txn.Reference]; ok {
		return nil
	}
	copied := *txn
	m.ledger[txn.Reference] = &copied
	return nil
}

// TxRunner

func (m *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

type memSnapshot struct {
	products map[string]models.Product
	orders   map[string]models.Order
	carts    map[string][]models.CartLine
	ledger   map[string]models.Transaction
}

func (m *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		products: make(map[string]models.Product, len(m.products)),
		orders:   make(map[string]models.Order, len(m.orders)),
		carts:    make(map[string][]models.CartLine, len(m.carts)),
		ledger:   make(map[string]models.Transaction, len(m.ledger)),
	}
	for k, v := range m.products {
		snap.products[k] = *v
	}
	for k, v := range m.orders {
		snap.orders[k] = *v
	}
	for k, v := range m.carts {
		snap.carts[k] = append([]models.CartLine(nil), v...)
	}
	for k, v := range m.ledger {
		snap.ledger[k] = *v
	}
	return snap
}

func (m *memStore) restore(snap memSnapshot) {
	m.products = make(map[string]*models.Product, len(snap.products))
	for k := range snap.products {
		v := snap.products[k]
		m.products[k] = &v
	}
	m.orders = make(map[string]*models.Order, len(snap.orders))
	for k := range snap.orders {
		v := snap.orders[k]
		m.orders[k] = &v
	}
	m.carts = snap.carts
	m.ledger = make(map[string]*models.Transaction, len(snap.ledger))
	for k := range snap.ledger {
		v := snap.ledger[k]
		m.ledger[k] = &v
	}
}

// fakeGateway scripts verify/initialize responses per reference.
type fakeGateway struct {
	mu          sync.Mutex
	verifyByRef map[string]*paystack.VerifyData
	verifyErr   error
	initErr     error
	initCalls   []paystack.InitializeRequest
}

func (g *fakeGateway) Initialize(_ context.Context, req paystack.InitializeRequest) (*paystack.InitializeData, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initCalls = append(g.initCalls, req)
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &paystack.InitializeData{
		AuthorizationURL: "https://checkout.paystack.com/" + req.Reference,
		AccessCode:       "code_" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (g *fakeGateway) Verify(_ context.Context, reference string) (*paystack.VerifyData, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	data, ok := g.verifyByRef[reference]
	if !ok {
		return nil, fmt.Errorf("%w: transaction reference not found", models.ErrGateway)
	}
	return data, nil
}

func (g *fakeGateway) scriptSuccess(reference string, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.verifyByRef == nil {
		g.verifyByRef = make(map[string]*paystack.VerifyData)
	}
	g.verifyByRef[reference] = &paystack.VerifyData{
		Status:    paystack.StatusSuccess,
		Reference: reference,
		Amount:    amount,
		Currency:  "NGN",
		PaidAt:    time.Now().Format(time.RFC3339),
		Raw:       []byte(`{"status":"success"}`),
	}
}

func (g *fakeGateway) scriptStatus(reference, status string, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.verifyByRef == nil {
		g.verifyByRef = make(map[string]*paystack.VerifyData)
	}
	g.verifyByRef[reference] = &paystack.VerifyData{
		Status:          status,
		Reference:       reference,
		Amount:          amount,
		Currency:        "NGN",
		GatewayResponse: "Declined",
		Raw:             []byte(fmt.Sprintf(`{"status":%q}`, status)),
	}
}
