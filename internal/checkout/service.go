package checkout

import (
	"context"
	"fmt"
	"log"

	"github.com/adiretotes/store-api/pkg/models"
	"github.com/adiretotes/store-api/pkg/paystack"
)

// Service initiates checkouts: it snapshots the cart into a pending
// order and opens a hosted payment session for it.
type Service struct {
	Catalog Catalog
	Carts   Carts
	Orders  Orders
	Gateway Gateway

	// FrontendBaseURL hosts the post-payment landing page the gateway
	// redirects the buyer back to.
	FrontendBaseURL string
}

// Session is what the client needs to continue a checkout: where to
// send the buyer, and the identifiers to resume reconciliation with.
type Session struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
	OrderID          string `json:"order_id"`
}

// BeginCheckout creates a pending order from the owner's server-side
// cart and initializes a gateway transaction against it.
//
// Prices come from a fresh read of the products collection; the cart's
// denormalized copies and anything client-supplied are ignored. The
// order is persisted before the gateway is contacted, so an init
// failure leaves an auditable failed order instead of nothing.
func (s *Service) BeginCheckout(ctx context.Context, userID, email string) (*Session, error) {
	lines, err := s.Carts.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart for %s: %w", userID, err)
	}
	if len(lines) == 0 {
		return nil, models.ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, err := s.Catalog.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("price product %s: %w", line.ProductID, err)
		}
		if product.Stock < line.Quantity {
			return nil, fmt.Errorf("%w: %s has %d left", models.ErrInsufficientStock, product.ID, product.Stock)
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.MainImage(),
			Quantity:  line.Quantity,
		})
	}

	order := models.NewOrder(userID, email, items)
	if err := s.Orders.Create(ctx, order); err != nil {
		return nil, err
	}

	init, err := s.Gateway.Initialize(ctx, paystack.InitializeRequest{
		Email:       email,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Reference:   order.Reference,
		CallbackURL: fmt.Sprintf("%s/order/complete?ref=%s&oid=%s", s.FrontendBaseURL, order.Reference, order.ID),
		Metadata:    paystack.Metadata{OrderID: order.ID, UserID: userID},
	})
	if err != nil {
		// The buyer retries with a fresh checkout; this attempt is
		// closed out rather than retried automatically.
		if markErr := s.Orders.MarkFailed(ctx, order.Reference, fmt.Sprintf("init failed: %v", err), nil); markErr != nil {
			log.Printf("Failed to mark order %s failed after init error: %v", order.Reference, markErr)
		}
		return nil, fmt.Errorf("initialize payment for %s: %w", order.Reference, err)
	}

	return &Session{
		AuthorizationURL: init.AuthorizationURL,
		Reference:        order.Reference,
		OrderID:          order.ID,
	}, nil
}
