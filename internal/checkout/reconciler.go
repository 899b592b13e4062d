package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/adiretotes/store-api/pkg/models"
	"github.com/adiretotes/store-api/pkg/paystack"
)

// Reconciler converts a verified gateway result into local state,
// exactly once per reference. Both the webhook and the client-side
// confirmation land here; neither path gets weaker checks.
type Reconciler struct {
	Catalog Catalog
	Carts   Carts
	Orders  Orders
	Ledger  Ledger
	Gateway Gateway
	Tx      TxRunner
}

// Outcome reports what a reconciliation did. Applied is false for the
// idempotent no-op on an already-terminal order.
type Outcome struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Applied   bool   `json:"applied"`
}

// Reconcile drives the order state machine for one reference.
//
// The notification that triggered us is untrusted: status and amount
// come from the gateway's verify endpoint, looked up here. Nothing is
// mutated before that verification and the order lookup succeed.
func (r *Reconciler) Reconcile(ctx context.Context, reference string) (Outcome, error) {
	verified, err := r.Gateway.Verify(ctx, reference)
	if err != nil {
		return Outcome{}, fmt.Errorf("verify %s: %w", reference, err)
	}

	order, err := r.Orders.GetByReference(ctx, reference)
	if err != nil {
		return Outcome{}, err
	}

	// Duplicate webhook deliveries and the redundant client callback
	// both stop here once the order is terminal.
	if order.IsFinal() {
		return Outcome{Reference: reference, Status: order.Status}, nil
	}

	if verified.Amount != order.Amount {
		log.Printf("Amount mismatch on %s: gateway reports %d, order holds %d", reference, verified.Amount, order.Amount)
	}

	switch verified.Status {
	case paystack.StatusSuccess:
		return r.applySuccess(ctx, order, verified)
	case paystack.StatusFailed:
		if err := r.Orders.MarkFailed(ctx, reference, verified.GatewayResponse, models.PaymentDoc(verified.Raw)); err != nil {
			if errors.Is(err, models.ErrOrderFinal) {
				return Outcome{Reference: reference, Status: models.OrderStatusFailed}, nil
			}
			return Outcome{}, err
		}
		return Outcome{Reference: reference, Status: models.OrderStatusFailed, Applied: true}, nil
	default:
		// Unrecognized gateway status: recorded verbatim for manual
		// follow-up, no stock or cart side effects.
		log.Printf("Order %s received gateway status %q, recording as-is", reference, verified.Status)
		if err := r.Orders.SetStatus(ctx, reference, verified.Status, models.PaymentDoc(verified.Raw)); err != nil {
			if errors.Is(err, models.ErrOrderFinal) {
				return Outcome{Reference: reference, Status: verified.Status}, nil
			}
			return Outcome{}, err
		}
		return Outcome{Reference: reference, Status: verified.Status, Applied: true}, nil
	}
}

// applySuccess performs the confirmation unit: stock decrement, order
// transition, ledger row and cart clear, all inside one transaction.
// On any failure nothing is applied and the order stays pending for a
// later retry — except a verified stock shortage, which is recorded as
// stock_conflict so the captured payment is surfaced for compensation
// instead of being swallowed.
func (r *Reconciler) applySuccess(ctx context.Context, order *models.Order, verified *paystack.VerifyData) (Outcome, error) {
	paidAt := parsePaidAt(verified.PaidAt)
	payment := models.PaymentDoc(verified.Raw)

	var shortProduct string
	err := r.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, item := range order.Items {
			if err := r.Catalog.DecrementStock(ctx, item.ProductID, item.Quantity, order.Reference); err != nil {
				if errors.Is(err, models.ErrInsufficientStock) {
					shortProduct = item.ProductID
				}
				return err
			}
		}
		if err := r.Orders.MarkPaid(ctx, order.Reference, payment, paidAt); err != nil {
			return err
		}
		if err := r.Ledger.RecordOnce(ctx, &models.Transaction{
			Reference: order.Reference,
			UserID:    order.UserID,
			Email:     order.Email,
			Amount:    order.Amount,
			Status:    models.OrderStatusPaid,
			Items:     order.Items,
			PaidAt:    paidAt,
		}); err != nil {
			return err
		}
		return r.Carts.Clear(ctx, order.UserID)
	})

	if err == nil {
		log.Printf("Order %s reconciled: paid, stock decremented, cart cleared", order.Reference)
		return Outcome{Reference: order.Reference, Status: models.OrderStatusPaid, Applied: true}, nil
	}

	// A competing reconciliation finished first; its transaction
	// applied the side effects, ours rolled back.
	if errors.Is(err, models.ErrOrderFinal) {
		return Outcome{Reference: order.Reference, Status: models.OrderStatusPaid}, nil
	}

	// Payment captured but the stock re-check failed: the one state
	// where the gateway and the ledger disagree. Flag it loudly.
	if errors.Is(err, models.ErrInsufficientStock) {
		log.Printf("Order %s: payment captured but product %s is out of stock, flagging for compensation", order.Reference, shortProduct)
		if setErr := r.Orders.SetStatus(ctx, order.Reference, models.OrderStatusStockConflict, payment); setErr != nil {
			if errors.Is(setErr, models.ErrOrderFinal) {
				return Outcome{Reference: order.Reference, Status: models.OrderStatusStockConflict}, nil
			}
			return Outcome{}, setErr
		}
		return Outcome{Reference: order.Reference, Status: models.OrderStatusStockConflict, Applied: true}, nil
	}

	// Money may have moved on the gateway side even though the local
	// update failed, so the reference must reach the audit log.
	log.Printf("Order %s: confirmation unit failed, order left pending for retry: %v", order.Reference, err)
	return Outcome{}, fmt.Errorf("apply payment for %s: %w", order.Reference, err)
}

func parsePaidAt(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Now()
}
