package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/adiretotes/store-api/pkg/models"
)

// Owner identifies whose cart an operation touches: an authenticated
// user id or a guest session id. Every operation takes it explicitly;
// there is no ambient current-user state.
type Owner struct {
	ID    string
	Guest bool
}

// Service implements the cart operations over whichever line store the
// owner resolves to.
type Service struct {
	Users   Lines
	Guests  Lines
	Catalog Catalog
	Events  Events
	Guard   MergeGuard
}

func NewService(users, guests Lines, catalog Catalog, events Events, guard MergeGuard) *Service {
	return &Service{Users: users, Guests: guests, Catalog: catalog, Events: events, Guard: guard}
}

func (s *Service) lines(owner Owner) Lines {
	if owner.Guest {
		return s.Guests
	}
	return s.Users
}

func (s *Service) List(ctx context.Context, owner Owner) ([]models.CartLine, error) {
	return s.lines(owner).List(ctx, owner.ID)
}

// Add folds qty of a product into the owner's cart. The stock check is
// advisory (it rejects obviously doomed requests early); the authoritative
// check happens again at payment confirmation.
func (s *Service) Add(ctx context.Context, owner Owner, productID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive")
	}

	product, err := s.Catalog.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	current := 0
	existing, err := s.lines(owner).List(ctx, owner.ID)
	if err != nil {
		return err
	}
	for _, line := range existing {
		if line.ProductID == productID {
			current = line.Quantity
			break
		}
	}
	if current+qty > product.Stock {
		return fmt.Errorf("%w: %s has %d left", models.ErrInsufficientStock, productID, product.Stock)
	}

	line := models.CartLine{
		ProductID: productID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.MainImage(),
		Quantity:  qty,
	}
	if err := s.lines(owner).Upsert(ctx, owner.ID, line); err != nil {
		return err
	}

	s.publish(ctx, owner, "added", productID, qty)
	return nil
}

func (s *Service) SetQuantity(ctx context.Context, owner Owner, productID string, qty int) error {
	if qty < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	if qty > 0 {
		product, err := s.Catalog.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if qty > product.Stock {
			return fmt.Errorf("%w: %s has %d left", models.ErrInsufficientStock, productID, product.Stock)
		}
	}

	if err := s.lines(owner).SetQuantity(ctx, owner.ID, productID, qty); err != nil {
		return err
	}

	action := "updated"
	if qty == 0 {
		action = "removed"
	}
	s.publish(ctx, owner, action, productID, qty)
	return nil
}

func (s *Service) Remove(ctx context.Context, owner Owner, productID string) error {
	if err := s.lines(owner).Remove(ctx, owner.ID, productID); err != nil {
		return err
	}
	s.publish(ctx, owner, "removed", productID, 0)
	return nil
}

func (s *Service) Clear(ctx context.Context, owner Owner) error {
	if err := s.lines(owner).Clear(ctx, owner.ID); err != nil {
		return err
	}
	s.publish(ctx, owner, "cleared", "", 0)
	return nil
}

// MergeGuest folds a guest session's cart into the authenticated cart
// after login. Each line goes through Add, so quantities sum into a
// single row per product. The guard makes the whole merge run at most
// once per session: a retried login finds the flag set and does
// nothing, which is what keeps retries from duplicating lines.
func (s *Service) MergeGuest(ctx context.Context, sessionID, userID string) error {
	first, err := s.Guard.TryMergeOnce(ctx, sessionID)
	if err != nil {
		return err
	}
	if !first {
		return nil
	}

	guestLines, err := s.Guests.List(ctx, sessionID)
	if err != nil {
		return err
	}

	user := Owner{ID: userID}
	for _, line := range guestLines {
		if err := s.Add(ctx, user, line.ProductID, line.Quantity); err != nil {
			// A line that no longer fits in stock is dropped from the
			// merge, not a reason to lose the rest of the cart.
			if errors.Is(err, models.ErrInsufficientStock) || errors.Is(err, models.ErrProductNotFound) {
				log.Printf("Skipping guest cart line %s during merge for %s: %v", line.ProductID, userID, err)
				continue
			}
			return fmt.Errorf("merge guest cart %s: %w", sessionID, err)
		}
	}

	if err := s.Guests.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear guest cart %s: %w", sessionID, err)
	}

	s.publish(ctx, user, "merged", "", 0)
	return nil
}

func (s *Service) publish(ctx context.Context, owner Owner, action, productID string, qty int) {
	ev := models.CartEvent{
		Owner:     owner.ID,
		Action:    action,
		ProductID: productID,
		Quantity:  qty,
		At:        time.Now(),
	}
	if err := s.Events.Publish(ctx, ev); err != nil {
		// Subscribers are a convenience; the mutation already landed.
		log.Printf("Failed to publish cart event for %s: %v", owner.ID, err)
	}
}
