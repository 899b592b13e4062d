package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"github.com/adiretotes/store-api/pkg/models"
)

// Guest carts live in a Redis hash per session, one field per product
// holding a JSON-encoded line. Same line shape and upsert semantics as
// the authenticated Mongo cart so merge-on-login can reuse them.

const guestCartTTL = 7 * 24 * time.Hour

func guestCartKey(sessionID string) string {
	return fmt.Sprintf("guestcart:%s", sessionID)
}

// GuestCartRepo implements the cart line store for anonymous owners.
type GuestCartRepo struct{}

func (r *GuestCartRepo) List(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	fields, err := Client().HGetAll(ctx, guestCartKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}

	lines := make([]models.CartLine, 0, len(fields))
	for _, raw := range fields {
		var line models.CartLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			return nil, fmt.Errorf("decode guest cart line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (r *GuestCartRepo) Upsert(ctx context.Context, sessionID string, line models.CartLine) error {
	key := guestCartKey(sessionID)

	existing, err := r.get(ctx, sessionID, line.ProductID)
	if err != nil && !errors.Is(err, models.ErrCartItemNotFound) {
		return err
	}

	now := time.Now()
	if existing != nil {
		line.Quantity += existing.Quantity
		line.CreatedAt = existing.CreatedAt
	} else {
		line.CreatedAt = now
	}
	line.ID = models.CartLineID(sessionID, line.ProductID)
	line.UserID = sessionID
	line.UpdatedAt = now

	payload, err := json.Marshal(line)
	if err != nil {
		return err
	}

	pipe := Client().TxPipeline()
	pipe.HSet(ctx, key, line.ProductID, payload)
	pipe.Expire(ctx, key, guestCartTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *GuestCartRepo) SetQuantity(ctx context.Context, sessionID, productID string, qty int) error {
	if qty == 0 {
		return r.Remove(ctx, sessionID, productID)
	}

	line, err := r.get(ctx, sessionID, productID)
	if err != nil {
		return err
	}
	line.Quantity = qty
	line.UpdatedAt = time.Now()

	payload, err := json.Marshal(line)
	if err != nil {
		return err
	}

	key := guestCartKey(sessionID)
	pipe := Client().TxPipeline()
	pipe.HSet(ctx, key, productID, payload)
	pipe.Expire(ctx, key, guestCartTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *GuestCartRepo) Remove(ctx context.Context, sessionID, productID string) error {
	removed, err := Client().HDel(ctx, guestCartKey(sessionID), productID).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return models.ErrCartItemNotFound
	}
	return nil
}

func (r *GuestCartRepo) Clear(ctx context.Context, sessionID string) error {
	return Client().Del(ctx, guestCartKey(sessionID)).Err()
}

func (r *GuestCartRepo) get(ctx context.Context, sessionID, productID string) (*models.CartLine, error) {
	raw, err := Client().HGet(ctx, guestCartKey(sessionID), productID).Result()
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, models.ErrCartItemNotFound
		}
		return nil, err
	}

	var line models.CartLine
	if err := json.Unmarshal([]byte(raw), &line); err != nil {
		return nil, err
	}
	return &line, nil
}
