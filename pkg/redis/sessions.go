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

const (
	sessionTTL = 24 * time.Hour

	// The merge guard lives as long as a guest cart could; once the
	// guard is set for a session, retried merges are no-ops.
	mergeGuardTTL = 7 * 24 * time.Hour
)

// SessionStore holds bearer-token sessions and the one-shot guest cart
// merge guard.
type SessionStore struct{}

func (s *SessionStore) Save(ctx context.Context, token string, session models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return Client().Set(ctx, sessionKey(token), payload, sessionTTL).Err()
}

func (s *SessionStore) Get(ctx context.Context, token string) (*models.Session, error) {
	raw, err := Client().Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redisclient.Nil) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return Client().Del(ctx, sessionKey(token)).Err()
}

// TryMergeOnce flips the per-session merge flag. Returns true exactly
// once per guest session; the SETNX makes retries and concurrent login
// requests safe.
func (s *SessionStore) TryMergeOnce(ctx context.Context, sessionID string) (bool, error) {
	return Client().SetNX(ctx, fmt.Sprintf("cartmerge:%s", sessionID), "1", mergeGuardTTL).Result()
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}
