package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-wishlist-app/internal/core/domain/auth"
	"go-wishlist-app/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const SessionPrefix = "session:"

// SessionStore maps session ids to user ids until they expire or are deleted.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

var _ ports.SessionStore = (*SessionStore)(nil)

func (s *SessionStore) Create(ctx context.Context, session auth.Session, ttl time.Duration) error {
	if err := s.client.Set(ctx, SessionPrefix+session.ID, session.UserID, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *SessionStore) Lookup(ctx context.Context, sessionID string) (auth.Session, error) {
	userID, err := s.client.Get(ctx, SessionPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return auth.Session{}, auth.ErrSessionNotFound
	}
	if err != nil {
		return auth.Session{}, fmt.Errorf("lookup session: %w", err)
	}
	return auth.Session{ID: sessionID, UserID: userID}, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, SessionPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
