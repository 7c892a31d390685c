package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gympulse/gateway/internal/core/ports"
	"github.com/gympulse/gateway/internal/infrastructure/tokenstore"
)

// TokenSlots stores one credential per browser session in Redis under
// gympulse_token:<digest>.
type TokenSlots struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

var _ ports.TokenSlots = (*TokenSlots)(nil)

// NewTokenSlots wraps client. A zero ttl keeps credentials until cleared.
func NewTokenSlots(client *redis.Client, ttl time.Duration, log zerolog.Logger) *TokenSlots {
	return &TokenSlots{client: client, ttl: ttl, log: log}
}

func (s *TokenSlots) Slot(sessionID string) ports.TokenStore {
	return &tokenSlot{parent: s, key: tokenstore.SlotKey(sessionID)}
}

type tokenSlot struct {
	parent *TokenSlots
	key    string
}

// Get treats any storage failure as an absent credential.
func (s *tokenSlot) Get(ctx context.Context) (string, bool) {
	tok, err := s.parent.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		s.parent.log.Warn().Err(err).Msg("token slot read failed, treating as absent")
		return "", false
	}
	return tok, tok != ""
}

func (s *tokenSlot) Set(ctx context.Context, token string) error {
	if err := s.parent.client.Set(ctx, s.key, token, s.parent.ttl).Err(); err != nil {
		return fmt.Errorf("token slot set: %w", err)
	}
	return nil
}

func (s *tokenSlot) Clear(ctx context.Context) error {
	if err := s.parent.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("token slot clear: %w", err)
	}
	return nil
}
