package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/parentpanel/gateway/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrEmptyToken is returned when asked to persist a blank token.
var ErrEmptyToken = errors.New("auth token is empty")

// TokenStore persists the parent's auth token per browser session.
type TokenStore interface {
	Get(ctx context.Context, sessionID string) (string, error)
	Set(ctx context.Context, sessionID, token string, ttl time.Duration) error
}

// RedisTokenStore keeps session tokens in Redis.
type RedisTokenStore struct {
	rdb *redis.Client
}

// NewRedisTokenStore creates a new RedisTokenStore.
func NewRedisTokenStore(rdb *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{rdb: rdb}
}

// Get returns the stored token, or "" if the session has none.
func (s *RedisTokenStore) Get(ctx context.Context, sessionID string) (string, error) {
	token, err := s.rdb.Get(ctx, config.CacheKey.SessionTokenKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get session token: %w", err)
	}
	return token, nil
}

// Set stores token for the session.
func (s *RedisTokenStore) Set(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, config.CacheKey.SessionTokenKey(sessionID), token, ttl).Err(); err != nil {
		return fmt.Errorf("set session token: %w", err)
	}
	return nil
}

// TokenService decides which auth token an upstream call carries.
//
// Priority, highest first:
//  1. an explicit "Authorization: Bearer" sent by the browser,
//  2. the token stored for the browser session,
//  3. the configured default token.
type TokenService struct {
	store        TokenStore
	defaultToken string
	ttl          time.Duration
	log          zerolog.Logger
}

// NewTokenService creates a new TokenService.
func NewTokenService(store TokenStore, defaultToken string, ttl time.Duration, log zerolog.Logger) *TokenService {
	return &TokenService{
		store:        store,
		defaultToken: strings.TrimSpace(defaultToken),
		ttl:          ttl,
		log:          log.With().Str("component", "token_service").Logger(),
	}
}

// Persist stores token for sessionID.
func (s *TokenService) Persist(ctx context.Context, sessionID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	return s.store.Set(ctx, sessionID, token, s.ttl)
}

// Resolve returns the token to use for a request. A store failure is logged
// and resolution falls through to the default token.
func (s *TokenService) Resolve(ctx context.Context, sessionID, bearer string) string {
	if bearer = strings.TrimSpace(bearer); bearer != "" {
		return bearer
	}
	if sessionID != "" {
		token, err := s.store.Get(ctx, sessionID)
		if err != nil {
			s.log.Warn().Err(err).Msg("Session token lookup failed")
		} else if token != "" {
			return token
		}
	}
	return s.defaultToken
}
