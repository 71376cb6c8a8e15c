// Package localstore persists a device's cart under a fixed per-session key.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	cartKey     = "cart"
	selectedKey = "productId"
)

// Store defines the device-local cart storage.
type Store interface {
	// ReadCart returns the session's cart. Absent or unparseable content is an empty cart.
	ReadCart(ctx context.Context, sessionID string) (model.Cart, error)

	// WriteCart overwrites the session's cart.
	WriteCart(ctx context.Context, sessionID string, cart model.Cart) error

	// SetSelectedProduct remembers the item a detail page should show.
	SetSelectedProduct(ctx context.Context, sessionID string, id model.ItemID) error

	// SelectedProduct returns the remembered item, or an empty id when none is set.
	SelectedProduct(ctx context.Context, sessionID string) (model.ItemID, error)
}

// RedisStore implements Store on Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed local store. A zero ttl keeps keys forever.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration, logger zerolog.Logger) *RedisStore {
	if prefix == "" {
		prefix = "storefront"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With().Str("store", "local").Logger(),
	}
}

// ReadCart returns the session's cart.
func (s *RedisStore) ReadCart(ctx context.Context, sessionID string) (model.Cart, error) {
	data, err := s.client.Get(ctx, s.key(sessionID, cartKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart failed: %w", err)
	}

	var c model.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		s.logger.Warn().
			Err(err).
			Str("session_id", sessionID).
			Msg("discarding unparseable local cart")
		return model.Cart{}, nil
	}
	if c == nil {
		c = model.Cart{}
	}
	return c, nil
}

// WriteCart overwrites the session's cart.
func (s *RedisStore) WriteCart(ctx context.Context, sessionID string, c model.Cart) error {
	if c == nil {
		c = model.Cart{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	if err := s.client.Set(ctx, s.key(sessionID, cartKey), string(data), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart failed: %w", err)
	}
	return nil
}

// SetSelectedProduct remembers the item a detail page should show.
func (s *RedisStore) SetSelectedProduct(ctx context.Context, sessionID string, id model.ItemID) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal product id failed: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID, selectedKey), string(data), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set product id failed: %w", err)
	}
	return nil
}

// SelectedProduct returns the remembered item.
func (s *RedisStore) SelectedProduct(ctx context.Context, sessionID string) (model.ItemID, error) {
	data, err := s.client.Get(ctx, s.key(sessionID, selectedKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get product id failed: %w", err)
	}

	var id model.ItemID
	if err := json.Unmarshal(data, &id); err != nil {
		return "", nil
	}
	return id, nil
}

func (s *RedisStore) key(sessionID, name string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, sessionID, name)
}
