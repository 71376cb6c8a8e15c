package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// postgresStore implements Store using PostgreSQL JSONB documents.
type postgresStore struct {
	pool   *pgxpool.Pool
	now    func() time.Time
	logger zerolog.Logger
}

// NewPostgresStore creates a new PostgreSQL-backed cart and order store.
func NewPostgresStore(pool *pgxpool.Pool, logger zerolog.Logger) Store {
	return &postgresStore{
		pool:   pool,
		now:    time.Now,
		logger: logger.With().Str("repository", "postgres").Logger(),
	}
}

// ReadCart returns the user's cart items.
func (r *postgresStore) ReadCart(ctx context.Context, userID string) (model.Cart, error) {
	query := `
		SELECT items
		FROM carts
		WHERE user_id = $1
	`

	var raw []byte
	err := r.pool.QueryRow(ctx, query, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("user_id", userID).Msg("cart not found")
			return model.Cart{}, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	var items model.Cart
	if err := json.Unmarshal(raw, &items); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to decode cart items")
		return nil, fmt.Errorf("failed to decode cart items: %w", err)
	}
	if items == nil {
		items = model.Cart{}
	}

	return items, nil
}

// WriteCart upserts the items and update time of the user's cart row.
func (r *postgresStore) WriteCart(ctx context.Context, userID string, cart model.Cart) error {
	if cart == nil {
		cart = model.Cart{}
	}
	items, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart items: %w", err)
	}

	query := `
		INSERT INTO carts (user_id, items, updated_at)
		VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET items = EXCLUDED.items, updated_at = EXCLUDED.updated_at
	`

	_, err = r.pool.Exec(ctx, query, userID, string(items), r.now().UnixMilli())
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID).
			Int("item_count", len(cart)).
			Msg("failed to write cart")
		return fmt.Errorf("failed to write cart: %w", err)
	}

	r.logger.Debug().
		Str("user_id", userID).
		Int("item_count", len(cart)).
		Msg("cart written successfully")

	return nil
}

// CreateOrder inserts a new order and reads back its server-assigned creation time.
func (r *postgresStore) CreateOrder(ctx context.Context, order *model.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}
	payment, err := json.Marshal(order.Payment)
	if err != nil {
		return fmt.Errorf("failed to encode order payment: %w", err)
	}
	shipping, err := json.Marshal(order.Shipping)
	if err != nil {
		return fmt.Errorf("failed to encode order shipping: %w", err)
	}

	query := `
		INSERT INTO orders (id, user_id, items, subtotal, shipping_fee, total, currency, status, payment, shipping)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7, $8, $9::jsonb, $10::jsonb)
		RETURNING created_at
	`

	err = r.pool.QueryRow(ctx, query,
		order.ID,
		order.UserID,
		string(items),
		order.Subtotal,
		order.ShippingFee,
		order.Total,
		order.Currency,
		string(order.Status),
		string(payment),
		string(shipping),
	).Scan(&order.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID).
			Str("user_id", order.UserID).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID).
		Msg("order created successfully")

	return nil
}
