package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// BreakerSettings configures the circuit breaker in front of a remote store.
type BreakerSettings struct {
	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32
	// Interval clears the closed-state counts. Zero never clears them.
	Interval time.Duration
	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
}

// breakerStore guards every call to the wrapped store with a circuit breaker.
// While open, calls fail immediately with gobreaker.ErrOpenState.
type breakerStore struct {
	next    Store
	readCB  *gobreaker.CircuitBreaker[model.Cart]
	writeCB *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerStore wraps next with read and write circuit breakers.
func NewBreakerStore(next Store, settings BreakerSettings, logger zerolog.Logger) Store {
	l := logger.With().Str("repository", "breaker").Logger()

	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 5
	}

	build := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        name,
			MaxRequests: settings.MaxRequests,
			Interval:    settings.Interval,
			Timeout:     settings.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				l.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("circuit breaker state changed")
			},
		}
	}

	return &breakerStore{
		next:    next,
		readCB:  gobreaker.NewCircuitBreaker[model.Cart](build("remote-read")),
		writeCB: gobreaker.NewCircuitBreaker[struct{}](build("remote-write")),
	}
}

func (b *breakerStore) ReadCart(ctx context.Context, userID string) (model.Cart, error) {
	return b.readCB.Execute(func() (model.Cart, error) {
		return b.next.ReadCart(ctx, userID)
	})
}

func (b *breakerStore) WriteCart(ctx context.Context, userID string, cart model.Cart) error {
	_, err := b.writeCB.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.WriteCart(ctx, userID, cart)
	})
	return err
}

// CreateOrder shares the write breaker with WriteCart.
func (b *breakerStore) CreateOrder(ctx context.Context, order *model.Order) error {
	_, err := b.writeCB.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.CreateOrder(ctx, order)
	})
	return err
}
