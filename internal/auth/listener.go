package auth

import (
	"context"
	"errors"
	"sync"

	"storefront/internal/model"
)

// ErrAlreadySubscribed is returned when a second subscriber registers.
var ErrAlreadySubscribed = errors.New("auth listener already has a subscriber")

// StateChangeFunc receives sign-in (user != nil) and sign-out (user == nil) events.
type StateChangeFunc func(ctx context.Context, sessionID string, user *model.User) error

// Listener delivers auth state changes to a single subscriber.
type Listener struct {
	mu sync.RWMutex
	fn StateChangeFunc
}

// NewListener creates a listener with no subscriber.
func NewListener() *Listener {
	return &Listener{}
}

// OnAuthStateChanged registers fn. The returned func removes the subscription.
func (l *Listener) OnAuthStateChanged(fn StateChangeFunc) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fn != nil {
		return nil, ErrAlreadySubscribed
	}
	l.fn = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.fn = nil
			l.mu.Unlock()
		})
	}, nil
}

// Notify runs the subscriber synchronously. Without a subscriber it does nothing.
func (l *Listener) Notify(ctx context.Context, sessionID string, user *model.User) error {
	l.mu.RLock()
	fn := l.fn
	l.mu.RUnlock()

	if fn == nil {
		return nil
	}
	return fn(ctx, sessionID, user)
}
