package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"storefront/internal/model"
)

// State is the reconciliation state of a session.
type State int

const (
	StateAnonymous State = iota
	StateSigningIn
	StateReconciled
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateSigningIn:
		return "signing_in"
	case StateReconciled:
		return "reconciled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var ErrInvalidTransition = errors.New("invalid session state transition")

// Session is the page context of one device. State and cart are read and
// written with the session locked. The user and the submission flag may be
// read without the lock.
type Session struct {
	ID string

	mu       sync.Mutex
	state    State
	cart     model.Cart
	loaded   bool
	user     atomic.Pointer[model.User]
	lastSeen atomic.Int64

	submitting atomic.Bool
}

func newSession(id string, now time.Time) *Session {
	s := &Session{ID: id, cart: model.Cart{}}
	s.lastSeen.Store(now.UnixNano())
	return s
}

// Lock serializes event handling for the session.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

func (s *Session) State() State { return s.state }

// User returns the signed-in user or nil.
func (s *Session) User() *model.User { return s.user.Load() }

// SignedIn reports whether a user is attached.
func (s *Session) SignedIn() bool { return s.user.Load() != nil }

// Cart returns the active in-memory cart.
func (s *Session) Cart() model.Cart { return s.cart }

// Loaded reports whether the cart has been read from the local store at least once.
func (s *Session) Loaded() bool { return s.loaded }

// SetCart replaces the active cart and marks it loaded.
func (s *Session) SetCart(c model.Cart) {
	if c == nil {
		c = model.Cart{}
	}
	s.cart = c
	s.loaded = true
}

// BeginSignIn attaches user and moves to SigningIn. Only an anonymous
// session can begin a sign-in; a signed-in session must sign out first.
func (s *Session) BeginSignIn(user *model.User) error {
	if err := s.transition(StateSigningIn); err != nil {
		return err
	}
	s.user.Store(user)
	return nil
}

// FinishSignIn moves from SigningIn to Reconciled.
func (s *Session) FinishSignIn() error {
	return s.transition(StateReconciled)
}

// SignOut clears the user and returns to Anonymous.
func (s *Session) SignOut() {
	s.user.Store(nil)
	s.state = StateAnonymous
}

func (s *Session) transition(to State) error {
	allowed := false
	switch to {
	case StateSigningIn:
		allowed = s.state == StateAnonymous
	case StateReconciled:
		allowed = s.state == StateSigningIn
	case StateAnonymous:
		allowed = true
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, to)
	}
	s.state = to
	return nil
}

// TryBeginSubmit marks a checkout submission in flight. It returns false
// if one already is. It does not need the session lock.
func (s *Session) TryBeginSubmit() bool {
	return s.submitting.CompareAndSwap(false, true)
}

// EndSubmit clears the in-flight submission flag.
func (s *Session) EndSubmit() {
	s.submitting.Store(false)
}

// Submitting reports whether a checkout submission is in flight.
func (s *Session) Submitting() bool {
	return s.submitting.Load()
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// Manager owns the sessions of the process.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Get returns the session for id, creating it on first use.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s, ok := m.sessions[id]
	if !ok {
		s = newSession(id, now)
		m.sessions[id] = s
		return s
	}
	s.touch(now)
	return s
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// EvictIdle drops sessions not used for longer than maxIdle and returns how many were dropped.
// Sessions with a submission in flight are kept.
func (m *Manager) EvictIdle(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxIdle).UnixNano()
	evicted := 0
	for id, s := range m.sessions {
		if s.lastSeen.Load() < cutoff && !s.Submitting() {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}
