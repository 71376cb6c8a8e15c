package service

import (
	"context"
	"fmt"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/localstore"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/session"
	"storefront/internal/view"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// cartService implements CartService.
type cartService struct {
	local      localstore.Store
	remote     repository.CartRepository
	catalog    catalog.Catalog
	sessions   *session.Manager
	builder    *view.Builder
	metrics    *metrics.Metrics
	detailPage string
	logger     zerolog.Logger
}

// CartServiceDeps groups the collaborators of the cart service.
type CartServiceDeps struct {
	Local      localstore.Store
	Remote     repository.CartRepository
	Catalog    catalog.Catalog
	Sessions   *session.Manager
	Builder    *view.Builder
	Metrics    *metrics.Metrics
	DetailPage string
}

// NewCartService creates a new cart service.
func NewCartService(deps CartServiceDeps, logger zerolog.Logger) CartService {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNop()
	}
	return &cartService{
		local:      deps.Local,
		remote:     deps.Remote,
		catalog:    deps.Catalog,
		sessions:   deps.Sessions,
		builder:    deps.Builder,
		metrics:    deps.Metrics,
		detailPage: deps.DetailPage,
		logger:     logger.With().Str("service", "cart").Logger(),
	}
}

// View renders the in-memory cart. Toggling fastCargo never re-reads a store.
func (s *cartService) View(ctx context.Context, sessionID string, fastCargo bool) (*view.CartView, error) {
	sess := s.sessions.Get(sessionID)
	sess.Lock()
	defer sess.Unlock()

	if err := s.ensureLoaded(ctx, sess); err != nil {
		return nil, err
	}

	v := s.builder.Cart(sess.Cart(), fastCargo)
	return &v, nil
}

// AddItem merges quantity units of a catalogue product into the cart.
func (s *cartService) AddItem(ctx context.Context, sessionID string, req *model.AddItemRequest) (*view.CartView, error) {
	if req.Quantity < 0 {
		return nil, model.ErrInvalidQuantity
	}

	product, ok := s.catalog.Get(req.ProductID)
	if !ok {
		s.logger.Warn().Str("product_id", req.ProductID.String()).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	sess := s.sessions.Get(sessionID)
	sess.Lock()
	defer sess.Unlock()

	if err := s.ensureLoaded(ctx, sess); err != nil {
		return nil, err
	}

	updated, report := cart.Add(sess.Cart(), product.ToCartItem(cart.NormalizeQuantity(req.Quantity)))
	s.recordDropped(sessionID, report)
	sess.SetCart(updated)

	if err := s.persist(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("session_id", sessionID).
		Str("product_id", product.ID.String()).
		Int("item_count", len(updated)).
		Msg("item added to cart")

	v := s.builder.Cart(sess.Cart(), false)
	return &v, nil
}

// RemoveItem removes key from the cart. An absent key leaves the cart unchanged.
func (s *cartService) RemoveItem(ctx context.Context, sessionID, key string) (*view.CartView, error) {
	sess := s.sessions.Get(sessionID)
	sess.Lock()
	defer sess.Unlock()

	if err := s.ensureLoaded(ctx, sess); err != nil {
		return nil, err
	}

	updated, removed := cart.Remove(sess.Cart(), key)
	if removed {
		sess.SetCart(updated)
		if err := s.persist(ctx, sess); err != nil {
			return nil, err
		}
		s.logger.Debug().
			Str("session_id", sessionID).
			Str("key", key).
			Msg("item removed from cart")
	}

	v := s.builder.Cart(sess.Cart(), false)
	return &v, nil
}

// SelectItem stores key for the product detail page.
func (s *cartService) SelectItem(ctx context.Context, sessionID, key string) (*SelectResult, error) {
	sess := s.sessions.Get(sessionID)
	sess.Lock()
	defer sess.Unlock()

	if err := s.ensureLoaded(ctx, sess); err != nil {
		return nil, err
	}

	if _, ok := cart.Find(sess.Cart(), key); !ok {
		return nil, model.ErrItemNotFound
	}

	id := model.ItemID(key)
	if err := s.local.SetSelectedProduct(ctx, sessionID, id); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to store selected product")
		return nil, fmt.Errorf("failed to select item: %w", err)
	}

	return &SelectResult{ProductID: id, Redirect: s.detailPage}, nil
}

// OnAuthStateChanged handles one auth event. Events of a session run one at a time.
func (s *cartService) OnAuthStateChanged(ctx context.Context, sessionID string, user *model.User) error {
	sess := s.sessions.Get(sessionID)
	sess.Lock()
	defer sess.Unlock()

	if user == nil {
		s.signOut(ctx, sess)
		return nil
	}

	if current := sess.User(); current != nil && sess.State() == session.StateReconciled {
		if current.UID == user.UID {
			s.logger.Debug().Str("session_id", sess.ID).Str("user_id", user.UID).Msg("already signed in, skipping reconcile")
			return nil
		}
		s.logger.Info().
			Str("session_id", sess.ID).
			Str("from_user_id", current.UID).
			Str("to_user_id", user.UID).
			Msg("switching user")
		s.signOut(ctx, sess)
	}
	return s.signIn(ctx, sess, user)
}

func (s *cartService) signIn(ctx context.Context, sess *session.Session, user *model.User) error {
	logger := s.logger.With().
		Str("session_id", sess.ID).
		Str("user_id", user.UID).
		Logger()

	if err := sess.BeginSignIn(user); err != nil {
		return err
	}

	var (
		g                   errgroup.Group
		local, remote       model.Cart
		localErr, remoteErr error
	)
	g.Go(func() error {
		local, localErr = s.local.ReadCart(ctx, sess.ID)
		return nil
	})
	g.Go(func() error {
		remote, remoteErr = s.remote.ReadCart(ctx, user.UID)
		return nil
	})
	_ = g.Wait()

	if localErr != nil {
		logger.Warn().Err(localErr).Msg("failed to read local cart, using in-memory cart")
		local = sess.Cart()
	}
	if remoteErr != nil {
		logger.Warn().Err(remoteErr).Msg("failed to read remote cart, treating as empty")
		s.metrics.RemoteSyncFailures.WithLabelValues("read").Inc()
		remote = model.Cart{}
	}

	merged, report := cart.Merge(local, remote)
	s.recordDropped(sess.ID, report)

	// An unread remote cart must not be overwritten.
	if remoteErr != nil {
		logger.Warn().Msg("skipping remote write after failed read")
		s.metrics.RemoteSyncFailures.WithLabelValues("write_skipped").Inc()
	} else if err := s.remote.WriteCart(ctx, user.UID, merged); err != nil {
		logger.Warn().Err(err).Msg("failed to write merged cart to remote store")
		s.metrics.RemoteSyncFailures.WithLabelValues("write").Inc()
	}
	if err := s.local.WriteCart(ctx, sess.ID, merged); err != nil {
		logger.Warn().Err(err).Msg("failed to write merged cart to local store")
	}

	sess.SetCart(merged)
	if err := sess.FinishSignIn(); err != nil {
		return err
	}

	logger.Info().
		Int("local_items", len(local)).
		Int("remote_items", len(remote)).
		Int("merged_items", len(merged)).
		Msg("cart reconciled")

	return nil
}

func (s *cartService) signOut(ctx context.Context, sess *session.Session) {
	sess.SignOut()

	c, err := s.local.ReadCart(ctx, sess.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to read local cart after sign-out")
		return
	}
	sess.SetCart(c)

	s.logger.Info().Str("session_id", sess.ID).Msg("signed out")
}

// ensureLoaded reads the local cart into the session on first use.
func (s *cartService) ensureLoaded(ctx context.Context, sess *session.Session) error {
	if sess.Loaded() {
		return nil
	}

	c, err := s.local.ReadCart(ctx, sess.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sess.ID).Msg("failed to load cart")
		return fmt.Errorf("failed to load cart: %w", err)
	}
	sess.SetCart(c)
	return nil
}

// persist writes the cart locally and, when signed in, to the remote store.
// Remote failures are logged and counted only.
func (s *cartService) persist(ctx context.Context, sess *session.Session) error {
	if err := s.local.WriteCart(ctx, sess.ID, sess.Cart()); err != nil {
		s.logger.Error().Err(err).Str("session_id", sess.ID).Msg("failed to save cart")
		return fmt.Errorf("failed to save cart: %w", err)
	}

	if user := sess.User(); user != nil {
		if err := s.remote.WriteCart(ctx, user.UID, sess.Cart()); err != nil {
			s.logger.Warn().
				Err(err).
				Str("session_id", sess.ID).
				Str("user_id", user.UID).
				Msg("failed to sync cart to remote store")
			s.metrics.RemoteSyncFailures.WithLabelValues("write").Inc()
		}
	}
	return nil
}

func (s *cartService) recordDropped(sessionID string, report cart.MergeReport) {
	if report.Dropped == 0 {
		return
	}
	s.logger.Warn().
		Str("session_id", sessionID).
		Int("dropped", report.Dropped).
		Msg("dropped cart items without an identity key")
	s.metrics.MergeDroppedItems.Add(float64(report.Dropped))
}
