package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/localstore"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/session"
	"storefront/internal/view"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderPlacedMessage is shown after a successful submission.
const OrderPlacedMessage = "Order placed ✅"

// checkoutService implements CheckoutService.
type checkoutService struct {
	local            localstore.Store
	orders           repository.OrderRepository
	remote           repository.CartRepository
	sessions         *session.Manager
	builder          *view.Builder
	validate         *validator.Validate
	metrics          *metrics.Metrics
	confirmationPage string
	clearRemoteCart  bool
	newID            func() string
	logger           zerolog.Logger
}

// CheckoutServiceDeps groups the collaborators of the checkout service.
type CheckoutServiceDeps struct {
	Local            localstore.Store
	Orders           repository.OrderRepository
	Remote           repository.CartRepository
	Sessions         *session.Manager
	Builder          *view.Builder
	Metrics          *metrics.Metrics
	ConfirmationPage string
	// ClearRemoteCart also empties the user's remote cart after an order.
	ClearRemoteCart bool
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(deps CheckoutServiceDeps, logger zerolog.Logger) CheckoutService {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNop()
	}
	return &checkoutService{
		local:            deps.Local,
		orders:           deps.Orders,
		remote:           deps.Remote,
		sessions:         deps.Sessions,
		builder:          deps.Builder,
		validate:         validator.New(validator.WithRequiredStructEnabled()),
		metrics:          deps.Metrics,
		confirmationPage: deps.ConfirmationPage,
		clearRemoteCart:  deps.ClearRemoteCart,
		newID:            uuid.NewString,
		logger:           logger.With().Str("service", "checkout").Logger(),
	}
}

// Summary renders the local cart snapshot for a signed-in session.
func (s *checkoutService) Summary(ctx context.Context, sessionID string) (*view.CheckoutView, error) {
	sess := s.sessions.Get(sessionID)
	sess.Lock()
	defer sess.Unlock()

	if !sess.SignedIn() {
		return nil, model.ErrAuthRequired
	}

	items, err := s.local.ReadCart(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to read cart")
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	v := s.builder.Checkout(items)
	return &v, nil
}

// Submit places an order for the session's cart.
func (s *checkoutService) Submit(ctx context.Context, sessionID string, req *model.CheckoutRequest) (*CheckoutResult, error) {
	sess := s.sessions.Get(sessionID)
	if !sess.SignedIn() {
		return nil, model.ErrAuthRequired
	}

	if !sess.TryBeginSubmit() {
		s.logger.Warn().Str("session_id", sessionID).Msg("duplicate order submission rejected")
		return nil, model.ErrSubmissionInProgress
	}
	defer sess.EndSubmit()

	sess.Lock()
	defer sess.Unlock()

	user := sess.User()
	if user == nil {
		return nil, model.ErrAuthRequired
	}

	items, err := s.local.ReadCart(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to read cart")
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(items) == 0 {
		return nil, model.ErrEmptyCart
	}

	form := normalizeCheckoutRequest(req)
	if err := s.validate.Struct(form); err != nil {
		return nil, model.ErrMissingShipping
	}

	payment, err := s.paymentInfo(form)
	if err != nil {
		return nil, err
	}

	totals := s.builder.CheckoutTotals(items)
	order := &model.Order{
		ID:          s.newID(),
		UserID:      user.UID,
		Items:       items,
		Subtotal:    totals.Subtotal,
		ShippingFee: totals.Shipping,
		Total:       totals.Total,
		Currency:    s.builder.Currency(),
		Status:      model.StatusFor(payment.Method),
		Payment:     payment,
		Shipping: model.ShippingAddress{
			FullName: form.FullName,
			Phone:    form.Phone,
			Address:  form.Address,
		},
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		s.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Str("user_id", user.UID).
			Str("order_id", order.ID).
			Msg("failed to create order")
		s.metrics.OrdersFailed.Inc()
		return nil, model.NewOrderFailedError(err)
	}

	if err := s.local.WriteCart(ctx, sessionID, model.Cart{}); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to clear local cart after order")
	}
	sess.SetCart(model.Cart{})

	if s.clearRemoteCart {
		if err := s.remote.WriteCart(ctx, user.UID, model.Cart{}); err != nil {
			s.logger.Warn().Err(err).Str("user_id", user.UID).Msg("failed to clear remote cart after order")
			s.metrics.RemoteSyncFailures.WithLabelValues("write").Inc()
		}
	}

	s.metrics.OrdersPlaced.WithLabelValues(string(payment.Method)).Inc()

	s.logger.Info().
		Str("order_id", order.ID).
		Str("user_id", user.UID).
		Str("method", string(payment.Method)).
		Int64("total", order.Total).
		Msg("order placed")

	return &CheckoutResult{
		Order:    order,
		Message:  OrderPlacedMessage,
		Redirect: s.confirmationPage,
	}, nil
}

// paymentInfo checks the method-specific fields of form.
func (s *checkoutService) paymentInfo(form *model.CheckoutRequest) (model.PaymentInfo, error) {
	if err := s.validate.Var(string(form.Method), "oneof=COD BKASH NAGAD"); err != nil {
		return model.PaymentInfo{}, model.ErrInvalidPaymentMethod
	}

	switch form.Method {
	case model.PaymentBKash:
		if form.Number == "" || form.TrxID == "" {
			return model.PaymentInfo{}, model.ErrMissingBKashPayment
		}
	case model.PaymentNagad:
		if form.Number == "" || form.TrxID == "" {
			return model.PaymentInfo{}, model.ErrMissingNagadPayment
		}
	default:
		return model.PaymentInfo{Method: form.Method}, nil
	}

	return model.PaymentInfo{
		Method: form.Method,
		Number: form.Number,
		TrxID:  form.TrxID,
	}, nil
}

// normalizeCheckoutRequest trims every field. A missing method means COD.
func normalizeCheckoutRequest(req *model.CheckoutRequest) *model.CheckoutRequest {
	if req == nil {
		req = &model.CheckoutRequest{}
	}
	form := &model.CheckoutRequest{
		FullName: strings.TrimSpace(req.FullName),
		Phone:    strings.TrimSpace(req.Phone),
		Address:  strings.TrimSpace(req.Address),
		Method:   model.PaymentMethod(strings.ToUpper(strings.TrimSpace(string(req.Method)))),
		Number:   strings.TrimSpace(req.Number),
		TrxID:    strings.TrimSpace(req.TrxID),
	}
	if form.Method == "" {
		form.Method = model.PaymentCOD
	}
	return form
}
