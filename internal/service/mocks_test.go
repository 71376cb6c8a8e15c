package service

import (
	"context"

	"storefront/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockLocalStore is a mock implementation of localstore.Store.
type MockLocalStore struct {
	mock.Mock
}

func (m *MockLocalStore) ReadCart(ctx context.Context, sessionID string) (model.Cart, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Cart), args.Error(1)
}

func (m *MockLocalStore) WriteCart(ctx context.Context, sessionID string, cart model.Cart) error {
	args := m.Called(ctx, sessionID, cart)
	return args.Error(0)
}

func (m *MockLocalStore) SetSelectedProduct(ctx context.Context, sessionID string, id model.ItemID) error {
	args := m.Called(ctx, sessionID, id)
	return args.Error(0)
}

func (m *MockLocalStore) SelectedProduct(ctx context.Context, sessionID string) (model.ItemID, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(model.ItemID), args.Error(1)
}

// MockRemoteStore is a mock implementation of repository.Store.
type MockRemoteStore struct {
	mock.Mock
}

func (m *MockRemoteStore) ReadCart(ctx context.Context, userID string) (model.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Cart), args.Error(1)
}

func (m *MockRemoteStore) WriteCart(ctx context.Context, userID string, cart model.Cart) error {
	args := m.Called(ctx, userID, cart)
	return args.Error(0)
}

func (m *MockRemoteStore) CreateOrder(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockTokenVerifier is a mock implementation of auth.TokenVerifier.
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Verify(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
