package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/internal/catalog"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/session"
	"storefront/internal/view"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type cartFixture struct {
	service  CartService
	local    *MockLocalStore
	remote   *MockRemoteStore
	sessions *session.Manager
	metrics  *metrics.Metrics
}

func newCartFixture() *cartFixture {
	f := &cartFixture{
		local:    new(MockLocalStore),
		remote:   new(MockRemoteStore),
		sessions: session.NewManager(),
		metrics:  metrics.NewNop(),
	}
	products := catalog.NewIndex([]model.Product{
		{ID: "10", Name: "Mango Pickle", Price: model.Price{NewPrice: decimal.NewFromInt(350)}},
		{ID: "11", Name: "Jamdani Scarf", Price: model.Price{NewPrice: decimal.NewFromInt(1800)}},
	})
	f.service = NewCartService(CartServiceDeps{
		Local:      f.local,
		Remote:     f.remote,
		Catalog:    products,
		Sessions:   f.sessions,
		Builder:    view.NewBuilder(nil, 150, "BDT"),
		Metrics:    f.metrics,
		DetailPage: "/single-product",
	}, zerolog.Nop())
	return f
}

func TestCartService_View_ReadsLocalOnce(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	stored := model.Cart{{ID: "1", Name: "Tea", Price: model.Price{NewPrice: decimal.NewFromInt(100)}, Quantity: 2}}
	f.local.On("ReadCart", ctx, "s1").Return(stored, nil).Once()

	v, err := f.service.View(ctx, "s1", false)
	require.NoError(t, err)
	assert.Equal(t, int64(200), v.TotalBDT)

	// Toggling shipping recomputes from memory.
	v, err = f.service.View(ctx, "s1", true)
	require.NoError(t, err)
	assert.Equal(t, int64(350), v.TotalBDT)

	f.local.AssertNumberOfCalls(t, "ReadCart", 1)
	f.remote.AssertNotCalled(t, "ReadCart", mock.Anything, mock.Anything)
}

func TestCartService_View_LocalError(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	f.local.On("ReadCart", ctx, "s1").Return(nil, errors.New("redis down"))

	v, err := f.service.View(ctx, "s1", false)

	assert.Error(t, err)
	assert.Nil(t, v)
}

func TestCartService_SignIn_MergesAndWritesBothStores(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	local := model.Cart{{ID: "1", Name: "Tea", Quantity: 2}}
	remote := model.Cart{
		{ID: "1", Name: "Tea", Quantity: 1},
		{ID: "2", Name: "Coffee", Quantity: 1},
	}
	merged := model.Cart{
		{ID: "1", Name: "Tea", Quantity: 3},
		{ID: "2", Name: "Coffee", Quantity: 1},
	}

	f.local.On("ReadCart", ctx, "s1").Return(local, nil)
	f.remote.On("ReadCart", ctx, "u1").Return(remote, nil)
	f.remote.On("WriteCart", ctx, "u1", merged).Return(nil)
	f.local.On("WriteCart", ctx, "s1", merged).Return(nil)

	err := f.service.OnAuthStateChanged(ctx, "s1", &model.User{UID: "u1"})
	require.NoError(t, err)

	sess := f.sessions.Get("s1")
	assert.Equal(t, session.StateReconciled, sess.State())
	assert.Equal(t, merged, sess.Cart())

	v, err := f.service.View(ctx, "s1", false)
	require.NoError(t, err)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, 3, v.Rows[0].Quantity)
	assert.Equal(t, 1, v.Rows[1].Quantity)

	f.local.AssertExpectations(t)
	f.remote.AssertExpectations(t)
}

func TestCartService_SignIn_RemoteReadFailureIsEmpty(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	local := model.Cart{{ID: "1", Name: "Tea", Quantity: 1}}

	f.local.On("ReadCart", ctx, "s1").Return(local, nil)
	f.remote.On("ReadCart", ctx, "u1").Return(nil, errors.New("unavailable"))
	f.local.On("WriteCart", ctx, "s1", local).Return(nil)

	err := f.service.OnAuthStateChanged(ctx, "s1", &model.User{UID: "u1"})

	require.NoError(t, err)
	assert.Equal(t, local, f.sessions.Get("s1").Cart())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RemoteSyncFailures.WithLabelValues("read")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RemoteSyncFailures.WithLabelValues("write_skipped")))

	// The unread remote cart is left as it was.
	f.remote.AssertNotCalled(t, "WriteCart", mock.Anything, mock.Anything, mock.Anything)
	f.local.AssertExpectations(t)
}

func TestCartService_SignIn_RepeatedForSameUserIsNoop(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	local := model.Cart{{ID: "1", Name: "Tea", Quantity: 1}}
	remote := model.Cart{{ID: "1", Name: "Tea", Quantity: 1}}
	merged := model.Cart{{ID: "1", Name: "Tea", Quantity: 2}}

	f.local.On("ReadCart", ctx, "s1").Return(local, nil).Once()
	f.remote.On("ReadCart", ctx, "u1").Return(remote, nil).Once()
	f.remote.On("WriteCart", ctx, "u1", merged).Return(nil).Once()
	f.local.On("WriteCart", ctx, "s1", merged).Return(nil).Once()

	for i := 0; i < 3; i++ {
		require.NoError(t, f.service.OnAuthStateChanged(ctx, "s1", &model.User{UID: "u1"}))
	}

	sess := f.sessions.Get("s1")
	assert.Equal(t, session.StateReconciled, sess.State())
	assert.Equal(t, merged, sess.Cart())

	v, err := f.service.View(ctx, "s1", false)
	require.NoError(t, err)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, 2, v.Rows[0].Quantity)

	f.remote.AssertNumberOfCalls(t, "ReadCart", 1)
	f.remote.AssertNumberOfCalls(t, "WriteCart", 1)
	f.local.AssertNumberOfCalls(t, "WriteCart", 1)
}

func TestCartService_SignIn_DifferentUserSignsOutFirst(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	sess := f.sessions.Get("s1")
	require.NoError(t, sess.BeginSignIn(&model.User{UID: "u1"}))
	sess.SetCart(model.Cart{{ID: "1", Name: "Tea", Quantity: 2}})
	require.NoError(t, sess.FinishSignIn())

	stored := model.Cart{{ID: "1", Name: "Tea", Quantity: 2}}
	remoteB := model.Cart{{ID: "2", Name: "Coffee", Quantity: 1}}

	f.local.On("ReadCart", ctx, "s1").Return(stored, nil)
	f.remote.On("ReadCart", ctx, "u2").Return(remoteB, nil).Once()
	f.remote.On("WriteCart", ctx, "u2", mock.Anything).Return(nil).Once()
	f.local.On("WriteCart", ctx, "s1", mock.Anything).Return(nil).Once()

	require.NoError(t, f.service.OnAuthStateChanged(ctx, "s1", &model.User{UID: "u2"}))

	assert.Equal(t, session.StateReconciled, sess.State())
	assert.Equal(t, "u2", sess.User().UID)
	assert.ElementsMatch(t, model.Cart{
		{ID: "1", Name: "Tea", Quantity: 2},
		{ID: "2", Name: "Coffee", Quantity: 1},
	}, sess.Cart())

	// Sign-out reads the local cart, then the new sign-in reads it again.
	f.local.AssertNumberOfCalls(t, "ReadCart", 2)
	f.remote.AssertNotCalled(t, "ReadCart", mock.Anything, "u1")
	f.remote.AssertNotCalled(t, "WriteCart", mock.Anything, "u1", mock.Anything)
	f.remote.AssertExpectations(t)
}

func TestCartService_SignIn_WriteFailuresAreNotSurfaced(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	remote := model.Cart{{ID: "2", Name: "Coffee", Quantity: 1}}

	f.local.On("ReadCart", ctx, "s1").Return(model.Cart{}, nil)
	f.remote.On("ReadCart", ctx, "u1").Return(remote, nil)
	f.remote.On("WriteCart", ctx, "u1", remote).Return(errors.New("permission denied"))
	f.local.On("WriteCart", ctx, "s1", remote).Return(errors.New("redis down"))

	err := f.service.OnAuthStateChanged(ctx, "s1", &model.User{UID: "u1"})

	require.NoError(t, err)
	sess := f.sessions.Get("s1")
	assert.Equal(t, remote, sess.Cart())
	assert.Equal(t, session.StateReconciled, sess.State())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RemoteSyncFailures.WithLabelValues("write")))
}

func TestCartService_SignIn_LocalReadFailureUsesMemory(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	inMemory := model.Cart{{ID: "1", Name: "Tea", Quantity: 4}}
	f.sessions.Get("s1").SetCart(inMemory)

	f.local.On("ReadCart", ctx, "s1").Return(nil, errors.New("redis down"))
	f.remote.On("ReadCart", ctx, "u1").Return(model.Cart{}, nil)
	f.remote.On("WriteCart", ctx, "u1", inMemory).Return(nil)
	f.local.On("WriteCart", ctx, "s1", inMemory).Return(nil)

	err := f.service.OnAuthStateChanged(ctx, "s1", &model.User{UID: "u1"})

	require.NoError(t, err)
	assert.Equal(t, inMemory, f.sessions.Get("s1").Cart())
}

func TestCartService_SignIn_CountsDroppedItems(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	local := model.Cart{{Quantity: 1}, {ID: "1", Name: "Tea", Quantity: 1}}
	expected := model.Cart{{ID: "1", Name: "Tea", Quantity: 1}}

	f.local.On("ReadCart", ctx, "s1").Return(local, nil)
	f.remote.On("ReadCart", ctx, "u1").Return(model.Cart{{Price: model.Price{NewPrice: decimal.NewFromInt(5)}}}, nil)
	f.remote.On("WriteCart", ctx, "u1", expected).Return(nil)
	f.local.On("WriteCart", ctx, "s1", expected).Return(nil)

	require.NoError(t, f.service.OnAuthStateChanged(ctx, "s1", &model.User{UID: "u1"}))

	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.MergeDroppedItems))
}

func TestCartService_SignOut_UsesLocalOnly(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	sess := f.sessions.Get("s1")
	require.NoError(t, sess.BeginSignIn(&model.User{UID: "u1"}))
	require.NoError(t, sess.FinishSignIn())

	stored := model.Cart{{ID: "1", Name: "Tea", Quantity: 1}}
	f.local.On("ReadCart", ctx, "s1").Return(stored, nil)
	f.local.On("WriteCart", ctx, "s1", model.Cart{}).Return(nil)

	require.NoError(t, f.service.OnAuthStateChanged(ctx, "s1", nil))
	assert.Equal(t, session.StateAnonymous, sess.State())
	assert.Nil(t, sess.User())
	assert.Equal(t, stored, sess.Cart())

	// Removal after sign-out never touches the remote store.
	_, err := f.service.RemoveItem(ctx, "s1", "1")
	require.NoError(t, err)

	f.remote.AssertNotCalled(t, "WriteCart", mock.Anything, mock.Anything, mock.Anything)
	f.remote.AssertNotCalled(t, "ReadCart", mock.Anything, mock.Anything)
}

func TestCartService_SignOut_LocalReadFailureKeepsMemory(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	inMemory := model.Cart{{ID: "1", Quantity: 1}}
	f.sessions.Get("s1").SetCart(inMemory)
	f.local.On("ReadCart", ctx, "s1").Return(nil, errors.New("redis down"))

	require.NoError(t, f.service.OnAuthStateChanged(ctx, "s1", nil))
	assert.Equal(t, inMemory, f.sessions.Get("s1").Cart())
}

func TestCartService_AddItem(t *testing.T) {
	tests := []struct {
		name          string
		req           *model.AddItemRequest
		expectedErr   error
		expectedQty   int
		expectedTotal int64
	}{
		{
			name:          "Add new product",
			req:           &model.AddItemRequest{ProductID: "10", Quantity: 2},
			expectedQty:   2,
			expectedTotal: 700,
		},
		{
			name:          "Missing quantity defaults to one",
			req:           &model.AddItemRequest{ProductID: "11"},
			expectedQty:   1,
			expectedTotal: 1800,
		},
		{
			name:        "Negative quantity",
			req:         &model.AddItemRequest{ProductID: "10", Quantity: -1},
			expectedErr: model.ErrInvalidQuantity,
		},
		{
			name:        "Unknown product",
			req:         &model.AddItemRequest{ProductID: "404", Quantity: 1},
			expectedErr: model.ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCartFixture()
			ctx := context.Background()

			f.local.On("ReadCart", ctx, "s1").Return(model.Cart{}, nil)
			f.local.On("WriteCart", ctx, "s1", mock.AnythingOfType("model.Cart")).Return(nil)

			v, err := f.service.AddItem(ctx, "s1", tt.req)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, v)
				f.local.AssertNotCalled(t, "WriteCart", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			require.Len(t, v.Rows, 1)
			assert.Equal(t, tt.expectedQty, v.Rows[0].Quantity)
			assert.Equal(t, tt.expectedTotal, v.TotalBDT)
			assert.Equal(t, 1, v.Badge)
		})
	}
}

func TestCartService_AddItem_SumsExistingEntry(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	f.local.On("ReadCart", ctx, "s1").Return(model.Cart{{ID: "10", Name: "Mango Pickle", Quantity: 1}}, nil)
	f.local.On("WriteCart", ctx, "s1", mock.AnythingOfType("model.Cart")).Return(nil)

	v, err := f.service.AddItem(ctx, "s1", &model.AddItemRequest{ProductID: "10", Quantity: 2})

	require.NoError(t, err)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, 3, v.Rows[0].Quantity)
	assert.Equal(t, "৳350", v.Rows[0].UnitPrice)
}

func TestCartService_AddItem_Concurrent(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	f.local.On("ReadCart", ctx, "s1").Return(model.Cart{}, nil).Once()
	f.local.On("WriteCart", ctx, "s1", mock.AnythingOfType("model.Cart")).Return(nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.AddItem(ctx, "s1", &model.AddItemRequest{ProductID: "10", Quantity: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	v, err := f.service.View(ctx, "s1", false)
	require.NoError(t, err)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, 10, v.Rows[0].Quantity)
}

func TestCartService_RemoveItem_SignedIn(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	sess := f.sessions.Get("s1")
	require.NoError(t, sess.BeginSignIn(&model.User{UID: "u1"}))
	require.NoError(t, sess.FinishSignIn())
	sess.SetCart(model.Cart{
		{ID: "1", Name: "Tea", Quantity: 1},
		{ID: "2", Name: "Coffee", Quantity: 1},
	})

	remaining := model.Cart{{ID: "2", Name: "Coffee", Quantity: 1}}
	f.local.On("WriteCart", ctx, "s1", remaining).Return(nil)
	f.remote.On("WriteCart", ctx, "u1", remaining).Return(errors.New("offline"))

	v, err := f.service.RemoveItem(ctx, "s1", "1")

	require.NoError(t, err)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "2", v.Rows[0].Key)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RemoteSyncFailures.WithLabelValues("write")))
	f.local.AssertExpectations(t)
	f.remote.AssertExpectations(t)
}

func TestCartService_RemoveItem_AbsentKey(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	f.local.On("ReadCart", ctx, "s1").Return(model.Cart{{ID: "1", Quantity: 1}}, nil)

	v, err := f.service.RemoveItem(ctx, "s1", "missing")

	require.NoError(t, err)
	assert.Len(t, v.Rows, 1)
	f.local.AssertNotCalled(t, "WriteCart", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_RemoveItem_LocalWriteFails(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	f.local.On("ReadCart", ctx, "s1").Return(model.Cart{{ID: "1", Quantity: 1}}, nil)
	f.local.On("WriteCart", ctx, "s1", model.Cart{}).Return(errors.New("redis down"))

	v, err := f.service.RemoveItem(ctx, "s1", "1")

	assert.Error(t, err)
	assert.Nil(t, v)
}

func TestCartService_SelectItem(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	f.local.On("ReadCart", ctx, "s1").Return(model.Cart{{ID: "7", Name: "Tea", Quantity: 1}}, nil)
	f.local.On("SetSelectedProduct", ctx, "s1", model.ItemID("7")).Return(nil)

	result, err := f.service.SelectItem(ctx, "s1", "7")
	require.NoError(t, err)
	assert.Equal(t, model.ItemID("7"), result.ProductID)
	assert.Equal(t, "/single-product", result.Redirect)

	_, err = f.service.SelectItem(ctx, "s1", "8")
	assert.ErrorIs(t, err, model.ErrItemNotFound)

	f.local.AssertExpectations(t)
}
