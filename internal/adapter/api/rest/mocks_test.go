package rest

import (
	"context"
	"io"
	"log/slog"

	"go-wishlist-app/internal/core/domain/auth"
	"go-wishlist-app/internal/core/domain/catalog"
	"go-wishlist-app/internal/core/domain/wishlist"
	"go-wishlist-app/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) List(ctx context.Context, sel catalog.FacetSelection) ([]catalog.CatalogItem, error) {
	args := m.Called(ctx, sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.CatalogItem), args.Error(1)
}

func (m *MockCatalogService) Get(ctx context.Context, id string) (catalog.CatalogItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.CatalogItem), args.Error(1)
}

func (m *MockCatalogService) Create(ctx context.Context, item catalog.CatalogItem) error {
	return m.Called(ctx, item).Error(0)
}

type MockWishlistService struct {
	mock.Mock
}

func (m *MockWishlistService) IsMember(ctx context.Context, itemID string) (bool, error) {
	args := m.Called(ctx, itemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWishlistService) Add(ctx context.Context, itemID string) error {
	return m.Called(ctx, itemID).Error(0)
}

func (m *MockWishlistService) Remove(ctx context.Context, itemID string) error {
	return m.Called(ctx, itemID).Error(0)
}

func (m *MockWishlistService) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockWishlistService) ListItems(ctx context.Context) ([]catalog.CatalogItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.CatalogItem), args.Error(1)
}

func (m *MockWishlistService) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockWishlistService) Subscribe(ctx context.Context, buffer int) (ports.Subscription, error) {
	args := m.Called(ctx, buffer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.Subscription), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignUp(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, sessionID, userID string) error {
	return m.Called(ctx, sessionID, userID).Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (auth.Session, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(auth.Session), args.Error(1)
}

// fakeSubscription replays a fixed list of changes and then closes.
type fakeSubscription struct {
	ch     chan wishlist.Change
	closed bool
}

func newFakeSubscription(changes ...wishlist.Change) *fakeSubscription {
	ch := make(chan wishlist.Change, len(changes))
	for _, c := range changes {
		ch <- c
	}
	close(ch)
	return &fakeSubscription{ch: ch}
}

func (f *fakeSubscription) C() <-chan wishlist.Change { return f.ch }
func (f *fakeSubscription) Close()                    { f.closed = true }
