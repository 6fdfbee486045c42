package service

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"go-wishlist-app/internal/core/domain/auth"
	"go-wishlist-app/internal/core/domain/catalog"
	"go-wishlist-app/internal/core/domain/wishlist"

	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ItemIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGateway) Insert(ctx context.Context, userID, itemID string) error {
	args := m.Called(ctx, userID, itemID)
	return args.Error(0)
}

func (m *MockGateway) Delete(ctx context.Context, userID, itemID string) error {
	args := m.Called(ctx, userID, itemID)
	return args.Error(0)
}

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) Save(ctx context.Context, item catalog.CatalogItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCatalogRepository) FindByID(ctx context.Context, id string) (catalog.CatalogItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.CatalogItem), args.Error(1)
}

func (m *MockCatalogRepository) FindAll(ctx context.Context) (iter.Seq2[catalog.CatalogItem, error], error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(iter.Seq2[catalog.CatalogItem, error]), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) AddToSet(ctx context.Context, id string, score float64) error {
	args := m.Called(ctx, id, score)
	return args.Error(0)
}

func (m *MockCache) Set(ctx context.Context, id string, data []byte) error {
	args := m.Called(ctx, id, data)
	return args.Error(0)
}

func (m *MockCache) GetBatch(ctx context.Context, ids []string) (map[string][]byte, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]byte), args.Error(1)
}

func (m *MockCache) GetIdsFromSet(ctx context.Context, start, stop int64) ([]string, error) {
	args := m.Called(ctx, start, stop)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCache) Remove(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCache) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event wishlist.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (auth.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(auth.User), args.Error(1)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, session auth.Session, ttl time.Duration) error {
	args := m.Called(ctx, session, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) Lookup(ctx context.Context, sessionID string) (auth.Session, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(auth.Session), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// Helper to silence logs
type testWriter struct{}

func (tw *testWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(&testWriter{}, nil))
}

func userCtx(userID string) context.Context {
	return auth.WithSession(context.Background(), auth.Session{ID: "sid-" + userID, UserID: userID})
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
