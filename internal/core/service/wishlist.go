package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go-wishlist-app/internal/core/domain/catalog"
	"go-wishlist-app/internal/core/domain/wishlist"
	"go-wishlist-app/internal/core/ports"

	"github.com/google/uuid"
)

// WishlistService hands every request of a user the same WishlistStore.
type WishlistService struct {
	gateway   ports.WishlistGateway
	session   ports.SessionProvider
	catalog   ports.CatalogService
	publisher ports.EventPublisher
	logger    *slog.Logger
	opts      StoreOptions

	mu     sync.Mutex
	stores map[string]*WishlistStore
}

// NewWishlistService builds the registry. publisher may be nil.
func NewWishlistService(
	gateway ports.WishlistGateway,
	session ports.SessionProvider,
	catalog ports.CatalogService,
	publisher ports.EventPublisher,
	logger *slog.Logger,
	opts StoreOptions,
) *WishlistService {
	return &WishlistService{
		gateway:   gateway,
		session:   session,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
		stores:    make(map[string]*WishlistStore),
	}
}

// Store returns the store of the signed in user, hydrating it on first use.
// A failed hydrate is logged and retried on the next call.
func (s *WishlistService) Store(ctx context.Context) (*WishlistStore, error) {
	userID, ok := s.session.CurrentUser(ctx)
	if !ok {
		return nil, wishlist.ErrUnauthenticated
	}

	s.mu.Lock()
	store, found := s.stores[userID]
	if !found {
		store = NewWishlistStore(s.gateway, s.session, s.logger, s.opts)
		s.stores[userID] = store
	}
	s.mu.Unlock()

	if err := store.SyncSession(ctx); err != nil {
		s.logger.WarnContext(ctx, "wishlist not hydrated", "user_id", userID, "error", err)
	}
	return store, nil
}

func (s *WishlistService) IsMember(ctx context.Context, itemID string) (bool, error) {
	store, err := s.Store(ctx)
	if err != nil {
		return false, err
	}
	return store.IsMember(itemID), nil
}

func (s *WishlistService) Add(ctx context.Context, itemID string) error {
	return s.mutate(ctx, transition{itemID: itemID, member: true})
}

func (s *WishlistService) Remove(ctx context.Context, itemID string) error {
	return s.mutate(ctx, transition{itemID: itemID, member: false})
}

// mutate publishes an event once the remote store confirmed a change.
func (s *WishlistService) mutate(ctx context.Context, t transition) error {
	store, err := s.Store(ctx)
	if err != nil {
		return err
	}
	changed, err := store.mutate(ctx, t)
	if err != nil || !changed {
		return err
	}

	eventType := wishlist.EventItemRemoved
	if t.member {
		eventType = wishlist.EventItemAdded
	}
	userID, _ := s.session.CurrentUser(ctx)
	s.publish(ctx, wishlist.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		ItemID:     t.itemID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

func (s *WishlistService) publish(ctx context.Context, event wishlist.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish wishlist event", "type", event.Type, "item_id", event.ItemID, "error", err)
	}
}

// List returns the member ids, sorted.
func (s *WishlistService) List(ctx context.Context) ([]string, error) {
	store, err := s.Store(ctx)
	if err != nil {
		return nil, err
	}
	return store.Members(), nil
}

// ListItems returns the catalog items in the wishlist, in catalog order.
// Members missing from the catalog are skipped.
func (s *WishlistService) ListItems(ctx context.Context) ([]catalog.CatalogItem, error) {
	store, err := s.Store(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.catalog.List(ctx, catalog.FacetSelection{})
	if err != nil {
		return nil, err
	}
	out := make([]catalog.CatalogItem, 0)
	for _, item := range items {
		if store.IsMember(item.ID) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Refresh reloads the wishlist from the remote store.
func (s *WishlistService) Refresh(ctx context.Context) error {
	store, err := s.Store(ctx)
	if err != nil {
		return err
	}
	return store.Hydrate(ctx)
}

func (s *WishlistService) Subscribe(ctx context.Context, buffer int) (ports.Subscription, error) {
	store, err := s.Store(ctx)
	if err != nil {
		return nil, err
	}
	return store.Subscribe(buffer), nil
}

// SignOut clears and forgets the user's store and ends its subscriptions.
func (s *WishlistService) SignOut(userID string) {
	s.mu.Lock()
	store, ok := s.stores[userID]
	delete(s.stores, userID)
	s.mu.Unlock()
	if !ok {
		return
	}
	store.Clear()
	store.closeObservers()
	s.logger.Info("wishlist signed out", "user_id", userID)
}
