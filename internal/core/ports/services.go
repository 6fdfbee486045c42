package ports

import (
	"context"

	"go-wishlist-app/internal/core/domain/auth"
	"go-wishlist-app/internal/core/domain/catalog"
	"go-wishlist-app/internal/core/domain/wishlist"
)

// SessionProvider resolves who is signed in for a request.
type SessionProvider interface {
	CurrentUser(ctx context.Context) (userID string, ok bool)
}

// Cache defines the catalog caching operations.
type Cache interface {
	// AddToSet adds an item ID with a score (creation time) to the sorted set.
	AddToSet(ctx context.Context, id string, score float64) error

	// Set holds the item data.
	Set(ctx context.Context, id string, data []byte) error

	// GetBatch retrieves multiple items by ID.
	GetBatch(ctx context.Context, ids []string) (map[string][]byte, error)

	// GetIdsFromSet returns IDs from the sorted set for a range, highest score first.
	GetIdsFromSet(ctx context.Context, start, stop int64) ([]string, error)

	// Remove removes an item from cache.
	Remove(ctx context.Context, id string) error

	// Reset drops the sorted set so the next read rebuilds it from storage.
	Reset(ctx context.Context) error
}

// EventPublisher sends confirmed wishlist changes to other services.
type EventPublisher interface {
	Publish(ctx context.Context, event wishlist.Event) error
	Close() error
}

// Subscription delivers wishlist changes until closed.
type Subscription interface {
	C() <-chan wishlist.Change
	Close()
}

// SignOutListener is told when a user's session ends.
type SignOutListener interface {
	SignOut(userID string)
}

// AuthService defines the authentication service.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (token string, err error)
	Logout(ctx context.Context, sessionID, userID string) error
	Authenticate(ctx context.Context, token string) (auth.Session, error)
}

// CatalogService serves the swipe deck.
type CatalogService interface {
	List(ctx context.Context, sel catalog.FacetSelection) ([]catalog.CatalogItem, error)
	Get(ctx context.Context, id string) (catalog.CatalogItem, error)
	Create(ctx context.Context, item catalog.CatalogItem) error
}

// WishlistService exposes the signed in user's wishlist.
type WishlistService interface {
	IsMember(ctx context.Context, itemID string) (bool, error)
	Add(ctx context.Context, itemID string) error
	Remove(ctx context.Context, itemID string) error
	List(ctx context.Context) ([]string, error)
	ListItems(ctx context.Context) ([]catalog.CatalogItem, error)
	Refresh(ctx context.Context) error
	Subscribe(ctx context.Context, buffer int) (Subscription, error)
}
