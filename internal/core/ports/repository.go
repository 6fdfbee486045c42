package ports

import (
	"context"
	"iter"
	"time"

	"go-wishlist-app/internal/core/domain/auth"
	"go-wishlist-app/internal/core/domain/catalog"
)

// UserRepository defines storage for users.
type UserRepository interface {
	Save(ctx context.Context, user auth.User) error
	FindByEmail(ctx context.Context, email string) (auth.User, error)
}

// CatalogRepository defines storage for catalog items.
type CatalogRepository interface {
	Save(ctx context.Context, item catalog.CatalogItem) error

	// FindByID retrieves an item by its ID.
	FindByID(ctx context.Context, id string) (catalog.CatalogItem, error)

	// FindAll streams every item, newest first.
	FindAll(ctx context.Context) (iter.Seq2[catalog.CatalogItem, error], error)
}

// WishlistGateway is the remote store holding (user, item) pairs.
type WishlistGateway interface {
	// ItemIDs returns every item id in the user's wishlist.
	ItemIDs(ctx context.Context, userID string) ([]string, error)

	// Insert records the pair. Inserting an existing pair is not an error.
	Insert(ctx context.Context, userID, itemID string) error

	Delete(ctx context.Context, userID, itemID string) error
}

// SessionStore keeps live sessions so tokens can be revoked before expiry.
type SessionStore interface {
	Create(ctx context.Context, session auth.Session, ttl time.Duration) error
	Lookup(ctx context.Context, sessionID string) (auth.Session, error)
	Delete(ctx context.Context, sessionID string) error
}
