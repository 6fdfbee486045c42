package postgres

import (
	"context"
	"fmt"

	"go-wishlist-app/internal/core/domain/catalog"
)

// outfitReference is the default name of the wishlist.outfit_id foreign key.
const outfitReference = "wishlist_outfit_id_fkey"

// WishlistRepository is the remote wishlist store backed by PostgreSQL.
type WishlistRepository struct {
	db DBTX
}

func NewWishlistRepository(db DBTX) *WishlistRepository {
	return &WishlistRepository{db: db}
}

func (r *WishlistRepository) ItemIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT outfit_id FROM wishlist WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan wishlist row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist rows: %w", err)
	}
	return ids, nil
}

// Insert is idempotent.
func (r *WishlistRepository) Insert(ctx context.Context, userID, itemID string) error {
	query := `
		INSERT INTO wishlist (user_id, outfit_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, outfit_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, userID, itemID); err != nil {
		if isForeignKeyViolation(err, outfitReference) {
			return fmt.Errorf("add to wishlist: outfit %s: %w", itemID, catalog.ErrNotFound)
		}
		return fmt.Errorf("add to wishlist: %w", err)
	}
	return nil
}

// Delete succeeds when the pair is already gone.
func (r *WishlistRepository) Delete(ctx context.Context, userID, itemID string) error {
	query := `DELETE FROM wishlist WHERE user_id = $1 AND outfit_id = $2`
	if _, err := r.db.Exec(ctx, query, userID, itemID); err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	return nil
}
