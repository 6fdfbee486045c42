package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go-wishlist-app/internal/core/domain/catalog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CatalogRepository implements ports.CatalogRepository using PostgreSQL.
type CatalogRepository struct {
	db DBTX
}

func NewCatalogRepository(db DBTX) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const outfitColumns = `id, name, description, price::text, image, purchase_link, gender, category, color, created_at`

// outfitRow mirrors a row of the outfits table.
type outfitRow struct {
	ID           string
	Name         string
	Description  string
	Price        string
	Image        string
	PurchaseLink string
	Gender       string
	Category     string
	Color        string
	CreatedAt    time.Time
}

func (o *outfitRow) fields() []any {
	return []any{&o.ID, &o.Name, &o.Description, &o.Price, &o.Image, &o.PurchaseLink, &o.Gender, &o.Category, &o.Color, &o.CreatedAt}
}

func (o outfitRow) toItem() (catalog.CatalogItem, error) {
	price, err := decimal.NewFromString(o.Price)
	if err != nil {
		return catalog.CatalogItem{}, fmt.Errorf("outfit %s has invalid price %q: %w", o.ID, o.Price, err)
	}
	return catalog.CatalogItem{
		ID:           o.ID,
		Name:         o.Name,
		Description:  o.Description,
		Price:        price,
		Image:        o.Image,
		PurchaseLink: o.PurchaseLink,
		Gender:       catalog.Gender(o.Gender),
		Category:     catalog.Category(o.Category),
		Color:        catalog.Color(o.Color),
		CreatedAt:    o.CreatedAt,
	}, nil
}

func (r *CatalogRepository) Save(ctx context.Context, item catalog.CatalogItem) error {
	query := `
		INSERT INTO outfits (id, name, description, price, image, purchase_link, gender, category, color, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		item.ID, item.Name, item.Description, item.Price.String(), item.Image, item.PurchaseLink,
		string(item.Gender), string(item.Category), string(item.Color), item.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", catalog.ErrAlreadyExists, item.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert outfit: %w", err)
	}
	return nil
}

func (r *CatalogRepository) FindByID(ctx context.Context, id string) (catalog.CatalogItem, error) {
	query := `SELECT ` + outfitColumns + ` FROM outfits WHERE id = $1`

	var row outfitRow
	err := r.db.QueryRow(ctx, query, id).Scan(row.fields()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.CatalogItem{}, fmt.Errorf("%w: %s", catalog.ErrNotFound, id)
	}
	if err != nil {
		return catalog.CatalogItem{}, fmt.Errorf("failed to fetch outfit: %w", err)
	}
	return row.toItem()
}

// FindAll streams every outfit, newest first.
func (r *CatalogRepository) FindAll(ctx context.Context) (iter.Seq2[catalog.CatalogItem, error], error) {
	query := `SELECT ` + outfitColumns + ` FROM outfits ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query outfits: %w", err)
	}

	return func(yield func(catalog.CatalogItem, error) bool) {
		defer rows.Close()

		for rows.Next() {
			var row outfitRow
			if err := rows.Scan(row.fields()...); err != nil {
				yield(catalog.CatalogItem{}, fmt.Errorf("failed to scan row: %w", err))
				return
			}
			item, err := row.toItem()
			if err != nil {
				yield(catalog.CatalogItem{}, err)
				return
			}
			if !yield(item, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(catalog.CatalogItem{}, fmt.Errorf("rows iteration error: %w", err))
		}
	}, nil
}
