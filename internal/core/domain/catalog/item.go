package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrValidation is the sentinel error for validation failures.
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("item not found")
	ErrAlreadyExists = errors.New("item already exists")
)

// CatalogItem is one outfit of the swipe deck. Items are immutable once
// loaded; a catalog refresh replaces the whole snapshot.
type CatalogItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitzero"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image"`
	PurchaseLink string          `json:"purchase_link,omitzero"`
	Gender       Gender          `json:"gender,omitzero"`
	Category     Category        `json:"category,omitzero"`
	Color        Color           `json:"color,omitzero"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (i CatalogItem) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if i.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if i.Image == "" {
		return fmt.Errorf("%w: image is required", ErrValidation)
	}
	if i.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if i.Gender != "" && !i.Gender.Valid() {
		return fmt.Errorf("%w: unknown gender %q", ErrValidation, i.Gender)
	}
	if i.Category != "" && !i.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, i.Category)
	}
	if i.Color != "" && !i.Color.Valid() {
		return fmt.Errorf("%w: unknown color %q", ErrValidation, i.Color)
	}
	return nil
}
