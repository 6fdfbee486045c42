package catalog

import (
	"net/url"
	"slices"
	"strings"
)

// FacetSelection holds the selected values per facet. An empty facet
// imposes no constraint.
type FacetSelection struct {
	Genders    []Gender    `json:"genders,omitempty"`
	Categories []Category  `json:"categories,omitempty"`
	Colors     []Color     `json:"colors,omitempty"`
	PriceBands []PriceBand `json:"price_bands,omitempty"`
}

func (s FacetSelection) IsEmpty() bool {
	return len(s.Genders) == 0 && len(s.Categories) == 0 && len(s.Colors) == 0 && len(s.PriceBands) == 0
}

// Matches reports whether item satisfies every non-empty facet. Values
// inside one facet are alternatives.
func (s FacetSelection) Matches(item CatalogItem) bool {
	if len(s.Genders) > 0 && !slices.Contains(s.Genders, item.Gender) {
		return false
	}
	if len(s.Categories) > 0 && !slices.Contains(s.Categories, item.Category) {
		return false
	}
	if len(s.Colors) > 0 && !slices.Contains(s.Colors, item.Color) {
		return false
	}
	if len(s.PriceBands) > 0 && !slices.ContainsFunc(s.PriceBands, func(b PriceBand) bool {
		return b.Contains(item.Price)
	}) {
		return false
	}
	return true
}

// Filter returns the items matching sel in their original order. An empty
// selection returns items as is.
func Filter(items []CatalogItem, sel FacetSelection) []CatalogItem {
	if sel.IsEmpty() {
		return items
	}
	out := make([]CatalogItem, 0, len(items))
	for _, item := range items {
		if sel.Matches(item) {
			out = append(out, item)
		}
	}
	return out
}

// ParseSelection reads gender, category, color and price from query
// parameters. Each may repeat or hold a comma separated list.
func ParseSelection(q url.Values) (FacetSelection, error) {
	var sel FacetSelection
	for _, v := range splitValues(q["gender"]) {
		g, err := ParseGender(v)
		if err != nil {
			return FacetSelection{}, err
		}
		sel.Genders = appendUnique(sel.Genders, g)
	}
	for _, v := range splitValues(q["category"]) {
		c, err := ParseCategory(v)
		if err != nil {
			return FacetSelection{}, err
		}
		sel.Categories = appendUnique(sel.Categories, c)
	}
	for _, v := range splitValues(q["color"]) {
		c, err := ParseColor(v)
		if err != nil {
			return FacetSelection{}, err
		}
		sel.Colors = appendUnique(sel.Colors, c)
	}
	for _, v := range splitValues(q["price"]) {
		b, err := ParsePriceBand(v)
		if err != nil {
			return FacetSelection{}, err
		}
		sel.PriceBands = append(sel.PriceBands, b)
	}
	return sel, nil
}

func splitValues(raw []string) []string {
	var out []string
	for _, r := range raw {
		for part := range strings.SplitSeq(r, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func appendUnique[T comparable](s []T, v T) []T {
	if slices.Contains(s, v) {
		return s
	}
	return append(s, v)
}
