package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

type Gender string

const (
	GenderMen    Gender = "Men"
	GenderWomen  Gender = "Women"
	GenderUnisex Gender = "Unisex"
)

var genders = []Gender{GenderMen, GenderWomen, GenderUnisex}

type Category string

const (
	CategoryShirt       Category = "Shirt"
	CategoryTShirt      Category = "T-Shirt"
	CategoryDress       Category = "Dress"
	CategoryPants       Category = "Pants"
	CategoryJeans       Category = "Jeans"
	CategorySkirt       Category = "Skirt"
	CategoryJacket      Category = "Jacket"
	CategoryHoodie      Category = "Hoodie"
	CategoryShoes       Category = "Shoes"
	CategoryAccessories Category = "Accessories"
)

var categories = []Category{
	CategoryShirt, CategoryTShirt, CategoryDress, CategoryPants, CategoryJeans,
	CategorySkirt, CategoryJacket, CategoryHoodie, CategoryShoes, CategoryAccessories,
}

type Color string

const (
	ColorBlack  Color = "Black"
	ColorWhite  Color = "White"
	ColorGrey   Color = "Grey"
	ColorRed    Color = "Red"
	ColorBlue   Color = "Blue"
	ColorGreen  Color = "Green"
	ColorYellow Color = "Yellow"
	ColorPink   Color = "Pink"
	ColorBrown  Color = "Brown"
	ColorBeige  Color = "Beige"
)

var colors = []Color{
	ColorBlack, ColorWhite, ColorGrey, ColorRed, ColorBlue,
	ColorGreen, ColorYellow, ColorPink, ColorBrown, ColorBeige,
}

func (g Gender) Valid() bool   { return slices.Contains(genders, g) }
func (c Category) Valid() bool { return slices.Contains(categories, c) }
func (c Color) Valid() bool    { return slices.Contains(colors, c) }

// ParseGender matches s case-insensitively against the known genders.
func ParseGender(s string) (Gender, error) {
	return parseEnum(genders, s, "gender")
}

func ParseCategory(s string) (Category, error) {
	return parseEnum(categories, s, "category")
}

func ParseColor(s string) (Color, error) {
	return parseEnum(colors, s, "color")
}

func parseEnum[T ~string](values []T, s, facet string) (T, error) {
	s = strings.TrimSpace(s)
	for _, v := range values {
		if strings.EqualFold(string(v), s) {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: unknown %s %q", ErrValidation, facet, s)
}

// PriceBand is the half-open range [Min, Max). A zero Max leaves the band
// open ended.
type PriceBand struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max,omitzero"`
}

func (b PriceBand) Contains(price decimal.Decimal) bool {
	if price.LessThan(b.Min) {
		return false
	}
	return b.Max.IsZero() || price.LessThan(b.Max)
}

// ParsePriceBand accepts "min-max", "min-" and "-max".
func ParsePriceBand(s string) (PriceBand, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return PriceBand{}, fmt.Errorf("%w: price band %q must look like min-max", ErrValidation, s)
	}

	var band PriceBand
	var err error
	if lo != "" {
		if band.Min, err = decimal.NewFromString(lo); err != nil {
			return PriceBand{}, fmt.Errorf("%w: price band min %q: %v", ErrValidation, lo, err)
		}
	}
	if hi != "" {
		if band.Max, err = decimal.NewFromString(hi); err != nil {
			return PriceBand{}, fmt.Errorf("%w: price band max %q: %v", ErrValidation, hi, err)
		}
	}
	if band.Min.IsNegative() || band.Max.IsNegative() {
		return PriceBand{}, fmt.Errorf("%w: price band %q cannot be negative", ErrValidation, s)
	}
	if !band.Max.IsZero() && band.Max.LessThanOrEqual(band.Min) {
		return PriceBand{}, fmt.Errorf("%w: price band %q is empty", ErrValidation, s)
	}
	return band, nil
}
