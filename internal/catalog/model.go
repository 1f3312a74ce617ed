package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AllCategories is the category sentinel meaning "no category filter".
const AllCategories = "All"

// Item is a purchasable catalog entry. IsFavorite is computed per user at
// read time and never persisted.
type Item struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Rating      float64         `json:"rating"`
	Category    string          `json:"category"`
	IsFavorite  bool            `json:"is_favorite"`
}

// SortOption orders the derived list.
type SortOption string

const (
	SortNone   SortOption = ""
	SortPrice  SortOption = "Price"
	SortRating SortOption = "Rating"
)

// ParseSort maps user input onto a SortOption. Unknown values mean no sort.
func ParseSort(s string) SortOption {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "price":
		return SortPrice
	case "rating":
		return SortRating
	default:
		return SortNone
	}
}

// Filter is the user-controlled part of the derivation input.
type Filter struct {
	Category string     `json:"category"`
	Search   string     `json:"search"`
	Sort     SortOption `json:"sort"`
}

// DefaultFilter shows everything in catalog order.
func DefaultFilter() Filter {
	return Filter{Category: AllCategories}
}

// Normalize fills the category sentinel and canonicalises the sort option.
func (f Filter) Normalize() Filter {
	if strings.TrimSpace(f.Category) == "" {
		f.Category = AllCategories
	}
	f.Sort = ParseSort(string(f.Sort))
	return f
}

// categoryActive reports whether the category stage filters anything.
func (f Filter) categoryActive() bool {
	c := strings.TrimSpace(f.Category)
	return c != "" && !strings.EqualFold(c, AllCategories)
}

func (f Filter) searchActive() bool {
	return strings.TrimSpace(f.Search) != ""
}

// Constrained reports whether a category or search constraint is in effect.
func (f Filter) Constrained() bool {
	return f.categoryActive() || f.searchActive()
}
