package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id, name, category string, price string, rating float64) Item {
	return Item{
		ID:       id,
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Rating:   rating,
	}
}

func sampleCatalog() []Item {
	return []Item{
		item("1", "Veggie Deluxe", "Veg", "4", 4.5),
		item("2", "Bacon Bomb", "NonVeg", "6", 3.8),
		item("3", "Paneer Crunch", "veg", "5", 4.9),
		item("4", "Chicken Classic", "NonVeg", "4", 4.1),
		item("5", "Cheesy Fries", "Sides", "2.5", 4.1),
	}
}

func ids(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestDerive_DefaultsAreIdentity(t *testing.T) {
	c := sampleCatalog()

	out := Derive(c, DefaultFilter(), nil)

	assert.Equal(t, c, out)
}

func TestDerive_VegScenario(t *testing.T) {
	c := []Item{
		item("1", "Veggie Deluxe", "Veg", "4", 4.5),
		item("2", "Bacon Bomb", "NonVeg", "6", 3.8),
	}

	out := Derive(c, Filter{Category: "Veg"}, nil)

	require.Len(t, out, 1)
	assert.Equal(t, "1", out[0].ID)
}

func TestDerive_CategoryIsCaseInsensitiveAndComplete(t *testing.T) {
	c := sampleCatalog()

	out := Derive(c, Filter{Category: "VEG"}, nil)

	assert.Equal(t, []string{"1", "3"}, ids(out))
	for _, it := range out {
		assert.True(t, strings.EqualFold(it.Category, "veg"))
	}
}

func TestDerive_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	c := sampleCatalog()

	assert.Equal(t, []string{"2"}, ids(Derive(c, Filter{Search: " b"}, nil)))
	assert.Empty(t, Derive(c, Filter{Search: "  b"}, nil))

	out := Derive(c, Filter{Search: "CH"}, nil)
	assert.Equal(t, []string{"3", "4", "5"}, ids(out))

	out = Derive(c, Filter{Search: "   "}, nil)
	assert.Equal(t, ids(c), ids(out))
}

func TestDerive_SearchKeepsSurroundingSpaces(t *testing.T) {
	c := []Item{
		item("1", "Bacon Bomb", "NonVeg", "6", 3.8),
		item("2", "Veggie Deluxe", "Veg", "4", 4.5),
		item("3", "Double Bacon", "NonVeg", "7", 4.0),
	}

	out := Derive(c, Filter{Search: " bacon"}, nil)

	assert.Equal(t, []string{"3"}, ids(out))
	for _, it := range out {
		assert.Contains(t, strings.ToLower(it.Name), " bacon")
	}
}

func TestDerive_CategoryAppliesBeforeSearch(t *testing.T) {
	out := Derive(sampleCatalog(), Filter{Category: "NonVeg", Search: "c"}, nil)

	assert.Equal(t, []string{"2", "4"}, ids(out))
}

func TestDerive_SortByPriceIsStableAscending(t *testing.T) {
	out := Derive(sampleCatalog(), Filter{Sort: SortPrice}, nil)

	// items 1 and 4 share a price and keep their source order
	assert.Equal(t, []string{"5", "1", "4", "3", "2"}, ids(out))
	for i := 1; i < len(out); i++ {
		assert.True(t, out[i-1].Price.LessThanOrEqual(out[i].Price))
	}
}

func TestDerive_SortByRatingIsStableDescending(t *testing.T) {
	out := Derive(sampleCatalog(), Filter{Sort: "rating"}, nil)

	assert.Equal(t, []string{"3", "1", "4", "5", "2"}, ids(out))
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].Rating, out[i].Rating)
	}
}

func TestDerive_FavoritesOnlyAnnotate(t *testing.T) {
	c := sampleCatalog()
	favorites := map[string]bool{"2": true, "5": true, "missing": true}

	plain := Derive(c, Filter{Sort: SortPrice}, nil)
	annotated := Derive(c, Filter{Sort: SortPrice}, favorites)

	require.Equal(t, ids(plain), ids(annotated))
	for i, it := range annotated {
		assert.Equal(t, favorites[it.ID], it.IsFavorite)

		it.IsFavorite = false
		assert.Equal(t, plain[i], it)
	}
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	c := sampleCatalog()
	before := sampleCatalog()

	Derive(c, Filter{Category: "veg", Sort: SortRating}, map[string]bool{"1": true})

	assert.Equal(t, before, c)
}

func TestDerive_IsDeterministic(t *testing.T) {
	f := Filter{Category: "NonVeg", Search: "o", Sort: SortRating}
	favorites := map[string]bool{"4": true}

	assert.Equal(t,
		Derive(sampleCatalog(), f, favorites),
		Derive(sampleCatalog(), f, favorites),
	)
}

func TestCategories(t *testing.T) {
	got := Categories(sampleCatalog())

	assert.Equal(t, []string{"All", "Veg", "NonVeg", "Sides"}, got)
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortPrice, ParseSort(" PRICE "))
	assert.Equal(t, SortRating, ParseSort("rating"))
	assert.Equal(t, SortNone, ParseSort("popularity"))
}
