package catalog

import (
	"cmp"
	"slices"
	"strings"
)

// Derive computes the list to render from a raw catalog snapshot.
//
// Stages run in a fixed order: category filter, name search, stable sort,
// favorite annotation. A stage whose control input is at its default passes
// items through unchanged. The input slice is never modified; returned items
// are copies carrying IsFavorite = favorites[id].
func Derive(items []Item, f Filter, favorites map[string]bool) []Item {
	category := strings.TrimSpace(f.Category)
	// blank means no search; otherwise the text is matched as typed
	search := strings.ToLower(f.Search)

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if f.categoryActive() && !strings.EqualFold(strings.TrimSpace(it.Category), category) {
			continue
		}
		if f.searchActive() && !strings.Contains(strings.ToLower(it.Name), search) {
			continue
		}
		out = append(out, it)
	}

	switch ParseSort(string(f.Sort)) {
	case SortPrice:
		slices.SortStableFunc(out, func(a, b Item) int {
			return a.Price.Cmp(b.Price)
		})
	case SortRating:
		slices.SortStableFunc(out, func(a, b Item) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	}

	for i := range out {
		out[i].IsFavorite = favorites[out[i].ID]
	}
	return out
}

// Categories returns the distinct category labels in first-seen order,
// deduplicated case-insensitively, prefixed with AllCategories.
func Categories(items []Item) []string {
	seen := make(map[string]bool)
	out := []string{AllCategories}
	for _, it := range items {
		label := strings.TrimSpace(it.Category)
		key := strings.ToLower(label)
		if label == "" || seen[key] || strings.EqualFold(label, AllCategories) {
			continue
		}
		seen[key] = true
		out = append(out, label)
	}
	return out
}
