package pricing

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/docstore"
)

// PriceBook holds the priced add-ons by name. It may not cover every name
// a selection refers to.
type PriceBook struct {
	Toppings map[string]decimal.Decimal `json:"toppings"`
	Sides    map[string]decimal.Decimal `json:"sides"`
}

func (b PriceBook) prices(kind Kind) map[string]decimal.Decimal {
	if kind == KindSide {
		return b.Sides
	}
	return b.Toppings
}

// Lookup returns the price of an add-on and whether the book has one.
func (b PriceBook) Lookup(kind Kind, name string) (decimal.Decimal, bool) {
	price, ok := b.prices(kind)[name]
	return price, ok
}

// PriceOrZero returns the add-on price, or zero when the book has no entry.
// Unknown add-ons are free.
func (b PriceBook) PriceOrZero(kind Kind, name string) decimal.Decimal {
	price, ok := b.Lookup(kind, name)
	if !ok {
		return decimal.Zero
	}
	return price
}

// DecodePrices reads a name→price snapshot. Entries that are not a
// non-negative number are left out, so they price as unknown.
func DecodePrices(snap docstore.Snapshot) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, snap.Len())
	for _, c := range snap.Children {
		var price decimal.Decimal
		if err := json.Unmarshal(c.Value, &price); err != nil {
			continue
		}
		if price.IsNegative() {
			continue
		}
		prices[c.Key] = price
	}
	return prices
}
