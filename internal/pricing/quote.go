package pricing

import "github.com/shopspring/decimal"

// AddOnRef names one add-on.
type AddOnRef struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
}

// Line is one selected add-on and the price it contributed.
type Line struct {
	AddOnRef
	Price  decimal.Decimal `json:"price"`
	Priced bool            `json:"priced"`
}

// Quote is the breakdown of a final price.
type Quote struct {
	Base    decimal.Decimal `json:"base"`
	Lines   []Line          `json:"lines"`
	Unit    decimal.Decimal `json:"unit"`
	Portion int             `json:"portion"`
	Total   decimal.Decimal `json:"total"`
	// Unpriced lists selected add-ons the book had no price for; each
	// contributed zero.
	Unpriced []AddOnRef `json:"unpriced"`
}

// FinalPrice computes (base + Σ toppings + Σ sides) × portion.
func FinalPrice(base decimal.Decimal, sel *Selection, book PriceBook) Quote {
	q := Quote{
		Base:     base,
		Lines:    []Line{},
		Portion:  max(sel.Portion(), 1),
		Unpriced: []AddOnRef{},
	}

	unit := base
	add := func(kind Kind, names []string) {
		for _, name := range names {
			price, ok := book.Lookup(kind, name)
			ref := AddOnRef{Kind: kind, Name: name}
			if !ok {
				price = decimal.Zero
				q.Unpriced = append(q.Unpriced, ref)
			}
			q.Lines = append(q.Lines, Line{AddOnRef: ref, Price: price, Priced: ok})
			unit = unit.Add(price)
		}
	}
	add(KindTopping, sel.Toppings())
	add(KindSide, sel.Sides())

	q.Unit = unit
	q.Total = unit.Mul(decimal.NewFromInt(int64(q.Portion)))
	return q
}

// UnpricedByKind counts Unpriced entries per kind.
func (q Quote) UnpricedByKind() map[string]int {
	counts := make(map[string]int)
	for _, ref := range q.Unpriced {
		counts[string(ref.Kind)]++
	}
	return counts
}
