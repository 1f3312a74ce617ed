package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFinalPrice_BaconTimesTwo(t *testing.T) {
	book := PriceBook{Toppings: map[string]decimal.Decimal{"bacon": d("1.00")}}
	sel := SelectionOf([]string{"bacon"}, nil, 2)

	q := FinalPrice(d("5.00"), sel, book)

	assert.True(t, q.Total.Equal(d("12.00")), "total %s", q.Total)
	assert.True(t, q.Unit.Equal(d("6.00")))
	assert.Empty(t, q.Unpriced)
}

func TestFinalPrice_UnknownAddOnIsFreeButReported(t *testing.T) {
	sel := SelectionOf([]string{"unknown"}, []string{"mystery"}, 3)

	q := FinalPrice(d("4.50"), sel, PriceBook{})

	assert.True(t, q.Total.Equal(d("13.50")), "total %s", q.Total)
	assert.Equal(t, []AddOnRef{
		{Kind: KindTopping, Name: "unknown"},
		{Kind: KindSide, Name: "mystery"},
	}, q.Unpriced)
	assert.Equal(t, map[string]int{"toppings": 1, "sides": 1}, q.UnpricedByKind())
	for _, l := range q.Lines {
		assert.False(t, l.Priced)
		assert.True(t, l.Price.IsZero())
	}
}

func TestFinalPrice_SumsToppingsAndSides(t *testing.T) {
	book := PriceBook{
		Toppings: map[string]decimal.Decimal{"cheese": d("0.75"), "jalapeno": d("0.50")},
		Sides:    map[string]decimal.Decimal{"fries": d("2.25")},
	}
	sel := SelectionOf([]string{"jalapeno", "cheese"}, []string{"fries"}, 1)

	q := FinalPrice(d("6"), sel, book)

	assert.True(t, q.Total.Equal(d("9.50")), "total %s", q.Total)
	require.Len(t, q.Lines, 3)
	assert.Equal(t, "cheese", q.Lines[0].Name)
	assert.Equal(t, "jalapeno", q.Lines[1].Name)
	assert.Equal(t, KindSide, q.Lines[2].Kind)
}

func TestPriceBook_LookupContract(t *testing.T) {
	book := PriceBook{Sides: map[string]decimal.Decimal{"salad": d("3")}}

	price, ok := book.Lookup(KindSide, "salad")
	assert.True(t, ok)
	assert.True(t, price.Equal(d("3")))

	_, ok = book.Lookup(KindTopping, "salad")
	assert.False(t, ok)
	assert.True(t, book.PriceOrZero(KindTopping, "salad").IsZero())
}

func TestSelection_ToggleTwiceRestores(t *testing.T) {
	sel := SelectionOf([]string{"cheese"}, []string{"fries"}, 1)
	before := sel.Clone()

	assert.True(t, sel.ToggleTopping("bacon"))
	assert.False(t, sel.ToggleTopping("bacon"))
	assert.False(t, sel.ToggleSide("fries"))
	assert.True(t, sel.ToggleSide("fries"))

	assert.Equal(t, before.Toppings(), sel.Toppings())
	assert.Equal(t, before.Sides(), sel.Sides())
}

func TestSelection_PortionClamp(t *testing.T) {
	sel := NewSelection()

	assert.Equal(t, 1, sel.DecrementPortion())
	assert.Equal(t, 2, sel.IncrementPortion())
	assert.Equal(t, 3, sel.IncrementPortion())
	assert.Equal(t, 2, sel.DecrementPortion())
	assert.Equal(t, 1, sel.DecrementPortion())
	assert.Equal(t, 1, sel.DecrementPortion())
}

func TestSelectionOf_ClampsPortionAndDedupes(t *testing.T) {
	sel := SelectionOf([]string{"a", "a"}, nil, -4)

	assert.Equal(t, 1, sel.Portion())
	assert.Equal(t, []string{"a"}, sel.Toppings())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Side")
	require.NoError(t, err)
	assert.Equal(t, KindSide, k)

	_, err = ParseKind("drinks")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
