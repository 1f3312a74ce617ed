package pricing

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/docstore"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/observable"
)

// CustomizerState is one published quote together with the selection it
// was computed from.
type CustomizerState struct {
	ItemID   string   `json:"item_id"`
	Toppings []string `json:"toppings"`
	Sides    []string `json:"sides"`
	Quote    Quote    `json:"quote"`
	// PricesLoaded is false until both add-on collections have arrived;
	// until then every add-on prices at zero.
	PricesLoaded bool   `json:"prices_loaded"`
	Error        string `json:"error,omitempty"`

	err error
}

func (s CustomizerState) Err() error {
	return s.err
}

// Customizer re-derives the quote for one item whenever the selection, the
// portion or either add-on collection changes.
type Customizer struct {
	mu       sync.Mutex
	itemID   string
	base     decimal.Decimal
	sel      *Selection
	book     PriceBook
	toppings bool
	sides    bool
	failed   error

	state *observable.Cell[CustomizerState]
}

func NewCustomizer(itemID string, base decimal.Decimal, sel *Selection) *Customizer {
	if sel == nil {
		sel = NewSelection()
	}
	c := &Customizer{
		itemID: itemID,
		base:   base,
		sel:    sel.Clone(),
		book: PriceBook{
			Toppings: map[string]decimal.Decimal{},
			Sides:    map[string]decimal.Decimal{},
		},
		state: observable.NewCell[CustomizerState](),
	}
	c.publishLocked()
	return c
}

func (c *Customizer) State() CustomizerState {
	st, _ := c.state.Get()
	return st
}

func (c *Customizer) Subscribe(ctx context.Context) *observable.Subscription[CustomizerState] {
	return c.state.Subscribe(ctx)
}

func (c *Customizer) update(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failed != nil {
		return
	}
	fn()
	c.publishLocked()
}

func (c *Customizer) ToggleTopping(name string) {
	c.update(func() { c.sel.ToggleTopping(name) })
}

func (c *Customizer) ToggleSide(name string) {
	c.update(func() { c.sel.ToggleSide(name) })
}

func (c *Customizer) IncrementPortion() {
	c.update(func() { c.sel.IncrementPortion() })
}

func (c *Customizer) DecrementPortion() {
	c.update(func() { c.sel.DecrementPortion() })
}

// SetPrices replaces one add-on collection wholesale.
func (c *Customizer) SetPrices(kind Kind, prices map[string]decimal.Decimal) {
	c.update(func() {
		if kind == KindSide {
			c.book.Sides = prices
			c.sides = true
			return
		}
		c.book.Toppings = prices
		c.toppings = true
	})
}

// Fail publishes err and freezes the customizer.
func (c *Customizer) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failed != nil || err == nil {
		return
	}
	c.failed = err
	st := c.snapshotLocked()
	st.Error = err.Error()
	st.err = err
	c.state.Set(st)
}

func (c *Customizer) snapshotLocked() CustomizerState {
	return CustomizerState{
		ItemID:       c.itemID,
		Toppings:     c.sel.Toppings(),
		Sides:        c.sel.Sides(),
		Quote:        FinalPrice(c.base, c.sel, c.book),
		PricesLoaded: c.toppings && c.sides,
	}
}

func (c *Customizer) publishLocked() {
	c.state.Set(c.snapshotLocked())
}

// Run feeds the customizer from the two add-on price streams until ctx
// ends or a stream terminates. Both subscriptions are closed on return.
func (c *Customizer) Run(ctx context.Context, toppings, sides *docstore.Subscription) error {
	defer toppings.Close()
	defer sides.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-toppings.C():
			if !ok {
				return c.streamEnded(toppings)
			}
			c.SetPrices(KindTopping, DecodePrices(snap))
		case snap, ok := <-sides.C():
			if !ok {
				return c.streamEnded(sides)
			}
			c.SetPrices(KindSide, DecodePrices(snap))
		}
	}
}

func (c *Customizer) streamEnded(sub *docstore.Subscription) error {
	err := sub.Err()
	if err == nil {
		return nil
	}
	c.Fail(err)
	return err
}
