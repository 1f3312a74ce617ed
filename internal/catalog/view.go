package catalog

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/docstore"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/observable"
)

// Status distinguishes "nothing yet" from "nothing matches" from "broken".
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
)

// ViewState is one published result of the derivation.
type ViewState struct {
	Status Status `json:"status"`
	Items  []Item `json:"items"`
	Filter Filter `json:"filter"`
	// Filtered is set when a category or search constraint was active, so
	// an empty result reads as "no matches" rather than an empty catalog.
	Filtered bool   `json:"filtered"`
	Error    string `json:"error,omitempty"`

	err error
}

// Err returns the stream error behind a StatusError state.
func (s ViewState) Err() error {
	return s.err
}

// NotFound reports an empty result caused by the user's constraints.
func (s ViewState) NotFound() bool {
	return s.Status == StatusEmpty && s.Filtered
}

// StateFor builds the state for a one-shot derivation over loaded items.
func StateFor(items []Item, f Filter, favorites map[string]bool) ViewState {
	f = f.Normalize()
	out := Derive(items, f, favorites)
	st := ViewState{
		Status:   StatusReady,
		Items:    out,
		Filter:   f,
		Filtered: f.Constrained(),
	}
	if len(out) == 0 {
		st.Status = StatusEmpty
	}
	return st
}

type viewKey struct {
	catalog   uint64
	favorites uint64
	filter    Filter
}

// View keeps the latest catalog snapshot, filter and favorite set, and
// republishes the derived state whenever one of them changes.
type View struct {
	mu        sync.Mutex
	items     []Item
	loaded    bool
	filter    Filter
	favorites map[string]bool
	failed    error

	catalogVersion   uint64
	favoritesVersion uint64
	last             *viewKey

	state *observable.Cell[ViewState]
}

func NewView(f Filter) *View {
	v := &View{
		filter:    f.Normalize(),
		favorites: map[string]bool{},
		state:     observable.NewCell[ViewState](),
	}
	v.state.Set(ViewState{Status: StatusLoading, Items: []Item{}, Filter: v.filter})
	return v
}

// State returns the latest published state.
func (v *View) State() ViewState {
	st, _ := v.state.Get()
	return st
}

// Subscribe streams states until ctx ends.
func (v *View) Subscribe(ctx context.Context) *observable.Subscription[ViewState] {
	return v.state.Subscribe(ctx)
}

// SetCatalog replaces the raw catalog wholesale.
func (v *View) SetCatalog(items []Item) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.items = slices.Clone(items)
	v.loaded = true
	v.catalogVersion++
	v.recomputeLocked()
}

// SetFavorites replaces the favorite id set.
func (v *View) SetFavorites(ids map[string]bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if maps.Equal(v.favorites, ids) {
		return
	}
	v.favorites = maps.Clone(ids)
	if v.favorites == nil {
		v.favorites = map[string]bool{}
	}
	v.favoritesVersion++
	v.recomputeLocked()
}

func (v *View) SetFilter(f Filter) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.filter = f.Normalize()
	v.recomputeLocked()
}

func (v *View) SetCategory(category string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.filter.Category = category
	v.filter = v.filter.Normalize()
	v.recomputeLocked()
}

func (v *View) SetSearch(search string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.filter.Search = search
	v.recomputeLocked()
}

func (v *View) SetSort(sort SortOption) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.filter.Sort = ParseSort(string(sort))
	v.recomputeLocked()
}

// Fail publishes an error state and stops all further recomputation.
func (v *View) Fail(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.failed != nil || err == nil {
		return
	}
	v.failed = err
	v.state.Set(ViewState{
		Status: StatusError,
		Items:  []Item{},
		Filter: v.filter,
		Error:  err.Error(),
		err:    err,
	})
}

func (v *View) recomputeLocked() {
	if v.failed != nil || !v.loaded {
		return
	}

	key := viewKey{catalog: v.catalogVersion, favorites: v.favoritesVersion, filter: v.filter}
	if v.last != nil && *v.last == key {
		return
	}
	v.last = &key

	v.state.Set(StateFor(v.items, v.filter, v.favorites))
}

// Run feeds the view from a catalog stream and an optional favorites
// stream until ctx ends or a stream terminates. Both subscriptions are
// closed on return. A stream error is published as StatusError and
// returned.
func (v *View) Run(ctx context.Context, items, favorites *docstore.Subscription) error {
	defer items.Close()
	var favC <-chan docstore.Snapshot
	if favorites != nil {
		defer favorites.Close()
		favC = favorites.C()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-items.C():
			if !ok {
				return v.streamEnded(items)
			}
			v.SetCatalog(DecodeItems(snap))
		case snap, ok := <-favC:
			if !ok {
				return v.streamEnded(favorites)
			}
			v.SetFavorites(DecodeFavorites(snap))
		}
	}
}

func (v *View) streamEnded(sub *docstore.Subscription) error {
	err := sub.Err()
	if err == nil {
		return nil
	}
	v.Fail(err)
	return err
}
