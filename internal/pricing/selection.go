package pricing

import (
	"errors"
	"slices"
	"strings"
)

// Kind names one of the two add-on collections.
type Kind string

const (
	KindTopping Kind = "toppings"
	KindSide    Kind = "sides"
)

var ErrUnknownKind = errors.New("add-on kind must be toppings or sides")

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "toppings", "topping":
		return KindTopping, nil
	case "sides", "side":
		return KindSide, nil
	default:
		return "", ErrUnknownKind
	}
}

// Selection is what the user picked for one item: add-on membership plus a
// portion count that never drops below 1.
type Selection struct {
	toppings map[string]struct{}
	sides    map[string]struct{}
	portion  int
}

func NewSelection() *Selection {
	return &Selection{
		toppings: make(map[string]struct{}),
		sides:    make(map[string]struct{}),
		portion:  1,
	}
}

// SelectionOf builds a selection from request data. Duplicate names
// collapse and a portion below 1 becomes 1.
func SelectionOf(toppings, sides []string, portion int) *Selection {
	s := NewSelection()
	for _, name := range toppings {
		s.toppings[name] = struct{}{}
	}
	for _, name := range sides {
		s.sides[name] = struct{}{}
	}
	if portion > 1 {
		s.portion = portion
	}
	return s
}

func (s *Selection) set(kind Kind) map[string]struct{} {
	if kind == KindSide {
		return s.sides
	}
	return s.toppings
}

// Toggle adds name if absent and removes it if present. It reports whether
// name is selected afterwards.
func (s *Selection) Toggle(kind Kind, name string) bool {
	set := s.set(kind)
	if _, ok := set[name]; ok {
		delete(set, name)
		return false
	}
	set[name] = struct{}{}
	return true
}

func (s *Selection) ToggleTopping(name string) bool {
	return s.Toggle(KindTopping, name)
}

func (s *Selection) ToggleSide(name string) bool {
	return s.Toggle(KindSide, name)
}

func (s *Selection) Has(kind Kind, name string) bool {
	_, ok := s.set(kind)[name]
	return ok
}

func (s *Selection) IncrementPortion() int {
	s.portion++
	return s.portion
}

// DecrementPortion is a no-op at 1.
func (s *Selection) DecrementPortion() int {
	if s.portion > 1 {
		s.portion--
	}
	return s.portion
}

func (s *Selection) Portion() int {
	return s.portion
}

// Toppings returns the selected topping names, sorted.
func (s *Selection) Toppings() []string {
	return sortedKeys(s.toppings)
}

// Sides returns the selected side names, sorted.
func (s *Selection) Sides() []string {
	return sortedKeys(s.sides)
}

func (s *Selection) Clone() *Selection {
	return SelectionOf(s.Toppings(), s.Sides(), s.portion)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
