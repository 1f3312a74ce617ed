package core

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrItemNotFound is returned by CatalogReader for unknown item ids.
var ErrItemNotFound = errors.New("catalog item not found")

// ItemRef is the slice of a catalog item other modules are allowed to see.
type ItemRef struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// CatalogReader lets favorites and orders consult the catalog without
// depending on its package.
type CatalogReader interface {
	LookupItem(ctx context.Context, itemID string) (ItemRef, error)
}
