package pricing

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/docstore"
)

const (
	ToppingsPath = "catalog/toppings"
	SidesPath    = "catalog/sides"
)

var ErrInvalidAddOn = errors.New("invalid add-on")

func pathFor(kind Kind) string {
	if kind == KindSide {
		return SidesPath
	}
	return ToppingsPath
}

// Repository keeps add-on prices in the document store, one child per
// name under ToppingsPath and SidesPath.
type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) Book(ctx context.Context) (PriceBook, error) {
	toppings, err := r.store.Get(ctx, ToppingsPath)
	if err != nil {
		return PriceBook{}, err
	}
	sides, err := r.store.Get(ctx, SidesPath)
	if err != nil {
		return PriceBook{}, err
	}
	return PriceBook{
		Toppings: DecodePrices(toppings),
		Sides:    DecodePrices(sides),
	}, nil
}

func (r *Repository) SetPrice(ctx context.Context, kind Kind, name string, price decimal.Decimal) error {
	if strings.TrimSpace(name) == "" || strings.Contains(name, "/") {
		return errors.Join(ErrInvalidAddOn, errors.New("name is required and may not contain '/'"))
	}
	if price.IsNegative() {
		return errors.Join(ErrInvalidAddOn, errors.New("price must not be negative"))
	}
	return r.store.Set(ctx, docstore.Join(pathFor(kind), name), price)
}

func (r *Repository) DeletePrice(ctx context.Context, kind Kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidAddOn
	}
	return r.store.Delete(ctx, docstore.Join(pathFor(kind), name))
}

func (r *Repository) Subscribe(ctx context.Context, kind Kind) (*docstore.Subscription, error) {
	return r.store.Subscribe(ctx, pathFor(kind))
}
