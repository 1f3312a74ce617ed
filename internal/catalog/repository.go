package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/core"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/docstore"
)

// ItemsPath is the document store collection holding catalog items.
const ItemsPath = "catalog/items"

var (
	ErrItemNotFound = core.ErrItemNotFound
	ErrInvalidItem  = errors.New("invalid catalog item")
)

// Repository defines catalog persistence.
// Service depends ONLY on this interface.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, id string) (*Item, error)
	Upsert(ctx context.Context, item Item) error
	Delete(ctx context.Context, id string) error
	Subscribe(ctx context.Context) (*docstore.Subscription, error)
}

// DocumentRepository keeps items as documents under ItemsPath.
type DocumentRepository struct {
	store docstore.Store
}

func NewDocumentRepository(store docstore.Store) *DocumentRepository {
	return &DocumentRepository{store: store}
}

func (r *DocumentRepository) List(ctx context.Context) ([]Item, error) {
	snap, err := r.store.Get(ctx, ItemsPath)
	if err != nil {
		return nil, err
	}
	return DecodeItems(snap), nil
}

func (r *DocumentRepository) Get(ctx context.Context, id string) (*Item, error) {
	snap, err := r.store.Get(ctx, ItemsPath)
	if err != nil {
		return nil, err
	}

	var item Item
	found, err := snap.Decode(id, &item)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrItemNotFound
	}
	item.ID = id
	item.IsFavorite = false
	return &item, nil
}

func (r *DocumentRepository) Upsert(ctx context.Context, item Item) error {
	if err := Validate(item); err != nil {
		return err
	}
	item.IsFavorite = false
	return r.store.Set(ctx, docstore.Join(ItemsPath, item.ID), item)
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidItem
	}
	return r.store.Delete(ctx, docstore.Join(ItemsPath, id))
}

func (r *DocumentRepository) Subscribe(ctx context.Context) (*docstore.Subscription, error) {
	return r.store.Subscribe(ctx, ItemsPath)
}

// Validate checks the fields the catalog relies on.
func Validate(item Item) error {
	if strings.TrimSpace(item.ID) == "" || strings.Contains(item.ID, "/") {
		return errors.Join(ErrInvalidItem, errors.New("id is required and may not contain '/'"))
	}
	if strings.TrimSpace(item.Name) == "" {
		return errors.Join(ErrInvalidItem, errors.New("name is required"))
	}
	if item.Price.IsNegative() {
		return errors.Join(ErrInvalidItem, errors.New("price must not be negative"))
	}
	return nil
}

// DecodeItems converts a catalog snapshot into items in snapshot order.
// Children that do not decode as an item are skipped.
func DecodeItems(snap docstore.Snapshot) []Item {
	items := make([]Item, 0, snap.Len())
	for _, c := range snap.Children {
		var it Item
		if err := json.Unmarshal(c.Value, &it); err != nil {
			continue
		}
		if it.ID == "" {
			it.ID = c.Key
		}
		it.IsFavorite = false
		items = append(items, it)
	}
	return items
}

// DecodeFavorites turns a favorites snapshot (one child per favorited item
// id) into a set.
func DecodeFavorites(snap docstore.Snapshot) map[string]bool {
	ids := make(map[string]bool, snap.Len())
	for _, key := range snap.Keys() {
		ids[key] = true
	}
	return ids
}
