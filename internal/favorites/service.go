package favorites

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/catalog"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/core"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/docstore"
)

var ErrUserRequired = errors.New("user id is required")

// Path returns the collection holding userID's favorites: one child per
// favorited item id.
func Path(userID string) string {
	return docstore.Join("favorites", userID)
}

const toggleStripes = 64

type Service struct {
	store   docstore.Store
	catalog catalog.Repository
	log     logrus.FieldLogger

	// toggles serializes read-then-write toggles per user within this
	// process. Instances sharing one Redis can still interleave.
	toggles [toggleStripes]sync.Mutex
}

func (s *Service) toggleLock(userID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &s.toggles[h.Sum32()%toggleStripes]
}

func NewService(store docstore.Store, items catalog.Repository, log logrus.FieldLogger) *Service {
	return &Service{
		store:   store,
		catalog: items,
		log:     log.WithField("component", "favorites"),
	}
}

// IDs returns the user's favorite item ids.
func (s *Service) IDs(ctx context.Context, userID string) (map[string]bool, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	snap, err := s.store.Get(ctx, Path(userID))
	if err != nil {
		return nil, err
	}
	return catalog.DecodeFavorites(snap), nil
}

// Subscribe streams the user's favorite set.
func (s *Service) Subscribe(ctx context.Context, userID string) (*docstore.Subscription, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	return s.store.Subscribe(ctx, Path(userID))
}

// Toggle favorites itemID if it is not a favorite yet and unfavorites it
// otherwise. It returns the new state.
func (s *Service) Toggle(ctx context.Context, userID, itemID string) (bool, error) {
	if userID == "" {
		return false, ErrUserRequired
	}
	mu := s.toggleLock(userID)
	mu.Lock()
	defer mu.Unlock()

	ids, err := s.IDs(ctx, userID)
	if err != nil {
		return false, err
	}

	path := docstore.Join(Path(userID), itemID)
	if ids[itemID] {
		if err := s.store.Delete(ctx, path); err != nil {
			return false, fmt.Errorf("unfavorite: %w", err)
		}
		s.log.WithFields(logrus.Fields{"user_id": userID, "item_id": itemID}).Debug("item unfavorited")
		return false, nil
	}

	if _, err := s.catalog.Get(ctx, itemID); err != nil {
		if errors.Is(err, core.ErrItemNotFound) {
			return false, err
		}
		return false, fmt.Errorf("check item: %w", err)
	}
	if err := s.store.Set(ctx, path, true); err != nil {
		return false, fmt.Errorf("favorite: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "item_id": itemID}).Debug("item favorited")
	return true, nil
}

// List returns the user's favorite items in catalog order. Favorites whose
// item has left the catalog are not listed.
func (s *Service) List(ctx context.Context, userID string) ([]catalog.Item, error) {
	ids, err := s.IDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	out := []catalog.Item{}
	for _, it := range catalog.Derive(items, catalog.DefaultFilter(), ids) {
		if it.IsFavorite {
			out = append(out, it)
		}
	}
	return out, nil
}
