package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/core"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/docstore"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/metrics"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/storage"
)

// ImageStore persists item images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// FavoriteSource provides a user's favorite item ids, once or as a stream.
type FavoriteSource interface {
	IDs(ctx context.Context, userID string) (map[string]bool, error)
	Subscribe(ctx context.Context, userID string) (*docstore.Subscription, error)
}

type Service struct {
	repo      Repository
	favorites FavoriteSource
	images    ImageStore
	metrics   *metrics.Metrics
	log       logrus.FieldLogger
}

func NewService(
	repo Repository,
	favorites FavoriteSource,
	images ImageStore,
	m *metrics.Metrics,
	log logrus.FieldLogger,
) *Service {
	return &Service{
		repo:      repo,
		favorites: favorites,
		images:    images,
		metrics:   m,
		log:       log.WithField("component", "catalog"),
	}
}

// --------------------------------------------------
// Browse (one-shot derivation)
// --------------------------------------------------
func (s *Service) Browse(ctx context.Context, userID string, f Filter) (ViewState, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return ViewState{}, fmt.Errorf("list catalog: %w", err)
	}

	favorites, err := s.favoriteIDs(ctx, userID)
	if err != nil {
		return ViewState{}, err
	}

	st := StateFor(items, f, favorites)
	s.metrics.RecordDerivation(string(st.Status))
	return st, nil
}

func (s *Service) favoriteIDs(ctx context.Context, userID string) (map[string]bool, error) {
	if userID == "" || s.favorites == nil {
		return nil, nil
	}
	ids, err := s.favorites.IDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	return ids, nil
}

// Item returns one item annotated for userID.
func (s *Service) Item(ctx context.Context, userID, id string) (*Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	favorites, err := s.favoriteIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	item.IsFavorite = favorites[item.ID]
	return item, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return Categories(items), nil
}

// LookupItem implements core.CatalogReader.
func (s *Service) LookupItem(ctx context.Context, itemID string) (core.ItemRef, error) {
	item, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return core.ItemRef{}, err
	}
	return core.ItemRef{ID: item.ID, Name: item.Name, Price: item.Price}, nil
}

// --------------------------------------------------
// Live view
// --------------------------------------------------

// OpenView subscribes to the catalog and, for a signed-in user, their
// favorites, and keeps the returned View current until ctx ends. Both
// subscriptions are released when ctx is cancelled or a stream fails.
func (s *Service) OpenView(ctx context.Context, userID string, f Filter) (*View, error) {
	items, err := s.repo.Subscribe(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscribe catalog: %w", err)
	}

	var favorites *docstore.Subscription
	if userID != "" && s.favorites != nil {
		favorites, err = s.favorites.Subscribe(ctx, userID)
		if err != nil {
			items.Close()
			return nil, fmt.Errorf("subscribe favorites: %w", err)
		}
	}

	view := NewView(f)
	s.metrics.LiveViewOpened()
	context.AfterFunc(ctx, s.metrics.LiveViewClosed)

	log := s.log.WithField("user_id", userID)
	go func() {
		if err := view.Run(ctx, items, favorites); err != nil {
			log.WithError(err).Warn("live catalog stream terminated")
		}
	}()
	return view, nil
}

// --------------------------------------------------
// Admin
// --------------------------------------------------
func (s *Service) SaveItem(ctx context.Context, item Item) (*Item, error) {
	if err := s.repo.Upsert(ctx, item); err != nil {
		return nil, err
	}
	s.log.WithField("item_id", item.ID).Info("catalog item saved")
	item.IsFavorite = false
	return &item, nil
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("item_id", id).Info("catalog item deleted")
	return nil
}

// UploadImage stores a new image for an existing item and points the item
// at it.
func (s *Service) UploadImage(
	ctx context.Context,
	itemID string,
	file io.Reader,
	filename string,
	contentType string,
) (*Item, error) {
	if s.images == nil {
		return nil, errors.New("image storage not configured")
	}

	ext, err := storage.ValidateImageExtension(filename)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("catalog/%s/%s%s", itemID, uuid.New().String(), ext)
	url, err := s.images.Upload(ctx, key, file, contentType)
	if err != nil {
		return nil, err
	}

	item.Image = url
	if err := s.repo.Upsert(ctx, *item); err != nil {
		return nil, err
	}
	return item, nil
}
