package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/core"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/metrics"
)

type Service struct {
	repo    *Repository
	catalog core.CatalogReader
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

func NewService(repo *Repository, catalog core.CatalogReader, m *metrics.Metrics, log logrus.FieldLogger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		metrics: m,
		log:     log.WithField("component", "pricing"),
	}
}

func (s *Service) AddOns(ctx context.Context) (PriceBook, error) {
	return s.repo.Book(ctx)
}

// QuoteItem prices a selection against the item's current catalog price
// and the current add-on prices.
func (s *Service) QuoteItem(ctx context.Context, itemID string, sel *Selection) (core.ItemRef, Quote, error) {
	item, err := s.catalog.LookupItem(ctx, itemID)
	if err != nil {
		return core.ItemRef{}, Quote{}, err
	}

	book, err := s.repo.Book(ctx)
	if err != nil {
		return core.ItemRef{}, Quote{}, fmt.Errorf("load add-on prices: %w", err)
	}

	q := FinalPrice(item.Price, sel, book)
	s.record(itemID, q)
	return item, q, nil
}

func (s *Service) record(itemID string, q Quote) {
	s.metrics.RecordQuote(q.UnpricedByKind())
	if len(q.Unpriced) > 0 {
		s.log.WithFields(logrus.Fields{
			"item_id":  itemID,
			"unpriced": q.Unpriced,
		}).Warn("selected add-ons have no price entry, priced at zero")
	}
}

// OpenCustomizer starts a live quote for itemID that follows add-on price
// changes until ctx ends.
func (s *Service) OpenCustomizer(ctx context.Context, itemID string, sel *Selection) (*Customizer, error) {
	item, err := s.catalog.LookupItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	toppings, err := s.repo.Subscribe(ctx, KindTopping)
	if err != nil {
		return nil, fmt.Errorf("subscribe toppings: %w", err)
	}
	sides, err := s.repo.Subscribe(ctx, KindSide)
	if err != nil {
		toppings.Close()
		return nil, fmt.Errorf("subscribe sides: %w", err)
	}

	c := NewCustomizer(item.ID, item.Price, sel)
	log := s.log.WithField("item_id", itemID)
	go func() {
		if err := c.Run(ctx, toppings, sides); err != nil {
			log.WithError(err).Warn("add-on price stream terminated")
		}
	}()
	return c, nil
}

func (s *Service) SetAddOn(ctx context.Context, kind Kind, name string, price decimal.Decimal) error {
	if err := s.repo.SetPrice(ctx, kind, name, price); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"kind": kind, "name": name, "price": price.String()}).Info("add-on price saved")
	return nil
}

func (s *Service) DeleteAddOn(ctx context.Context, kind Kind, name string) error {
	if err := s.repo.DeletePrice(ctx, kind, name); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"kind": kind, "name": name}).Info("add-on removed")
	return nil
}
