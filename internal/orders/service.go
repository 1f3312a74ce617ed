package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/core"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/pricing"
)

var (
	ErrUserRequired = errors.New("user is required")
	ErrItemRequired = errors.New("item_id is required")
	// ErrPriceChanged means the client confirmed a total that no longer
	// matches the current prices.
	ErrPriceChanged = errors.New("price changed since the quote was shown")
)

// Quoter prices a selection for an item.
type Quoter interface {
	QuoteItem(ctx context.Context, itemID string, sel *pricing.Selection) (core.ItemRef, pricing.Quote, error)
}

// PaymentLabeler names the payment method used for a user's orders.
type PaymentLabeler interface {
	PaymentLabel(ctx context.Context, userID string) (string, error)
}

type Service struct {
	repo     Repository
	quoter   Quoter
	payments PaymentLabeler
	log      logrus.FieldLogger
}

func NewService(repo Repository, quoter Quoter, payments PaymentLabeler, log logrus.FieldLogger) *Service {
	return &Service{
		repo:     repo,
		quoter:   quoter,
		payments: payments,
		log:      log.WithField("component", "orders"),
	}
}

type PlaceRequest struct {
	ItemID   string   `json:"item_id"`
	Toppings []string `json:"toppings"`
	Sides    []string `json:"sides"`
	Portion  int      `json:"portion"`
	// ExpectedTotal is the total the client displayed. When set, the order
	// is refused if the server-side total differs.
	ExpectedTotal *decimal.Decimal `json:"expected_total,omitempty"`
}

// Place prices the request again on the server and records the order.
func (s *Service) Place(ctx context.Context, userID string, req PlaceRequest) (*Order, pricing.Quote, error) {
	if userID == "" {
		return nil, pricing.Quote{}, ErrUserRequired
	}
	if req.ItemID == "" {
		return nil, pricing.Quote{}, ErrItemRequired
	}

	sel := pricing.SelectionOf(req.Toppings, req.Sides, req.Portion)
	item, quote, err := s.quoter.QuoteItem(ctx, req.ItemID, sel)
	if err != nil {
		return nil, pricing.Quote{}, err
	}

	if req.ExpectedTotal != nil && !req.ExpectedTotal.Equal(quote.Total) {
		return nil, quote, fmt.Errorf("%w: expected %s, now %s",
			ErrPriceChanged, req.ExpectedTotal.StringFixed(2), quote.Total.StringFixed(2))
	}

	payment, err := s.payments.PaymentLabel(ctx, userID)
	if err != nil {
		return nil, pricing.Quote{}, fmt.Errorf("resolve payment method: %w", err)
	}

	o := &Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		ItemID:        item.ID,
		ItemName:      item.Name,
		Toppings:      sel.Toppings(),
		Sides:         sel.Sides(),
		Portion:       quote.Portion,
		UnitPrice:     quote.Unit,
		Total:         quote.Total,
		PaymentMethod: payment,
		Status:        StatusPlaced,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, pricing.Quote{}, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": o.ID,
		"user_id":  userID,
		"item_id":  o.ItemID,
		"total":    o.Total.StringFixed(2),
	}).Info("order placed")

	return o, quote, nil
}

// History lists the user's orders, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]Order, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, orderID string) (*Order, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, ErrOrderNotFound
	}
	return s.repo.Get(ctx, userID, orderID)
}
