package orders

import (
	"context"
	"slices"
	"sync"
	"time"
)

type InMemoryRepository struct {
	mu     sync.Mutex
	orders []Order
	now    func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{now: time.Now}
}

func (r *InMemoryRepository) Create(ctx context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.now()
	}
	stored := *o
	stored.Toppings = slices.Clone(o.Toppings)
	stored.Sides = slices.Clone(o.Sides)
	r.orders = append(r.orders, stored)
	return nil
}

func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []Order{}
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	// reversed first so orders sharing a timestamp still list newest first
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (r *InMemoryRepository) Get(ctx context.Context, userID, orderID string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		if o.ID == orderID && o.UserID == userID {
			found := o
			return &found, nil
		}
	}
	return nil, ErrOrderNotFound
}
