package profile

import (
	"context"
	"sync"
	"time"
)

type InMemoryRepository struct {
	mu       sync.Mutex
	profiles map[string]Profile
	payments map[string]PaymentPreference
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		profiles: make(map[string]Profile),
		payments: make(map[string]PaymentPreference),
	}
}

func (r *InMemoryRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &p, nil
}

func (r *InMemoryRepository) SaveProfile(ctx context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.UpdatedAt = time.Now()
	r.profiles[p.UserID] = *p
	return nil
}

func (r *InMemoryRepository) GetPayment(ctx context.Context, userID string) (*PaymentPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[userID]
	if !ok {
		return nil, ErrNoPayment
	}
	return &p, nil
}

func (r *InMemoryRepository) SavePayment(ctx context.Context, p *PaymentPreference) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.UpdatedAt = time.Now()
	r.payments[p.UserID] = *p
	return nil
}
