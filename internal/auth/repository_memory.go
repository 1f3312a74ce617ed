package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type InMemoryUserRepository struct {
	mu     sync.Mutex
	users  map[string]*User
	resets map[string]*PasswordReset
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:  make(map[string]*User),
		resets: make(map[string]*PasswordReset),
	}
}

func (r *InMemoryUserRepository) Save(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Generate UUID if not already set
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.users[user.Email] = user
	return nil
}

func (r *InMemoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.users[email]
	return exists, nil
}

func (r *InMemoryUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *InMemoryUserRepository) UpdatePassword(ctx context.Context, userID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == userID {
			u.Password = hash
			return nil
		}
	}
	return ErrUserNotFound
}

func (r *InMemoryUserRepository) SaveReset(ctx context.Context, reset *PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *reset
	r.resets[reset.Token] = &cp
	return nil
}

func (r *InMemoryUserRepository) FindReset(ctx context.Context, token string) (*PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reset, ok := r.resets[token]
	if !ok {
		return nil, ErrResetNotFound
	}
	cp := *reset
	return &cp, nil
}

func (r *InMemoryUserRepository) MarkResetUsed(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reset, ok := r.resets[token]
	if !ok {
		return ErrResetNotFound
	}
	now := time.Now()
	reset.UsedAt = &now
	return nil
}
