package profile

import (
	"context"
	"errors"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoPayment       = errors.New("no payment preference saved")
)

// Repository defines profile persistence.
// Service depends ONLY on this interface.
type Repository interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	SaveProfile(ctx context.Context, p *Profile) error
	GetPayment(ctx context.Context, userID string) (*PaymentPreference, error)
	SavePayment(ctx context.Context, p *PaymentPreference) error
}
