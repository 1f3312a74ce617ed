package orders

import (
	"context"
	"errors"
)

var ErrOrderNotFound = errors.New("order not found")

// Repository defines order persistence.
// Service depends ONLY on this interface.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	Get(ctx context.Context, userID, orderID string) (*Order, error)
}
