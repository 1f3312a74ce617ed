package auth

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrResetNotFound = errors.New("reset token not found")
)

// UserRepository defines the data-access contract.
// Service depends ONLY on this interface.
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, userID, hash string) error
}

// ResetRepository stores password reset tokens.
type ResetRepository interface {
	SaveReset(ctx context.Context, reset *PasswordReset) error
	FindReset(ctx context.Context, token string) (*PasswordReset, error)
	MarkResetUsed(ctx context.Context, token string) error
}
