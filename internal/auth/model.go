package auth

import "time"

const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// User is the domain entity.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	Role      string
	Provider  string
	CreatedAt time.Time
}

// PasswordReset is a single-use token that lets a user set a new password.
type PasswordReset struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	UsedAt    *time.Time
}

func (r *PasswordReset) Usable(now time.Time) bool {
	return r.UsedAt == nil && now.Before(r.ExpiresAt)
}
