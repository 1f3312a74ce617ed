package profile

import (
	"fmt"
	"time"
)

// Profile is what a user can edit about themselves.
type Profile struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	PhotoURL    string    `json:"photo_url"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PaymentPreference is the card a user picked for checkout. Only the brand
// and last four digits are kept.
type PaymentPreference struct {
	UserID    string    `json:"-"`
	Brand     string    `json:"brand"`
	Last4     string    `json:"last4"`
	Holder    string    `json:"holder"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Masked renders the card number with all but the last four digits hidden.
func (p PaymentPreference) Masked() string {
	return "**** **** **** " + p.Last4
}

// Label is how the card appears on an order.
func (p PaymentPreference) Label() string {
	return fmt.Sprintf("%s ending %s", p.Brand, p.Last4)
}
