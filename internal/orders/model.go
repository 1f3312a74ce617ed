package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

const StatusPlaced = "PLACED"

// Order is a priced selection the user committed to. Prices are the ones
// computed when the order was placed, not what the client displayed.
type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	ItemID        string          `json:"item_id"`
	ItemName      string          `json:"item_name"`
	Toppings      []string        `json:"toppings"`
	Sides         []string        `json:"sides"`
	Portion       int             `json:"portion"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}
