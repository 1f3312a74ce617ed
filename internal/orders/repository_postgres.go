package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, o *Order) error {
	toppings, err := json.Marshal(nonNil(o.Toppings))
	if err != nil {
		return err
	}
	sides, err := json.Marshal(nonNil(o.Sides))
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO orders (
			id, user_id, item_id, item_name, toppings, sides,
			portion, unit_price, total, payment_method, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9::numeric, $10, $11)
		RETURNING created_at
	`,
		o.ID, o.UserID, o.ItemID, o.ItemName, toppings, sides,
		o.Portion, o.UnitPrice.String(), o.Total.String(), o.PaymentMethod, o.Status,
	).Scan(&o.CreatedAt)
}

const selectOrder = `
	SELECT id, user_id, item_id, item_name, toppings, sides,
		portion, unit_price::text, total::text, payment_method, status, created_at
	FROM orders
`

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.db.Query(ctx, selectOrder+`
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, userID, orderID string) (*Order, error) {
	row := r.db.QueryRow(ctx, selectOrder+`
		WHERE id = $1 AND user_id = $2
	`, orderID, userID)

	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o                Order
		toppings, sides  []byte
		unitPrice, total string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.ItemID, &o.ItemName, &toppings, &sides,
		&o.Portion, &unitPrice, &total, &o.PaymentMethod, &o.Status, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(toppings, &o.Toppings); err != nil {
		return nil, fmt.Errorf("decode toppings: %w", err)
	}
	if err := json.Unmarshal(sides, &o.Sides); err != nil {
		return nil, fmt.Errorf("decode sides: %w", err)
	}
	if o.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
		return nil, fmt.Errorf("decode unit price: %w", err)
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("decode total: %w", err)
	}
	return &o, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
