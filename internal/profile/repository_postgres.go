package profile

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	p := &Profile{}
	err := r.db.QueryRow(ctx, `
		SELECT user_id, display_name, phone, address, photo_url, updated_at
		FROM profiles
		WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.DisplayName, &p.Phone, &p.Address, &p.PhotoURL, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) SaveProfile(ctx context.Context, p *Profile) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO profiles (user_id, display_name, phone, address, photo_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			photo_url = EXCLUDED.photo_url,
			updated_at = NOW()
		RETURNING updated_at
	`, p.UserID, p.DisplayName, p.Phone, p.Address, p.PhotoURL).Scan(&p.UpdatedAt)
}

func (r *PostgresRepository) GetPayment(ctx context.Context, userID string) (*PaymentPreference, error) {
	p := &PaymentPreference{}
	err := r.db.QueryRow(ctx, `
		SELECT user_id, brand, last4, holder, updated_at
		FROM payment_preferences
		WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.Brand, &p.Last4, &p.Holder, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoPayment
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) SavePayment(ctx context.Context, p *PaymentPreference) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO payment_preferences (user_id, brand, last4, holder, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET brand = EXCLUDED.brand,
			last4 = EXCLUDED.last4,
			holder = EXCLUDED.holder,
			updated_at = NOW()
		RETURNING updated_at
	`, p.UserID, p.Brand, p.Last4, p.Holder).Scan(&p.UpdatedAt)
}
