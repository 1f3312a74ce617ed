package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresUserRepository struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Save(ctx context.Context, user *User) error {
	// Generate UUID if not already set
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	query := `
		INSERT INTO users (id, name, email, password, role, provider)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query,
		user.ID, user.Name, user.Email, user.Password, user.Role, user.Provider,
	).Scan(&user.CreatedAt)
}

func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT 1 FROM users WHERE email=$1 LIMIT 1`

	var exists int
	err := r.db.QueryRow(ctx, query, email).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, password, role, provider, created_at
		FROM users WHERE email=$1
	`
	user := &User{}
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.Role, &user.Provider, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, userID, hash string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET password = $1
		WHERE id = $2
	`, hash, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// --------------------------------------------------
// Password resets
// --------------------------------------------------

func (r *PostgresUserRepository) SaveReset(ctx context.Context, reset *PasswordReset) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO password_resets (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, reset.Token, reset.UserID, reset.ExpiresAt)
	return err
}

func (r *PostgresUserRepository) FindReset(ctx context.Context, token string) (*PasswordReset, error) {
	reset := &PasswordReset{}
	err := r.db.QueryRow(ctx, `
		SELECT token, user_id, expires_at, used_at
		FROM password_resets
		WHERE token = $1
	`, token).Scan(&reset.Token, &reset.UserID, &reset.ExpiresAt, &reset.UsedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrResetNotFound
	}
	if err != nil {
		return nil, err
	}
	return reset, nil
}

func (r *PostgresUserRepository) MarkResetUsed(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE password_resets
		SET used_at = NOW()
		WHERE token = $1 AND used_at IS NULL
	`, token)
	return err
}
