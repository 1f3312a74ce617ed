package flags

import (
	"context"
	"errors"
	"regexp"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInvalidName = errors.New("flag name must be lowercase letters, digits, '_' or '-'")

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,99}$`)

func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Repository is the remote source of flag values.
type Repository interface {
	All(ctx context.Context) (map[string]bool, error)
	Set(ctx context.Context, name string, enabled bool) error
}

// --------------------------------------------------
// Postgres
// --------------------------------------------------

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) All(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT name, enabled FROM feature_flags`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var (
			name    string
			enabled bool
		)
		if err := rows.Scan(&name, &enabled); err != nil {
			return nil, err
		}
		out[name] = enabled
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Set(ctx context.Context, name string, enabled bool) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO feature_flags (name, enabled, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE
		SET enabled = EXCLUDED.enabled, updated_at = NOW()
	`, name, enabled)
	return err
}

// --------------------------------------------------
// In-memory
// --------------------------------------------------

type InMemoryRepository struct {
	mu    sync.Mutex
	flags map[string]bool
	err   error
}

func NewInMemoryRepository(initial map[string]bool) *InMemoryRepository {
	flags := make(map[string]bool, len(initial))
	for k, v := range initial {
		flags[k] = v
	}
	return &InMemoryRepository{flags: flags}
}

// FailWith makes All return err until called again with nil.
func (r *InMemoryRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *InMemoryRepository) All(ctx context.Context) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	out := make(map[string]bool, len(r.flags))
	for k, v := range r.flags {
		out[k] = v
	}
	return out, nil
}

func (r *InMemoryRepository) Set(ctx context.Context, name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flags[name] = enabled
	return nil
}
