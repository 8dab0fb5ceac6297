package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ratheeshkm/tailorhub/pkg/observability"
)

// AccountStore persists accounts in Postgres.
type AccountStore struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewAccountStore creates an account store around an existing database
// handle.
func NewAccountStore(db *sql.DB, logger *observability.Logger) *AccountStore {
	return &AccountStore{db: db, logger: logger}
}

// Create inserts a new account. Username uniqueness is enforced by the
// database constraint; a violation surfaces as ErrUsernameTaken. Racing
// signups with the same username are resolved by the constraint, not by a
// prior existence check.
func (s *AccountStore) Create(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO users (username, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		account.Username, account.Name, nullableString(account.Email), account.PasswordHash,
	).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByUsername fetches an account by its login name.
func (s *AccountStore) GetByUsername(ctx context.Context, username string) (*Account, error) {
	query := `
		SELECT id, username, name, COALESCE(email, ''), password_hash, created_at
		FROM users
		WHERE username = $1`

	account := &Account{}
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&account.ID, &account.Username, &account.Name, &account.Email,
		&account.PasswordHash, &account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by username: %w", err)
	}
	return account, nil
}

// GetByID fetches an account by its id.
func (s *AccountStore) GetByID(ctx context.Context, id int64) (*Account, error) {
	query := `
		SELECT id, username, name, COALESCE(email, ''), password_hash, created_at
		FROM users
		WHERE id = $1`

	account := &Account{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID, &account.Username, &account.Name, &account.Email,
		&account.PasswordHash, &account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by id: %w", err)
	}
	return account, nil
}

// Count returns the total number of accounts. Used by the business gauge
// refresher.
func (s *AccountStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
