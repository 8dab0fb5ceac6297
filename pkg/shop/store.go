package shop

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ratheeshkm/tailorhub/pkg/observability"
)

// Store persists shops in Postgres. Every method takes the owning account
// id; there is no way to read another account's shop.
type Store struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewStore creates a shop store around an existing database handle.
func NewStore(db *sql.DB, logger *observability.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Create inserts the shop for an account. The unique constraint on
// user_id makes the second create fail with ErrShopExists, racing creates
// included.
func (s *Store) Create(ctx context.Context, accountID int64, shop *Shop) error {
	query := `
		INSERT INTO shops (user_id, shop_name, phone_number, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		accountID, shop.ShopName, shop.PhoneNumber, nullableString(shop.Address),
	).Scan(&shop.ID, &shop.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrShopExists
		}
		return fmt.Errorf("failed to create shop: %w", err)
	}
	shop.AccountID = accountID
	return nil
}

// GetByAccountID fetches the account's shop.
func (s *Store) GetByAccountID(ctx context.Context, accountID int64) (*Shop, error) {
	query := `
		SELECT id, user_id, shop_name, phone_number, COALESCE(address, ''), created_at
		FROM shops
		WHERE user_id = $1`

	shop := &Shop{}
	err := s.db.QueryRowContext(ctx, query, accountID).Scan(
		&shop.ID, &shop.AccountID, &shop.ShopName, &shop.PhoneNumber,
		&shop.Address, &shop.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return shop, nil
}

// Count returns the total number of shops. Used by the business gauge
// refresher.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shops`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count shops: %w", err)
	}
	return count, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
