package customers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ratheeshkm/tailorhub/pkg/observability"
)

// Store persists customers in Postgres. The account id is part of every
// WHERE clause; scoping is structural, not a caller convention.
type Store struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewStore creates a customer store around an existing database handle.
func NewStore(db *sql.DB, logger *observability.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Create inserts a customer for the account.
func (s *Store) Create(ctx context.Context, accountID int64, customer *Customer) error {
	query := `
		INSERT INTO customers (user_id, name, mobile, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		accountID, customer.Name, customer.MobileNumber, nullableString(customer.Address),
	).Scan(&customer.ID, &customer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	customer.AccountID = accountID
	return nil
}

// List returns the account's customers, newest first.
func (s *Store) List(ctx context.Context, accountID int64) ([]*Customer, error) {
	query := `
		SELECT id, user_id, name, mobile, COALESCE(address, ''), created_at
		FROM customers
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*Customer{}
	for rows.Next() {
		customer := &Customer{}
		if err := rows.Scan(
			&customer.ID, &customer.AccountID, &customer.Name,
			&customer.MobileNumber, &customer.Address, &customer.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return customers, nil
}

// Get fetches one of the account's customers. A customer owned by another
// account returns ErrNotFound.
func (s *Store) Get(ctx context.Context, accountID, customerID int64) (*Customer, error) {
	query := `
		SELECT id, user_id, name, mobile, COALESCE(address, ''), created_at
		FROM customers
		WHERE user_id = $1 AND id = $2`

	customer := &Customer{}
	err := s.db.QueryRowContext(ctx, query, accountID, customerID).Scan(
		&customer.ID, &customer.AccountID, &customer.Name,
		&customer.MobileNumber, &customer.Address, &customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// Delete removes one of the account's customers. Orders cascade with it.
func (s *Store) Delete(ctx context.Context, accountID, customerID int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM customers WHERE user_id = $1 AND id = $2`,
		accountID, customerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of customers across all accounts. Used
// by the business gauge refresher.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
