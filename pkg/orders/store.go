package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ratheeshkm/tailorhub/pkg/observability"
)

// Store persists orders in Postgres. The account id is part of every
// WHERE clause; scoping is structural, not a caller convention.
type Store struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewStore creates an order store around an existing database handle.
func NewStore(db *sql.DB, logger *observability.Logger) *Store {
	return &Store{db: db, logger: logger}
}

const orderColumns = `id, user_id, customer_id, cloth_type, stitching_type,
	measurements_given, number_of_items, charge, delivery_date, COALESCE(waist, ''),
	COALESCE(length, ''), cloth_image_urls, measurement_image_urls, created_at, updated_at`

// Create inserts an order inside a transaction that first checks the
// referenced customer belongs to the same account. The check and the
// insert commit together, so a concurrently deleted customer cannot leave
// a dangling order.
func (s *Store) Create(ctx context.Context, accountID int64, order *Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ownedCustomer int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM customers WHERE user_id = $1 AND id = $2 FOR SHARE`,
		accountID, order.CustomerID,
	).Scan(&ownedCustomer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to check customer ownership: %w", err)
	}

	clothImages, err := marshalURLs(order.ClothImageURLs)
	if err != nil {
		return err
	}
	measurementImages, err := marshalURLs(order.MeasurementImageURLs)
	if err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, customer_id, cloth_type, stitching_type,
			measurements_given, number_of_items, charge, delivery_date, waist, length,
			cloth_image_urls, measurement_image_urls)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`,
		accountID, order.CustomerID, order.ClothType, order.StitchingType,
		order.MeasurementsGiven, order.NumberOfItems, order.Charge, order.DeliveryDate,
		nullableString(order.Waist), nullableString(order.Length),
		clothImages, measurementImages,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	order.AccountID = accountID
	return nil
}

// List returns the account's orders, newest first. customerID narrows the
// list to one customer when positive.
func (s *Store) List(ctx context.Context, accountID, customerID int64) ([]*Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1`
	args := []interface{}{accountID}
	if customerID > 0 {
		query += ` AND customer_id = $2`
		args = append(args, customerID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return orders, nil
}

// Get fetches one of the account's orders. An order owned by another
// account returns ErrNotFound.
func (s *Store) Get(ctx context.Context, accountID, orderID int64) (*Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 AND id = $2`,
		accountID, orderID,
	)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// Update applies a partial update to one of the account's orders and
// returns the updated row.
func (s *Store) Update(ctx context.Context, accountID, orderID int64, req UpdateRequest) (*Order, error) {
	set := []string{"updated_at = NOW()"}
	args := []interface{}{accountID, orderID}
	next := 3

	add := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, next))
		args = append(args, value)
		next++
	}

	if req.ClothType != nil {
		add("cloth_type", *req.ClothType)
	}
	if req.StitchingType != nil {
		add("stitching_type", *req.StitchingType)
	}
	if req.MeasurementsGiven != nil {
		add("measurements_given", *req.MeasurementsGiven)
	}
	if req.NumberOfItems != nil {
		add("number_of_items", *req.NumberOfItems)
	}
	if req.Charge != nil {
		add("charge", *req.Charge)
	}
	if req.DeliveryDate != nil {
		add("delivery_date", *req.DeliveryDate)
	}
	if req.Waist != nil {
		add("waist", nullableString(*req.Waist))
	}
	if req.Length != nil {
		add("length", nullableString(*req.Length))
	}
	if req.ClothImageURLs != nil {
		urls, err := marshalURLs(*req.ClothImageURLs)
		if err != nil {
			return nil, err
		}
		add("cloth_image_urls", urls)
	}
	if req.MeasurementImageURLs != nil {
		urls, err := marshalURLs(*req.MeasurementImageURLs)
		if err != nil {
			return nil, err
		}
		add("measurement_image_urls", urls)
	}

	query := `UPDATE orders SET `
	for i, clause := range set {
		if i > 0 {
			query += ", "
		}
		query += clause
	}
	query += ` WHERE user_id = $1 AND id = $2 RETURNING ` + orderColumns

	order, err := scanOrder(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// Delete removes one of the account's orders.
func (s *Store) Delete(ctx context.Context, accountID, orderID int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM orders WHERE user_id = $1 AND id = $2`,
		accountID, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
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

// Count returns the total number of orders across all accounts. Used by
// the business gauge refresher.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*Order, error) {
	order := &Order{}
	var deliveryDate time.Time
	var clothImages, measurementImages []byte

	err := row.Scan(
		&order.ID, &order.AccountID, &order.CustomerID, &order.ClothType,
		&order.StitchingType, &order.MeasurementsGiven, &order.NumberOfItems,
		&order.Charge, &deliveryDate, &order.Waist, &order.Length,
		&clothImages, &measurementImages, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	order.DeliveryDate = deliveryDate.Format(dateLayout)
	if err := json.Unmarshal(clothImages, &order.ClothImageURLs); err != nil {
		return nil, fmt.Errorf("failed to decode cloth image urls: %w", err)
	}
	if err := json.Unmarshal(measurementImages, &order.MeasurementImageURLs); err != nil {
		return nil, fmt.Errorf("failed to decode measurement image urls: %w", err)
	}
	return order, nil
}

func marshalURLs(urls []string) ([]byte, error) {
	if urls == nil {
		urls = []string{}
	}
	data, err := json.Marshal(urls)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image urls: %w", err)
	}
	return data, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
