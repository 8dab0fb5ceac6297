package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratheeshkm/tailorhub/pkg/observability"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, observability.NewLogger(observability.ErrorLevel, io.Discard)), mock
}

func orderRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "customer_id", "cloth_type", "stitching_type",
		"measurements_given", "number_of_items", "charge", "delivery_date",
		"waist", "length", "cloth_image_urls", "measurement_image_urls",
		"created_at", "updated_at",
	})
}

func TestStore_CreateChecksCustomerOwnership(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM customers`).
		WithArgs(int64(1), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(10), time.Now(), time.Now()))
	mock.ExpectCommit()

	order := &Order{
		CustomerID:        5,
		ClothType:         "shirt",
		StitchingType:     "regular",
		MeasurementsGiven: "chest 40",
		NumberOfItems:     2,
		Charge:            500,
		DeliveryDate:      "2026-09-15",
	}
	err := store.Create(context.Background(), 1, order)
	require.NoError(t, err)
	assert.Equal(t, int64(10), order.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateRejectsForeignCustomer(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM customers`).
		WithArgs(int64(2), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	order := &Order{CustomerID: 5, ClothType: "shirt", StitchingType: "regular", NumberOfItems: 1, DeliveryDate: "2026-09-15"}
	err := store.Create(context.Background(), 2, order)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetWrongAccountIsNotFound(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM orders`).
		WithArgs(int64(2), int64(10)).
		WillReturnRows(orderRows())

	_, err := store.Get(context.Background(), 2, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_GetDecodesImageLists(t *testing.T) {
	store, mock := newTestStore(t)

	rows := orderRows().AddRow(
		int64(10), int64(1), int64(5), "shirt", "regular",
		"chest 40", 2, 500.0, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		"32", "", []byte(`["https://cdn.example.com/a.jpg"]`), []byte(`[]`),
		time.Now(), time.Now(),
	)
	mock.ExpectQuery(`SELECT (.+) FROM orders`).
		WithArgs(int64(1), int64(10)).
		WillReturnRows(rows)

	order, err := store.Get(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-15", order.DeliveryDate)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg"}, order.ClothImageURLs)
	assert.Empty(t, order.MeasurementImageURLs)
}

func TestStore_ListEmpty(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM orders`).
		WithArgs(int64(9)).
		WillReturnRows(orderRows())

	orders, err := store.List(context.Background(), 9, 0)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestStore_ListFiltersByCustomer(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM orders`).
		WithArgs(int64(1), int64(5)).
		WillReturnRows(orderRows())

	_, err := store.List(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpdatePartial(t *testing.T) {
	store, mock := newTestStore(t)

	rows := orderRows().AddRow(
		int64(10), int64(1), int64(5), "shirt", "regular",
		"chest 40", 2, 750.0, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		"", "", []byte(`[]`), []byte(`[]`),
		time.Now(), time.Now(),
	)
	mock.ExpectQuery(`UPDATE orders SET`).
		WithArgs(int64(1), int64(10), 750.0).
		WillReturnRows(rows)

	charge := 750.0
	order, err := store.Update(context.Background(), 1, 10, UpdateRequest{Charge: &charge})
	require.NoError(t, err)
	assert.Equal(t, 750.0, order.Charge)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpdateWrongAccountIsNotFound(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`UPDATE orders SET`).
		WithArgs(int64(2), int64(10), 750.0).
		WillReturnRows(orderRows())

	charge := 750.0
	_, err := store.Update(context.Background(), 2, 10, UpdateRequest{Charge: &charge})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteWrongAccountIsNotFound(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec(`DELETE FROM orders`).
		WithArgs(int64(2), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete(context.Background(), 2, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRequest_Validate(t *testing.T) {
	valid := CreateRequest{
		CustomerID:    5,
		ClothType:     "shirt",
		StitchingType: "regular",
		NumberOfItems: 1,
		Charge:        100,
		DeliveryDate:  "2026-09-15",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*CreateRequest)
		field  string
	}{
		{"missing customer", func(r *CreateRequest) { r.CustomerID = 0 }, "customerId"},
		{"missing cloth type", func(r *CreateRequest) { r.ClothType = "" }, "clothType"},
		{"zero items", func(r *CreateRequest) { r.NumberOfItems = 0 }, "numberOfItems"},
		{"negative charge", func(r *CreateRequest) { r.Charge = -1 }, "charge"},
		{"bad date", func(r *CreateRequest) { r.DeliveryDate = "15-09-2026" }, "deliveryDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, tt.field)
		})
	}
}

func TestUpdateRequest_Validate(t *testing.T) {
	empty := ""
	zero := 0
	badDate := "tomorrow"

	assert.NoError(t, UpdateRequest{}.Validate())

	err := UpdateRequest{ClothType: &empty}.Validate()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "clothType")

	err = UpdateRequest{NumberOfItems: &zero}.Validate()
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "numberOfItems")

	err = UpdateRequest{DeliveryDate: &badDate}.Validate()
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "deliveryDate")
}
