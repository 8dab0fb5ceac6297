//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ratheeshkm/tailorhub/pkg/auth"
	"github.com/ratheeshkm/tailorhub/pkg/customers"
	"github.com/ratheeshkm/tailorhub/pkg/observability"
	"github.com/ratheeshkm/tailorhub/pkg/orders"
	"github.com/ratheeshkm/tailorhub/pkg/shop"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("tailorhub_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		container.Terminate(cleanupCtx)
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Ping())

	require.NoError(t, RunMigrations(ctx, db))
	return db
}

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, RunMigrations(context.Background(), db))
}

func TestAccountLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	store := auth.NewAccountStore(db, testLogger())

	account := &auth.Account{Username: "ravi", Name: "Ravi Kumar", PasswordHash: "hash"}
	require.NoError(t, store.Create(ctx, account))
	assert.NotZero(t, account.ID)

	dup := &auth.Account{Username: "ravi", Name: "Other", PasswordHash: "hash2"}
	assert.ErrorIs(t, store.Create(ctx, dup), auth.ErrUsernameTaken)

	got, err := store.GetByUsername(ctx, "ravi")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestShopUniquePerAccount(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	logger := testLogger()

	accountStore := auth.NewAccountStore(db, logger)
	account := &auth.Account{Username: "ravi", Name: "Ravi", PasswordHash: "hash"}
	require.NoError(t, accountStore.Create(ctx, account))

	shopStore := shop.NewStore(db, logger)
	first := &shop.Shop{ShopName: "Ravi Tailors", PhoneNumber: "9876543210"}
	require.NoError(t, shopStore.Create(ctx, account.ID, first))

	second := &shop.Shop{ShopName: "Another", PhoneNumber: "9876543211"}
	assert.ErrorIs(t, shopStore.Create(ctx, account.ID, second), shop.ErrShopExists)
}

func TestTenantIsolation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	logger := testLogger()

	accountStore := auth.NewAccountStore(db, logger)
	alice := &auth.Account{Username: "alice", Name: "Alice", PasswordHash: "hash"}
	bob := &auth.Account{Username: "bob", Name: "Bob", PasswordHash: "hash"}
	require.NoError(t, accountStore.Create(ctx, alice))
	require.NoError(t, accountStore.Create(ctx, bob))

	customerStore := customers.NewStore(db, logger)
	aliceCustomer := &customers.Customer{Name: "Anil", MobileNumber: "9876543210"}
	require.NoError(t, customerStore.Create(ctx, alice.ID, aliceCustomer))

	// Bob cannot see, fetch or delete Alice's customer.
	bobList, err := customerStore.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobList)

	_, err = customerStore.Get(ctx, bob.ID, aliceCustomer.ID)
	assert.ErrorIs(t, err, customers.ErrNotFound)

	err = customerStore.Delete(ctx, bob.ID, aliceCustomer.ID)
	assert.ErrorIs(t, err, customers.ErrNotFound)

	// And Bob cannot link an order to Alice's customer.
	orderStore := orders.NewStore(db, logger)
	order := &orders.Order{
		CustomerID:        aliceCustomer.ID,
		ClothType:         "Shirt",
		StitchingType:     "regular",
		MeasurementsGiven: "chest 40",
		NumberOfItems:     1,
		Charge:            500,
		DeliveryDate:      "2026-09-15",
	}
	assert.ErrorIs(t, orderStore.Create(ctx, bob.ID, order), orders.ErrCustomerNotFound)

	// Alice can.
	require.NoError(t, orderStore.Create(ctx, alice.ID, order))
	assert.NotZero(t, order.ID)

	_, err = orderStore.Get(ctx, bob.ID, order.ID)
	assert.ErrorIs(t, err, orders.ErrNotFound)

	got, err := orderStore.Get(ctx, alice.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-15", got.DeliveryDate)
	assert.Empty(t, got.ClothImageURLs)
}

func TestOrderUpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	logger := testLogger()

	accountStore := auth.NewAccountStore(db, logger)
	account := &auth.Account{Username: "ravi", Name: "Ravi", PasswordHash: "hash"}
	require.NoError(t, accountStore.Create(ctx, account))

	customerStore := customers.NewStore(db, logger)
	customer := &customers.Customer{Name: "Anil", MobileNumber: "9876543210"}
	require.NoError(t, customerStore.Create(ctx, account.ID, customer))

	orderStore := orders.NewStore(db, logger)
	order := &orders.Order{
		CustomerID:        customer.ID,
		ClothType:         "Shirt",
		StitchingType:     "regular",
		MeasurementsGiven: "chest 40",
		NumberOfItems:     1,
		Charge:            500,
		DeliveryDate:      "2026-09-15",
	}
	require.NoError(t, orderStore.Create(ctx, account.ID, order))

	charge := 750.0
	urls := []string{"https://cdn.example.com/a.jpg"}
	updated, err := orderStore.Update(ctx, account.ID, order.ID, orders.UpdateRequest{
		Charge:         &charge,
		ClothImageURLs: &urls,
	})
	require.NoError(t, err)
	assert.Equal(t, 750.0, updated.Charge)
	assert.Equal(t, urls, updated.ClothImageURLs)
	assert.Equal(t, "Shirt", updated.ClothType)

	require.NoError(t, orderStore.Delete(ctx, account.ID, order.ID))
	_, err = orderStore.Get(ctx, account.ID, order.ID)
	assert.ErrorIs(t, err, orders.ErrNotFound)
}
