package shop

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratheeshkm/tailorhub/pkg/auth"
	"github.com/ratheeshkm/tailorhub/pkg/observability"
)

type fakeShopStore struct {
	shops  map[int64]*Shop
	nextID int64
	gets   int
}

func newFakeShopStore() *fakeShopStore {
	return &fakeShopStore{shops: map[int64]*Shop{}, nextID: 1}
}

func (f *fakeShopStore) Create(_ context.Context, accountID int64, shop *Shop) error {
	if _, exists := f.shops[accountID]; exists {
		return ErrShopExists
	}
	shop.ID = f.nextID
	f.nextID++
	shop.AccountID = accountID
	shop.CreatedAt = time.Now()
	f.shops[accountID] = shop
	return nil
}

func (f *fakeShopStore) GetByAccountID(_ context.Context, accountID int64) (*Shop, error) {
	f.gets++
	shop, ok := f.shops[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	return shop, nil
}

type fakeAccountGetter struct {
	accounts map[int64]*auth.Account
}

func (f *fakeAccountGetter) GetByID(_ context.Context, id int64) (*auth.Account, error) {
	account, ok := f.accounts[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return account, nil
}

func newTestShopService(t *testing.T, store *fakeShopStore, accounts *fakeAccountGetter) *Service {
	t.Helper()
	svc, err := NewService(store, accounts, observability.NewLogger(observability.ErrorLevel, io.Discard))
	require.NoError(t, err)
	return svc
}

func accountFixture(id int64) *fakeAccountGetter {
	return &fakeAccountGetter{accounts: map[int64]*auth.Account{
		id: {ID: id, Username: "ravi", Name: "Ravi"},
	}}
}

func TestService_CreateAndGet(t *testing.T) {
	store := newFakeShopStore()
	svc := newTestShopService(t, store, accountFixture(1))
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateRequest{
		ShopName:    "Ravi Tailors",
		PhoneNumber: "9876543210",
		Address:     "12 Main Road",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ravi Tailors", got.ShopName)
}

func TestService_CreateSecondShopConflicts(t *testing.T) {
	store := newFakeShopStore()
	svc := newTestShopService(t, store, accountFixture(1))
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateRequest{ShopName: "First", PhoneNumber: "9876543210"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, 1, CreateRequest{ShopName: "Second", PhoneNumber: "9876543210"})
	assert.ErrorIs(t, err, ErrShopExists)
}

func TestService_CreateValidation(t *testing.T) {
	svc := newTestShopService(t, newFakeShopStore(), accountFixture(1))
	ctx := context.Background()

	tests := []struct {
		name  string
		req   CreateRequest
		field string
	}{
		{"missing name", CreateRequest{PhoneNumber: "9876543210"}, "shopName"},
		{"short phone", CreateRequest{ShopName: "S", PhoneNumber: "12345"}, "phoneNumber"},
		{"long phone", CreateRequest{ShopName: "S", PhoneNumber: "12345678901"}, "phoneNumber"},
		{"letters in phone", CreateRequest{ShopName: "S", PhoneNumber: "98765abcde"}, "phoneNumber"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, 1, tt.req)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, tt.field)
		})
	}
}

func TestService_StatusTransitions(t *testing.T) {
	store := newFakeShopStore()
	svc := newTestShopService(t, store, accountFixture(1))
	ctx := context.Background()

	status, err := svc.Status(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusNeedsShop, status)

	_, err = svc.Create(ctx, 1, CreateRequest{ShopName: "S", PhoneNumber: "9876543210"})
	require.NoError(t, err)

	status, err = svc.Status(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, status)
}

func TestService_StatusNoAccount(t *testing.T) {
	svc := newTestShopService(t, newFakeShopStore(), &fakeAccountGetter{accounts: map[int64]*auth.Account{}})

	status, err := svc.Status(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, StatusNoAccount, status)
}

func TestService_StatusIsCached(t *testing.T) {
	store := newFakeShopStore()
	svc := newTestShopService(t, store, accountFixture(1))
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateRequest{ShopName: "S", PhoneNumber: "9876543210"})
	require.NoError(t, err)

	_, err = svc.Status(ctx, 1)
	require.NoError(t, err)
	getsAfterFirst := store.gets

	for i := 0; i < 5; i++ {
		_, err = svc.Status(ctx, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, getsAfterFirst, store.gets)
}

func TestService_HasShop(t *testing.T) {
	store := newFakeShopStore()
	svc := newTestShopService(t, store, accountFixture(1))
	ctx := context.Background()

	has, err := svc.HasShop(ctx, 1)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = svc.Create(ctx, 1, CreateRequest{ShopName: "S", PhoneNumber: "9876543210"})
	require.NoError(t, err)

	has, err = svc.HasShop(ctx, 1)
	require.NoError(t, err)
	assert.True(t, has)
}
