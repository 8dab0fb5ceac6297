package clothtypes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
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

func TestStore_List(t *testing.T) {
	store, mock := newTestStore(t)

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(int64(1), "Pant").
		AddRow(int64(2), "Shirt")
	mock.ExpectQuery(`SELECT id, name FROM cloth_types`).WillReturnRows(rows)

	types, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "Pant", types[0].Name)
}

func TestStore_SeedIsIdempotent(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec(`INSERT INTO cloth_types`).
		WithArgs("Shirt").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO cloth_types`).
		WithArgs("Pant").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Seed(context.Background(), []string{"Shirt", "Pant"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cloth_types.yaml")
	content := "clothTypes:\n  - Shirt\n  - Pant\n  - Kurta\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	names, err := LoadSeedFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Shirt", "Pant", "Kurta"}, names)
}

func TestLoadSeedFile_Empty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("clothTypes: []\n"), 0o600))

	_, err := LoadSeedFile(path)
	assert.Error(t, err)
}

func TestHandlers_List(t *testing.T) {
	store, mock := newTestStore(t)
	handlers := NewHandlers(store, observability.NewLogger(observability.ErrorLevel, io.Discard))
	router := mux.NewRouter()
	handlers.RegisterRoutes(router)

	rows := sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Shirt")
	mock.ExpectQuery(`SELECT id, name FROM cloth_types`).WillReturnRows(rows)

	req := httptest.NewRequest(http.MethodGet, "/api/cloth-types", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Shirt")
}
