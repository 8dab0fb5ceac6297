// Package clothtypes serves the reference list of cloth types offered in
// order forms. The list is global, not per tenant, and is seeded from a
// YAML file at startup.
package clothtypes

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"

	"github.com/ratheeshkm/tailorhub/pkg/httputil"
	"github.com/ratheeshkm/tailorhub/pkg/observability"
)

// DefaultClothTypes seed the table when no seed file is configured.
var DefaultClothTypes = []string{
	"Shirt",
	"Pant",
	"Kurta",
	"Salwar",
	"Blouse",
	"Skirt",
	"Suit",
	"Churidar",
}

// ClothType is one entry in the reference list.
type ClothType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Store persists the cloth type list.
type Store struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewStore creates a cloth type store around an existing database handle.
func NewStore(db *sql.DB, logger *observability.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// List returns all cloth types in name order.
func (s *Store) List(ctx context.Context) ([]*ClothType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM cloth_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cloth types: %w", err)
	}
	defer rows.Close()

	types := []*ClothType{}
	for rows.Next() {
		ct := &ClothType{}
		if err := rows.Scan(&ct.ID, &ct.Name); err != nil {
			return nil, fmt.Errorf("failed to scan cloth type: %w", err)
		}
		types = append(types, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cloth types: %w", err)
	}
	return types, nil
}

// Seed inserts the given names, skipping ones already present. Run at
// startup; idempotent.
func (s *Store) Seed(ctx context.Context, names []string) error {
	for _, name := range names {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO cloth_types (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			name,
		); err != nil {
			return fmt.Errorf("failed to seed cloth type %q: %w", name, err)
		}
	}
	return nil
}

// SeedFromFile seeds from a YAML file, or from DefaultClothTypes when
// path is empty.
func (s *Store) SeedFromFile(ctx context.Context, path string) error {
	names := DefaultClothTypes
	if path != "" {
		loaded, err := LoadSeedFile(path)
		if err != nil {
			return err
		}
		names = loaded
	}
	return s.Seed(ctx, names)
}

type seedFile struct {
	ClothTypes []string `yaml:"clothTypes"`
}

// LoadSeedFile parses a YAML seed file of the form:
//
//	clothTypes:
//	  - Shirt
//	  - Pant
func LoadSeedFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var parsed seedFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if len(parsed.ClothTypes) == 0 {
		return nil, fmt.Errorf("seed file %s lists no cloth types", path)
	}
	return parsed.ClothTypes, nil
}

// Handlers serves the cloth type endpoint.
type Handlers struct {
	store  *Store
	logger *observability.Logger
}

// NewHandlers creates the cloth type HTTP handlers.
func NewHandlers(store *Store, logger *observability.Logger) *Handlers {
	return &Handlers{store: store, logger: logger}
}

// RegisterRoutes mounts the cloth type endpoint on the router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/cloth-types", h.List).Methods(http.MethodGet)
}

// List handles GET /api/cloth-types.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	types, err := h.store.List(r.Context())
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("cloth type list failed")
		httputil.WriteServiceUnavailable(w, "cloth type list unavailable")
		return
	}
	httputil.WriteSuccess(w, types)
}
