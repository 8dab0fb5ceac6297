package customers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ratheeshkm/tailorhub/pkg/contextkeys"
	"github.com/ratheeshkm/tailorhub/pkg/httputil"
	"github.com/ratheeshkm/tailorhub/pkg/observability"
)

// Handlers serves the customer endpoints. All routes sit behind the
// session gate.
type Handlers struct {
	store   *Store
	metrics *observability.Metrics
	logger  *observability.Logger
}

// NewHandlers creates the customer HTTP handlers.
func NewHandlers(store *Store, metrics *observability.Metrics, logger *observability.Logger) *Handlers {
	return &Handlers{store: store, metrics: metrics, logger: logger}
}

// RegisterRoutes mounts the customer endpoints on the router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/customers", h.List).Methods(http.MethodGet)
	router.HandleFunc("/api/customers", h.Create).Methods(http.MethodPost)
	router.HandleFunc("/api/customers/{id:[0-9]+}", h.Get).Methods(http.MethodGet)
	router.HandleFunc("/api/customers/{id:[0-9]+}", h.Delete).Methods(http.MethodDelete)
}

// List handles GET /api/customers.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := contextkeys.AccountID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}

	customers, err := h.store.List(r.Context(), accountID)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("customer list failed")
		httputil.WriteServiceUnavailable(w, "customer list unavailable")
		return
	}
	httputil.WriteSuccess(w, customers)
}

// Create handles POST /api/customers.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := contextkeys.AccountID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}

	var req CreateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			httputil.WriteDetailedError(w, http.StatusBadRequest, "validation failed", vErr.Fields)
			return
		}
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	customer := &Customer{
		Name:         req.Name,
		MobileNumber: req.MobileNumber,
		Address:      req.Address,
	}
	if err := h.store.Create(r.Context(), accountID, customer); err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("customer creation failed")
		httputil.WriteServiceUnavailable(w, "customer creation unavailable")
		return
	}
	httputil.WriteCreated(w, customer)
}

// Get handles GET /api/customers/{id}.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := contextkeys.AccountID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}
	customerID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	customer, err := h.store.Get(r.Context(), accountID, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteNotFoundError(w, "customer not found")
			return
		}
		observability.FromContext(r.Context()).WithError(err).Error("customer lookup failed")
		httputil.WriteServiceUnavailable(w, "customer lookup unavailable")
		return
	}
	httputil.WriteSuccess(w, customer)
}

// Delete handles DELETE /api/customers/{id}.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := contextkeys.AccountID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}
	customerID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), accountID, customerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteNotFoundError(w, "customer not found")
			return
		}
		observability.FromContext(r.Context()).WithError(err).Error("customer deletion failed")
		httputil.WriteServiceUnavailable(w, "customer deletion unavailable")
		return
	}
	httputil.WriteNoContent(w)
}
