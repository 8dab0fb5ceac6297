package shop

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ratheeshkm/tailorhub/pkg/contextkeys"
	"github.com/ratheeshkm/tailorhub/pkg/httputil"
	"github.com/ratheeshkm/tailorhub/pkg/observability"
)

// Handlers serves the shop endpoints. All routes sit behind the session
// gate, so the account id is always present in the request context.
type Handlers struct {
	service *Service
	logger  *observability.Logger
}

// NewHandlers creates the shop HTTP handlers.
func NewHandlers(service *Service, logger *observability.Logger) *Handlers {
	return &Handlers{service: service, logger: logger}
}

// RegisterRoutes mounts the shop endpoints on the router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/shop", h.Get).Methods(http.MethodGet)
	router.HandleFunc("/api/shop", h.Create).Methods(http.MethodPost)
	router.HandleFunc("/api/shop/status", h.Status).Methods(http.MethodGet)
}

// Get handles GET /api/shop.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := contextkeys.AccountID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}

	shop, err := h.service.Get(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteNotFoundError(w, "shop not found")
			return
		}
		observability.FromContext(r.Context()).WithError(err).Error("shop lookup failed")
		httputil.WriteServiceUnavailable(w, "shop lookup unavailable")
		return
	}
	httputil.WriteSuccess(w, shop)
}

// Create handles POST /api/shop. The second create for the same account
// conflicts; shops are created once and edited never (there is no update
// endpoint yet).
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

	shop, err := h.service.Create(r.Context(), accountID, req)
	if err != nil {
		var vErr *ValidationError
		switch {
		case errors.As(err, &vErr):
			httputil.WriteDetailedError(w, http.StatusBadRequest, "validation failed", vErr.Fields)
		case errors.Is(err, ErrShopExists):
			httputil.WriteConflict(w, "shop already exists")
		default:
			observability.FromContext(r.Context()).WithError(err).Error("shop creation failed")
			httputil.WriteServiceUnavailable(w, "shop creation unavailable")
		}
		return
	}
	httputil.WriteCreated(w, shop)
}

// Status handles GET /api/shop/status.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	accountID, ok := contextkeys.AccountID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}

	status, err := h.service.Status(r.Context(), accountID)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("onboarding status lookup failed")
		httputil.WriteServiceUnavailable(w, "status lookup unavailable")
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"status": status})
}
