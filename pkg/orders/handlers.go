package orders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/gorilla/mux"

	"github.com/ratheeshkm/tailorhub/pkg/contextkeys"
	"github.com/ratheeshkm/tailorhub/pkg/httputil"
	"github.com/ratheeshkm/tailorhub/pkg/observability"
)

// maxImageSize bounds a single uploaded order photo.
const maxImageSize = 10 << 20

// ImageUploader stores an uploaded photo and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// Handlers serves the order endpoints. All routes sit behind the session
// gate.
type Handlers struct {
	store    *Store
	uploader ImageUploader
	logger   *observability.Logger
}

// NewHandlers creates the order HTTP handlers. uploader may be nil, in
// which case the image endpoint reports the feature unavailable.
func NewHandlers(store *Store, uploader ImageUploader, logger *observability.Logger) *Handlers {
	return &Handlers{store: store, uploader: uploader, logger: logger}
}

// RegisterRoutes mounts the order endpoints on the router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/orders", h.List).Methods(http.MethodGet)
	router.HandleFunc("/api/orders", h.Create).Methods(http.MethodPost)
	router.HandleFunc("/api/orders/{id:[0-9]+}", h.Get).Methods(http.MethodGet)
	router.HandleFunc("/api/orders/{id:[0-9]+}", h.Update).Methods(http.MethodPut)
	router.HandleFunc("/api/orders/{id:[0-9]+}", h.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/api/orders/{id:[0-9]+}/images", h.UploadImage).Methods(http.MethodPost)
}

// List handles GET /api/orders. An optional customerId query parameter
// narrows the list to one customer.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := contextkeys.AccountID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}

	customerID, err := httputil.ParseQueryInt(r, "customerId", 0)
	if err != nil {
		httputil.WriteBadRequest(w, "customerId must be an integer")
		return
	}

	orders, err := h.store.List(r.Context(), accountID, int64(customerID))
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("order list failed")
		httputil.WriteServiceUnavailable(w, "order list unavailable")
		return
	}
	httputil.WriteSuccess(w, orders)
}

// Create handles POST /api/orders. A customer id that belongs to another
// account gets the same 404 as one that does not exist.
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
		writeOrderValidationError(w, err)
		return
	}

	order := &Order{
		CustomerID:           req.CustomerID,
		ClothType:            req.ClothType,
		StitchingType:        req.StitchingType,
		MeasurementsGiven:    req.MeasurementsGiven,
		NumberOfItems:        req.NumberOfItems,
		Charge:               req.Charge,
		DeliveryDate:         req.DeliveryDate,
		Waist:                req.Waist,
		Length:               req.Length,
		ClothImageURLs:       req.ClothImageURLs,
		MeasurementImageURLs: req.MeasurementImageURLs,
	}
	if err := h.store.Create(r.Context(), accountID, order); err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			httputil.WriteNotFoundError(w, "customer not found")
			return
		}
		observability.FromContext(r.Context()).WithError(err).Error("order creation failed")
		httputil.WriteServiceUnavailable(w, "order creation unavailable")
		return
	}
	httputil.WriteCreated(w, order)
}

// Get handles GET /api/orders/{id}.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := contextkeys.AccountID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}
	orderID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	order, err := h.store.Get(r.Context(), accountID, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteNotFoundError(w, "order not found")
			return
		}
		observability.FromContext(r.Context()).WithError(err).Error("order lookup failed")
		httputil.WriteServiceUnavailable(w, "order lookup unavailable")
		return
	}
	httputil.WriteSuccess(w, order)
}

// Update handles PUT /api/orders/{id}. The customer link is fixed at
// creation; updates cannot move an order to another customer.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	accountID, ok := contextkeys.AccountID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}
	orderID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req UpdateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeOrderValidationError(w, err)
		return
	}

	order, err := h.store.Update(r.Context(), accountID, orderID, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteNotFoundError(w, "order not found")
			return
		}
		observability.FromContext(r.Context()).WithError(err).Error("order update failed")
		httputil.WriteServiceUnavailable(w, "order update unavailable")
		return
	}
	httputil.WriteSuccess(w, order)
}

// Delete handles DELETE /api/orders/{id}.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := contextkeys.AccountID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}
	orderID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), accountID, orderID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteNotFoundError(w, "order not found")
			return
		}
		observability.FromContext(r.Context()).WithError(err).Error("order deletion failed")
		httputil.WriteServiceUnavailable(w, "order deletion unavailable")
		return
	}
	httputil.WriteNoContent(w)
}

// UploadImage handles POST /api/orders/{id}/images. The multipart form
// carries the photo in the "image" field; the "kind" query parameter picks
// the list it is appended to (cloth or measurement).
func (h *Handlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	accountID, ok := contextkeys.AccountID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}
	orderID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	if h.uploader == nil {
		httputil.WriteServiceUnavailable(w, "image uploads not configured")
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind != "cloth" && kind != "measurement" {
		httputil.WriteBadRequest(w, "kind must be cloth or measurement")
		return
	}

	// Prove ownership before touching object storage.
	order, err := h.store.Get(r.Context(), accountID, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteNotFoundError(w, "order not found")
			return
		}
		observability.FromContext(r.Context()).WithError(err).Error("order lookup failed")
		httputil.WriteServiceUnavailable(w, "order lookup unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteBadRequest(w, "image file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" && contentType != "image/webp" {
		httputil.WriteBadRequest(w, "image must be jpeg, png or webp")
		return
	}

	key := fmt.Sprintf("orders/%d/%d/%s-%s", accountID, orderID, kind, path.Base(header.Filename))
	url, err := h.uploader.Upload(r.Context(), key, contentType, file, header.Size)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("image upload failed")
		httputil.WriteServiceUnavailable(w, "image upload unavailable")
		return
	}

	update := UpdateRequest{}
	if kind == "cloth" {
		urls := append(order.ClothImageURLs, url)
		update.ClothImageURLs = &urls
	} else {
		urls := append(order.MeasurementImageURLs, url)
		update.MeasurementImageURLs = &urls
	}

	updated, err := h.store.Update(r.Context(), accountID, orderID, update)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("order image update failed")
		httputil.WriteServiceUnavailable(w, "order update unavailable")
		return
	}
	httputil.WriteSuccess(w, updated)
}

func writeOrderValidationError(w http.ResponseWriter, err error) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		httputil.WriteDetailedError(w, http.StatusBadRequest, "validation failed", vErr.Fields)
		return
	}
	httputil.WriteBadRequest(w, err.Error())
}
