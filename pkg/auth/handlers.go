package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ratheeshkm/tailorhub/pkg/httputil"
	"github.com/ratheeshkm/tailorhub/pkg/observability"
)

// ShopChecker reports whether an account has completed shop setup. The
// login response carries this flag so the client can route straight to
// setup or to the dashboard.
type ShopChecker interface {
	HasShop(ctx context.Context, accountID int64) (bool, error)
}

// Handlers serves the authentication endpoints.
type Handlers struct {
	service      *Service
	codec        *Codec
	shops        ShopChecker
	tokenTTL     time.Duration
	cookieSecure bool
	metrics      *observability.Metrics
	logger       *observability.Logger
}

// NewHandlers creates the auth HTTP handlers.
func NewHandlers(service *Service, codec *Codec, shops ShopChecker, tokenTTL time.Duration, cookieSecure bool, metrics *observability.Metrics, logger *observability.Logger) *Handlers {
	return &Handlers{
		service:      service,
		codec:        codec,
		shops:        shops,
		tokenTTL:     tokenTTL,
		cookieSecure: cookieSecure,
		metrics:      metrics,
		logger:       logger,
	}
}

// RegisterRoutes mounts the auth endpoints on the router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/auth/signup", h.Signup).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", h.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/logout", h.Logout).Methods(http.MethodPost)
}

// Signup handles POST /api/auth/signup. A successful signup does not log
// the account in; the client must follow up with a login call.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	account, err := h.service.Signup(r.Context(), req)
	if err != nil {
		h.recordAuthAttempt("signup", "failure")
		var vErr *ValidationError
		switch {
		case errors.As(err, &vErr):
			httputil.WriteDetailedError(w, http.StatusBadRequest, "validation failed", vErr.Fields)
		case errors.Is(err, ErrUsernameTaken):
			httputil.WriteConflict(w, "username already taken")
		default:
			observability.FromContext(r.Context()).WithError(err).Error("signup failed")
			httputil.WriteServiceUnavailable(w, "account creation unavailable")
		}
		return
	}

	h.recordAuthAttempt("signup", "success")
	httputil.WriteCreated(w, map[string]interface{}{
		"id":       account.ID,
		"username": account.Username,
		"name":     account.Name,
	})
}

// Login handles POST /api/auth/login. On success it sets the session
// cookie and reports whether the account has finished shop setup.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	account, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.recordAuthAttempt("login", "failure")
		if errors.Is(err, ErrAuthFailed) {
			httputil.WriteUnauthorized(w, "invalid credentials")
			return
		}
		observability.FromContext(r.Context()).WithError(err).Error("login failed")
		httputil.WriteServiceUnavailable(w, "login unavailable")
		return
	}

	token, err := h.codec.Issue(account.ID, h.tokenTTL)
	if err != nil {
		h.recordAuthAttempt("login", "failure")
		observability.FromContext(r.Context()).WithError(err).Error("token issuance failed")
		httputil.WriteServiceUnavailable(w, "login unavailable")
		return
	}

	hasShop := false
	if h.shops != nil {
		hasShop, err = h.shops.HasShop(r.Context(), account.ID)
		if err != nil {
			// The login itself succeeded; default the flag rather than
			// failing the whole request.
			observability.FromContext(r.Context()).WithError(err).Warn("shop lookup failed during login")
			hasShop = false
		}
	}

	http.SetCookie(w, h.sessionCookie(token, int(h.tokenTTL.Seconds())))
	h.recordAuthAttempt("login", "success")
	httputil.WriteSuccess(w, map[string]interface{}{
		"id":       account.ID,
		"username": account.Username,
		"name":     account.Name,
		"hasShop":  hasShop,
	})
}

// Logout handles POST /api/auth/logout. It clears the client cookie; the
// token itself stays valid until expiry because there is no server-side
// session state to revoke.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	httputil.WriteSuccess(w, map[string]interface{}{"loggedOut": true})
}

func (h *Handlers) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (h *Handlers) recordAuthAttempt(operation, result string) {
	if h.metrics != nil {
		h.metrics.AuthAttemptsTotal.WithLabelValues(operation, result).Inc()
	}
}
