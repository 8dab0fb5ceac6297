package middleware

import (
	"net/http"
	"strings"

	"github.com/ratheeshkm/tailorhub/pkg/auth"
	"github.com/ratheeshkm/tailorhub/pkg/contextkeys"
	"github.com/ratheeshkm/tailorhub/pkg/httputil"
	"github.com/ratheeshkm/tailorhub/pkg/observability"
)

// TokenVerifier checks a session token and returns the account id it was
// issued for. The gate depends on this narrow surface only; it never
// touches storage.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// DefaultPublicPaths are the routes reachable without a session. "/" is
// matched exactly; every other entry matches itself and any subpath.
var DefaultPublicPaths = []string{
	"/",
	"/login",
	"/signup",
	"/api/auth/login",
	"/api/auth/signup",
	"/api/auth/logout",
	"/api/health",
	"/static",
	"/favicon.ico",
}

// SessionGate authenticates every request before routing. Protected API
// requests without a valid token get 401; protected page requests get a
// redirect to the login page. Authenticated requests continue with the
// account id in the request context.
type SessionGate struct {
	verifier    TokenVerifier
	publicPaths []string
	loginPath   string
	metrics     *observability.Metrics
	logger      *observability.Logger
}

// NewSessionGate creates the gate. publicPaths may be nil to use
// DefaultPublicPaths.
func NewSessionGate(verifier TokenVerifier, publicPaths []string, metrics *observability.Metrics, logger *observability.Logger) *SessionGate {
	if publicPaths == nil {
		publicPaths = DefaultPublicPaths
	}
	return &SessionGate{
		verifier:    verifier,
		publicPaths: publicPaths,
		loginPath:   "/login",
		metrics:     metrics,
		logger:      logger,
	}
}

// Handler wraps the router with the session check.
func (g *SessionGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isAPI := strings.HasPrefix(r.URL.Path, "/api/")

		if g.isPublic(r.URL.Path) {
			g.recordDecision(isAPI, "public")
			next.ServeHTTP(w, r)
			return
		}

		// Protected responses carry per-session data and must never be
		// served from a shared cache.
		w.Header().Set("Cache-Control", "no-store")

		accountID, ok := g.authenticate(r)
		if !ok {
			g.recordDecision(isAPI, "denied")
			if isAPI {
				httputil.WriteUnauthorized(w, "authentication required")
			} else {
				http.Redirect(w, r, g.loginPath, http.StatusFound)
			}
			return
		}

		g.recordDecision(isAPI, "allowed")
		ctx := contextkeys.WithAccountID(r.Context(), accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// isPublic reports whether the path needs no session. The root path is an
// exact match so that, for example, "/customers" is not public; other
// entries cover themselves and their subpaths.
func (g *SessionGate) isPublic(path string) bool {
	for _, public := range g.publicPaths {
		if public == "/" {
			if path == "/" {
				return true
			}
			continue
		}
		if path == public || strings.HasPrefix(path, public+"/") {
			return true
		}
	}
	return false
}

// authenticate extracts and verifies the session cookie. A missing cookie
// and an invalid token are handled identically.
func (g *SessionGate) authenticate(r *http.Request) (int64, bool) {
	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return 0, false
	}
	accountID, err := g.verifier.Verify(cookie.Value)
	if err != nil {
		return 0, false
	}
	return accountID, true
}

func (g *SessionGate) recordDecision(isAPI bool, decision string) {
	if g.metrics == nil {
		return
	}
	kind := "page"
	if isAPI {
		kind = "api"
	}
	g.metrics.GateDecisionsTotal.WithLabelValues(kind, decision).Inc()
}
