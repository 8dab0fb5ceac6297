// Package api assembles the HTTP server: routes, middleware chain and
// page handlers.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ratheeshkm/tailorhub/pkg/auth"
	"github.com/ratheeshkm/tailorhub/pkg/clothtypes"
	"github.com/ratheeshkm/tailorhub/pkg/customers"
	"github.com/ratheeshkm/tailorhub/pkg/httputil"
	"github.com/ratheeshkm/tailorhub/pkg/middleware"
	"github.com/ratheeshkm/tailorhub/pkg/observability"
	"github.com/ratheeshkm/tailorhub/pkg/orders"
	"github.com/ratheeshkm/tailorhub/pkg/shop"
)

// LoginLimiter throttles the login route. Both the in-memory and the
// Redis-backed limiter satisfy it.
type LoginLimiter interface {
	Handler(next http.Handler) http.Handler
}

// Deps are the wired components the server mounts. Everything is
// injected; the server owns no storage handles of its own.
type Deps struct {
	Auth         *auth.Handlers
	Shop         *shop.Handlers
	ShopService  *shop.Service
	Customers    *customers.Handlers
	Orders       *orders.Handlers
	ClothTypes   *clothtypes.Handlers
	Gate         *middleware.SessionGate
	LoginLimiter LoginLimiter
	Metrics      *observability.Metrics
	Logger       *observability.Logger
}

// Server is the assembled HTTP handler.
type Server struct {
	router  *mux.Router
	handler http.Handler
	deps    Deps
	logger  *observability.Logger
}

// NewServer builds the router and middleware chain. The gate wraps the
// whole router, so route handlers never see unauthenticated protected
// traffic.
func NewServer(deps Deps) *Server {
	s := &Server{
		router: mux.NewRouter(),
		deps:   deps,
		logger: deps.Logger,
	}
	s.setupRoutes()

	middlewares := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(deps.Logger),
		httputil.RecoveryMiddleware(deps.Logger),
	}
	if deps.Metrics != nil {
		middlewares = append(middlewares, observability.HTTPMetricsMiddleware(deps.Metrics))
	}
	middlewares = append(middlewares, deps.Gate.Handler)

	s.handler = httputil.Chain(middlewares...)(s.router)
	return s
}

func (s *Server) setupRoutes() {
	// The login route gets its own throttle; nothing else is rate
	// limited at this layer.
	loginHandler := http.Handler(http.HandlerFunc(s.deps.Auth.Login))
	if s.deps.LoginLimiter != nil {
		loginHandler = s.deps.LoginLimiter.Handler(loginHandler)
	}
	s.router.Handle("/api/auth/login", loginHandler).Methods(http.MethodPost)
	s.router.HandleFunc("/api/auth/signup", s.deps.Auth.Signup).Methods(http.MethodPost)
	s.router.HandleFunc("/api/auth/logout", s.deps.Auth.Logout).Methods(http.MethodPost)

	// Liveness for load balancers. Deep checks live on the health port.
	s.router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	s.deps.Shop.RegisterRoutes(s.router)
	s.deps.Customers.RegisterRoutes(s.router)
	s.deps.Orders.RegisterRoutes(s.router)
	s.deps.ClothTypes.RegisterRoutes(s.router)

	s.registerPages()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
