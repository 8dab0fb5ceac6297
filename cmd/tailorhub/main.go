// Command tailorhub runs the tailor shop management server.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ratheeshkm/tailorhub/pkg/api"
	"github.com/ratheeshkm/tailorhub/pkg/auth"
	"github.com/ratheeshkm/tailorhub/pkg/clothtypes"
	"github.com/ratheeshkm/tailorhub/pkg/config"
	"github.com/ratheeshkm/tailorhub/pkg/customers"
	"github.com/ratheeshkm/tailorhub/pkg/images"
	"github.com/ratheeshkm/tailorhub/pkg/middleware"
	"github.com/ratheeshkm/tailorhub/pkg/observability"
	"github.com/ratheeshkm/tailorhub/pkg/orders"
	"github.com/ratheeshkm/tailorhub/pkg/shop"
	"github.com/ratheeshkm/tailorhub/pkg/storage/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tailorhub: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info("starting tailorhub")

	ctx := context.Background()

	otelProviders, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	db, err := postgres.Connect(ctx, postgres.ConnectionConfig{
		URL:      cfg.Storage.PostgresURL,
		MaxConns: cfg.Storage.PostgresMaxConns,
		MinConns: cfg.Storage.PostgresMinConns,
		Timeout:  cfg.Storage.PostgresTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("migrations applied")

	var redisClient *redis.Client
	if cfg.Storage.RedisURL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.RedisURL,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			// The limiter fails open, so a down Redis only degrades
			// login throttling.
			logger.WithError(err).Warn("redis unreachable at startup")
		}
	}

	var metrics *observability.Metrics
	registry := prometheus.NewRegistry()
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
	}

	codec, err := auth.NewCodec([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return err
	}

	accountStore := auth.NewAccountStore(db, logger)
	authService := auth.NewService(accountStore, cfg.Auth.BcryptCost, int(cfg.Auth.HashWorkers), logger)

	shopStore := shop.NewStore(db, logger)
	shopService, err := shop.NewService(shopStore, accountStore, logger)
	if err != nil {
		return err
	}

	customerStore := customers.NewStore(db, logger)
	orderStore := orders.NewStore(db, logger)
	clothTypeStore := clothtypes.NewStore(db, logger)

	if err := clothTypeStore.SeedFromFile(ctx, cfg.Storage.ClothTypeSeedFile); err != nil {
		return fmt.Errorf("failed to seed cloth types: %w", err)
	}

	var uploader orders.ImageUploader
	if cfg.Storage.S3Bucket != "" {
		s3Store, err := images.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
		uploader = s3Store
		logger.Infof("order images stored in bucket %s", cfg.Storage.S3Bucket)
	} else {
		logger.Warn("object storage not configured, image uploads disabled")
	}

	var loginLimiter api.LoginLimiter
	if redisClient != nil {
		loginLimiter = middleware.NewDistributedLoginRateLimitMiddleware(
			redisClient, cfg.Auth.LoginAttemptsPerMinute, logger)
	} else {
		inMemory := middleware.NewLoginRateLimitMiddleware(cfg.Auth.LoginAttemptsPerMinute)
		inMemory.StartCleanup(ctx)
		loginLimiter = inMemory
	}

	gate := middleware.NewSessionGate(codec, nil, metrics, logger)

	server := api.NewServer(api.Deps{
		Auth: auth.NewHandlers(authService, codec, shopService,
			cfg.Auth.TokenTTL, cfg.Auth.CookieSecure, metrics, logger),
		Shop:         shop.NewHandlers(shopService, logger),
		ShopService:  shopService,
		Customers:    customers.NewHandlers(customerStore, metrics, logger),
		Orders:       orders.NewHandlers(orderStore, uploader, logger),
		ClothTypes:   clothtypes.NewHandlers(clothTypeStore, logger),
		Gate:         gate,
		LoginLimiter: loginLimiter,
		Metrics:      metrics,
		Logger:       logger,
	})

	scheduler := startGaugeRefresher(ctx, metrics, db, logger,
		accountStore, shopStore, customerStore, orderStore)

	healthServer := startHealthServer(cfg, db, redisClient, registry, logger)

	var rootHandler http.Handler = server
	if otelProviders != nil {
		rootHandler = otelhttp.NewHandler(rootHandler, "tailorhub")
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      rootHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return healthServer.Shutdown(ctx)
	})
	if scheduler != nil {
		shutdown.RegisterShutdownFunc(func(context.Context) error {
			scheduler.Stop()
			return nil
		})
	}
	if otelProviders != nil {
		shutdown.RegisterShutdownFunc(otelProviders.Shutdown)
	}

	go func() {
		logger.Infof("listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("http server failed")
		}
	}()

	return shutdown.WaitForShutdown()
}

type counter interface {
	Count(ctx context.Context) (int64, error)
}

// startGaugeRefresher schedules a periodic refresh of the business gauges
// and database pool stats. Returns nil when metrics are disabled.
func startGaugeRefresher(ctx context.Context, metrics *observability.Metrics, db *sql.DB, logger *observability.Logger, accounts, shops, custs, ords counter) *cron.Cron {
	if metrics == nil {
		return nil
	}

	refresh := func() {
		refreshCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		gauges := []struct {
			name  string
			store counter
			gauge prometheus.Gauge
		}{
			{"accounts", accounts, metrics.AccountsTotal},
			{"shops", shops, metrics.ShopsTotal},
			{"customers", custs, metrics.CustomersTotal},
			{"orders", ords, metrics.OrdersTotal},
		}
		for _, g := range gauges {
			count, err := g.store.Count(refreshCtx)
			if err != nil {
				logger.WithError(err).Warnf("failed to refresh %s gauge", g.name)
				continue
			}
			g.gauge.Set(float64(count))
		}
		metrics.UpdateDBStats(db)
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 1m", refresh); err != nil {
		logger.WithError(err).Error("failed to schedule gauge refresh")
		return nil
	}
	scheduler.Start()
	refresh()
	return scheduler
}

// startHealthServer serves liveness, readiness and metrics on a separate
// port so probes bypass the session gate entirely.
func startHealthServer(cfg *config.Config, db *sql.DB, redisClient *redis.Client, registry *prometheus.Registry, logger *observability.Logger) *http.Server {
	health := observability.NewHealthChecker(db, redisClient)

	serveMux := http.NewServeMux()
	serveMux.HandleFunc("/healthz", health.Liveness)
	serveMux.HandleFunc("/readyz", health.Readiness)
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(serveMux, registry)
	}

	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: serveMux,
	}
	go func() {
		logger.Infof("health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("health server failed")
		}
	}()
	return healthServer
}
