// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ratheeshkm/tailorhub/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Auth          AuthConfig
	Storage       StorageConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	// JWTSecret signs session tokens. There is no fallback value; startup
	// fails when it is unset.
	JWTSecret string
	TokenTTL  time.Duration

	// BcryptCost is the bcrypt work factor for password hashing.
	BcryptCost int
	// HashWorkers bounds how many bcrypt operations may run concurrently.
	HashWorkers int64

	// CookieSecure marks the session cookie Secure (HTTPS-only deployments).
	CookieSecure bool

	// Login rate limiting (per client IP)
	LoginAttemptsPerMinute int
}

// StorageConfig holds record store and object store configuration
type StorageConfig struct {
	PostgresURL      string
	PostgresMaxConns int
	PostgresMinConns int
	PostgresTimeout  time.Duration

	// RedisURL enables the distributed login rate limiter when set.
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// S3-compatible object store for order images. Optional; image upload
	// endpoints return 503 when unconfigured.
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool

	// ClothTypeSeedFile seeds the cloth_types table when it is empty.
	ClothTypeSeedFile string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Auth:          loadAuthConfig(),
		Storage:       loadStorageConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("TAILOR_HOST", "0.0.0.0"),
		Port:            getEnv("TAILOR_PORT", "8080"),
		ReadTimeout:     getEnvDuration("TAILOR_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("TAILOR_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("TAILOR_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("TAILOR_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("TAILOR_HEALTH_PORT", "9090"),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:              os.Getenv("TAILOR_JWT_SECRET"),
		TokenTTL:               getEnvDuration("TAILOR_TOKEN_TTL", 7*24*time.Hour),
		BcryptCost:             getEnvInt("TAILOR_BCRYPT_COST", 10),
		HashWorkers:            int64(getEnvInt("TAILOR_HASH_WORKERS", 4)),
		CookieSecure:           getEnvBool("TAILOR_COOKIE_SECURE", false),
		LoginAttemptsPerMinute: getEnvInt("TAILOR_LOGIN_ATTEMPTS_PER_MINUTE", 10),
	}
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		PostgresURL:      getEnv("TAILOR_POSTGRES_URL", ""),
		PostgresMaxConns: getEnvInt("TAILOR_POSTGRES_MAX_CONNS", 20),
		PostgresMinConns: getEnvInt("TAILOR_POSTGRES_MIN_CONNS", 2),
		PostgresTimeout:  getEnvDuration("TAILOR_POSTGRES_TIMEOUT", 10*time.Second),

		RedisURL:      getEnv("TAILOR_REDIS_URL", ""),
		RedisPassword: getEnv("TAILOR_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("TAILOR_REDIS_DB", 0),

		S3Endpoint:     getEnv("TAILOR_S3_ENDPOINT", ""),
		S3Region:       getEnv("TAILOR_S3_REGION", "us-east-1"),
		S3Bucket:       getEnv("TAILOR_S3_BUCKET", ""),
		S3AccessKey:    getEnv("TAILOR_S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("TAILOR_S3_SECRET_KEY", ""),
		S3UsePathStyle: getEnvBool("TAILOR_S3_USE_PATH_STYLE", false),

		ClothTypeSeedFile: getEnv("TAILOR_CLOTH_TYPE_SEED_FILE", ""),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("TAILOR_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("TAILOR_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("TAILOR_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("TAILOR_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("TAILOR_OTEL_SERVICE_NAME", "tailorhub"),
		OTelServiceVersion: getEnv("TAILOR_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("TAILOR_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("TAILOR_JWT_SECRET is required; refusing to start with an empty signing secret")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31")
	}
	if c.Auth.HashWorkers < 1 {
		return fmt.Errorf("hash workers must be at least 1")
	}

	if c.Storage.PostgresURL == "" {
		return fmt.Errorf("TAILOR_POSTGRES_URL is required")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
