package config

import (
	"testing"
	"time"

	"github.com/ratheeshkm/tailorhub/pkg/observability"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:       "8080",
			HealthPort: "9090",
		},
		Auth: AuthConfig{
			JWTSecret:   "test-secret",
			TokenTTL:    time.Hour,
			BcryptCost:  10,
			HashWorkers: 4,
		},
		Storage: StorageConfig{
			PostgresURL: "postgres://localhost:5432/tailorhub",
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestValidate_MissingSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.JWTSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing JWT secret")
	}
}

func TestValidate_MissingPostgresURL(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.PostgresURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing postgres URL")
	}
}

func TestValidate_PortCollision(t *testing.T) {
	cfg := validConfig()
	cfg.Server.HealthPort = cfg.Server.Port
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for colliding ports")
	}
}

func TestValidate_BcryptCostBounds(t *testing.T) {
	for _, cost := range []int{0, 3, 32} {
		cfg := validConfig()
		cfg.Auth.BcryptCost = cost
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected error for bcrypt cost %d", cost)
		}
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("TAILOR_JWT_SECRET", "env-secret")
	t.Setenv("TAILOR_POSTGRES_URL", "postgres://db:5432/app")
	t.Setenv("TAILOR_LOG_LEVEL", "debug")
	t.Setenv("TAILOR_TOKEN_TTL", "24h")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("expected JWT secret from env, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h TTL, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Observability.LogLevel != observability.DebugLevel {
		t.Errorf("expected debug log level")
	}
}

func TestLoadConfig_NoSecretFails(t *testing.T) {
	t.Setenv("TAILOR_JWT_SECRET", "")
	t.Setenv("TAILOR_POSTGRES_URL", "postgres://db:5432/app")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected LoadConfig to fail without a signing secret")
	}
}
