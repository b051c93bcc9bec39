package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.IsProduction {
		t.Fatal("expected development mode by default")
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected default port: %q", cfg.Server.Port)
	}
	if cfg.Auth.SessionTTLHours != 24 {
		t.Fatalf("unexpected session TTL: %d", cfg.Auth.SessionTTLHours)
	}
	if cfg.Auth.RecoveryTTLSeconds != 900 {
		t.Fatalf("unexpected recovery TTL: %d", cfg.Auth.RecoveryTTLSeconds)
	}
	if cfg.Auth.JWTSecret == "" {
		t.Fatal("expected a development fallback JWT secret")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default development config should validate: %v", err)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_TTL_HOURS", "48")
	t.Setenv("RECOVERY_TTL_SECONDS", "600")
	t.Setenv("AWS_BUCKET_NAME", "flickster-media")

	cfg := Load()
	if cfg.Server.Port != "9090" {
		t.Fatalf("SERVER_PORT not honored: %q", cfg.Server.Port)
	}
	if cfg.Auth.SessionTTLHours != 48 {
		t.Fatalf("SESSION_TTL_HOURS not honored: %d", cfg.Auth.SessionTTLHours)
	}
	if cfg.Auth.RecoveryTTLSeconds != 600 {
		t.Fatalf("RECOVERY_TTL_SECONDS not honored: %d", cfg.Auth.RecoveryTTLSeconds)
	}
	if cfg.Storage.Bucket != "flickster-media" {
		t.Fatalf("AWS_BUCKET_NAME not honored: %q", cfg.Storage.Bucket)
	}
}

func productionConfig() *Config {
	cfg := Load()
	cfg.IsProduction = true
	cfg.Auth.JWTSecret = strings.Repeat("s", 32)
	cfg.Server.AllowOrigins = "https://flickster.example.com"
	cfg.Mail.Host = "smtp.example.com"
	cfg.Storage.Bucket = "flickster-media"
	cfg.Observability.MetricsEnabled = true
	cfg.Observability.MetricsToken = "metrics-token"
	return cfg
}

func TestValidateProduction(t *testing.T) {
	if err := productionConfig().Validate(); err != nil {
		t.Fatalf("complete production config should validate: %v", err)
	}
}

func TestValidateProductionRejectsShortSecret(t *testing.T) {
	cfg := productionConfig()
	cfg.Auth.JWTSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected short JWT secret to be rejected in production")
	}
}

func TestValidateProductionRejectsWildcardOrigins(t *testing.T) {
	cfg := productionConfig()
	cfg.Server.AllowOrigins = "*"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected wildcard origins to be rejected in production")
	}
}

func TestValidateProductionRequiresBucket(t *testing.T) {
	cfg := productionConfig()
	cfg.Storage.Bucket = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing bucket to be rejected in production")
	}
}

func TestValidateProductionRequiresMetricsToken(t *testing.T) {
	cfg := productionConfig()
	cfg.Observability.MetricsToken = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected metrics without token to be rejected in production")
	}
}

func TestValidateTTLFloors(t *testing.T) {
	cfg := Load()
	cfg.Auth.RecoveryTTLSeconds = 30
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected sub-minute recovery TTL to be rejected")
	}

	cfg = Load()
	cfg.Auth.SessionTTLHours = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected zero session TTL to be rejected")
	}
}

func TestValidateBadPort(t *testing.T) {
	cfg := Load()
	cfg.Server.Port = "not-a-port"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid port to be rejected")
	}
}
