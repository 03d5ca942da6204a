package config

import (
	"strings"
	"testing"
	"time"
)

func baseConfig() *Config {
	return &Config{
		ListenAddr:     ":8080",
		Env:            "development",
		DatabaseURL:    "postgres://localhost/denialdesk",
		SessionSecret:  "dev-secret",
		SessionTTL:     "2h",
		TokenIssuer:    "denialdesk",
		RateLimitRPS:   20,
		RateLimitBurst: 40,
		MaxUploadBytes: 16 << 20,
	}
}

func TestValidate(t *testing.T) {
	if err := baseConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	cfg := baseConfig()
	cfg.DatabaseURL = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestValidateRequiresSessionSecret(t *testing.T) {
	cfg := baseConfig()
	cfg.SessionSecret = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "SESSION_SECRET") {
		t.Fatalf("expected SESSION_SECRET error, got %v", err)
	}
}

func TestValidateProductionSecretLength(t *testing.T) {
	cfg := baseConfig()
	cfg.Env = "production"
	cfg.SessionSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short production secret")
	}
	cfg.SessionSecret = strings.Repeat("s", 32)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("32-byte secret rejected: %v", err)
	}
}

func TestSessionDuration(t *testing.T) {
	cfg := baseConfig()
	cfg.SessionTTL = "45m"
	d, err := cfg.SessionDuration()
	if err != nil {
		t.Fatalf("SessionDuration: %v", err)
	}
	if d != 45*time.Minute {
		t.Fatalf("duration=%v, want 45m", d)
	}
	cfg.SessionTTL = "soon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for bad TTL")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DENIALDESK_DATABASE_URL", "postgres://localhost/denialdesk_test")
	t.Setenv("DENIALDESK_SESSION_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("ListenAddr=%q, want :8080", cfg.ListenAddr)
	}
	if cfg.MaxUploadBytes != 16<<20 {
		t.Fatalf("MaxUploadBytes=%d, want 16MiB", cfg.MaxUploadBytes)
	}
	if cfg.IsProduction() {
		t.Fatal("default env must not be production")
	}
}
