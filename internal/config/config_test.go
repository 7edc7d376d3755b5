package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/panel_test")
	t.Setenv("ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.QueueAllocator != "rejection" {
		t.Errorf("expected default allocator rejection, got %s", cfg.QueueAllocator)
	}
	if cfg.QueueMax != 100 {
		t.Errorf("expected default queue max 100, got %d", cfg.QueueMax)
	}
	if cfg.PaymentTimeout != 10*time.Second {
		t.Errorf("expected default payment timeout 10s, got %s", cfg.PaymentTimeout)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("expected default token ttl 24h, got %s", cfg.TokenTTL)
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error for missing DATABASE_URL")
	}
}

func TestValidate_RequiresSecretsOutsideDev(t *testing.T) {
	cfg := &Config{Env: "production", QueueMax: 100, PaymentTimeout: 10 * time.Second}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing JWT_SECRET in production")
	}

	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing STRIPE_WEBHOOK_SECRET in production")
	}

	cfg.StripeWebhookSecret = "whsec_test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_Allocator(t *testing.T) {
	cfg := &Config{Env: "development", QueueMax: 100, PaymentTimeout: time.Second}

	for _, alloc := range []string{"", "rejection", "freelist"} {
		cfg.QueueAllocator = alloc
		if err := cfg.Validate(); err != nil {
			t.Errorf("allocator %q: unexpected error: %v", alloc, err)
		}
	}

	cfg.QueueAllocator = "roundrobin"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown allocator")
	}
}

func TestValidate_QueueMax(t *testing.T) {
	cfg := &Config{Env: "development", QueueMax: 0, PaymentTimeout: time.Second}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero QUEUE_MAX")
	}
}
