package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if !cfg.App.IsDev() {
		t.Fatalf("expected dev environment by default, got %q", cfg.App.Env)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Fatalf("unexpected API timeout %v", cfg.API.Timeout)
	}
	if cfg.Orders.PollInterval != 15*time.Second {
		t.Fatalf("unexpected poll interval %v", cfg.Orders.PollInterval)
	}

	fee, err := cfg.Checkout.FlatDeliveryFee()
	if err != nil {
		t.Fatalf("FlatDeliveryFee() error: %v", err)
	}
	if fee.String() != "50" {
		t.Fatalf("expected default delivery fee 50, got %s", fee)
	}

	registry, err := cfg.Checkout.PromoRegistry()
	if err != nil {
		t.Fatalf("PromoRegistry() error: %v", err)
	}
	rate, ok := registry["SHOP10"]
	if !ok {
		t.Fatal("expected SHOP10 in default registry")
	}
	if rate.String() != "0.1" {
		t.Fatalf("expected SHOP10 rate 0.1, got %s", rate)
	}
}

func TestLoadRejectsUnknownStorageDriver(t *testing.T) {
	t.Setenv(EnvStorageDriver, "papyrus")
	if _, err := Load(); err == nil {
		t.Fatal("expected unknown storage driver to fail")
	}
}

func TestPromoRegistryParsing(t *testing.T) {
	t.Parallel()
	cfg := CheckoutConfig{PromoCodes: "shop10:0.10, welcome5 : 0.05"}
	registry, err := cfg.PromoRegistry()
	if err != nil {
		t.Fatalf("PromoRegistry() error: %v", err)
	}
	if len(registry) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(registry))
	}
	if _, ok := registry["WELCOME5"]; !ok {
		t.Fatal("expected codes to be upper-cased")
	}

	cfg = CheckoutConfig{PromoCodes: "BROKEN:1.5"}
	if _, err := cfg.PromoRegistry(); err == nil {
		t.Fatal("expected out-of-range rate to fail")
	}

	cfg = CheckoutConfig{PromoCodes: "NORATE"}
	if _, err := cfg.PromoRegistry(); err == nil {
		t.Fatal("expected missing rate to fail")
	}
}
