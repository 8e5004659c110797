package shared

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE", "")
	t.Setenv("CACHE_TTL_SECONDS", "")

	c := Load()
	if c.Store != "mysql" {
		t.Fatalf("default store: %q", c.Store)
	}
	if c.CacheTTL != 300*time.Second {
		t.Fatalf("default ttl: %v", c.CacheTTL)
	}
	if c.HTTPAddr != ":8080" {
		t.Fatalf("default addr: %q", c.HTTPAddr)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE", "memory")
	t.Setenv("SEED_WORKERS", "9")
	t.Setenv("ALS_RPS", "not-a-number")
	t.Setenv("MIGRATE_ON_START", "false")

	c := Load()
	if c.Store != "memory" || c.SeedWorkers != 9 || c.MigrateOnStart {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.ALSRPS != 5 {
		t.Fatalf("bad number should fall back to default, got %d", c.ALSRPS)
	}
}

func TestLoad_UnknownStoreFallsBack(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE", "sqlite")
	if c := Load(); c.Store != "mysql" {
		t.Fatalf("expected mysql fallback, got %q", c.Store)
	}
}
