package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("SECRET_KEY", "test_secret")
	t.Setenv("ALPHA_VANTAGE_API_KEY", "demo")
	t.Setenv("QUOTE_CACHE_TTL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Env != EnvLocal {
		t.Errorf("Env = %q, want %q", cfg.Env, EnvLocal)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("HTTP.Port = %d, want 8080", cfg.HTTP.Port)
	}
	if cfg.Quotes.CacheTTL != 30*time.Second {
		t.Errorf("Quotes.CacheTTL = %v, want 30s", cfg.Quotes.CacheTTL)
	}
	if cfg.Portfolio.Store != StoreMemory {
		t.Errorf("Portfolio.Store = %q, want %q", cfg.Portfolio.Store, StoreMemory)
	}
	if cfg.Redis.Enabled() {
		t.Error("Redis.Enabled() = true without REDIS_ADDR")
	}
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("SECRET_KEY", "test_secret")
	t.Setenv("ALPHA_VANTAGE_API_KEY", "demo")
	t.Setenv("PORTFOLIO_STORE", "files")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for unknown PORTFOLIO_STORE")
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "stocks"}
	want := "host=db user=u password=p dbname=stocks port=5433 sslmode=disable TimeZone=UTC"
	if got := c.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	c.URL = "postgres://u:p@db/stocks"
	if got := c.DSN(); got != c.URL {
		t.Errorf("DSN() = %q, want DATABASE_URL %q", got, c.URL)
	}
}

func TestSQLiteDSN(t *testing.T) {
	c := DatabaseConfig{Driver: DriverSQLite, Host: "localhost", Port: 5432, User: "postgres", Password: "postgres", Name: "stocks"}
	if got := c.DSN(); got != "stocks.db" {
		t.Errorf("DSN() = %q, want %q", got, "stocks.db")
	}

	c.URL = "file::memory:?cache=shared"
	if got := c.DSN(); got != c.URL {
		t.Errorf("DSN() = %q, want DATABASE_URL %q", got, c.URL)
	}
}

func TestLoadSQLiteWithoutURL(t *testing.T) {
	t.Setenv("SECRET_KEY", "test_secret")
	t.Setenv("ALPHA_VANTAGE_API_KEY", "demo")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", "trader")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if got := cfg.Database.DSN(); got != "trader.db" {
		t.Errorf("Database.DSN() = %q, want %q", got, "trader.db")
	}
}
