package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.DBMaxConns != 10 {
		t.Fatalf("unexpected max conns %d", cfg.DBMaxConns)
	}
	if cfg.DBConnIdleTime != 5*time.Minute || cfg.DBConnLifetime != 30*time.Minute {
		t.Fatalf("unexpected pool tunables %v/%v", cfg.DBConnIdleTime, cfg.DBConnLifetime)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected shutdown timeout %v", cfg.ShutdownTimeout)
	}
	if cfg.Currency != "usd" {
		t.Fatalf("unexpected currency %q", cfg.Currency)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("DB_CONN_IDLE_SECONDS", "60")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")

	cfg := FromEnv()
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.DBMaxConns != 25 {
		t.Fatalf("unexpected max conns %d", cfg.DBMaxConns)
	}
	if cfg.DBConnIdleTime != time.Minute {
		t.Fatalf("unexpected idle time %v", cfg.DBConnIdleTime)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected shutdown timeout %v", cfg.ShutdownTimeout)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestFromEnvBadValuesFallBack(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "lots")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "soon")

	cfg := FromEnv()
	if cfg.DBMaxConns != 10 {
		t.Fatalf("unexpected max conns %d", cfg.DBMaxConns)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected shutdown timeout %v", cfg.ShutdownTimeout)
	}
}
