package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if !cfg.IsDev() {
		t.Error("IsDev should be true by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9999")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("TOKEN_SECRET", "override")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9999" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.DBHost != "db.internal" {
		t.Errorf("DBHost = %q", cfg.DBHost)
	}
	if cfg.TokenSecret != "override" {
		t.Errorf("TokenSecret = %q", cfg.TokenSecret)
	}
}

func TestLoadProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Error("expected error with default password in production")
	}

	t.Setenv("POSTGRES_PASSWORD", "real-password")
	if _, err := Load(); err == nil {
		t.Error("expected error with default token secret in production")
	}

	t.Setenv("TOKEN_SECRET", "real-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IsDev() {
		t.Error("IsDev should be false in production")
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost: "localhost", DBPort: "5432",
		DBUser: "techtrove", DBPassword: "pw", DBName: "techtrove",
	}
	want := "postgres://techtrove:pw@localhost:5432/techtrove?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestAddr(t *testing.T) {
	cfg := &Config{Host: "127.0.0.1", Port: "8080"}
	if got := cfg.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", got)
	}
}
