package config

import (
	"log/slog"
	"testing"
)

func TestLoadDatabaseDefaults(t *testing.T) {
	t.Setenv("DB_TYPE", "SQLITE")
	t.Setenv("DB_APP_DATABASE", "cubes.db")
	t.Setenv("DB_APP_USER", "")
	t.Setenv("CACHE_ENABLED", "")

	cfg, err := LoadDatabase()
	if err != nil {
		t.Fatalf("LoadDatabase failed: %v", err)
	}
	if cfg.DBType != "sqlite" {
		t.Errorf("Expected lower-cased DB type, got %q", cfg.DBType)
	}
	if !cfg.CacheEnabled {
		t.Error("Expected cache to be enabled by default")
	}
	if cfg.DBAppConnectionLimit != 5 {
		t.Errorf("Expected default connection limit 5, got %d", cfg.DBAppConnectionLimit)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("Expected info log level, got %v", cfg.SlogLevel())
	}
}

func TestLoadDatabaseRequiresUserForServers(t *testing.T) {
	t.Setenv("DB_TYPE", "mariadb")
	t.Setenv("DB_APP_DATABASE", "cubes")
	t.Setenv("DB_APP_USER", "")

	if _, err := LoadDatabase(); err == nil {
		t.Error("Expected error when DB_APP_USER is missing")
	}
}

func TestLoadRequiresAuthorizer(t *testing.T) {
	t.Setenv("DB_TYPE", "sqlite-pure")
	t.Setenv("DB_APP_DATABASE", ":memory:")
	t.Setenv("AUTHZ_URL", "")
	t.Setenv("AUTHZ_CLIENT_ID", "")

	if _, err := Load(); err == nil {
		t.Error("Expected error when AUTHZ_URL is missing")
	}

	t.Setenv("AUTHZ_URL", "http://localhost:9011")
	t.Setenv("AUTHZ_CLIENT_ID", "client")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("PORT", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CacheEnabled {
		t.Error("Expected cache to be disabled")
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("Expected debug log level, got %v", cfg.SlogLevel())
	}
	if cfg.Port != "3000" {
		t.Errorf("Expected default port 3000, got %q", cfg.Port)
	}
}
