package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadFromFileAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "kovoc.yaml")
	content := []byte("api:\n  base_url: https://example.com/api\n  timeout: 3s\nlearning:\n  option_count: 3\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("USER_ID", "learner-7")
	t.Setenv("DATABASE_DRIVER", "PostgreSQL")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "https://example.com/api" || cfg.API.Timeout != 3*time.Second {
		t.Fatalf("unexpected api config: %+v", cfg.API)
	}
	if cfg.Learning.OptionCount != 3 {
		t.Fatalf("expected option count 3, got %d", cfg.Learning.OptionCount)
	}
	if cfg.User.ID != "learner-7" {
		t.Fatalf("expected env user id, got %q", cfg.User.ID)
	}
	driver, err := cfg.DatabaseDriver()
	if err != nil || driver != "postgres" {
		t.Fatalf("DatabaseDriver() = %q, %v", driver, err)
	}
	if cfg.Log.Level != "info" || cfg.Server.Port != 8080 {
		t.Fatalf("defaults not applied: %+v %+v", cfg.Log, cfg.Server)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestDatabaseHelpers(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Driver: "mysql"}}
	if _, err := cfg.DatabaseDriver(); err == nil {
		t.Fatal("expected unsupported driver error")
	}
	if _, err := cfg.DatabaseURL(); err == nil {
		t.Fatal("expected missing dsn error")
	}
	cfg.Server = ServerConfig{Host: "0.0.0.0", Port: 9000}
	if got := cfg.ServerAddr(); got != "0.0.0.0:9000" {
		t.Fatalf("ServerAddr() = %q", got)
	}
}
