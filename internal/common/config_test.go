package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_DefaultPort(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("Storage.Backend default = %q, want memory", cfg.Storage.Backend)
	}
	if cfg.Valuation.AverageCost != "simple" || cfg.Valuation.IncludeClosedPositions {
		t.Errorf("Valuation default = %+v, want simple without closed positions", cfg.Valuation)
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("FOLIO_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_EODHDKeyEnvOverride(t *testing.T) {
	t.Setenv("EODHD_API_KEY", "from-env")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clients.EODHD.APIKey != "from-env" {
		t.Errorf("EODHD.APIKey = %q, want %q", cfg.Clients.EODHD.APIKey, "from-env")
	}
}

func TestConfig_ValuationEnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_AVERAGE_COST", "weighted")
	t.Setenv("FOLIO_INCLUDE_CLOSED_POSITIONS", "true")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Valuation.AverageCost != "weighted" {
		t.Errorf("AverageCost = %q, want weighted", cfg.Valuation.AverageCost)
	}
	if !cfg.Valuation.IncludeClosedPositions {
		t.Error("IncludeClosedPositions = false, want true")
	}
}

func TestLoadConfig_FilesMergeInOrder(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "folio.toml")
	local := filepath.Join(dir, "folio.local.toml")

	if err := os.WriteFile(base, []byte(`
environment = "staging"

[server]
port = 9000

[storage]
backend = "surrealdb"
address = "ws://db:8000/rpc"

[valuation]
average_cost = "weighted"
`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(local, []byte(`
[server]
port = 9100

[valuation]
include_closed_positions = true
`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(base, local, filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Environment != "staging" {
		t.Errorf("Environment = %q, want staging", cfg.Environment)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Storage.Backend != "surrealdb" || cfg.Storage.Address != "ws://db:8000/rpc" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Storage.Namespace != "folio" {
		t.Errorf("Storage.Namespace = %q, want default folio", cfg.Storage.Namespace)
	}
	if cfg.Valuation.AverageCost != "weighted" || !cfg.Valuation.IncludeClosedPositions {
		t.Errorf("Valuation = %+v", cfg.Valuation)
	}
}

func TestLoadConfig_RejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("[valuation]\naverage_cost = \"fifo\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for unknown average_cost")
	}
}

func TestConfig_ValidateProductionSecret(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Environment = "production"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for default jwt secret in production")
	}
	cfg.Auth.JWTSecret = "real-secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestConfig_DurationGetters(t *testing.T) {
	c := CacheConfig{TTL: "bogus"}
	if c.GetTTL() != 5*time.Minute {
		t.Errorf("GetTTL() = %v, want 5m", c.GetTTL())
	}
	e := EODHDConfig{Timeout: "5s"}
	if e.GetTimeout() != 5*time.Second {
		t.Errorf("GetTimeout() = %v, want 5s", e.GetTimeout())
	}
	srv := ServerConfig{ReadTimeout: "2s", ShutdownTimeout: "nope"}
	if srv.GetReadTimeout() != 2*time.Second {
		t.Errorf("GetReadTimeout() = %v, want 2s", srv.GetReadTimeout())
	}
	if srv.GetShutdownTimeout() != 10*time.Second {
		t.Errorf("GetShutdownTimeout() = %v, want 10s", srv.GetShutdownTimeout())
	}
	if srv.GetWriteTimeout() != 60*time.Second || srv.GetIdleTimeout() != 120*time.Second {
		t.Errorf("write/idle defaults = %v/%v", srv.GetWriteTimeout(), srv.GetIdleTimeout())
	}
	s := SchedulerConfig{}
	if s.GetPriceRefreshInterval() != 0 {
		t.Errorf("GetPriceRefreshInterval() = %v, want 0", s.GetPriceRefreshInterval())
	}
}
