package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/headcount-lab/headcount/internal/cache"
)

// isolate points .env lookups at an empty temp dir so the developer's own
// .env never leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	prev := DotEnvPath
	DotEnvPath = filepath.Join(root, ".env")
	t.Cleanup(func() { DotEnvPath = prev })
	return root
}

func writeConfig(t *testing.T, root, body string) string {
	t.Helper()
	cfgPath := filepath.Join(root, "headcount.yaml")
	requireNoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))
	return cfgPath
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	requireNoError(t, err)

	if cfg.Database.Type != "postgres" {
		t.Fatalf("expected postgres default, got %q", cfg.Database.Type)
	}
	if cfg.Database.RetryAttempts != 3 || cfg.Database.RetryDelay != 500*time.Millisecond {
		t.Fatalf("unexpected retry defaults: %d / %s", cfg.Database.RetryAttempts, cfg.Database.RetryDelay)
	}
	if cfg.Aggregation.RunAt != "03:00" || !cfg.Aggregation.RunOnStart {
		t.Fatalf("unexpected aggregation defaults: %+v", cfg.Aggregation)
	}
	if cfg.Cache.LiveTTL != 60*time.Second || cfg.Cache.TTL.RangeStats != 300*time.Second {
		t.Fatalf("unexpected cache defaults: %+v", cfg.Cache)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC, got %s", cfg.Location())
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	root := isolate(t)
	cfgPath := writeConfig(t, root, `
server:
  port: 9090
  mode: "debug"
database:
  type: "sqlite"
  dsn: "./data/headcount.db"
aggregation:
  run_at: "04:30"
cache:
  ttl:
    range_stats: "10m"
timezone: "Europe/Berlin"
`)

	t.Setenv("HEADCOUNT_SERVER__PORT", "7070")
	t.Setenv("HEADCOUNT_CACHE__LIVE_TTL", "15s")

	cfg, err := Load(cfgPath)
	requireNoError(t, err)

	if cfg.Server.Port != 7070 {
		t.Fatalf("env should override file port, got %d", cfg.Server.Port)
	}
	if cfg.Database.Type != "sqlite" || cfg.Aggregation.RunAt != "04:30" {
		t.Fatalf("file values not applied: %+v %+v", cfg.Database, cfg.Aggregation)
	}
	if cfg.Location().String() != "Europe/Berlin" {
		t.Fatalf("unexpected zone %s", cfg.Location())
	}

	policy := cfg.Cache.Policy()
	if policy.TTLs[cache.KindRangeStats] != 10*time.Minute {
		t.Fatalf("unexpected range ttl %s", policy.TTLs[cache.KindRangeStats])
	}
	if policy.LiveTTL != 15*time.Second {
		t.Fatalf("unexpected live ttl %s", policy.LiveTTL)
	}
}

func TestLoad_DotEnvFillsUnsetVariables(t *testing.T) {
	root := isolate(t)
	requireNoError(t, os.WriteFile(DotEnvPath, []byte("HEADCOUNT_TIMEZONE=Asia/Tokyo\nHEADCOUNT_SERVER__HOST=127.0.0.1\n"), 0o644))
	t.Setenv("HEADCOUNT_SERVER__HOST", "10.0.0.1")
	// godotenv sets process variables; make sure they do not outlive the test.
	t.Setenv("HEADCOUNT_TIMEZONE", "")
	requireNoError(t, os.Unsetenv("HEADCOUNT_TIMEZONE"))

	cfg, err := Load(writeConfig(t, root, "{}"))
	requireNoError(t, err)

	if cfg.Location().String() != "Asia/Tokyo" {
		t.Fatalf("expected zone from .env, got %s", cfg.Location())
	}
	if cfg.Server.Host != "10.0.0.1" {
		t.Fatalf("process env should win over .env, got %q", cfg.Server.Host)
	}
}

func TestLoad_InvalidValuesFailStartup(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"server port", "server:\n  port: -1\n", "invalid server.port"},
		{"database type", "database:\n  type: \"mysql\"\n", "unsupported database.type"},
		{"run at", "aggregation:\n  run_at: \"3am\"\n", "aggregation.run_at"},
		{"batch size", "aggregation:\n  mark_batch_size: 0\n", "aggregation.mark_batch_size"},
		{"cache ttl", "cache:\n  ttl:\n    daily_rollups: \"0s\"\n", "cache.ttl.daily_rollups"},
		{"timezone", "timezone: \"Mars/Olympus\"\n", "invalid timezone"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := isolate(t)
			_, err := Load(writeConfig(t, root, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected %q error, got %v", tc.wantErr, err)
			}
		})
	}
}

func requireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
