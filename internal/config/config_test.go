package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dating_scan_backend/internal/scoring"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: test
jwt:
  secret: test-secret
storage:
  type: minio
database:
  driver: sqlite
  path: test.db
`)
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got, want := cfg.Scoring.Engine(), scoring.DefaultConfig(); got != want {
		t.Fatalf("scoring = %+v, want %+v", got, want)
	}
	if got := cfg.Retake.Cooldown(); got != 30*24*time.Hour {
		t.Fatalf("cooldown = %v, want 30 days", got)
	}
	if cfg.JWT.ExpireTime != 24*time.Hour {
		t.Fatalf("jwt expiry = %v, want 24h", cfg.JWT.ExpireTime)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("port = %q, want default 8080", cfg.Server.Port)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: test
jwt:
  secret: test-secret
storage:
  type: minio
scoring:
  secondary_band: 15
  max_secondary: 2
retake:
  cooldown_days: 0
`)
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Scoring.SecondaryBand != 15 || cfg.Scoring.MaxSecondary != 2 {
		t.Fatalf("scoring = %+v", cfg.Scoring)
	}
	if cfg.Retake.Cooldown() != 0 {
		t.Fatalf("cooldown = %v, want 0", cfg.Retake.Cooldown())
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port = %q, want env override 9090", cfg.Server.Port)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero top n", "jwt:\n  secret: s\nstorage:\n  type: minio\nscoring:\n  blindspot_top_n: 0\n"},
		{"band above 100", "jwt:\n  secret: s\nstorage:\n  type: minio\nscoring:\n  secondary_band: 120\n"},
		{"unknown driver", "jwt:\n  secret: s\nstorage:\n  type: minio\ndatabase:\n  driver: postgres\n"},
		{"missing secret", "storage:\n  type: minio\n"},
		{"short release secret", "server:\n  mode: release\njwt:\n  secret: short\nstorage:\n  type: minio\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.body)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}
