package config

import (
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "https://lichen129.icu/iot" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 30 {
		t.Errorf("RequestTimeout = %d", cfg.RequestTimeout)
	}
	if cfg.HistoryLimit != 100 {
		t.Errorf("HistoryLimit = %d", cfg.HistoryLimit)
	}
	if cfg.StateDir == "" {
		t.Error("StateDir not defaulted")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("IOTDECK_API_URL", "http://localhost:8080")
	t.Setenv("IOTDECK_STATE_DIR", "/tmp/iotdeck-test")
	t.Setenv("IOTDECK_REQUEST_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8080" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 5 {
		t.Errorf("RequestTimeout = %d", cfg.RequestTimeout)
	}
	if got := cfg.CredentialsPath(); got != filepath.Join("/tmp/iotdeck-test", "credentials.json") {
		t.Errorf("CredentialsPath = %q", got)
	}
	if got := cfg.RulesPath(); got != filepath.Join("/tmp/iotdeck-test", "rules.json") {
		t.Errorf("RulesPath = %q", got)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("IOTDECK_HISTORY_LIMIT", "lots")
	if _, err := Load(); err == nil {
		t.Error("expected parse error")
	}
}
