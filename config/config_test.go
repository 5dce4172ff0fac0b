package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write settings file: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	s := Default()
	if s.RateThreshold != 50 {
		t.Errorf("Expected default threshold 50, got %d", s.RateThreshold)
	}
	if s.RateWindow() != 10*time.Second {
		t.Errorf("Expected default window 10s, got %v", s.RateWindow())
	}
	if s.BulkInitTTL() != 10*time.Second {
		t.Errorf("Expected default TTL 10s, got %v", s.BulkInitTTL())
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s != Default() {
		t.Errorf("Expected defaults, got %+v", s)
	}
}

func TestLoadPartialFileOverlaysDefaults(t *testing.T) {
	path := writeSettings(t, `{"rate_threshold": 100}`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.RateThreshold != 100 {
		t.Errorf("Expected threshold 100, got %d", s.RateThreshold)
	}
	if s.RateWindowSeconds != Default().RateWindowSeconds {
		t.Errorf("Expected default window, got %d", s.RateWindowSeconds)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/non/existent/settings.json"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeSettings(t, "{not json")
	if _, err := Load(path); err == nil {
		t.Error("Expected error for unparseable file")
	}
}

func TestLoadRejectsNonPositiveValues(t *testing.T) {
	cases := []string{
		`{"rate_threshold": 0}`,
		`{"rate_window_seconds": -1}`,
		`{"bulk_init_ttl_seconds": 0}`,
	}
	for _, content := range cases {
		path := writeSettings(t, content)
		if _, err := Load(path); !errors.Is(err, ErrInvalidSettings) {
			t.Errorf("Settings %s: expected ErrInvalidSettings, got %v", content, err)
		}
	}
}
