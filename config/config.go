// Package config loads the server tuning settings: flood-control
// limits and the catch-up bookkeeping lifetime. Settings come from an
// optional JSON file; absent fields keep their defaults, so a partial
// file only overrides what it names.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/openboard/sketchd/room"
	"github.com/openboard/sketchd/session"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the tunable surface of the server.
type Settings struct {
	// RateThreshold is the number of inbound frames allowed per window.
	RateThreshold int `json:"rate_threshold"`
	// RateWindowSeconds is the flood-control window length.
	RateWindowSeconds int `json:"rate_window_seconds"`
	// BulkInitTTLSeconds bounds a joiner's catch-up bookkeeping.
	BulkInitTTLSeconds int `json:"bulk_init_ttl_seconds"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		RateThreshold:      session.DefaultRateThreshold,
		RateWindowSeconds:  int(session.DefaultRateWindow / time.Second),
		BulkInitTTLSeconds: int(room.DefaultBulkInitTTL / time.Second),
	}
}

// Load reads settings from a JSON file, overlaying the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse settings file: %w", err)
	}
	if err := s.validate(); err != nil {
		return s, err
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.RateThreshold <= 0 {
		return fmt.Errorf("%w: rate_threshold must be positive", ErrInvalidSettings)
	}
	if s.RateWindowSeconds <= 0 {
		return fmt.Errorf("%w: rate_window_seconds must be positive", ErrInvalidSettings)
	}
	if s.BulkInitTTLSeconds <= 0 {
		return fmt.Errorf("%w: bulk_init_ttl_seconds must be positive", ErrInvalidSettings)
	}
	return nil
}

// RateWindow returns the flood-control window as a duration.
func (s Settings) RateWindow() time.Duration {
	return time.Duration(s.RateWindowSeconds) * time.Second
}

// BulkInitTTL returns the catch-up bookkeeping lifetime as a duration.
func (s Settings) BulkInitTTL() time.Duration {
	return time.Duration(s.BulkInitTTLSeconds) * time.Second
}
