// Package creds resolves and stores the API key and user preferences. The
// OS keyring is the primary backend; the API key additionally falls back to
// the GEMINI_API_KEY environment variable and a plain config file for
// environments without a keyring daemon. This package only decides where
// values live, never what they mean.
package creds

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const service = "terminal-tutor"

// APIKey returns the configured API key, or empty if none is available.
// Resolution order: keyring, GEMINI_API_KEY, ~/.config/tt/api_key.
func APIKey() string {
	if key, err := keyring.Get(service, "api_key"); err == nil && key != "" {
		return key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	if data, err := os.ReadFile(keyFilePath()); err == nil {
		if key := strings.TrimSpace(string(data)); key != "" {
			return key
		}
	}
	return ""
}

// StoreAPIKey saves the key in the keyring, falling back to the owner-only
// config file when no keyring backend is available.
func StoreAPIKey(key string) error {
	if err := keyring.Set(service, "api_key", key); err == nil {
		return nil
	} else {
		slog.Debug("keyring unavailable, storing key in config file", "error", err)
	}

	path := keyFilePath()
	if path == "" {
		return fmt.Errorf("no keyring backend and no config directory available")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(key+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing API key file: %w", err)
	}
	return nil
}

// Preference returns a stored user preference (model, language), or empty.
func Preference(name string) string {
	value, err := keyring.Get(service, name)
	if err != nil {
		return ""
	}
	return value
}

// StorePreference saves a user preference in the keyring.
func StorePreference(name, value string) error {
	if err := keyring.Set(service, name, value); err != nil {
		return fmt.Errorf("storing %s: %w", name, err)
	}
	return nil
}

// DeletePreference removes a stored preference; a missing entry is fine.
func DeletePreference(name string) {
	if err := keyring.Delete(service, name); err != nil && err != keyring.ErrNotFound {
		slog.Debug("deleting preference failed", "name", name, "error", err)
	}
}

func keyFilePath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "tt", "api_key")
}
