package config

import "time"

// Config is the top-level tt configuration.
type Config struct {
	Model    string        `json:"model"`
	Language string        `json:"language"`
	Gemini   GeminiConfig  `json:"gemini"`
	Session  SessionConfig `json:"session"`
	History  HistoryConfig `json:"history"`
}

// GeminiConfig controls the generative-language service transport.
type GeminiConfig struct {
	BaseURL        string `json:"base_url"`
	ConnectTimeout string `json:"connect_timeout"`
	ReadTimeout    string `json:"read_timeout"`
	TokenLimit     int    `json:"token_limit"`
}

// ParseConnectTimeout returns the connect timeout as a time.Duration.
func (g GeminiConfig) ParseConnectTimeout() time.Duration {
	d, err := time.ParseDuration(g.ConnectTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ParseReadTimeout returns the read timeout as a time.Duration.
func (g GeminiConfig) ParseReadTimeout() time.Duration {
	d, err := time.ParseDuration(g.ReadTimeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// SessionConfig holds persistent-session settings.
type SessionConfig struct {
	Dir      string `json:"dir"`
	MaxPairs int    `json:"max_pairs"`
}

// HistoryConfig holds executed-command ledger settings.
type HistoryConfig struct {
	Enabled *bool  `json:"enabled"`
	Path    string `json:"path"`
}

// IsEnabled returns whether the command ledger is enabled.
// Defaults to true when not explicitly set.
func (h HistoryConfig) IsEnabled() bool {
	if h.Enabled == nil {
		return true
	}
	return *h.Enabled
}

func boolPtr(b bool) *bool {
	return &b
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Model:    "gemini-3-flash-preview",
		Language: "en-us",
		Gemini: GeminiConfig{
			BaseURL:        "https://generativelanguage.googleapis.com",
			ConnectTimeout: "30s",
			ReadTimeout:    "120s",
			TokenLimit:     1000000,
		},
		Session: SessionConfig{
			Dir:      "~/.tt",
			MaxPairs: 10,
		},
		History: HistoryConfig{
			Enabled: boolPtr(true),
			Path:    "~/.local/share/tt/history.db",
		},
	}
}
