package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "gemini-3-flash-preview", cfg.Model)
	assert.Equal(t, "en-us", cfg.Language)
	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.Gemini.BaseURL)
	assert.Equal(t, 1000000, cfg.Gemini.TokenLimit)
	assert.Equal(t, 10, cfg.Session.MaxPairs)
	assert.True(t, cfg.History.IsEnabled())
	assert.Equal(t, 30*time.Second, cfg.Gemini.ParseConnectTimeout())
	assert.Equal(t, 120*time.Second, cfg.Gemini.ParseReadTimeout())
}

func TestParseTimeoutFallsBackOnGarbage(t *testing.T) {
	g := GeminiConfig{ConnectTimeout: "soon", ReadTimeout: ""}
	assert.Equal(t, 30*time.Second, g.ParseConnectTimeout())
	assert.Equal(t, 120*time.Second, g.ParseReadTimeout())
}

func TestMergeIntoConfig(t *testing.T) {
	cfg := DefaultConfig()

	src := map[string]any{
		"model": "gemini-3-pro-preview",
		"gemini": map[string]any{
			// JSONC comments are stripped before this point; the merge only
			// sees plain maps.
			"read_timeout": "90s",
		},
	}
	require.NoError(t, mergeIntoConfig(&cfg, src))

	assert.Equal(t, "gemini-3-pro-preview", cfg.Model)
	assert.Equal(t, 90*time.Second, cfg.Gemini.ParseReadTimeout())
	// Untouched sections keep their defaults after the deep merge.
	assert.Equal(t, "en-us", cfg.Language)
	assert.Equal(t, 30*time.Second, cfg.Gemini.ParseConnectTimeout())
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	t.Setenv("TT_MODEL", "gemini-env-model")
	t.Setenv("TT_LANGUAGE", "pt-br")

	cfg := DefaultConfig()
	applyEnvOverrides(&cfg)

	assert.Equal(t, "gemini-env-model", cfg.Model)
	assert.Equal(t, "pt-br", cfg.Language)
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	assert.Equal(t, "/home/tester/.tt", ExpandHome("~/.tt"))
	assert.Equal(t, "/etc/tt", ExpandHome("/etc/tt"))
}
