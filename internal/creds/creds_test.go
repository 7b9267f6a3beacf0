package creds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestAPIKeyResolutionOrder(t *testing.T) {
	keyring.MockInit()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("GEMINI_API_KEY", "")

	assert.Empty(t, APIKey(), "no source configured")

	// File is the last fallback.
	path := keyFilePath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("file-key\n"), 0o600))
	assert.Equal(t, "file-key", APIKey())

	// Environment wins over the file.
	t.Setenv("GEMINI_API_KEY", "env-key")
	assert.Equal(t, "env-key", APIKey())

	// Keyring wins over everything.
	require.NoError(t, StoreAPIKey("ring-key"))
	assert.Equal(t, "ring-key", APIKey())
}

func TestPreferences(t *testing.T) {
	keyring.MockInit()

	assert.Empty(t, Preference("model"))

	require.NoError(t, StorePreference("model", "gemini-3-pro-preview"))
	assert.Equal(t, "gemini-3-pro-preview", Preference("model"))

	DeletePreference("model")
	assert.Empty(t, Preference("model"))

	// Deleting again is a no-op.
	DeletePreference("model")
}
