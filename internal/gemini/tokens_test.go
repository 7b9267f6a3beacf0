package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lucianommartins/terminal-tutor/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierBoundaries(t *testing.T) {
	const limit = 1000000
	cases := []struct {
		tokens int
		want   UsageTier
	}{
		{0, TierSilent},
		{490000, TierSilent},  // 49%
		{500000, TierAdvisory}, // exactly 50%
		{790000, TierAdvisory}, // 79%
		{800000, TierUrgent},  // exactly 80%
		{950000, TierUrgent},  // 95%
		{1200000, TierUrgent}, // past the ceiling
	}
	for _, tc := range cases {
		tier, pct := Tier(tc.tokens, limit)
		assert.Equal(t, tc.want, tier, "tokens=%d (%.0f%%)", tc.tokens, pct)
	}
}

func TestTierZeroLimit(t *testing.T) {
	tier, pct := Tier(100, 0)
	assert.Equal(t, TierSilent, tier)
	assert.Zero(t, pct)
}

func TestCountSessionTokens(t *testing.T) {
	var hit bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		assert.Contains(t, r.URL.Path, ":countTokens")
		w.Write([]byte(`{"totalTokens":1234}`))
	}))
	defer srv.Close()

	sess := session.Open(t.TempDir(), "tok", 10)
	sess.RecordExchange("q", "a")

	c := New(Options{APIKey: "k", BaseURL: srv.URL, Session: sess})
	assert.Equal(t, 1234, c.CountSessionTokens(context.Background()))
	assert.True(t, hit)
}

func TestCountSessionTokensEmptySessionSkipsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty session")
	}))
	defer srv.Close()

	c := New(Options{APIKey: "k", BaseURL: srv.URL})
	assert.Zero(t, c.CountSessionTokens(context.Background()))
}

func TestCountSessionTokensFailureSentinel(t *testing.T) {
	sess := session.Open(t.TempDir(), "tok", 10)
	sess.RecordExchange("q", "a")

	// Non-200 response.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	c := New(Options{APIKey: "k", BaseURL: srv.URL, Session: sess})
	assert.Equal(t, TokenCountUnavailable, c.CountSessionTokens(context.Background()))
	srv.Close()

	// Unparseable body.
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("garbage"))
	}))
	c = New(Options{APIKey: "k", BaseURL: srv.URL, Session: sess})
	assert.Equal(t, TokenCountUnavailable, c.CountSessionTokens(context.Background()))
	srv.Close()

	// Dead server.
	c = New(Options{APIKey: "k", BaseURL: srv.URL, Session: sess})
	require.Equal(t, TokenCountUnavailable, c.CountSessionTokens(context.Background()))
}
