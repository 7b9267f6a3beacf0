package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// TokenCountUnavailable is the sentinel returned when the token count could
// not be obtained. It is distinct from every valid count; callers must treat
// it as "skip the check", never as zero usage.
const TokenCountUnavailable = -1

// countTokensTimeout bounds the pre-flight token check so it never delays
// the actual query for long.
const countTokensTimeout = 10 * time.Second

type countTokensResponse struct {
	TotalTokens int `json:"totalTokens"`
}

// CountSessionTokens asks the service for the token cost of the current
// session history. An empty or anonymous session costs zero; any transport
// or parse failure yields TokenCountUnavailable.
func (c *Client) CountSessionTokens(ctx context.Context) int {
	history := c.session.History()
	if len(history) == 0 {
		return 0
	}

	body, err := json.Marshal(generateRequest{Contents: history})
	if err != nil {
		return TokenCountUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, countTokensTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("countTokens"), bytes.NewReader(body))
	if err != nil {
		return TokenCountUnavailable
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("token count request failed", "error", err)
		return TokenCountUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("token count request rejected", "status", resp.StatusCode)
		return TokenCountUnavailable
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return TokenCountUnavailable
	}
	var decoded countTokensResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return TokenCountUnavailable
	}
	return decoded.TotalTokens
}

// UsageTier grades session token usage against the hard ceiling.
type UsageTier int

const (
	// TierSilent: below 50%, nothing to report.
	TierSilent UsageTier = iota
	// TierAdvisory: 50% to just under 80%, suggest a new session soon.
	TierAdvisory
	// TierUrgent: 80% and above, recommend a new session now.
	TierUrgent
)

// Tier maps a token count to its usage tier and percentage against the
// limit. Band lower bounds are inclusive: exactly 50% is advisory, exactly
// 80% is urgent.
func Tier(tokens, limit int) (UsageTier, float64) {
	if limit <= 0 {
		return TierSilent, 0
	}
	pct := float64(tokens) / float64(limit) * 100
	switch {
	case pct >= 80:
		return TierUrgent, pct
	case pct >= 50:
		return TierAdvisory, pct
	default:
		return TierSilent, pct
	}
}
