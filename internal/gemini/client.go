// Package gemini implements the interaction layer between tt and the
// generative-language service: blocking and streaming content generation,
// smart-response classification, and session token accounting. The service
// is treated as an opaque oracle: it may fail, return malformed text, or
// wrap its answers in prose. Every failure mode degrades to a typed
// result rather than a crash.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/lucianommartins/terminal-tutor/internal/session"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-3-flash-preview"
	// DefaultLanguage is the fallback response-language code.
	DefaultLanguage = "en-us"
	// DefaultBaseURL is the production service endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
)

// Options configures a Client. Zero values fall back to defaults; Session
// may be nil or anonymous for one-shot calls.
type Options struct {
	APIKey         string
	Model          string
	Language       string
	BaseURL        string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Session        *session.Store
}

// Client is an explicit value owning the service configuration, the
// transport, and the active session history. There is no global client
// state; construct one per invocation.
type Client struct {
	apiKey   string
	model    string
	language string
	baseURL  string
	session  *session.Store
	http     *http.Client
}

// New builds a Client from the given options.
func New(opts Options) *Client {
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	language := opts.Language
	if language == "" {
		language = DefaultLanguage
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 120 * time.Second
	}

	sess := opts.Session
	if sess == nil {
		sess = session.Open("", "", 0)
	}

	return &Client{
		apiKey:   opts.APIKey,
		model:    model,
		language: language,
		baseURL:  baseURL,
		session:  sess,
		http: &http.Client{
			Timeout: readTimeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   connectTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// Session returns the session store backing this client.
func (c *Client) Session() *session.Store { return c.session }

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Language returns the configured response-language code.
func (c *Client) Language() string { return c.language }

// LanguageInstruction maps the configured locale code to a response-language
// directive embedded in prompts.
func (c *Client) LanguageInstruction() string {
	switch c.language {
	case "en", "en-us":
		return "Respond in English."
	case "pt", "pt-br":
		return "Respond in Portuguese (Brazilian)."
	case "es", "es-es":
		return "Respond in Spanish."
	default:
		return "Respond in " + c.language + "."
	}
}

// Wire types. The same candidates[0].content.parts[0].text path applies to
// blocking responses and to individual streamed events.

type generateRequest struct {
	Contents []session.Turn `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []session.Part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type serviceError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// firstText extracts the candidate text from a decoded response, reporting
// whether the structure actually carried one.
func firstText(resp generateResponse) (string, bool) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", false
	}
	return resp.Candidates[0].Content.Parts[0].Text, true
}

func (c *Client) endpoint(method string) string {
	return c.baseURL + "/v1beta/models/" + c.model + ":" + method + "?key=" + url.QueryEscape(c.apiKey)
}

// GenerateContent sends a blocking request carrying the session history and
// returns the first candidate's text. On success the prompt/reply pair is
// committed to the session; failures never touch it.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, true)
}

// Validate sends a minimal history-free request to verify the key and model.
func (c *Client) Validate(ctx context.Context) error {
	_, err := c.generate(ctx, "Respond with only the word OK", false)
	return err
}

func (c *Client) generate(ctx context.Context, prompt string, useHistory bool) (string, error) {
	var history []session.Turn
	if useHistory {
		history = c.session.History()
	}
	contents := buildContents(history, prompt)

	body, err := json.Marshal(generateRequest{Contents: contents})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("generateContent"), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("network error: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", protocolError(resp.StatusCode, raw)
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}

	text, ok := firstText(decoded)
	if !ok {
		return "", errors.New("invalid response structure")
	}

	// Commit only after confirmed success, never speculatively.
	if useHistory {
		c.session.RecordExchange(prompt, text)
	}
	return text, nil
}

// protocolError builds the non-success status error, including the service's
// own error message when the body is parseable.
func protocolError(status int, body []byte) error {
	var svcErr serviceError
	if err := json.Unmarshal(body, &svcErr); err == nil && svcErr.Error.Message != "" {
		return fmt.Errorf("API error: HTTP %d - %s", status, svcErr.Error.Message)
	}
	return fmt.Errorf("API error: HTTP %d", status)
}
