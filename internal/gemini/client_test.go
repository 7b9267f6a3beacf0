package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lucianommartins/terminal-tutor/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockingBody(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":` + jsonString(text) + `}]}}]}`
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestGenerateContentSuccess(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Write([]byte(blockingBody("hello back")))
	}))
	defer srv.Close()

	c := New(Options{APIKey: "secret", Model: "gemini-3-flash-preview", BaseURL: srv.URL})
	text, err := c.GenerateContent(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello back", text)
	assert.Equal(t, "/v1beta/models/gemini-3-flash-preview:generateContent?key=secret", gotPath)

	var req generateRequest
	require.NoError(t, json.Unmarshal([]byte(gotBody), &req))
	require.Len(t, req.Contents, 1)
	assert.Equal(t, session.RoleUser, req.Contents[0].Role)
	assert.Equal(t, "hello", req.Contents[0].Text())
}

func TestGenerateContentCarriesAndCommitsHistory(t *testing.T) {
	var turns int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		turns = len(req.Contents)
		w.Write([]byte(blockingBody("reply")))
	}))
	defer srv.Close()

	dir := t.TempDir()
	sess := session.Open(dir, "ctx", 10)
	sess.RecordExchange("earlier question", "earlier answer")

	c := New(Options{APIKey: "k", BaseURL: srv.URL, Session: sess})
	_, err := c.GenerateContent(context.Background(), "follow-up")
	require.NoError(t, err)

	assert.Equal(t, 3, turns, "history plus the new user turn on the wire")

	h := session.Open(dir, "ctx", 10).History()
	require.Len(t, h, 4)
	assert.Equal(t, "follow-up", h[2].Text())
	assert.Equal(t, "reply", h[3].Text())
}

func TestGenerateContentProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	sess := session.Open(dir, "err", 10)
	c := New(Options{APIKey: "bad", BaseURL: srv.URL, Session: sess})

	_, err := c.GenerateContent(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error: HTTP 400")
	assert.Contains(t, err.Error(), "API key not valid")
	assert.Zero(t, sess.Len(), "failed calls never touch the session")
}

func TestGenerateContentProtocolErrorUnparseableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "<html>gateway timeout</html>", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Options{APIKey: "k", BaseURL: srv.URL})
	_, err := c.GenerateContent(context.Background(), "hi")
	require.Error(t, err)
	assert.EqualError(t, err, "API error: HTTP 502")
}

func TestGenerateContentInvalidStructure(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"candidates":[]}`,
		`{"candidates":[{"content":{"parts":[]}}]}`,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		c := New(Options{APIKey: "k", BaseURL: srv.URL})
		_, err := c.GenerateContent(context.Background(), "hi")
		srv.Close()
		require.Error(t, err, "body %s", body)
		assert.Contains(t, err.Error(), "invalid response structure")
	}
}

func TestGenerateContentParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := New(Options{APIKey: "k", BaseURL: srv.URL})
	_, err := c.GenerateContent(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing response")
}

func TestGenerateContentTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(Options{APIKey: "k", BaseURL: srv.URL})
	_, err := c.GenerateContent(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network error")
}

func TestValidateSkipsHistory(t *testing.T) {
	var turns int
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		turns = len(req.Contents)
		prompt = req.Contents[0].Text()
		w.Write([]byte(blockingBody("OK")))
	}))
	defer srv.Close()

	dir := t.TempDir()
	sess := session.Open(dir, "val", 10)
	sess.RecordExchange("q", "a")

	c := New(Options{APIKey: "k", BaseURL: srv.URL, Session: sess})
	require.NoError(t, c.Validate(context.Background()))

	assert.Equal(t, 1, turns, "validation is history-free")
	assert.Equal(t, "Respond with only the word OK", prompt)
	assert.Equal(t, 2, sess.Len(), "validation never commits turns")
}

func TestLanguageInstruction(t *testing.T) {
	cases := map[string]string{
		"en-us": "Respond in English.",
		"en":    "Respond in English.",
		"pt-br": "Respond in Portuguese (Brazilian).",
		"es":    "Respond in Spanish.",
		"fr-fr": "Respond in fr-fr.",
	}
	for lang, want := range cases {
		c := New(Options{Language: lang})
		assert.Equal(t, want, c.LanguageInstruction())
	}
}

func TestSmartQueryBlocking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		// The rendered prompt embeds the user request and the language directive.
		sent := req.Contents[len(req.Contents)-1].Text()
		assert.Contains(t, sent, "User request: list files by size")
		assert.Contains(t, sent, "Respond in English.")
		w.Write([]byte(blockingBody(`{"type":"execute","command":"ls -lS | head -1","explanation":"Sorts by size"}`)))
	}))
	defer srv.Close()

	c := New(Options{APIKey: "k", BaseURL: srv.URL})
	resp, err := c.SmartQuery(context.Background(), "list files by size")
	require.NoError(t, err)
	assert.Equal(t, KindExecute, resp.Kind)
	assert.Equal(t, "ls -lS | head -1", resp.Command)
}
