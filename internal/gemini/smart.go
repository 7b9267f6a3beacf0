package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lucianommartins/terminal-tutor/internal/prompts"
)

// Kind discriminates the active SmartResponse variant.
type Kind int

const (
	// KindExplain carries a plain-text answer for the user.
	KindExplain Kind = iota
	// KindExecute carries a shell command the user asked for.
	KindExecute
)

// SmartResponse is the classified intent of a model answer. Exactly one
// variant is active: Execute always carries a non-empty Command (Explanation
// optional), Explain always carries Text.
type SmartResponse struct {
	Kind        Kind
	Command     string
	Explanation string
	Text        string
}

// smartEnvelope is the JSON object the model is instructed to return.
type smartEnvelope struct {
	Type        string `json:"type"`
	Command     string `json:"command"`
	Explanation string `json:"explanation"`
	Response    string `json:"response"`
}

// ClassifySmartResponse interprets raw model output as an execute/explain
// intent. The output is expected to contain exactly one JSON envelope, but
// may be wrapped in prose or markdown fencing, so the envelope is located by
// the first '{' and last '}'. Nested unrelated braces fall through to the
// Explain fallback below.
//
// Unparseable output is never misclassified as executable: if no envelope
// can be located or parsed, the entire raw text becomes an Explain result.
// An explicit type outside {execute, explain} is a protocol violation by the
// service and is reported as an error, not downgraded.
func ClassifySmartResponse(raw string) (SmartResponse, error) {
	explainFallback := SmartResponse{Kind: KindExplain, Text: raw}

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return explainFallback, nil
	}

	var envelope smartEnvelope
	if err := json.Unmarshal([]byte(raw[start:end+1]), &envelope); err != nil {
		return explainFallback, nil
	}

	switch envelope.Type {
	case "execute":
		command := strings.TrimSpace(envelope.Command)
		if command == "" {
			return SmartResponse{}, errors.New("execute response carries no command")
		}
		return SmartResponse{
			Kind:        KindExecute,
			Command:     command,
			Explanation: envelope.Explanation,
		}, nil
	case "explain":
		if envelope.Response == "" {
			return SmartResponse{}, errors.New("explain response carries no text")
		}
		return SmartResponse{Kind: KindExplain, Text: envelope.Response}, nil
	case "":
		// Extracted braces that happen to parse but are not the envelope at
		// all (stray JSON inside prose). Same safe default as a parse failure.
		return explainFallback, nil
	default:
		return SmartResponse{}, fmt.Errorf("unknown response type: %s", envelope.Type)
	}
}

// smartPrompt renders the classification prompt for a user query.
func (c *Client) smartPrompt(query string) (string, error) {
	return prompts.Execute("smart_query.md", map[string]string{
		"Query":               query,
		"LanguageInstruction": c.LanguageInstruction(),
	})
}

// SmartQuery sends the query through the blocking call and classifies the
// answer.
func (c *Client) SmartQuery(ctx context.Context, query string) (SmartResponse, error) {
	prompt, err := c.smartPrompt(query)
	if err != nil {
		return SmartResponse{}, err
	}
	content, err := c.GenerateContent(ctx, prompt)
	if err != nil {
		return SmartResponse{}, err
	}
	return ClassifySmartResponse(content)
}

// SmartQueryStream sends the query through the streaming call, forwarding
// fragments to the sink for immediate feedback, then classifies the
// accumulated text once the stream ends.
func (c *Client) SmartQueryStream(ctx context.Context, query string, sink Sink) (SmartResponse, error) {
	prompt, err := c.smartPrompt(query)
	if err != nil {
		return SmartResponse{}, err
	}
	full, err := c.streamGenerate(ctx, prompt, true, sink)
	if err != nil {
		return SmartResponse{}, err
	}
	c.session.RecordExchange(prompt, full)
	return ClassifySmartResponse(full)
}
