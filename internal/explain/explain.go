// Package explain turns shell commands back into natural language. It wraps
// the smart-query client with the explanation prompt templates at three
// depths, plus a fix suggester for commands that just failed.
package explain

import (
	"context"
	"fmt"

	"github.com/lucianommartins/terminal-tutor/internal/gemini"
	"github.com/lucianommartins/terminal-tutor/internal/prompts"
)

// Mode selects how deep an explanation goes.
type Mode int

const (
	// ModeNormal is a short practical explanation.
	ModeNormal Mode = iota
	// ModeDetailed walks through every flag.
	ModeDetailed
	// ModeELI5 uses a real-world analogy.
	ModeELI5
)

func (m Mode) template() string {
	switch m {
	case ModeDetailed:
		return "explain_detailed.md"
	case ModeELI5:
		return "eli5.md"
	default:
		return "explain.md"
	}
}

// Engine produces explanations through a gemini client.
type Engine struct {
	client *gemini.Client
}

// New returns an Engine backed by the given client.
func New(client *gemini.Client) *Engine {
	return &Engine{client: client}
}

// Explain describes what the given command does at the requested depth.
func (e *Engine) Explain(ctx context.Context, command string, mode Mode) (string, error) {
	prompt, err := prompts.Execute(mode.template(), map[string]string{
		"Command":             command,
		"LanguageInstruction": e.client.LanguageInstruction(),
	})
	if err != nil {
		return "", err
	}
	text, err := e.client.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("explaining command: %w", err)
	}
	return text, nil
}

// SuggestFix asks for a corrected command given a failure and its error output.
func (e *Engine) SuggestFix(ctx context.Context, command, errMsg string) (string, error) {
	prompt, err := prompts.Execute("suggest_fix.md", map[string]string{
		"Command":             command,
		"Error":               errMsg,
		"LanguageInstruction": e.client.LanguageInstruction(),
	})
	if err != nil {
		return "", err
	}
	text, err := e.client.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("suggesting fix: %w", err)
	}
	return text, nil
}
