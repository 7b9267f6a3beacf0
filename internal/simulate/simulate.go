// Package simulate predicts what a command would do without running it. The
// local danger classifier provides a hard verdict; the model fills in the
// narrative prediction, affected paths and destruction level.
package simulate

import (
	"context"
	"fmt"
	"strings"

	"github.com/lucianommartins/terminal-tutor/internal/gemini"
	"github.com/lucianommartins/terminal-tutor/internal/prompts"
	"github.com/lucianommartins/terminal-tutor/internal/safety"
)

// Result is the combined local and model verdict for a command.
type Result struct {
	Command       string
	Destructive   bool     // local classifier, never the model's opinion
	Warnings      []string // local pattern warnings
	Prediction    string   // full model response
	AffectedFiles []string // parsed from the prediction, best effort
	HighRisk      bool     // model rated DESTRUCTION_LEVEL: HIGH
}

// Simulator runs what-if predictions through a gemini client.
type Simulator struct {
	client *gemini.Client
}

// New returns a Simulator backed by the given client.
func New(client *gemini.Client) *Simulator {
	return &Simulator{client: client}
}

// Simulate classifies the command locally and asks the model to predict its
// effects. The local verdict is always filled in, even when the model call
// fails.
func (s *Simulator) Simulate(ctx context.Context, command string) (Result, error) {
	res := Result{
		Command:     command,
		Destructive: safety.IsDangerous(command),
		Warnings:    safety.Warnings(command),
	}

	prompt, err := prompts.Execute("whatif.md", map[string]string{
		"Command":             command,
		"LanguageInstruction": s.client.LanguageInstruction(),
	})
	if err != nil {
		return res, err
	}

	text, err := s.client.GenerateContent(ctx, prompt)
	if err != nil {
		return res, fmt.Errorf("simulating command: %w", err)
	}

	res.Prediction = text
	res.AffectedFiles = parseAffectedFiles(text)
	res.HighRisk = ratedHigh(text)
	return res, nil
}

func parseAffectedFiles(prediction string) []string {
	for _, line := range strings.Split(prediction, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), "AFFECTED_FILES:")
		if !ok {
			continue
		}
		var files []string
		for _, f := range strings.Split(rest, ",") {
			if f = strings.TrimSpace(f); f != "" && !strings.EqualFold(f, "none") {
				files = append(files, f)
			}
		}
		return files
	}
	return nil
}

func ratedHigh(prediction string) bool {
	for _, line := range strings.Split(prediction, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), "DESTRUCTION_LEVEL:")
		if !ok {
			continue
		}
		return strings.Contains(strings.ToUpper(rest), "HIGH")
	}
	return false
}
