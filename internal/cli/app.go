package cli

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/lipgloss"

	"github.com/lucianommartins/terminal-tutor/internal/config"
	"github.com/lucianommartins/terminal-tutor/internal/creds"
	"github.com/lucianommartins/terminal-tutor/internal/gemini"
	"github.com/lucianommartins/terminal-tutor/internal/history"
	"github.com/lucianommartins/terminal-tutor/internal/session"
)

var (
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dangerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	cmdStyle    = lipgloss.NewStyle().Bold(true)
)

// app bundles everything a command needs: merged config, the session store
// selected by --session, and a ready client.
type app struct {
	cfg    *config.Config
	sess   *session.Store
	client *gemini.Client
}

// newApp loads config and credentials and builds the client. It fails only
// when no API key can be resolved.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	key := creds.APIKey()
	if key == "" {
		return nil, fmt.Errorf("no API key configured. Run 'tt auth' to set one, or export GEMINI_API_KEY")
	}

	model := cfg.Model
	if m := creds.Preference("model"); m != "" {
		model = m
	}
	language := cfg.Language
	if l := creds.Preference("language"); l != "" {
		language = l
	}

	sess := session.Open(config.ExpandHome(cfg.Session.Dir), sessionFlag, cfg.Session.MaxPairs)

	client := gemini.New(gemini.Options{
		APIKey:         key,
		Model:          model,
		Language:       language,
		BaseURL:        cfg.Gemini.BaseURL,
		ConnectTimeout: cfg.Gemini.ParseConnectTimeout(),
		ReadTimeout:    cfg.Gemini.ParseReadTimeout(),
		Session:        sess,
	})

	return &app{cfg: cfg, sess: sess, client: client}, nil
}

// openLedger opens the executed-command ledger, or returns nil when the
// ledger is disabled or unavailable. It never blocks a command from running.
func (a *app) openLedger() *history.Ledger {
	if !a.cfg.History.IsEnabled() {
		return nil
	}
	ledger, err := history.Open(config.ExpandHome(a.cfg.History.Path))
	if err != nil {
		slog.Debug("history ledger unavailable", "error", err)
		return nil
	}
	return ledger
}
