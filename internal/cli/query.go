package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/lucianommartins/terminal-tutor/internal/execute"
	"github.com/lucianommartins/terminal-tutor/internal/explain"
	"github.com/lucianommartins/terminal-tutor/internal/gemini"
	"github.com/lucianommartins/terminal-tutor/internal/history"
	"github.com/lucianommartins/terminal-tutor/internal/prompts"
	"github.com/lucianommartins/terminal-tutor/internal/safety"
)

// Swappable in tests so commands run against a fake shell and the danger
// gate answers without a terminal.
var (
	commandRunner execute.Runner = execute.ShellRunner{}

	confirmDanger = func(command string) (bool, error) {
		var approved bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Run this command anyway?").
					Description(command).
					Value(&approved),
			),
		)
		if err := form.Run(); err != nil {
			return false, fmt.Errorf("confirmation cancelled: %w", err)
		}
		return approved, nil
	}
)

func runQuery(cmd *cobra.Command, query string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	warnTokenUsage(cmd, a)

	if runFlag {
		resp, err := a.client.SmartQuery(cmd.Context(), query)
		if err != nil {
			return err
		}
		return handleSmartResponse(cmd, a, resp)
	}

	prompt, err := prompts.Execute("plain_query.md", map[string]string{
		"Query":               query,
		"LanguageInstruction": a.client.LanguageInstruction(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, err = a.client.StreamQuery(cmd.Context(), prompt, query, func(fragment string) {
		fmt.Fprint(out, fragment)
	})
	fmt.Fprintln(out)
	return err
}

// handleSmartResponse prints an explanation or walks a proposed command
// through the danger gate and the shell.
func handleSmartResponse(cmd *cobra.Command, a *app, resp gemini.SmartResponse) error {
	out := cmd.OutOrStdout()

	if resp.Kind == gemini.KindExplain {
		fmt.Fprintln(out, resp.Text)
		return nil
	}

	fmt.Fprintf(out, "%s %s\n", cmdStyle.Render("Command:"), resp.Command)
	if resp.Explanation != "" {
		fmt.Fprintln(out, resp.Explanation)
	}

	dangerous := safety.IsDangerous(resp.Command)
	if dangerous {
		fmt.Fprintln(cmd.ErrOrStderr(), dangerStyle.Render("⚠ This command is potentially destructive."))
		for _, w := range safety.Warnings(resp.Command) {
			fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("  • "+w))
		}
		approved, err := confirmDanger(resp.Command)
		if err != nil {
			return err
		}
		if !approved {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	result, err := commandRunner.Run(cmd.Context(), resp.Command, out)
	if err != nil {
		return fmt.Errorf("running command: %w", err)
	}

	a.sess.RecordCommandOutput(resp.Command, result.Output)
	recordExecution(a, resp.Command, result.ExitCode, dangerous)

	if result.ExitCode != 0 {
		suggestFix(cmd, a, resp.Command, result.Output)
	}
	return nil
}

func recordExecution(a *app, command string, exitCode int, dangerous bool) {
	ledger := a.openLedger()
	if ledger == nil {
		return
	}
	defer ledger.Close()
	if err := ledger.Record(history.Entry{
		Session:   a.sess.Name(),
		Command:   command,
		ExitCode:  exitCode,
		Dangerous: dangerous,
	}); err != nil {
		slog.Debug("recording execution failed", "error", err)
	}
}

// suggestFix asks the model for a corrected command after a non-zero exit.
// Best effort: a failure here is logged and swallowed.
func suggestFix(cmd *cobra.Command, a *app, command, output string) {
	fix, err := explain.New(a.client).SuggestFix(cmd.Context(), command, output)
	if err != nil {
		slog.Debug("fix suggestion failed", "error", err)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n%s\n", cmdStyle.Render("Suggested fix:"), strings.TrimSpace(fix))
}

// warnTokenUsage checks how much of the context window the session history
// occupies. Silent below half, advisory above, urgent from 80%. Any counting
// failure skips the check entirely.
func warnTokenUsage(cmd *cobra.Command, a *app) {
	tokens := a.client.CountSessionTokens(cmd.Context())
	if tokens == gemini.TokenCountUnavailable {
		return
	}
	tier, pct := gemini.Tier(tokens, a.cfg.Gemini.TokenLimit)
	switch tier {
	case gemini.TierUrgent:
		fmt.Fprintln(cmd.ErrOrStderr(), dangerStyle.Render(
			fmt.Sprintf("⚠ Session context is %.0f%% full (%d tokens). Consider 'tt session delete %s'.", pct, tokens, a.sess.Name())))
	case gemini.TierAdvisory:
		fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(
			fmt.Sprintf("Session context is %.0f%% full (%d tokens).", pct, tokens)))
	}
}
