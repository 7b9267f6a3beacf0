package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/lucianommartins/terminal-tutor/internal/config"
	"github.com/lucianommartins/terminal-tutor/internal/history"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to show")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show commands tt has executed",
	Long: `Display the local ledger of commands executed through tt, newest first,
with exit codes and whether the safety gate fired.`,
	Example: `  tt history
  tt history -n 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !cfg.History.IsEnabled() {
			fmt.Fprintln(cmd.OutOrStdout(), "Command history is disabled. Enable with: tt config set history.enabled true")
			return nil
		}

		ledger, err := history.Open(config.ExpandHome(cfg.History.Path))
		if err != nil {
			return err
		}
		defer ledger.Close()

		entries, err := ledger.Recent(historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No executed commands yet.")
			return nil
		}

		headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cellStyle := lipgloss.NewStyle().Padding(0, 1)

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			gate := ""
			if e.Dangerous {
				gate = "⚠"
			}
			sess := e.Session
			if sess == "" {
				sess = "-"
			}
			rows = append(rows, []string{
				e.At.Local().Format("2006-01-02 15:04"),
				sess,
				e.Command,
				strconv.Itoa(e.ExitCode),
				gate,
			})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("WHEN", "SESSION", "COMMAND", "EXIT", "GATE").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})

		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	},
}
