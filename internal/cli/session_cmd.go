package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/lucianommartins/terminal-tutor/internal/config"
	"github.com/lucianommartins/terminal-tutor/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage named conversation sessions",
}

func init() {
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
	rootCmd.AddCommand(sessionCmd)
}

var sessionListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List saved sessions",
	Example: `  tt session list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		dir := config.ExpandHome(cfg.Session.Dir)

		names := session.List(dir)
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved sessions. Start one with: tt --session <name> \"...\"")
			return nil
		}

		headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cellStyle := lipgloss.NewStyle().Padding(0, 1)

		rows := make([][]string, 0, len(names))
		for _, name := range names {
			s := session.Open(dir, name, cfg.Session.MaxPairs)
			rows = append(rows, []string{name, strconv.Itoa(s.Len() / 2)})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("SESSION", "EXCHANGES").
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

var sessionDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Short:   "Delete a saved session",
	Example: `  tt session delete work`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := session.Delete(config.ExpandHome(cfg.Session.Dir), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %q.\n", args[0])
		return nil
	},
}
