package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(consoleCmd)
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive conversation mode",
	Long: `Start a read-eval-print loop. Every line goes through the smart query:
questions get answers, tasks get proposed commands that run through the
same safety gate as --run. Combine with --session to keep the conversation
on disk.`,
	Example: `  tt console
  tt --session work console`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "tt console. Type 'exit' or Ctrl-D to leave.")

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, "tt> ")
			if !scanner.Scan() {
				fmt.Fprintln(out)
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				return nil
			}

			resp, err := a.client.SmartQuery(cmd.Context(), line)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(err.Error()))
				continue
			}
			if err := handleSmartResponse(cmd, a, resp); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(err.Error()))
			}
		}
	},
}
