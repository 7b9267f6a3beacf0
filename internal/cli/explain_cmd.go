package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lucianommartins/terminal-tutor/internal/explain"
	"github.com/lucianommartins/terminal-tutor/internal/simulate"
)

var detailedFlag bool

func init() {
	explainCmd.Flags().BoolVarP(&detailedFlag, "detailed", "d", false, "Explain every flag, one per line")
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(eli5Cmd)
	rootCmd.AddCommand(whatifCmd)
}

var explainCmd = &cobra.Command{
	Use:   "explain <command>",
	Short: "Explain what a shell command does",
	Example: `  tt explain "tar -xzvf archive.tgz"
  tt explain --detailed "rsync -avz src/ dest/"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExplain(cmd, strings.Join(args, " "), explainMode())
	},
}

var eli5Cmd = &cobra.Command{
	Use:     "eli5 <command>",
	Short:   "Explain a command like you're five",
	Example: `  tt eli5 "grep -rn TODO ."`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExplain(cmd, strings.Join(args, " "), explain.ModeELI5)
	},
}

func explainMode() explain.Mode {
	if detailedFlag {
		return explain.ModeDetailed
	}
	return explain.ModeNormal
}

func runExplain(cmd *cobra.Command, command string, mode explain.Mode) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	text, err := explain.New(a.client).Explain(cmd.Context(), command, mode)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(text))
	return nil
}

var whatifCmd = &cobra.Command{
	Use:   "whatif <command>",
	Short: "Predict what a command would do without running it",
	Long: `Simulate a command: tt combines its local safety classification with a
model-generated prediction of affected files, expected output, and risks.
Nothing is executed.`,
	Example: `  tt whatif "rm -rf node_modules"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		command := strings.Join(args, " ")
		res, err := simulate.New(a.client).Simulate(cmd.Context(), command)

		out := cmd.OutOrStdout()
		if res.Destructive {
			fmt.Fprintln(out, dangerStyle.Render("⚠ Locally classified as dangerous."))
		}
		for _, w := range res.Warnings {
			fmt.Fprintln(out, warnStyle.Render("  • "+w))
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(out, strings.TrimSpace(res.Prediction))
		if res.HighRisk && !res.Destructive {
			fmt.Fprintln(out, dangerStyle.Render("⚠ The model rates this command high risk."))
		}
		return nil
	},
}
