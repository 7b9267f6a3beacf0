package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/lucianommartins/terminal-tutor/internal/logging"
)

var (
	verbose     bool
	sessionFlag string
	runFlag     bool

	rootCmd = &cobra.Command{
		Use:   "tt [question]",
		Short: "Natural-language assistant for the terminal",
		Long: `tt turns plain-language requests into shell commands and explanations
using the Gemini generative-language API.

Ask a question and the answer streams to your terminal. Add --run to let tt
propose a command for the task and execute it after a safety check. Use
--session to keep conversation context across invocations.`,
		Example: `  tt "how do I see which process is using port 8080"
  tt --run "list files sorted by size"
  tt --session work "what did that output mean"`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runQuery(cmd, strings.Join(args, " "))
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().StringVarP(&sessionFlag, "session", "s", "", "Named session for conversation context")
	rootCmd.Flags().BoolVar(&runFlag, "run", false, "Propose and execute a command for the task")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose)
	}
}

func Execute() error {
	return rootCmd.Execute()
}
