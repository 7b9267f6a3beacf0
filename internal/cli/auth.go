package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/lucianommartins/terminal-tutor/internal/config"
	"github.com/lucianommartins/terminal-tutor/internal/creds"
	"github.com/lucianommartins/terminal-tutor/internal/gemini"
)

func init() {
	rootCmd.AddCommand(authCmd)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Store a Gemini API key",
	Long: `Prompt for a Gemini API key, validate it against the service, and store
it in the OS keyring (falling back to ~/.config/tt/api_key when no keyring
is available).`,
	Example: `  tt auth`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Gemini API key").
					EchoMode(huh.EchoModePassword).
					Value(&key).
					Validate(func(s string) error {
						if s == "" {
							return fmt.Errorf("key is required")
						}
						return nil
					}),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("input cancelled: %w", err)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		client := gemini.New(gemini.Options{
			APIKey:         key,
			Model:          cfg.Model,
			BaseURL:        cfg.Gemini.BaseURL,
			ConnectTimeout: cfg.Gemini.ParseConnectTimeout(),
			ReadTimeout:    cfg.Gemini.ParseReadTimeout(),
		})
		if err := client.Validate(cmd.Context()); err != nil {
			return fmt.Errorf("key validation failed: %w", err)
		}

		if err := creds.StoreAPIKey(key); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key validated and stored.")
		return nil
	},
}
