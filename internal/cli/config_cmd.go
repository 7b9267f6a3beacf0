package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/sjson"

	"github.com/lucianommartins/terminal-tutor/internal/config"
	"github.com/lucianommartins/terminal-tutor/internal/creds"
	"github.com/lucianommartins/terminal-tutor/internal/prompts"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tt configuration",
	Long:  `Show and modify tt configuration values.`,
}

var configJSONFlag bool

func init() {
	configShowCmd.Flags().BoolVar(&configJSONFlag, "json", false, "Output raw JSON without formatting")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
	configCmd.AddCommand(preferenceCmd("model", "Model to use for all requests", "gemini-3-pro-preview"))
	configCmd.AddCommand(preferenceCmd("language", "Response language code", "pt-br"))
	configCmd.AddCommand(configPromptsCmd)
	rootCmd.AddCommand(configCmd)
}

var configPromptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List prompt templates",
	Long: `List the built-in prompt templates. Any of them can be overridden by
placing a file with the same name under ~/.config/tt/prompts/.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := prompts.List()
		if err != nil {
			return err
		}
		for _, name := range names {
			_, meta, err := prompts.Load(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-22s %s\n", name, meta.Description)
		}
		return nil
	},
}

// preferenceCmd builds a get/set command for a keyring-stored preference.
// Preferences override the config file without editing it.
func preferenceCmd(name, short, example string) *cobra.Command {
	return &cobra.Command{
		Use:     fmt.Sprintf("%s [value]", name),
		Short:   short,
		Example: fmt.Sprintf("  tt config %s\n  tt config %s %s", name, name, example),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				value := creds.Preference(name)
				if value == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "No %s preference stored; using config file or default.\n", name)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			}
			if err := creds.StorePreference(name, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s = %s\n", name, args[0])
			return nil
		},
	}
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show merged configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		var data []byte
		if configJSONFlag {
			data, err = json.Marshal(cfg)
		} else {
			data, err = json.MarshalIndent(cfg, "", "  ")
		}
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a configuration value using a dotted key path.

The value is written to ~/.config/tt/tt.jsonc. The file is created if it
does not exist.

Note: JSONC comments are not preserved on write.

Examples:
  tt config set model "gemini-3-pro-preview"
  tt config set language pt-br
  tt config set gemini.read_timeout 180s
  tt config set history.enabled false`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		rawValue := args[1]

		// Determine value type: try bool, then number, then string
		var value any
		if b, err := strconv.ParseBool(rawValue); err == nil {
			value = b
		} else if i, err := strconv.ParseInt(rawValue, 10, 64); err == nil {
			value = i
		} else if f, err := strconv.ParseFloat(rawValue, 64); err == nil {
			value = f
		} else {
			value = rawValue
		}

		path := config.Path()
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		// Read existing file or start with empty JSON object
		existing := []byte("{}")
		if data, err := os.ReadFile(path); err == nil {
			// Strip JSONC comments before passing to sjson (which requires valid JSON).
			existing = jsonc.ToJSON(data)
		}

		updated, err := sjson.SetBytes(existing, key, value)
		if err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}

		var pretty json.RawMessage = updated
		formatted, err := json.MarshalIndent(pretty, "", "  ")
		if err != nil {
			formatted = updated
		}

		if err := os.WriteFile(path, append(formatted, '\n'), 0o600); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, rawValue)
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset configuration to defaults",
	Long: `Remove the user config file and any stored model/language preferences.
The API key is kept; use the keyring or ~/.config/tt/api_key to remove it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.Remove(config.Path()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing config: %w", err)
		}
		creds.DeletePreference("model")
		creds.DeletePreference("language")
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
		return nil
	},
}
