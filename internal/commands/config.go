package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/geminiwin95/internal/config"
	"github.com/diogo/geminiwin95/internal/models"
	"github.com/diogo/geminiwin95/internal/render"
)

// NewConfigCmd creates the config command
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `Show or change geminiwin95 settings stored in ~/.geminiwin95/config.json.

The GEMINI_API_KEY environment variable takes precedence over api_key.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Long: "Change a setting. Keys: " + strings.Join(config.SettableKeys(), ", ") + `

Known models: ` + strings.Join(models.AvailableModels(), ", ") + ` (others are sent as-is)
Themes for tui_theme: ` + strings.Join(render.TUIThemeNames(), ", ") + `
Styles for markdown.style: ` + strings.Join(render.ThemeNames(), ", ") + " or a path to a glamour JSON style",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return cmd
}

func runConfigShow(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}

	downloadDir := cfg.DownloadDir
	if downloadDir == "" {
		downloadDir = "(default)"
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"config file", path},
		{"api_key", fmt.Sprintf("%s (%s)", config.MaskKey(cfg.ResolvedAPIKey()), cfg.APIKeySource())},
		{"model", cfg.ResolvedModel()},
		{"saved_gems", fmt.Sprintf("%d", len(cfg.SavedGems))},
		{"verbose", fmt.Sprintf("%t", cfg.Verbose)},
		{"copy_to_clipboard", fmt.Sprintf("%t", cfg.CopyToClipboard)},
		{"tui_theme", cfg.TUITheme},
		{"download_dir", downloadDir},
		{"markdown.style", cfg.Markdown.Style},
	}
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", r[0], r[1])
	}
	return w.Flush()
}

func runConfigSet(cmd *cobra.Command, key, value string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch key {
	case "tui_theme":
		if _, ok := render.GetTUIThemeByName(value); !ok {
			return fmt.Errorf("unknown theme '%s' (available: %s)", value, strings.Join(render.TUIThemeNames(), ", "))
		}
	case "markdown.style":
		if !render.IsBuiltinStyle(value) {
			if _, err := os.Stat(value); err != nil {
				return fmt.Errorf("unknown style '%s' (available: %s, or a path to a JSON style)", value, strings.Join(render.ThemeNames(), ", "))
			}
		}
	}

	if err := config.SetValue(&cfg, key, value); err != nil {
		return err
	}
	if err := config.SaveConfig(cfg); err != nil {
		return err
	}

	shown := value
	if key == "api_key" {
		shown = config.MaskKey(value)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, shown)
	return nil
}
