package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/geminiwin95/internal/config"
	"github.com/diogo/geminiwin95/internal/models"
)

// gemInput holds the instruction sources shared by add and update
type gemInput struct {
	instruction string
	file        string
}

// read returns the instruction from --instruction, --file or stdin
func (g *gemInput) read(deps *Dependencies) (string, error) {
	switch {
	case g.instruction != "":
		return g.instruction, nil
	case g.file != "":
		data, err := os.ReadFile(g.file)
		if err != nil {
			return "", fmt.Errorf("failed to read instruction file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	data, err := io.ReadAll(deps.stdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	instruction := strings.TrimSpace(string(data))
	if instruction == "" {
		return "", fmt.Errorf("instruction is required (use -i, -f or stdin)")
	}
	return instruction, nil
}

// NewGemsCmd creates the gems command
func NewGemsCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gems",
		Short: "Manage saved gems (custom personas)",
		Long: `Gems are named system instructions stored in the local config file.
They appear next to the built-in personas (Default, Guided Learning,
Deep Research, Image Generation) in the chat persona selector.

Built-in names are reserved. If several gems share a name, the first one
is used.

QUICK START:
  geminiwin95 gems add Pirate -i "Talk like a pirate"
  geminiwin95 gems import gems.yaml
  geminiwin95 chat --gem Pirate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGemsList(cmd)
		},
	}

	cmd.AddCommand(NewGemsListCmd())
	cmd.AddCommand(NewGemsShowCmd())
	cmd.AddCommand(NewGemsAddCmd(deps))
	cmd.AddCommand(NewGemsUpdateCmd(deps))
	cmd.AddCommand(NewGemsDeleteCmd())
	cmd.AddCommand(NewGemsImportCmd())
	cmd.AddCommand(NewGemsEditCmd(deps))
	cmd.AddCommand(NewGemsExportCmd())

	return cmd
}

// NewGemsListCmd creates the gems list command
func NewGemsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in personas and saved gems",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGemsList(cmd)
		},
	}
}

// NewGemsShowCmd creates the gems show command
func NewGemsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a persona's instruction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGemsShow(cmd, args[0])
		},
	}
}

// NewGemsAddCmd creates the gems add command
func NewGemsAddCmd(deps *Dependencies) *cobra.Command {
	in := &gemInput{}
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new gem",
		Long: `Add a new gem. The instruction is taken from --instruction, from
--file, or read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instruction, err := in.read(deps)
			if err != nil {
				return err
			}
			if err := config.AddGem(models.SavedGem{Name: args[0], Instruction: instruction}); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Gem '%s' created.\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.instruction, "instruction", "i", "", "System instruction for the gem")
	cmd.Flags().StringVarP(&in.file, "file", "f", "", "Read instruction from file")
	return cmd
}

// NewGemsUpdateCmd creates the gems update command
func NewGemsUpdateCmd(deps *Dependencies) *cobra.Command {
	in := &gemInput{}
	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Replace a gem's instruction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instruction, err := in.read(deps)
			if err != nil {
				return err
			}
			if err := config.UpdateGem(models.SavedGem{Name: args[0], Instruction: instruction}); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Gem '%s' updated.\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.instruction, "instruction", "i", "", "New system instruction")
	cmd.Flags().StringVarP(&in.file, "file", "f", "", "Read instruction from file")
	return cmd
}

// NewGemsDeleteCmd creates the gems delete command
func NewGemsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a gem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DeleteGem(args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Gem '%s' deleted.\n", args[0])
			return nil
		},
	}
}

// NewGemsImportCmd creates the gems import command
func NewGemsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import gems from a JSON, YAML or TOML file",
		Long: `Import gems from a file and merge them into the saved list by name.

Accepted shapes:
  JSON  [{"name": "...", "instruction": "..."}] or {"gems": [...]}
  YAML  a list of {name, instruction} or a "gems:" key
  TOML  [[gems]] tables with name and instruction`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := config.ImportGems(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d gem(s): %d added, %d updated.\n",
				len(result.Added)+len(result.Updated), len(result.Added), len(result.Updated))
			return nil
		},
	}
}

// NewGemsEditCmd creates the gems edit command
func NewGemsEditCmd(deps *Dependencies) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Replace all saved gems with a JSON array",
		Long: `Replace the saved gems with a JSON array read from --file or stdin.
If the input is not a valid JSON array the current list is kept.

  geminiwin95 gems export > gems.json
  $EDITOR gems.json
  geminiwin95 gems edit -f gems.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if file != "" {
				data, err = os.ReadFile(file)
			} else {
				data, err = io.ReadAll(deps.stdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read gems: %w", err)
			}

			gems, err := config.SetGemsJSON(data)
			if err != nil {
				return fmt.Errorf("%w; saved gems left unchanged", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %d gem(s).\n", len(gems))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the JSON array from file")
	return cmd
}

// NewGemsExportCmd creates the gems export command
func NewGemsExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print saved gems as a JSON array",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			data, err := config.GemsJSON(cfg.SavedGems)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func runGemsList(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	selectable := models.SelectablePersonas(cfg.SavedGems)
	offered := make(map[string]bool, len(selectable))
	for _, p := range selectable {
		offered[p.Name] = true
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTYPE\tINSTRUCTION")
	_, _ = fmt.Fprintln(w, "----\t----\t-----------")

	for _, p := range models.BuiltinPersonas() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, "built-in", truncate(firstLine(p.Instruction), 50))
	}

	seen := make(map[string]bool, len(cfg.SavedGems))
	for _, g := range cfg.SavedGems {
		kind := "gem"
		switch {
		case models.IsBuiltinName(g.Name):
			kind = "gem (hidden: built-in name)"
		case seen[g.Name] || !offered[g.Name]:
			kind = "gem (hidden: duplicate)"
		}
		seen[g.Name] = true
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", g.Name, kind, truncate(firstLine(g.Instruction), 50))
	}

	return w.Flush()
}

func runGemsShow(cmd *cobra.Command, name string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	p, ok := models.ResolvePersona(name, cfg.SavedGems)
	if !ok {
		return fmt.Errorf("gem '%s' not found", name)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Name: %s\n", p.DisplayName())
	_, _ = fmt.Fprintf(out, "Type: %s\n", p.Kind)

	instruction := p.Instruction
	if instruction == "" {
		instruction = "(none)"
	}
	_, _ = fmt.Fprintf(out, "\nInstruction:\n%s\n", instruction)
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// truncate shortens s to n runes, adding an ellipsis
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
