// Package commands provides CLI commands for geminiwin95.
package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/geminiwin95/internal/chat"
	"github.com/diogo/geminiwin95/internal/config"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	model   string
	verbose bool
}

// queryFlags drive a single query from the root command
type queryFlags struct {
	gem       string
	synth     string
	search    bool
	attach    []string
	file      string
	output    string
	saveImage string
	raw       bool
}

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd(deps *Dependencies) *cobra.Command {
	global := &globalFlags{}
	q := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "geminiwin95 [prompt]",
		Short: "Chat with Google Gemini from your terminal",
		Long: `geminiwin95 is a terminal client for the Gemini API with personas
("gems"), persona synthesis, web search grounding, file attachments and
image generation.

Set your API key once with 'geminiwin95 config set api_key <key>' or
export GEMINI_API_KEY.

Examples:
  geminiwin95 chat                          Start interactive chat
  geminiwin95 "What is Go?"                 Send a single query
  geminiwin95 -g "Deep Research" "CRDTs"    Query with a persona
  geminiwin95 -g Pirate --synth Poet "hi"   Blend two personas
  geminiwin95 -s "Go release news"          Ground the answer in web search
  geminiwin95 -a diagram.png "Explain"      Attach a file
  geminiwin95 -g "Image Generation" "a red cat"
  cat prompt.md | geminiwin95               Read prompt from stdin
  geminiwin95 "Hello" -o response.md        Save response to file`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "geminiwin95 %s (built %s)\n", Version, BuildTime)
				return nil
			}

			prompt, ok, err := readPrompt(deps, q, args)
			if err != nil {
				return err
			}
			if !ok && len(q.attach) == 0 {
				return cmd.Help()
			}
			return runQuery(cmd, deps, global, q, prompt)
		},
	}

	cmd.PersistentFlags().StringVarP(&global.model, "model", "m", "", "Model to use (e.g., gemini-1.5-pro)")
	cmd.PersistentFlags().BoolVar(&global.verbose, "verbose", false, "Log debug information (to stderr, or chat.log during chat)")

	cmd.Flags().StringVarP(&q.gem, "gem", "g", "", "Persona to use (built-in or saved gem)")
	cmd.Flags().StringVar(&q.synth, "synth", "", "Secondary persona to blend with --gem")
	cmd.Flags().BoolVarP(&q.search, "search", "s", false, "Ground the answer in Google Search")
	cmd.Flags().StringArrayVarP(&q.attach, "attach", "a", nil, "File to attach (repeatable)")
	cmd.Flags().StringVarP(&q.file, "file", "f", "", "Read prompt from file")
	cmd.Flags().StringVarP(&q.output, "output", "o", "", "Save response to file")
	cmd.Flags().StringVar(&q.saveImage, "save-image", "", "Directory for generated images (default: download_dir)")
	cmd.Flags().BoolVar(&q.raw, "raw", false, "Print only the response, without decoration")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(NewChatCmd(deps, global))
	cmd.AddCommand(NewGemsCmd(deps))
	cmd.AddCommand(NewConfigCmd())

	return cmd
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// readPrompt picks the prompt from --file, stdin or the positional argument
func readPrompt(deps *Dependencies, q *queryFlags, args []string) (string, bool, error) {
	if q.file != "" {
		data, err := os.ReadFile(q.file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	in := deps.stdin()
	if f, ok := in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", false, nil
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", false, fmt.Errorf("failed to read stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", false, nil
	}
	return string(data), true, nil
}

// newLogger returns a text logger on w; debug when verbose, warnings otherwise
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadStore loads the configuration from disk
func loadStore() (*config.Store, error) {
	store, err := config.LoadStore()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return store, nil
}

// modelOverride applies --model on top of the stored configuration, so the
// override survives reloads
type modelOverride struct {
	*config.Store
	model string
}

func (o modelOverride) Model() string {
	if o.model != "" {
		return o.model
	}
	return o.Store.Model()
}

func configSource(store *config.Store, global *globalFlags) chat.ConfigSource {
	return modelOverride{Store: store, model: global.model}
}
