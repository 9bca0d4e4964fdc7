package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/diogo/geminiwin95/internal/chat"
	"github.com/diogo/geminiwin95/internal/config"
	"github.com/diogo/geminiwin95/internal/tui"
)

// chatLogName is the log file used while the TUI owns the terminal
const chatLogName = "chat.log"

// chatFlags set the initial mode of an interactive chat
type chatFlags struct {
	gem    string
	synth  string
	search bool
}

// NewChatCmd creates the chat command
func NewChatCmd(deps *Dependencies, global *globalFlags) *cobra.Command {
	f := &chatFlags{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with Gemini.

Every message is sent on its own, shaped by the active persona and the
mode toggles. Edits to saved gems made while the chat is open (for example
with 'geminiwin95 gems add' in another terminal) show up immediately.

KEYBOARD SHORTCUTS:
  Enter    Send message
  Ctrl+G   Select persona
  Ctrl+N   Select secondary persona
  Ctrl+Y   Toggle synthesis
  Ctrl+S   Toggle web search
  Esc      Cancel request / quit

COMMANDS:
  /attach <path>  Queue a file for the next message
  /detach [n]     Remove attachment n (or all)
  /copy           Copy the last reply
  /clear          Clear the transcript
  /gems           Select persona
  /quit           Exit

The chat owns the terminal, so log records go to chat.log in the config
directory instead of stderr. --verbose (or "verbose": true in the config)
adds debug records.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps, global, f)
		},
	}

	cmd.Flags().StringVarP(&f.gem, "gem", "g", "", "Persona to start with")
	cmd.Flags().StringVar(&f.synth, "synth", "", "Secondary persona; turns synthesis on")
	cmd.Flags().BoolVarP(&f.search, "search", "s", false, "Start with web search on")

	return cmd
}

func runChat(cmd *cobra.Command, deps *Dependencies, global *globalFlags, f *chatFlags) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	logger, closeLog := chatLogger(global.verbose || store.Config().Verbose)
	defer closeLog()

	sender, cleanup, err := deps.sender(logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer cleanup()

	session := chat.NewSession(configSource(store, global), sender, chat.WithSessionLogger(logger))
	if err := applyQueryMode(session, &queryFlags{gem: f.gem, synth: f.synth, search: f.search}); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var opts []tui.ChatOption
	if _, err := config.Watch(ctx, store, config.WithWatchLogger(logger)); err != nil {
		logger.Warn("config hot reload disabled", "error", err)
		opts = append(opts, tui.WithNotice("Settings hot reload is off: "+err.Error()))
	}

	logger.Debug("chat started", "model", session.Model(), "persona", session.Mode().State().Active.Name)
	return deps.tui().RunChat(session, store, opts...)
}

// chatLogger appends to chat.log in the config directory. Records are
// dropped when the file cannot be opened.
func chatLogger(verbose bool) (*slog.Logger, func()) {
	dir, err := config.EnsureConfigDir()
	if err != nil {
		return newLogger(io.Discard, verbose), func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, chatLogName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return newLogger(io.Discard, verbose), func() {}
	}
	return newLogger(f, verbose), func() { _ = f.Close() }
}
