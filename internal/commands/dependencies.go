package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/diogo/geminiwin95/internal/api"
	"github.com/diogo/geminiwin95/internal/chat"
	"github.com/diogo/geminiwin95/internal/config"
	"github.com/diogo/geminiwin95/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(session *chat.Session, store *config.Store, opts ...tui.ChatOption) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// Sender performs API calls. When nil a GeminiClient is created per command.
	Sender chat.Sender

	// TUI is the terminal user interface.
	TUI TUIInterface

	// Stdin is read for prompts and gem instructions.
	Stdin io.Reader
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(session *chat.Session, store *config.Store, opts ...tui.ChatOption) error {
	return tui.RunChat(session, store, opts...)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TUI:   &DefaultTUI{},
		Stdin: os.Stdin,
	}
}

// sender returns the injected sender, or a new client with a cleanup func
func (d *Dependencies) sender(logger *slog.Logger) (chat.Sender, func(), error) {
	if d != nil && d.Sender != nil {
		return d.Sender, func() {}, nil
	}

	client, err := api.NewClient(api.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}

func (d *Dependencies) stdin() io.Reader {
	if d != nil && d.Stdin != nil {
		return d.Stdin
	}
	return os.Stdin
}

func (d *Dependencies) tui() TUIInterface {
	if d != nil && d.TUI != nil {
		return d.TUI
	}
	return &DefaultTUI{}
}
