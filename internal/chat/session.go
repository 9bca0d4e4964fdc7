// Package chat ties mode state, queued attachments and the API client
// together into a single send operation.
package chat

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/diogo/geminiwin95/internal/api"
	apierrors "github.com/diogo/geminiwin95/internal/errors"
	"github.com/diogo/geminiwin95/internal/models"
)

// ConfigSource provides the settings a send reads at call time
type ConfigSource interface {
	APIKey() string
	Model() string
	Gems() []models.SavedGem
}

// Sender performs one API call
type Sender interface {
	Do(ctx context.Context, apiKey string, req *api.Request) (*models.Result, error)
}

// ChatSurface displays the outcome of a send
type ChatSurface interface {
	AppendText(text string)
	AppendImage(dataURI string)
	AppendError(message string)
}

// Notifier is implemented by surfaces that can show non-fatal warnings
type Notifier interface {
	AppendNotice(message string)
}

// Session is one open chat
type Session struct {
	cfg      ConfigSource
	sender   Sender
	mode     *ModeController
	buffer   *Buffer
	logger   *slog.Logger
	inFlight atomic.Bool
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithSessionLogger sets the session logger
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession creates a chat session
func NewSession(cfg ConfigSource, sender Sender, opts ...SessionOption) *Session {
	s := &Session{
		cfg:    cfg,
		sender: sender,
		mode:   NewModeController(),
		buffer: NewBuffer(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the session's mode controller
func (s *Session) Mode() *ModeController {
	return s.mode
}

// Model returns the text model the next send will use
func (s *Session) Model() string {
	return s.cfg.Model()
}

// Attachments returns the session's attachment buffer
func (s *Session) Attachments() *Buffer {
	return s.buffer
}

// Busy reports whether a send is outstanding
func (s *Session) Busy() bool {
	return s.inFlight.Load()
}

// Personas returns the personas offered by the selector
func (s *Session) Personas() []models.Persona {
	return models.SelectablePersonas(s.cfg.Gems())
}

// SelectPersona resolves name and makes it the active persona
func (s *Session) SelectPersona(name string) (models.Persona, bool) {
	p, ok := models.ResolvePersona(name, s.cfg.Gems())
	s.mode.SelectPersona(p)
	return p, ok
}

// SelectSecondaryPersona resolves name and makes it the secondary persona
func (s *Session) SelectSecondaryPersona(name string) (models.Persona, bool) {
	p, ok := models.ResolvePersona(name, s.cfg.Gems())
	s.mode.SelectSecondaryPersona(p)
	return p, ok
}

// AttachFile reads a file and queues it for the next send
func (s *Session) AttachFile(path string) (models.Attachment, error) {
	att, err := api.ReadAttachment(path)
	if err != nil {
		return models.Attachment{}, err
	}
	s.buffer.Add(att)
	s.logger.Debug("attachment queued", "name", att.Name, "mime", att.MIMEType, "bytes", att.Size())
	return att, nil
}

// lookupInstruction returns the saved instruction of a custom persona as
// currently configured
func (s *Session) lookupInstruction(name string) (string, bool) {
	p, ok := models.ResolvePersona(name, s.cfg.Gems())
	if !ok || p.Kind != models.KindCustom {
		return "", false
	}
	return p.Instruction, true
}

// Send composes and performs one call from text and the queued attachments.
//
// Nothing is sent and the buffer is left untouched when the key is missing
// or there is nothing to send. Otherwise the buffer is emptied before the
// call starts, whatever the outcome.
func (s *Session) Send(ctx context.Context, text string) (*models.Result, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, apierrors.ErrSendInFlight
	}
	defer s.inFlight.Store(false)

	apiKey := strings.TrimSpace(s.cfg.APIKey())
	if apiKey == "" {
		return nil, apierrors.ErrMissingCredential
	}

	text = strings.TrimSpace(text)
	if text == "" && s.buffer.Len() == 0 {
		return nil, apierrors.ErrInvalidRequest
	}

	attachments := s.buffer.Take()
	mode := s.mode.State()

	req, err := api.Compose(text, attachments, mode, &api.ComposeOptions{
		Model:  s.cfg.Model(),
		Lookup: s.lookupInstruction,
	})
	if err != nil {
		// nothing went out; keep the files for the next try
		s.buffer.Restore(attachments)
		return nil, err
	}

	s.logger.Debug("dispatching",
		"persona", mode.Active.DisplayName(),
		"synthesis", mode.Synthesis,
		"search", mode.SearchEnabled(),
		"attachments", len(attachments),
		"kind", req.Kind.String(),
	)

	result, err := s.sender.Do(ctx, apiKey, req)
	if err != nil {
		s.logger.Debug("send failed", "error", err)
		return nil, err
	}
	return result, nil
}

// Dispatch sends text and renders the outcome on surface. Every failure
// becomes a single AppendError call.
func (s *Session) Dispatch(ctx context.Context, text string, surface ChatSurface) (*models.Result, error) {
	result, err := s.Send(ctx, text)
	if err != nil {
		surface.AppendError(err.Error())
		return nil, err
	}

	if notifier, ok := surface.(Notifier); ok {
		for _, w := range result.Warnings {
			notifier.AppendNotice(w)
		}
	} else {
		for _, w := range result.Warnings {
			s.logger.Warn(w)
		}
	}

	if result.IsImage() {
		surface.AppendImage(result.ImageDataURI)
	} else {
		surface.AppendText(result.Text)
	}
	return result, nil
}
