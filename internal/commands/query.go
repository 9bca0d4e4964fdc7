package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/geminiwin95/internal/api"
	"github.com/diogo/geminiwin95/internal/chat"
	"github.com/diogo/geminiwin95/internal/config"
	apierrors "github.com/diogo/geminiwin95/internal/errors"
	"github.com/diogo/geminiwin95/internal/models"
	"github.com/diogo/geminiwin95/internal/render"
	"github.com/diogo/geminiwin95/internal/tui"
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Background(colorNavy).
				Bold(true).
				Padding(0, 1)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colorText).
				Foreground(colorText).
				Padding(0, 1).
				MarginBottom(1)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Italic(true)
)

// reportedError marks an error that was already printed to stderr
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

// applyQueryMode turns the query flags into mode state
func applyQueryMode(session *chat.Session, q *queryFlags) error {
	if q.gem != "" {
		if _, ok := session.SelectPersona(q.gem); !ok {
			return fmt.Errorf("unknown gem '%s' (see 'geminiwin95 gems list')", q.gem)
		}
	}
	if q.synth != "" {
		if _, ok := session.SelectSecondaryPersona(q.synth); !ok {
			return fmt.Errorf("unknown gem '%s' (see 'geminiwin95 gems list')", q.synth)
		}
		session.Mode().SetSynthesis(true)
	}
	if q.search {
		session.Mode().SetSearch(true)
	}
	return nil
}

// runQuery executes a single query and outputs the response.
// With --raw only the response text (or image path) is printed.
func runQuery(cmd *cobra.Command, deps *Dependencies, global *globalFlags, q *queryFlags, prompt string) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	store, err := loadStore()
	if err != nil {
		return err
	}
	cfg := store.Config()
	logger := newLogger(errOut, global.verbose || cfg.Verbose)

	sender, cleanup, err := deps.sender(logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer cleanup()

	session := chat.NewSession(configSource(store, global), sender, chat.WithSessionLogger(logger))
	if err := applyQueryMode(session, q); err != nil {
		return err
	}

	for _, path := range q.attach {
		att, err := session.AttachFile(path)
		if err != nil {
			if q.raw {
				return err
			}
			_, _ = fmt.Fprintln(errOut, formatErrorMessage(err, "Failed to attach file"))
			return reportedError{err}
		}
		logger.Debug("attached", "name", att.Name, "mime", att.MIMEType)
	}

	state := session.Mode().State()
	logger.Debug("query",
		"model", session.Model(),
		"persona", state.Active.DisplayName(),
		"synthesis", state.Synthesis,
		"search", state.SearchEnabled(),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var spin *spinner
	if !q.raw {
		spin = newSpinner(errOut, "Asking Gemini")
		spin.start()
	}

	startTime := time.Now()
	result, err := session.Send(ctx, prompt)
	if err != nil {
		if q.raw {
			return err
		}
		spin.stopWithError()
		_, _ = fmt.Fprintln(errOut, formatErrorMessage(err, "Request failed"))
		return reportedError{err}
	}
	if spin != nil {
		spin.stopWithSuccess("Done")
	}
	logger.Debug("response received", "took", time.Since(startTime).Round(time.Millisecond))

	for _, w := range result.Warnings {
		if q.raw {
			logger.Warn(w)
			continue
		}
		_, _ = fmt.Fprintln(errOut, noticeStyle.Render("! "+w))
	}

	if result.IsImage() {
		return writeImage(out, errOut, cfg, q, prompt, result)
	}
	return writeText(out, errOut, cfg, q, result.Text)
}

// writeImage saves an image result and reports where it went
func writeImage(out, errOut io.Writer, cfg config.Config, q *queryFlags, prompt string, result *models.Result) error {
	opts := api.ImageSaveOptions{Directory: q.saveImage, Prompt: strings.TrimSpace(prompt)}
	switch {
	case q.output != "":
		opts.Directory = filepath.Dir(q.output)
		opts.Filename = filepath.Base(q.output)
	case opts.Directory == "":
		dir, err := config.GetDownloadDir(cfg)
		if err != nil {
			return err
		}
		opts.Directory = dir
	}

	path, err := api.SaveImage(result, opts)
	if err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}

	if q.raw {
		_, _ = fmt.Fprintln(out, path)
		return nil
	}

	successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Image saved to " + path)
	_, _ = fmt.Fprintln(errOut, successMsg)
	copyToClipboard(errOut, cfg, path)
	return nil
}

// writeText prints or saves a text result
func writeText(out, errOut io.Writer, cfg config.Config, q *queryFlags, text string) error {
	if q.raw {
		if q.output != "" {
			if err := os.WriteFile(q.output, []byte(text), 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			return nil
		}
		_, _ = fmt.Fprint(out, text)
		return nil
	}

	_, _ = fmt.Fprintln(errOut)
	copyToClipboard(errOut, cfg, text)

	if q.output != "" {
		if err := os.WriteFile(q.output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
			fmt.Sprintf("✓ Response saved to %s", q.output),
		)
		_, _ = fmt.Fprintln(errOut, successMsg)
		return nil
	}

	// pipes get the plain text
	if !isTTY(out) {
		_, _ = fmt.Fprintln(out, text)
		return nil
	}

	_, _ = fmt.Fprintln(out, renderResponse(text, cfg.Markdown, getTerminalWidth(out)))
	return nil
}

// renderResponse draws the assistant label and the markdown bubble
func renderResponse(text string, md config.MarkdownConfig, termWidth int) string {
	bubbleWidth := termWidth - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	rendered := render.Reply(text, render.OptionsFromConfig(md).WithWidth(contentWidth))

	label := assistantLabelStyle.Render("✦ Gemini")
	bubble := assistantBubbleStyle.Width(bubbleWidth).Render(rendered)
	return label + "\n" + bubble
}

// copyToClipboard copies text when enabled in config
func copyToClipboard(errOut io.Writer, cfg config.Config, text string) {
	if !cfg.CopyToClipboard {
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		warnMsg := lipgloss.NewStyle().Foreground(colorError).Render(
			fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
		)
		_, _ = fmt.Fprintln(errOut, warnMsg)
		return
	}
	_, _ = fmt.Fprintln(errOut, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 80
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isTTY returns true if w is a terminal
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: Error: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	if body := apierrors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(strings.TrimSpace(body), "\n", "\n  "))))
	}

	if hint := tui.ErrorHint(err); hint != "" {
		sb.WriteString(dimStyle.Render("\n  Hint: " + hint))
	}

	return sb.String()
}
