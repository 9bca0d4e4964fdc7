// Package tui provides the terminal user interface for geminiwin95.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/geminiwin95/internal/errors"
	"github.com/diogo/geminiwin95/internal/render"
)

// Color variables (updated from theme)
var (
	colorSurface lipgloss.Color
	colorBorder  lipgloss.Color

	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorAccent    lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color

	colorText     lipgloss.Color
	colorTextDim  lipgloss.Color
	colorTextMute lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	// Title bar across the top of the window
	titleBarStyle lipgloss.Style
	titleStyle    lipgloss.Style
	// Mode indicators in the title bar
	badgeOnStyle  lipgloss.Style
	badgeOffStyle lipgloss.Style

	hintStyle lipgloss.Style

	messagesAreaStyle lipgloss.Style

	userLabelStyle       lipgloss.Style
	userBubbleStyle      lipgloss.Style
	assistantLabelStyle  lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	systemLabelStyle     lipgloss.Style
	noticeStyle          lipgloss.Style
	imagePathStyle       lipgloss.Style

	attachmentStyle lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	loadingStyle    lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style

	errorStyle lipgloss.Style

	// Persona selector
	selectorBoxStyle      lipgloss.Style
	selectorTitleStyle    lipgloss.Style
	selectorItemStyle     lipgloss.Style
	selectorSelectedStyle lipgloss.Style
	selectorCursorStyle   lipgloss.Style
	selectorTagStyle      lipgloss.Style
)

func init() {
	UpdateTheme()
}

// UpdateTheme refreshes all styles based on the current TUI theme
func UpdateTheme() {
	theme := render.GetTUITheme()

	colorSurface = theme.Surface
	colorBorder = theme.Border
	colorPrimary = theme.Primary
	colorSecondary = theme.Secondary
	colorAccent = theme.Accent
	colorWarning = theme.Warning
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim
	colorTextMute = theme.TextMute

	rebuildStyles()
}

func rebuildStyles() {
	titleBarStyle = lipgloss.NewStyle().
		Background(colorSurface).
		Foreground(colorPrimary).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
		Background(colorSurface).
		Foreground(colorPrimary).
		Bold(true)

	badgeOnStyle = lipgloss.NewStyle().
		Background(colorSurface).
		Foreground(colorAccent).
		Bold(true)

	badgeOffStyle = lipgloss.NewStyle().
		Background(colorSurface).
		Foreground(colorTextMute)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Italic(true)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	userLabelStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true)

	userBubbleStyle = lipgloss.NewStyle().
		Foreground(colorText).
		PaddingLeft(2)

	assistantLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
		Foreground(colorText)

	systemLabelStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	noticeStyle = lipgloss.NewStyle().
		Foreground(colorWarning).
		Italic(true)

	imagePathStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Underline(true)

	attachmentStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		MarginRight(1)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	selectorBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorBorder).
		Padding(1, 2)

	selectorTitleStyle = lipgloss.NewStyle().
		Background(colorSurface).
		Foreground(colorPrimary).
		Bold(true).
		Padding(0, 1)

	selectorItemStyle = lipgloss.NewStyle().
		Foreground(colorText)

	selectorSelectedStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	selectorCursorStyle = lipgloss.NewStyle().
		Foreground(colorAccent)

	selectorTagStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)
}

// FormatError returns a styled error message with additional context
// taken from structured errors
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ Error: %v", err)))

	if status := errors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}
	if endpoint := errors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}
	if body := errors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(strings.TrimSpace(body), "\n", "\n  "))))
	}

	if hint := ErrorHint(err); hint != "" {
		sb.WriteString(dimStyle.Render("\n  Hint: " + hint))
	}

	return sb.String()
}

// ErrorHint suggests a fix for well-known failures
func ErrorHint(err error) string {
	switch {
	case errors.IsAuthError(err):
		return "Set a key with 'geminiwin95 config set api_key <key>' or export GEMINI_API_KEY"
	case errors.IsRateLimitError(err):
		return "Quota exceeded. Try again later or switch to a lighter model"
	case errors.IsNetworkError(err):
		return "Check your internet connection and try again"
	case errors.IsAttachmentError(err):
		return "Check the file exists, is under 20MB and is an image, audio, video, PDF or text file"
	}
	return ""
}
