package render

import (
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// Markdown style names
const (
	ThemeWin95 = "win95"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func uintPtr(u uint) *uint    { return &u }

// Win95StyleConfig returns the glamour style used for the win95 theme:
// the dark style recoloured with the classic teal, navy and silver palette.
func Win95StyleConfig() ansi.StyleConfig {
	cfg := styles.DarkStyleConfig

	cfg.Document.Color = strPtr("#c0c0c0")
	cfg.Document.Margin = uintPtr(1)

	cfg.Heading.Color = strPtr("#00ffff")
	cfg.Heading.Bold = boolPtr(true)

	cfg.H1.Color = strPtr("#ffffff")
	cfg.H1.BackgroundColor = strPtr("#000080")
	cfg.H1.Prefix = " "
	cfg.H1.Suffix = " "

	cfg.H2.Prefix = "■ "
	cfg.H3.Prefix = "□ "

	cfg.Strong.Color = strPtr("#ffffff")
	cfg.Emph.Color = strPtr("#ffff00")

	cfg.Link.Color = strPtr("#00ffff")
	cfg.Link.Underline = boolPtr(true)
	cfg.LinkText.Color = strPtr("#00ffff")

	cfg.Code.Color = strPtr("#ffff00")
	cfg.Code.BackgroundColor = strPtr("#000080")

	cfg.HorizontalRule.Color = strPtr("#808080")
	cfg.HorizontalRule.Format = "\n────────────────────────────────\n"

	cfg.BlockQuote.Color = strPtr("#808080")
	cfg.BlockQuote.IndentToken = strPtr("│ ")

	return cfg
}

// IsBuiltinStyle returns true if the style is our win95 style or one
// glamour ships with
func IsBuiltinStyle(style string) bool {
	switch style {
	case ThemeWin95, ThemeDark, ThemeLight, "dracula", "tokyo-night", "pink", "notty", "ascii":
		return true
	default:
		return false
	}
}

// ThemeInfo contains information about a theme for display purposes.
type ThemeInfo struct {
	Name        string
	Description string
}

// AvailableThemes returns the markdown styles offered in settings.
// A path to a glamour JSON style file is accepted as well.
func AvailableThemes() []ThemeInfo {
	return []ThemeInfo{
		{Name: ThemeDark, Description: "Dark theme (default)"},
		{Name: ThemeWin95, Description: "Teal, navy and silver"},
		{Name: ThemeLight, Description: "Light theme for bright terminals"},
		{Name: "dracula", Description: "Dracula color scheme"},
		{Name: "tokyo-night", Description: "Tokyo Night color scheme"},
		{Name: "notty", Description: "Plain text (no styling)"},
		{Name: "ascii", Description: "ASCII-only output"},
	}
}

// ThemeNames returns just the theme names for selection.
func ThemeNames() []string {
	themes := AvailableThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
