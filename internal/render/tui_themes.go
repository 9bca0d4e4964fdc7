package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// TUITheme defines the color scheme for the TUI interface
type TUITheme struct {
	Name        string
	Description string

	// Base colors
	Background lipgloss.Color
	Surface    lipgloss.Color // title bar and status bar fill
	Border     lipgloss.Color

	// Accent colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	// Text colors
	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

// Built-in TUI themes
var (
	// Win95Theme is the default: teal desktop, navy title bar, silver chrome
	Win95Theme = TUITheme{
		Name:        "win95",
		Description: "Windows 95 - Teal desktop with navy title bars",

		Background: lipgloss.Color("#008080"),
		Surface:    lipgloss.Color("#000080"),
		Border:     lipgloss.Color("#c0c0c0"),

		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#00ff00"),
		Accent:    lipgloss.Color("#ffff00"),
		Warning:   lipgloss.Color("#ffff00"),
		Error:     lipgloss.Color("#ff0000"),

		Text:     lipgloss.Color("#ffffff"),
		TextDim:  lipgloss.Color("#c0c0c0"),
		TextMute: lipgloss.Color("#808080"),
	}

	// HotDogStandTheme is the infamous Windows 3.1 scheme
	HotDogStandTheme = TUITheme{
		Name:        "hotdogstand",
		Description: "Hot Dog Stand - Red and yellow, for the brave",

		Background: lipgloss.Color("#ff0000"),
		Surface:    lipgloss.Color("#ffff00"),
		Border:     lipgloss.Color("#000000"),

		Primary:   lipgloss.Color("#ffff00"),
		Secondary: lipgloss.Color("#ffffff"),
		Accent:    lipgloss.Color("#000000"),
		Warning:   lipgloss.Color("#ffffff"),
		Error:     lipgloss.Color("#000000"),

		Text:     lipgloss.Color("#ffffff"),
		TextDim:  lipgloss.Color("#ffff00"),
		TextMute: lipgloss.Color("#800000"),
	}

	// TokyoNightTheme is a dark theme with blue accents
	TokyoNightTheme = TUITheme{
		Name:        "tokyonight",
		Description: "Tokyo Night - Dark theme with blue accents",

		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),

		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),
	}
)

var (
	themeMu         sync.RWMutex
	currentTUITheme = Win95Theme
)

// GetTUITheme returns the currently active TUI theme
func GetTUITheme() TUITheme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTUITheme
}

// SetTUITheme sets the active TUI theme by name
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if !ok {
		return false
	}
	themeMu.Lock()
	currentTUITheme = theme
	themeMu.Unlock()
	return true
}

// GetTUIThemeByName returns a TUI theme by its name (case-insensitive)
func GetTUIThemeByName(name string) (TUITheme, bool) {
	for _, theme := range AvailableTUIThemes() {
		if strings.EqualFold(theme.Name, strings.TrimSpace(name)) {
			return theme, true
		}
	}
	return TUITheme{}, false
}

// AvailableTUIThemes returns a list of all available TUI themes
func AvailableTUIThemes() []TUITheme {
	return []TUITheme{Win95Theme, HotDogStandTheme, TokyoNightTheme}
}

// TUIThemeNames returns just the theme names for selection
func TUIThemeNames() []string {
	themes := AvailableTUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
