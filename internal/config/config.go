// Package config handles configuration and saved gems for geminiwin95.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apierrors "github.com/diogo/geminiwin95/internal/errors"
	"github.com/diogo/geminiwin95/internal/models"
)

// Environment variables read at load time
const (
	EnvAPIKey  = "GEMINI_API_KEY"
	EnvHomeDir = "GEMINIWIN95_HOME"
)

const configFileName = "config.json"

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", or a glamour style name
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	// APIKey is the Gemini API key. GEMINI_API_KEY takes precedence.
	APIKey string `json:"api_key"`
	// Model is the text model used for generateContent calls.
	Model     string            `json:"model"`
	SavedGems []models.SavedGem `json:"saved_gems"`
	// Verbose enables debug logging of requests and responses.
	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`    // TUI color theme
	DownloadDir     string         `json:"download_dir,omitempty"` // Directory for saving images
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Model:           models.DefaultModel,
		SavedGems:       []models.SavedGem{},
		Verbose:         false,
		CopyToClipboard: false,
		TUITheme:        "win95",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// ResolvedAPIKey returns the key from the environment, or the stored one
func (c Config) ResolvedAPIKey() string {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		return key
	}
	return strings.TrimSpace(c.APIKey)
}

// APIKeySource describes where the active key comes from
func (c Config) APIKeySource() string {
	switch {
	case strings.TrimSpace(os.Getenv(EnvAPIKey)) != "":
		return "env:" + EnvAPIKey
	case strings.TrimSpace(c.APIKey) != "":
		return "config"
	default:
		return "none"
	}
}

// ResolvedModel returns the configured model, or the default
func (c Config) ResolvedModel() string {
	if m := strings.TrimSpace(c.Model); m != "" {
		return m
	}
	return models.DefaultModel
}

// MaskKey hides all but the last four characters of a key
func MaskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvHomeDir); dir != "" {
		return filepath.Abs(dir)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".geminiwin95"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the config holds the API key
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFileName), nil
}

// GetDownloadDir returns the download directory from config, creating it if necessary
func GetDownloadDir(cfg Config) (string, error) {
	dir := cfg.DownloadDir
	if dir == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(configDir, "images")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	return dir, nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return loadConfigFile(configPath)
}

func loadConfigFile(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.SavedGems == nil {
		cfg.SavedGems = []models.SavedGem{}
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, configFileName)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write then rename so watchers never see a half-written file
	tmp, err := os.CreateTemp(configDir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Keys accepted by SetValue
var settableKeys = []string{
	"api_key", "model", "verbose", "copy_to_clipboard", "tui_theme", "download_dir", "markdown.style",
}

// SettableKeys returns the keys accepted by SetValue
func SettableKeys() []string {
	out := make([]string, len(settableKeys))
	copy(out, settableKeys)
	return out
}

// SetValue updates a single field from its string form
func SetValue(cfg *Config, key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case "api_key":
		cfg.APIKey = value
	case "model":
		if value == "" {
			return apierrors.NewConfigError(key, "must not be empty")
		}
		cfg.Model = value
	case "verbose", "copy_to_clipboard":
		b, err := parseBool(value)
		if err != nil {
			return apierrors.NewConfigError(key, err.Error())
		}
		if key == "verbose" {
			cfg.Verbose = b
		} else {
			cfg.CopyToClipboard = b
		}
	case "tui_theme":
		cfg.TUITheme = value
	case "download_dir":
		cfg.DownloadDir = value
	case "markdown.style":
		if value == "" {
			return apierrors.NewConfigError(key, "must not be empty")
		}
		cfg.Markdown.Style = value
	default:
		return apierrors.NewConfigError(key, "unknown key (valid: "+strings.Join(settableKeys, ", ")+")")
	}
	return nil
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "on", "yes", "1":
		return true, nil
	case "false", "off", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected true or false, got %q", value)
}
