package commands

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/diogo/geminiwin95/internal/config"
)

func TestConfigCommand_Show(t *testing.T) {
	dir := setupHome(t, "AIzaSecretKey1234")

	out, _, err := execute(t, &Dependencies{}, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	for _, want := range []string{"api_key", "********1234", "(config)", "model", "gemini-1.5-flash", "tui_theme", "win95", "(default)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "AIzaSecretKey1234") {
		t.Error("the key must be masked")
	}
	if !strings.Contains(out, filepath.Join(dir, "config.json")) {
		t.Errorf("output should include the config path:\n%s", out)
	}
}

func TestConfigCommand_ShowEnvKey(t *testing.T) {
	setupHome(t, "")
	t.Setenv(config.EnvAPIKey, "env-key-9876")

	out, _, err := execute(t, &Dependencies{}, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "9876") || !strings.Contains(out, "env:"+config.EnvAPIKey) {
		t.Errorf("output = %q", out)
	}
}

func TestConfigCommand_Set(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(config.Config) bool
	}{
		{name: "model", key: "model", value: "gemini-1.5-pro", check: func(c config.Config) bool { return c.Model == "gemini-1.5-pro" }},
		{name: "api key", key: "api_key", value: "new-key-5678", check: func(c config.Config) bool { return c.APIKey == "new-key-5678" }},
		{name: "bool", key: "copy_to_clipboard", value: "on", check: func(c config.Config) bool { return c.CopyToClipboard }},
		{name: "theme", key: "tui_theme", value: "hotdogstand", check: func(c config.Config) bool { return c.TUITheme == "hotdogstand" }},
		{name: "markdown style", key: "markdown.style", value: "light", check: func(c config.Config) bool { return c.Markdown.Style == "light" }},
		{name: "unknown key", key: "colour", value: "red", wantErr: true},
		{name: "unknown theme", key: "tui_theme", value: "vaporwave", wantErr: true},
		{name: "unknown style", key: "markdown.style", value: "/no/such/style.json", wantErr: true},
		{name: "bad bool", key: "verbose", value: "maybe", wantErr: true},
		{name: "empty model", key: "model", value: " ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupHome(t, "old-key")

			out, _, err := execute(t, &Dependencies{}, "config", "set", tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}

			cfg, lerr := config.LoadConfig()
			if lerr != nil {
				t.Fatalf("LoadConfig: %v", lerr)
			}
			if tt.wantErr {
				if cfg.APIKey != "old-key" || cfg.Model != config.DefaultConfig().Model {
					t.Errorf("config changed on error: %+v", cfg)
				}
				return
			}
			if !tt.check(cfg) {
				t.Errorf("config not updated: %+v", cfg)
			}
			if tt.key == "api_key" && strings.Contains(out, tt.value) {
				t.Errorf("key echoed in clear: %q", out)
			}
		})
	}
}

func TestConfigCommand_Path(t *testing.T) {
	dir := setupHome(t, "")

	out, _, err := execute(t, &Dependencies{}, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) != filepath.Join(dir, "config.json") {
		t.Errorf("path = %q", out)
	}
}
