package render

import (
	"testing"

	"github.com/diogo/geminiwin95/internal/config"
)

func TestOptionsFromConfig(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")

	md := config.MarkdownConfig{Style: "win95", EnableEmoji: false, TableWrap: true, InlineTableLinks: true}
	opts := OptionsFromConfig(md)

	if opts.Style != "win95" {
		t.Errorf("expected Style='win95', got %s", opts.Style)
	}
	if opts.EnableEmoji || opts.PreserveNewLines {
		t.Error("booleans should come from config")
	}
	if !opts.InlineTableLinks {
		t.Error("expected InlineTableLinks=true")
	}
	if opts.Width != 80 {
		t.Errorf("expected default width 80, got %d", opts.Width)
	}
	if opts.TableWrap != md.TableWrap {
		t.Error("TableWrap should come from config")
	}

	if OptionsFromConfig(config.MarkdownConfig{}).Style != "dark" {
		t.Error("empty style should keep the default")
	}
}

func TestOptionsFromConfig_EnvOverride(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "light")

	opts := OptionsFromConfig(config.MarkdownConfig{Style: "win95"})
	if opts.Style != "light" {
		t.Errorf("expected Style='light' from env, got %s", opts.Style)
	}
}
