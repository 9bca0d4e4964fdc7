package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// pools maps an Options value to a *sync.Pool of *glamour.TermRenderer.
// A TermRenderer must not serve two Render calls at once.
var pools sync.Map

func poolFor(opts Options) *sync.Pool {
	if p, ok := pools.Load(opts); ok {
		return p.(*sync.Pool)
	}
	p, _ := pools.LoadOrStore(opts, &sync.Pool{})
	return p.(*sync.Pool)
}

func newTermRenderer(opts Options) (*glamour.TermRenderer, error) {
	ropts := []glamour.TermRendererOption{
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}
	if opts.Style == ThemeWin95 {
		ropts = append(ropts, glamour.WithStyles(Win95StyleConfig()))
	} else {
		ropts = append(ropts, glamour.WithStylePath(opts.Style))
	}
	if opts.EnableEmoji {
		ropts = append(ropts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		ropts = append(ropts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(ropts...)
}

// Markdown renders content for the terminal
func Markdown(content string, opts Options) (string, error) {
	opts = opts.normalized()
	pool := poolFor(opts)

	r, _ := pool.Get().(*glamour.TermRenderer)
	if r == nil {
		var err error
		if r, err = newTermRenderer(opts); err != nil {
			return "", fmt.Errorf("markdown style %q: %w", opts.Style, err)
		}
	}
	defer pool.Put(r)

	return r.Render(content)
}

// Reply renders an assistant reply, falling back to the raw text when the
// style cannot be loaded. Trailing newlines are trimmed so the result can
// sit inside a bordered bubble.
func Reply(content string, opts Options) string {
	out, err := Markdown(content, opts)
	if err != nil {
		out = content
	}
	return strings.TrimRight(out, "\n")
}
