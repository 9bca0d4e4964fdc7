// Package render turns Gemini replies into terminal markdown and holds the
// colour themes shared by the CLI and the chat view.
package render

// Options configures a markdown renderer. Options values are comparable and
// double as the renderer pool key.
type Options struct {
	Width            int
	Style            string // built-in name or path to a glamour JSON style
	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// minWidth keeps very narrow terminals from producing one-word lines
const minWidth = 20

// DefaultOptions returns the settings used when the config has none
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            ThemeDark,
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// WithWidth returns a copy with the wrap width set
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns a copy with the style set
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

func (o Options) normalized() Options {
	if o.Width < minWidth {
		o.Width = minWidth
	}
	if o.Style == "" {
		o.Style = ThemeDark
	}
	return o
}
