package commands

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorText    = lipgloss.Color("#c0c0c0")
	colorTextDim = lipgloss.Color("#808080")
	colorSuccess = lipgloss.Color("#00ff00")
	colorError   = lipgloss.Color("#ff0000")
	colorPrimary = lipgloss.Color("#ffffff")
	colorNavy    = lipgloss.Color("#000080")
	colorWarning = lipgloss.Color("#ffff00")
)

// spinner handles the animated progress bar on stderr
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner writing to out
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		_, _ = fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				_, _ = fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current frame: a Win95-style progress bar of blocks
func (s *spinner) render() {
	const barWidth = 16

	filled := s.frame % (barWidth + 1)
	blocks := lipgloss.NewStyle().Foreground(colorNavy).Background(colorText).
		Render(strings.Repeat("▌", filled) + strings.Repeat(" ", barWidth-filled))

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message + strings.Repeat(".", (s.frame/3)%4))

	_, _ = fmt.Fprintf(s.out, "\r\033[K[%s] %s", blocks, msg)
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	_, _ = fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner and shows error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}
