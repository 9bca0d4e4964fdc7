package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/geminiwin95/internal/chat"
	"github.com/diogo/geminiwin95/internal/config"
	"github.com/diogo/geminiwin95/internal/models"
	"github.com/diogo/geminiwin95/internal/render"
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	// dispatchMsg carries the transcript entries produced by one send
	dispatchMsg struct {
		messages []models.Message
		err      error
	}
	// configReloadedMsg is sent after the configuration changed on disk
	configReloadedMsg struct{}
	// configErrorMsg is sent when the file changed but could not be loaded
	configErrorMsg struct {
		err error
	}
)

const helpText = "/attach <path>  /detach [n]  /gems  /secondary  /synth  /search  /copy  /clear  /quit"

// Model represents the TUI state
type Model struct {
	session  *chat.Session
	store    *config.Store
	imageDir string

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	messages       []models.Message
	loading        bool
	ready          bool
	err            error
	notice         string
	animationFrame int
	cancel         context.CancelFunc

	selector personaSelector

	// Dimensions
	width  int
	height int
}

// ChatOption configures a chat model
type ChatOption func(*Model)

// WithNotice shows text on the notice line when the chat opens
func WithNotice(text string) ChatOption {
	return func(m *Model) {
		m.notice = text
	}
}

// NewChatModel creates a new chat TUI model
func NewChatModel(session *chat.Session, store *config.Store, opts ...ChatOption) Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message, or /help for commands..."
	ta.CharLimit = 16000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Line
	s.Style = loadingStyle

	m := Model{
		session:  session,
		store:    store,
		textarea: ta,
		spinner:  s,
		messages: []models.Message{},
	}
	m.applyConfig()
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*120, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.selector.active {
		return m.updateSelector(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancelSend()
			return m, tea.Quit

		case "esc":
			if m.loading {
				m.cancelSend()
				m.notice = "Cancelling request..."
				return m, nil
			}
			return m, tea.Quit

		case "ctrl+g":
			m.openSelector(targetPrimary)
			return m, nil

		case "ctrl+n":
			m.openSelector(targetSecondary)
			return m, nil

		case "ctrl+y":
			m.toggleSynthesis()
			return m, nil

		case "ctrl+s":
			m.toggleSearch()
			return m, nil

		case "enter":
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if isCommand(input) {
				m.textarea.Reset()
				return m.runCommand(input)
			}
			if input == "" && m.session.Attachments().Len() == 0 {
				return m, nil
			}
			return m.submit(input)
		}

	case dispatchMsg:
		m.finishDispatch(msg)

	case configReloadedMsg:
		m.applyConfig()
		m.notice = "Settings reloaded"
		m.updateViewport()

	case configErrorMsg:
		m.notice = reloadFailedNotice(msg.err)

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.loading {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// only pass KeyMsg to textarea to prevent escape sequence leaks
	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// layout sizes the viewport and textarea to the window
func (m *Model) layout() {
	headerHeight := 2 // title bar and mode line
	inputHeight := 7  // input panel with border and attachment line
	statusHeight := 2 // notice line and status bar
	padding := 2

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
	if vpHeight < 5 {
		vpHeight = 5
	}

	contentWidth := m.width - 4

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.updateViewport()
}

// applyConfig picks up settings that can change while the chat is open
func (m *Model) applyConfig() {
	cfg := m.store.Config()
	if render.SetTUITheme(cfg.TUITheme) {
		UpdateTheme()
	}
	if dir, err := config.GetDownloadDir(cfg); err == nil {
		m.imageDir = dir
	}
	if m.selector.active {
		m.selector.refresh(m.session.Personas())
	}
}

func (m *Model) openSelector(target selectorTarget) {
	state := m.session.Mode().State()
	current := state.Active.Name
	if target == targetSecondary {
		current = state.Secondary.Name
	}
	m.selector.open(target, m.session.Personas(), current)
}

func (m *Model) toggleSynthesis() {
	if m.session.Mode().ToggleSynthesis() {
		state := m.session.Mode().State()
		m.notice = fmt.Sprintf("Synthesis on: %s + %s", state.Active.DisplayName(), state.Secondary.DisplayName())
		return
	}
	m.notice = "Synthesis off"
}

func (m *Model) toggleSearch() {
	if m.session.Mode().ToggleSearch() {
		m.notice = "Web search on"
		return
	}
	m.notice = "Web search off"
}

func (m *Model) cancelSend() {
	if m.cancel != nil {
		m.cancel()
	}
}

// submit echoes the user's message and starts the send
func (m Model) submit(input string) (tea.Model, tea.Cmd) {
	content := input
	if atts := m.session.Attachments().List(); len(atts) > 0 {
		names := make([]string, len(atts))
		for i, a := range atts {
			names[i] = a.Name
		}
		content = strings.TrimSpace(content + "\n\n[attached: " + strings.Join(names, ", ") + "]")
	}
	m.messages = append(m.messages, models.Message{Role: models.RoleUser, Content: content})

	m.loading = true
	m.err = nil
	m.notice = ""
	m.animationFrame = 0
	m.textarea.Reset()
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		m.sendMessage(input),
		m.spinner.Tick,
		animationTick(),
	)
}

// sendMessage creates a command that runs one send and reports its transcript
func (m *Model) sendMessage(prompt string) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	session := m.session
	rec := newTranscriptRecorder(m.imageDir, prompt)
	return func() tea.Msg {
		defer cancel()
		_, err := session.Dispatch(ctx, prompt, rec)
		return dispatchMsg{messages: rec.messages, err: err}
	}
}

// finishDispatch appends the outcome of a send to the transcript
func (m *Model) finishDispatch(msg dispatchMsg) {
	m.loading = false
	m.cancel = nil
	m.messages = append(m.messages, msg.messages...)

	switch {
	case msg.err != nil:
		if hint := ErrorHint(msg.err); hint != "" {
			m.notice = "Hint: " + hint
		} else {
			m.notice = ""
		}
	case m.store.Config().CopyToClipboard:
		if last, ok := m.lastAssistantContent(); ok {
			if err := clipboard.WriteAll(last); err == nil {
				m.notice = "Response copied to clipboard"
			}
		}
	}

	m.updateViewport()
	m.viewport.GotoBottom()
}

func isCommand(input string) bool {
	if strings.HasPrefix(input, "/") {
		return true
	}
	return input == "exit" || input == "quit"
}

// runCommand executes a slash command typed into the input
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	name := input
	arg := ""
	if i := strings.IndexAny(input, " \t"); i >= 0 {
		name = input[:i]
		arg = strings.TrimSpace(input[i+1:])
	}
	m.err = nil
	m.notice = ""

	switch strings.ToLower(name) {
	case "/quit", "/exit", "quit", "exit":
		return m, tea.Quit

	case "/gems", "/gem", "/persona":
		m.openSelector(targetPrimary)

	case "/secondary":
		m.openSelector(targetSecondary)

	case "/synth", "/synthesis":
		m.toggleSynthesis()

	case "/search":
		m.toggleSearch()

	case "/attach":
		if arg == "" {
			m.err = fmt.Errorf("usage: /attach <path>")
			break
		}
		att, err := m.session.AttachFile(expandPath(arg))
		if err != nil {
			m.err = err
			break
		}
		m.notice = fmt.Sprintf("Attached %s (%s, %s)", att.Name, att.MIMEType, formatSize(att.Size()))

	case "/detach":
		buf := m.session.Attachments()
		if arg == "" {
			n := buf.Len()
			buf.Clear()
			m.notice = fmt.Sprintf("Removed %d attachment(s)", n)
			break
		}
		n, err := strconv.Atoi(arg)
		if err != nil {
			m.err = fmt.Errorf("usage: /detach [n]")
			break
		}
		att, ok := buf.RemoveAt(n - 1)
		if !ok {
			m.err = fmt.Errorf("no attachment #%d", n)
			break
		}
		m.notice = "Removed " + att.Name

	case "/clear":
		m.messages = []models.Message{}
		m.updateViewport()

	case "/copy":
		last, ok := m.lastAssistantContent()
		if !ok {
			m.err = fmt.Errorf("nothing to copy yet")
			break
		}
		if err := clipboard.WriteAll(last); err != nil {
			m.err = fmt.Errorf("copy to clipboard: %w", err)
			break
		}
		m.notice = "Copied to clipboard"

	case "/help", "/?":
		m.notice = helpText

	default:
		m.err = fmt.Errorf("unknown command %s (try /help)", name)
	}

	return m, nil
}

// lastAssistantContent returns the latest reply, or the saved path for images
func (m Model) lastAssistantContent() (string, bool) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		if msg.Role != models.RoleAssistant {
			continue
		}
		if msg.ImagePath != "" {
			return msg.ImagePath, true
		}
		return msg.Content, true
	}
	return "", false
}

// expandPath resolves a leading ~ and strips surrounding quotes
func expandPath(path string) string {
	path = strings.Trim(path, `"'`)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	if m.selector.active {
		return m.renderSelector()
	}

	var sections []string
	contentWidth := m.width - 4

	// HEADER
	sections = append(sections, m.renderTitleBar(contentWidth), m.renderModeLine(contentWidth))

	// MESSAGES
	var messagesContent string
	if len(m.messages) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent)
	sections = append(sections, messagesPanel)

	// INPUT
	var inputContent string
	if m.loading {
		inputContent = m.renderLoadingAnimation()
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.renderAttachments(contentWidth-4),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	// STATUS
	sections = append(sections, noticeStyle.Render(m.notice))
	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderTitleBar renders the window title with the model name
func (m Model) renderTitleBar(width int) string {
	left := titleStyle.Render("■ geminiwin95 - " + m.session.Model())
	right := titleStyle.Render("_ □ ×")

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	filler := titleBarStyle.UnsetPadding().Render(strings.Repeat(" ", gap))
	return titleBarStyle.Width(width).Render(left + filler + right)
}

// renderModeLine shows the active persona and the mode toggles
func (m Model) renderModeLine(width int) string {
	state := m.session.Mode().State()

	badge := func(label string, on bool) string {
		if on {
			return badgeOnStyle.Render("[x] " + label)
		}
		return badgeOffStyle.Render("[ ] " + label)
	}

	persona := "Persona: " + state.Active.DisplayName()
	if state.Synthesis {
		persona += " + " + state.Secondary.DisplayName()
	}

	parts := []string{
		badgeOnStyle.Render(persona),
		badge("Synthesis", state.Synthesis),
		badge("Web search", state.SearchEnabled()),
	}
	if state.UsesImageEndpoint() {
		parts = append(parts, badgeOnStyle.Render("Image mode"))
	}

	line := strings.Join(parts, badgeOffStyle.Render("  "))
	return titleBarStyle.Width(width).Render(line)
}

// renderAttachments lists the files queued for the next send
func (m Model) renderAttachments(width int) string {
	atts := m.session.Attachments().List()
	if len(atts) == 0 {
		return hintStyle.Render("No attachments")
	}

	items := make([]string, len(atts))
	for i, a := range atts {
		items[i] = fmt.Sprintf("%d. %s (%s)", i+1, a.Name, formatSize(a.Size()))
	}
	return attachmentStyle.Render(truncateRunes("📎 "+strings.Join(items, "  "), width))
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	title := titleStyle.Width(width).Align(lipgloss.Center).Render("Welcome to geminiwin95")
	subtitle := hintStyle.Width(width).Align(lipgloss.Center).Render("Type a message below. Ctrl+G picks a persona, /help lists commands.")

	content := lipgloss.JoinVertical(lipgloss.Center, "", title, "", subtitle, "")

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderLoadingAnimation renders a progress bar while a send is in flight
func (m Model) renderLoadingAnimation() string {
	const barWidth = 20

	filled := m.animationFrame % (barWidth + 1)
	bar := loadingStyle.Render(strings.Repeat("█", filled)) +
		hintStyle.Render(strings.Repeat("░", barWidth-filled))

	dots := strings.Repeat(".", (m.animationFrame/3)%4)
	text := lipgloss.NewStyle().Foreground(colorText).Render(" Gemini is thinking" + dots)

	return fmt.Sprintf("%s [%s]%s  %s", m.spinner.View(), bar, text, hintStyle.Render("Esc to cancel"))
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	escDesc := "Quit"
	if m.loading {
		escDesc = "Cancel"
	}

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"^G", "Persona"},
		{"^N", "Secondary"},
		{"^Y", "Synth"},
		{"^S", "Search"},
		{"Esc", escDesc},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}
	mdOpts := render.OptionsFromConfig(m.store.Config().Markdown).WithWidth(bubbleWidth - 4)

	for i, msg := range m.messages {
		if i > 0 {
			content.WriteString("\n")
		}

		switch msg.Role {
		case models.RoleUser:
			label := userLabelStyle.Render("● You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.Content)
			content.WriteString(label + "\n" + bubble)

		case models.RoleAssistant:
			content.WriteString(assistantLabelStyle.Render("✦ Gemini") + "\n")
			if msg.ImagePath != "" {
				content.WriteString(assistantBubbleStyle.Render(msg.Content) + "\n")
				content.WriteString(imagePathStyle.Render(msg.ImagePath))
				break
			}

			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(render.Reply(msg.Content, mdOpts)))

		case models.RoleNotice:
			content.WriteString(noticeStyle.Width(bubbleWidth).Render("! " + msg.Content))

		default:
			content.WriteString(systemLabelStyle.Width(bubbleWidth).Render(msg.Content))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

func reloadFailedNotice(err error) string {
	return "Settings not reloaded: " + err.Error()
}

// RunChat starts the interactive chat TUI
func RunChat(session *chat.Session, store *config.Store, opts ...ChatOption) error {
	m := NewChatModel(session, store, opts...)
	p := tea.NewProgram(m, tea.WithAltScreen())

	store.OnReload(func(config.Config) {
		p.Send(configReloadedMsg{})
	})
	store.OnReloadError(func(err error) {
		p.Send(configErrorMsg{err: err})
	})

	_, err := p.Run()
	return err
}
