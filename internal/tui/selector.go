package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/geminiwin95/internal/models"
)

// selectorTarget tells which slot a selection fills
type selectorTarget int

const (
	targetPrimary selectorTarget = iota
	targetSecondary
)

func (t selectorTarget) title() string {
	if t == targetSecondary {
		return "Select Secondary Persona"
	}
	return "Select Persona"
}

// personaSelector is the overlay listing built-ins and saved gems
type personaSelector struct {
	active   bool
	target   selectorTarget
	personas []models.Persona
	cursor   int
	filter   string
}

func (s *personaSelector) open(target selectorTarget, personas []models.Persona, current string) {
	s.active = true
	s.target = target
	s.personas = personas
	s.filter = ""
	s.cursor = 0
	for i, p := range personas {
		if p.Name == current {
			s.cursor = i
			break
		}
	}
}

func (s *personaSelector) close() {
	s.active = false
	s.personas = nil
	s.filter = ""
	s.cursor = 0
}

// refresh swaps in a new persona list, keeping the cursor on the same name
func (s *personaSelector) refresh(personas []models.Persona) {
	var name string
	if filtered := s.filtered(); s.cursor < len(filtered) {
		name = filtered[s.cursor].Name
	}
	s.personas = personas
	s.cursor = 0
	for i, p := range s.filtered() {
		if p.Name == name {
			s.cursor = i
			break
		}
	}
}

// filtered returns the personas whose name contains the filter, ignoring case
func (s personaSelector) filtered() []models.Persona {
	if s.filter == "" {
		return s.personas
	}

	filter := strings.ToLower(s.filter)
	var filtered []models.Persona
	for _, p := range s.personas {
		if strings.Contains(strings.ToLower(p.Name), filter) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// updateSelector handles input while the selector is open
func (m Model) updateSelector(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case configReloadedMsg:
		m.applyConfig()

	case configErrorMsg:
		m.notice = reloadFailedNotice(msg.err)

	case dispatchMsg:
		// a send may finish while the overlay is open
		m.finishDispatch(msg)

	case tea.KeyMsg:
		filtered := m.selector.filtered()

		switch msg.String() {
		case "ctrl+c":
			m.cancelSend()
			return m, tea.Quit

		case "esc":
			m.selector.close()

		case "up", "ctrl+p":
			if len(filtered) > 0 {
				m.selector.cursor--
				if m.selector.cursor < 0 {
					m.selector.cursor = len(filtered) - 1
				}
			}

		case "down", "ctrl+n":
			if len(filtered) > 0 {
				m.selector.cursor++
				if m.selector.cursor >= len(filtered) {
					m.selector.cursor = 0
				}
			}

		case "enter":
			if m.selector.cursor < len(filtered) {
				m.applySelection(m.selector.target, filtered[m.selector.cursor].Name)
				m.selector.close()
			}

		case "backspace":
			if len(m.selector.filter) > 0 {
				runes := []rune(m.selector.filter)
				m.selector.filter = string(runes[:len(runes)-1])
				m.selector.cursor = 0
			}

		default:
			switch msg.Type {
			case tea.KeyRunes:
				m.selector.filter += string(msg.Runes)
				m.selector.cursor = 0
			case tea.KeySpace:
				m.selector.filter += " "
				m.selector.cursor = 0
			}
		}
	}

	return m, nil
}

// applySelection resolves name into the primary or secondary slot
func (m *Model) applySelection(target selectorTarget, name string) {
	if target == targetSecondary {
		p, _ := m.session.SelectSecondaryPersona(name)
		m.notice = "Secondary persona: " + p.DisplayName()
		return
	}

	p, _ := m.session.SelectPersona(name)
	m.notice = "Persona: " + p.DisplayName()
	if p.IsDeepResearch() {
		m.notice += " (web search on)"
	}
}

// renderSelector renders the persona selection window
func (m Model) renderSelector() string {
	width := m.width - 8
	if width < 40 {
		width = 40
	}

	state := m.session.Mode().State()
	current := state.Active.DisplayName()
	if m.selector.target == targetSecondary {
		current = state.Secondary.DisplayName()
	}

	var content strings.Builder

	title := selectorTitleStyle.Render(m.selector.target.title())
	title += hintStyle.Render(fmt.Sprintf("  (current: %s)", current))
	content.WriteString(title)
	content.WriteString("\n\n")

	if m.selector.filter != "" {
		content.WriteString(inputLabelStyle.Render("Find:") + m.selector.filter + "_")
		content.WriteString("\n\n")
	}

	filtered := m.selector.filtered()
	if len(filtered) == 0 {
		content.WriteString(hintStyle.Render("  No personas match filter"))
		content.WriteString("\n")
	} else {
		maxItems := 8
		startIdx := 0
		if m.selector.cursor >= maxItems {
			startIdx = m.selector.cursor - maxItems + 1
		}
		endIdx := startIdx + maxItems
		if endIdx > len(filtered) {
			endIdx = len(filtered)
		}

		if startIdx > 0 {
			content.WriteString(hintStyle.Render("  ↑ more above"))
			content.WriteString("\n")
		}

		for i := startIdx; i < endIdx; i++ {
			p := filtered[i]
			cursor := "  "
			nameStyle := selectorItemStyle
			if i == m.selector.cursor {
				cursor = selectorCursorStyle.Render("▸ ")
				nameStyle = selectorSelectedStyle
			}

			tag := "[built-in]"
			if p.Kind == models.KindCustom {
				tag = "[gem]"
			}
			line := fmt.Sprintf("%s%s %s", cursor, nameStyle.Render(p.Name), selectorTagStyle.Render(tag))

			if p.Instruction != "" {
				maxDesc := width - len([]rune(p.Name)) - 20
				if maxDesc > 10 {
					line += hintStyle.Render(" - " + truncateRunes(firstLine(p.Instruction), maxDesc))
				}
			}

			content.WriteString(line)
			content.WriteString("\n")
		}

		if endIdx < len(filtered) {
			content.WriteString(hintStyle.Render("  ↓ more below"))
			content.WriteString("\n")
		}
	}

	content.WriteString("\n")

	shortcuts := []string{
		statusKeyStyle.Render("↑↓") + statusDescStyle.Render(" Navigate"),
		statusKeyStyle.Render("Enter") + statusDescStyle.Render(" Select"),
		statusKeyStyle.Render("Esc") + statusDescStyle.Render(" Cancel"),
	}
	content.WriteString(strings.Join(shortcuts, "  │  "))

	return selectorBoxStyle.Width(width).Render(content.String())
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
