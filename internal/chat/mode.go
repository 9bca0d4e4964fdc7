package chat

import (
	"sync"

	"github.com/diogo/geminiwin95/internal/models"
)

// ModeController owns the ModeState of one chat view
type ModeController struct {
	mu    sync.RWMutex
	state models.ModeState
}

// NewModeController creates a controller in the default state
func NewModeController() *ModeController {
	return &ModeController{state: models.DefaultModeState()}
}

// State returns a snapshot of the current mode
func (m *ModeController) State() models.ModeState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// SelectPersona sets the active persona. Selecting Deep Research turns
// search on; switching away leaves it on.
func (m *ModeController) SelectPersona(p models.Persona) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Active = p
	if p.IsDeepResearch() {
		m.state.Search = true
	}
}

// SelectSecondaryPersona sets the persona blended in under synthesis
func (m *ModeController) SelectSecondaryPersona(p models.Persona) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Secondary = p
}

// ToggleSynthesis flips synthesis and returns the new value
func (m *ModeController) ToggleSynthesis() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Synthesis = !m.state.Synthesis
	return m.state.Synthesis
}

// ToggleSearch flips search and returns the new value
func (m *ModeController) ToggleSearch() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Search = !m.state.Search
	return m.state.Search
}

// SetSynthesis sets synthesis explicitly
func (m *ModeController) SetSynthesis(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Synthesis = on
}

// SetSearch sets search explicitly
func (m *ModeController) SetSearch(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Search = on
}
