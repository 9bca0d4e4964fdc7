package models

// ModeState holds the chat toggles that shape a request.
// Secondary only reaches the API while Synthesis is on.
type ModeState struct {
	Active    Persona
	Secondary Persona
	Synthesis bool
	Search    bool
}

// DefaultModeState returns the state of a freshly opened chat
func DefaultModeState() ModeState {
	return ModeState{
		Active:    DefaultPersona(),
		Secondary: DefaultPersona(),
	}
}

// UsesImageEndpoint reports whether a send in this state goes to the image endpoint
func (s ModeState) UsesImageEndpoint() bool {
	return s.Active.IsImageGeneration() && !s.Synthesis
}

// SearchEnabled reports whether the search tool is attached to a generation request
func (s ModeState) SearchEnabled() bool {
	if s.Search || s.Active.IsDeepResearch() {
		return true
	}
	return s.Synthesis && s.Secondary.IsDeepResearch()
}
