package models

import "strings"

// PersonaKind identifies how a persona participates in a request
type PersonaKind int

const (
	KindDefault PersonaKind = iota
	KindGuidedLearning
	KindDeepResearch
	KindImageGeneration
	KindCustom
)

func (k PersonaKind) String() string {
	switch k {
	case KindDefault:
		return "default"
	case KindGuidedLearning:
		return "guided-learning"
	case KindDeepResearch:
		return "deep-research"
	case KindImageGeneration:
		return "image-generation"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Built-in persona names
const (
	PersonaDefault         = "Default"
	PersonaGuidedLearning  = "Guided Learning"
	PersonaDeepResearch    = "Deep Research"
	PersonaImageGeneration = "Image Generation"
)

const (
	guidedLearningInstruction = "You are a patient tutor. Guide the user to the answer step by step " +
		"instead of giving it away. Ask one short question at a time to check understanding, " +
		"use concrete examples, and adapt explanations to the learner's level."

	deepResearchInstruction = "You are a meticulous research assistant. Search the web for current, " +
		"authoritative sources, compare them, and write a structured report with a summary, " +
		"key findings, open questions and a list of the sources you relied on."
)

// SavedGem is a user-defined persona as stored in the configuration
type SavedGem struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	Instruction string `json:"instruction" yaml:"instruction" toml:"instruction"`
}

// Persona is a resolved persona. Resolution happens once, at selection time,
// so request building never compares names.
type Persona struct {
	Kind        PersonaKind
	Name        string
	Instruction string
}

// IsImageGeneration reports whether the persona routes to the image endpoint
func (p Persona) IsImageGeneration() bool {
	return p.Kind == KindImageGeneration
}

// IsDeepResearch reports whether the persona forces search augmentation
func (p Persona) IsDeepResearch() bool {
	return p.Kind == KindDeepResearch
}

// DisplayName returns the persona name, falling back to Default
func (p Persona) DisplayName() string {
	if p.Name == "" {
		return PersonaDefault
	}
	return p.Name
}

// BuiltinPersonas returns the predefined personas, in selector order
func BuiltinPersonas() []Persona {
	return []Persona{
		{Kind: KindDefault, Name: PersonaDefault},
		{Kind: KindGuidedLearning, Name: PersonaGuidedLearning, Instruction: guidedLearningInstruction},
		{Kind: KindDeepResearch, Name: PersonaDeepResearch, Instruction: deepResearchInstruction},
		{Kind: KindImageGeneration, Name: PersonaImageGeneration},
	}
}

// DefaultPersona returns the Default built-in
func DefaultPersona() Persona {
	return Persona{Kind: KindDefault, Name: PersonaDefault}
}

// IsBuiltinName reports whether name is reserved by a built-in persona.
// The comparison ignores case and surrounding spaces.
func IsBuiltinName(name string) bool {
	_, ok := builtinByName(name)
	return ok
}

func builtinByName(name string) (Persona, bool) {
	name = strings.TrimSpace(name)
	for _, p := range BuiltinPersonas() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Persona{}, false
}

// ResolvePersona turns a selector name into a Persona.
// Built-ins take precedence over saved gems; among saved gems sharing a
// name the first one wins. Unknown names resolve to Default with ok=false.
func ResolvePersona(name string, saved []SavedGem) (Persona, bool) {
	if strings.TrimSpace(name) == "" {
		return DefaultPersona(), true
	}
	if p, ok := builtinByName(name); ok {
		return p, true
	}
	for _, g := range saved {
		if g.Name == name {
			return Persona{Kind: KindCustom, Name: g.Name, Instruction: g.Instruction}, true
		}
	}
	return DefaultPersona(), false
}

// SelectablePersonas lists built-ins followed by saved gems, skipping saved
// gems that are shadowed by a built-in or by an earlier gem of the same name.
func SelectablePersonas(saved []SavedGem) []Persona {
	personas := BuiltinPersonas()
	seen := make(map[string]bool, len(saved))
	for _, g := range saved {
		if IsBuiltinName(g.Name) || seen[g.Name] {
			continue
		}
		seen[g.Name] = true
		personas = append(personas, Persona{Kind: KindCustom, Name: g.Name, Instruction: g.Instruction})
	}
	return personas
}
