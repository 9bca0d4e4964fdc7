package api

import (
	"encoding/json"
	"fmt"
	"strings"

	apierrors "github.com/diogo/geminiwin95/internal/errors"
	"github.com/diogo/geminiwin95/internal/models"
)

// InstructionLookup returns the current instruction for a saved gem
type InstructionLookup func(name string) (string, bool)

// ComposeOptions contains options for request composition
type ComposeOptions struct {
	Model  string            // text model; defaults to models.DefaultModel
	Lookup InstructionLookup // fresh instructions for custom personas
}

// Request is a serialized, ready-to-send API call
type Request struct {
	Kind     models.RequestKind
	Model    string
	Body     []byte
	Warnings []string
}

// Path returns the endpoint path relative to the API base URL
func (r *Request) Path() string {
	if r.Kind == models.RequestImage {
		return fmt.Sprintf(models.PathPredict, r.Model)
	}
	return fmt.Sprintf(models.PathGenerate, r.Model)
}

const synthesisTemplate = `You are acting as a synthesis of two personas. Combine both perspectives into a single, coherent response.

Persona 1 (%s):
%s

Persona 2 (%s):
%s`

// Compose builds the outbound request for one send. It performs no I/O.
func Compose(text string, attachments []models.Attachment, mode models.ModeState, opts *ComposeOptions) (*Request, error) {
	if text == "" && len(attachments) == 0 {
		return nil, apierrors.ErrInvalidRequest
	}

	var lookup InstructionLookup
	model := models.DefaultModel
	if opts != nil {
		lookup = opts.Lookup
		if opts.Model != "" {
			model = opts.Model
		}
	}

	if mode.UsesImageEndpoint() {
		return composeImage(text, attachments)
	}

	instruction := resolveInstruction(mode.Active, lookup)
	if mode.Synthesis {
		instruction = SynthesisInstruction(
			mode.Active.DisplayName(), instruction,
			mode.Secondary.DisplayName(), resolveInstruction(mode.Secondary, lookup),
		)
	}

	var parts []models.Part
	if text != "" {
		parts = append(parts, models.Part{Text: text})
	}
	for _, att := range attachments {
		parts = append(parts, models.Part{
			InlineData: &models.InlineData{MIMEType: att.MIMEType, Data: att.Data},
		})
	}

	payload := models.GenerateRequest{
		Contents: []models.Content{{Parts: parts}},
	}
	if instruction != "" {
		payload.SystemInstruction = &models.Content{Parts: []models.Part{{Text: instruction}}}
	}
	if mode.SearchEnabled() {
		payload.Tools = []models.Tool{{GoogleSearch: &models.GoogleSearch{}}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	return &Request{Kind: models.RequestGenerate, Model: model, Body: body}, nil
}

func composeImage(prompt string, attachments []models.Attachment) (*Request, error) {
	// Imagen needs a prompt; files alone cannot drive it
	if prompt == "" {
		if len(attachments) > 0 {
			return nil, apierrors.NewRequestError(fmt.Sprintf(
				"%s needs a text prompt; attachments are not supported in this mode",
				models.PersonaImageGeneration))
		}
		return nil, apierrors.ErrInvalidRequest
	}

	body, err := json.Marshal(models.PredictRequest{
		Instances: []models.PredictInstance{{Prompt: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req := &Request{Kind: models.RequestImage, Model: models.ImageModel, Body: body}
	if n := len(attachments); n > 0 {
		req.Warnings = append(req.Warnings, fmt.Sprintf(
			"Attachments are not supported in %s mode; %d file(s) were not sent.",
			models.PersonaImageGeneration, n))
	}
	return req, nil
}

// resolveInstruction returns the system instruction text of a persona.
// Built-ins carry fixed strings; custom personas prefer the lookup so that
// edits to a saved gem apply without reselecting it.
func resolveInstruction(p models.Persona, lookup InstructionLookup) string {
	if p.Kind == models.KindCustom && lookup != nil {
		if instr, ok := lookup(p.Name); ok {
			return instr
		}
	}
	return p.Instruction
}

// SynthesisInstruction merges two persona instructions into one.
// Empty instructions are replaced with models.DefaultAssistantPlaceholder.
func SynthesisInstruction(nameA, instrA, nameB, instrB string) string {
	if strings.TrimSpace(instrA) == "" {
		instrA = models.DefaultAssistantPlaceholder
	}
	if strings.TrimSpace(instrB) == "" {
		instrB = models.DefaultAssistantPlaceholder
	}
	return fmt.Sprintf(synthesisTemplate, nameA, instrA, nameB, instrB)
}
