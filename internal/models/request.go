package models

// GenerateRequest is the generateContent request body
type GenerateRequest struct {
	Contents          []Content `json:"contents"`
	SystemInstruction *Content  `json:"system_instruction,omitempty"`
	Tools             []Tool    `json:"tools,omitempty"`
}

// Content is a list of parts
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is either a text part or an inline data part
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
}

// InlineData carries a base64 file
type InlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Tool is a tool descriptor; only google_search is used
type Tool struct {
	GoogleSearch *GoogleSearch `json:"google_search,omitempty"`
}

// GoogleSearch enables search augmentation. It has no options.
type GoogleSearch struct{}

// PredictRequest is the Imagen predict request body
type PredictRequest struct {
	Instances []PredictInstance `json:"instances"`
}

// PredictInstance holds a single image prompt
type PredictInstance struct {
	Prompt string `json:"prompt"`
}
