// Package models contains data types and constants for the Gemini API.
package models

// Endpoints for the Gemini REST API
const (
	EndpointBase = "https://generativelanguage.googleapis.com/v1beta"

	// Path formats, relative to EndpointBase
	PathGenerate = "/models/%s:generateContent"
	PathPredict  = "/models/%s:predict"
)

// Model names
const (
	DefaultModel = "gemini-1.5-flash"
	ImageModel   = "imagen-3.0-generate-001"
)

// Fixed strings shown when a response carries no usable content
const (
	FallbackNoResponse = "No response from Gemini."
	FallbackNoImage    = "No image generated."

	// DefaultAssistantPlaceholder replaces an empty instruction in the synthesis template
	DefaultAssistantPlaceholder = "Default Assistant"
)

// ImageDataURIPrefix is prepended to base64 image bytes returned by the predict endpoint
const ImageDataURIPrefix = "data:image/png;base64,"

// AvailableModels returns the text models listed in help output.
// Any other model name is still accepted and sent as-is.
func AvailableModels() []string {
	return []string{
		"gemini-1.5-flash",
		"gemini-1.5-pro",
		"gemini-2.0-flash",
		"gemini-2.5-flash",
		"gemini-2.5-pro",
	}
}

// DefaultHeaders returns the headers sent with every API call
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "geminiwin95",
	}
}
