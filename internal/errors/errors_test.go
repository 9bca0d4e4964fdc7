package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(403, "gemini-1.5-flash:generateContent", `{"error":"denied"}`)

	if err.Error() != "API Error: 403" {
		t.Errorf("Error() = %s, want %s", err.Error(), "API Error: 403")
	}

	wrapped := fmt.Errorf("send failed: %w", err)
	if got := GetHTTPStatus(wrapped); got != 403 {
		t.Errorf("GetHTTPStatus() = %d, want 403", got)
	}
	if got := GetResponseBody(wrapped); got != `{"error":"denied"}` {
		t.Errorf("GetResponseBody() = %q", got)
	}
	if got := GetEndpoint(wrapped); got != "gemini-1.5-flash:generateContent" {
		t.Errorf("GetEndpoint() = %q", got)
	}
	if !IsAPIError(wrapped) {
		t.Error("IsAPIError() should be true")
	}
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("generate content", "https://example.test", cause)

	expected := "network error during generate content at https://example.test: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
	if !errors.Is(err, cause) {
		t.Error("NetworkError should unwrap to its cause")
	}
	if !IsNetworkError(fmt.Errorf("wrap: %w", err)) {
		t.Error("IsNetworkError() should be true for wrapped errors")
	}
	if GetEndpoint(err) != "https://example.test" {
		t.Errorf("GetEndpoint() = %q", GetEndpoint(err))
	}

	noEndpoint := NewNetworkError("upload", "", cause)
	if noEndpoint.Error() != "network error during upload: connection refused" {
		t.Errorf("Error() = %s", noEndpoint.Error())
	}
}

func TestParseError(t *testing.T) {
	err := NewParseError("no candidates", "candidates.0")

	if err.Error() != "parse error at candidates.0: no candidates" {
		t.Errorf("Error() = %s", err.Error())
	}
	if !errors.Is(err, ErrMalformedResponse) {
		t.Error("ParseError should match ErrMalformedResponse")
	}
	if !errors.Is(fmt.Errorf("x: %w", err), NewParseError("other", "")) {
		t.Error("ParseError should match another ParseError")
	}
	if errors.Is(err, ErrInvalidRequest) {
		t.Error("ParseError should not match ErrInvalidRequest")
	}
}

func TestRequestError(t *testing.T) {
	err := NewRequestError("Image Generation needs a text prompt")
	if err.Error() != "Image Generation needs a text prompt" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrInvalidRequest) {
		t.Error("RequestError should match ErrInvalidRequest")
	}
	if errors.Is(err, ErrMissingCredential) {
		t.Error("RequestError should not match other sentinels")
	}
	if !errors.Is(fmt.Errorf("send: %w", err), ErrInvalidRequest) {
		t.Error("wrapped RequestError should match ErrInvalidRequest")
	}
}

func TestAttachmentError(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewAttachmentError("notes.pdf", "failed to read file", cause)

	if err.Error() != "attachment notes.pdf: failed to read file: permission denied" {
		t.Errorf("Error() = %s", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("AttachmentError should unwrap to its cause")
	}
	if !IsAttachmentError(err) {
		t.Error("IsAttachmentError() should be true")
	}

	plain := NewAttachmentError("a.exe", "unsupported type", nil)
	if plain.Error() != "attachment a.exe: unsupported type" {
		t.Errorf("Error() = %s", plain.Error())
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("model", "must not be empty")
	if err.Error() != "invalid model: must not be empty" {
		t.Errorf("Error() = %s", err.Error())
	}
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"missing credential", ErrMissingCredential, true},
		{"wrapped missing credential", fmt.Errorf("send: %w", ErrMissingCredential), true},
		{"401", NewAPIError(401, "", ""), true},
		{"403", NewAPIError(403, "", ""), true},
		{"500", NewAPIError(500, "", ""), false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.err); got != tt.want {
				t.Errorf("IsAuthError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRateLimitError(t *testing.T) {
	if !IsRateLimitError(NewAPIError(429, "", "")) {
		t.Error("429 should be a rate limit error")
	}
	if IsRateLimitError(NewAPIError(400, "", "")) {
		t.Error("400 should not be a rate limit error")
	}
}

func TestGetHelpers_NonMatching(t *testing.T) {
	err := errors.New("plain")
	if GetHTTPStatus(err) != 0 {
		t.Error("GetHTTPStatus() should be 0 for plain errors")
	}
	if GetResponseBody(err) != "" {
		t.Error("GetResponseBody() should be empty for plain errors")
	}
	if GetEndpoint(err) != "" {
		t.Error("GetEndpoint() should be empty for plain errors")
	}
}
