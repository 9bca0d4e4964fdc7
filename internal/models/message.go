package models

// Message roles in the transcript
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleNotice    = "notice"
)

// Message represents a chat message for TUI display
type Message struct {
	Role      string
	Content   string
	ImagePath string // set when the assistant returned an image saved to disk
}
