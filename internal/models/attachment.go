package models

// Attachment is a user file encoded for an inline_data part
type Attachment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

// Size returns the decoded size in bytes, estimated from the base64 length
func (a Attachment) Size() int {
	n := len(a.Data)
	if n == 0 {
		return 0
	}
	size := n / 4 * 3
	if a.Data[n-1] == '=' {
		size--
		if n > 1 && a.Data[n-2] == '=' {
			size--
		}
	}
	return size
}
