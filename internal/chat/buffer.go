package chat

import (
	"sync"

	"github.com/diogo/geminiwin95/internal/models"
)

// Buffer holds the attachments queued for the next send, in order
type Buffer struct {
	mu    sync.Mutex
	items []models.Attachment
}

// NewBuffer creates an empty attachment buffer
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Add appends an attachment
func (b *Buffer) Add(att models.Attachment) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, att)
}

// Remove drops the attachment with the given id. Returns false if absent.
func (b *Buffer) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, att := range b.items {
		if att.ID == id {
			b.items = append(b.items[:i:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAt drops the attachment at index i (0-based)
func (b *Buffer) RemoveAt(i int) (models.Attachment, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i < 0 || i >= len(b.items) {
		return models.Attachment{}, false
	}
	att := b.items[i]
	b.items = append(b.items[:i:i], b.items[i+1:]...)
	return att, true
}

// List returns a copy of the queued attachments
func (b *Buffer) List() []models.Attachment {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Attachment, len(b.items))
	copy(out, b.items)
	return out
}

// Len returns the number of queued attachments
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Clear drops every queued attachment
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = nil
}

// Take swaps the live buffer for an empty one and returns the old
// contents. The returned slice is owned by the caller.
func (b *Buffer) Take() []models.Attachment {
	b.mu.Lock()
	defer b.mu.Unlock()

	taken := b.items
	b.items = nil
	return taken
}

// Restore puts previously taken attachments back in front of anything
// added since
func (b *Buffer) Restore(atts []models.Attachment) {
	if len(atts) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	items := make([]models.Attachment, 0, len(atts)+len(b.items))
	items = append(items, atts...)
	b.items = append(items, b.items...)
}
