package chat

import (
	"sync"
	"testing"

	"github.com/diogo/geminiwin95/internal/models"
)

func att(id string) models.Attachment {
	return models.Attachment{ID: id, Name: id + ".png", MIMEType: "image/png", Data: "Zm9v"}
}

func ids(atts []models.Attachment) string {
	out := ""
	for _, a := range atts {
		out += a.ID
	}
	return out
}

func TestBuffer_AddRemove(t *testing.T) {
	b := NewBuffer()
	b.Add(att("a"))
	b.Add(att("b"))
	b.Add(att("c"))

	if got := ids(b.List()); got != "abc" {
		t.Fatalf("List() = %s, want abc", got)
	}

	if !b.Remove("b") {
		t.Error("Remove(b) should succeed")
	}
	if b.Remove("zzz") {
		t.Error("Remove of unknown id should fail")
	}
	if got := ids(b.List()); got != "ac" {
		t.Errorf("List() = %s, want ac", got)
	}

	removed, ok := b.RemoveAt(1)
	if !ok || removed.ID != "c" {
		t.Errorf("RemoveAt(1) = %v, %v", removed.ID, ok)
	}
	if _, ok := b.RemoveAt(5); ok {
		t.Error("RemoveAt out of range should fail")
	}
	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}

	b.Clear()
	if b.Len() != 0 {
		t.Errorf("Len() after Clear = %d", b.Len())
	}
}

func TestBuffer_ListIsCopy(t *testing.T) {
	b := NewBuffer()
	b.Add(att("a"))

	list := b.List()
	list[0].ID = "mutated"

	if b.List()[0].ID != "a" {
		t.Error("List() should return a copy")
	}
}

func TestBuffer_Take(t *testing.T) {
	b := NewBuffer()
	b.Add(att("a"))
	b.Add(att("b"))

	taken := b.Take()
	if ids(taken) != "ab" {
		t.Fatalf("Take() = %s, want ab", ids(taken))
	}
	if b.Len() != 0 {
		t.Error("buffer should be empty after Take")
	}

	// edits after Take must not reach the taken slice
	b.Add(att("c"))
	if ids(taken) != "ab" {
		t.Errorf("taken slice changed to %s", ids(taken))
	}

	b.Restore(taken)
	if got := ids(b.List()); got != "abc" {
		t.Errorf("after Restore List() = %s, want abc", got)
	}

	b.Restore(nil)
	if b.Len() != 3 {
		t.Errorf("Restore(nil) changed Len to %d", b.Len())
	}
}

func TestBuffer_Concurrent(t *testing.T) {
	b := NewBuffer()
	var wg sync.WaitGroup

	total := 0
	var mu sync.Mutex
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			b.Add(att("x"))
		}()
		go func() {
			defer wg.Done()
			n := len(b.Take())
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()

	total += b.Len()
	if total != 50 {
		t.Errorf("attachments lost or duplicated: %d, want 50", total)
	}
}
