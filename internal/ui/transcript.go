package ui

import (
	"slices"
	"sync"

	"github.com/klemjul/novachat/internal/chat"
)

// Transcript holds the entries displayed by the chat model.
type Transcript struct {
	mu      sync.Mutex
	entries []chat.Entry
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) Append(entry chat.Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry)
}

func (t *Transcript) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = slices.DeleteFunc(t.entries, func(e chat.Entry) bool { return e.ID == id })
}

func (t *Transcript) Entries() []chat.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.entries)
}
