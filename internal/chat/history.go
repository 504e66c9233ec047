package chat

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

const HistoryCap = 80

// History is the capped, persisted message log. It is loaded from the store
// on first use.
type History struct {
	mu       sync.Mutex
	store    Store
	logger   *slog.Logger
	messages []Message
	loaded   bool
}

func NewHistory(store Store, logger *slog.Logger) *History {
	if logger == nil {
		logger = slog.Default()
	}
	return &History{store: store, logger: logger}
}

// Load reads the stored list. Missing or unreadable data yields an empty list.
func (h *History) Load() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.load()
	return slices.Clone(h.messages)
}

func (h *History) load() {
	if h.loaded {
		return
	}
	h.loaded = true
	h.messages = nil

	data, err := h.store.Load()
	if err != nil {
		h.logger.Warn("failed to load history", "error", err)
		return
	}
	if data == nil {
		return
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		h.logger.Warn("discarding corrupt history", "error", err)
		return
	}
	h.messages = messages
}

// Push appends msg, keeps the newest HistoryCap entries and writes the whole
// list back.
func (h *History) Push(msg Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.load()

	h.messages = append(h.messages, msg)
	if len(h.messages) > HistoryCap {
		h.messages = slices.Clone(h.messages[len(h.messages)-HistoryCap:])
	}
	return h.save()
}

func (h *History) Messages() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.load()
	return slices.Clone(h.messages)
}

func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loaded = true
	h.messages = nil
	return h.save()
}

func (h *History) save() error {
	list := h.messages
	if list == nil {
		list = []Message{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	return h.store.Save(data)
}
