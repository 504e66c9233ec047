package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

const (
	PlaceholderText = "…thinking"
	ErrorPrefix     = "Error: "
)

var ErrEmptyInput = errors.New("empty input")

// Transcript renders the conversation. Implementations keep the newest entry
// in view after every Append.
type Transcript interface {
	Append(entry Entry)
	Remove(id string)
}

// Pending is a submitted prompt waiting for its reply.
type Pending struct {
	ID     string
	Prompt string
}

// Reply is the outcome of sending a Pending exchange.
type Reply struct {
	PlaceholderID string
	Text          string
	Err           error
}

type SessionOptions struct {
	History    *History
	Transcript Transcript
	Asker      Asker
	// Options is forwarded as the opaque generation options of every prompt.
	Options map[string]any
	Logger  *slog.Logger
}

type Session struct {
	history    *History
	transcript Transcript
	asker      Asker
	options    map[string]any
	logger     *slog.Logger
	newID      func() string
}

func NewSession(opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		history:    opts.History,
		transcript: opts.Transcript,
		asker:      opts.Asker,
		options:    opts.Options,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// Load renders the stored history in order.
func (s *Session) Load() {
	for _, msg := range s.history.Load() {
		s.transcript.Append(Entry{ID: s.newID(), Message: msg})
	}
}

// Submit records the user message and shows a placeholder. It reports false
// when input is blank.
func (s *Session) Submit(input string) (Pending, bool) {
	prompt := strings.TrimSpace(input)
	if prompt == "" {
		return Pending{}, false
	}

	s.record(Message{Who: User, Text: prompt})

	pending := Pending{ID: s.newID(), Prompt: prompt}
	s.transcript.Append(Entry{
		ID:          pending.ID,
		Message:     Message{Who: Bot, Text: PlaceholderText},
		Placeholder: true,
	})
	return pending, true
}

func (s *Session) Send(ctx context.Context, pending Pending) Reply {
	text, err := s.asker.Ask(ctx, pending.Prompt, s.options)
	if err != nil {
		s.logger.Warn("prompt failed", "error", err)
	}
	return Reply{PlaceholderID: pending.ID, Text: text, Err: err}
}

// Resolve swaps the placeholder for the bot message.
func (s *Session) Resolve(reply Reply) Message {
	s.transcript.Remove(reply.PlaceholderID)

	msg := Message{Who: Bot, Text: reply.Text}
	if reply.Err != nil {
		msg.Text = ErrorPrefix + reply.Err.Error()
	}
	s.record(msg)
	return msg
}

// Exchange runs a full round trip. The bot message is recorded even when the
// proxy call fails; that failure is also returned.
func (s *Session) Exchange(ctx context.Context, input string) (Message, error) {
	pending, ok := s.Submit(input)
	if !ok {
		return Message{}, ErrEmptyInput
	}
	reply := s.Send(ctx, pending)
	return s.Resolve(reply), reply.Err
}

func (s *Session) record(msg Message) {
	s.transcript.Append(Entry{ID: s.newID(), Message: msg})
	if err := s.history.Push(msg); err != nil {
		s.logger.Error("failed to persist history", "error", err)
	}
}

// Presets are canned prompts selectable from the UI.
type Presets []string

var DefaultPresets = Presets{
	"Summarize the last answer in three bullet points.",
	"Explain that like I'm five.",
	"Give me a code example.",
	"What are the trade-offs?",
}

// Get returns the preset at index i, or false when out of range.
func (p Presets) Get(i int) (string, bool) {
	if i < 0 || i >= len(p) {
		return "", false
	}
	return p[i], true
}
