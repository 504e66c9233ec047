package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klemjul/novachat/internal/chat"
	"github.com/stretchr/testify/assert"
)

func TestTranscript_AppendRemove(t *testing.T) {
	transcript := NewTranscript()
	transcript.Append(chat.Entry{ID: "1", Message: chat.Message{Who: chat.User, Text: "Hi"}})
	transcript.Append(chat.Entry{ID: "2", Message: chat.Message{Who: chat.Bot, Text: chat.PlaceholderText}, Placeholder: true})
	transcript.Append(chat.Entry{ID: "3", Message: chat.Message{Who: chat.Bot, Text: "Hello back"}})

	transcript.Remove("2")
	transcript.Remove("missing")

	entries := transcript.Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "1", entries[0].ID)
	assert.Equal(t, "3", entries[1].ID)
}

func TestPrintTranscript(t *testing.T) {
	var out bytes.Buffer
	render := func(text string) (string, error) { return "\n  *" + text + "*  \n", nil }
	p := NewPrintTranscript(&out, render)

	p.Append(chat.Entry{ID: "1", Message: chat.Message{Who: chat.User, Text: "Hi"}})
	p.Append(chat.Entry{ID: "2", Message: chat.Message{Who: chat.Bot, Text: chat.PlaceholderText}, Placeholder: true})
	p.Remove("2")
	p.Append(chat.Entry{ID: "3", Message: chat.Message{Who: chat.Bot, Text: "Hello back"}})

	assert.Equal(t, "> Hi\n*Hello back*\n\n", out.String())
}

func TestPrintTranscript_RenderError(t *testing.T) {
	var out bytes.Buffer
	p := NewPrintTranscript(&out, func(string) (string, error) { return "", errors.New("bad style") })

	p.Append(chat.Entry{ID: "1", Message: chat.Message{Who: chat.Bot, Text: "plain"}})

	assert.Equal(t, "plain\n\n", out.String())
}
