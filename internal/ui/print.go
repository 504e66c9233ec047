package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/klemjul/novachat/internal/chat"
)

// PrintTranscript writes settled messages to a writer, for non-interactive use.
// Placeholders are skipped.
type PrintTranscript struct {
	w      io.Writer
	render func(text string) (string, error)
}

func NewPrintTranscript(w io.Writer, render func(text string) (string, error)) *PrintTranscript {
	return &PrintTranscript{w: w, render: render}
}

func (p *PrintTranscript) Append(entry chat.Entry) {
	if entry.Placeholder {
		return
	}
	msg := entry.Message
	if msg.Who == chat.User {
		fmt.Fprintf(p.w, "> %s\n", msg.Text)
		return
	}

	out := msg.Text
	if p.render != nil {
		if rendered, err := p.render(msg.Text); err == nil {
			out = strings.TrimSpace(rendered)
		}
	}
	fmt.Fprintf(p.w, "%s\n\n", out)
}

func (p *PrintTranscript) Remove(string) {}
