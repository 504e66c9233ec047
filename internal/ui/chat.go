package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/klemjul/novachat/internal/chat"
	"github.com/klemjul/novachat/internal/format"
)

// ChatSession is the part of chat.Session the TUI drives.
type ChatSession interface {
	Submit(input string) (chat.Pending, bool)
	Send(ctx context.Context, pending chat.Pending) chat.Reply
	Resolve(reply chat.Reply) chat.Message
}

type ChatTUIModel struct {
	textInput  textinput.Model
	viewport   viewport.Model
	transcript *Transcript
	session    ChatSession
	presets    chat.Presets
	title      string
	pending    int
	ctx        context.Context
}

const (
	CHAT_INPUT_PLACEHOLDER    = "Type a message..."
	CHAT_TITLE_PENDING_FORMAT = "%s (%d pending)"
)

var (
	userStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	botStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	titleStyle       = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	inputStyle       = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderTop(true)
)

var presetKeys = map[tea.KeyType]int{
	tea.KeyF1: 0, tea.KeyF2: 1, tea.KeyF3: 2,
	tea.KeyF4: 3, tea.KeyF5: 4, tea.KeyF6: 5,
	tea.KeyF7: 6, tea.KeyF8: 7, tea.KeyF9: 8,
}

type InitialModelOptions struct {
	Context    context.Context
	Title      string
	Session    ChatSession
	Transcript *Transcript
	Presets    chat.Presets
}

func InitialModel(opts InitialModelOptions) ChatTUIModel {
	ti := textinput.New()
	ti.Placeholder = CHAT_INPUT_PLACEHOLDER
	ti.Focus()

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	transcript := opts.Transcript
	if transcript == nil {
		transcript = NewTranscript()
	}

	return ChatTUIModel{
		textInput:  ti,
		viewport:   viewport.New(0, 0),
		transcript: transcript,
		session:    opts.Session,
		presets:    opts.Presets,
		title:      opts.Title,
		ctx:        ctx,
	}
}

func (m ChatTUIModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.EnableMouseCellMotion,
	)
}

func (m ChatTUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width <= 0 {
			return m, nil
		}
		titleLines := (len(m.title) / msg.Width) + 1
		m.viewport = viewport.New(msg.Width, msg.Height-(3+titleLines))
		m.updateViewport()

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress {
			switch msg.Button {
			case tea.MouseButtonWheelUp:
				m.viewport.ScrollUp(1)
			case tea.MouseButtonWheelDown:
				m.viewport.ScrollDown(1)
			}
		}

	case chat.Reply:
		m.session.Resolve(msg)
		if m.pending > 0 {
			m.pending--
		}
		m.updateViewport()

	case tea.KeyMsg:
		if i, ok := presetKeys[msg.Type]; ok {
			if preset, ok := m.presets.Get(i); ok {
				m.textInput.SetValue(preset)
				m.textInput.CursorEnd()
				m.textInput.Focus()
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			pending, ok := m.session.Submit(m.textInput.Value())
			m.textInput.SetValue("")
			if ok {
				m.pending++
				m.updateViewport()
				cmd = m.send(pending)
			}
			return m, cmd
		}
	}

	m.textInput, _ = m.textInput.Update(msg)

	return m, cmd
}

func (m ChatTUIModel) send(pending chat.Pending) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		return session.Send(ctx, pending)
	}
}

func (m *ChatTUIModel) updateViewport() {
	entries := m.transcript.Entries()
	displayed := make([]string, 0, len(entries))
	for _, entry := range entries {
		switch {
		case entry.Placeholder:
			displayed = append(displayed, placeholderStyle.Render(entry.Message.Text))
		case entry.Message.Who == chat.User:
			displayed = append(displayed, userStyle.Render(fmt.Sprintf("> %s", entry.Message.Text)))
		default:
			out, err := format.FormatMarkdown(entry.Message.Text, m.viewport.Width)
			if err != nil {
				out = entry.Message.Text
			}
			displayed = append(displayed, botStyle.Render(strings.TrimSpace(out)))
		}
	}

	m.viewport.SetContent(strings.Join(displayed, "\n\n"))
	m.viewport.GotoBottom()
}

func (m ChatTUIModel) View() string {
	title := m.title
	if m.pending > 0 {
		title = fmt.Sprintf(CHAT_TITLE_PENDING_FORMAT, m.title, m.pending)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(m.viewport.Width).Render(title),
		m.viewport.View(),
		inputStyle.Width(m.viewport.Width).Render(m.textInput.View()),
	)
}
