// Package tui provides an interactive chat terminal interface using Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olsonja88/ICS499-Bears/internal/chat"
	"github.com/olsonja88/ICS499-Bears/internal/client"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("111"))

	changeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

type replyMsg client.AskResult
type resetMsg string
type errMsg error

// Model is the chat TUI model.
type Model struct {
	api *client.Client

	transcript []string
	waiting    bool
	quitting   bool
	ready      bool
	err        error
	width      int
	height     int

	spinner  spinner.Model
	input    textinput.Model
	viewport viewport.Model
}

// New creates the chat model talking to api.
func New(api *client.Client) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Ask about dances..."
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()

	m := Model{api: api, spinner: s, input: ti}
	m.appendAssistant(chat.Greeting)
	return m
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "ctrl+r":
			if !m.waiting {
				m.waiting = true
				return m, m.resetHistory()
			}
		case "enter":
			message := strings.TrimSpace(m.input.Value())
			if message != "" && !m.waiting {
				m.appendUser(message)
				m.input.SetValue("")
				m.waiting = true
				m.syncViewport()
				return m, tea.Batch(m.spinner.Tick, m.send(message))
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.viewport = viewport.New(msg.Width-4, msg.Height-7)
		m.syncViewport()

	case replyMsg:
		m.waiting = false
		m.err = nil
		m.appendAssistant(msg.Reply)
		for _, ch := range msg.Changes {
			m.transcript = append(m.transcript, changeStyle.Render(
				fmt.Sprintf("  [%s] %s %s", ch.Kind, ch.Status, ch.Detail)))
		}
		m.syncViewport()

	case resetMsg:
		m.waiting = false
		m.err = nil
		m.transcript = nil
		m.appendAssistant(string(msg))
		m.syncViewport()

	case errMsg:
		m.waiting = false
		m.err = msg

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if !m.ready {
		return fmt.Sprintf("\n  %s Connecting...", m.spinner.View())
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Dancehall Chat") + "\n\n")
	b.WriteString(boxStyle.Width(m.width - 4).Render(m.viewport.View()) + "\n")

	if m.waiting {
		b.WriteString(fmt.Sprintf("\n  %s Thinking...\n", m.spinner.View()))
	} else {
		b.WriteString("\n  " + m.input.View() + "\n")
	}

	if m.err != nil {
		b.WriteString("\n  " + errorStyle.Render(m.err.Error()) + "\n")
	}

	b.WriteString(helpStyle.Render("  enter: send │ ctrl+r: new conversation │ esc: quit"))
	return b.String()
}

func (m *Model) appendUser(text string) {
	m.transcript = append(m.transcript, userStyle.Render("You: ")+text)
}

func (m *Model) appendAssistant(text string) {
	m.transcript = append(m.transcript, assistantStyle.Render("Assistant: "+text))
}

func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.transcript, "\n"))
	m.viewport.GotoBottom()
}

func (m Model) send(message string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.api.Ask(context.Background(), message)
		if err != nil {
			return errMsg(err)
		}
		return replyMsg(result)
	}
}

func (m Model) resetHistory() tea.Cmd {
	return func() tea.Msg {
		greeting, err := m.api.ResetHistory(context.Background())
		if err != nil {
			return errMsg(err)
		}
		return resetMsg(greeting)
	}
}

// Run starts the chat TUI and blocks until the user quits.
func Run(api *client.Client) error {
	p := tea.NewProgram(New(api), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
