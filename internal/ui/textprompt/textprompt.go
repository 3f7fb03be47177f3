// Package textprompt is a one-line modal input with a title, used for
// free-form values like import file paths.
package textprompt

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gfbarbieri/coffer/internal/ui/styles"
)

// SubmitMsg carries the entered value.
type SubmitMsg struct {
	Value string
}

// CancelMsg is sent when the prompt is dismissed.
type CancelMsg struct{}

// Model holds the prompt state.
type Model struct {
	title string
	input textinput.Model
	err   string
}

// New creates a prompt with the given title and placeholder.
func New(title, placeholder string) Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 512
	in.Width = 48
	in.Focus()
	return Model{title: title, input: in}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc", "ctrl+c":
			return m, func() tea.Msg { return CancelMsg{} }
		case "enter":
			value := m.input.Value()
			if value == "" {
				m.err = "enter a value"
				return m, nil
			}
			return m, func() tea.Msg { return SubmitMsg{Value: value} }
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the prompt.
func (m Model) View() string {
	body := styles.TitleStyle.Render(m.title) + "\n\n" + m.input.View()
	if m.err != "" {
		body += "\n" + styles.ErrorStyle.Render(m.err)
	}
	body += "\n\n" + styles.MutedStyle.Render("enter confirm · esc cancel")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderFocusedColor).
		Padding(1, 2).
		Render(body)
}
