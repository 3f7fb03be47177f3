// Package nofund provides the empty state view shown before a fund exists.
package nofund

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gfbarbieri/coffer/internal/ui/styles"
)

// CreateFundMsg is sent when the user asks to create a fund.
type CreateFundMsg struct{}

// Model holds the nofund view state.
type Model struct {
	width  int
	height int
}

// New creates a new nofund view.
func New() Model {
	return Model{}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "n", "enter":
			return m, func() tea.Msg { return CreateFundMsg{} }
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the empty state.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.TextPrimaryColor).
		MarginTop(1)

	messageStyle := lipgloss.NewStyle().
		Foreground(styles.TextDescriptionColor)

	hintStyle := lipgloss.NewStyle().
		Foreground(styles.TextMutedColor).
		Italic(true).
		MarginTop(2)

	var content strings.Builder
	content.WriteString(titleStyle.Render("No sinking fund yet"))
	content.WriteString("\n\n")
	content.WriteString(messageStyle.Render("A fund is a planning window and a starting balance."))
	content.WriteString("\n")
	content.WriteString(messageStyle.Render("Bills, envelopes, and schedules all hang off it."))
	content.WriteString("\n\n")
	content.WriteString(messageStyle.Render("Press n to create one."))
	content.WriteString("\n\n")
	content.WriteString(hintStyle.Render("Press q to quit"))

	containerStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center)

	return containerStyle.Render(content.String())
}

// SetSize updates the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}
