// Package helpview renders the markdown help screen with glamour.
package helpview

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/gfbarbieri/coffer/internal/ui/styles"
)

const helpMarkdown = `# Coffer

A sinking fund planner: set aside money for known future bills.

## Workflow

1. **Create a fund** with a planning window and a starting balance.
2. **Add bills** one at a time, or import a CSV/JSON/YAML file.
3. **Pick strategies**: how the starting balance is allocated and how
   contributions are spaced.
4. **Generate** to build envelopes, contribution dates, schedules, and
   the cash flow report.

Changing bills, fund parameters, or the contribution interval marks the
plan stale; generate again to rebuild it.

## Keys

| Key | Action |
| --- | ------ |
| a | add bill |
| e / enter | edit selected bill |
| d | delete selected bill |
| i | import bills from file |
| f | update fund parameters |
| g | generate plan |
| tab | switch panel |
| s | save session |
| ? | toggle this help |
| q | quit |

## Allocation strategies

- **sorted**: fund bills fully in due date order until the balance runs out.
- **proportional**: split the balance by a weighting method
  (proportional, urgency, equal, zero).
- **none**: no up-front allocation; bills are funded entirely by
  scheduled contributions.
`

// CloseMsg is sent when the help screen is dismissed.
type CloseMsg struct{}

// Model holds the help view state.
type Model struct {
	vp     viewport.Model
	width  int
	height int
}

// New creates the help view.
func New() Model {
	return Model{vp: viewport.New(0, 0)}
}

// SetSize updates dimensions and re-renders the markdown at the new width.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.vp.Width = width
	m.vp.Height = height

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(width-2, 100)),
	)
	if err != nil {
		m.vp.SetContent(helpMarkdown)
		return m
	}
	out, err := renderer.Render(helpMarkdown)
	if err != nil {
		m.vp.SetContent(helpMarkdown)
		return m
	}
	m.vp.SetContent(out)
	return m
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "q", "esc", "?":
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View renders the help screen.
func (m Model) View() string {
	footer := styles.MutedStyle.Render("j/k scroll · esc close")
	return m.vp.View() + "\n" + footer
}
