// Package fundform provides the fund create/update form.
package fundform

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/gfbarbieri/coffer/internal/ui/styles"
)

// DateLayout is the date entry format.
const DateLayout = "2006-01-02"

// SubmitMsg carries the validated form values.
type SubmitMsg struct {
	StartDate time.Time
	EndDate   time.Time
	Balance   decimal.Decimal
	// Updating is true when the form edits an existing fund rather than
	// creating the first one.
	Updating bool
}

// CancelMsg is sent when the form is dismissed.
type CancelMsg struct{}

const (
	fieldStart = iota
	fieldEnd
	fieldBalance
	fieldCount
)

// Model holds the fund form state.
type Model struct {
	inputs   [fieldCount]textinput.Model
	focused  int
	updating bool
	errMsg   string
}

// New creates a fund creation form with defaults: today through one year
// out, zero balance.
func New() Model {
	m := Model{}

	start := textinput.New()
	start.Placeholder = DateLayout
	start.CharLimit = 10
	start.SetValue(time.Now().Format(DateLayout))
	start.Focus()
	m.inputs[fieldStart] = start

	end := textinput.New()
	end.Placeholder = DateLayout
	end.CharLimit = 10
	end.SetValue(time.Now().AddDate(1, 0, 0).Format(DateLayout))
	m.inputs[fieldEnd] = end

	balance := textinput.New()
	balance.Placeholder = "0.00"
	balance.CharLimit = 16
	m.inputs[fieldBalance] = balance

	return m
}

// NewUpdate creates the form prefilled with the current fund parameters.
func NewUpdate(start, end time.Time, balance decimal.Decimal) Model {
	m := New()
	m.updating = true
	m.inputs[fieldStart].SetValue(start.Format(DateLayout))
	m.inputs[fieldEnd].SetValue(end.Format(DateLayout))
	m.inputs[fieldBalance].SetValue(balance.StringFixed(2))
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return CancelMsg{} }
		case "tab", "down":
			m = m.focusField((m.focused + 1) % fieldCount)
			return m, nil
		case "shift+tab", "up":
			m = m.focusField((m.focused + fieldCount - 1) % fieldCount)
			return m, nil
		case "enter":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m Model) focusField(i int) Model {
	m.inputs[m.focused].Blur()
	m.focused = i
	m.inputs[m.focused].Focus()
	return m
}

func (m Model) submit() (Model, tea.Cmd) {
	start, err := time.Parse(DateLayout, strings.TrimSpace(m.inputs[fieldStart].Value()))
	if err != nil {
		m.errMsg = "start date must be YYYY-MM-DD"
		return m, nil
	}
	end, err := time.Parse(DateLayout, strings.TrimSpace(m.inputs[fieldEnd].Value()))
	if err != nil {
		m.errMsg = "end date must be YYYY-MM-DD"
		return m, nil
	}
	if !end.After(start) {
		m.errMsg = "end date must be after start date"
		return m, nil
	}

	balanceText := strings.TrimSpace(m.inputs[fieldBalance].Value())
	if balanceText == "" {
		balanceText = "0"
	}
	balance, err := decimal.NewFromString(balanceText)
	if err != nil {
		m.errMsg = "balance must be a decimal amount"
		return m, nil
	}
	if balance.IsNegative() {
		m.errMsg = "balance must not be negative"
		return m, nil
	}

	m.errMsg = ""
	updating := m.updating
	return m, func() tea.Msg {
		return SubmitMsg{StartDate: start, EndDate: end, Balance: balance, Updating: updating}
	}
}

// Err returns the current validation message, empty when the form is clean.
func (m Model) Err() string {
	return m.errMsg
}

var fieldLabels = [fieldCount]string{"Start date", "End date", "Balance"}

// View renders the form box.
func (m Model) View() string {
	title := "New Fund"
	if m.updating {
		title = "Update Fund"
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n\n")
	for i := range m.inputs {
		label := styles.MutedStyle.Render(styles.PadRight(fieldLabels[i], 12))
		b.WriteString(label + m.inputs[i].View())
		b.WriteString("\n")
	}
	if m.updating {
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render("Bills carry over; schedules are rebuilt on generate."))
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.MutedStyle.Render("enter save · tab next field · esc cancel"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderFocusedColor).
		Padding(1, 2).
		Render(b.String())
}
