// Package billform provides the bill entry and edit form. One form
// serves both modes: a recurring toggle switches between the one-time
// due date field and the recurrence fields.
package billform

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/gfbarbieri/coffer/internal/fund/domain"
	"github.com/gfbarbieri/coffer/internal/ui/styles"
)

// DateLayout is the date entry format.
const DateLayout = "2006-01-02"

// SubmitMsg carries the validated bill record. Editing is true when the
// form was opened on an existing bill; the record's BillID names it.
type SubmitMsg struct {
	Record  domain.BillRecord
	Editing bool
}

// CancelMsg is sent when the form is dismissed.
type CancelMsg struct{}

const (
	fieldID = iota
	fieldService
	fieldAmount
	fieldRecurring
	fieldDueDate
	fieldStartDate
	fieldFrequency
	fieldInterval
	fieldOccurrences
	fieldEndDate
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Bill ID", "Service", "Amount due", "Recurring",
	"Due date", "Start date", "Frequency", "Interval", "Occurrences", "End date",
}

// Model holds the bill form state.
type Model struct {
	inputs    [fieldCount]textinput.Model
	focused   int
	recurring bool
	editing   bool
	errMsg    string
}

// New creates an empty bill entry form.
func New() Model {
	m := Model{}
	for i := range m.inputs {
		in := textinput.New()
		in.CharLimit = 64
		m.inputs[i] = in
	}
	m.inputs[fieldID].Placeholder = "electric-2026"
	m.inputs[fieldService].Placeholder = "Electric Utility"
	m.inputs[fieldAmount].Placeholder = "0.00"
	m.inputs[fieldDueDate].Placeholder = DateLayout
	m.inputs[fieldStartDate].Placeholder = DateLayout
	m.inputs[fieldFrequency].Placeholder = "monthly"
	m.inputs[fieldInterval].Placeholder = "1"
	m.inputs[fieldOccurrences].Placeholder = "(optional)"
	m.inputs[fieldEndDate].Placeholder = "(optional)"
	m.inputs[fieldID].Focus()
	return m
}

// NewEdit creates the form prefilled from an existing bill. The bill
// identifier is shown but not editable.
func NewEdit(b domain.Bill) Model {
	m := New()
	m.editing = true
	m.inputs[fieldID].SetValue(b.ID)
	m.inputs[fieldService].SetValue(b.Service)
	m.inputs[fieldAmount].SetValue(b.AmountDue.StringFixed(2))
	if b.Recurring() {
		m.recurring = true
		m.inputs[fieldStartDate].SetValue(b.Recurrence.StartDate.Format(DateLayout))
		m.inputs[fieldFrequency].SetValue(string(b.Recurrence.Frequency))
		m.inputs[fieldInterval].SetValue(strconv.Itoa(b.Recurrence.Interval))
		if b.Recurrence.Occurrences != nil {
			m.inputs[fieldOccurrences].SetValue(strconv.Itoa(*b.Recurrence.Occurrences))
		}
		if b.Recurrence.EndDate != nil {
			m.inputs[fieldEndDate].SetValue(b.Recurrence.EndDate.Format(DateLayout))
		}
	} else {
		m.inputs[fieldDueDate].SetValue(b.DueDate.Format(DateLayout))
	}
	// Start on service: the ID is fixed.
	m = m.focusField(fieldService)
	return m
}

// visible reports whether the field participates in the current mode.
func (m Model) visible(i int) bool {
	switch i {
	case fieldID:
		return !m.editing
	case fieldDueDate:
		return !m.recurring
	case fieldStartDate, fieldFrequency, fieldInterval, fieldOccurrences, fieldEndDate:
		return m.recurring
	default:
		return true
	}
}

func (m Model) nextField(from, dir int) int {
	i := from
	for {
		i = (i + dir + fieldCount) % fieldCount
		if m.visible(i) || i == fieldRecurring {
			return i
		}
	}
}

func (m Model) focusField(i int) Model {
	m.inputs[m.focused].Blur()
	m.focused = i
	if i != fieldRecurring {
		m.inputs[i].Focus()
	}
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
			return m.focusField(m.nextField(m.focused, 1)), nil
		case "shift+tab", "up":
			return m.focusField(m.nextField(m.focused, -1)), nil
		case "enter":
			if m.focused == fieldRecurring {
				m.recurring = !m.recurring
				return m, nil
			}
			return m.submit()
		case " ":
			if m.focused == fieldRecurring {
				m.recurring = !m.recurring
				return m, nil
			}
		}
	}

	if m.focused == fieldRecurring {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	rec := domain.BillRecord{
		BillID:    strings.TrimSpace(m.inputs[fieldID].Value()),
		Service:   strings.TrimSpace(m.inputs[fieldService].Value()),
		AmountDue: strings.TrimSpace(m.inputs[fieldAmount].Value()),
		Recurring: m.recurring,
	}
	if rec.BillID == "" {
		m.errMsg = "bill ID is required"
		return m, nil
	}
	if rec.Service == "" {
		m.errMsg = "service is required"
		return m, nil
	}
	if _, err := decimal.NewFromString(rec.AmountDue); err != nil {
		m.errMsg = "amount must be a decimal amount"
		return m, nil
	}

	if m.recurring {
		start, err := m.parseDate(fieldStartDate)
		if err != nil {
			m.errMsg = "start date must be YYYY-MM-DD"
			return m, nil
		}
		rec.StartDate = &start
		rec.Frequency = strings.TrimSpace(m.inputs[fieldFrequency].Value())
		if _, err := domain.ParseFrequency(rec.Frequency); err != nil {
			m.errMsg = "frequency must be one of daily, weekly, monthly, quarterly, annual"
			return m, nil
		}
		interval := strings.TrimSpace(m.inputs[fieldInterval].Value())
		if interval == "" {
			interval = "1"
		}
		n, err := strconv.Atoi(interval)
		if err != nil || n < 1 {
			m.errMsg = "interval must be a positive whole number"
			return m, nil
		}
		rec.Interval = n

		if occ := strings.TrimSpace(m.inputs[fieldOccurrences].Value()); occ != "" {
			n, err := strconv.Atoi(occ)
			if err != nil || n < 1 {
				m.errMsg = "occurrences must be a positive whole number"
				return m, nil
			}
			rec.Occurrences = &n
		}
		if m.inputs[fieldEndDate].Value() != "" {
			end, err := m.parseDate(fieldEndDate)
			if err != nil {
				m.errMsg = "end date must be YYYY-MM-DD"
				return m, nil
			}
			rec.EndDate = &end
		}
	} else {
		due, err := m.parseDate(fieldDueDate)
		if err != nil {
			m.errMsg = "due date must be YYYY-MM-DD"
			return m, nil
		}
		rec.DueDate = &due
	}

	m.errMsg = ""
	editing := m.editing
	return m, func() tea.Msg {
		return SubmitMsg{Record: rec, Editing: editing}
	}
}

func (m Model) parseDate(field int) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(m.inputs[field].Value()))
}

// Err returns the current validation message, empty when the form is clean.
func (m Model) Err() string {
	return m.errMsg
}

// Recurring reports the current mode of the form.
func (m Model) Recurring() bool {
	return m.recurring
}

// View renders the form box.
func (m Model) View() string {
	title := "Add Bill"
	if m.editing {
		title = "Edit Bill · " + m.inputs[fieldID].Value()
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n\n")
	for i := range m.inputs {
		if i == fieldRecurring {
			toggle := "[ ] one-time"
			if m.recurring {
				toggle = "[x] recurring"
			}
			if m.focused == fieldRecurring {
				toggle = styles.SelectionIndicatorStyle.Render("> ") + toggle
			} else {
				toggle = "  " + toggle
			}
			b.WriteString(styles.MutedStyle.Render(styles.PadRight(fieldLabels[i], 13)) + toggle)
			b.WriteString("\n")
			continue
		}
		if !m.visible(i) {
			continue
		}
		b.WriteString(styles.MutedStyle.Render(styles.PadRight(fieldLabels[i], 13)) + m.inputs[i].View())
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.MutedStyle.Render("enter save · space toggle recurring · esc cancel"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderFocusedColor).
		Padding(1, 2).
		Render(b.String())
}
