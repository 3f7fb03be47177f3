// Package billtable renders the fund's bills as a navigable table.
package billtable

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gfbarbieri/coffer/internal/fund/domain"
	"github.com/gfbarbieri/coffer/internal/ui/styles"
)

// EditMsg asks to open the edit form for a bill.
type EditMsg struct {
	BillID string
}

// DeleteMsg asks to delete a bill.
type DeleteMsg struct {
	BillID string
}

// SelectMsg reports the cursor landing on a bill.
type SelectMsg struct {
	BillID string
}

// Model holds the bill table state.
type Model struct {
	bills    []domain.Bill
	cursor   int
	width    int
	height   int
	focused  bool
	currency string
}

// New creates an empty bill table.
func New(currency string) Model {
	return Model{currency: currency}
}

// SetBills replaces the table contents, clamping the cursor.
func (m Model) SetBills(bills []domain.Bill) Model {
	m.bills = bills
	if m.cursor >= len(bills) {
		m.cursor = len(bills) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m
}

// SetSize updates the table dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// SetFocused toggles keyboard focus.
func (m Model) SetFocused(focused bool) Model {
	m.focused = focused
	return m
}

// Selected returns the bill under the cursor, if any.
func (m Model) Selected() (domain.Bill, bool) {
	if len(m.bills) == 0 {
		return domain.Bill{}, false
	}
	return m.bills[m.cursor], true
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "j", "down":
		if m.cursor < len(m.bills)-1 {
			m.cursor++
			return m, m.selectCmd()
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			return m, m.selectCmd()
		}
	case "e", "enter":
		if bill, ok := m.Selected(); ok {
			return m, func() tea.Msg { return EditMsg{BillID: bill.ID} }
		}
	case "d", "x":
		if bill, ok := m.Selected(); ok {
			return m, func() tea.Msg { return DeleteMsg{BillID: bill.ID} }
		}
	}
	return m, nil
}

func (m Model) selectCmd() tea.Cmd {
	bill := m.bills[m.cursor]
	return func() tea.Msg { return SelectMsg{BillID: bill.ID} }
}

// Column widths: cursor(2) id(flex) service(flex) amount(12) schedule(flex).
func (m Model) columnWidths() (id, service, amount, schedule int) {
	amount = 12
	rest := m.width - amount - 2 - 3 // cursor gutter and separators
	if rest < 12 {
		rest = 12
	}
	id = rest / 3
	service = rest / 3
	schedule = rest - id - service
	return id, service, amount, schedule
}

func describeSchedule(b domain.Bill) string {
	if !b.Recurring() {
		return "due " + b.DueDate.Format("2006-01-02")
	}
	r := b.Recurrence
	desc := "every "
	if r.Interval > 1 {
		desc += strconv.Itoa(r.Interval) + " "
	}
	desc += string(r.Frequency)
	if r.Occurrences != nil {
		desc += " ×" + strconv.Itoa(*r.Occurrences)
	}
	if r.EndDate != nil {
		desc += " until " + r.EndDate.Format("2006-01-02")
	}
	return desc
}

// View renders the table.
func (m Model) View() string {
	if len(m.bills) == 0 {
		return styles.MutedStyle.Render("No bills yet. Press a to add one, or i to import a file.")
	}

	idW, svcW, amtW, schedW := m.columnWidths()

	var b strings.Builder
	header := "  " +
		styles.PadRight("ID", idW) + " " +
		styles.PadRight("SERVICE", svcW) + " " +
		styles.PadLeft("AMOUNT", amtW) + " " +
		styles.PadRight("SCHEDULE", schedW)
	b.WriteString(styles.MutedStyle.Render(header))
	b.WriteString("\n")

	visible := len(m.bills)
	if m.height > 1 && visible > m.height-1 {
		visible = m.height - 1
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}

	for i := start; i < start+visible && i < len(m.bills); i++ {
		bill := m.bills[i]
		gutter := "  "
		if i == m.cursor && m.focused {
			gutter = styles.SelectionIndicatorStyle.Render("> ")
		}
		row := gutter +
			styles.PadRight(bill.ID, idW) + " " +
			styles.PadRight(bill.Service, svcW) + " " +
			styles.PadLeft(styles.FormatMoney(m.currency, bill.AmountDue), amtW) + " " +
			styles.PadRight(describeSchedule(bill), schedW)
		b.WriteString(row)
		if i < start+visible-1 && i < len(m.bills)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
