// Package reportview renders the generated funding plan: the envelope
// summary and the date-indexed contribution/payout report in a
// scrollable viewport.
package reportview

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gfbarbieri/coffer/internal/fund/domain"
	"github.com/gfbarbieri/coffer/internal/report"
	"github.com/gfbarbieri/coffer/internal/ui/styles"
)

const dateLayout = "2006-01-02"

// Model holds the report view state.
type Model struct {
	vp       viewport.Model
	currency string
	focused  bool
	hasData  bool
}

// New creates an empty report view.
func New(currency string) Model {
	return Model{vp: viewport.New(0, 0), currency: currency}
}

// SetSize updates the viewport dimensions.
func (m Model) SetSize(width, height int) Model {
	m.vp.Width = width
	m.vp.Height = height
	return m
}

// SetFocused toggles keyboard focus (scrolling).
func (m Model) SetFocused(focused bool) Model {
	m.focused = focused
	return m
}

// SetReport renders the report and envelope summary into the viewport.
// A nil report shows the stale-state placeholder.
func (m Model) SetReport(r domain.Report, envelopes []*domain.Envelope) Model {
	if r == nil {
		m.hasData = false
		m.vp.SetContent("")
		return m
	}
	m.hasData = true
	m.vp.SetContent(m.render(r, envelopes))
	m.vp.GotoTop()
	return m
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View renders the viewport or the placeholder.
func (m Model) View() string {
	if !m.hasData {
		return styles.MutedStyle.Render("No current plan. Press g to generate one.")
	}
	return m.vp.View()
}

func (m Model) render(r domain.Report, envelopes []*domain.Envelope) string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Envelopes"))
	b.WriteString("\n")
	for _, s := range report.Summarize(envelopes) {
		status := styles.SuccessStyle.Render("funded")
		if !s.Remaining.IsZero() {
			status = styles.ErrorStyle.Render("short " + styles.FormatMoney(m.currency, s.Remaining))
		}
		line := "  " +
			styles.PadRight(s.BillID, 16) + " " +
			styles.PadRight("due "+s.DueDate.Format(dateLayout), 16) + " " +
			styles.PadLeft(styles.FormatMoney(m.currency, s.AmountDue), 12) + "  " +
			"alloc " + styles.FormatMoney(m.currency, s.Allocated) + "  " +
			"contrib " + styles.FormatMoney(m.currency, s.Contributions) + "  " +
			status
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.TitleStyle.Render("Cash Flow"))
	b.WriteString("\n")
	b.WriteString(m.renderFlows(r))
	return b.String()
}

// renderFlows prints one line per report date: contributions in,
// payouts out, and the running account balance.
func (m Model) renderFlows(r domain.Report) string {
	contrib := report.Pivot(r, report.Contributions)
	payouts := report.Pivot(r, report.Payouts)

	var b strings.Builder
	header := "  " +
		styles.PadRight("DATE", 12) + " " +
		styles.PadLeft("IN", 12) + " " +
		styles.PadLeft("OUT", 12) + " " +
		styles.PadLeft("BALANCE", 12)
	b.WriteString(styles.MutedStyle.Render(header))
	b.WriteString("\n")

	for i, row := range contrib.Rows {
		in := ""
		if !row.Total.IsZero() {
			in = styles.FormatMoney(m.currency, row.Total)
		}
		out := ""
		if i < len(payouts.Rows) && !payouts.Rows[i].Total.IsZero() {
			out = styles.FormatMoney(m.currency, payouts.Rows[i].Total)
		}
		line := "  " +
			styles.PadRight(row.Date.Format(dateLayout), 12) + " " +
			styles.PadLeft(in, 12) + " " +
			styles.PadLeft(out, 12) + " " +
			styles.PadLeft(styles.FormatMoney(m.currency, row.Balance), 12)
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
