// Package report flattens the date-indexed fund report into row-oriented
// tables for presentation and export.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gfbarbieri/coffer/internal/fund/domain"
)

// Row is one date of a pivoted section: the section total plus the
// per-bill amounts for every bill that appears anywhere in the section.
// Bills absent on a date carry a zero value so all rows share the same
// column set.
type Row struct {
	Date    time.Time
	Total   decimal.Decimal
	Count   int
	ByBill  map[string]decimal.Decimal
	Balance decimal.Decimal // account balance after this date's activity
}

// Table is a pivoted report section: fixed column order, one row per
// report date in ascending order.
type Table struct {
	BillIDs []string
	Rows    []Row
}

// Section identifies which view of a report entry to pivot.
type Section func(domain.ReportEntry) domain.ReportSection

// Contributions selects the contribution section.
func Contributions(e domain.ReportEntry) domain.ReportSection { return e.Contributions }

// Payouts selects the payout section.
func Payouts(e domain.ReportEntry) domain.ReportSection { return e.Payouts }

// Balances selects the running per-bill balance section.
func Balances(e domain.ReportEntry) domain.ReportSection { return e.AccountBalance }

// Pivot flattens one section of a report into a table. Dates ascend,
// the bill column set is the union across all dates, and missing cells
// are zero.
func Pivot(r domain.Report, section Section) Table {
	billIDs := r.BillIDs(section)
	dates := r.Dates()

	rows := make([]Row, 0, len(dates))
	for _, d := range dates {
		entry := r[d]
		sec := section(entry)
		byBill := make(map[string]decimal.Decimal, len(billIDs))
		for _, id := range billIDs {
			if amt, ok := sec.Bills[id]; ok {
				byBill[id] = amt
			} else {
				byBill[id] = decimal.Zero
			}
		}
		rows = append(rows, Row{
			Date:    d,
			Total:   sec.Total,
			Count:   sec.Count,
			ByBill:  byBill,
			Balance: entry.AccountBalance.Total,
		})
	}
	return Table{BillIDs: billIDs, Rows: rows}
}

// Summary is the headline view of a generated plan: per-bill funding
// status at the end of the planning window.
type Summary struct {
	BillID        string
	Service       string
	AmountDue     decimal.Decimal
	Allocated     decimal.Decimal
	Contributions decimal.Decimal
	Remaining     decimal.Decimal
	DueDate       time.Time
}

// Summarize produces one summary line per envelope, sorted by due date
// then bill identifier.
func Summarize(envelopes []*domain.Envelope) []Summary {
	out := make([]Summary, 0, len(envelopes))
	for _, env := range envelopes {
		contrib := env.Schedule.TotalContributions()
		out = append(out, Summary{
			BillID:        env.Instance.BillID,
			Service:       env.Instance.Service,
			AmountDue:     env.Instance.AmountDue,
			Allocated:     env.InitialAllocation,
			Contributions: contrib,
			Remaining:     env.Remaining(env.Instance.DueDate),
			DueDate:       env.Instance.DueDate,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].BillID < out[j].BillID
	})
	return out
}
