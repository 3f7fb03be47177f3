package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ReportSection is one of the three views at a report date. Bills maps
// bill identifiers to the signed amount attributed to them on that date
// (or, for the account balance section, their running set-aside balance).
type ReportSection struct {
	Total decimal.Decimal
	Count int
	Bills map[string]decimal.Decimal
}

// ReportEntry groups the three sections for one calendar date.
type ReportEntry struct {
	AccountBalance ReportSection
	Contributions  ReportSection
	Payouts        ReportSection
}

// Report is a date-indexed aggregation of account balance, contributions,
// and payouts. Keys are normalized calendar dates. This exact shape is
// the compatibility contract for any presentation or export layer.
type Report map[time.Time]ReportEntry

// Dates returns the report dates in ascending order.
func (r Report) Dates() []time.Time {
	dates := make([]time.Time, 0, len(r))
	for d := range r {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// BillIDs returns the union of bill identifiers appearing in the named
// section across all dates, sorted.
func (r Report) BillIDs(section func(ReportEntry) ReportSection) []string {
	seen := make(map[string]bool)
	for _, entry := range r {
		for id := range section(entry).Bills {
			seen[id] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
