package fund

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gfbarbieri/coffer/internal/fund/domain"
)

// event is one dated cash movement attributed to a bill, used to build
// the report timeline.
type event struct {
	date   time.Time
	billID string
	amount decimal.Decimal // positive contribution, negative payout
	kind   domain.CashFlowKind
}

// Report builds the date-indexed aggregation of account balance,
// contributions, and payouts.
//
// With activeOnly true, payouts cover only the upcoming instance each
// envelope tracks. With activeOnly false, every occurrence of every bill
// inside the planning window contributes a payout, including occurrences
// past their envelope's horizon. Contributions always come from the
// envelope schedules. The flag filters which bill instances are included,
// never how amounts are computed.
func (f *Fund) Report(activeOnly bool) (domain.Report, error) {
	var events []event

	for _, env := range f.envelopes {
		for _, cf := range env.Schedule.CashFlows {
			if cf.Kind != domain.Contribution {
				continue
			}
			events = append(events, event{
				date:   cf.Date,
				billID: env.Instance.BillID,
				amount: cf.Amount,
				kind:   domain.Contribution,
			})
		}
	}

	if activeOnly {
		for _, env := range f.envelopes {
			for _, cf := range env.Schedule.CashFlows {
				if cf.Kind != domain.Payout {
					continue
				}
				events = append(events, event{
					date:   cf.Date,
					billID: env.Instance.BillID,
					amount: cf.Amount,
					kind:   domain.Payout,
				})
			}
		}
	} else {
		for _, b := range f.bills {
			for _, due := range b.DueDates(f.startDate, f.endDate) {
				events = append(events, event{
					date:   due,
					billID: b.ID,
					amount: b.AmountDue.Neg(),
					kind:   domain.Payout,
				})
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].date.Before(events[j].date) })

	report := make(domain.Report)
	accountTotal := f.balance
	perBill := make(map[string]decimal.Decimal)
	for _, env := range f.envelopes {
		if env.InitialAllocation.IsPositive() {
			perBill[env.Instance.BillID] = env.InitialAllocation
		}
	}

	for i := 0; i < len(events); {
		date := events[i].date
		contrib := domain.ReportSection{Bills: make(map[string]decimal.Decimal)}
		payout := domain.ReportSection{Bills: make(map[string]decimal.Decimal)}

		for ; i < len(events) && events[i].date.Equal(date); i++ {
			ev := events[i]
			accountTotal = accountTotal.Add(ev.amount)
			perBill[ev.billID] = perBill[ev.billID].Add(ev.amount)
			switch ev.kind {
			case domain.Contribution:
				contrib.Bills[ev.billID] = contrib.Bills[ev.billID].Add(ev.amount)
			case domain.Payout:
				payout.Bills[ev.billID] = payout.Bills[ev.billID].Add(ev.amount)
			}
		}

		contrib.Count = len(contrib.Bills)
		payout.Count = len(payout.Bills)
		for _, amt := range contrib.Bills {
			contrib.Total = contrib.Total.Add(amt)
		}
		for _, amt := range payout.Bills {
			payout.Total = payout.Total.Add(amt)
		}

		balances := domain.ReportSection{
			Total: accountTotal,
			Bills: make(map[string]decimal.Decimal, len(perBill)),
		}
		for id, bal := range perBill {
			balances.Bills[id] = bal
		}
		balances.Count = len(balances.Bills)

		report[date] = domain.ReportEntry{
			AccountBalance: balances,
			Contributions:  contrib,
			Payouts:        payout,
		}
	}

	return report, nil
}
