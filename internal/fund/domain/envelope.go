package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillInstance is a single dated occurrence of a bill. Recurring bills
// produce one instance per occurrence; one-time bills produce exactly one.
type BillInstance struct {
	BillID    string
	Service   string
	AmountDue decimal.Decimal
	DueDate   time.Time
	Sequence  int // zero-based occurrence index within the planning window
}

// CashFlowKind discriminates schedule entries.
type CashFlowKind string

const (
	// Contribution is money moved into an envelope.
	Contribution CashFlowKind = "contribution"
	// Payout is money leaving an envelope to pay its bill.
	Payout CashFlowKind = "payout"
)

// CashFlow is one dated movement in an envelope's schedule. Contributions
// carry positive amounts, payouts negative.
type CashFlow struct {
	Date   time.Time
	Amount decimal.Decimal
	Kind   CashFlowKind
}

// Schedule is the ordered cash flow plan for one envelope.
type Schedule struct {
	CashFlows []CashFlow
}

// TotalContributions sums the contribution entries.
func (s Schedule) TotalContributions() decimal.Decimal {
	total := decimal.Zero
	for _, cf := range s.CashFlows {
		if cf.Kind == Contribution {
			total = total.Add(cf.Amount)
		}
	}
	return total
}

// ContributionCount returns the number of contribution entries.
func (s Schedule) ContributionCount() int {
	n := 0
	for _, cf := range s.CashFlows {
		if cf.Kind == Contribution {
			n++
		}
	}
	return n
}

// Envelope tracks saving progress toward one bill's next due instance:
// how much of the initial balance was set aside for it, when contributions
// start, and the planned cash flows.
type Envelope struct {
	Instance          BillInstance
	InitialAllocation decimal.Decimal
	StartContribDate  time.Time
	ContribDates      []time.Time
	Schedule          Schedule
}

// Remaining returns the amount still unfunded as of the given date,
// counting the initial allocation plus contributions scheduled on or
// before that date. Never negative.
func (e Envelope) Remaining(asOf time.Time) decimal.Decimal {
	funded := e.InitialAllocation
	for _, cf := range e.Schedule.CashFlows {
		if cf.Kind == Contribution && !cf.Date.After(asOf) {
			funded = funded.Add(cf.Amount)
		}
	}
	remaining := e.Instance.AmountDue.Sub(funded)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// FullyFunded reports whether the envelope covers its bill as of the date.
func (e Envelope) FullyFunded(asOf time.Time) bool {
	return e.Remaining(asOf).IsZero()
}
