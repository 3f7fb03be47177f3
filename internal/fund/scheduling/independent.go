package scheduling

import (
	"github.com/shopspring/decimal"

	"github.com/gfbarbieri/coffer/internal/fund/domain"
)

// independentScheduler plans each envelope in isolation: the unfunded
// remainder (amount due minus initial allocation) is spread evenly across
// the envelope's contribution dates, with the rounding remainder folded
// into the final contribution, followed by a payout of the full amount on
// the due date.
type independentScheduler struct{}

func (independentScheduler) Schedule(envelopes []*domain.Envelope) error {
	for _, env := range envelopes {
		env.Schedule = planEnvelope(env)
	}
	return nil
}

func planEnvelope(env *domain.Envelope) domain.Schedule {
	var flows []domain.CashFlow

	needed := env.Instance.AmountDue.Sub(env.InitialAllocation)
	if needed.IsNegative() {
		needed = decimal.Zero
	}

	if needed.IsPositive() && len(env.ContribDates) > 0 {
		n := int64(len(env.ContribDates))
		per := needed.Div(decimal.NewFromInt(n)).Truncate(2)
		assigned := decimal.Zero
		for i, d := range env.ContribDates {
			amount := per
			if i == len(env.ContribDates)-1 {
				amount = needed.Sub(assigned)
			}
			flows = append(flows, domain.CashFlow{
				Date:   d,
				Amount: amount,
				Kind:   domain.Contribution,
			})
			assigned = assigned.Add(amount)
		}
	}

	flows = append(flows, domain.CashFlow{
		Date:   env.Instance.DueDate,
		Amount: env.Instance.AmountDue.Neg(),
		Kind:   domain.Payout,
	})

	return domain.Schedule{CashFlows: flows}
}
