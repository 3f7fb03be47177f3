package allocation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gfbarbieri/coffer/internal/fund/domain"
)

// proportionalAllocator splits the balance across all envelopes at once,
// weighted by the selected method. Shares are truncated to cents and
// capped at each bill's amount due, so the total never exceeds the
// balance.
type proportionalAllocator struct{}

func (proportionalAllocator) Allocate(balance decimal.Decimal, envelopes []*domain.Envelope, opts Options) error {
	if opts.Method == "" {
		return &domain.ValidationError{Field: "method", Reason: "required for proportional allocation"}
	}

	weights, err := methodWeights(opts.Method, envelopes)
	if err != nil {
		return err
	}

	totalWeight := decimal.Zero
	for _, w := range weights {
		totalWeight = totalWeight.Add(w)
	}
	if totalWeight.IsZero() {
		for _, env := range envelopes {
			env.InitialAllocation = decimal.Zero
		}
		return nil
	}

	left := balance
	for i, env := range envelopes {
		share := balance.Mul(weights[i]).Div(totalWeight)
		env.InitialAllocation = capShare(share, env.Instance.AmountDue, left)
		left = left.Sub(env.InitialAllocation)
	}
	return nil
}

// methodWeights computes the per-envelope weight for a proportional method.
func methodWeights(method string, envelopes []*domain.Envelope) ([]decimal.Decimal, error) {
	weights := make([]decimal.Decimal, len(envelopes))
	switch method {
	case MethodProportional:
		for i, env := range envelopes {
			weights[i] = env.Instance.AmountDue
		}
	case MethodUrgency:
		// Nearer due dates get larger weights: weight = 1/(1+days until due),
		// measured from the earliest contribution date in the set.
		origin := earliestContribDate(envelopes)
		for i, env := range envelopes {
			days := int(env.Instance.DueDate.Sub(origin).Hours() / 24)
			if days < 0 {
				days = 0
			}
			weights[i] = decimal.New(1, 0).Div(decimal.NewFromInt(int64(days + 1)))
		}
	case MethodEqual:
		for i := range envelopes {
			weights[i] = decimal.New(1, 0)
		}
	case MethodZero:
		// All-zero weights short-circuit to zero allocations.
	default:
		return nil, &domain.ValidationError{Field: "method", Reason: "unknown proportional method " + method}
	}
	return weights, nil
}

// earliestContribDate finds the urgency origin: the earliest start
// contribution date among the envelopes, falling back to the earliest due
// date when contribution dates have not been computed yet.
func earliestContribDate(envelopes []*domain.Envelope) time.Time {
	var origin time.Time
	for _, env := range envelopes {
		d := env.StartContribDate
		if d.IsZero() {
			d = env.Instance.DueDate
		}
		if origin.IsZero() || d.Before(origin) {
			origin = d
		}
	}
	return origin
}
