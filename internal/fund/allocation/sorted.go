package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/gfbarbieri/coffer/internal/fund/domain"
)

// sortedAllocator fills envelopes in due-date order, funding each bill
// completely before moving to the next, until the balance runs out.
// Ties on due date break by bill identifier for determinism.
type sortedAllocator struct{}

func (sortedAllocator) Allocate(balance decimal.Decimal, envelopes []*domain.Envelope, _ Options) error {
	order := make([]*domain.Envelope, len(envelopes))
	copy(order, envelopes)
	sort.SliceStable(order, func(i, j int) bool {
		if !order[i].Instance.DueDate.Equal(order[j].Instance.DueDate) {
			return order[i].Instance.DueDate.Before(order[j].Instance.DueDate)
		}
		return order[i].Instance.BillID < order[j].Instance.BillID
	})

	left := balance
	for _, env := range order {
		env.InitialAllocation = capShare(env.Instance.AmountDue, env.Instance.AmountDue, left)
		left = left.Sub(env.InitialAllocation)
	}
	return nil
}
