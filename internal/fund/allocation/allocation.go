// Package allocation implements the strategies for distributing an
// existing fund balance across envelopes before scheduling begins.
//
// Strategies are registered under string keys so externally-sourced names
// (config files, saved sessions) keep a runtime error path; in-code
// callers should use the exported name constants.
package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/gfbarbieri/coffer/internal/fund/domain"
)

// Registered strategy names.
const (
	Sorted       = "sorted"
	Proportional = "proportional"
)

// Proportional methods.
const (
	MethodProportional = "proportional"
	MethodUrgency      = "urgency"
	MethodEqual        = "equal"
	MethodZero         = "zero"
)

// Options carries strategy-specific parameters.
type Options struct {
	// Method selects the proportional weighting. Required by the
	// proportional strategy, ignored by others.
	Method string
}

// Allocator distributes a balance across envelopes by mutating their
// InitialAllocation in place. Implementations never allocate more than
// the balance in total, and never more than an envelope's amount due.
type Allocator interface {
	Allocate(balance decimal.Decimal, envelopes []*domain.Envelope, opts Options) error
}

var registry = map[string]Allocator{
	Sorted:       sortedAllocator{},
	Proportional: proportionalAllocator{},
}

// Lookup resolves a strategy name to its allocator.
func Lookup(name string) (Allocator, error) {
	a, ok := registry[name]
	if !ok {
		return nil, &domain.UnknownStrategyError{Kind: "allocation", Name: name}
	}
	return a, nil
}

// Names returns the registered strategy names in display order.
func Names() []string {
	return []string{Sorted, Proportional}
}

// Methods returns the proportional method names in display order.
func Methods() []string {
	return []string{MethodProportional, MethodUrgency, MethodEqual, MethodZero}
}

// cap limits a share to the envelope's unpaid amount and to the balance
// still undistributed, truncated to cents.
func capShare(share, amountDue, left decimal.Decimal) decimal.Decimal {
	share = share.Truncate(2)
	if share.GreaterThan(amountDue) {
		share = amountDue
	}
	if share.GreaterThan(left) {
		share = left
	}
	if share.IsNegative() {
		return decimal.Zero
	}
	return share
}
