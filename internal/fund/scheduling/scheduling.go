// Package scheduling implements the strategies that turn an envelope's
// contribution dates into a concrete cash flow plan.
//
// Like allocation strategies, schedulers sit behind a string-keyed
// registry so names arriving from configuration keep a runtime error
// path.
package scheduling

import (
	"github.com/gfbarbieri/coffer/internal/fund/domain"
)

// Registered scheduler names.
const (
	Independent = "independent_scheduler"
)

// Scheduler produces a Schedule for each envelope, overwriting any plan
// from a previous run.
type Scheduler interface {
	Schedule(envelopes []*domain.Envelope) error
}

var registry = map[string]Scheduler{
	Independent: independentScheduler{},
}

// Lookup resolves a scheduler name to its implementation.
func Lookup(name string) (Scheduler, error) {
	s, ok := registry[name]
	if !ok {
		return nil, &domain.UnknownStrategyError{Kind: "scheduler", Name: name}
	}
	return s, nil
}

// Names returns the registered scheduler names in display order.
func Names() []string {
	return []string{Independent}
}
