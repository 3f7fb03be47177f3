// Package workflow implements the session workflow orchestrator for a
// sinking fund: fund lifecycle, bill mutation, and the staged generate
// pipeline, together with the invalidation rules that keep envelopes,
// allocations, schedules, and the last report consistent when upstream
// inputs change.
package workflow

import (
	"github.com/gfbarbieri/coffer/internal/fund/allocation"
	"github.com/gfbarbieri/coffer/internal/fund/domain"
	"github.com/gfbarbieri/coffer/internal/fund/scheduling"
)

// AllocationStrategy selects how the initial balance is distributed
// across envelopes.
type AllocationStrategy string

const (
	AllocationSorted       AllocationStrategy = allocation.Sorted
	AllocationProportional AllocationStrategy = allocation.Proportional
	// AllocationNone skips distribution; the pipeline zeroes every
	// envelope's allocation instead of calling the allocator.
	AllocationNone AllocationStrategy = "none"
)

// ParseAllocationStrategy converts an externally-sourced name (config
// file, saved session) into a strategy.
func ParseAllocationStrategy(s string) (AllocationStrategy, error) {
	switch AllocationStrategy(s) {
	case AllocationSorted, AllocationProportional, AllocationNone:
		return AllocationStrategy(s), nil
	default:
		return "", &domain.UnknownStrategyError{Kind: "allocation", Name: s}
	}
}

// ProportionalMethod selects the weighting used by proportional
// allocation. Meaningful only while the strategy is proportional.
type ProportionalMethod string

const (
	MethodProportional ProportionalMethod = allocation.MethodProportional
	MethodUrgency      ProportionalMethod = allocation.MethodUrgency
	MethodEqual        ProportionalMethod = allocation.MethodEqual
	MethodZero         ProportionalMethod = allocation.MethodZero
)

// ParseProportionalMethod converts an externally-sourced method name.
func ParseProportionalMethod(s string) (ProportionalMethod, error) {
	switch ProportionalMethod(s) {
	case MethodProportional, MethodUrgency, MethodEqual, MethodZero:
		return ProportionalMethod(s), nil
	default:
		return "", &domain.ValidationError{Field: "proportional_method", Reason: "unknown method " + s}
	}
}

// SchedulerStrategy selects how contributions are spaced over time.
type SchedulerStrategy string

// SchedulerIndependent plans each envelope in isolation. Currently the
// only scheduler; the set is extensible through the scheduling registry.
const SchedulerIndependent SchedulerStrategy = scheduling.Independent

// ParseSchedulerStrategy converts an externally-sourced scheduler name.
func ParseSchedulerStrategy(s string) (SchedulerStrategy, error) {
	switch SchedulerStrategy(s) {
	case SchedulerIndependent:
		return SchedulerStrategy(s), nil
	default:
		return "", &domain.UnknownStrategyError{Kind: "scheduler", Name: s}
	}
}

// DefaultContributionInterval is the default number of days between
// contributions.
const DefaultContributionInterval = 14

// Phase is the observable stage of the workflow, derived from state
// rather than stored. The finer-grained pipeline stages (envelope sync,
// date computation, allocation, scheduling) are transient within a single
// Generate call and never observable between operations.
type Phase int

const (
	// PhaseNoFund means no fund has been created yet.
	PhaseNoFund Phase = iota
	// PhaseFundReady means a fund exists but holds no bills.
	PhaseFundReady
	// PhaseBillsReady means bills exist and the pipeline can run.
	PhaseBillsReady
	// PhaseReported means a report was generated since the last
	// invalidating change. Re-entrant: generate may run again.
	PhaseReported
)

// String returns a human-readable representation of the Phase.
func (p Phase) String() string {
	switch p {
	case PhaseNoFund:
		return "no fund"
	case PhaseFundReady:
		return "fund ready"
	case PhaseBillsReady:
		return "bills ready"
	case PhaseReported:
		return "reported"
	default:
		return "unknown"
	}
}

// State is the session-scoped workflow record: one instance per session,
// mutated in place by orchestrator operations, never shared across
// sessions. A single logical actor drives it; porting to a multi-user
// server requires a per-session mutex around every orchestrator call.
type State struct {
	// Fund is the current fund store instance, nil before creation.
	Fund FundStore

	// AllocationStrategy and SchedulerStrategy are empty until selected.
	AllocationStrategy AllocationStrategy
	SchedulerStrategy  SchedulerStrategy

	// ProportionalMethod is meaningful only while AllocationStrategy is
	// proportional; SetAllocationStrategy clears it on any other value.
	ProportionalMethod ProportionalMethod

	// ContributionInterval is the days between contributions.
	ContributionInterval int

	// LastReport is the most recent successful report, nil when absent
	// or invalidated.
	LastReport domain.Report

	// SelectedBillID is the bill targeted for edit/delete in the
	// presentation layer, empty when nothing is selected.
	SelectedBillID string

	// EditingBillIDs tracks bills with an in-progress edit, at most one
	// edit per bill.
	EditingBillIDs map[string]bool
}

// NewState returns a fresh session state with all optional fields absent.
func NewState() *State {
	return &State{
		ContributionInterval: DefaultContributionInterval,
		EditingBillIDs:       make(map[string]bool),
	}
}

// Phase derives the observable workflow stage.
func (s *State) Phase() Phase {
	switch {
	case s.Fund == nil:
		return PhaseNoFund
	case len(s.Fund.GetBills()) == 0:
		return PhaseFundReady
	case s.LastReport == nil:
		return PhaseBillsReady
	default:
		return PhaseReported
	}
}

// HasFund reports whether a fund exists.
func (s *State) HasFund() bool {
	return s.Fund != nil
}

// InvalidateReport discards the last report. Called on every structural
// change to bills, the contribution interval, or fund parameters.
func (s *State) InvalidateReport() {
	s.LastReport = nil
}

// ClearBillSelection drops selection and edit tracking for one bill,
// used after the bill is deleted or updated and its displayed row may no
// longer correspond to valid data.
func (s *State) ClearBillSelection(billID string) {
	if s.SelectedBillID == billID {
		s.SelectedBillID = ""
	}
	delete(s.EditingBillIDs, billID)
}

// Reset clears every field derived from the fund: report, strategies,
// selection, and edit tracking. The contribution interval survives as a
// session preference.
func (s *State) Reset() {
	s.LastReport = nil
	s.AllocationStrategy = ""
	s.ProportionalMethod = ""
	s.SchedulerStrategy = ""
	s.SelectedBillID = ""
	s.EditingBillIDs = make(map[string]bool)
}
