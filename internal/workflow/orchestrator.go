package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gfbarbieri/coffer/internal/fund/allocation"
	"github.com/gfbarbieri/coffer/internal/fund/domain"
	"github.com/gfbarbieri/coffer/internal/log"
)

// tracerName identifies the orchestrator's spans.
const tracerName = "github.com/gfbarbieri/coffer/internal/workflow"

// Orchestrator owns the session workflow state and drives the fund store
// through the planning pipeline. Operations are synchronous and run to
// completion; a failed multi-stage operation leaves earlier stages'
// side effects applied (no transactional rollback) but never publishes a
// report for the failed run.
type Orchestrator struct {
	state    *State
	newStore StoreFactory
	tracer   trace.Tracer
}

// NewOrchestrator creates an orchestrator with a fresh session state.
func NewOrchestrator(factory StoreFactory) *Orchestrator {
	return &Orchestrator{
		state:    NewState(),
		newStore: factory,
		tracer:   otel.Tracer(tracerName),
	}
}

// State exposes the session workflow state for the presentation layer.
func (o *Orchestrator) State() *State {
	return o.state
}

// validateFundParams checks the fund preconditions the orchestrator owns,
// before any store call is made.
func validateFundParams(startDate, endDate time.Time, balance decimal.Decimal) error {
	if !domain.Normalize(endDate).After(domain.Normalize(startDate)) {
		return &domain.ValidationError{Field: "end_date", Reason: "must be after start_date"}
	}
	if balance.IsNegative() {
		return &domain.ValidationError{Field: "balance", Reason: "must not be negative"}
	}
	return nil
}

// CreateFund creates a new fund instance with no bills and resets all
// derived session state.
func (o *Orchestrator) CreateFund(startDate, endDate time.Time, balance decimal.Decimal) error {
	if err := validateFundParams(startDate, endDate, balance); err != nil {
		return err
	}
	store, err := o.newStore(startDate, endDate, balance)
	if err != nil {
		return fmt.Errorf("creating fund: %w", err)
	}
	o.state.Fund = store
	o.state.Reset()
	log.Info(log.CatWorkflow, "Fund created",
		"start", startDate.Format("2006-01-02"), "end", endDate.Format("2006-01-02"), "balance", balance)
	return nil
}

// UpdateFund replaces the fund instance with new parameters while
// carrying the bill definitions forward by value through the
// serialization projection. Envelopes, allocations, schedules, and the
// last report are discarded with the old instance: derived state is not
// safely migratable across a fund-parameter change and is rebuilt from
// scratch by the next generate run.
func (o *Orchestrator) UpdateFund(startDate, endDate time.Time, balance decimal.Decimal) error {
	if err := validateFundParams(startDate, endDate, balance); err != nil {
		return err
	}

	var preserved []domain.BillRecord
	if o.state.Fund != nil {
		preserved = SerializeBills(o.state.Fund)
	}

	store, err := o.newStore(startDate, endDate, balance)
	if err != nil {
		return fmt.Errorf("rebuilding fund: %w", err)
	}
	if len(preserved) > 0 {
		if err := store.AddBills(preserved, o.state.ContributionInterval); err != nil {
			return fmt.Errorf("carrying bills to rebuilt fund: %w", err)
		}
	}

	o.state.Fund = store
	o.state.Reset()
	log.Info(log.CatWorkflow, "Fund updated", "bills_preserved", len(preserved))
	return nil
}

// AddBills appends bill records to the fund and invalidates the last
// report. The store auto-creates envelopes for the new bills; generate's
// sync step reconciles them.
func (o *Orchestrator) AddBills(records []domain.BillRecord) error {
	if o.state.Fund == nil {
		return ErrNoFund
	}
	if err := o.state.Fund.AddBills(records, o.state.ContributionInterval); err != nil {
		return err
	}
	o.state.InvalidateReport()
	return nil
}

// AddBillsFromFile ingests a bulk bill source file and invalidates the
// last report.
func (o *Orchestrator) AddBillsFromFile(path string) error {
	if o.state.Fund == nil {
		return ErrNoFund
	}
	if err := o.state.Fund.AddBillsFromFile(path, o.state.ContributionInterval); err != nil {
		return err
	}
	o.state.InvalidateReport()
	return nil
}

// DeleteBills removes bills by identifier, re-syncs envelopes so orphans
// for the deleted bills disappear, and clears any selection or edit
// tracking for them. Treat the batch as all-or-nothing: an unknown
// identifier fails the call before anything is removed.
func (o *Orchestrator) DeleteBills(ids []string) error {
	if o.state.Fund == nil {
		return ErrNoFund
	}
	if err := o.state.Fund.DeleteBills(ids); err != nil {
		return err
	}
	if err := o.state.Fund.SyncEnvelopesWithBills(); err != nil {
		return fmt.Errorf("syncing envelopes after delete: %w", err)
	}
	for _, id := range ids {
		o.state.ClearBillSelection(id)
	}
	o.state.InvalidateReport()
	return nil
}

// UpdateBill applies a partial bill update, zeroing out the fields that
// belong to the mode being left whenever the update flips the bill
// between recurring and one-time. Selection and edit tracking for the
// bill are cleared and the last report is invalidated.
func (o *Orchestrator) UpdateBill(id string, upd domain.BillUpdate) error {
	if o.state.Fund == nil {
		return ErrNoFund
	}

	if upd.Recurring != nil {
		if *upd.Recurring {
			// Entering recurring mode: the one-time due date is stale.
			upd.DueDate = nil
		} else {
			// Entering one-time mode: recurrence fields are stale.
			upd.StartDate = nil
			upd.Frequency = nil
			upd.Interval = nil
			upd.Occurrences = nil
			upd.EndDate = nil
			upd.ClearOccurrences = true
			upd.ClearEndDate = true
		}
	}

	if err := o.state.Fund.UpdateBill(id, upd); err != nil {
		return err
	}
	o.state.ClearBillSelection(id)
	o.state.InvalidateReport()
	return nil
}

// SetAllocationStrategy records the strategy selection, clearing the
// proportional method whenever the strategy moves away from proportional.
func (o *Orchestrator) SetAllocationStrategy(s AllocationStrategy) {
	o.state.AllocationStrategy = s
	if s != AllocationProportional {
		o.state.ProportionalMethod = ""
	}
}

// SetProportionalMethod records the proportional weighting method.
func (o *Orchestrator) SetProportionalMethod(m ProportionalMethod) {
	o.state.ProportionalMethod = m
}

// SetSchedulerStrategy records the scheduler selection.
func (o *Orchestrator) SetSchedulerStrategy(s SchedulerStrategy) {
	o.state.SchedulerStrategy = s
}

// SetContributionInterval records the days between contributions and
// invalidates the last report: contribution dates derived from the old
// interval no longer describe the plan the user asked for.
func (o *Orchestrator) SetContributionInterval(days int) error {
	if days < 1 {
		return &domain.ValidationError{Field: "contribution_interval", Reason: "must be a positive number of days"}
	}
	if days != o.state.ContributionInterval {
		o.state.ContributionInterval = days
		o.state.InvalidateReport()
	}
	return nil
}

// Generate runs the full planning pipeline against the current parameter
// set: envelope materialization/sync, allocation zeroing for the "none"
// strategy, contribution-date computation, allocation, scheduling, and
// report generation (active instances only).
//
// The pipeline is re-entrant: a second run re-syncs envelopes rather
// than duplicating them and fully overwrites prior derived values. There
// is no rollback: if a later stage fails, earlier stages' side effects
// remain applied, the first failure propagates unchanged, and the last
// report is left untouched.
func (o *Orchestrator) Generate(ctx context.Context) error {
	ctx, span := o.tracer.Start(ctx, "workflow.generate", trace.WithAttributes(
		attribute.String("allocation.strategy", string(o.state.AllocationStrategy)),
		attribute.String("scheduler.strategy", string(o.state.SchedulerStrategy)),
		attribute.Int("contribution.interval_days", o.state.ContributionInterval),
	))
	defer span.End()

	err := o.generate(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.ErrorErr(log.CatWorkflow, "Generate failed", err)
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (o *Orchestrator) generate(ctx context.Context) error {
	state := o.state
	if state.Fund == nil {
		return ErrNoFund
	}
	if len(state.Fund.GetBills()) == 0 {
		return ErrNoBills
	}
	if state.AllocationStrategy == "" {
		return ErrNoAllocationStrategy
	}
	if state.SchedulerStrategy == "" {
		return ErrNoSchedulerStrategy
	}
	if state.AllocationStrategy == AllocationProportional && state.ProportionalMethod == "" {
		return &domain.ValidationError{Field: "proportional_method", Reason: "required when allocation strategy is proportional"}
	}

	instances := state.Fund.GetBillInstances()
	if len(instances) == 0 {
		return ErrNoActiveInstances
	}

	// Envelope materialization: first run creates, re-runs sync so
	// envelopes for unchanged bills survive instead of being recreated.
	if err := o.stage(ctx, "envelopes", func() error {
		if len(state.Fund.GetEnvelopes()) > 0 {
			return state.Fund.SyncEnvelopesWithBills()
		}
		return state.Fund.CreateEnvelopes(instances)
	}); err != nil {
		return err
	}

	// The "none" strategy zeroes allocations before date computation:
	// date computation reads the allocation amount, so stale nonzero
	// values from a previous run must not leak into this run.
	if state.AllocationStrategy == AllocationNone {
		for _, env := range state.Fund.GetEnvelopes() {
			env.InitialAllocation = decimal.Zero
		}
	}

	if err := o.stage(ctx, "contribution_dates", func() error {
		return state.Fund.UpdateContributionDates(state.ContributionInterval)
	}); err != nil {
		return err
	}

	// Allocation is skipped for the "none" strategy and when there is no
	// balance to distribute; neither is an error.
	if state.AllocationStrategy != AllocationNone && state.Fund.Balance().IsPositive() {
		opts := allocation.Options{}
		if state.AllocationStrategy == AllocationProportional {
			opts.Method = string(state.ProportionalMethod)
		}
		if err := o.stage(ctx, "allocate", func() error {
			return state.Fund.Allocate(string(state.AllocationStrategy), opts)
		}); err != nil {
			return err
		}
	}

	if err := o.stage(ctx, "schedule", func() error {
		return state.Fund.Schedule(string(state.SchedulerStrategy))
	}); err != nil {
		return err
	}

	var report domain.Report
	if err := o.stage(ctx, "report", func() error {
		var err error
		report, err = state.Fund.Report(true)
		return err
	}); err != nil {
		return err
	}

	state.LastReport = report
	log.Info(log.CatWorkflow, "Schedule generated",
		"envelopes", len(state.Fund.GetEnvelopes()), "report_dates", len(report))
	return nil
}

// stage wraps one pipeline step in a span.
func (o *Orchestrator) stage(ctx context.Context, name string, fn func() error) error {
	_, span := o.tracer.Start(ctx, "workflow.generate."+name)
	defer span.End()
	if err := fn(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// FullReport produces a report including historically inactive bill
// instances. It is a pass-through: the result is not stored in the
// session state.
func (o *Orchestrator) FullReport() (domain.Report, error) {
	if o.state.Fund == nil {
		return nil, ErrNoFund
	}
	return o.state.Fund.Report(false)
}
