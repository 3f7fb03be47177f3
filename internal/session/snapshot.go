// Package session defines the persisted session snapshot: the minimal
// record needed to rebuild a working session after a restart.
//
// A snapshot stores fund parameters, strategy selections, and the bill
// definitions in their transport form. Derived state (envelopes,
// allocations, schedules, reports) is never persisted; restoring a
// snapshot re-runs the pipeline to rebuild it.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gfbarbieri/coffer/internal/fund/domain"
	"github.com/gfbarbieri/coffer/internal/workflow"
)

// Snapshot is one saved session.
type Snapshot struct {
	ID   int64
	GUID string
	Name string

	StartDate time.Time
	EndDate   time.Time
	Balance   decimal.Decimal

	AllocationStrategy   string
	ProportionalMethod   string
	SchedulerStrategy    string
	ContributionInterval int

	Bills []domain.BillRecord

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository persists snapshots.
type Repository interface {
	// Save inserts a new snapshot (ID == 0, assigning ID) or updates an
	// existing one by primary key.
	Save(s *Snapshot) error
	FindByGUID(guid string) (*Snapshot, error)
	// Latest returns the most recently updated snapshot.
	Latest() (*Snapshot, error)
	List() ([]*Snapshot, error)
	Delete(guid string) error
}

// NotFoundError indicates no snapshot matched the lookup.
type NotFoundError struct {
	GUID string
}

func (e *NotFoundError) Error() string {
	if e.GUID == "" {
		return "no saved session found"
	}
	return fmt.Sprintf("saved session not found: %q", e.GUID)
}

// Capture projects the current orchestrator session into a snapshot.
// Requires a fund; everything else may be unset.
func Capture(o *workflow.Orchestrator, name string) (*Snapshot, error) {
	state := o.State()
	if state.Fund == nil {
		return nil, workflow.ErrNoFund
	}
	now := time.Now().UTC()
	return &Snapshot{
		GUID:                 uuid.NewString(),
		Name:                 name,
		StartDate:            state.Fund.StartDate(),
		EndDate:              state.Fund.EndDate(),
		Balance:              state.Fund.Balance(),
		AllocationStrategy:   string(state.AllocationStrategy),
		ProportionalMethod:   string(state.ProportionalMethod),
		SchedulerStrategy:    string(state.SchedulerStrategy),
		ContributionInterval: state.ContributionInterval,
		Bills:                workflow.SerializeBills(state.Fund),
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// Restore rebuilds a session from the snapshot: fresh fund, re-submitted
// bills, and re-applied strategy selections. Derived state is left empty;
// the caller re-runs the pipeline when a report is wanted.
func Restore(o *workflow.Orchestrator, s *Snapshot) error {
	if s.ContributionInterval > 0 {
		if err := o.SetContributionInterval(s.ContributionInterval); err != nil {
			return err
		}
	}
	if err := o.CreateFund(s.StartDate, s.EndDate, s.Balance); err != nil {
		return fmt.Errorf("restoring fund: %w", err)
	}
	if len(s.Bills) > 0 {
		if err := o.AddBills(s.Bills); err != nil {
			return fmt.Errorf("restoring bills: %w", err)
		}
	}
	if s.AllocationStrategy != "" {
		strategy, err := workflow.ParseAllocationStrategy(s.AllocationStrategy)
		if err != nil {
			return err
		}
		o.SetAllocationStrategy(strategy)
	}
	if s.ProportionalMethod != "" {
		method, err := workflow.ParseProportionalMethod(s.ProportionalMethod)
		if err != nil {
			return err
		}
		o.SetProportionalMethod(method)
	}
	if s.SchedulerStrategy != "" {
		scheduler, err := workflow.ParseSchedulerStrategy(s.SchedulerStrategy)
		if err != nil {
			return err
		}
		o.SetSchedulerStrategy(scheduler)
	}
	return nil
}
