// Package fund implements the sinking fund store: bill bookkeeping,
// envelope lifecycle, allocation, scheduling, and reporting over a fixed
// planning window.
//
// The store is a plain in-memory value owned by one session. It performs
// no invalidation of its own; the workflow orchestrator decides when to
// re-sync envelopes or rebuild the fund.
package fund

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/gfbarbieri/coffer/internal/fund/allocation"
	"github.com/gfbarbieri/coffer/internal/fund/domain"
	"github.com/gfbarbieri/coffer/internal/fund/loader"
	"github.com/gfbarbieri/coffer/internal/fund/scheduling"
	"github.com/gfbarbieri/coffer/internal/log"
)

// Fund is a sinking fund: a planning window, a cash balance, the bills
// tracked over that window, and the envelopes saving toward them.
type Fund struct {
	startDate time.Time
	endDate   time.Time
	balance   decimal.Decimal

	bills     []*domain.Bill
	billIndex map[string]*domain.Bill

	envelopes []*domain.Envelope
	envIndex  map[string]*domain.Envelope

	// revision counts bill-set mutations; it keys the instance cache so
	// stale expansions are never served.
	revision  uint64
	instances *gocache.Cache
}

// New creates an empty fund. The end date must be after the start date
// and the balance must not be negative.
func New(startDate, endDate time.Time, balance decimal.Decimal) (*Fund, error) {
	startDate = domain.Normalize(startDate)
	endDate = domain.Normalize(endDate)
	if !endDate.After(startDate) {
		return nil, &domain.ValidationError{Field: "end_date", Reason: "must be after start_date"}
	}
	if balance.IsNegative() {
		return nil, &domain.ValidationError{Field: "balance", Reason: "must not be negative"}
	}
	return &Fund{
		startDate: startDate,
		endDate:   endDate,
		balance:   balance,
		billIndex: make(map[string]*domain.Bill),
		envIndex:  make(map[string]*domain.Envelope),
		instances: gocache.New(5*time.Minute, 10*time.Minute),
	}, nil
}

// StartDate returns the start of the planning window.
func (f *Fund) StartDate() time.Time { return f.startDate }

// EndDate returns the end of the planning window.
func (f *Fund) EndDate() time.Time { return f.endDate }

// Balance returns the initial account balance.
func (f *Fund) Balance() decimal.Decimal { return f.balance }

// AddBills validates and appends the given bill records. The batch is
// all-or-nothing: any invalid or duplicate record rejects the whole call.
//
// As a side effect, every added bill with an upcoming instance in the
// planning window immediately gets an envelope. Callers that need the
// envelope set to be exact after later mutations run
// SyncEnvelopesWithBills rather than assuming a clean slate.
func (f *Fund) AddBills(records []domain.BillRecord, contributionInterval int) error {
	if contributionInterval < 1 {
		return &domain.ValidationError{Field: "contribution_interval", Reason: "must be a positive number of days"}
	}

	batch := make([]*domain.Bill, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		bill, err := rec.ToBill()
		if err != nil {
			return err
		}
		if seen[bill.ID] {
			return &domain.DuplicateBillError{BillID: bill.ID}
		}
		if _, exists := f.billIndex[bill.ID]; exists {
			return &domain.DuplicateBillError{BillID: bill.ID}
		}
		seen[bill.ID] = true
		b := bill
		batch = append(batch, &b)
	}

	for _, b := range batch {
		f.bills = append(f.bills, b)
		f.billIndex[b.ID] = b
		if inst, ok := f.activeInstance(*b); ok {
			f.appendEnvelope(inst)
		}
	}
	f.revision++
	log.Debug(log.CatFund, "Added bills", "count", len(batch), "total", len(f.bills))
	return nil
}

// AddBillsFromFile parses a CSV, JSON, or YAML bill source and adds its
// records. Parse failures surface as SourceFormatError before any bill is
// added.
func (f *Fund) AddBillsFromFile(path string, contributionInterval int) error {
	records, err := loader.Load(path)
	if err != nil {
		return err
	}
	return f.AddBills(records, contributionInterval)
}

// DeleteBills removes bills by identifier. If any identifier is unknown
// the call fails without removing anything. Envelopes for deleted bills
// are left in place until the next SyncEnvelopesWithBills.
func (f *Fund) DeleteBills(ids []string) error {
	for _, id := range ids {
		if _, ok := f.billIndex[id]; !ok {
			return &domain.BillNotFoundError{BillID: id}
		}
	}

	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}
	kept := f.bills[:0]
	for _, b := range f.bills {
		if doomed[b.ID] {
			delete(f.billIndex, b.ID)
			continue
		}
		kept = append(kept, b)
	}
	f.bills = kept
	f.revision++
	log.Debug(log.CatFund, "Deleted bills", "count", len(ids), "remaining", len(f.bills))
	return nil
}

// UpdateBill applies a partial update to a bill. The identifier itself is
// immutable. When the update switches the bill between recurring and
// one-time modes, the caller must supply the fields the new mode needs;
// fields belonging to the old mode are discarded with it.
func (f *Fund) UpdateBill(id string, upd domain.BillUpdate) error {
	b, ok := f.billIndex[id]
	if !ok {
		return &domain.BillNotFoundError{BillID: id}
	}

	updated, err := upd.ApplyTo(*b)
	if err != nil {
		return err
	}
	*b = updated
	f.revision++
	log.Debug(log.CatFund, "Updated bill", "bill_id", id)
	return nil
}

// GetBills returns the bill definitions in insertion order.
func (f *Fund) GetBills() []domain.Bill {
	out := make([]domain.Bill, len(f.bills))
	for i, b := range f.bills {
		out[i] = *b
	}
	return out
}

// GetBill returns one bill by identifier.
func (f *Fund) GetBill(id string) (domain.Bill, error) {
	b, ok := f.billIndex[id]
	if !ok {
		return domain.Bill{}, &domain.BillNotFoundError{BillID: id}
	}
	return *b, nil
}

// GetBillInstances returns the upcoming instance of each bill inside the
// planning window, in bill insertion order. Bills whose occurrences all
// fall outside the window produce no instance. Results are cached per
// bill-set revision.
func (f *Fund) GetBillInstances() []domain.BillInstance {
	key := fmt.Sprintf("instances:%d", f.revision)
	if cached, ok := f.instances.Get(key); ok {
		return cached.([]domain.BillInstance)
	}

	var out []domain.BillInstance
	for _, b := range f.bills {
		if inst, ok := f.activeInstance(*b); ok {
			out = append(out, inst)
		}
	}
	f.instances.Set(key, out, gocache.DefaultExpiration)
	return out
}

// activeInstance finds the bill's next due occurrence within the window.
func (f *Fund) activeInstance(b domain.Bill) (domain.BillInstance, bool) {
	due := b.NextDueDate(f.startDate)
	if due.IsZero() || due.After(f.endDate) {
		return domain.BillInstance{}, false
	}
	return domain.BillInstance{
		BillID:    b.ID,
		Service:   b.Service,
		AmountDue: b.AmountDue,
		DueDate:   due,
	}, true
}

// GetEnvelopes returns the live envelope set in creation order. The
// pointers are shared with the store: the orchestrator mutates initial
// allocations through them before date computation (the "none" strategy
// zeroing pass).
func (f *Fund) GetEnvelopes() []*domain.Envelope {
	out := make([]*domain.Envelope, len(f.envelopes))
	copy(out, f.envelopes)
	return out
}

// CreateEnvelopes replaces the envelope set with one envelope per given
// bill instance.
func (f *Fund) CreateEnvelopes(instances []domain.BillInstance) error {
	f.envelopes = nil
	f.envIndex = make(map[string]*domain.Envelope, len(instances))
	for _, inst := range instances {
		f.appendEnvelope(inst)
	}
	log.Debug(log.CatFund, "Created envelopes", "count", len(f.envelopes))
	return nil
}

func (f *Fund) appendEnvelope(inst domain.BillInstance) {
	if _, exists := f.envIndex[inst.BillID]; exists {
		return
	}
	env := &domain.Envelope{Instance: inst, InitialAllocation: decimal.Zero}
	f.envelopes = append(f.envelopes, env)
	f.envIndex[inst.BillID] = env
}

// SyncEnvelopesWithBills reconciles envelopes against the current bill
// set: envelopes appear for bills that gained an upcoming instance,
// disappear for bills that were deleted or fell out of the window, and
// survive untouched otherwise — keeping their allocation and schedule
// until a later pipeline stage overwrites them. Instance data (service,
// amount, due date) is refreshed on surviving envelopes so edits show
// through. Calling sync twice without a bill change is a no-op.
func (f *Fund) SyncEnvelopesWithBills() error {
	active := make(map[string]domain.BillInstance)
	for _, inst := range f.GetBillInstances() {
		active[inst.BillID] = inst
	}

	kept := f.envelopes[:0]
	for _, env := range f.envelopes {
		inst, ok := active[env.Instance.BillID]
		if !ok {
			delete(f.envIndex, env.Instance.BillID)
			continue
		}
		env.Instance = inst
		kept = append(kept, env)
		delete(active, env.Instance.BillID)
	}
	f.envelopes = kept

	// Remaining actives had no envelope yet; preserve bill order.
	for _, inst := range f.GetBillInstances() {
		if _, pending := active[inst.BillID]; pending {
			f.appendEnvelope(inst)
		}
	}

	log.Debug(log.CatFund, "Synced envelopes", "count", len(f.envelopes))
	return nil
}

// UpdateContributionDates computes each envelope's contribution dates:
// every intervalDays from the fund start date up to (and including) the
// instance due date. Envelopes whose initial allocation already covers
// the amount due get no contribution dates. The allocation amount is read
// here, which is why the orchestrator zeroes allocations (rather than
// leaving stale values) before this stage when the "none" strategy is
// selected.
func (f *Fund) UpdateContributionDates(intervalDays int) error {
	if intervalDays < 1 {
		return &domain.ValidationError{Field: "contribution_interval", Reason: "must be a positive number of days"}
	}
	for _, env := range f.envelopes {
		env.StartContribDate = f.startDate
		env.ContribDates = nil
		if env.InitialAllocation.GreaterThanOrEqual(env.Instance.AmountDue) {
			continue
		}
		for d := f.startDate; !d.After(env.Instance.DueDate); d = d.AddDate(0, 0, intervalDays) {
			env.ContribDates = append(env.ContribDates, d)
		}
	}
	return nil
}

// Allocate distributes the fund balance across envelopes using the named
// strategy. Unknown names fail with UnknownStrategyError.
func (f *Fund) Allocate(strategy string, opts allocation.Options) error {
	alloc, err := allocation.Lookup(strategy)
	if err != nil {
		return err
	}
	if err := alloc.Allocate(f.balance, f.envelopes, opts); err != nil {
		return fmt.Errorf("allocating with %s: %w", strategy, err)
	}
	log.Debug(log.CatFund, "Allocated balance", "strategy", strategy, "envelopes", len(f.envelopes))
	return nil
}

// Schedule plans contributions for every envelope using the named
// scheduler strategy. Unknown names fail with UnknownStrategyError.
func (f *Fund) Schedule(strategy string) error {
	sched, err := scheduling.Lookup(strategy)
	if err != nil {
		return err
	}
	if err := sched.Schedule(f.envelopes); err != nil {
		return fmt.Errorf("scheduling with %s: %w", strategy, err)
	}
	log.Debug(log.CatFund, "Scheduled contributions", "strategy", strategy, "envelopes", len(f.envelopes))
	return nil
}
