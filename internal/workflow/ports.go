package workflow

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gfbarbieri/coffer/internal/fund/allocation"
	"github.com/gfbarbieri/coffer/internal/fund/domain"
)

// FundStore is the collaborator contract the orchestrator drives. The
// concrete implementation lives in internal/fund; the orchestrator treats
// it as an opaque stateful service and never reaches around it.
type FundStore interface {
	StartDate() time.Time
	EndDate() time.Time
	Balance() decimal.Decimal

	// AddBills appends bill definitions. As a documented side effect the
	// store immediately creates envelopes for bills with an upcoming
	// instance; the generate pipeline's sync step reconciles this
	// auto-creation on re-runs.
	AddBills(records []domain.BillRecord, contributionInterval int) error
	AddBillsFromFile(path string, contributionInterval int) error
	DeleteBills(ids []string) error
	UpdateBill(id string, upd domain.BillUpdate) error
	GetBills() []domain.Bill
	GetBill(id string) (domain.Bill, error)
	GetBillInstances() []domain.BillInstance

	GetEnvelopes() []*domain.Envelope
	CreateEnvelopes(instances []domain.BillInstance) error
	SyncEnvelopesWithBills() error
	UpdateContributionDates(intervalDays int) error
	Allocate(strategy string, opts allocation.Options) error
	Schedule(strategy string) error
	Report(activeOnly bool) (domain.Report, error)
}

// StoreFactory creates a fresh fund store instance. Fund parameter
// changes always go through the factory: derived state is never migrated
// across instances.
type StoreFactory func(startDate, endDate time.Time, balance decimal.Decimal) (FundStore, error)
