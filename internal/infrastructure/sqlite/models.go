package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gfbarbieri/coffer/internal/fund/domain"
	"github.com/gfbarbieri/coffer/internal/session"
)

// snapshotModel is the database row for the snapshots table. Dates are
// Unix timestamps, the balance travels as its decimal string, and bills
// are a JSON array of transport records.
type snapshotModel struct {
	ID                   int64
	GUID                 string
	Name                 *string // nullable
	StartDate            int64
	EndDate              int64
	Balance              string
	AllocationStrategy   *string // nullable
	ProportionalMethod   *string // nullable
	SchedulerStrategy    *string // nullable
	ContributionInterval int64
	Bills                string // JSON
	CreatedAt            int64
	UpdatedAt            int64
}

func toSnapshotModel(s *session.Snapshot) (*snapshotModel, error) {
	bills, err := json.Marshal(s.Bills)
	if err != nil {
		return nil, fmt.Errorf("encoding bills: %w", err)
	}
	m := &snapshotModel{
		ID:                   s.ID,
		GUID:                 s.GUID,
		StartDate:            s.StartDate.Unix(),
		EndDate:              s.EndDate.Unix(),
		Balance:              s.Balance.String(),
		ContributionInterval: int64(s.ContributionInterval),
		Bills:                string(bills),
		CreatedAt:            s.CreatedAt.Unix(),
		UpdatedAt:            s.UpdatedAt.Unix(),
	}
	if s.Name != "" {
		name := s.Name
		m.Name = &name
	}
	if s.AllocationStrategy != "" {
		v := s.AllocationStrategy
		m.AllocationStrategy = &v
	}
	if s.ProportionalMethod != "" {
		v := s.ProportionalMethod
		m.ProportionalMethod = &v
	}
	if s.SchedulerStrategy != "" {
		v := s.SchedulerStrategy
		m.SchedulerStrategy = &v
	}
	return m, nil
}

func (m *snapshotModel) toDomain() (*session.Snapshot, error) {
	balance, err := decimal.NewFromString(m.Balance)
	if err != nil {
		return nil, fmt.Errorf("decoding balance %q: %w", m.Balance, err)
	}
	var bills []domain.BillRecord
	if m.Bills != "" {
		if err := json.Unmarshal([]byte(m.Bills), &bills); err != nil {
			return nil, fmt.Errorf("decoding bills: %w", err)
		}
	}

	s := &session.Snapshot{
		ID:                   m.ID,
		GUID:                 m.GUID,
		StartDate:            time.Unix(m.StartDate, 0).UTC(),
		EndDate:              time.Unix(m.EndDate, 0).UTC(),
		Balance:              balance,
		ContributionInterval: int(m.ContributionInterval),
		Bills:                bills,
		CreatedAt:            time.Unix(m.CreatedAt, 0).UTC(),
		UpdatedAt:            time.Unix(m.UpdatedAt, 0).UTC(),
	}
	if m.Name != nil {
		s.Name = *m.Name
	}
	if m.AllocationStrategy != nil {
		s.AllocationStrategy = *m.AllocationStrategy
	}
	if m.ProportionalMethod != nil {
		s.ProportionalMethod = *m.ProportionalMethod
	}
	if m.SchedulerStrategy != nil {
		s.SchedulerStrategy = *m.SchedulerStrategy
	}
	return s, nil
}
