package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gfbarbieri/coffer/internal/session"
)

const snapshotColumns = `id, guid, name, start_date, end_date, balance,
	allocation_strategy, proportional_method, scheduler_strategy,
	contribution_interval, bills, created_at, updated_at`

// snapshotRepository implements session.Repository using SQLite.
type snapshotRepository struct {
	db *sql.DB
}

func newSnapshotRepository(db *sql.DB) *snapshotRepository {
	return &snapshotRepository{db: db}
}

var _ session.Repository = (*snapshotRepository)(nil)

// Save persists a snapshot. New snapshots (ID == 0) insert a row and get
// their ID assigned; existing ones update in place. UpdatedAt is bumped
// on every save.
func (r *snapshotRepository) Save(s *session.Snapshot) error {
	s.UpdatedAt = time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.UpdatedAt
	}
	model, err := toSnapshotModel(s)
	if err != nil {
		return err
	}

	if s.ID == 0 {
		result, err := r.db.Exec(
			`INSERT INTO snapshots (guid, name, start_date, end_date, balance, allocation_strategy, proportional_method, scheduler_strategy, contribution_interval, bills, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			model.GUID, model.Name, model.StartDate, model.EndDate, model.Balance,
			model.AllocationStrategy, model.ProportionalMethod, model.SchedulerStrategy,
			model.ContributionInterval, model.Bills, model.CreatedAt, model.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting snapshot: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading insert id: %w", err)
		}
		s.ID = id
		return nil
	}

	_, err = r.db.Exec(
		`UPDATE snapshots SET name = ?, start_date = ?, end_date = ?, balance = ?, allocation_strategy = ?, proportional_method = ?, scheduler_strategy = ?, contribution_interval = ?, bills = ?, updated_at = ? WHERE id = ?`,
		model.Name, model.StartDate, model.EndDate, model.Balance,
		model.AllocationStrategy, model.ProportionalMethod, model.SchedulerStrategy,
		model.ContributionInterval, model.Bills, model.UpdatedAt, model.ID,
	)
	if err != nil {
		return fmt.Errorf("updating snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepository) scanOne(row *sql.Row) (*session.Snapshot, error) {
	var m snapshotModel
	err := row.Scan(&m.ID, &m.GUID, &m.Name, &m.StartDate, &m.EndDate, &m.Balance,
		&m.AllocationStrategy, &m.ProportionalMethod, &m.SchedulerStrategy,
		&m.ContributionInterval, &m.Bills, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m.toDomain()
}

// FindByGUID retrieves a snapshot by its GUID.
func (r *snapshotRepository) FindByGUID(guid string) (*session.Snapshot, error) {
	row := r.db.QueryRow(
		`SELECT `+snapshotColumns+` FROM snapshots WHERE guid = ?`, guid)
	s, err := r.scanOne(row)
	if err == sql.ErrNoRows {
		return nil, &session.NotFoundError{GUID: guid}
	}
	if err != nil {
		return nil, fmt.Errorf("finding snapshot by guid: %w", err)
	}
	return s, nil
}

// Latest retrieves the most recently updated snapshot.
func (r *snapshotRepository) Latest() (*session.Snapshot, error) {
	row := r.db.QueryRow(
		`SELECT ` + snapshotColumns + ` FROM snapshots ORDER BY updated_at DESC, id DESC LIMIT 1`)
	s, err := r.scanOne(row)
	if err == sql.ErrNoRows {
		return nil, &session.NotFoundError{}
	}
	if err != nil {
		return nil, fmt.Errorf("finding latest snapshot: %w", err)
	}
	return s, nil
}

// List returns all snapshots, most recently updated first.
func (r *snapshotRepository) List() ([]*session.Snapshot, error) {
	rows, err := r.db.Query(
		`SELECT ` + snapshotColumns + ` FROM snapshots ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []*session.Snapshot
	for rows.Next() {
		var m snapshotModel
		if err := rows.Scan(&m.ID, &m.GUID, &m.Name, &m.StartDate, &m.EndDate, &m.Balance,
			&m.AllocationStrategy, &m.ProportionalMethod, &m.SchedulerStrategy,
			&m.ContributionInterval, &m.Bills, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		s, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	return out, nil
}

// Delete removes a snapshot by GUID. Deleting a missing snapshot returns
// NotFoundError.
func (r *snapshotRepository) Delete(guid string) error {
	result, err := r.db.Exec(`DELETE FROM snapshots WHERE guid = ?`, guid)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return &session.NotFoundError{GUID: guid}
	}
	return nil
}
