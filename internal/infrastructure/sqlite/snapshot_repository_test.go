package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfbarbieri/coffer/internal/fund/domain"
	"github.com/gfbarbieri/coffer/internal/session"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "coffer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleSnapshot() *session.Snapshot {
	due := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	return &session.Snapshot{
		GUID:                 uuid.NewString(),
		Name:                 "spring plan",
		StartDate:            time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:              time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC),
		Balance:              decimal.RequireFromString("800.50"),
		AllocationStrategy:   "sorted",
		SchedulerStrategy:    "independent_scheduler",
		ContributionInterval: 14,
		Bills: []domain.BillRecord{
			{BillID: "insurance", Service: "Car Insurance", AmountDue: "300.00", DueDate: &due},
		},
	}
}

func TestSnapshotRepository_SaveAndFind(t *testing.T) {
	repo := openTestDB(t).SnapshotRepository()

	snap := sampleSnapshot()
	require.NoError(t, repo.Save(snap))
	assert.NotZero(t, snap.ID, "insert must assign an ID")

	found, err := repo.FindByGUID(snap.GUID)
	require.NoError(t, err)

	assert.Equal(t, snap.GUID, found.GUID)
	assert.Equal(t, "spring plan", found.Name)
	assert.True(t, found.StartDate.Equal(snap.StartDate))
	assert.True(t, found.EndDate.Equal(snap.EndDate))
	assert.True(t, found.Balance.Equal(snap.Balance), "balance survives as an exact decimal")
	assert.Equal(t, "sorted", found.AllocationStrategy)
	assert.Empty(t, found.ProportionalMethod)
	assert.Equal(t, 14, found.ContributionInterval)
	require.Len(t, found.Bills, 1)
	assert.Equal(t, "insurance", found.Bills[0].BillID)
	require.NotNil(t, found.Bills[0].DueDate)
}

func TestSnapshotRepository_Update(t *testing.T) {
	repo := openTestDB(t).SnapshotRepository()

	snap := sampleSnapshot()
	require.NoError(t, repo.Save(snap))

	snap.Name = "revised plan"
	snap.AllocationStrategy = "none"
	snap.Bills = nil
	require.NoError(t, repo.Save(snap))

	found, err := repo.FindByGUID(snap.GUID)
	require.NoError(t, err)
	assert.Equal(t, "revised plan", found.Name)
	assert.Equal(t, "none", found.AllocationStrategy)
	assert.Empty(t, found.Bills)

	list, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, list, 1, "update must not create a second row")
}

func TestSnapshotRepository_Latest(t *testing.T) {
	repo := openTestDB(t).SnapshotRepository()

	t.Run("empty store", func(t *testing.T) {
		_, err := repo.Latest()
		var nferr *session.NotFoundError
		assert.ErrorAs(t, err, &nferr)
	})

	t.Run("returns the most recently saved", func(t *testing.T) {
		first := sampleSnapshot()
		require.NoError(t, repo.Save(first))
		second := sampleSnapshot()
		second.Name = "later plan"
		require.NoError(t, repo.Save(second))

		latest, err := repo.Latest()
		require.NoError(t, err)
		assert.Equal(t, second.GUID, latest.GUID)
	})
}

func TestSnapshotRepository_Delete(t *testing.T) {
	repo := openTestDB(t).SnapshotRepository()

	snap := sampleSnapshot()
	require.NoError(t, repo.Save(snap))
	require.NoError(t, repo.Delete(snap.GUID))

	_, err := repo.FindByGUID(snap.GUID)
	var nferr *session.NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, snap.GUID, nferr.GUID)

	assert.ErrorAs(t, repo.Delete(snap.GUID), &nferr, "double delete reports not found")
}
