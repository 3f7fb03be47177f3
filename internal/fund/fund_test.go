package fund

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfbarbieri/coffer/internal/fund/allocation"
	"github.com/gfbarbieri/coffer/internal/fund/domain"
	"github.com/gfbarbieri/coffer/internal/fund/scheduling"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestFund(t *testing.T) *Fund {
	t.Helper()
	f, err := New(domain.Date(2026, time.January, 1), domain.Date(2026, time.June, 30), money("1000.00"))
	require.NoError(t, err)
	return f
}

func oneTimeRecord(id, amount string, due time.Time) domain.BillRecord {
	return domain.BillRecord{
		BillID:    id,
		Service:   id,
		AmountDue: amount,
		DueDate:   &due,
	}
}

func monthlyRecord(id, amount string, start time.Time) domain.BillRecord {
	return domain.BillRecord{
		BillID:    id,
		Service:   id,
		AmountDue: amount,
		Recurring: true,
		StartDate: &start,
		Frequency: string(domain.Monthly),
		Interval:  1,
	}
}

func TestNew(t *testing.T) {
	t.Run("normalizes window dates", func(t *testing.T) {
		f, err := New(
			time.Date(2026, time.January, 1, 13, 30, 0, 0, time.UTC),
			time.Date(2026, time.June, 30, 2, 0, 0, 0, time.UTC),
			decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, domain.Date(2026, time.January, 1), f.StartDate())
		assert.Equal(t, domain.Date(2026, time.June, 30), f.EndDate())
	})

	t.Run("rejects end not after start", func(t *testing.T) {
		_, err := New(domain.Date(2026, time.June, 30), domain.Date(2026, time.June, 30), decimal.Zero)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "end_date", verr.Field)
	})

	t.Run("rejects negative balance", func(t *testing.T) {
		_, err := New(domain.Date(2026, time.January, 1), domain.Date(2026, time.June, 30), money("-1"))
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "balance", verr.Field)
	})
}

func TestAddBills(t *testing.T) {
	t.Run("adds bills and creates envelopes for active instances", func(t *testing.T) {
		f := newTestFund(t)
		err := f.AddBills([]domain.BillRecord{
			oneTimeRecord("a", "100.00", domain.Date(2026, time.March, 1)),
			monthlyRecord("b", "50.00", domain.Date(2026, time.January, 15)),
		}, 14)
		require.NoError(t, err)

		assert.Len(t, f.GetBills(), 2)
		assert.Len(t, f.GetEnvelopes(), 2)
	})

	t.Run("bill outside the window gets no envelope", func(t *testing.T) {
		f := newTestFund(t)
		require.NoError(t, f.AddBills([]domain.BillRecord{
			oneTimeRecord("far", "100.00", domain.Date(2027, time.March, 1)),
		}, 14))

		assert.Len(t, f.GetBills(), 1)
		assert.Empty(t, f.GetEnvelopes())
	})

	t.Run("batch is all-or-nothing on invalid record", func(t *testing.T) {
		f := newTestFund(t)
		err := f.AddBills([]domain.BillRecord{
			oneTimeRecord("ok", "100.00", domain.Date(2026, time.March, 1)),
			{BillID: "bad", Service: "bad", AmountDue: "not-a-number"},
		}, 14)

		require.Error(t, err)
		assert.Empty(t, f.GetBills())
	})

	t.Run("duplicate within a batch rejects the batch", func(t *testing.T) {
		f := newTestFund(t)
		err := f.AddBills([]domain.BillRecord{
			oneTimeRecord("dup", "100.00", domain.Date(2026, time.March, 1)),
			oneTimeRecord("dup", "200.00", domain.Date(2026, time.April, 1)),
		}, 14)

		var derr *domain.DuplicateBillError
		require.ErrorAs(t, err, &derr)
		assert.Empty(t, f.GetBills())
	})

	t.Run("duplicate of an existing bill rejects the batch", func(t *testing.T) {
		f := newTestFund(t)
		require.NoError(t, f.AddBills([]domain.BillRecord{
			oneTimeRecord("dup", "100.00", domain.Date(2026, time.March, 1)),
		}, 14))

		err := f.AddBills([]domain.BillRecord{
			oneTimeRecord("new", "50.00", domain.Date(2026, time.April, 1)),
			oneTimeRecord("dup", "200.00", domain.Date(2026, time.May, 1)),
		}, 14)

		var derr *domain.DuplicateBillError
		require.ErrorAs(t, err, &derr)
		assert.Len(t, f.GetBills(), 1)
	})

	t.Run("rejects non-positive contribution interval", func(t *testing.T) {
		f := newTestFund(t)
		err := f.AddBills([]domain.BillRecord{
			oneTimeRecord("a", "100.00", domain.Date(2026, time.March, 1)),
		}, 0)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "contribution_interval", verr.Field)
	})
}

func TestAddBillsFromFile(t *testing.T) {
	f := newTestFund(t)
	path := filepath.Join(t.TempDir(), "bills.csv")
	csv := "bill_id,service,amount_due,recurring,due_date\n" +
		"water,Water utility,120.00,false,2026-02-10\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	require.NoError(t, f.AddBillsFromFile(path, 14))
	assert.Len(t, f.GetBills(), 1)

	t.Run("parse failure adds nothing", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.csv")
		require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o600))

		err := f.AddBillsFromFile(bad, 14)
		var serr *domain.SourceFormatError
		require.ErrorAs(t, err, &serr)
		assert.Len(t, f.GetBills(), 1)
	})
}

func TestDeleteBills(t *testing.T) {
	t.Run("removes bills and leaves envelopes until sync", func(t *testing.T) {
		f := newTestFund(t)
		require.NoError(t, f.AddBills([]domain.BillRecord{
			oneTimeRecord("a", "100.00", domain.Date(2026, time.March, 1)),
			oneTimeRecord("b", "50.00", domain.Date(2026, time.April, 1)),
		}, 14))

		require.NoError(t, f.DeleteBills([]string{"a"}))
		assert.Len(t, f.GetBills(), 1)
		assert.Len(t, f.GetEnvelopes(), 2, "envelope cleanup is deferred to sync")

		require.NoError(t, f.SyncEnvelopesWithBills())
		assert.Len(t, f.GetEnvelopes(), 1)
	})

	t.Run("unknown id fails without removing anything", func(t *testing.T) {
		f := newTestFund(t)
		require.NoError(t, f.AddBills([]domain.BillRecord{
			oneTimeRecord("a", "100.00", domain.Date(2026, time.March, 1)),
		}, 14))

		err := f.DeleteBills([]string{"a", "ghost"})
		var nerr *domain.BillNotFoundError
		require.ErrorAs(t, err, &nerr)
		assert.Len(t, f.GetBills(), 1)
	})
}

func TestUpdateBill(t *testing.T) {
	f := newTestFund(t)
	require.NoError(t, f.AddBills([]domain.BillRecord{
		oneTimeRecord("a", "100.00", domain.Date(2026, time.March, 1)),
	}, 14))

	amount := money("125.00")
	require.NoError(t, f.UpdateBill("a", domain.BillUpdate{AmountDue: &amount}))

	b, err := f.GetBill("a")
	require.NoError(t, err)
	assert.True(t, b.AmountDue.Equal(amount))

	t.Run("unknown bill", func(t *testing.T) {
		err := f.UpdateBill("ghost", domain.BillUpdate{AmountDue: &amount})
		var nerr *domain.BillNotFoundError
		require.ErrorAs(t, err, &nerr)
	})
}

func TestGetBillInstances(t *testing.T) {
	f := newTestFund(t)
	require.NoError(t, f.AddBills([]domain.BillRecord{
		monthlyRecord("water", "120.00", domain.Date(2026, time.January, 15)),
		oneTimeRecord("far", "10.00", domain.Date(2027, time.March, 1)),
	}, 14))

	instances := f.GetBillInstances()
	require.Len(t, instances, 1, "out-of-window bill yields no instance")
	assert.Equal(t, "water", instances[0].BillID)
	assert.Equal(t, domain.Date(2026, time.January, 15), instances[0].DueDate)

	t.Run("cache refreshes after a mutation", func(t *testing.T) {
		require.NoError(t, f.AddBills([]domain.BillRecord{
			oneTimeRecord("near", "10.00", domain.Date(2026, time.February, 1)),
		}, 14))

		assert.Len(t, f.GetBillInstances(), 2)
	})
}

func TestSyncEnvelopesWithBills(t *testing.T) {
	f := newTestFund(t)
	require.NoError(t, f.AddBills([]domain.BillRecord{
		oneTimeRecord("a", "100.00", domain.Date(2026, time.March, 1)),
		oneTimeRecord("b", "50.00", domain.Date(2026, time.April, 1)),
	}, 14))

	// Simulate a prior pipeline run.
	envelopes := f.GetEnvelopes()
	envelopes[0].InitialAllocation = money("60.00")

	t.Run("surviving envelopes keep allocations and refresh instance data", func(t *testing.T) {
		newAmount := money("150.00")
		require.NoError(t, f.UpdateBill("a", domain.BillUpdate{AmountDue: &newAmount}))
		require.NoError(t, f.SyncEnvelopesWithBills())

		got := f.GetEnvelopes()
		require.Len(t, got, 2)
		assert.True(t, got[0].InitialAllocation.Equal(money("60.00")), "allocation survives sync")
		assert.True(t, got[0].Instance.AmountDue.Equal(newAmount), "instance data refreshed")
	})

	t.Run("sync twice is a no-op", func(t *testing.T) {
		before := f.GetEnvelopes()
		require.NoError(t, f.SyncEnvelopesWithBills())
		after := f.GetEnvelopes()
		require.Len(t, after, len(before))
		for i := range after {
			assert.Same(t, before[i], after[i])
		}
	})
}

func TestUpdateContributionDates(t *testing.T) {
	f := newTestFund(t)
	require.NoError(t, f.AddBills([]domain.BillRecord{
		oneTimeRecord("a", "100.00", domain.Date(2026, time.February, 1)),
	}, 14))

	require.NoError(t, f.UpdateContributionDates(14))

	env := f.GetEnvelopes()[0]
	// Jan 1, Jan 15, Jan 29 fall on or before the Feb 1 due date.
	require.Len(t, env.ContribDates, 3)
	assert.Equal(t, domain.Date(2026, time.January, 1), env.ContribDates[0])
	assert.Equal(t, f.StartDate(), env.StartContribDate)

	t.Run("covered envelope gets no dates", func(t *testing.T) {
		env.InitialAllocation = money("100.00")
		require.NoError(t, f.UpdateContributionDates(14))
		assert.Empty(t, env.ContribDates)
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		var verr *domain.ValidationError
		require.ErrorAs(t, f.UpdateContributionDates(0), &verr)
	})
}

func TestAllocateAndSchedule(t *testing.T) {
	f := newTestFund(t)
	require.NoError(t, f.AddBills([]domain.BillRecord{
		oneTimeRecord("a", "100.00", domain.Date(2026, time.February, 1)),
	}, 14))
	require.NoError(t, f.UpdateContributionDates(14))

	t.Run("unknown strategies fail", func(t *testing.T) {
		var uerr *domain.UnknownStrategyError
		require.ErrorAs(t, f.Allocate("bogus", allocation.Options{}), &uerr)
		require.ErrorAs(t, f.Schedule("bogus"), &uerr)
	})

	require.NoError(t, f.Allocate(allocation.Sorted, allocation.Options{}))
	require.NoError(t, f.Schedule(scheduling.Independent))

	env := f.GetEnvelopes()[0]
	assert.True(t, env.InitialAllocation.Equal(money("100.00")))
	assert.Equal(t, 0, env.Schedule.ContributionCount(), "fully funded needs no contributions")
}

func TestReport(t *testing.T) {
	f := newTestFund(t)
	require.NoError(t, f.AddBills([]domain.BillRecord{
		monthlyRecord("water", "120.00", domain.Date(2026, time.January, 15)),
	}, 14))
	require.NoError(t, f.UpdateContributionDates(14))
	require.NoError(t, f.Schedule(scheduling.Independent))

	t.Run("active only covers the tracked instance", func(t *testing.T) {
		report, err := f.Report(true)
		require.NoError(t, err)

		payoutDates := 0
		for _, entry := range report {
			if entry.Payouts.Count > 0 {
				payoutDates++
			}
		}
		assert.Equal(t, 1, payoutDates, "one payout for the upcoming instance")
	})

	t.Run("full report covers every occurrence in the window", func(t *testing.T) {
		report, err := f.Report(false)
		require.NoError(t, err)

		payoutDates := 0
		for _, entry := range report {
			if entry.Payouts.Count > 0 {
				payoutDates++
			}
		}
		assert.Equal(t, 6, payoutDates, "January through June occurrences")
	})

	t.Run("running balance reflects contributions and payouts", func(t *testing.T) {
		report, err := f.Report(true)
		require.NoError(t, err)

		due := domain.Date(2026, time.January, 15)
		entry, ok := report[due]
		require.True(t, ok)
		// Two contributions of 60 land on Jan 1 and Jan 15; the payout of
		// 120 lands on Jan 15: 1000 + 60 + 60 - 120.
		assert.True(t, entry.AccountBalance.Total.Equal(money("1000.00")),
			"got %s", entry.AccountBalance.Total)
	})
}
