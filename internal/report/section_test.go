package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfbarbieri/coffer/internal/fund/domain"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleReport() domain.Report {
	return domain.Report{
		day(1): {
			AccountBalance: domain.ReportSection{Total: dec("150")},
			Contributions: domain.ReportSection{
				Total: dec("50"), Count: 2,
				Bills: map[string]decimal.Decimal{"rent": dec("30"), "water": dec("20")},
			},
			Payouts: domain.ReportSection{Bills: map[string]decimal.Decimal{}},
		},
		day(15): {
			AccountBalance: domain.ReportSection{Total: dec("80")},
			Contributions: domain.ReportSection{
				Total: dec("30"), Count: 1,
				Bills: map[string]decimal.Decimal{"rent": dec("30")},
			},
			Payouts: domain.ReportSection{
				Total: dec("-100"), Count: 1,
				Bills: map[string]decimal.Decimal{"water": dec("-100")},
			},
		},
	}
}

func TestPivot(t *testing.T) {
	t.Run("rows ascend by date with a shared column set", func(t *testing.T) {
		table := Pivot(sampleReport(), Contributions)

		assert.Equal(t, []string{"rent", "water"}, table.BillIDs)
		require.Len(t, table.Rows, 2)
		assert.True(t, day(1).Equal(table.Rows[0].Date))
		assert.True(t, day(15).Equal(table.Rows[1].Date))
	})

	t.Run("missing cells are zero", func(t *testing.T) {
		table := Pivot(sampleReport(), Contributions)

		last := table.Rows[1]
		assert.True(t, last.ByBill["rent"].Equal(dec("30")))
		assert.True(t, last.ByBill["water"].IsZero())
	})

	t.Run("rows carry the running account balance", func(t *testing.T) {
		table := Pivot(sampleReport(), Payouts)

		assert.True(t, table.Rows[0].Balance.Equal(dec("150")))
		assert.True(t, table.Rows[1].Balance.Equal(dec("80")))
		assert.True(t, table.Rows[1].Total.Equal(dec("-100")))
	})

	t.Run("empty report pivots to an empty table", func(t *testing.T) {
		table := Pivot(domain.Report{}, Contributions)
		assert.Empty(t, table.BillIDs)
		assert.Empty(t, table.Rows)
	})
}

func TestSummarize(t *testing.T) {
	envs := []*domain.Envelope{
		{
			Instance:          domain.BillInstance{BillID: "b", Service: "B", AmountDue: dec("100"), DueDate: day(20)},
			InitialAllocation: dec("40"),
			Schedule: domain.Schedule{CashFlows: []domain.CashFlow{
				{Date: day(5), Amount: dec("30"), Kind: domain.Contribution},
				{Date: day(19), Amount: dec("30"), Kind: domain.Contribution},
				{Date: day(20), Amount: dec("-100"), Kind: domain.Payout},
			}},
		},
		{
			Instance: domain.BillInstance{BillID: "a", Service: "A", AmountDue: dec("50"), DueDate: day(20)},
			Schedule: domain.Schedule{},
		},
	}

	sums := Summarize(envs)
	require.Len(t, sums, 2)

	// Same due date: bill identifier breaks the tie.
	assert.Equal(t, "a", sums[0].BillID)
	assert.Equal(t, "b", sums[1].BillID)

	assert.True(t, sums[1].Contributions.Equal(dec("60")))
	assert.True(t, sums[1].Remaining.IsZero(), "allocation plus contributions cover the bill")
	assert.True(t, sums[0].Remaining.Equal(dec("50")), "unfunded bill remains fully outstanding")
}
