package scheduling

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfbarbieri/coffer/internal/fund/domain"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		s, err := Lookup(name)
		require.NoError(t, err)
		assert.NotNil(t, s)
	}

	_, err := Lookup("bogus")
	var uerr *domain.UnknownStrategyError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "scheduler", uerr.Kind)
}

func TestIndependent_SpreadsRemainderEvenly(t *testing.T) {
	due := domain.Date(2026, time.March, 10)
	env := &domain.Envelope{
		Instance: domain.BillInstance{BillID: "water", AmountDue: money("100.00"), DueDate: due},
		ContribDates: []time.Time{
			domain.Date(2026, time.January, 1),
			domain.Date(2026, time.January, 15),
			domain.Date(2026, time.January, 29),
		},
	}

	require.NoError(t, independentScheduler{}.Schedule([]*domain.Envelope{env}))

	flows := env.Schedule.CashFlows
	require.Len(t, flows, 4, "three contributions plus the payout")

	// 100/3 truncates to 33.33; the final contribution absorbs the cent.
	assert.True(t, flows[0].Amount.Equal(money("33.33")))
	assert.True(t, flows[1].Amount.Equal(money("33.33")))
	assert.True(t, flows[2].Amount.Equal(money("33.34")))
	assert.True(t, env.Schedule.TotalContributions().Equal(money("100.00")))

	payout := flows[3]
	assert.Equal(t, domain.Payout, payout.Kind)
	assert.True(t, payout.Amount.Equal(money("-100.00")))
	assert.Equal(t, due, payout.Date)
}

func TestIndependent_AllocationReducesContributions(t *testing.T) {
	env := &domain.Envelope{
		Instance: domain.BillInstance{
			BillID: "rent", AmountDue: money("200.00"),
			DueDate: domain.Date(2026, time.February, 1),
		},
		InitialAllocation: money("150.00"),
		ContribDates: []time.Time{
			domain.Date(2026, time.January, 1),
			domain.Date(2026, time.January, 15),
		},
	}

	require.NoError(t, independentScheduler{}.Schedule([]*domain.Envelope{env}))

	assert.True(t, env.Schedule.TotalContributions().Equal(money("50.00")))
	assert.Equal(t, 2, env.Schedule.ContributionCount())
}

func TestIndependent_FullyFundedSchedulesOnlyPayout(t *testing.T) {
	env := &domain.Envelope{
		Instance: domain.BillInstance{
			BillID: "insurance", AmountDue: money("300.00"),
			DueDate: domain.Date(2026, time.March, 10),
		},
		InitialAllocation: money("300.00"),
		ContribDates:      []time.Time{domain.Date(2026, time.January, 1)},
	}

	require.NoError(t, independentScheduler{}.Schedule([]*domain.Envelope{env}))

	require.Len(t, env.Schedule.CashFlows, 1)
	assert.Equal(t, domain.Payout, env.Schedule.CashFlows[0].Kind)
}

func TestIndependent_OverAllocationNeverGoesNegative(t *testing.T) {
	env := &domain.Envelope{
		Instance: domain.BillInstance{
			BillID: "gym", AmountDue: money("40.00"),
			DueDate: domain.Date(2026, time.March, 10),
		},
		InitialAllocation: money("60.00"),
		ContribDates:      []time.Time{domain.Date(2026, time.January, 1)},
	}

	require.NoError(t, independentScheduler{}.Schedule([]*domain.Envelope{env}))

	assert.Equal(t, 0, env.Schedule.ContributionCount())
}

func TestIndependent_NoContributionDatesYieldsOnlyPayout(t *testing.T) {
	env := &domain.Envelope{
		Instance: domain.BillInstance{
			BillID: "tax", AmountDue: money("500.00"),
			DueDate: domain.Date(2026, time.April, 15),
		},
	}

	require.NoError(t, independentScheduler{}.Schedule([]*domain.Envelope{env}))

	require.Len(t, env.Schedule.CashFlows, 1)
	assert.Equal(t, domain.Payout, env.Schedule.CashFlows[0].Kind)
}

func TestIndependent_ReschedulingReplacesThePlan(t *testing.T) {
	env := &domain.Envelope{
		Instance: domain.BillInstance{
			BillID: "water", AmountDue: money("100.00"),
			DueDate: domain.Date(2026, time.March, 10),
		},
		ContribDates: []time.Time{domain.Date(2026, time.January, 1)},
	}

	sched := independentScheduler{}
	require.NoError(t, sched.Schedule([]*domain.Envelope{env}))
	first := len(env.Schedule.CashFlows)

	require.NoError(t, sched.Schedule([]*domain.Envelope{env}))
	assert.Equal(t, first, len(env.Schedule.CashFlows), "second run must not accrete flows")
}
