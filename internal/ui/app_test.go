package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfbarbieri/coffer/internal/config"
	"github.com/gfbarbieri/coffer/internal/fund"
	"github.com/gfbarbieri/coffer/internal/fund/domain"
	"github.com/gfbarbieri/coffer/internal/ui/billform"
	"github.com/gfbarbieri/coffer/internal/ui/billtable"
	"github.com/gfbarbieri/coffer/internal/ui/fundform"
	"github.com/gfbarbieri/coffer/internal/ui/helpview"
	"github.com/gfbarbieri/coffer/internal/ui/nofund"
	"github.com/gfbarbieri/coffer/internal/ui/strategypanel"
	"github.com/gfbarbieri/coffer/internal/workflow"
)

func testFactory(startDate, endDate time.Time, balance decimal.Decimal) (workflow.FundStore, error) {
	return fund.New(startDate, endDate, balance)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestApp(t *testing.T) Model {
	t.Helper()
	cfg := config.Defaults()
	cfg.Persist = false
	m := New(cfg, workflow.NewOrchestrator(testFactory), nil)
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return sized.(Model)
}

// newFundedApp creates an app with a fund and one bill already in place.
func newFundedApp(t *testing.T) Model {
	t.Helper()
	m := newTestApp(t)
	updated, _ := m.Update(fundform.SubmitMsg{
		StartDate: date(2026, time.January, 1),
		EndDate:   date(2026, time.June, 30),
		Balance:   decimal.RequireFromString("1000.00"),
	})
	m = updated.(Model)

	due := date(2026, time.March, 10)
	updated, _ = m.Update(billform.SubmitMsg{
		Record: domain.BillRecord{
			BillID:    "insurance",
			Service:   "Car insurance",
			AmountDue: "300.00",
			DueDate:   &due,
		},
	})
	return updated.(Model)
}

func TestApp_StartsWithoutFund(t *testing.T) {
	m := newTestApp(t)

	assert.Equal(t, viewNoFund, m.view)
	assert.Contains(t, m.View(), "No sinking fund yet")
}

func TestApp_CreateFundFlow(t *testing.T) {
	m := newTestApp(t)

	// The empty state hands off to the fund form.
	updated, _ := m.Update(nofund.CreateFundMsg{})
	m = updated.(Model)
	assert.Equal(t, overlayFundForm, m.overlay)

	updated, _ = m.Update(fundform.SubmitMsg{
		StartDate: date(2026, time.January, 1),
		EndDate:   date(2026, time.June, 30),
		Balance:   decimal.RequireFromString("500"),
	})
	m = updated.(Model)

	assert.Equal(t, viewDashboard, m.view)
	assert.Equal(t, overlayNone, m.overlay)
	require.True(t, m.orch.State().HasFund())
	assert.Contains(t, m.View(), "2026-01-01")
}

func TestApp_CreateFundValidationStaysInForm(t *testing.T) {
	m := newTestApp(t)
	updated, _ := m.Update(nofund.CreateFundMsg{})
	m = updated.(Model)

	// End before start is rejected; the form stays up with the error.
	updated, _ = m.Update(fundform.SubmitMsg{
		StartDate: date(2026, time.June, 30),
		EndDate:   date(2026, time.January, 1),
		Balance:   decimal.Zero,
	})
	m = updated.(Model)

	assert.Equal(t, overlayFundForm, m.overlay)
	assert.False(t, m.orch.State().HasFund())
	assert.Contains(t, m.status, "end_date")
}

func TestApp_FundFormCancelReturnsToEmptyState(t *testing.T) {
	m := newTestApp(t)
	updated, _ := m.Update(nofund.CreateFundMsg{})
	m = updated.(Model)

	updated, _ = m.Update(fundform.CancelMsg{})
	m = updated.(Model)

	assert.Equal(t, viewNoFund, m.view)
	assert.Equal(t, overlayNone, m.overlay)
}

func TestApp_ConfigDefaultsSeedStrategies(t *testing.T) {
	m := newTestApp(t)
	m.cfg.Defaults.AllocationStrategy = "sorted"
	m.cfg.Defaults.SchedulerStrategy = "independent"

	updated, _ := m.Update(fundform.SubmitMsg{
		StartDate: date(2026, time.January, 1),
		EndDate:   date(2026, time.June, 30),
		Balance:   decimal.RequireFromString("100"),
	})
	m = updated.(Model)

	assert.Equal(t, workflow.AllocationSorted, m.orch.State().AllocationStrategy)
	assert.Equal(t, workflow.SchedulerIndependent, m.orch.State().SchedulerStrategy)
}

func TestApp_AddBill(t *testing.T) {
	m := newFundedApp(t)

	bills := m.orch.State().Fund.GetBills()
	require.Len(t, bills, 1)
	assert.Equal(t, "insurance", bills[0].ID)
	assert.Contains(t, m.View(), "Car insurance")
}

func TestApp_AddDuplicateBillShowsError(t *testing.T) {
	m := newFundedApp(t)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	m = updated.(Model)
	require.Equal(t, overlayBillForm, m.overlay)

	due := date(2026, time.April, 1)
	updated, _ = m.Update(billform.SubmitMsg{
		Record: domain.BillRecord{
			BillID:    "insurance",
			Service:   "Duplicate",
			AmountDue: "10.00",
			DueDate:   &due,
		},
	})
	m = updated.(Model)

	assert.NotEmpty(t, m.status)
	assert.Len(t, m.orch.State().Fund.GetBills(), 1)
}

func TestApp_EditBillThroughTable(t *testing.T) {
	m := newFundedApp(t)

	updated, _ := m.Update(billtable.EditMsg{BillID: "insurance"})
	m = updated.(Model)
	require.Equal(t, overlayBillForm, m.overlay)

	due := date(2026, time.March, 10)
	updated, _ = m.Update(billform.SubmitMsg{
		Record: domain.BillRecord{
			BillID:    "insurance",
			Service:   "Car insurance",
			AmountDue: "325.00",
			DueDate:   &due,
		},
		Editing: true,
	})
	m = updated.(Model)

	bill, err := m.orch.State().Fund.GetBill("insurance")
	require.NoError(t, err)
	assert.Equal(t, "325.00", bill.AmountDue.StringFixed(2))
}

func TestApp_DeleteBillRequiresConfirmation(t *testing.T) {
	m := newFundedApp(t)

	updated, _ := m.Update(billtable.DeleteMsg{BillID: "insurance"})
	m = updated.(Model)
	require.Equal(t, overlayConfirmDelete, m.overlay)
	assert.Contains(t, m.View(), "insurance")

	t.Run("n keeps the bill", func(t *testing.T) {
		declined, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
		dm := declined.(Model)
		assert.Equal(t, overlayNone, dm.overlay)
		assert.Len(t, dm.orch.State().Fund.GetBills(), 1)
	})

	t.Run("y deletes the bill", func(t *testing.T) {
		confirmed, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
		cm := confirmed.(Model)
		assert.Equal(t, overlayNone, cm.overlay)
		assert.Empty(t, cm.orch.State().Fund.GetBills())
	})
}

func TestApp_GenerateFullPipeline(t *testing.T) {
	m := newFundedApp(t)

	updated, _ := m.Update(strategypanel.SetAllocationMsg{Strategy: workflow.AllocationSorted})
	m = updated.(Model)
	updated, _ = m.Update(strategypanel.SetSchedulerMsg{Scheduler: workflow.SchedulerIndependent})
	m = updated.(Model)

	updated, _ = m.Update(strategypanel.GenerateMsg{})
	m = updated.(Model)

	require.NotNil(t, m.orch.State().LastReport)
	assert.Equal(t, workflow.PhaseReported, m.orch.State().Phase())
	assert.Contains(t, m.View(), "reported")
}

func TestApp_GenerateWithoutStrategiesShowsError(t *testing.T) {
	m := newFundedApp(t)

	updated, _ := m.Update(strategypanel.GenerateMsg{})
	m = updated.(Model)

	assert.Nil(t, m.orch.State().LastReport)
	assert.NotEmpty(t, m.status)
}

func TestApp_IntervalValidationSurfaces(t *testing.T) {
	m := newFundedApp(t)

	updated, _ := m.Update(strategypanel.SetIntervalMsg{Days: 0})
	m = updated.(Model)

	assert.Contains(t, m.status, "contribution_interval")
}

func TestApp_HelpToggles(t *testing.T) {
	m := newFundedApp(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	m = updated.(Model)
	assert.Equal(t, viewHelp, m.view)

	updated, _ = m.Update(helpview.CloseMsg{})
	m = updated.(Model)
	assert.Equal(t, viewDashboard, m.view)
}

func TestApp_TabCyclesFocus(t *testing.T) {
	m := newFundedApp(t)
	require.Equal(t, panelBills, m.focus)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	assert.Equal(t, panelStrategy, m.focus)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	assert.Equal(t, panelReport, m.focus)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	assert.Equal(t, panelBills, m.focus)
}

func TestApp_QuitReturnsQuitCmd(t *testing.T) {
	m := newFundedApp(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit, "expected tea.QuitMsg")
}

func TestApp_SelectMsgTracksSelection(t *testing.T) {
	m := newFundedApp(t)

	updated, _ := m.Update(billtable.SelectMsg{BillID: "insurance"})
	m = updated.(Model)

	assert.Equal(t, "insurance", m.orch.State().SelectedBillID)
}

func TestApp_StatusBarShowsKeyHints(t *testing.T) {
	m := newFundedApp(t)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "g generate")
	assert.Contains(t, view, "? help")
}

// TestApp_FullProgram drives the composed program end to end through a
// terminal emulator: empty state, quit.
func TestApp_FullProgram(t *testing.T) {
	cfg := config.Defaults()
	cfg.Persist = false
	m := New(cfg, workflow.NewOrchestrator(testFactory), nil)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return strings.Contains(string(bts), "No sinking fund yet")
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))
}
