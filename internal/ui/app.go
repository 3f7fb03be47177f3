// Package ui implements the terminal front end: a dashboard over the
// workflow orchestrator with panels for bills, strategies, and the
// generated plan, plus modal forms for fund and bill entry.
package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/gfbarbieri/coffer/internal/config"
	"github.com/gfbarbieri/coffer/internal/fund/domain"
	"github.com/gfbarbieri/coffer/internal/log"
	"github.com/gfbarbieri/coffer/internal/session"
	"github.com/gfbarbieri/coffer/internal/ui/billform"
	"github.com/gfbarbieri/coffer/internal/ui/billtable"
	"github.com/gfbarbieri/coffer/internal/ui/fundform"
	"github.com/gfbarbieri/coffer/internal/ui/helpview"
	"github.com/gfbarbieri/coffer/internal/ui/nofund"
	"github.com/gfbarbieri/coffer/internal/ui/reportview"
	"github.com/gfbarbieri/coffer/internal/ui/strategypanel"
	"github.com/gfbarbieri/coffer/internal/ui/styles"
	"github.com/gfbarbieri/coffer/internal/ui/textprompt"
	"github.com/gfbarbieri/coffer/internal/workflow"
)

type view int

const (
	viewNoFund view = iota
	viewDashboard
	viewHelp
)

type overlay int

const (
	overlayNone overlay = iota
	overlayFundForm
	overlayBillForm
	overlayImport
	overlayConfirmDelete
)

type panel int

const (
	panelBills panel = iota
	panelStrategy
	panelReport
	panelCount
)

// Model is the root application model.
type Model struct {
	cfg  config.Config
	orch *workflow.Orchestrator
	repo session.Repository // nil when persistence is off

	view    view
	overlay overlay
	focus   panel

	noFund   nofund.Model
	fundForm fundform.Model
	billForm billform.Model
	bills    billtable.Model
	strategy strategypanel.Model
	report   reportview.Model
	help     helpview.Model
	prompt   textprompt.Model

	watcher       *importWatcher
	lastSnap      *session.Snapshot
	pendingDelete string

	width  int
	height int
	status string
}

// New creates the root model. The orchestrator may already hold a
// restored session; the initial view follows it.
func New(cfg config.Config, orch *workflow.Orchestrator, repo session.Repository) Model {
	m := Model{
		cfg:      cfg,
		orch:     orch,
		repo:     repo,
		noFund:   nofund.New(),
		bills:    billtable.New(cfg.UI.CurrencySymbol),
		strategy: strategypanel.New(),
		report:   reportview.New(cfg.UI.CurrencySymbol),
		help:     helpview.New(),
	}
	if orch.State().HasFund() {
		m.view = viewDashboard
	}
	if cfg.Import.WatchDir != "" {
		w, err := newImportWatcher(cfg.Import.WatchDir, cfg.Import.WatchDebounce)
		if err != nil {
			log.ErrorErr(log.CatUI, "Failed to watch import directory", err, "dir", cfg.Import.WatchDir)
		} else {
			m.watcher = w
		}
	}
	m = m.sync()
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return m.watcher.wait()
	}
	return nil
}

// sync mirrors orchestrator state into the panels.
func (m Model) sync() Model {
	state := m.orch.State()
	if state.HasFund() {
		m.bills = m.bills.SetBills(state.Fund.GetBills())
		m.report = m.report.SetReport(state.LastReport, state.Fund.GetEnvelopes())
	}
	m.strategy = m.strategy.Sync(state)
	return m
}

// persist snapshots the session when persistence is on. Identity fields
// carry over so repeat saves update one row instead of accreting.
func (m Model) persist() Model {
	if m.repo == nil || !m.cfg.Persist || !m.orch.State().HasFund() {
		return m
	}
	snap, err := session.Capture(m.orch, "")
	if err != nil {
		log.ErrorErr(log.CatUI, "Failed to capture session", err)
		return m
	}
	if m.lastSnap != nil {
		snap.ID = m.lastSnap.ID
		snap.GUID = m.lastSnap.GUID
		snap.Name = m.lastSnap.Name
		snap.CreatedAt = m.lastSnap.CreatedAt
	}
	if err := m.repo.Save(snap); err != nil {
		log.ErrorErr(log.CatUI, "Failed to save session", err)
		m.status = styles.ErrorStyle.Render("save failed: " + err.Error())
		return m
	}
	m.lastSnap = snap
	return m
}

// AdoptSnapshot ties subsequent saves to an existing snapshot row,
// used after restoring a session at startup.
func (m Model) AdoptSnapshot(snap *session.Snapshot) Model {
	m.lastSnap = snap
	return m
}

func (m Model) fail(err error) Model {
	m.status = styles.ErrorStyle.Render(err.Error())
	return m
}

func (m Model) note(msg string) Model {
	m.status = styles.MutedStyle.Render(msg)
	return m
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case billFileDetectedMsg:
		next := m
		if m.orch.State().HasFund() {
			if err := m.orch.AddBillsFromFile(msg.Path); err != nil {
				next = next.fail(fmt.Errorf("import %s: %w", msg.Path, err))
			} else {
				next = next.note("imported " + msg.Path).sync().persist()
			}
		}
		return next, next.watcher.wait()

	case watcherClosedMsg:
		return m, nil
	}

	switch m.view {
	case viewNoFund:
		return m.updateNoFund(msg)
	case viewHelp:
		return m.updateHelp(msg)
	default:
		return m.updateDashboard(msg)
	}
}

func (m Model) resize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.noFund = m.noFund.SetSize(msg.Width, msg.Height)
	m.help = m.help.SetSize(msg.Width, msg.Height-2)

	inner := msg.Width - 4
	panelBody := (msg.Height - 8) / 2
	if panelBody < 4 {
		panelBody = 4
	}
	m.bills = m.bills.SetSize(inner, panelBody)
	m.strategy = m.strategy.SetSize(inner)
	m.report = m.report.SetSize(inner, panelBody)
	return m
}

func (m Model) updateNoFund(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.overlay == overlayFundForm {
		return m.updateFundForm(msg)
	}

	switch msg.(type) {
	case nofund.CreateFundMsg:
		m.overlay = overlayFundForm
		m.fundForm = fundform.New()
		return m, m.fundForm.Init()
	}

	var cmd tea.Cmd
	m.noFund, cmd = m.noFund.Update(msg)
	return m, cmd
}

func (m Model) updateHelp(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(helpview.CloseMsg); ok {
		m.view = viewDashboard
		if !m.orch.State().HasFund() {
			m.view = viewNoFund
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.help, cmd = m.help.Update(msg)
	return m, cmd
}

func (m Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.overlay {
	case overlayFundForm:
		return m.updateFundForm(msg)
	case overlayBillForm:
		return m.updateBillForm(msg)
	case overlayImport:
		return m.updateImportPrompt(msg)
	case overlayConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c":
			m.shutdown()
			return m, tea.Quit
		case "?":
			m.view = viewHelp
			return m, nil
		case "tab":
			m.focus = (m.focus + 1) % panelCount
			return m.applyFocus(), nil
		case "a":
			m.overlay = overlayBillForm
			m.billForm = billform.New()
			return m, m.billForm.Init()
		case "f":
			state := m.orch.State()
			m.overlay = overlayFundForm
			m.fundForm = fundform.NewUpdate(
				state.Fund.StartDate(), state.Fund.EndDate(), state.Fund.Balance())
			return m, m.fundForm.Init()
		case "i":
			m.overlay = overlayImport
			m.prompt = textprompt.New("Import bills", "path/to/bills.csv")
			return m, m.prompt.Init()
		case "g":
			return m.generate()
		case "s":
			next := m.persist()
			if next.status == "" {
				next = next.note("session saved")
			}
			return next, nil
		}

	case billtable.EditMsg:
		bill, err := m.orch.State().Fund.GetBill(msg.BillID)
		if err != nil {
			return m.fail(err), nil
		}
		m.overlay = overlayBillForm
		m.billForm = billform.NewEdit(bill)
		return m, m.billForm.Init()

	case billtable.DeleteMsg:
		m.overlay = overlayConfirmDelete
		m.pendingDelete = msg.BillID
		return m, nil

	case billtable.SelectMsg:
		m.orch.State().SelectedBillID = msg.BillID
		return m, nil

	case strategypanel.SetAllocationMsg:
		m.orch.SetAllocationStrategy(msg.Strategy)
		return m.sync().persist(), nil

	case strategypanel.SetMethodMsg:
		m.orch.SetProportionalMethod(msg.Method)
		return m.sync().persist(), nil

	case strategypanel.SetSchedulerMsg:
		m.orch.SetSchedulerStrategy(msg.Scheduler)
		return m.sync().persist(), nil

	case strategypanel.SetIntervalMsg:
		if err := m.orch.SetContributionInterval(msg.Days); err != nil {
			return m.fail(err), nil
		}
		return m.sync().persist(), nil

	case strategypanel.GenerateMsg:
		return m.generate()
	}

	var cmd tea.Cmd
	switch m.focus {
	case panelBills:
		m.bills, cmd = m.bills.Update(msg)
	case panelStrategy:
		m.strategy, cmd = m.strategy.Update(msg)
	case panelReport:
		m.report, cmd = m.report.Update(msg)
	}
	return m, cmd
}

func (m Model) applyFocus() Model {
	m.bills = m.bills.SetFocused(m.focus == panelBills)
	m.strategy = m.strategy.SetFocused(m.focus == panelStrategy)
	m.report = m.report.SetFocused(m.focus == panelReport)
	return m
}

func (m Model) generate() (Model, tea.Cmd) {
	if err := m.orch.Generate(context.Background()); err != nil {
		return m.fail(err), nil
	}
	return m.note("plan generated").sync().persist(), nil
}

func (m Model) updateFundForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fundform.SubmitMsg:
		var err error
		if msg.Updating {
			err = m.orch.UpdateFund(msg.StartDate, msg.EndDate, msg.Balance)
		} else {
			err = m.orch.CreateFund(msg.StartDate, msg.EndDate, msg.Balance)
		}
		if err != nil {
			return m.fail(err), nil
		}
		m.overlay = overlayNone
		m.view = viewDashboard
		m = m.applyDefaults()
		return m.sync().persist(), nil

	case fundform.CancelMsg:
		m.overlay = overlayNone
		if !m.orch.State().HasFund() {
			m.view = viewNoFund
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.fundForm, cmd = m.fundForm.Update(msg)
	return m, cmd
}

// applyDefaults seeds configured strategy defaults into a fresh session.
func (m Model) applyDefaults() Model {
	d := m.cfg.Defaults
	state := m.orch.State()
	if d.AllocationStrategy != "" && state.AllocationStrategy == "" {
		if s, err := workflow.ParseAllocationStrategy(d.AllocationStrategy); err == nil {
			m.orch.SetAllocationStrategy(s)
		}
	}
	if d.ProportionalMethod != "" && state.ProportionalMethod == "" &&
		state.AllocationStrategy == workflow.AllocationProportional {
		if p, err := workflow.ParseProportionalMethod(d.ProportionalMethod); err == nil {
			m.orch.SetProportionalMethod(p)
		}
	}
	if d.SchedulerStrategy != "" && state.SchedulerStrategy == "" {
		if s, err := workflow.ParseSchedulerStrategy(d.SchedulerStrategy); err == nil {
			m.orch.SetSchedulerStrategy(s)
		}
	}
	return m
}

func (m Model) updateBillForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case billform.SubmitMsg:
		if msg.Editing {
			upd, err := msg.Record.ToUpdate()
			if err != nil {
				return m.fail(err), nil
			}
			if err := m.orch.UpdateBill(msg.Record.BillID, upd); err != nil {
				return m.fail(err), nil
			}
		} else {
			if err := m.orch.AddBills([]domain.BillRecord{msg.Record}); err != nil {
				return m.fail(err), nil
			}
		}
		m.overlay = overlayNone
		return m.sync().persist(), nil

	case billform.CancelMsg:
		m.overlay = overlayNone
		return m, nil
	}

	var cmd tea.Cmd
	m.billForm, cmd = m.billForm.Update(msg)
	return m, cmd
}

func (m Model) updateImportPrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case textprompt.SubmitMsg:
		m.overlay = overlayNone
		if err := m.orch.AddBillsFromFile(msg.Value); err != nil {
			return m.fail(err), nil
		}
		return m.note("imported " + msg.Value).sync().persist(), nil

	case textprompt.CancelMsg:
		m.overlay = overlayNone
		return m, nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "enter":
		id := m.pendingDelete
		m.overlay = overlayNone
		m.pendingDelete = ""
		if err := m.orch.DeleteBills([]string{id}); err != nil {
			return m.fail(err), nil
		}
		return m.note("deleted " + id).sync().persist(), nil
	case "n", "esc":
		m.overlay = overlayNone
		m.pendingDelete = ""
		return m, nil
	}
	return m, nil
}

func (m *Model) shutdown() {
	if m.watcher != nil {
		m.watcher.close()
	}
}

// View renders the application.
func (m Model) View() string {
	switch m.view {
	case viewNoFund:
		if m.overlay == overlayFundForm {
			return m.centerOverlay(m.fundForm.View())
		}
		return m.noFund.View()
	case viewHelp:
		return m.help.View()
	}

	switch m.overlay {
	case overlayFundForm:
		return m.centerOverlay(m.fundForm.View())
	case overlayBillForm:
		return m.centerOverlay(m.billForm.View())
	case overlayImport:
		return m.centerOverlay(m.prompt.View())
	case overlayConfirmDelete:
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ErrorColor).
			Padding(1, 2).
			Render("Delete bill " + m.pendingDelete + "?\n\n" +
				styles.MutedStyle.Render("y confirm · n cancel"))
		return m.centerOverlay(box)
	}

	return m.dashboardView()
}

func (m Model) centerOverlay(content string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func (m Model) dashboardView() string {
	state := m.orch.State()

	header := styles.TitleStyle.Render("coffer") + "  " +
		styles.MutedStyle.Render(fmt.Sprintf("%s → %s · balance %s · %s",
			state.Fund.StartDate().Format("2006-01-02"),
			state.Fund.EndDate().Format("2006-01-02"),
			styles.FormatMoney(m.cfg.UI.CurrencySymbol, state.Fund.Balance()),
			state.Phase()))

	billsPanel := styles.PanelStyle(m.focus == panelBills).
		Width(m.width - 2).
		Render(styles.TitleStyle.Render("Bills") + "\n" + m.bills.View())

	strategyPanel := styles.PanelStyle(m.focus == panelStrategy).
		Width(m.width - 2).
		Render(styles.TitleStyle.Render("Strategies") + "\n" + m.strategy.View())

	reportPanel := styles.PanelStyle(m.focus == panelReport).
		Width(m.width - 2).
		Render(styles.TitleStyle.Render("Plan") + "\n" + m.report.View())

	parts := []string{header, billsPanel, strategyPanel, reportPanel}
	if m.cfg.UI.ShowStatusBar {
		bar := m.status
		if bar == "" {
			bar = styles.MutedStyle.Render("a add · e edit · d delete · i import · f fund · g generate · s save · ? help · q quit")
		}
		if m.width > 0 {
			bar = truncate.StringWithTail(bar, uint(m.width), "…")
		}
		parts = append(parts, styles.StatusBarStyle.Render(bar))
	}
	return strings.Join(parts, "\n")
}
