// Package strategypanel provides the strategy selection panel: allocation
// strategy, proportional method, scheduler, and contribution interval.
package strategypanel

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gfbarbieri/coffer/internal/ui/styles"
	"github.com/gfbarbieri/coffer/internal/workflow"
)

// SetAllocationMsg reports a new allocation strategy selection.
type SetAllocationMsg struct {
	Strategy workflow.AllocationStrategy
}

// SetMethodMsg reports a new proportional method selection.
type SetMethodMsg struct {
	Method workflow.ProportionalMethod
}

// SetSchedulerMsg reports a new scheduler selection.
type SetSchedulerMsg struct {
	Scheduler workflow.SchedulerStrategy
}

// SetIntervalMsg reports a new contribution interval in days.
type SetIntervalMsg struct {
	Days int
}

// GenerateMsg asks the orchestrator to run the pipeline.
type GenerateMsg struct{}

const (
	rowAllocation = iota
	rowMethod
	rowScheduler
	rowInterval
	rowCount
)

var (
	allocationChoices = []workflow.AllocationStrategy{
		workflow.AllocationSorted,
		workflow.AllocationProportional,
		workflow.AllocationNone,
	}
	methodChoices = []workflow.ProportionalMethod{
		workflow.MethodProportional,
		workflow.MethodUrgency,
		workflow.MethodEqual,
		workflow.MethodZero,
	}
	schedulerChoices = []workflow.SchedulerStrategy{
		workflow.SchedulerIndependent,
	}
)

// Model holds the strategy panel state. Values mirror the workflow state
// and are kept in sync by the parent after each orchestrator call.
type Model struct {
	allocation workflow.AllocationStrategy
	method     workflow.ProportionalMethod
	scheduler  workflow.SchedulerStrategy
	interval   int

	cursor  int
	focused bool
	width   int
}

// New creates the panel with nothing selected and the default interval.
func New() Model {
	return Model{interval: workflow.DefaultContributionInterval}
}

// Sync mirrors the authoritative workflow state into the panel.
func (m Model) Sync(s *workflow.State) Model {
	m.allocation = s.AllocationStrategy
	m.method = s.ProportionalMethod
	m.scheduler = s.SchedulerStrategy
	m.interval = s.ContributionInterval
	if m.cursor == rowMethod && !m.methodRowActive() {
		m.cursor = rowScheduler
	}
	return m
}

// SetFocused toggles keyboard focus.
func (m Model) SetFocused(focused bool) Model {
	m.focused = focused
	return m
}

// SetSize updates the panel width.
func (m Model) SetSize(width int) Model {
	m.width = width
	return m
}

// methodRowActive reports whether the proportional method row applies.
func (m Model) methodRowActive() bool {
	return m.allocation == workflow.AllocationProportional
}

func (m Model) nextRow(dir int) int {
	row := m.cursor
	for {
		row = (row + dir + rowCount) % rowCount
		if row != rowMethod || m.methodRowActive() {
			return row
		}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "j", "down":
		m.cursor = m.nextRow(1)
	case "k", "up":
		m.cursor = m.nextRow(-1)
	case "l", "right", "enter", " ":
		return m.cycle(1)
	case "h", "left":
		return m.cycle(-1)
	case "g":
		return m, func() tea.Msg { return GenerateMsg{} }
	}
	return m, nil
}

// cycle advances the value under the cursor and emits the change.
func (m Model) cycle(dir int) (Model, tea.Cmd) {
	switch m.cursor {
	case rowAllocation:
		next := cycleChoice(allocationChoices, m.allocation, dir)
		return m, func() tea.Msg { return SetAllocationMsg{Strategy: next} }
	case rowMethod:
		next := cycleChoice(methodChoices, m.method, dir)
		return m, func() tea.Msg { return SetMethodMsg{Method: next} }
	case rowScheduler:
		next := cycleChoice(schedulerChoices, m.scheduler, dir)
		return m, func() tea.Msg { return SetSchedulerMsg{Scheduler: next} }
	case rowInterval:
		days := m.interval + dir
		if days < 1 {
			days = 1
		}
		return m, func() tea.Msg { return SetIntervalMsg{Days: days} }
	}
	return m, nil
}

// cycleChoice steps through choices, starting from unset to the first.
func cycleChoice[T comparable](choices []T, current T, dir int) T {
	for i, c := range choices {
		if c == current {
			return choices[(i+dir+len(choices))%len(choices)]
		}
	}
	return choices[0]
}

func display[T ~string](v T) string {
	if v == "" {
		return "(not set)"
	}
	return string(v)
}

// View renders the panel.
func (m Model) View() string {
	rows := [rowCount][2]string{
		{"Allocation", display(m.allocation)},
		{"Method", display(m.method)},
		{"Scheduler", display(m.scheduler)},
		{"Interval", strconv.Itoa(m.interval) + " days"},
	}

	var b strings.Builder
	for row := 0; row < rowCount; row++ {
		if row == rowMethod && !m.methodRowActive() {
			continue
		}
		gutter := "  "
		if m.focused && row == m.cursor {
			gutter = styles.SelectionIndicatorStyle.Render("> ")
		}
		label := styles.MutedStyle.Render(styles.PadRight(rows[row][0], 12))
		b.WriteString(gutter + label + rows[row][1])
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.MutedStyle.Render("h/l change · g generate"))
	return b.String()
}
