// Package statsui provides the Bubble Tea history browser.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/cleanse369/internal/catalog"
	"github.com/verte-zerg/cleanse369/internal/model"
	"github.com/verte-zerg/cleanse369/internal/stats"
)

const (
	tabCycles = iota
	tabDays
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea history browser.
type Model struct {
	ctx    context.Context
	lister stats.CycleLister
	filter model.CycleFilter
	// program narrows the listing to one catalog key; empty means all.
	program string

	entries []stats.HistoryEntry
	errMsg  string

	tabs      []string
	activeTab int
	cycles    table.Model
	days      viewport.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a history browser for the user named in f.
func NewModel(ctx context.Context, lister stats.CycleLister, f model.CycleFilter) *Model {
	m := &Model{
		ctx:    ctx,
		lister: lister,
		filter: f,
		tabs:   []string{"Cycles", "Days"},
		cycles: buildCycleTable(nil, 0, 1),
		days:   viewport.New(0, 0),
	}
	m.initInputs()
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderDays()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "enter":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startFilter()
		case "g", "home":
			if m.activeTab == tabCycles {
				m.cycles.GotoTop()
				m.renderDays()
			} else {
				m.days.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabCycles {
				m.cycles.GotoBottom()
				m.renderDays()
			} else {
				m.days.GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if m.activeTab == tabCycles {
				m.cycles, cmd = m.cycles.Update(msg)
				m.renderDays()
				return m, cmd
			}
			m.days, cmd = m.days.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Selected returns the highlighted cycle, if any.
func (m *Model) Selected() (stats.HistoryEntry, bool) {
	idx := m.cycles.Cursor()
	if idx < 0 || idx >= len(m.entries) {
		return stats.HistoryEntry{}, false
	}
	return m.entries[idx], true
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Program: "),
		newFilterInput("Last: "),
		newFilterInput("Finished only (y/n): "),
	}
	m.setInputsFromFilter()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromFilter() {
	m.filterInputs[0].SetValue(m.program)
	if m.filter.Last > 0 {
		m.filterInputs[1].SetValue(strconv.Itoa(m.filter.Last))
	} else {
		m.filterInputs[1].SetValue("")
	}
	if m.filter.Completed != nil && *m.filter.Completed {
		m.filterInputs[2].SetValue("y")
	} else {
		m.filterInputs[2].SetValue("")
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.days.Width = m.width
	m.days.Height = bodyHeight
	m.cycles.SetWidth(m.width)
	m.cycles.SetHeight(maxInt(1, bodyHeight-1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabCycles {
		m.cycles.Focus()
	} else {
		m.cycles.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	program := m.program
	if program == "" {
		program = "any"
	}
	last := "all"
	if m.filter.Last > 0 {
		last = strconv.Itoa(m.filter.Last)
	}
	finished := "no"
	if m.filter.Completed != nil && *m.filter.Completed {
		finished = "yes"
	}
	summary := fmt.Sprintf("User: %s  program=%s  last=%s  finished-only=%s", m.filter.UserID, program, last, finished)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := headerStyle.Render("Nav: left/right  Select: up/down  Days: enter  Filter: /  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Filter (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabCycles {
		if len(m.entries) == 0 {
			return fitLines("No cycles found.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.cycles.View()), m.width, height)
	}
	return fitLines(m.days.View(), m.width, height)
}

func (m *Model) refresh() {
	entries, err := stats.BuildHistory(m.ctx, m.lister, m.filter)
	if err != nil {
		m.errMsg = err.Error()
		m.entries = nil
		m.cycles.SetRows(nil)
		m.days.SetContent("Failed to load history.")
		return
	}
	m.errMsg = ""
	m.entries = filterProgram(entries, m.program)
	m.cycles.SetRows(cycleRows(m.entries))
	m.cycles.GotoTop()
	m.renderDays()
}

func (m *Model) renderDays() {
	if m.errMsg != "" {
		return
	}
	e, ok := m.Selected()
	if !ok {
		m.days.SetContent("No cycle selected.")
		return
	}
	if e.State == nil {
		m.days.SetContent(fmt.Sprintf("Program %q is no longer available.", e.Row.ProgramKey))
		return
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s (started %s) · %d%% (%d/%d)\n\n", e.Label, e.Row.StartISO, e.Percent, e.Done, e.Total)
	if err := stats.RenderTallies(&buf, e.State, 0, false); err != nil {
		m.days.SetContent(fmt.Sprintf("Failed to render days: %v", err))
		return
	}
	m.days.SetContent(strings.TrimRight(buf.String(), "\n"))
}

func filterProgram(entries []stats.HistoryEntry, program string) []stats.HistoryEntry {
	if program == "" {
		return entries
	}
	out := entries[:0:0]
	for _, e := range entries {
		if e.Row.ProgramKey == program {
			out = append(out, e)
		}
	}
	return out
}

func cycleRows(entries []stats.HistoryEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		status := "in progress"
		if e.Row.IsCompleted {
			status = "finished"
		}
		rows = append(rows, table.Row{
			e.Label,
			e.Row.StartISO,
			fmt.Sprintf("%d%%", e.Percent),
			fmt.Sprintf("%d/%d", e.Done, e.Total),
			status,
		})
	}
	return rows
}

func buildCycleTable(rows []table.Row, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Program", Width: 18},
		{Title: "Start", Width: 11},
		{Title: "Progress", Width: 9},
		{Title: "Done", Width: 8},
		{Title: "Status", Width: 12},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
		table.WithFocused(true),
	)
	t.SetWidth(width)
	t.SetStyles(cycleTableStyles())
	return t
}

func cycleTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromFilter()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refresh()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	program := strings.TrimSpace(m.filterInputs[0].Value())
	if program != "" {
		if _, ok := catalog.Lookup(program); !ok {
			return fmt.Errorf("unknown program %q (use %s)", program, strings.Join(catalog.Keys(), ", "))
		}
	}

	lastInput := strings.TrimSpace(m.filterInputs[1].Value())
	last := 0
	if lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	var completed *bool
	switch strings.ToLower(strings.TrimSpace(m.filterInputs[2].Value())) {
	case "", "n", "no":
	case "y", "yes":
		v := true
		completed = &v
	default:
		return fmt.Errorf("invalid finished-only value (use y or n)")
	}

	m.program = program
	m.filter.Last = last
	m.filter.Completed = completed
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

