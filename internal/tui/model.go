// Package tui provides the Bubble Tea tracker interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/cleanse369/internal/catalog"
	"github.com/verte-zerg/cleanse369/internal/cycle"
	"github.com/verte-zerg/cleanse369/internal/session"
	"github.com/verte-zerg/cleanse369/internal/stats"
)

// task is one row of the checklist for the selected day.
type task struct {
	section int
	item    int
	text    string
}

// Model implements the Bubble Tea tracker UI.
type Model struct {
	ctx    context.Context
	coord  *session.Coordinator
	sess   *session.Session
	logger *zap.Logger

	width  int
	height int

	// Start menu, shown while no cycle is active.
	programIdx int

	phaseIdx int
	day      int
	cursor   int

	confirmFinish bool
	confirmReset  bool
	notice        string

	bar progress.Model
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	sectionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Strikethrough(true)
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#8C8C8C"))
	activeTab     = tabStyle.Copy().Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#3A3A3A"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	checkedMark   = "[x]"
	uncheckedMark = "[ ]"
)

// NewModel constructs the tracker for a loaded session.
func NewModel(ctx context.Context, coord *session.Coordinator, sess *session.Session, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Model{
		ctx:    ctx,
		coord:  coord,
		sess:   sess,
		logger: logger,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	m.jumpToToday()
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
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.sess.Active == nil {
			m.handleMenuKey(msg)
		} else {
			m.handleTrackerKey(msg)
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleMenuKey(msg tea.KeyMsg) {
	programs := catalog.All()
	switch msg.String() {
	case "up", "k":
		if m.programIdx > 0 {
			m.programIdx--
		}
	case "down", "j":
		if m.programIdx < len(programs)-1 {
			m.programIdx++
		}
	case "y":
		m.begin(programs[m.programIdx].Key, cycle.StartYesterday)
	case "t", "enter":
		m.begin(programs[m.programIdx].Key, cycle.StartToday)
	case "m":
		m.begin(programs[m.programIdx].Key, cycle.StartTomorrow)
	}
}

func (m *Model) handleTrackerKey(msg tea.KeyMsg) {
	key := msg.String()
	if key != "f" {
		m.confirmFinish = false
	}
	if key != "S" {
		m.confirmReset = false
	}
	switch key {
	case "tab":
		m.selectPhase(m.phaseIdx + 1)
	case "shift+tab":
		m.selectPhase(m.phaseIdx - 1)
	case "left", "h":
		m.shiftDay(-1)
	case "right", "l":
		m.shiftDay(1)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks())-1 {
			m.cursor++
		}
	case " ", "enter", "x":
		m.toggleCurrent()
	case ".":
		m.jumpToToday()
	case "f":
		m.finish()
	case "S":
		m.startOver()
	}
}

func (m *Model) begin(programKey, choice string) {
	start, err := cycle.ParseStart(choice, m.coord.Now())
	if err != nil {
		m.notice = err.Error()
		return
	}
	m.report(m.coord.Begin(m.ctx, m.sess, programKey, start))
	m.jumpToToday()
}

func (m *Model) toggleCurrent() {
	tasks := m.tasks()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return
	}
	t := tasks[m.cursor]
	id, err := m.sess.Active.ItemIdentity(m.day, t.section, t.item)
	if err != nil {
		m.notice = err.Error()
		return
	}
	_, err = m.coord.Toggle(m.ctx, m.sess, id, !m.sess.Active.Done(id))
	m.report(err)
}

func (m *Model) finish() {
	res, err := m.coord.Finish(m.ctx, m.sess, m.confirmFinish)
	m.report(err)
	switch {
	case res.NeedsConfirm:
		m.confirmFinish = true
		m.notice = fmt.Sprintf("Only %d%% done. Press f again to finish anyway.", cycle.Percent(res.Ratio))
	case res.Finished:
		m.confirmFinish = false
		if m.notice == "" {
			m.notice = "Cycle finished. Medal awarded!"
		}
	}
}

func (m *Model) startOver() {
	if !m.confirmReset {
		m.confirmReset = true
		m.notice = "Press S again to discard this cycle."
		return
	}
	m.confirmReset = false
	m.notice = ""
	m.report(m.coord.StartOver(m.ctx, m.sess))
}

// report surfaces a failed operation. Persistence failures keep the
// in-memory change.
func (m *Model) report(err error) {
	if err == nil {
		m.notice = ""
		return
	}
	var pe *session.PersistError
	if errors.As(err, &pe) {
		m.notice = "not saved: " + pe.Error()
		return
	}
	m.logger.Debug("operation failed", zap.Error(err))
	m.notice = err.Error()
}

func (m *Model) jumpToToday() {
	m.cursor = 0
	if m.sess.Active == nil {
		return
	}
	day, _, err := m.sess.Active.Today(m.coord.Now())
	if err != nil {
		m.notice = err.Error()
	}
	m.day = day
	m.phaseIdx = m.phaseIndexFor(day)
}

func (m *Model) program() catalog.Program {
	if m.sess.Active == nil {
		return catalog.Program{}
	}
	p, _ := m.sess.Active.Program()
	return p
}

func (m *Model) phaseIndexFor(day int) int {
	p := m.program()
	key, _ := cycle.PhaseForDay(p, day)
	for i, ph := range p.Phases {
		if ph.Key == key {
			return i
		}
	}
	return 0
}

func (m *Model) selectPhase(idx int) {
	phases := m.program().Phases
	if len(phases) == 0 {
		return
	}
	idx = (idx + len(phases)) % len(phases)
	m.phaseIdx = idx
	m.day = phases[idx].Days()[0]
	m.cursor = 0
}

func (m *Model) shiftDay(delta int) {
	day := m.day + delta
	if day < catalog.FirstDay || day > catalog.LastDay {
		return
	}
	m.day = day
	m.phaseIdx = m.phaseIndexFor(day)
	if n := len(m.tasks()); m.cursor >= n {
		m.cursor = n - 1
	}
}

func (m *Model) tasks() []task {
	p := m.program()
	if m.phaseIdx >= len(p.Phases) {
		return nil
	}
	var out []task
	for si, section := range p.Phases[m.phaseIdx].Sections {
		for ii, text := range section.Items {
			out = append(out, task{section: si, item: ii, text: text})
		}
	}
	return out
}

// View implements tea.Model.
func (m *Model) View() string {
	var body []string
	cursorLine := 0
	if m.sess.Active == nil {
		body = m.menuLines()
	} else {
		body, cursorLine = m.trackerLines()
	}
	if m.notice != "" {
		body = append(body, "", noticeStyle.Render(m.notice))
	}
	footer := m.renderFooter()
	if m.height > 0 {
		body = visibleWindow(body, cursorLine, m.height-2)
	}
	return strings.Join(body, "\n") + "\n\n" + footer
}

func (m *Model) menuLines() []string {
	lines := []string{titleStyle.Render("Start a 369 cleanse"), ""}
	for i, p := range catalog.All() {
		total := 0
		for _, ph := range p.Phases {
			total += ph.ItemCount() * len(ph.Days())
		}
		line := fmt.Sprintf("  %s (%d tasks)", p.Label, total)
		if i == m.programIdx {
			line = cursorStyle.Render("› " + strings.TrimPrefix(line, "  "))
		}
		lines = append(lines, line)
	}
	lines = append(lines, "",
		footerStyle.Render("y start yesterday · t/enter start today · m start tomorrow · q quit"),
		"",
		stats.QuoteOfDay(m.coord.Now()))
	return lines
}

func (m *Model) trackerLines() ([]string, int) {
	s := m.sess.Active
	p := m.program()
	lines := []string{titleStyle.Render(fmt.Sprintf("%s · started %s", p.Label, s.StartISO()))}
	if status, err := stats.StatusLine(s, m.coord.Now()); err == nil {
		lines = append(lines, "Today: "+status)
	}

	tabs := make([]string, 0, len(p.Phases))
	for i, ph := range p.Phases {
		if i == m.phaseIdx {
			tabs = append(tabs, activeTab.Render(ph.TabLabel()))
		} else {
			tabs = append(tabs, tabStyle.Render(ph.TabLabel()))
		}
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, tabs...))

	dayDone, dayTotal := 0, 0
	for _, t := range cycle.DayTallies(s) {
		if t.Day == m.day {
			dayDone, dayTotal = t.Done, t.Total
		}
	}
	lines = append(lines, fmt.Sprintf("‹ Day %d · %s › %d/%d", m.day, stats.FormatDay(s.DateForDay(m.day)), dayDone, dayTotal), "")

	textWidth := 0
	if m.width > 0 {
		textWidth = m.width - 8
	}
	cursorLine := 0
	lastSection := -1
	ph := p.Phases[m.phaseIdx]
	for i, t := range m.tasks() {
		if t.section != lastSection {
			lines = append(lines, sectionStyle.Render(ph.Sections[t.section].Name))
			lastSection = t.section
		}
		mark, style := uncheckedMark, pendingStyle
		if s.Done(cycle.Identity(s.ID, m.day, t.section, t.item)) {
			mark, style = checkedMark, doneStyle
		}
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("› ")
			cursorLine = len(lines)
		}
		for j, part := range wrapText(t.text, textWidth) {
			if j == 0 {
				lines = append(lines, prefix+mark+" "+style.Render(part))
				continue
			}
			lines = append(lines, "      "+style.Render(part))
		}
	}
	lines = append(lines, "", footerStyle.Render("space toggle · ←/→ day · tab phase · . today · f finish · S start over · q quit"))
	return lines, cursorLine
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if s := m.sess.Active; s != nil {
		total, done := cycle.CountTasks(s)
		ratio := cycle.CompletionRatio(s)
		if m.width > 0 {
			m.bar.Width = m.width / 3
			segments = append(segments, m.bar.ViewAs(ratio))
		}
		segments = append(segments, fmt.Sprintf("Progress %d%% (%d/%d)", cycle.Percent(ratio), done, total))
	}
	if n := m.sess.CompletedCycles; n > 0 {
		segments = append(segments, fmt.Sprintf("Medals %s", stats.Medals(n)))
	}
	if m.sess.Authenticated() {
		segments = append(segments, "Signed in as "+m.sess.UserID)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

// visibleWindow keeps the cursor line on screen when lines exceed height.
func visibleWindow(lines []string, cursorLine, height int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	start := cursorLine - height/2
	if start < 0 {
		start = 0
	}
	if start+height > len(lines) {
		start = len(lines) - height
	}
	return lines[start : start+height]
}
