// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"

	"github.com/verte-zerg/tuiear/internal/avatar"
	"github.com/verte-zerg/tuiear/internal/engine"
	"github.com/verte-zerg/tuiear/internal/model"
	"github.com/verte-zerg/tuiear/internal/progress"
	"github.com/verte-zerg/tuiear/internal/stats"
	"github.com/verte-zerg/tuiear/internal/store"
)

const (
	tabOverview = iota
	tabModes
	tabProgress
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
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store    *store.Store
	progress *progress.Repository
	cfg      model.StatsConfig
	now      func() time.Time

	report   stats.Report
	user     model.UserProgress
	calendar progress.Calendar
	clears   progress.Clears
	errMsg   string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	modeTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store:    st,
		progress: progress.NewRepository(st),
		cfg:      cfg,
		now:      time.Now,
		tabs:     []string{"Overview", "Modes", "Progress"},
	}
	m.initInputs()
	m.modeTable = buildModeTable(nil, progress.NewClears(), 80, 10)
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.refreshReport()
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
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.renderTabContents()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.renderTabContents()
			return m, nil
		case "/":
			return m.startFilter()
		}
		if m.activeTab == tabModes {
			var cmd tea.Cmd
			m.modeTable, cmd = m.modeTable.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd
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
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Mode: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	m.filterInputs[0].SetValue(m.cfg.Mode)
	since := ""
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(model.DateLayout)
	}
	m.filterInputs[1].SetValue(since)
	last := ""
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	m.filterInputs[2].SetValue(last)
	m.filterInputs[3].SetValue(strconv.Itoa(m.cfg.CurveWindow))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(lipgloss.Height(activeNavStyle.Render("X")), 1)
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.modeTable.SetWidth(m.width)
	m.modeTable.SetHeight(max(bodyHeight-1, 1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = max(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabModes {
		m.modeTable.Focus()
	} else {
		m.modeTable.Blur()
	}
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return tabs + "\n" + headerStyle.Render(truncateLine(m.filterSummary(), m.width))
}

func (m *Model) filterSummary() string {
	mode := m.cfg.Mode
	if mode == "" {
		mode = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(model.DateLayout)
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	return fmt.Sprintf("Settings: mode=%s  since=%s  last=%s  window=%d", mode, since, last, m.cfg.CurveWindow)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Settings (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if m.activeTab == tabModes {
		if len(m.report.Modes) == 0 {
			return "No mode stats found."
		}
		return tableMutedStyle.Render(m.modeTable.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) refreshReport() {
	ctx := context.Background()
	report, err := stats.BuildReport(ctx, m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	// Load falls back to initial progress on error; the report is still usable.
	m.user, _ = m.progress.Load(ctx)
	m.calendar, _ = m.progress.LoadCalendar(ctx)
	m.clears, _ = m.progress.LoadClears(ctx)
	m.modeTable.SetRows(modeRows(report.Modes, m.clears))
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
	m.viewports[tabProgress].SetContent(m.renderProgress(width))
}

func renderOverview(report stats.Report, window, width int) string {
	if len(report.Sets) == 0 {
		return "No sets found."
	}
	var buf bytes.Buffer
	if err := stats.RenderCurves(&buf, report.Sets, window, width); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	parts := []string{renderSummaryCards(report.Sets, width), strings.TrimRight(buf.String(), "\n")}
	if len(report.Weakest) > 0 {
		parts = append(parts, "Focus next: "+joinModes(report.Weakest))
	}
	if len(report.Untried) > 0 {
		parts = append(parts, headerStyle.Render("Not tried yet: "+joinModes(report.Untried)))
	}
	return strings.Join(parts, "\n\n")
}

func renderSummaryCards(sets []model.SetRecord, width int) string {
	var score, acc float64
	best, perfects := 0, 0
	for _, rec := range sets {
		metrics := stats.SetMetrics(rec)
		score += metrics.Score
		acc += metrics.Accuracy
		best = max(best, rec.Score)
		perfects += rec.PerfectCount
	}
	count := float64(len(sets))
	cards := []string{
		metricCard("Sets", strconv.Itoa(len(sets))),
		metricCard("Avg Score", fmt.Sprintf("%.0f", score/count)),
		metricCard("Best Score", strconv.Itoa(best)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", acc/count)),
		metricCard("Perfects", strconv.Itoa(perfects)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func (m *Model) renderProgress(width int) string {
	var buf bytes.Buffer
	if err := stats.RenderProgress(&buf, m.user, m.calendar.Streak(m.now())); err != nil {
		return fmt.Sprintf("Failed to render progress: %v", err)
	}
	level := avatar.CurrentLevel(m.user.TotalPerfects)
	card := cardStyle.BorderForeground(lipgloss.Color(level.Color)).Render(strings.TrimRight(buf.String(), "\n"))
	starred, cleared := m.clears.Counts()
	milestones := headerStyle.Render(fmt.Sprintf("★ %d/%d starred  ✓ %d/%d cleared",
		starred, len(model.TrainingModes), cleared, len(model.TrainingModes)))
	return card + "\n" + milestones + "\n\n" + renderMonth(m.calendar, m.now(), width)
}

// renderMonth draws the current month with trained days highlighted.
func renderMonth(cal progress.Calendar, now time.Time, width int) string {
	days := cal.DaysInMonth(now.Year(), now.Month())
	trained := make(map[int]bool, len(days))
	for _, d := range days {
		trained[d] = true
	}
	last := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	lines := []string{cardTitleStyle.Render(now.Format("January 2006"))}
	var row []string
	for d := 1; d <= last; d++ {
		cell := fmt.Sprintf("%2d", d)
		if trained[d] {
			cell = cardValueStyle.Render(cell)
		} else {
			cell = headerStyle.Render(cell)
		}
		row = append(row, cell)
		if len(row) == 7 || d == last {
			lines = append(lines, strings.Join(row, " "))
			row = nil
		}
	}
	return truncateBlock(strings.Join(lines, "\n"), width)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func buildModeTable(aggs []model.ModeAggregate, clears progress.Clears, width, height int) table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "", Width: 1},
			{Title: "Mode", Width: 15},
			{Title: "Sets", Width: 5},
			{Title: "Accuracy", Width: 9},
			{Title: "Grade", Width: 5},
			{Title: "Perfect", Width: 7},
			{Title: "Miss", Width: 5},
			{Title: "Best", Width: 6},
			{Title: "Combo", Width: 5},
			{Title: "Avg ms", Width: 7},
		}),
		table.WithRows(modeRows(aggs, clears)),
		table.WithHeight(max(1, height-1)),
	)
	t.SetWidth(width)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func modeRows(aggs []model.ModeAggregate, clears progress.Clears) []table.Row {
	rows := make([]table.Row, 0, len(aggs))
	for _, agg := range aggs {
		total := agg.PerfectCount + agg.GoodCount + agg.MissCount
		acc := 0.0
		if total > 0 {
			acc = float64(agg.PerfectCount+agg.GoodCount) / float64(total) * 100
		}
		reaction := "-"
		if agg.ReactionSets > 0 {
			reaction = fmt.Sprintf("%.0f", float64(agg.ReactionSumMs)/float64(agg.ReactionSets))
		}
		rows = append(rows, table.Row{
			clearMark(clears.Get(agg.Mode)),
			string(agg.Mode),
			strconv.Itoa(agg.Sets),
			fmt.Sprintf("%.2f%%", acc),
			string(engine.GradeFor(acc)),
			strconv.Itoa(agg.PerfectCount),
			strconv.Itoa(agg.MissCount),
			strconv.Itoa(agg.BestScore),
			strconv.Itoa(agg.BestCombo),
			reaction,
		})
	}
	return rows
}

func clearMark(c model.ModeClear) string {
	switch {
	case c.Cleared:
		return "✓"
	case c.Starred:
		return "★"
	}
	return ""
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		cfg, err := parseFilter(m.filterInputs)
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
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
	m.filterIndex = (idx + count) % count
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

func parseFilter(inputs []textinput.Model) (model.StatsConfig, error) {
	mode := strings.TrimSpace(inputs[0].Value())
	if mode != "" && !knownMode(mode) {
		return model.StatsConfig{}, fmt.Errorf("unknown mode %q", mode)
	}
	var since *time.Time
	if v := strings.TrimSpace(inputs[1].Value()); v != "" {
		parsed, err := time.ParseInLocation(model.DateLayout, v, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}
	last := 0
	if v := strings.TrimSpace(inputs[2].Value()); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return model.StatsConfig{}, fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}
	window := 1
	if v := strings.TrimSpace(inputs[3].Value()); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return model.StatsConfig{}, fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		window = parsed
	}
	return model.StatsConfig{Mode: mode, Since: since, Last: last, CurveWindow: window}, nil
}

func knownMode(mode string) bool {
	return lo.Contains(model.TrainingModes, model.TrainingMode(mode))
}

func joinModes(modes []model.TrainingMode) string {
	return strings.Join(lo.Map(modes, func(m model.TrainingMode, _ int) string { return string(m) }), ", ")
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateBlock(s string, width int) string {
	return lipgloss.NewStyle().MaxWidth(max(width, 1)).Render(s)
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
