// Package tui provides the Bubble Tea training interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuiear/internal/avatar"
	"github.com/verte-zerg/tuiear/internal/engine"
	"github.com/verte-zerg/tuiear/internal/generator"
	"github.com/verte-zerg/tuiear/internal/model"
	"github.com/verte-zerg/tuiear/internal/progress"
	"github.com/verte-zerg/tuiear/internal/session"
	"github.com/verte-zerg/tuiear/internal/store"
	"github.com/verte-zerg/tuiear/internal/wordlist"
)

// Options configures the training UI.
type Options struct {
	Store *store.Store
	Words []wordlist.Entry
	Bell  bool
	Seed  int64
}

// Model implements the Bubble Tea training UI.
type Model struct {
	settings model.GameSettings
	session  *session.Session
	sched    *teaScheduler
	bell     bool

	width  int
	height int

	started   bool
	judgement model.Judgement
	flash     bool
	notice    string
	pending   []tea.Cmd
	// picked holds the sequence answer built so far.
	picked []string
}

var (
	cueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(1, 4).
			Border(lipgloss.ThickBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	idleCueStyle = cueStyle.
			Foreground(lipgloss.Color("#4A4A4A")).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	perfectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#1890FF")).Bold(true)
	missStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAAD14"))
)

// NewModel constructs a training TUI model.
func NewModel(settings model.GameSettings, opts Options) (*Model, error) {
	m := &Model{settings: settings, sched: newTeaScheduler(), bell: opts.Bell}
	deps := session.Deps{
		Scheduler: m.sched,
		Words:     opts.Words,
		OnEvent:   m.onEvent,
	}
	if opts.Seed != 0 {
		deps.Generator = generator.NewSeeded(opts.Seed)
	}
	if opts.Store != nil {
		deps.Progress = progress.NewRepository(opts.Store)
		deps.History = opts.Store
	}
	s, err := session.New(context.Background(), settings, deps)
	if err != nil {
		return nil, err
	}
	if err := s.LoadProgress(); err != nil {
		logErrf("failed to load progress: %v\n", err)
	}
	m.session = s
	return m, nil
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
	case timerMsg:
		m.sched.fire(msg.id)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			m.session.Abort()
			return m, tea.Quit
		}
		m.handleKey(msg)
	}
	return m, m.flush()
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	key := msg.String()
	if key == "esc" {
		m.session.Abort()
		m.started = false
		m.notice = ""
		return
	}
	switch m.session.Phase() {
	case session.PhaseIdle:
		if key == " " || key == "enter" {
			m.started = true
			m.notice = ""
			m.session.Start()
		}
	case session.PhaseFinished:
		switch key {
		case "enter", " ":
			if err := m.session.Continue(); err != nil {
				m.notice = "All sets done. Press r to start over."
			}
		case "r":
			m.notice = ""
			m.session.Start()
		}
	case session.PhaseStimulus:
		if key == " " {
			m.session.Press()
		}
	case session.PhaseWaiting:
		if key == " " && m.settings.Mode.IsReaction() {
			m.notice = "Too early. Wait for the cue."
		}
	case session.PhaseAnswering:
		m.answer(key)
	}
}

func (m *Model) answer(key string) {
	cur := m.session.Current()
	options := cur.Options
	switch {
	case m.settings.Mode.IsPair():
		switch key {
		case "s":
			key = "1"
		case "d":
			key = "2"
		}
	case m.settings.Mode == model.ModeBalance:
		switch key {
		case "left", "h":
			key = "1"
		case "right", "l":
			key = "2"
		}
	case m.settings.Mode.IsSequence():
		m.pick(key, cur)
		return
	}
	if idx, ok := optionIndex(key, len(options)); ok {
		m.session.Answer(options[idx])
	}
}

// pick adds a palette entry to the sequence answer and submits it once
// every slot is filled.
func (m *Model) pick(key string, cur session.Stimulus) {
	if key == "backspace" {
		if len(m.picked) > 0 {
			m.picked = m.picked[:len(m.picked)-1]
		}
		return
	}
	idx, ok := optionIndex(key, len(cur.Options))
	if !ok {
		return
	}
	m.picked = append(m.picked, cur.Options[idx])
	if len(m.picked) < cur.Slots() {
		return
	}
	order := m.picked
	m.picked = nil
	m.session.AnswerOrder(order)
}

func (m *Model) onEvent(e session.Event) {
	switch e.Kind {
	case session.EventStimulus:
		m.flash = true
		m.notice = ""
		m.picked = nil
		if m.bell {
			m.pending = append(m.pending, ringBell)
		}
	case session.EventJudged:
		m.flash = false
		m.judgement = e.Judgement
	case session.EventSetFinished:
		m.flash = false
		if e.Summary != nil && e.Summary.SaveErr != nil {
			logErrf("failed to save progress: %v\n", e.Summary.SaveErr)
		}
	}
}

func (m *Model) flush() tea.Cmd {
	cmds := append(m.pending, m.sched.drain()...)
	m.pending = nil
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func ringBell() tea.Msg {
	if _, err := fmt.Fprint(os.Stdout, "\a"); err != nil {
		// Best-effort bell.
		_ = err
	}
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch {
	case !m.started:
		content = m.renderReady()
	case m.session.Phase() == session.PhaseFinished:
		content = m.renderSummary(m.session.Summary())
	default:
		content = m.renderQuestion()
	}
	if m.notice != "" {
		content += "\n\n" + warnStyle.Render(m.notice)
	}
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderReady() string {
	p := m.session.Progress()
	level := avatar.CurrentLevel(p.TotalPerfects)
	lines := []string{
		promptStyle.Render(modeTitle(m.settings.Mode)),
		fmt.Sprintf("%s Lv.%d %s", level.Emoji, level.Level, level.Name),
		hintStyle.Render(modeHelp(m.settings.Mode)),
		"",
		"Press space to start",
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderQuestion() string {
	cur := m.session.Current()
	var lines []string
	switch {
	case m.settings.Mode.IsReaction():
		if m.session.Phase() == session.PhaseStimulus {
			lines = append(lines, cueStyle.Render("♪ "+cur.Cue))
		} else {
			lines = append(lines, idleCueStyle.Render("· · ·"))
		}
	case m.settings.Mode.IsPair():
		if cur.First != "" {
			lines = append(lines, cueStyle.Render(cur.First+"   vs   "+cur.Second))
		} else {
			lines = append(lines, idleCueStyle.Render("· · ·"))
		}
	case m.settings.Mode.IsSequence():
		switch m.session.Phase() {
		case session.PhasePresenting:
			lines = append(lines, cueStyle.Render("♪ "+strings.Join(cur.Sounds, " → ")))
		case session.PhaseAnswering:
			lines = append(lines, renderSlots(m.picked, cur.Slots()))
		default:
			lines = append(lines, idleCueStyle.Render("· · ·"))
		}
	case m.settings.Mode == model.ModeBalance:
		if m.session.Phase() == session.PhasePresenting {
			lines = append(lines, cueStyle.Render(balanceCue(cur.Cue)))
		} else {
			lines = append(lines, idleCueStyle.Render("· · ·"))
		}
	default:
		if cur.Prompt != "" {
			lines = append(lines, cueStyle.Render("♪ "+cur.Prompt))
			if cur.Hint != "" {
				lines = append(lines, hintStyle.Render(cur.Hint))
			}
		} else {
			lines = append(lines, idleCueStyle.Render("· · ·"))
		}
	}
	if m.session.Phase() == session.PhaseAnswering {
		lines = append(lines, "")
		lines = append(lines, layoutOptions(cur.Options, max(m.width-4, 0))...)
	}
	if m.judgement != model.JudgementNone {
		lines = append(lines, "", renderJudgement(m.judgement))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderSummary(s *session.Summary) string {
	if s == nil {
		return ""
	}
	r := s.Result
	lines := []string{
		promptStyle.Render(fmt.Sprintf("Set %d complete", m.session.State().SetIndex)),
		fmt.Sprintf("%s %d  %s %d  %s %d",
			perfectStyle.Render("Perfect"), r.PerfectCount,
			goodStyle.Render("Good"), r.GoodCount,
			missStyle.Render("Miss"), r.MissCount),
		fmt.Sprintf("Score %d  Max combo %d", r.TotalScore, r.MaxCombo),
		fmt.Sprintf("Accuracy %.1f%%  Grade %s", r.Accuracy, r.Grade),
	}
	if r.AverageReactionTime > 0 {
		lines = append(lines, fmt.Sprintf("Avg reaction %d ms", r.AverageReactionTime.Milliseconds()))
	}
	if !m.settings.Mode.IsReaction() {
		lines = append(lines, fmt.Sprintf("Rank %s %s", s.Rank.Emoji, s.Rank.Name))
	}
	if lvl := s.Update.LevelUp; lvl != nil {
		lines = append(lines, "", perfectStyle.Render(fmt.Sprintf("%s Level up! Lv.%d %s", lvl.Emoji, lvl.Level, lvl.Name)), lvl.UnlockMessage)
	}
	if s.Update.Stage != "" {
		lines = append(lines, hintStyle.Render(fmt.Sprintf("New stage: %s (%s)", s.Update.Stage, avatar.RelicFor(s.Update.Stage))))
	}
	if s.NewClear {
		switch {
		case s.Clear.Cleared:
			lines = append(lines, perfectStyle.Render("★ Mode cleared!"))
		case s.Clear.Starred:
			lines = append(lines, perfectStyle.Render("★ Star earned!"))
		}
	}
	if s.SaveErr != nil {
		lines = append(lines, warnStyle.Render("Progress could not be saved."))
	}
	lines = append(lines, "")
	if s.CanContinue {
		lines = append(lines, hintStyle.Render("enter: next set  r: restart  esc: menu  q: quit"))
	} else {
		lines = append(lines, hintStyle.Render("r: restart  esc: menu  q: quit"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	state := m.session.State()
	p := m.session.Progress()
	level := avatar.CurrentLevel(p.TotalPerfects)
	segments := []string{}
	if m.started && state.SetIndex > 0 {
		segments = append(segments,
			fmt.Sprintf("Q %d/%d", min(state.Judged()+1, m.settings.QuestionCount), m.settings.QuestionCount),
			fmt.Sprintf("Set %d/%d", state.SetIndex, model.MaxSets),
			fmt.Sprintf("Score %d", state.Score),
			fmt.Sprintf("Combo %d", state.Combo),
		)
	}
	segments = append(segments,
		fmt.Sprintf("Lv.%d · %d to next", level.Level, avatar.Remaining(p.TotalPerfects)),
		fmt.Sprintf("%s · %s", m.settings.Difficulty, model.SpeedIntervals[m.settings.SoundSpeed].Label),
	)
	if m.settings.Mode.IsReaction() {
		t := engine.Thresholds(m.settings)
		segments = append(segments, fmt.Sprintf("P<%d G<%d M<%d ms", t.Perfect, t.Good, t.Miss))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func renderSlots(picked []string, slots int) string {
	parts := make([]string, slots)
	for i := range parts {
		parts[i] = "[ _ ]"
		if i < len(picked) {
			parts[i] = "[" + picked[i] + "]"
		}
	}
	return strings.Join(parts, " ")
}

func balanceCue(side string) string {
	if side == session.AnswerLeft {
		return "◀ ♪      "
	}
	return "      ♪ ▶"
}

func renderJudgement(j model.Judgement) string {
	switch j {
	case model.JudgementPerfect:
		return perfectStyle.Render("PERFECT")
	case model.JudgementGood:
		return goodStyle.Render("GOOD")
	case model.JudgementMiss:
		return missStyle.Render("MISS")
	default:
		return ""
	}
}

func modeTitle(mode model.TrainingMode) string {
	switch mode {
	case model.ModeSoundCatch:
		return "Sound Catch"
	case model.ModePitch:
		return "Pitch Discrimination"
	case model.ModeDuration:
		return "Duration Discrimination"
	case model.ModeWordPair:
		return "Word Pair Discrimination"
	case model.ModeWordChallenge:
		return "Word Challenge"
	case model.ModeDrum:
		return "Drum Identification"
	case model.ModeSequence:
		return "Sequence Recall"
	case model.ModeBalance:
		return "Balance Test"
	default:
		return string(mode)
	}
}

func modeHelp(mode model.TrainingMode) string {
	switch {
	case mode.IsReaction():
		return "Press space as soon as the cue appears."
	case mode.IsPair():
		return "Same or different? s/1 same, d/2 different."
	case mode.IsSequence():
		return "Pick the sounds in the order you heard them. backspace undoes."
	case mode == model.ModeBalance:
		return "Which ear? h/1/left or l/2/right."
	default:
		return "Pick the sound you heard with 1-3."
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
