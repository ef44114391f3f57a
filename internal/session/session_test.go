package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/tuiear/internal/engine"
	"github.com/verte-zerg/tuiear/internal/generator"
	"github.com/verte-zerg/tuiear/internal/model"
	"github.com/verte-zerg/tuiear/internal/progress"
	"github.com/verte-zerg/tuiear/internal/scheduler"
)

type memKV struct {
	data map[string][]byte
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	return nil
}

var errBroken = errors.New("disk full")

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (brokenKV) Set(context.Context, string, []byte) error         { return errBroken }

type memHistory struct {
	records []model.SetRecord
}

func (h *memHistory) InsertSet(_ context.Context, rec model.SetRecord) (int64, error) {
	h.records = append(h.records, rec)
	return int64(len(h.records)), nil
}

type fixture struct {
	clock   *scheduler.Virtual
	kv      *memKV
	history *memHistory
	events  []Event
	session *Session
}

func newFixture(t *testing.T, settings model.GameSettings) *fixture {
	t.Helper()
	f := &fixture{
		clock:   scheduler.NewVirtual(time.Date(2025, 9, 16, 9, 0, 0, 0, time.UTC)),
		kv:      &memKV{},
		history: &memHistory{},
	}
	s, err := New(context.Background(), settings, Deps{
		Scheduler: f.clock,
		Generator: generator.NewSeeded(7),
		Progress:  progress.NewRepository(f.kv),
		History:   f.history,
		OnEvent:   func(e Event) { f.events = append(f.events, e) },
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	f.session = s
	return f
}

// waitFor advances the clock in small steps until the session reaches phase.
func (f *fixture) waitFor(t *testing.T, phase Phase) {
	t.Helper()
	for i := 0; i < 2000; i++ {
		if f.session.Phase() == phase {
			return
		}
		f.clock.Advance(10 * time.Millisecond)
	}
	t.Fatalf("phase %d not reached, stuck at %d", phase, f.session.Phase())
}

func (f *fixture) count(kind EventKind) int {
	n := 0
	for _, e := range f.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func reactionSettings() model.GameSettings {
	return model.GameSettings{
		QuestionCount: 5,
		Difficulty:    model.DifficultyNormal,
		SoundSpeed:    model.SpeedVeryFast,
		Mode:          model.ModeSoundCatch,
	}
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	settings := reactionSettings()
	settings.QuestionCount = 7
	_, err := New(context.Background(), settings, Deps{})
	var cfgErr *engine.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestReactionSetCompletes(t *testing.T) {
	f := newFixture(t, reactionSettings())
	f.session.Start()

	if _, ok := f.session.Press(); ok {
		t.Fatalf("press with no stimulus should be ignored")
	}
	for i := 0; i < 5; i++ {
		f.waitFor(t, PhaseStimulus)
		if f.session.Current().Cue == "" {
			t.Fatalf("expected a cue for stimulus %d", i)
		}
		f.clock.Advance(200 * time.Millisecond)
		j, ok := f.session.Press()
		if !ok || j != model.JudgementPerfect {
			t.Fatalf("press %d: got %v/%v", i, j, ok)
		}
	}

	if f.session.Phase() != PhaseFinished {
		t.Fatalf("expected finished phase, got %d", f.session.Phase())
	}
	summary := f.session.Summary()
	if summary == nil || summary.SaveErr != nil {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Result.PerfectCount != 5 || summary.Result.TotalScore != 500 || summary.Result.Accuracy != 100 {
		t.Fatalf("unexpected result %+v", summary.Result)
	}
	if !summary.CanContinue {
		t.Fatalf("expected continue to be allowed after first set")
	}
	if got := f.session.Progress().TotalPerfects; got != 5 {
		t.Fatalf("expected 5 lifetime perfects, got %d", got)
	}
	if got := f.count(EventJudged); got != 5 {
		t.Fatalf("expected 5 judged events, got %d", got)
	}
	if got := f.count(EventSetFinished); got != 1 {
		t.Fatalf("expected one finish event, got %d", got)
	}
	if len(f.history.records) != 1 || f.history.records[0].RunID == "" {
		t.Fatalf("unexpected history %+v", f.history.records)
	}
	if _, ok := f.kv.data[progress.ProgressKey]; !ok {
		t.Fatalf("progress not saved")
	}
	if _, ok := f.kv.data[progress.CalendarKey]; !ok {
		t.Fatalf("calendar not saved")
	}
	if f.session.Streak() != 1 {
		t.Fatalf("expected streak 1, got %d", f.session.Streak())
	}
}

func TestReactionStimulusExpiresAsMiss(t *testing.T) {
	f := newFixture(t, reactionSettings())
	f.session.Start()
	f.waitFor(t, PhaseStimulus)

	f.clock.Advance(f.session.Thresholds().MissDuration())
	state := f.session.State()
	if state.MissCount != 1 || state.Combo != 0 || len(state.ReactionTimes) != 0 {
		t.Fatalf("expected expiry miss, got %+v", state)
	}
	if last := f.events[len(f.events)-1]; last.Kind != EventJudged || last.Judgement != model.JudgementMiss {
		t.Fatalf("unexpected last event %+v", last)
	}
	if _, ok := f.session.Press(); ok {
		t.Fatalf("late press after expiry should be ignored")
	}
}

func TestPairModeAppliesComboBonus(t *testing.T) {
	settings := model.GameSettings{
		QuestionCount: 5,
		Difficulty:    model.DifficultyHard,
		SoundSpeed:    model.SpeedNormal,
		Mode:          model.ModePitch,
	}
	f := newFixture(t, settings)
	f.session.Start()

	for i := 0; i < 5; i++ {
		f.waitFor(t, PhaseAnswering)
		if got := f.session.Current().Options; len(got) != 2 {
			t.Fatalf("expected same/different options, got %v", got)
		}
		f.clock.Advance(300 * time.Millisecond)
		if j, ok := f.session.Answer(f.session.Current().answer); !ok || j != model.JudgementPerfect {
			t.Fatalf("answer %d: got %v/%v", i, j, ok)
		}
	}
	summary := f.session.Summary()
	if summary == nil {
		t.Fatalf("expected finished set")
	}
	if summary.Result.TotalScore != 1000 {
		t.Fatalf("expected 500 + combo bonus 500, got %d", summary.Result.TotalScore)
	}
	if summary.Rank.MinPoints != 0 {
		t.Fatalf("expected starting rank, got %+v", summary.Rank)
	}
}

func TestPairAnswersOpenAfterPresentation(t *testing.T) {
	settings := model.GameSettings{
		QuestionCount: 5,
		Difficulty:    model.DifficultyNormal,
		SoundSpeed:    model.SpeedNormal,
		Mode:          model.ModeDuration,
	}
	f := newFixture(t, settings)
	f.session.Start()
	f.waitFor(t, PhasePresenting)

	if _, ok := f.session.Answer(AnswerSame); ok {
		t.Fatalf("answer during presentation should be ignored")
	}
	f.clock.Advance(3000*time.Millisecond - time.Millisecond)
	if f.session.Phase() == PhaseAnswering {
		t.Fatalf("answers opened before the second sound finished")
	}
	f.clock.Advance(10 * time.Millisecond)
	if f.session.Phase() != PhaseAnswering {
		t.Fatalf("expected answers to be open, got %d", f.session.Phase())
	}
}

func TestWrongAnswerIsMiss(t *testing.T) {
	settings := model.GameSettings{
		QuestionCount: 5,
		Difficulty:    model.DifficultyNormal,
		SoundSpeed:    model.SpeedFast,
		Mode:          model.ModeDrum,
	}
	f := newFixture(t, settings)
	f.session.Start()
	f.waitFor(t, PhaseAnswering)

	j, ok := f.session.Answer("not-an-instrument")
	if !ok || j != model.JudgementMiss {
		t.Fatalf("expected miss, got %v/%v", j, ok)
	}
	if f.session.State().Combo != 0 || f.session.State().MissCount != 1 {
		t.Fatalf("unexpected state %+v", f.session.State())
	}
}

func TestContinueAndSetLimit(t *testing.T) {
	f := newFixture(t, reactionSettings())
	f.session.Start()
	if err := f.session.Continue(); !errors.Is(err, ErrNotFinished) {
		t.Fatalf("expected ErrNotFinished, got %v", err)
	}

	for set := 1; set <= model.MaxSets; set++ {
		for i := 0; i < 5; i++ {
			f.waitFor(t, PhaseStimulus)
			f.clock.Advance(100 * time.Millisecond)
			f.session.Press()
		}
		if f.session.State().SetIndex != set {
			t.Fatalf("expected set %d, got %d", set, f.session.State().SetIndex)
		}
		err := f.session.Continue()
		if set < model.MaxSets && err != nil {
			t.Fatalf("continue after set %d: %v", set, err)
		}
		if set == model.MaxSets && !errors.Is(err, engine.ErrSetLimitReached) {
			t.Fatalf("expected set limit, got %v", err)
		}
	}
	if len(f.history.records) != model.MaxSets {
		t.Fatalf("expected %d recorded sets, got %d", model.MaxSets, len(f.history.records))
	}
	runID := f.history.records[0].RunID
	for _, rec := range f.history.records {
		if rec.RunID != runID {
			t.Fatalf("sets of one run should share a run id")
		}
	}
	if got := f.session.Progress().TotalTrainingSessions; got != model.MaxSets {
		t.Fatalf("expected %d sessions, got %d", model.MaxSets, got)
	}
}

func TestAbortCancelsPendingStimulus(t *testing.T) {
	f := newFixture(t, reactionSettings())
	f.session.Start()
	f.session.Abort()
	f.clock.Advance(time.Minute)

	if f.count(EventStimulus) != 0 {
		t.Fatalf("stimulus fired after abort")
	}
	if f.clock.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", f.clock.Pending())
	}
	if f.session.Phase() != PhaseIdle {
		t.Fatalf("expected idle, got %d", f.session.Phase())
	}
}

func TestSaveFailureKeepsProgress(t *testing.T) {
	clock := scheduler.NewVirtual(time.Date(2025, 9, 16, 9, 0, 0, 0, time.UTC))
	s, err := New(context.Background(), reactionSettings(), Deps{
		Scheduler: clock,
		Generator: generator.NewSeeded(1),
		Progress:  progress.NewRepository(brokenKV{}),
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	f := &fixture{clock: clock, session: s}
	s.Start()
	for i := 0; i < 5; i++ {
		f.waitFor(t, PhaseStimulus)
		clock.Advance(900 * time.Millisecond)
		s.Press()
	}

	summary := s.Summary()
	if summary == nil || !errors.Is(summary.SaveErr, errBroken) {
		t.Fatalf("expected save error, got %+v", summary)
	}
	if s.Progress().TotalTrainingSessions != 1 {
		t.Fatalf("in-memory progress should still advance: %+v", s.Progress())
	}
	if summary.Result.GoodCount != 5 {
		t.Fatalf("expected five goods, got %+v", summary.Result)
	}
}

func TestLoadProgressUsesStoredValue(t *testing.T) {
	f := newFixture(t, reactionSettings())
	stored := progress.AddPerfects(progress.Initial(), 40, 90, time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC))
	if err := progress.NewRepository(f.kv).Save(context.Background(), stored); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := f.session.LoadProgress(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.session.Progress() != stored {
		t.Fatalf("expected %+v, got %+v", stored, f.session.Progress())
	}
}

func TestNewRequiresScheduler(t *testing.T) {
	_, err := New(context.Background(), reactionSettings(), Deps{})
	if !errors.Is(err, ErrNoScheduler) {
		t.Fatalf("expected ErrNoScheduler, got %v", err)
	}
}

// Run with -race: every callback and call must stay on this goroutine.
func TestLoopSchedulerKeepsSessionOnOneGoroutine(t *testing.T) {
	if testing.Short() {
		t.Skip("runs on wall-clock timers")
	}
	loop := scheduler.NewLoop()
	defer loop.Stop()
	var live, finished bool
	settings := reactionSettings()
	settings.Difficulty = model.DifficultyEasy
	s, err := New(context.Background(), settings, Deps{
		Scheduler: loop,
		Generator: generator.NewSeeded(1),
		OnEvent: func(e Event) {
			switch e.Kind {
			case EventStimulus:
				live = true
			case EventSetFinished:
				finished = true
			}
		},
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	s.Start()
	deadline := time.After(20 * time.Second)
	for !finished {
		select {
		case fn := <-loop.Tasks():
			fn()
			if live {
				live = false
				if _, ok := s.Press(); !ok {
					t.Fatalf("press on live stimulus was ignored in phase %d", s.Phase())
				}
			}
		case <-deadline:
			t.Fatalf("set did not finish, phase %d", s.Phase())
		}
	}
	if got := s.State().PerfectCount; got != 5 {
		t.Fatalf("expected 5 perfects, got %+v", s.State())
	}
}

func sequenceSettings() model.GameSettings {
	return model.GameSettings{
		QuestionCount: 5,
		Difficulty:    model.DifficultyEasy,
		SoundSpeed:    model.SpeedVeryFast,
		Mode:          model.ModeSequence,
	}
}

func TestSequenceAnswersOpenAfterEverySound(t *testing.T) {
	f := newFixture(t, sequenceSettings())
	f.session.Start()
	f.waitFor(t, PhasePresenting)

	cur := f.session.Current()
	if len(cur.Sounds) != SequenceLength || cur.Slots() != SequenceLength || len(cur.Options) != 4 {
		t.Fatalf("unexpected sequence stimulus %+v", cur)
	}
	// Three sounds of 0.6 x 500ms, each followed by a 1000ms gap.
	f.clock.Advance(3900*time.Millisecond - time.Millisecond)
	if f.session.Phase() == PhaseAnswering {
		t.Fatalf("answers opened before the sequence finished")
	}
	f.clock.Advance(10 * time.Millisecond)
	if f.session.Phase() != PhaseAnswering {
		t.Fatalf("expected answers to be open, got %d", f.session.Phase())
	}
}

func TestSequenceGradesEveryPosition(t *testing.T) {
	f := newFixture(t, sequenceSettings())
	f.session.Start()
	f.waitFor(t, PhaseAnswering)

	order := append([]string(nil), f.session.Current().order...)
	if _, ok := f.session.Answer(order[0]); ok {
		t.Fatalf("single answers are not accepted in sequence mode")
	}
	if _, ok := f.session.AnswerOrder(order[:2]); ok {
		t.Fatalf("partial order should not be graded")
	}
	if j, ok := f.session.AnswerOrder(order); !ok || j != model.JudgementPerfect {
		t.Fatalf("expected perfect for the played order, got %v/%v", j, ok)
	}

	f.waitFor(t, PhaseAnswering)
	order = append([]string(nil), f.session.Current().order...)
	order[0], order[2] = order[2], order[0]
	if j, ok := f.session.AnswerOrder(order); !ok || j != model.JudgementMiss {
		t.Fatalf("expected miss for a swapped order, got %v/%v", j, ok)
	}
	state := f.session.State()
	if state.PerfectCount != 1 || state.MissCount != 1 || state.Score != 100 {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestBalanceModeGradesSide(t *testing.T) {
	settings := model.GameSettings{
		QuestionCount: 5,
		Difficulty:    model.DifficultyNormal,
		SoundSpeed:    model.SpeedFast,
		Mode:          model.ModeBalance,
	}
	f := newFixture(t, settings)
	f.session.Start()
	for i := 0; i < 5; i++ {
		f.waitFor(t, PhaseAnswering)
		cur := f.session.Current()
		if len(cur.Options) != 2 || cur.Options[0] != AnswerLeft || cur.Options[1] != AnswerRight {
			t.Fatalf("unexpected options %v", cur.Options)
		}
		choice := cur.Cue
		if i == 0 {
			choice = AnswerLeft
			if cur.Cue == AnswerLeft {
				choice = AnswerRight
			}
		}
		f.session.Answer(choice)
	}
	result := f.session.Summary().Result
	if result.PerfectCount != 4 || result.MissCount != 1 || result.TotalScore != 400 {
		t.Fatalf("unexpected balance result %+v", result)
	}
	if result.Grade != model.GradeA {
		t.Fatalf("expected grade A for 80%%, got %s", result.Grade)
	}
}

func TestFinishRecordsClears(t *testing.T) {
	f := newFixture(t, reactionSettings())
	f.session.Start()
	for i := 0; i < 5; i++ {
		f.waitFor(t, PhaseStimulus)
		f.clock.Advance(100 * time.Millisecond)
		f.session.Press()
	}
	summary := f.session.Summary()
	if !summary.NewClear || !summary.Clear.Starred || !summary.Clear.Cleared {
		t.Fatalf("expected a new clear, got %+v", summary)
	}
	if summary.Result.Grade != model.GradeS {
		t.Fatalf("expected grade S, got %s", summary.Result.Grade)
	}
	if _, ok := f.kv.data[progress.ClearsKey]; !ok {
		t.Fatalf("clears not saved")
	}
	stored, err := progress.NewRepository(f.kv).LoadClears(context.Background())
	if err != nil || !stored.Get(model.ModeSoundCatch).Cleared {
		t.Fatalf("stored clears missing sound-catch: %+v err=%v", stored, err)
	}

	if err := f.session.Continue(); err != nil {
		t.Fatalf("continue: %v", err)
	}
	for i := 0; i < 5; i++ {
		f.waitFor(t, PhaseStimulus)
		f.clock.Advance(100 * time.Millisecond)
		f.session.Press()
	}
	if f.session.Summary().NewClear {
		t.Fatalf("repeat clear should not be new")
	}
}
