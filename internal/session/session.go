// Package session drives a training round with scheduled stimuli.
//
// A Session is not safe for concurrent use. Calls and scheduler callbacks
// must all happen on one goroutine, so New requires a Scheduler that
// delivers callbacks to its owner: scheduler.Loop, scheduler.Virtual, or the
// TUI's tick scheduler.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuiear/internal/avatar"
	"github.com/verte-zerg/tuiear/internal/engine"
	"github.com/verte-zerg/tuiear/internal/generator"
	"github.com/verte-zerg/tuiear/internal/model"
	"github.com/verte-zerg/tuiear/internal/progress"
	"github.com/verte-zerg/tuiear/internal/scheduler"
	"github.com/verte-zerg/tuiear/internal/wordlist"
)

// Pacing constants.
const (
	StartDelay     = 1000 * time.Millisecond
	QuestionGap    = 2000 * time.Millisecond
	SecondSoundFor = 1500 * time.Millisecond
	// SequenceGap separates the sounds of a sequence question.
	SequenceGap = 1000 * time.Millisecond
	// SequenceLength is how many sounds a sequence question plays.
	SequenceLength = 3
)

// Answers accepted in pair modes.
const (
	AnswerSame      = "same"
	AnswerDifferent = "different"
	AnswerLeft      = generator.SideLeft
	AnswerRight     = generator.SideRight
)

// Session errors.
var (
	// ErrNotFinished is returned by Continue before the current set completes.
	ErrNotFinished = errors.New("set not finished")
	// ErrNoScheduler is returned by New when Deps.Scheduler is nil.
	ErrNoScheduler = errors.New("session requires a scheduler")
)

// Phase is the session's position within a question.
type Phase int

// Session phases.
const (
	PhaseIdle Phase = iota
	PhaseWaiting
	PhaseStimulus
	PhasePresenting
	PhaseAnswering
	PhaseFinished
)

// History records completed sets.
type History interface {
	InsertSet(ctx context.Context, rec model.SetRecord) (int64, error)
}

// Deps are the collaborators of a Session.
type Deps struct {
	Scheduler scheduler.Scheduler
	Generator *generator.Generator
	Progress  *progress.Repository
	History   History
	Words     []wordlist.Entry
	OnEvent   func(Event)
}

// Session owns one training round and its pending timer.
type Session struct {
	ctx        context.Context
	settings   model.GameSettings
	thresholds model.TimingThreshold
	policy     engine.ScoringPolicy
	deps       Deps

	runID       string
	state       model.RoundState
	phase       Phase
	pending     scheduler.Handle
	presentedAt time.Time
	current     Stimulus

	progress   model.UserProgress
	calendar   progress.Calendar
	clears     progress.Clears
	rankPoints int
	summary    *Summary
}

// New validates settings and returns an idle session.
func New(ctx context.Context, settings model.GameSettings, deps Deps) (*Session, error) {
	if err := engine.ValidateSettings(settings); err != nil {
		return nil, err
	}
	if deps.Scheduler == nil {
		return nil, ErrNoScheduler
	}
	if deps.Generator == nil {
		deps.Generator = generator.New()
	}
	if len(deps.Words) == 0 {
		deps.Words = wordlist.DefaultBank
	}
	return &Session{
		ctx:        ctx,
		settings:   settings,
		thresholds: engine.Thresholds(settings),
		policy:     engine.PolicyFor(settings.Mode),
		deps:       deps,
		progress:   progress.Initial(),
		calendar:   progress.NewCalendar(),
		clears:     progress.NewClears(),
	}, nil
}

// LoadProgress reads stored progress. On failure the session keeps the
// initial progress and stays usable.
func (s *Session) LoadProgress() error {
	if s.deps.Progress == nil {
		return nil
	}
	p, err := s.deps.Progress.Load(s.ctx)
	s.progress = p
	cal, cerr := s.deps.Progress.LoadCalendar(s.ctx)
	s.calendar = cal
	clears, clerr := s.deps.Progress.LoadClears(s.ctx)
	s.clears = clears
	return errors.Join(err, cerr, clerr)
}

// Start resets the round and schedules the first question.
func (s *Session) Start() {
	s.cancelPending()
	state, err := engine.StartRound(s.settings)
	if err != nil {
		// Settings were validated in New.
		panic(err)
	}
	s.state = state
	s.runID = uuid.NewString()
	s.rankPoints = 0
	s.summary = nil
	s.scheduleNext(StartDelay)
}

// Continue starts the next set after a finished one.
func (s *Session) Continue() error {
	if s.phase != PhaseFinished {
		return ErrNotFinished
	}
	next, err := engine.ResetForNextSet(s.state)
	if err != nil {
		return err
	}
	s.state = next
	s.summary = nil
	s.scheduleNext(StartDelay)
	return nil
}

// Abort discards the round and cancels the pending timer.
func (s *Session) Abort() {
	s.cancelPending()
	s.state = model.RoundState{}
	s.phase = PhaseIdle
	s.current = Stimulus{}
	s.summary = nil
}

// Press judges a reaction to the live stimulus. Presses with no live
// stimulus, and presses slower than the miss cutoff, are ignored.
func (s *Session) Press() (model.Judgement, bool) {
	if s.phase != PhaseStimulus {
		return model.JudgementNone, false
	}
	reaction := s.deps.Scheduler.Now().Sub(s.presentedAt)
	next, j := engine.Judge(s.state, reaction, s.thresholds, s.policy)
	if j == model.JudgementNone {
		return j, false
	}
	s.cancelPending()
	s.state = next
	s.afterJudge(j)
	return j, true
}

// Answer grades a choice for the open question. Sequence questions take
// AnswerOrder instead.
func (s *Session) Answer(choice string) (model.Judgement, bool) {
	if s.phase != PhaseAnswering || s.settings.Mode.IsSequence() {
		return model.JudgementNone, false
	}
	return s.grade(s.current.Correct(choice)), true
}

// AnswerOrder grades the order of a sequence question. An answer that does
// not fill every slot is not accepted.
func (s *Session) AnswerOrder(choices []string) (model.Judgement, bool) {
	if s.phase != PhaseAnswering || !s.settings.Mode.IsSequence() {
		return model.JudgementNone, false
	}
	if len(choices) != s.current.Slots() {
		return model.JudgementNone, false
	}
	return s.grade(s.current.CorrectOrder(choices)), true
}

func (s *Session) grade(correct bool) model.Judgement {
	reaction := s.deps.Scheduler.Now().Sub(s.presentedAt)
	next, j := engine.JudgeAnswer(s.state, correct, reaction, s.policy)
	s.state = next
	s.rankPoints += avatar.RankPoints(j, next.Combo)
	s.afterJudge(j)
	return j
}

// Settings returns the round settings.
func (s *Session) Settings() model.GameSettings { return s.settings }

// Thresholds returns the resolved judgement cutoffs.
func (s *Session) Thresholds() model.TimingThreshold { return s.thresholds }

// State returns the current round state.
func (s *Session) State() model.RoundState { return s.state }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Current returns the live stimulus.
func (s *Session) Current() Stimulus { return s.current }

// Progress returns the lifetime progress.
func (s *Session) Progress() model.UserProgress { return s.progress }

// Clears returns the per-mode milestones.
func (s *Session) Clears() progress.Clears { return s.clears }

// Streak returns the consecutive training days ending today.
func (s *Session) Streak() int { return s.calendar.Streak(s.deps.Scheduler.Now()) }

// Rank returns the discrimination rank reached in this run.
func (s *Session) Rank() avatar.Rank { return avatar.RankFor(s.rankPoints) }

// Summary returns the last finished set, if any.
func (s *Session) Summary() *Summary { return s.summary }

func (s *Session) scheduleNext(delay time.Duration) {
	s.phase = PhaseWaiting
	s.current = Stimulus{}
	if s.settings.Mode.IsReaction() {
		delay = s.deps.Generator.Interval(s.settings.SoundSpeed)
	}
	s.pending = s.deps.Scheduler.Schedule(delay, s.present)
}

func (s *Session) present() {
	s.pending = nil
	s.current = s.nextStimulus()
	if s.settings.Mode.IsReaction() {
		s.phase = PhaseStimulus
		s.presentedAt = s.deps.Scheduler.Now()
		s.emit(Event{Kind: EventStimulus, Stimulus: s.current, State: s.state})
		s.pending = s.deps.Scheduler.Schedule(s.thresholds.MissDuration(), s.expire)
		return
	}
	s.phase = PhasePresenting
	s.emit(Event{Kind: EventStimulus, Stimulus: s.current, State: s.state})
	s.pending = s.deps.Scheduler.Schedule(s.presentationDelay(), s.openAnswers)
}

func (s *Session) nextStimulus() Stimulus {
	gen := s.deps.Generator
	mode := s.settings.Mode
	switch {
	case mode.IsReaction():
		return Stimulus{Mode: mode, Cue: gen.CatchSound()}
	case mode.IsPair():
		p := gen.Pair(mode, s.settings.Difficulty)
		return Stimulus{
			Mode:    mode,
			First:   p.First,
			Second:  p.Second,
			Options: []string{AnswerSame, AnswerDifferent},
			answer:  pairAnswer(p.Same),
		}
	case mode.IsSequence():
		o := gen.Sequence(SequenceLength, s.settings.Difficulty)
		return Stimulus{
			Mode:    mode,
			Sounds:  o.Sounds,
			Options: o.Palette,
			order:   o.Answer,
		}
	case mode == model.ModeBalance:
		side := gen.Side()
		return Stimulus{
			Mode:    mode,
			Cue:     side,
			Options: []string{AnswerLeft, AnswerRight},
			answer:  side,
		}
	case mode == model.ModeDrum:
		return fromQuestion(mode, gen.Drum(s.settings.Difficulty))
	default:
		return fromQuestion(mode, gen.Challenge(s.settings.Difficulty, s.deps.Words))
	}
}

// presentationDelay is how long the sounds play before answers open: the
// first sound takes 60% of the minimum interval, the gap the remaining 40%.
func (s *Session) presentationDelay() time.Duration {
	minInterval := time.Duration(model.SpeedIntervals[s.settings.SoundSpeed].Min) * time.Millisecond
	switch {
	case s.settings.Mode.IsPair():
		return minInterval*6/10 + minInterval*4/10 + SecondSoundFor
	case s.settings.Mode.IsSequence():
		return time.Duration(s.current.Slots()) * (minInterval*6/10 + SequenceGap)
	}
	return minInterval * 6 / 10
}

func (s *Session) openAnswers() {
	s.pending = nil
	s.phase = PhaseAnswering
	s.presentedAt = s.deps.Scheduler.Now()
	s.emit(Event{Kind: EventAnswersOpen, Stimulus: s.current, State: s.state})
}

func (s *Session) expire() {
	s.pending = nil
	if s.phase != PhaseStimulus {
		return
	}
	next, j := engine.Judge(s.state, s.thresholds.MissDuration(), s.thresholds, s.policy)
	s.state = next
	s.afterJudge(j)
}

func (s *Session) afterJudge(j model.Judgement) {
	s.emit(Event{Kind: EventJudged, Judgement: j, State: s.state, Stimulus: s.current})
	if engine.IsSetComplete(s.state, s.settings) {
		s.finish()
		return
	}
	s.scheduleNext(QuestionGap)
}

func (s *Session) finish() {
	now := s.deps.Scheduler.Now()
	result := engine.FinishSet(s.state, s.settings)
	update := progress.Apply(s.progress, result, now)
	s.progress = update.After
	s.calendar.Mark(now)
	clear, changed := s.clears.Record(s.settings.Mode, result)

	summary := &Summary{
		Result:      result,
		Update:      update,
		CanContinue: engine.CanContinue(s.state),
		Rank:        avatar.RankFor(s.rankPoints),
		Clear:       clear,
		NewClear:    changed,
	}
	summary.SaveErr = s.persist(now, result)
	s.summary = summary
	s.phase = PhaseFinished
	s.current = Stimulus{}
	s.emit(Event{Kind: EventSetFinished, State: s.state, Summary: summary})
}

func (s *Session) persist(now time.Time, result model.GameResult) error {
	var errs []error
	if s.deps.Progress != nil {
		if err := s.deps.Progress.Save(s.ctx, s.progress); err != nil {
			errs = append(errs, err)
		}
		if err := s.deps.Progress.SaveCalendar(s.ctx, s.calendar); err != nil {
			errs = append(errs, err)
		}
		if err := s.deps.Progress.SaveClears(s.ctx, s.clears); err != nil {
			errs = append(errs, err)
		}
	}
	if s.deps.History != nil {
		rec := model.SetRecord{
			RunID:         s.runID,
			EndedAt:       now,
			Mode:          s.settings.Mode,
			Difficulty:    s.settings.Difficulty,
			QuestionCount: s.settings.QuestionCount,
			SetIndex:      s.state.SetIndex,
			PerfectCount:  result.PerfectCount,
			GoodCount:     result.GoodCount,
			MissCount:     result.MissCount,
			Score:         result.TotalScore,
			MaxCombo:      result.MaxCombo,
			AvgReactionMs: result.AverageReactionTime.Milliseconds(),
			Accuracy:      result.Accuracy,
		}
		if _, err := s.deps.History.InsertSet(s.ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("failed to record set: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (s *Session) cancelPending() {
	if s.pending != nil {
		s.pending.Cancel()
		s.pending = nil
	}
}

func (s *Session) emit(e Event) {
	if s.deps.OnEvent != nil {
		s.deps.OnEvent(e)
	}
}

func pairAnswer(same bool) string {
	if same {
		return AnswerSame
	}
	return AnswerDifferent
}

func fromQuestion(mode model.TrainingMode, q generator.Question) Stimulus {
	return Stimulus{
		Mode:    mode,
		Prompt:  q.Prompt,
		Hint:    q.Hint,
		Options: q.Options,
		answer:  q.Answer,
	}
}
