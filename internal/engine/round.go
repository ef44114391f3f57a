// Package engine implements the game round state machine.
package engine

import (
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/tuiear/internal/model"
)

// Phase is the lifecycle position of a round.
type Phase int

// Round phases.
const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseSetComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseInProgress:
		return "in-progress"
	case PhaseSetComplete:
		return "set-complete"
	default:
		return "not-started"
	}
}

// ValidateSettings checks settings against the supported values.
func ValidateSettings(settings model.GameSettings) error {
	if !slices.Contains(model.QuestionCountOptions, settings.QuestionCount) {
		return configErr("question count", settings.QuestionCount)
	}
	if _, ok := model.DifficultyThresholds[settings.Difficulty]; !ok {
		return configErr("difficulty", settings.Difficulty)
	}
	if _, ok := model.SpeedIntervals[settings.SoundSpeed]; !ok {
		return configErr("sound speed", settings.SoundSpeed)
	}
	if !slices.Contains(model.TrainingModes, settings.Mode) {
		return configErr("training mode", settings.Mode)
	}
	if t := settings.Thresholds; !t.IsZero() {
		if t.Perfect <= 0 || t.Good <= t.Perfect || t.Miss <= t.Good {
			return configErr("thresholds", t)
		}
	}
	return nil
}

// Thresholds resolves the cutoffs for the settings.
func Thresholds(settings model.GameSettings) model.TimingThreshold {
	if !settings.Thresholds.IsZero() {
		return settings.Thresholds
	}
	return model.DifficultyThresholds[settings.Difficulty]
}

// StartRound returns a fully reset round for the first set.
func StartRound(settings model.GameSettings) (model.RoundState, error) {
	if err := ValidateSettings(settings); err != nil {
		return model.RoundState{}, err
	}
	return newRound(settings.QuestionCount, 1), nil
}

func newRound(questionCount, setIndex int) model.RoundState {
	return model.RoundState{
		QuestionCount: questionCount,
		SetIndex:      setIndex,
		ReactionTimes: []time.Duration{},
		LastJudgement: model.JudgementNone,
	}
}

// Classify maps a reaction time onto a judgement. Reactions slower than the
// miss cutoff yield JudgementNone.
func Classify(reaction time.Duration, t model.TimingThreshold) model.Judgement {
	switch {
	case reaction <= ms(t.Perfect):
		return model.JudgementPerfect
	case reaction <= ms(t.Good):
		return model.JudgementGood
	case reaction <= ms(t.Miss):
		return model.JudgementMiss
	default:
		return model.JudgementNone
	}
}

// Judge folds a timed response into the round. A reaction slower than the
// miss cutoff is discarded: the state comes back unchanged with
// JudgementNone. Judgements after the set is complete are ignored too.
func Judge(state model.RoundState, reaction time.Duration, t model.TimingThreshold, policy ScoringPolicy) (model.RoundState, model.Judgement) {
	if complete(state) {
		return state, model.JudgementNone
	}
	j := Classify(reaction, t)
	if j == model.JudgementNone {
		return state, j
	}
	return apply(state, j, reaction, policy), j
}

// JudgeAnswer folds a graded answer into the round: correct answers take the
// Perfect path, wrong ones the Miss path.
func JudgeAnswer(state model.RoundState, correct bool, reaction time.Duration, policy ScoringPolicy) (model.RoundState, model.Judgement) {
	if complete(state) {
		return state, model.JudgementNone
	}
	j := model.JudgementMiss
	if correct {
		j = model.JudgementPerfect
	}
	return apply(state, j, reaction, policy), j
}

func apply(state model.RoundState, j model.Judgement, reaction time.Duration, policy ScoringPolicy) model.RoundState {
	if policy == nil {
		policy = StandardScoring{}
	}
	next := state
	switch j {
	case model.JudgementPerfect:
		next.Combo++
		next.MaxCombo = max(next.MaxCombo, next.Combo)
		next.PerfectCount++
		next.ReactionTimes = append(slices.Clip(state.ReactionTimes), reaction)
	case model.JudgementGood:
		next.Combo = 0
		next.GoodCount++
		next.ReactionTimes = append(slices.Clip(state.ReactionTimes), reaction)
	case model.JudgementMiss:
		next.Combo = 0
		next.MissCount++
	}
	next.Score += policy.Points(j, next.Combo)
	next.QuestionIndex++
	next.LastJudgement = j
	return next
}

func complete(state model.RoundState) bool {
	return state.QuestionCount > 0 && state.QuestionIndex >= state.QuestionCount
}

// IsSetComplete reports whether every configured question was judged.
func IsSetComplete(state model.RoundState, settings model.GameSettings) bool {
	return state.QuestionIndex >= settings.QuestionCount
}

// PhaseOf reports where the round is in its lifecycle.
func PhaseOf(state model.RoundState, settings model.GameSettings) Phase {
	switch {
	case state.SetIndex == 0:
		return PhaseNotStarted
	case IsSetComplete(state, settings):
		return PhaseSetComplete
	default:
		return PhaseInProgress
	}
}

// Accuracy is the share of Perfect and Good answers, in percent.
func Accuracy(state model.RoundState, settings model.GameSettings) float64 {
	if settings.QuestionCount <= 0 {
		return 0
	}
	return float64(state.PerfectCount+state.GoodCount) * 100 / float64(settings.QuestionCount)
}

// FinishSet projects a terminal round onto a result.
func FinishSet(state model.RoundState, settings model.GameSettings) model.GameResult {
	return model.GameResult{
		TotalQuestions:      settings.QuestionCount,
		PerfectCount:        state.PerfectCount,
		GoodCount:           state.GoodCount,
		MissCount:           state.MissCount,
		TotalScore:          state.Score,
		MaxCombo:            state.MaxCombo,
		AverageReactionTime: averageReaction(state.ReactionTimes),
		CompletedSets:       state.SetIndex,
		Accuracy:            Accuracy(state, settings),
		Grade:               GradeFor(Accuracy(state, settings)),
	}
}

func averageReaction(times []time.Duration) time.Duration {
	if len(times) == 0 {
		return 0
	}
	return lo.Sum(times) / time.Duration(len(times))
}

// ResetForNextSet starts the following set, keeping the set length.
func ResetForNextSet(state model.RoundState) (model.RoundState, error) {
	if state.SetIndex >= model.MaxSets {
		return state, ErrSetLimitReached
	}
	return newRound(state.QuestionCount, state.SetIndex+1), nil
}

// CanContinue reports whether another set may follow the given one.
func CanContinue(state model.RoundState) bool {
	return state.SetIndex < model.MaxSets
}

func ms(v int64) time.Duration {
	return time.Duration(v) * time.Millisecond
}
