package engine

import "github.com/verte-zerg/tuiear/internal/model"

// Base points per judgement.
const (
	PerfectPoints = 100
	GoodPoints    = 50
	MissPoints    = 0
)

// ScoringPolicy turns a judgement into points. combo is the value after the
// judgement was applied.
type ScoringPolicy interface {
	Points(j model.Judgement, combo int) int
}

// StandardScoring awards the base points only.
type StandardScoring struct{}

// Points implements ScoringPolicy.
func (StandardScoring) Points(j model.Judgement, _ int) int {
	switch j {
	case model.JudgementPerfect:
		return PerfectPoints
	case model.JudgementGood:
		return GoodPoints
	default:
		return MissPoints
	}
}

// ComboBonusScoring adds a one-off bonus when the combo reaches a milestone.
type ComboBonusScoring struct {
	Bonuses map[int]int
}

// DefaultComboBonuses are the milestones used by the discrimination modes.
var DefaultComboBonuses = map[int]int{5: 500, 10: 1000}

// NewComboBonusScoring returns a policy with the default milestones.
func NewComboBonusScoring() ComboBonusScoring {
	return ComboBonusScoring{Bonuses: DefaultComboBonuses}
}

// Points implements ScoringPolicy.
func (p ComboBonusScoring) Points(j model.Judgement, combo int) int {
	points := StandardScoring{}.Points(j, combo)
	if j == model.JudgementPerfect {
		points += p.Bonuses[combo]
	}
	return points
}

// PolicyFor returns the scoring policy used by a training mode.
func PolicyFor(mode model.TrainingMode) ScoringPolicy {
	if mode.IsPair() {
		return NewComboBonusScoring()
	}
	return StandardScoring{}
}
