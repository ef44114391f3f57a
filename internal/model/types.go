// Package model defines shared data structures.
package model

import "time"

// Difficulty selects the timing thresholds for a round.
type Difficulty string

// Supported difficulties.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// TimingThreshold holds the judgement cutoffs in milliseconds.
type TimingThreshold struct {
	Perfect int64
	Good    int64
	Miss    int64
}

// IsZero reports whether no cutoff is set.
func (t TimingThreshold) IsZero() bool {
	return t.Perfect == 0 && t.Good == 0 && t.Miss == 0
}

// MissDuration returns the miss cutoff as a duration.
func (t TimingThreshold) MissDuration() time.Duration {
	return time.Duration(t.Miss) * time.Millisecond
}

// DifficultyThresholds maps each difficulty to its cutoffs.
var DifficultyThresholds = map[Difficulty]TimingThreshold{
	DifficultyEasy:   {Perfect: 1500, Good: 2500, Miss: 4000},
	DifficultyNormal: {Perfect: 800, Good: 1500, Miss: 3000},
	DifficultyHard:   {Perfect: 500, Good: 1000, Miss: 2000},
}

// QuestionCountOptions lists the allowed questions per set.
var QuestionCountOptions = []int{5, 10, 15}

// MaxSets caps how many sets one session may run.
const MaxSets = 3

// SoundSpeed selects the inter-stimulus interval range.
type SoundSpeed string

// Supported sound speeds.
const (
	SpeedVerySlow SoundSpeed = "veryslow"
	SpeedSlow     SoundSpeed = "slow"
	SpeedNormal   SoundSpeed = "normal"
	SpeedFast     SoundSpeed = "fast"
	SpeedVeryFast SoundSpeed = "veryfast"
)

// SpeedInterval is an inclusive millisecond range between stimuli.
type SpeedInterval struct {
	Min   int64
	Max   int64
	Label string
}

// SpeedIntervals maps each speed to its interval range.
var SpeedIntervals = map[SoundSpeed]SpeedInterval{
	SpeedVerySlow: {Min: 4000, Max: 6000, Label: "very slow"},
	SpeedSlow:     {Min: 2500, Max: 4500, Label: "slow"},
	SpeedNormal:   {Min: 1500, Max: 3500, Label: "normal"},
	SpeedFast:     {Min: 800, Max: 2200, Label: "fast"},
	SpeedVeryFast: {Min: 500, Max: 1500, Label: "very fast"},
}

// TrainingMode selects the stimulus generator and grading rule.
type TrainingMode string

// Supported training modes.
const (
	ModeSoundCatch    TrainingMode = "sound-catch"
	ModePitch         TrainingMode = "pitch"
	ModeDuration      TrainingMode = "duration"
	ModeWordPair      TrainingMode = "word-pair"
	ModeWordChallenge TrainingMode = "word-challenge"
	ModeDrum          TrainingMode = "drum"
	ModeSequence      TrainingMode = "sequence"
	ModeBalance       TrainingMode = "balance"
)

// TrainingModes lists every mode in menu order.
var TrainingModes = []TrainingMode{
	ModeSoundCatch,
	ModePitch,
	ModeDuration,
	ModeWordPair,
	ModeWordChallenge,
	ModeDrum,
	ModeSequence,
	ModeBalance,
}

// IsReaction reports whether the mode is judged on reaction time alone.
func (m TrainingMode) IsReaction() bool {
	return m == ModeSoundCatch
}

// IsPair reports whether the mode presents two sounds for comparison.
func (m TrainingMode) IsPair() bool {
	return m == ModePitch || m == ModeDuration || m == ModeWordPair
}

// IsSequence reports whether the mode is answered with an ordered list.
func (m TrainingMode) IsSequence() bool {
	return m == ModeSequence
}

// GameSettings is the per-round configuration chosen by the user.
type GameSettings struct {
	QuestionCount int
	Difficulty    Difficulty
	SoundSpeed    SoundSpeed
	Mode          TrainingMode
	// Thresholds overrides the difficulty table when non-zero.
	Thresholds TimingThreshold
}

// Judgement classifies a single response.
type Judgement int

// Judgement values.
const (
	JudgementNone Judgement = iota
	JudgementPerfect
	JudgementGood
	JudgementMiss
)

func (j Judgement) String() string {
	switch j {
	case JudgementPerfect:
		return "Perfect"
	case JudgementGood:
		return "Good"
	case JudgementMiss:
		return "Miss"
	default:
		return "None"
	}
}

// RoundState is the mutable per-set record.
type RoundState struct {
	// QuestionCount is the configured length of the current set.
	QuestionCount int
	QuestionIndex int
	SetIndex      int
	Score         int
	Combo         int
	MaxCombo      int
	PerfectCount  int
	GoodCount     int
	MissCount     int
	ReactionTimes []time.Duration
	LastJudgement Judgement
}

// Judged returns the number of questions judged so far.
func (s RoundState) Judged() int {
	return s.PerfectCount + s.GoodCount + s.MissCount
}

// GameResult is the snapshot produced when a set completes.
type GameResult struct {
	TotalQuestions      int
	PerfectCount        int
	GoodCount           int
	MissCount           int
	TotalScore          int
	MaxCombo            int
	AverageReactionTime time.Duration
	CompletedSets       int
	Accuracy            float64
	Grade               Grade
}

// Grade is the letter shown for a set's accuracy.
type Grade string

// Grades from best to worst.
const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// ModeClear marks the milestones reached in one training mode. A mode is
// starred once a set passes and cleared once a set has no misses.
type ModeClear struct {
	Starred bool `json:"starred"`
	Cleared bool `json:"cleared"`
}

// UserProgress is the persisted lifetime record.
type UserProgress struct {
	CurrentLevel          int     `json:"currentLevel"`
	TotalPerfects         int     `json:"totalPerfects"`
	TotalTrainingSessions int     `json:"totalTrainingSessions"`
	ConsecutiveDays       int     `json:"consecutiveDays"`
	AverageAccuracy       float64 `json:"averageAccuracy"`
	LastTrainingDate      string  `json:"lastTrainingDate"`
}

// DateLayout formats calendar dates in progress records.
const DateLayout = "2006-01-02"

// AvatarStage groups avatar levels into growth stages.
type AvatarStage string

// Avatar stages in growth order.
const (
	StageSeed   AvatarStage = "seed"
	StageSprout AvatarStage = "sprout"
	StageBud    AvatarStage = "bud"
	StageBloom  AvatarStage = "bloom"
	StageMaster AvatarStage = "master"
)

// AvatarLevel is one entry of the static level table.
type AvatarLevel struct {
	Level            int
	Stage            AvatarStage
	Name             string
	Emoji            string
	Description      string
	RequiredPerfects int
	Color            string
	UnlockMessage    string
}

// SetRecord is a completed set as stored in history.
type SetRecord struct {
	ID            int64
	RunID         string
	EndedAt       time.Time
	Mode          TrainingMode
	Difficulty    Difficulty
	QuestionCount int
	SetIndex      int
	PerfectCount  int
	GoodCount     int
	MissCount     int
	Score         int
	MaxCombo      int
	AvgReactionMs int64
	Accuracy      float64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// ModeAggregate summarizes history for one training mode.
type ModeAggregate struct {
	Mode          TrainingMode
	Sets          int
	PerfectCount  int
	GoodCount     int
	MissCount     int
	BestScore     int
	BestCombo     int
	ReactionSumMs int64
	ReactionSets  int64
}
