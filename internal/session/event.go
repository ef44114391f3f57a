package session

import (
	"slices"

	"github.com/verte-zerg/tuiear/internal/avatar"
	"github.com/verte-zerg/tuiear/internal/model"
	"github.com/verte-zerg/tuiear/internal/progress"
)

// EventKind identifies a session event.
type EventKind int

// Session events.
const (
	EventStimulus EventKind = iota
	EventAnswersOpen
	EventJudged
	EventSetFinished
)

// Event is delivered to Deps.OnEvent.
type Event struct {
	Kind      EventKind
	Stimulus  Stimulus
	Judgement model.Judgement
	State     model.RoundState
	Summary   *Summary
}

// Stimulus is what the user reacts to or answers.
type Stimulus struct {
	Mode model.TrainingMode
	// Cue labels a sound-catch stimulus.
	Cue string
	// First and Second are the sounds of a pair question.
	First  string
	Second string
	// Prompt and Hint describe a choice question.
	Prompt  string
	Hint    string
	// Sounds are the cues of a sequence question in play order.
	Sounds  []string
	Options []string
	answer  string
	order   []string
}

// Correct reports whether choice answers the stimulus.
func (s Stimulus) Correct(choice string) bool {
	return s.answer != "" && choice == s.answer
}

// CorrectOrder reports whether every position of choices matches the
// sequence that was played.
func (s Stimulus) CorrectOrder(choices []string) bool {
	return len(s.order) > 0 && slices.Equal(s.order, choices)
}

// Slots returns how many answers a sequence question takes.
func (s Stimulus) Slots() int {
	return len(s.order)
}

// Summary describes a finished set.
type Summary struct {
	Result      model.GameResult
	Update      progress.Update
	CanContinue bool
	Rank        avatar.Rank
	// Clear is the mode's milestones after the set; NewClear is set when
	// the set starred or cleared the mode for the first time.
	Clear    model.ModeClear
	NewClear bool
	// SaveErr is set when persisting progress or history failed. The
	// in-memory progress is still valid.
	SaveErr error
}
