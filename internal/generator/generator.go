// Package generator builds randomized training stimuli.
package generator

import (
	"math/rand"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/tuiear/internal/model"
	"github.com/verte-zerg/tuiear/internal/wordlist"
)

// Generator produces randomized stimuli.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Interval picks a delay within the speed's range.
func (g *Generator) Interval(speed model.SoundSpeed) time.Duration {
	iv, ok := model.SpeedIntervals[speed]
	if !ok {
		iv = model.SpeedIntervals[model.SpeedNormal]
	}
	span := iv.Max - iv.Min
	ms := iv.Min
	if span > 0 {
		ms += g.rnd.Int63n(span + 1)
	}
	return time.Duration(ms) * time.Millisecond
}

// CatchSound picks the cue shown for a sound-catch stimulus.
func (g *Generator) CatchSound() string {
	return catchSounds[g.rnd.Intn(len(catchSounds))]
}

// Pair picks a same/different pair for a discrimination mode.
func (g *Generator) Pair(mode model.TrainingMode, difficulty model.Difficulty) Pair {
	var pairs []Pair
	switch mode {
	case model.ModePitch:
		pairs = pitchPairs
	case model.ModeDuration:
		pairs = durationPairs
	default:
		pairs = wordPairsFor(difficulty)
	}
	return pairs[g.rnd.Intn(len(pairs))]
}

// Challenge picks a word-identification question with three options.
func (g *Generator) Challenge(difficulty model.Difficulty, bank []wordlist.Entry) Question {
	pool := wordlist.ForDifficulty(bank, difficulty)
	if len(pool) == 0 {
		pool = bank
	}
	target := pool[g.rnd.Intn(len(pool))]
	distractors := lo.Uniq(lo.FilterMap(bank, func(e wordlist.Entry, _ int) (string, bool) {
		return e.Word, e.Word != target.Word
	}))
	return Question{
		Prompt:  target.Pronunciation,
		Hint:    target.Hint,
		Answer:  target.Word,
		Options: g.options(target.Word, distractors, 2),
	}
}

// Drum picks an instrument-identification question.
func (g *Generator) Drum(difficulty model.Difficulty) Question {
	kit := drumKitFor(difficulty)
	target := kit[g.rnd.Intn(len(kit))]
	distractors := lo.Without(kit, target)
	return Question{
		Prompt:  drumSounds[target],
		Answer:  target,
		Options: g.options(target, distractors, 2),
	}
}

// Sequence picks n distinct animals to be heard in order, and a shuffled
// palette to answer from that holds them among distractors.
func (g *Generator) Sequence(n int, difficulty model.Difficulty) Order {
	names := g.shuffled(animalNames())
	n = min(max(n, 1), len(names))
	size := min(max(paletteSizeFor(difficulty), n), len(names))
	answer := names[:n]
	return Order{
		Sounds:  lo.Map(answer, func(name string, _ int) string { return animalSounds[name] }),
		Answer:  append([]string(nil), answer...),
		Palette: g.shuffled(names[:size]),
	}
}

// Side picks the ear a balance tone plays in.
func (g *Generator) Side() string {
	return sides[g.rnd.Intn(len(sides))]
}

func (g *Generator) shuffled(items []string) []string {
	out := append([]string(nil), items...)
	g.rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func (g *Generator) options(answer string, distractors []string, wrong int) []string {
	shuffled := g.shuffled(distractors)
	if wrong > len(shuffled) {
		wrong = len(shuffled)
	}
	opts := append([]string{answer}, shuffled[:wrong]...)
	g.rnd.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
	return opts
}
