package generator

import (
	"slices"
	"testing"
	"time"

	"github.com/verte-zerg/tuiear/internal/model"
	"github.com/verte-zerg/tuiear/internal/wordlist"
)

func TestIntervalWithinSpeedRange(t *testing.T) {
	g := NewSeeded(1)
	for speed, iv := range model.SpeedIntervals {
		for i := 0; i < 200; i++ {
			d := g.Interval(speed)
			if d < time.Duration(iv.Min)*time.Millisecond || d > time.Duration(iv.Max)*time.Millisecond {
				t.Fatalf("%s: interval %v outside [%d,%d]ms", speed, d, iv.Min, iv.Max)
			}
		}
	}
}

func TestWordPairsRespectDifficulty(t *testing.T) {
	g := NewSeeded(7)
	for i := 0; i < 200; i++ {
		p := g.Pair(model.ModeWordPair, model.DifficultyEasy)
		if p.Level != model.DifficultyEasy {
			t.Fatalf("easy difficulty produced %s pair", p.Level)
		}
		p = g.Pair(model.ModeWordPair, model.DifficultyNormal)
		if p.Level == model.DifficultyHard {
			t.Fatalf("normal difficulty produced hard pair")
		}
	}
}

func TestPairModes(t *testing.T) {
	g := NewSeeded(3)
	for i := 0; i < 50; i++ {
		p := g.Pair(model.ModePitch, model.DifficultyHard)
		if !slices.Contains(pitchPairs, p) {
			t.Fatalf("pitch mode produced %+v", p)
		}
		if p.Same != (p.First == p.Second) {
			t.Fatalf("pair sameness mismatch: %+v", p)
		}
	}
}

func TestChallengeOptions(t *testing.T) {
	g := NewSeeded(11)
	for i := 0; i < 100; i++ {
		q := g.Challenge(model.DifficultyEasy, wordlist.DefaultBank)
		if len(q.Options) != 3 {
			t.Fatalf("expected 3 options, got %v", q.Options)
		}
		if !slices.Contains(q.Options, q.Answer) {
			t.Fatalf("answer %q missing from %v", q.Answer, q.Options)
		}
		seen := map[string]bool{}
		for _, o := range q.Options {
			if seen[o] {
				t.Fatalf("duplicate option in %v", q.Options)
			}
			seen[o] = true
		}
	}
}

func TestDrumKit(t *testing.T) {
	g := NewSeeded(5)
	q := g.Drum(model.DifficultyEasy)
	if len(q.Options) != 2 {
		t.Fatalf("easy kit should offer 2 options, got %v", q.Options)
	}
	q = g.Drum(model.DifficultyHard)
	if len(q.Options) != 3 || !slices.Contains(q.Options, q.Answer) {
		t.Fatalf("unexpected hard question %+v", q)
	}
	if q.Prompt == "" {
		t.Fatalf("expected a sound prompt")
	}
}

func TestCatchSound(t *testing.T) {
	g := NewSeeded(9)
	if s := g.CatchSound(); !slices.Contains(catchSounds, s) {
		t.Fatalf("unexpected cue %q", s)
	}
}

func TestChallengeDeduplicatesBank(t *testing.T) {
	bank := []wordlist.Entry{
		{Word: "사과", Level: model.DifficultyEasy},
		{Word: "바다", Level: model.DifficultyEasy},
		{Word: "바다", Level: model.DifficultyEasy},
		{Word: "바다", Level: model.DifficultyEasy},
		{Word: "나무", Level: model.DifficultyEasy},
	}
	g := NewSeeded(3)
	for i := 0; i < 100; i++ {
		q := g.Challenge(model.DifficultyEasy, bank)
		seen := map[string]bool{}
		for _, o := range q.Options {
			if seen[o] {
				t.Fatalf("duplicate option in %v", q.Options)
			}
			seen[o] = true
		}
		if len(q.Options) != 3 {
			t.Fatalf("expected 3 options, got %v", q.Options)
		}
	}
}

func TestSequence(t *testing.T) {
	cases := []struct {
		difficulty model.Difficulty
		palette    int
	}{
		{model.DifficultyEasy, 4},
		{model.DifficultyNormal, 6},
		{model.DifficultyHard, 9},
	}
	g := NewSeeded(21)
	for _, tc := range cases {
		o := g.Sequence(3, tc.difficulty)
		if len(o.Answer) != 3 || len(o.Sounds) != 3 {
			t.Fatalf("%s: expected 3 sounds, got %+v", tc.difficulty, o)
		}
		if len(o.Palette) != tc.palette {
			t.Fatalf("%s: expected palette of %d, got %v", tc.difficulty, tc.palette, o.Palette)
		}
		for i, name := range o.Answer {
			if !slices.Contains(o.Palette, name) {
				t.Fatalf("%s: answer %q missing from palette %v", tc.difficulty, name, o.Palette)
			}
			if o.Sounds[i] != animalSounds[name] {
				t.Fatalf("%s: sound %d is %q, want %q", tc.difficulty, i, o.Sounds[i], animalSounds[name])
			}
			if slices.Index(o.Answer, name) != i {
				t.Fatalf("%s: repeated animal in %v", tc.difficulty, o.Answer)
			}
		}
	}
}

func TestSequenceClampsLength(t *testing.T) {
	o := NewSeeded(2).Sequence(50, model.DifficultyEasy)
	if len(o.Answer) != len(animalSounds) || len(o.Palette) != len(animalSounds) {
		t.Fatalf("expected every animal, got %d/%d", len(o.Answer), len(o.Palette))
	}
}

func TestSide(t *testing.T) {
	g := NewSeeded(4)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[g.Side()] = true
	}
	if len(seen) != 2 || !seen[SideLeft] || !seen[SideRight] {
		t.Fatalf("unexpected sides %v", seen)
	}
}
