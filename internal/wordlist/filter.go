package wordlist

import (
	"github.com/samber/lo"

	"github.com/verte-zerg/tuiear/internal/model"
)

// ForDifficulty keeps the entries allowed at a difficulty: easy words only on
// easy, easy and normal words on normal, everything on hard.
func ForDifficulty(entries []Entry, difficulty model.Difficulty) []Entry {
	limit := rank(difficulty)
	return lo.Filter(entries, func(e Entry, _ int) bool {
		return rank(e.Level) <= limit
	})
}

func rank(d model.Difficulty) int {
	switch d {
	case model.DifficultyNormal:
		return 1
	case model.DifficultyHard:
		return 2
	default:
		return 0
	}
}
