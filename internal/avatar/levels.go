// Package avatar maps cumulative Perfect counts onto avatar levels.
package avatar

import (
	"fmt"

	"github.com/verte-zerg/tuiear/internal/model"
)

// Levels is the level table, ascending by RequiredPerfects.
var Levels = []model.AvatarLevel{
	{Level: 1, Stage: model.StageSeed, Name: "Seed Ear", Emoji: "🌱", Description: "Just started hearing training", RequiredPerfects: 0, Color: "#A8E6CF", UnlockMessage: "The first step of hearing training!"},
	{Level: 2, Stage: model.StageSeed, Name: "Sturdy Seed", Emoji: "🌱", Description: "Training steadily", RequiredPerfects: 30, Color: "#8FD9A8", UnlockMessage: "The seed is getting stronger!"},
	{Level: 3, Stage: model.StageSprout, Name: "Sprout Ear", Emoji: "🌿", Description: "Starting to detect sounds", RequiredPerfects: 100, Color: "#76C893", UnlockMessage: "A sprout appeared! Sounds are coming through."},
	{Level: 4, Stage: model.StageSprout, Name: "Growing Sprout", Emoji: "🌿", Description: "Hearing keeps developing", RequiredPerfects: 200, Color: "#52B788", UnlockMessage: "The sprout is growing fast!"},
	{Level: 5, Stage: model.StageBud, Name: "Bud Ear", Emoji: "🌺", Description: "Telling sounds apart clearly", RequiredPerfects: 350, Color: "#FFB4E6", UnlockMessage: "A bud formed! Discrimination improved."},
	{Level: 6, Stage: model.StageBud, Name: "Opening Bud", Emoji: "🌺", Description: "Hearing improved a lot", RequiredPerfects: 500, Color: "#FFA0DD", UnlockMessage: "The bud is getting ready to open!"},
	{Level: 7, Stage: model.StageBud, Name: "Unfolding Bud", Emoji: "🌺", Description: "Excellent hearing", RequiredPerfects: 700, Color: "#FF8CD4", UnlockMessage: "It is about to bloom!"},
	{Level: 8, Stage: model.StageBloom, Name: "Blooming Ear", Emoji: "🌸", Description: "Clear hearing", RequiredPerfects: 1000, Color: "#FFD6E8", UnlockMessage: "Congratulations! The flower is in bloom!"},
	{Level: 9, Stage: model.StageBloom, Name: "Radiant Flower", Emoji: "🌸", Description: "Outstanding hearing", RequiredPerfects: 1500, Color: "#FFC2DD", UnlockMessage: "The flower shines even brighter!"},
	{Level: 10, Stage: model.StageBloom, Name: "Full Bloom", Emoji: "🌸", Description: "Top-level hearing", RequiredPerfects: 2000, Color: "#FFAED4", UnlockMessage: "In full bloom! Amazing!"},
	{Level: 11, Stage: model.StageMaster, Name: "Shining Ear", Emoji: "✨", Description: "Hearing master", RequiredPerfects: 3000, Color: "#FFD700", UnlockMessage: "Master level reached!"},
}

func init() {
	if err := ValidateTable(Levels); err != nil {
		panic(err)
	}
}

// ValidateTable checks that thresholds start at zero and strictly increase
// and that level numbers are contiguous from 1.
func ValidateTable(levels []model.AvatarLevel) error {
	if len(levels) == 0 {
		return fmt.Errorf("level table is empty")
	}
	if levels[0].RequiredPerfects != 0 {
		return fmt.Errorf("first level requires %d perfects, want 0", levels[0].RequiredPerfects)
	}
	for i, lvl := range levels {
		if lvl.Level != i+1 {
			return fmt.Errorf("entry %d has level %d, want %d", i, lvl.Level, i+1)
		}
		if i > 0 && lvl.RequiredPerfects <= levels[i-1].RequiredPerfects {
			return fmt.Errorf("level %d threshold %d does not exceed level %d threshold %d",
				lvl.Level, lvl.RequiredPerfects, levels[i-1].Level, levels[i-1].RequiredPerfects)
		}
	}
	return nil
}

// CurrentLevel returns the highest level reached with total perfects.
// Totals below the first threshold map to the first level.
func CurrentLevel(total int) model.AvatarLevel {
	for i := len(Levels) - 1; i >= 0; i-- {
		if total >= Levels[i].RequiredPerfects {
			return Levels[i]
		}
	}
	return Levels[0]
}

// NextLevel returns the level after levelNumber, or false at the top level.
func NextLevel(levelNumber int) (model.AvatarLevel, bool) {
	if levelNumber < 0 || levelNumber >= len(Levels) {
		return model.AvatarLevel{}, false
	}
	return Levels[levelNumber], true
}

// MaxLevel returns the top level of the table.
func MaxLevel() model.AvatarLevel {
	return Levels[len(Levels)-1]
}

// ProgressFraction returns progress toward the next level in percent.
// The top level always reports 100.
func ProgressFraction(total int) float64 {
	current := CurrentLevel(total)
	next, ok := NextLevel(current.Level)
	if !ok {
		return 100
	}
	span := float64(next.RequiredPerfects - current.RequiredPerfects)
	progress := float64(total-current.RequiredPerfects) * 100 / span
	return min(max(progress, 0), 100)
}

// Remaining returns how many perfects are left until the next level.
func Remaining(total int) int {
	next, ok := NextLevel(CurrentLevel(total).Level)
	if !ok {
		return 0
	}
	return max(next.RequiredPerfects-total, 0)
}

// DetectLevelUp returns the new level when the level number increased.
func DetectLevelUp(oldTotal, newTotal int) (model.AvatarLevel, bool) {
	oldLevel := CurrentLevel(oldTotal)
	newLevel := CurrentLevel(newTotal)
	if newLevel.Level > oldLevel.Level {
		return newLevel, true
	}
	return model.AvatarLevel{}, false
}

// DetectStageTransition returns the new stage when a level-up also changed
// the stage.
func DetectStageTransition(oldTotal, newTotal int) (model.AvatarStage, bool) {
	oldLevel := CurrentLevel(oldTotal)
	newLevel := CurrentLevel(newTotal)
	if newLevel.Stage != oldLevel.Stage && newLevel.Level > oldLevel.Level {
		return newLevel.Stage, true
	}
	return "", false
}

// Relic names the celebration shown for a stage transition.
type Relic string

// Relic kinds.
const (
	RelicConfetti Relic = "confetti"
	RelicSparkle  Relic = "sparkle"
	RelicMedal    Relic = "medal"
	RelicTreasure Relic = "treasure"
	RelicLevelUp  Relic = "levelup"
)

// RelicFor maps a stage to its celebration.
func RelicFor(stage model.AvatarStage) Relic {
	switch stage {
	case model.StageSprout:
		return RelicSparkle
	case model.StageBud:
		return RelicMedal
	case model.StageBloom:
		return RelicTreasure
	case model.StageMaster:
		return RelicLevelUp
	default:
		return RelicConfetti
	}
}
