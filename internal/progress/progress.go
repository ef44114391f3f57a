// Package progress folds completed sets into the persisted user progress.
package progress

import (
	"time"

	"github.com/verte-zerg/tuiear/internal/avatar"
	"github.com/verte-zerg/tuiear/internal/model"
)

// Initial returns the progress of a user who never trained.
func Initial() model.UserProgress {
	return model.UserProgress{CurrentLevel: avatar.CurrentLevel(0).Level}
}

// AddPerfects folds one finished set into progress. accuracy is in percent.
// Counters only grow; consecutive days advance once per calendar day.
func AddPerfects(p model.UserProgress, perfectCount int, accuracy float64, today time.Time) model.UserProgress {
	day := today.Format(model.DateLayout)
	sessions := p.TotalTrainingSessions

	next := p
	next.TotalPerfects += max(perfectCount, 0)
	next.TotalTrainingSessions = sessions + 1
	next.AverageAccuracy = (p.AverageAccuracy*float64(sessions) + clampAccuracy(accuracy)) / float64(sessions+1)
	if day != p.LastTrainingDate {
		next.ConsecutiveDays++
	}
	next.LastTrainingDate = day
	next.CurrentLevel = avatar.CurrentLevel(next.TotalPerfects).Level
	return next
}

func clampAccuracy(v float64) float64 {
	return min(max(v, 0), 100)
}

// Update describes the effect of folding a set into progress.
type Update struct {
	Before  model.UserProgress
	After   model.UserProgress
	LevelUp *model.AvatarLevel
	Stage   model.AvatarStage
}

// Apply folds a result into progress and reports level and stage changes.
func Apply(p model.UserProgress, result model.GameResult, today time.Time) Update {
	after := AddPerfects(p, result.PerfectCount, result.Accuracy, today)
	u := Update{Before: p, After: after}
	if lvl, ok := avatar.DetectLevelUp(p.TotalPerfects, after.TotalPerfects); ok {
		u.LevelUp = &lvl
	}
	if stage, ok := avatar.DetectStageTransition(p.TotalPerfects, after.TotalPerfects); ok {
		u.Stage = stage
	}
	return u
}
