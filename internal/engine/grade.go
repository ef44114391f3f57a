package engine

import (
	"math"

	"github.com/verte-zerg/tuiear/internal/model"
)

// Pass and clear marks, in percent accuracy.
const (
	PassAccuracy  = 60
	ClearAccuracy = 100
)

var gradeFloors = []struct {
	min   float64
	grade model.Grade
}{
	{90, model.GradeS},
	{80, model.GradeA},
	{70, model.GradeB},
	{PassAccuracy, model.GradeC},
}

// GradeFor maps an accuracy percentage to a letter grade. Accuracy is
// rounded to one decimal first, as it is displayed.
func GradeFor(accuracy float64) model.Grade {
	rounded := math.Round(accuracy*10) / 10
	for _, f := range gradeFloors {
		if rounded >= f.min {
			return f.grade
		}
	}
	return model.GradeD
}

// Passed reports whether a result earns the mode's star.
func Passed(result model.GameResult) bool {
	return result.TotalQuestions > 0 && result.Accuracy >= PassAccuracy
}

// Cleared reports whether a result clears the mode.
func Cleared(result model.GameResult) bool {
	return result.TotalQuestions > 0 && result.MissCount == 0 && result.Accuracy >= ClearAccuracy
}
