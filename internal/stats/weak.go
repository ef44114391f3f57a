package stats

import (
	"sort"

	"github.com/verte-zerg/tuiear/internal/model"
)

// WeakestModes returns up to top modes ordered by lowest accuracy.
// Modes with fewer than minSets sets are skipped.
func WeakestModes(aggs []model.ModeAggregate, top, minSets int) []model.TrainingMode {
	candidates := make([]model.ModeAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Sets >= minSets {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai := modeAccuracy(candidates[i])
		aj := modeAccuracy(candidates[j])
		if ai == aj {
			return candidates[i].Mode < candidates[j].Mode
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]model.TrainingMode, 0, top)
	for i := 0; i < top; i++ {
		out = append(out, candidates[i].Mode)
	}
	return out
}
