package stats

import (
	"sort"

	"github.com/verte-zerg/tuiear/internal/model"
)

// UntriedModes lists training modes with no recorded sets, in menu order.
func UntriedModes(aggs []model.ModeAggregate) []model.TrainingMode {
	seen := make(map[model.TrainingMode]bool, len(aggs))
	for _, agg := range aggs {
		if agg.Sets > 0 {
			seen[agg.Mode] = true
		}
	}
	var out []model.TrainingMode
	for _, mode := range model.TrainingModes {
		if !seen[mode] {
			out = append(out, mode)
		}
	}
	return out
}

// TopModesBySets returns the n most practiced modes.
func TopModesBySets(aggs []model.ModeAggregate, n int) []model.TrainingMode {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]model.ModeAggregate, len(aggs))
	copy(items, aggs)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Sets == items[j].Sets {
			return items[i].Mode < items[j].Mode
		}
		return items[i].Sets > items[j].Sets
	})
	n = min(n, len(items))
	out := make([]model.TrainingMode, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, items[i].Mode)
	}
	return out
}
