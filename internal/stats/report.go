package stats

import (
	"context"

	"github.com/verte-zerg/tuiear/internal/model"
	"github.com/verte-zerg/tuiear/internal/store"
)

const weakMinSets = 2

// Report contains precomputed data for stats rendering.
type Report struct {
	Sets    []model.SetRecord
	Window  []model.SetRecord
	Modes   []model.ModeAggregate
	Weakest []model.TrainingMode
	Untried []model.TrainingMode
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sets, err := st.ListSets(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sets) > cfg.Last {
		sets = sets[len(sets)-cfg.Last:]
	}
	modes, err := st.ModeAggregates(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Sets:    sets,
		Window:  lastSets(sets, cfg.CurveWindow),
		Modes:   modes,
		Weakest: WeakestModes(modes, 2, weakMinSets),
		Untried: UntriedModes(modes),
	}, nil
}

func lastSets(sets []model.SetRecord, window int) []model.SetRecord {
	if window <= 0 || len(sets) <= window {
		return sets
	}
	return sets[len(sets)-window:]
}
