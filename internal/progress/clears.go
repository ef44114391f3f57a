package progress

import (
	"github.com/verte-zerg/tuiear/internal/engine"
	"github.com/verte-zerg/tuiear/internal/model"
)

// Clears tracks the star and clear milestones per training mode.
type Clears struct {
	modes map[model.TrainingMode]model.ModeClear
}

// NewClears returns an empty record.
func NewClears() Clears {
	return Clears{modes: map[model.TrainingMode]model.ModeClear{}}
}

// Get returns the milestones reached in mode.
func (c Clears) Get(mode model.TrainingMode) model.ModeClear {
	return c.modes[mode]
}

// Record folds a finished set into the mode's milestones. Milestones are
// never revoked. It reports whether anything new was reached.
func (c *Clears) Record(mode model.TrainingMode, result model.GameResult) (model.ModeClear, bool) {
	if c.modes == nil {
		c.modes = map[model.TrainingMode]model.ModeClear{}
	}
	before := c.modes[mode]
	after := before
	if engine.Passed(result) {
		after.Starred = true
	}
	if engine.Cleared(result) {
		after.Starred = true
		after.Cleared = true
	}
	c.modes[mode] = after
	return after, after != before
}

// Counts returns how many modes are starred and cleared.
func (c Clears) Counts() (starred, cleared int) {
	for _, mc := range c.modes {
		if mc.Starred {
			starred++
		}
		if mc.Cleared {
			cleared++
		}
	}
	return starred, cleared
}
