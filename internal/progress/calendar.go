package progress

import (
	"sort"
	"time"

	"github.com/verte-zerg/tuiear/internal/model"
)

// Calendar records the days the user trained on.
type Calendar struct {
	days map[string]bool
}

// NewCalendar returns an empty calendar.
func NewCalendar() Calendar {
	return Calendar{days: map[string]bool{}}
}

// Mark records a training day.
func (c *Calendar) Mark(day time.Time) {
	if c.days == nil {
		c.days = map[string]bool{}
	}
	c.days[day.Format(model.DateLayout)] = true
}

// Learned reports whether the user trained on day.
func (c Calendar) Learned(day time.Time) bool {
	return c.days[day.Format(model.DateLayout)]
}

// Len returns the number of training days.
func (c Calendar) Len() int {
	return len(c.days)
}

// Streak counts consecutive training days ending today. A streak that ended
// yesterday still counts until today is over.
func (c Calendar) Streak(today time.Time) int {
	day := truncateDay(today)
	if !c.Learned(day) {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for c.Learned(day) {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// DaysInMonth returns the sorted training days within one month.
func (c Calendar) DaysInMonth(year int, month time.Month) []int {
	var days []int
	for key, ok := range c.days {
		if !ok {
			continue
		}
		t, err := time.Parse(model.DateLayout, key)
		if err != nil {
			continue
		}
		if t.Year() == year && t.Month() == month {
			days = append(days, t.Day())
		}
	}
	sort.Ints(days)
	return days
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
