// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/verte-zerg/tuiear/internal/avatar"
	"github.com/verte-zerg/tuiear/internal/engine"
	"github.com/verte-zerg/tuiear/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Metrics are the derived numbers for one recorded set.
type Metrics struct {
	Score       float64
	Accuracy    float64
	ReactionMs  float64
	PerfectRate float64
}

// SetMetrics derives score, accuracy, and perfect rate for a set.
func SetMetrics(rec model.SetRecord) Metrics {
	m := Metrics{
		Score:      float64(rec.Score),
		Accuracy:   rec.Accuracy,
		ReactionMs: float64(rec.AvgReactionMs),
	}
	if rec.QuestionCount > 0 {
		m.PerfectRate = float64(rec.PerfectCount) * 100 / float64(rec.QuestionCount)
	}
	return m
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := lo.Min(values), lo.Max(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = min(max(idx, 0), len(sparkChars)-1)
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary block for recorded sets.
func RenderSummary(w io.Writer, sets []model.SetRecord) error {
	if len(sets) == 0 {
		_, err := fmt.Fprintln(w, "No sets found.")
		return err
	}
	metrics := lo.Map(sets, func(rec model.SetRecord, _ int) Metrics { return SetMetrics(rec) })
	count := float64(len(sets))
	best := lo.MaxBy(sets, func(a, b model.SetRecord) bool { return a.Score > b.Score })
	bestAccuracy := lo.Max(lo.Map(metrics, func(m Metrics, _ int) float64 { return m.Accuracy }))
	bestCombo := lo.Max(lo.Map(sets, func(rec model.SetRecord, _ int) int { return rec.MaxCombo }))
	perfects := lo.SumBy(sets, func(rec model.SetRecord) int { return rec.PerfectCount })
	timed := lo.Filter(metrics, func(m Metrics, _ int) bool { return m.ReactionMs > 0 })

	lines := []string{
		"Summary",
		fmt.Sprintf("Sets: %d", len(sets)),
		fmt.Sprintf("Perfects: %d", perfects),
		fmt.Sprintf("Avg Score: %.1f", lo.SumBy(metrics, func(m Metrics) float64 { return m.Score })/count),
		fmt.Sprintf("Best Score: %d (%s)", best.Score, best.Mode),
		fmt.Sprintf("Best Combo: %d", bestCombo),
		fmt.Sprintf("Avg Accuracy: %.2f%%", lo.SumBy(metrics, func(m Metrics) float64 { return m.Accuracy })/count),
		fmt.Sprintf("Best Grade: %s", engine.GradeFor(bestAccuracy)),
	}
	if len(timed) > 0 {
		avg := lo.SumBy(timed, func(m Metrics) float64 { return m.ReactionMs }) / float64(len(timed))
		lines = append(lines, fmt.Sprintf("Avg Reaction: %.0f ms", avg))
	}
	return writeLines(w, append(lines, ""))
}

// RenderCurves prints score and accuracy trends as sparklines no wider than width.
func RenderCurves(w io.Writer, sets []model.SetRecord, window, width int) error {
	if len(sets) == 0 {
		return nil
	}
	scores := make([]float64, len(sets))
	accs := make([]float64, len(sets))
	for i, rec := range sets {
		m := SetMetrics(rec)
		scores[i] = m.Score
		accs[i] = m.Accuracy
	}
	scores = tail(MovingAverage(scores, window), sparkWidth(width))
	accs = tail(MovingAverage(accs, window), sparkWidth(width))
	return writeLines(w, []string{
		"Learning Curves",
		fmt.Sprintf("Score    %s  %.0f", Sparkline(scores), scores[len(scores)-1]),
		fmt.Sprintf("Accuracy %s  %.1f%%", Sparkline(accs), accs[len(accs)-1]),
		"",
	})
}

// sparkWidth leaves room for the label and the trailing value.
func sparkWidth(total int) int {
	const labelWidth = 9 + 10
	if total <= 0 {
		return 60
	}
	return max(total-labelWidth, 10)
}

func tail(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

// RenderModeTable prints per-mode aggregates, weakest accuracy first.
func RenderModeTable(w io.Writer, aggs []model.ModeAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No mode stats found.")
		return err
	}
	rows := make([]model.ModeAggregate, len(aggs))
	copy(rows, aggs)
	sort.SliceStable(rows, func(i, j int) bool {
		ai, aj := modeAccuracy(rows[i]), modeAccuracy(rows[j])
		if ai == aj {
			return rows[i].Mode < rows[j].Mode
		}
		return ai < aj
	})

	tbl := newTable(left("Mode"), right("Sets"), right("Accuracy"), left("Grade"), right("Perfect"), right("Good"),
		right("Miss"), right("Best"), right("Combo"), right("Avg Reaction (ms)"))
	for _, r := range rows {
		reaction := "-"
		if r.ReactionSets > 0 {
			reaction = fmt.Sprintf("%.0f", float64(r.ReactionSumMs)/float64(r.ReactionSets))
		}
		tbl.add(
			string(r.Mode),
			fmt.Sprintf("%d", r.Sets),
			fmt.Sprintf("%.2f%%", modeAccuracy(r)*100),
			string(engine.GradeFor(modeAccuracy(r)*100)),
			fmt.Sprintf("%d", r.PerfectCount),
			fmt.Sprintf("%d", r.GoodCount),
			fmt.Sprintf("%d", r.MissCount),
			fmt.Sprintf("%d", r.BestScore),
			fmt.Sprintf("%d", r.BestCombo),
			reaction,
		)
	}
	lines := append([]string{"Per-Mode"}, tbl.lines()...)
	return writeLines(w, append(lines, ""))
}

// RenderProgress prints the avatar card for lifetime progress.
func RenderProgress(w io.Writer, p model.UserProgress, streak int) error {
	level := avatar.CurrentLevel(p.TotalPerfects)
	lines := []string{
		fmt.Sprintf("%s Lv.%d %s (%s)", level.Emoji, level.Level, level.Name, level.Stage),
		level.Description,
		fmt.Sprintf("Perfects: %d", p.TotalPerfects),
	}
	if next, ok := avatar.NextLevel(level.Level); ok {
		frac := avatar.ProgressFraction(p.TotalPerfects)
		lines = append(lines, fmt.Sprintf("Next: %s %s  %d to go", progressBar(frac, 20), next.Name, avatar.Remaining(p.TotalPerfects)))
	} else {
		lines = append(lines, "Next: max level reached")
	}
	lines = append(lines,
		fmt.Sprintf("Sessions: %d", p.TotalTrainingSessions),
		fmt.Sprintf("Avg Accuracy: %.2f%%", p.AverageAccuracy),
		fmt.Sprintf("Training Days: %d", p.ConsecutiveDays),
		fmt.Sprintf("Streak: %d", streak),
	)
	if p.LastTrainingDate != "" {
		lines = append(lines, "Last Trained: "+p.LastTrainingDate)
	}
	return writeLines(w, append(lines, ""))
}

// RenderLevels prints the avatar level table.
func RenderLevels(w io.Writer, current int) error {
	name := left("Name")
	name.limit = 28
	tbl := newTable(left(""), right("Lv"), name, left("Stage"), right("Perfects"))
	for _, lvl := range avatar.Levels {
		marker := ""
		if lvl.Level == current {
			marker = ">"
		}
		tbl.add(
			marker,
			fmt.Sprintf("%d", lvl.Level),
			lvl.Emoji + " " + lvl.Name,
			string(lvl.Stage),
			fmt.Sprintf("%d", lvl.RequiredPerfects),
		)
	}
	return writeLines(w, tbl.lines())
}

func progressBar(percent float64, width int) string {
	filled := int(math.Round(percent / 100 * float64(width)))
	filled = min(max(filled, 0), width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func modeAccuracy(agg model.ModeAggregate) float64 {
	total := agg.PerfectCount + agg.GoodCount + agg.MissCount
	if total == 0 {
		return 1.0
	}
	return float64(agg.PerfectCount+agg.GoodCount) / float64(total)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
