package avatar

import "github.com/verte-zerg/tuiear/internal/model"

// Rank is a discrimination-training title earned with rank points.
type Rank struct {
	Name      string
	MinPoints int
	Color     string
	Emoji     string
}

// Ranks is ascending by MinPoints.
var Ranks = []Rank{
	{Name: "Novice Listener", MinPoints: 0, Color: "#95A5A6", Emoji: "🔰"},
	{Name: "Pronunciation Judge", MinPoints: 100, Color: "#3498DB", Emoji: "🎧"},
	{Name: "Sound Detective", MinPoints: 300, Color: "#9B59B6", Emoji: "🕵️"},
	{Name: "Hearing Master", MinPoints: 600, Color: "#E67E22", Emoji: "🏆"},
	{Name: "Voice Expert", MinPoints: 1000, Color: "#E74C3C", Emoji: "👑"},
}

// RankFor returns the highest rank reached with points.
func RankFor(points int) Rank {
	for i := len(Ranks) - 1; i >= 0; i-- {
		if points >= Ranks[i].MinPoints {
			return Ranks[i]
		}
	}
	return Ranks[0]
}

// RankPoints returns the points earned by a judgement. combo is the value
// after the judgement.
func RankPoints(j model.Judgement, combo int) int {
	if j != model.JudgementPerfect {
		return 0
	}
	points := 10
	switch combo {
	case 5:
		points += 20
	case 10:
		points += 50
	}
	return points
}
