package generator

import (
	"slices"

	"github.com/samber/lo"

	"github.com/verte-zerg/tuiear/internal/model"
)

// Pair is two sounds the user judges as same or different.
type Pair struct {
	First  string
	Second string
	Same   bool
	Level  model.Difficulty
}

// Question is a multiple-choice stimulus.
type Question struct {
	Prompt  string
	Hint    string
	Answer  string
	Options []string
}

// Order is a sequence-recall question.
type Order struct {
	// Sounds are the cues in play order.
	Sounds  []string
	Answer  []string
	Palette []string
}

var catchSounds = []string{"beep", "ding", "ting", "tock", "tak"}

var pitchPairs = []Pair{
	{First: "high ♪", Second: "low ♪", Same: false},
	{First: "high ♪", Second: "high ♪", Same: true},
	{First: "mid ♪", Second: "low ♪", Same: false},
	{First: "mid ♪", Second: "mid ♪", Same: true},
}

var durationPairs = []Pair{
	{First: "short ♪", Second: "long ♫♫♫", Same: false},
	{First: "long ♫♫♫", Second: "long ♫♫♫", Same: true},
	{First: "medium ♪♪", Second: "short ♪", Same: false},
	{First: "medium ♪♪", Second: "medium ♪♪", Same: true},
}

var wordPairs = []Pair{
	{First: "곰", Second: "공", Level: model.DifficultyEasy},
	{First: "차", Second: "자", Level: model.DifficultyEasy},
	{First: "밥", Second: "팝", Level: model.DifficultyEasy},
	{First: "물", Second: "불", Level: model.DifficultyEasy},
	{First: "집", Second: "집", Same: true, Level: model.DifficultyEasy},
	{First: "책", Second: "책", Same: true, Level: model.DifficultyEasy},

	{First: "가방", Second: "카방", Level: model.DifficultyNormal},
	{First: "다리", Second: "타리", Level: model.DifficultyNormal},
	{First: "바다", Second: "파다", Level: model.DifficultyNormal},
	{First: "고기", Second: "코기", Level: model.DifficultyNormal},
	{First: "사과", Second: "사과", Same: true, Level: model.DifficultyNormal},
	{First: "나무", Second: "나무", Same: true, Level: model.DifficultyNormal},

	{First: "빛", Second: "빗", Level: model.DifficultyHard},
	{First: "밤", Second: "밥", Level: model.DifficultyHard},
	{First: "눈", Second: "눈", Same: true, Level: model.DifficultyHard},
	{First: "말", Second: "맘", Level: model.DifficultyHard},
	{First: "길", Second: "김", Level: model.DifficultyHard},
	{First: "꽃", Second: "꽃", Same: true, Level: model.DifficultyHard},
}

// allowedLevels lists the word-pair levels allowed at each difficulty.
var allowedLevels = map[model.Difficulty][]model.Difficulty{
	model.DifficultyEasy:   {model.DifficultyEasy},
	model.DifficultyNormal: {model.DifficultyEasy, model.DifficultyNormal},
	model.DifficultyHard:   {model.DifficultyEasy, model.DifficultyNormal, model.DifficultyHard},
}

func wordPairsFor(difficulty model.Difficulty) []Pair {
	allowed, ok := allowedLevels[difficulty]
	if !ok {
		return wordPairs
	}
	out := make([]Pair, 0, len(wordPairs))
	for _, p := range wordPairs {
		for _, lvl := range allowed {
			if p.Level == lvl {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

var drumSounds = map[string]string{
	"kick":   "boom",
	"snare":  "crack",
	"hihat":  "tss",
	"cymbal": "crash",
}

func drumKitFor(difficulty model.Difficulty) []string {
	if difficulty == model.DifficultyEasy {
		return []string{"kick", "snare"}
	}
	return []string{"kick", "snare", "hihat", "cymbal"}
}

// Sides offered by the balance test.
const (
	SideLeft  = "left"
	SideRight = "right"
)

var sides = []string{SideLeft, SideRight}

var animalSounds = map[string]string{
	"개":   "멍멍",
	"고양이": "야옹",
	"늑대":  "아우우",
	"닭":   "꼬끼오",
	"돼지":  "꿀꿀",
	"말":   "히힝",
	"사자":  "어흥",
	"소":   "음메",
	"염소":  "메에",
	"오리":  "꽥꽥",
	"원숭이": "끽끽",
	"코끼리": "뿌우",
}

// animalNames returns the animals in a stable order so seeded runs repeat.
func animalNames() []string {
	names := lo.Keys(animalSounds)
	slices.Sort(names)
	return names
}

func paletteSizeFor(difficulty model.Difficulty) int {
	switch difficulty {
	case model.DifficultyEasy:
		return 4
	case model.DifficultyHard:
		return 9
	default:
		return 6
	}
}
