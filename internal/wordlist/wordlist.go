// Package wordlist loads word-challenge banks from files.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/verte-zerg/tuiear/internal/model"
)

// Entry is one word of a word-challenge bank.
type Entry struct {
	Word          string
	Pronunciation string
	Hint          string
	Level         model.Difficulty
}

// LoadWords reads one entry per line from the provided file path. Lines have
// the form word|pronunciation|hint|level; every field after word is optional
// and blank lines or lines starting with # are skipped.
func LoadWords(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entry, err := parseEntry(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return entries, nil
}

func parseEntry(line string) (Entry, error) {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	entry := Entry{Word: parts[0], Level: model.DifficultyEasy}
	if entry.Word == "" {
		return Entry{}, fmt.Errorf("word is empty")
	}
	if len(parts) > 1 {
		entry.Pronunciation = parts[1]
	}
	if len(parts) > 2 {
		entry.Hint = parts[2]
	}
	if len(parts) > 3 && parts[3] != "" {
		lvl, err := parseLevel(parts[3])
		if err != nil {
			return Entry{}, err
		}
		entry.Level = lvl
	}
	if entry.Pronunciation == "" {
		entry.Pronunciation = entry.Word
	}
	return entry, nil
}

func parseLevel(v string) (model.Difficulty, error) {
	switch strings.ToLower(v) {
	case "easy", "common":
		return model.DifficultyEasy, nil
	case "normal", "medium", "intermediate":
		return model.DifficultyNormal, nil
	case "hard", "advanced":
		return model.DifficultyHard, nil
	default:
		return "", fmt.Errorf("unknown level %q", v)
	}
}

// DefaultBank is the built-in word-challenge bank.
var DefaultBank = []Entry{
	{Word: "사과", Pronunciation: "sa-gwa", Hint: "a red or green fruit", Level: model.DifficultyEasy},
	{Word: "학교", Pronunciation: "hak-gyo", Hint: "where you study", Level: model.DifficultyEasy},
	{Word: "물", Pronunciation: "mul", Hint: "clear liquid you drink", Level: model.DifficultyEasy},
	{Word: "바람", Pronunciation: "ba-ram", Hint: "moving air", Level: model.DifficultyEasy},
	{Word: "집", Pronunciation: "jip", Hint: "where you live", Level: model.DifficultyEasy},
	{Word: "강아지", Pronunciation: "gang-a-ji", Hint: "an animal that barks", Level: model.DifficultyEasy},
	{Word: "고양이", Pronunciation: "go-yang-i", Hint: "an animal that meows", Level: model.DifficultyEasy},
	{Word: "친구", Pronunciation: "chin-gu", Hint: "someone you play with", Level: model.DifficultyEasy},
	{Word: "책", Pronunciation: "chaek", Hint: "paper you read", Level: model.DifficultyEasy},
	{Word: "의자", Pronunciation: "ui-ja", Hint: "furniture you sit on", Level: model.DifficultyEasy},
	{Word: "컴퓨터", Pronunciation: "keom-pyu-teo", Hint: "a device that processes data", Level: model.DifficultyNormal},
	{Word: "도서관", Pronunciation: "do-seo-gwan", Hint: "where you borrow books", Level: model.DifficultyNormal},
	{Word: "병원", Pronunciation: "byeong-won", Hint: "where sick people are treated", Level: model.DifficultyNormal},
	{Word: "은행", Pronunciation: "eun-haeng", Hint: "where money is kept", Level: model.DifficultyNormal},
	{Word: "공항", Pronunciation: "gong-hang", Hint: "where planes take off", Level: model.DifficultyNormal},
	{Word: "기차역", Pronunciation: "gi-cha-yeok", Hint: "where you board trains", Level: model.DifficultyNormal},
	{Word: "문화재", Pronunciation: "mun-hwa-jae", Hint: "something of historic value", Level: model.DifficultyHard},
	{Word: "민주주의", Pronunciation: "min-ju-ju-ui", Hint: "rule by the people", Level: model.DifficultyHard},
	{Word: "기후변화", Pronunciation: "gi-hu-byeon-hwa", Hint: "the climate shifting over time", Level: model.DifficultyHard},
	{Word: "인공지능", Pronunciation: "in-gong-ji-neung", Hint: "machines that think", Level: model.DifficultyHard},
}
