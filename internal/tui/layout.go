package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

const chipGap = 3

// layoutOptions numbers the options and wraps them into rows no wider than width.
func layoutOptions(options []string, width int) []string {
	if len(options) == 0 {
		return nil
	}
	var lines []string
	var line strings.Builder
	lineWidth := 0
	for i, opt := range options {
		chip := fmt.Sprintf("[%d] %s", i+1, opt)
		chipWidth := runewidth.StringWidth(chip)
		if lineWidth > 0 && width > 0 && lineWidth+chipGap+chipWidth > width {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			line.WriteString(strings.Repeat(" ", chipGap))
			lineWidth += chipGap
		}
		line.WriteString(chip)
		lineWidth += chipWidth
	}
	return append(lines, line.String())
}

// optionIndex maps a digit key to an option index.
func optionIndex(key string, count int) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	idx := int(key[0] - '1')
	if idx >= count {
		return 0, false
	}
	return idx, true
}
