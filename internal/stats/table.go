package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type column struct {
	header string
	right  bool
	// limit truncates cells wider than this many cells; zero disables it.
	limit int
}

func left(header string) column  { return column{header: header} }
func right(header string) column { return column{header: header, right: true} }

// table lays out rows in aligned plain-text columns measured in terminal
// cells.
type table struct {
	cols []column
	rows [][]string
}

func newTable(cols ...column) *table {
	return &table{cols: cols}
}

func (t *table) add(cells ...string) {
	row := make([]string, len(t.cols))
	for i := range row {
		if i >= len(cells) {
			break
		}
		cell := cells[i]
		if limit := t.cols[i].limit; limit > 0 && displayWidth(cell) > limit {
			cell = runewidth.Truncate(cell, limit, "~")
		}
		row[i] = cell
	}
	t.rows = append(t.rows, row)
}

func (t *table) lines() []string {
	if len(t.cols) == 0 {
		return nil
	}
	widths := make([]int, len(t.cols))
	header := make([]string, len(t.cols))
	for i, c := range t.cols {
		header[i] = c.header
		widths[i] = displayWidth(c.header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}

	out := make([]string, 0, len(t.rows)+1)
	out = append(out, t.line(header, widths))
	for _, row := range t.rows {
		out = append(out, t.line(row, widths))
	}
	return out
}

func (t *table) line(cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(' ')
		}
		pad := strings.Repeat(" ", max(widths[i]-displayWidth(cell), 0))
		if t.cols[i].right {
			b.WriteString(pad + cell)
		} else {
			b.WriteString(cell + pad)
		}
	}
	return b.String()
}

// displayWidth counts terminal cells so Hangul and emoji columns line up.
func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
