package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/starcatch/internal/model"
)

var glyphs = map[model.Kind]string{
	model.KindStar:    "★",
	model.KindHeart:   "♥",
	model.KindSparkle: "✦",
	model.KindBomb:    "✹",
}

type placed struct {
	col   int
	width int
	text  string
	kind  model.Kind
}

func itemText(it model.Item) string {
	glyph, ok := glyphs[it.Kind]
	if !ok {
		glyph = "?"
	}
	return glyph + string(it.Label)
}

// layoutPlayfield assigns every item a row by progress and a column by its
// horizontal position. An item that would overlap one already placed moves to
// the nearest free column on its row, then to the nearest row with room. Only
// items that fit nowhere are left out.
func layoutPlayfield(items []model.Item, width, height int) [][]placed {
	if width <= 0 || height <= 0 {
		return nil
	}
	rows := make([][]placed, height)
	for _, it := range items {
		text := itemText(it)
		w := runewidth.StringWidth(text)
		if w > width {
			continue
		}
		row := height / 2
		if it.Lifetime > 0 {
			row = int(it.Progress() * float64(height-1))
		}
		col := int(it.X/100*float64(width)) - w/2
		col = max(0, min(col, width-w))
		r, c, ok := freeSlot(rows, row, col, w, width)
		if !ok {
			continue
		}
		rows[r] = append(rows[r], placed{col: c, width: w, text: text, kind: it.Kind})
	}
	for _, row := range rows {
		sort.SliceStable(row, func(a, b int) bool {
			return row[a].col < row[b].col
		})
	}
	return rows
}

// freeSlot searches rows outward from row, and columns outward from col
// within each row, for a span of w cells that overlaps nothing.
func freeSlot(rows [][]placed, row, col, w, width int) (int, int, bool) {
	for dr := 0; dr < len(rows); dr++ {
		candidates := []int{row + dr}
		if dr > 0 {
			candidates = append(candidates, row-dr)
		}
		for _, r := range candidates {
			if r < 0 || r >= len(rows) {
				continue
			}
			if c, ok := freeColumn(rows[r], col, w, width); ok {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

func freeColumn(row []placed, col, w, width int) (int, bool) {
	for d := 0; d <= width; d++ {
		for _, c := range []int{col - d, col + d} {
			if c < 0 || c > width-w {
				continue
			}
			if spanFree(row, c, w) {
				return c, true
			}
		}
	}
	return 0, false
}

func spanFree(row []placed, col, w int) bool {
	for _, p := range row {
		if col < p.col+p.width && p.col < col+w {
			return false
		}
	}
	return true
}

func renderPlayfieldRow(row []placed, width int, styled bool) string {
	var b strings.Builder
	pos := 0
	for _, p := range row {
		b.WriteString(strings.Repeat(" ", p.col-pos))
		if styled {
			b.WriteString(kindStyle(p.kind).Render(p.text))
		} else {
			b.WriteString(p.text)
		}
		pos = p.col + p.width
	}
	if pos < width {
		b.WriteString(strings.Repeat(" ", width-pos))
	}
	return b.String()
}

func renderPlayfield(items []model.Item, width, height int, styled bool) string {
	rows := layoutPlayfield(items, width, height)
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = renderPlayfieldRow(row, width, styled)
	}
	return strings.Join(lines, "\n")
}

func kindStyle(k model.Kind) lipgloss.Style {
	switch k {
	case model.KindHeart:
		return heartStyle
	case model.KindSparkle:
		return sparkleStyle
	case model.KindBomb:
		return bombStyle
	default:
		return starStyle
	}
}
