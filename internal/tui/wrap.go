package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type cell struct {
	r       rune
	width   int
	isSpace bool
}

// wrapText breaks text into lines no wider than width terminal cells,
// preferring to break at spaces. Words longer than width are split.
func wrapText(text string, width int) []string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return []string{text}
	}
	var out []string
	line := make([]cell, 0, width)
	lineWidth := 0
	lastSpaceIdx := -1

	runes := []rune(text)
	for i := 0; i < len(runes); {
		item := cell{r: runes[i], width: runewidth.RuneWidth(runes[i]), isSpace: runes[i] == ' '}
		if lineWidth+item.width > width && len(line) > 0 {
			if item.isSpace {
				out = append(out, renderCells(line))
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
				i++
				continue
			}
			if lastSpaceIdx >= 0 {
				out = append(out, renderCells(line[:lastSpaceIdx]))
				line = append([]cell{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out = append(out, renderCells(line))
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		if item.isSpace && len(line) == 0 {
			i++
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	if len(line) > 0 {
		out = append(out, renderCells(line))
	}
	return out
}

func renderCells(line []cell) string {
	var b strings.Builder
	for _, c := range line {
		b.WriteRune(c.r)
	}
	return strings.TrimRight(b.String(), " ")
}

func lineWidthOf(line []cell) int {
	total := 0
	for _, c := range line {
		total += c.width
	}
	return total
}

func lastSpaceIndex(line []cell) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
