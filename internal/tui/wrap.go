package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// visibleLines is how many wrapped lines of text are shown at once.
const visibleLines = 3

// missedSpace marks a space that was typed as another character.
const missedSpace = '•'

// cell is one rendered target character.
type cell struct {
	text  string
	width int
	space bool
}

type span struct {
	start int
	end   int
}

func styleCells(target, input []rune, cursor int) []cell {
	active, hasActive := activeSpan(wordSpans(target), cursor)

	cells := make([]cell, 0, len(target))
	for i, want := range target {
		shown := want
		style := pendingStyle
		switch {
		case i < len(input) && want == ' ' && input[i] != ' ':
			shown = missedSpace
			style = incorrectStyle
		case i < len(input) && input[i] == want:
			style = correctStyle
		case i < len(input):
			style = incorrectStyle
		case want != ' ' && hasActive && i >= active.start && i < active.end:
			style = currentWordStyle
		}
		if i == cursor && i >= len(input) {
			style = style.Underline(true)
		}
		cells = append(cells, cell{
			text:  style.Render(string(shown)),
			width: runewidth.RuneWidth(shown),
			space: want == ' ',
		})
	}
	return cells
}

func wordSpans(target []rune) []span {
	var spans []span
	start := -1
	for i, r := range target {
		switch {
		case r == ' ' && start >= 0:
			spans = append(spans, span{start: start, end: i})
			start = -1
		case r != ' ' && start < 0:
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, span{start: start, end: len(target)})
	}
	return spans
}

// activeSpan returns the word under the cursor, or the next word when the
// cursor sits on a space. A negative cursor selects the first word.
func activeSpan(spans []span, cursor int) (span, bool) {
	if len(spans) == 0 {
		return span{}, false
	}
	if cursor < 0 {
		return spans[0], true
	}
	for _, s := range spans {
		if cursor < s.end {
			return s, true
		}
	}
	return spans[len(spans)-1], true
}

// breakLines wraps cells at spaces so no line exceeds width. Words wider
// than a line are split. The space a line breaks on belongs to no line.
func breakLines(cells []cell, width int) []span {
	if width <= 0 || len(cells) == 0 {
		return []span{{start: 0, end: len(cells)}}
	}
	var lines []span
	start, used, lastSpace := 0, 0, -1
	for i := 0; i < len(cells); {
		c := cells[i]
		if used+c.width > width && i > start {
			if c.space {
				lines = append(lines, span{start: start, end: i})
				start, used, lastSpace = i+1, 0, -1
				i++
				continue
			}
			if lastSpace >= start {
				lines = append(lines, span{start: start, end: lastSpace})
				start = lastSpace + 1
			} else {
				lines = append(lines, span{start: start, end: i})
				start = i
			}
			used, lastSpace = 0, -1
			for j := start; j < i; j++ {
				used += cells[j].width
				if cells[j].space {
					lastSpace = j
				}
			}
			continue
		}
		used += c.width
		if c.space {
			lastSpace = i
		}
		i++
	}
	return append(lines, span{start: start, end: len(cells)})
}

// window selects up to n lines keeping the cursor's line second from the
// top once typing has moved past the first line.
func window(lines []span, cursor, n int) []span {
	if n <= 0 || len(lines) <= n {
		return lines
	}
	current := 0
	if cursor >= 0 {
		for i, l := range lines {
			if cursor <= l.end {
				current = i
				break
			}
		}
	}
	first := max(current-1, 0)
	first = min(first, len(lines)-n)
	return lines[first : first+n]
}

func joinCells(cells []cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(c.text)
	}
	return b.String()
}

func renderLines(cells []cell, lines []span) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, joinCells(cells[l.start:l.end]))
	}
	return strings.Join(out, "\n")
}
