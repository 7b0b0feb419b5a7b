package tui

import (
	"strings"
	"testing"
)

func plainCells(s string) []cell {
	cells := make([]cell, 0, len(s))
	for _, r := range s {
		cells = append(cells, cell{text: string(r), width: 1, space: r == ' '})
	}
	return cells
}

func TestStyleCellsMarksProgress(t *testing.T) {
	cells := styleCells([]rune("one two"), []rune("ox"), 2)
	if cells[0].text != correctStyle.Render("o") {
		t.Fatalf("expected typed rune to be correct")
	}
	if cells[1].text != incorrectStyle.Render("n") {
		t.Fatalf("expected mistyped rune to keep the target character")
	}
	if cells[2].text != currentWordStyle.Underline(true).Render("e") {
		t.Fatalf("expected cursor on the current word")
	}
	if cells[4].text != pendingStyle.Render("t") {
		t.Fatalf("expected next word to be pending")
	}
}

func TestStyleCellsMissedSpace(t *testing.T) {
	cells := styleCells([]rune("a b"), []rune("ax"), 2)
	if cells[1].text != incorrectStyle.Render(string(missedSpace)) {
		t.Fatalf("expected missed space marker, got %q", cells[1].text)
	}
	if !cells[1].space {
		t.Fatalf("expected the cell to stay a space for wrapping")
	}
}

func TestActiveSpan(t *testing.T) {
	spans := wordSpans([]rune("ab  cd"))
	if len(spans) != 2 {
		t.Fatalf("expected 2 words, got %d", len(spans))
	}
	tests := []struct {
		cursor int
		want   span
	}{
		{cursor: -1, want: span{0, 2}},
		{cursor: 1, want: span{0, 2}},
		{cursor: 3, want: span{4, 6}},
		{cursor: 9, want: span{4, 6}},
	}
	for _, tc := range tests {
		got, ok := activeSpan(spans, tc.cursor)
		if !ok || got != tc.want {
			t.Fatalf("cursor %d: got %+v, want %+v", tc.cursor, got, tc.want)
		}
	}
	if _, ok := activeSpan(nil, 0); ok {
		t.Fatalf("expected no word in empty text")
	}
}

func TestBreakLinesAtSpaces(t *testing.T) {
	cells := plainCells("alpha beta gamma")
	got := renderLines(cells, breakLines(cells, 10))
	if got != "alpha beta\ngamma" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestBreakLinesSplitsLongWords(t *testing.T) {
	cells := plainCells("abcdefgh ij")
	got := renderLines(cells, breakLines(cells, 4))
	if got != "abcd\nefgh\nij" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestBreakLinesWithoutWidth(t *testing.T) {
	cells := plainCells("a b")
	lines := breakLines(cells, 0)
	if len(lines) != 1 || lines[0] != (span{0, 3}) {
		t.Fatalf("expected a single line, got %+v", lines)
	}
}

func TestWindowFollowsCursor(t *testing.T) {
	cells := plainCells("aa bb cc dd ee")
	lines := breakLines(cells, 2)
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}

	if got := renderLines(cells, window(lines, 0, 3)); got != "aa\nbb\ncc" {
		t.Fatalf("unexpected start window %q", got)
	}
	if got := renderLines(cells, window(lines, 7, 3)); got != "bb\ncc\ndd" {
		t.Fatalf("unexpected middle window %q", got)
	}
	if got := renderLines(cells, window(lines, 13, 3)); !strings.HasPrefix(got, "cc") {
		t.Fatalf("expected window clamped to the end, got %q", got)
	}
}
