package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Mode", "WPM", "Lang"}
	rows := [][]string{
		{"time 15", "97.50", "english"},
		{"words 100", "8.00", "日本語"},
	}
	rightAlign := map[int]bool{1: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Mode        WPM Lang" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "time 15   97.50 english" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "words 100  8.00 日本語" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}
