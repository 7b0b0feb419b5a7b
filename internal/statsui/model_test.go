package statsui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typeledger/internal/model"
)

type fakeSource struct {
	snap *model.Snapshot
}

func (f fakeSource) Get() *model.Snapshot { return f.snap }

func (f fakeSource) TestActivity(string) ([]int, bool) {
	return []int{0, 1, 2}, true
}

func testSnapshot() *model.Snapshot {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	snap := model.DefaultSnapshot(now)
	snap.Tags = []model.Tag{{ID: "t1", Name: "warmup", PersonalBests: model.NewPersonalBests()}}
	snap.Results = []model.Result{
		{Mode: model.ModeTime, Mode2: "30", WPM: 80, Acc: 97, RawWPM: 82, Consistency: 75, Language: "english", Difficulty: model.DifficultyNormal, Tags: []string{"t1", "gone"}, IsPB: true, Timestamp: now.UnixMilli()},
		{Mode: model.ModeWords, Mode2: "10", WPM: 70, Acc: 95, Punctuation: model.Bool(true), Language: "english", Difficulty: model.DifficultyNormal, Tags: []string{}, Timestamp: now.Add(-time.Hour).UnixMilli()},
	}
	return snap
}

func TestResultRows(t *testing.T) {
	rows := resultRows(testSnapshot())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "time 30 *" {
		t.Fatalf("expected PB marker, got %q", rows[0][1])
	}
	if rows[0][7] != "warmup" {
		t.Fatalf("expected unknown tag ids to be skipped, got %q", rows[0][7])
	}
	if rows[1][6] != "punct" {
		t.Fatalf("unexpected variant %q", rows[1][6])
	}
}

func TestStepWindow(t *testing.T) {
	tests := []struct {
		current int
		delta   int
		want    int
	}{
		{current: 10, delta: 1, want: 20},
		{current: 10, delta: -1, want: 5},
		{current: 5, delta: -1, want: 5},
		{current: 100, delta: 1, want: 100},
		{current: 15, delta: 1, want: 20},
	}
	for _, tc := range tests {
		if got := stepWindow(tc.current, tc.delta); got != tc.want {
			t.Fatalf("stepWindow(%d, %d) = %d, want %d", tc.current, tc.delta, got, tc.want)
		}
	}
}

func TestNavigationAndView(t *testing.T) {
	m := NewModel(fakeSource{snap: testSnapshot()}, 10, "current")
	if m.View() != "" {
		t.Fatalf("expected empty view before the first resize")
	}
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	if !strings.Contains(view, "Overview") || !strings.Contains(view, "window=10") {
		t.Fatalf("unexpected overview:\n%s", view)
	}
	if lines := strings.Count(view, "\n") + 1; lines != 30 {
		t.Fatalf("expected view to fill 30 lines, got %d", lines)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabPersonalBests {
		t.Fatalf("expected tabs to wrap around, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'='}})
	if m.window != 20 {
		t.Fatalf("expected window to grow, got %d", m.window)
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
}

func TestEmptySnapshot(t *testing.T) {
	m := NewModel(fakeSource{}, 0, "current")
	if m.window != 10 {
		t.Fatalf("expected default window, got %d", m.window)
	}
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 10})
	if !strings.Contains(m.View(), "No snapshot loaded.") {
		t.Fatalf("expected empty message")
	}
}
