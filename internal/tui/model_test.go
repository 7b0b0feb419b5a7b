package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typeledger/internal/generator"
	"github.com/verte-zerg/typeledger/internal/model"
	"github.com/verte-zerg/typeledger/internal/practice"
)

type fakeRecorder struct {
	events []model.CompletedEvent
	err    error
}

func (r *fakeRecorder) Complete(_ context.Context, ev model.CompletedEvent) (practice.Outcome, error) {
	if r.err != nil {
		return practice.Outcome{}, r.err
	}
	r.events = append(r.events, ev)
	return practice.Outcome{Result: ev.Result, XP: 42, IsPB: true}, nil
}

type fakeLedger struct {
	snap   *model.Snapshot
	pb     float64
	avgWPM float64
	avgAcc float64
}

func (l *fakeLedger) Get() *model.Snapshot { return l.snap }

func (l *fakeLedger) LocalPB(model.Mode, model.Mode2, model.VariantKey, []string) (model.PersonalBest, bool) {
	if l.pb == 0 {
		return model.PersonalBest{}, false
	}
	return model.PersonalBest{WPM: l.pb}, true
}

func (l *fakeLedger) AverageOf10(model.Mode, model.Mode2, model.VariantKey) (float64, float64) {
	return l.avgWPM, l.avgAcc
}

func newTestModel(t *testing.T, settings Settings, rec Recorder, ledger Ledger) *Model {
	t.Helper()
	m := NewModel(settings, rec, ledger, generator.NewWithSeed(1), []string{"a"}, nil)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ticks := 0
	m.now = func() time.Time {
		at := base.Add(time.Duration(ticks) * time.Second)
		ticks++
		return at
	}
	return m
}

func wordsSettings() Settings {
	return Settings{
		Mode:       model.ModeWords,
		Words:      2,
		Seconds:    30,
		Language:   "english",
		Difficulty: model.DifficultyNormal,
	}
}

func typeText(m *Model, text string) {
	for _, r := range text {
		if r == ' ' {
			m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestWordsTestCompletes(t *testing.T) {
	rec := &fakeRecorder{}
	m := newTestModel(t, wordsSettings(), rec, &fakeLedger{})
	if got := string(m.targetRunes); got != "a a" {
		t.Fatalf("unexpected target %q", got)
	}

	typeText(m, "a a")

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 recorded event, got %d", len(rec.events))
	}
	r := rec.events[0].Result
	if r.Mode != model.ModeWords || r.Mode2 != "2" {
		t.Fatalf("unexpected mode %s %s", r.Mode, r.Mode2)
	}
	if r.WPM != 12 || r.RawWPM != 12 || r.Acc != 100 {
		t.Fatalf("unexpected speed wpm=%v raw=%v acc=%v", r.WPM, r.RawWPM, r.Acc)
	}
	if r.TestDuration != 3 {
		t.Fatalf("expected 3s duration, got %v", r.TestDuration)
	}
	want := []int{3, 0, 0, 0}
	for i, n := range want {
		if r.CharStats[i] != n {
			t.Fatalf("unexpected char stats %v", r.CharStats)
		}
	}
	if r.Punctuation == nil || *r.Punctuation {
		t.Fatalf("expected explicit false punctuation flag")
	}
	if m.last == nil || m.last.XP != 42 {
		t.Fatalf("expected outcome to be kept for the footer")
	}
	if len(m.inputRunes) != 0 {
		t.Fatalf("expected a fresh session after completion")
	}
}

func TestBackspaceCorrectsMistakes(t *testing.T) {
	rec := &fakeRecorder{}
	m := newTestModel(t, wordsSettings(), rec, &fakeLedger{})

	typeText(m, "x")
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	typeText(m, "a a")

	r := rec.events[0].Result
	if r.CharStats[1] != 0 {
		t.Fatalf("expected corrected text to have no incorrect chars, got %v", r.CharStats)
	}
	if r.Acc != 75 {
		t.Fatalf("expected keystroke accuracy 75, got %v", r.Acc)
	}
}

func TestRestartCountsIncompleteTests(t *testing.T) {
	rec := &fakeRecorder{}
	m := newTestModel(t, wordsSettings(), rec, &fakeLedger{})

	typeText(m, "a")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "a a")

	ev := rec.events[0]
	if ev.RestartCount != 1 {
		t.Fatalf("expected 1 restart, got %d", ev.RestartCount)
	}
	if len(ev.IncompleteTests) != 1 || ev.IncompleteTests[0].Seconds != 1 {
		t.Fatalf("unexpected incomplete tests %+v", ev.IncompleteTests)
	}
	if ev.IncompleteTestSeconds != 1 {
		t.Fatalf("expected 1s of incomplete tests, got %v", ev.IncompleteTestSeconds)
	}
	if m.restarts != 0 || m.incomplete != nil {
		t.Fatalf("expected restart bookkeeping to reset after a result")
	}
}

func TestMasterFailsOnFirstMistake(t *testing.T) {
	settings := wordsSettings()
	settings.Difficulty = model.DifficultyMaster
	rec := &fakeRecorder{}
	m := newTestModel(t, settings, rec, &fakeLedger{})

	typeText(m, "b")

	if len(rec.events) != 1 {
		t.Fatalf("expected failed test to be recorded")
	}
	r := rec.events[0].Result
	if !r.BailedOut {
		t.Fatalf("expected bailed out result")
	}
	if r.CharStats[1] != 1 || r.CharStats[3] != 2 {
		t.Fatalf("unexpected char stats %v", r.CharStats)
	}
}

func TestExpertFailsOnWrongWord(t *testing.T) {
	settings := wordsSettings()
	settings.Difficulty = model.DifficultyExpert
	rec := &fakeRecorder{}
	m := newTestModel(t, settings, rec, &fakeLedger{})

	typeText(m, "b")
	if len(rec.events) != 0 {
		t.Fatalf("expected expert to allow mistakes inside a word")
	}
	typeText(m, " ")
	if len(rec.events) != 1 || !rec.events[0].BailedOut {
		t.Fatalf("expected expert to fail on submitting the word")
	}
}

func TestTimeModeFinishesOnTimeout(t *testing.T) {
	settings := wordsSettings()
	settings.Mode = model.ModeTime
	settings.Seconds = 1
	rec := &fakeRecorder{}
	m := newTestModel(t, settings, rec, &fakeLedger{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	if cmd == nil {
		t.Fatalf("expected the first key to start the timer")
	}
	m.Update(timer.TimeoutMsg{ID: m.timer.ID()})

	if len(rec.events) != 1 {
		t.Fatalf("expected timeout to record a result")
	}
	r := rec.events[0].Result
	if r.Mode2 != "1" || r.TestDuration != 1 || r.WPM != 12 {
		t.Fatalf("unexpected time result %+v", r)
	}
}

func TestStaleTimeoutIgnored(t *testing.T) {
	settings := wordsSettings()
	settings.Mode = model.ModeTime
	rec := &fakeRecorder{}
	m := newTestModel(t, settings, rec, &fakeLedger{})

	typeText(m, "a")
	m.Update(timer.TimeoutMsg{ID: m.timer.ID() + 1000})
	if len(rec.events) != 0 {
		t.Fatalf("expected timeout of another timer to be ignored")
	}
}

func TestFooterShowsHistory(t *testing.T) {
	ledger := &fakeLedger{
		snap:   &model.Snapshot{XP: 1234},
		pb:     80,
		avgWPM: 75,
		avgAcc: 96,
	}
	m := newTestModel(t, wordsSettings(), &fakeRecorder{}, ledger)

	footer := m.renderFooter()
	for _, want := range []string{"words 2 0%", "PB 80.0", "Avg10 75.0 WPM · 96.0%", "XP 1234"} {
		if !strings.Contains(footer, want) {
			t.Fatalf("expected footer %q to contain %q", footer, want)
		}
	}

	typeText(m, "a a")
	footer = m.renderFooter()
	if !strings.Contains(footer, "Last 12.0 WPM · 100.0% · +42 XP") || !strings.Contains(footer, "PB!") {
		t.Fatalf("expected last result in footer, got %q", footer)
	}
}

func TestFooterReportsRecordFailure(t *testing.T) {
	m := newTestModel(t, wordsSettings(), &fakeRecorder{err: errors.New("disk full")}, &fakeLedger{})
	typeText(m, "a a")
	if !strings.Contains(m.renderFooter(), "result not saved") {
		t.Fatalf("expected failure in footer")
	}
}

func TestRecordFailureKeepsRestarts(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	m := newTestModel(t, wordsSettings(), rec, &fakeLedger{})

	typeText(m, "a")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "a a")
	if m.restarts != 1 || len(m.incomplete) != 1 {
		t.Fatalf("expected restart bookkeeping to survive a failed save, got %d/%d", m.restarts, len(m.incomplete))
	}

	rec.err = nil
	typeText(m, "a a")
	if len(rec.events) != 1 {
		t.Fatalf("expected 1 recorded event, got %d", len(rec.events))
	}
	ev := rec.events[0]
	if ev.RestartCount != 1 || len(ev.IncompleteTests) != 1 {
		t.Fatalf("expected earlier restart in the next result, got %d/%d", ev.RestartCount, len(ev.IncompleteTests))
	}
	if m.restarts != 0 || m.incomplete != nil {
		t.Fatalf("expected restart bookkeeping to reset after a saved result")
	}
}

func TestViewWithoutSize(t *testing.T) {
	m := newTestModel(t, wordsSettings(), &fakeRecorder{}, &fakeLedger{})
	if m.View() == "" {
		t.Fatalf("expected text before the first resize")
	}
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if lines := strings.Count(m.View(), "\n"); lines != 9 {
		t.Fatalf("expected view to fill the window, got %d newlines", lines)
	}
}
