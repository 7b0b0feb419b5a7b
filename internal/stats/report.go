package stats

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/typeledger/internal/model"
)

const terminalWidthBackup = 80

// TerminalWidth returns the width of the terminal behind f, or a fallback.
func TerminalWidth(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return terminalWidthBackup
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return terminalWidthBackup
	}
	return w
}

// Summary aggregates a snapshot for display.
type Summary struct {
	Name           string
	Results        int
	StartedTests   int
	CompletedTests int
	TimeTyping     time.Duration
	XP             int
	Streak         int
	MaxStreak      int
	BestWPM        float64
	AvgWPM         float64
	AvgAcc         float64
	PersonalBests  int
	Tags           int
}

// Summarize computes a Summary. Averages cover the newest window results.
func Summarize(snap *model.Snapshot, window int) Summary {
	s := Summary{
		Name:           snap.Name,
		Results:        len(snap.Results),
		StartedTests:   snap.TypingStats.StartedTests,
		CompletedTests: snap.TypingStats.CompletedTests,
		TimeTyping:     time.Duration(snap.TypingStats.TimeTyping * float64(time.Second)),
		XP:             snap.XP,
		Streak:         snap.Streak,
		MaxStreak:      snap.MaxStreak,
		PersonalBests:  snap.PersonalBests.Count(),
		Tags:           len(snap.Tags),
	}
	var wpm, acc []float64
	for i, r := range snap.Results {
		if r.WPM > s.BestWPM {
			s.BestWPM = r.WPM
		}
		if window <= 0 || i < window {
			wpm = append(wpm, r.WPM)
			acc = append(acc, r.Acc)
		}
	}
	s.AvgWPM = Mean(wpm)
	s.AvgAcc = Mean(acc)
	return s
}

// RenderSummary prints a summary of the snapshot.
func RenderSummary(w io.Writer, s Summary, window int) error {
	if s.Results == 0 {
		_, err := fmt.Fprintln(w, "No results yet.")
		return err
	}
	lines := [][2]string{
		{"Tests completed", fmt.Sprintf("%d of %d started", s.CompletedTests, s.StartedTests)},
		{"Time typing", s.TimeTyping.Round(time.Second).String()},
		{"XP", strconv.Itoa(s.XP)},
		{"Streak", fmt.Sprintf("%d (max %d)", s.Streak, s.MaxStreak)},
		{"Best WPM", fmt.Sprintf("%.2f", s.BestWPM)},
		{fmt.Sprintf("Avg WPM (last %d)", window), fmt.Sprintf("%.2f", s.AvgWPM)},
		{fmt.Sprintf("Avg Accuracy (last %d)", window), fmt.Sprintf("%.2f%%", s.AvgAcc)},
		{"Personal bests", strconv.Itoa(s.PersonalBests)},
		{"Tags", strconv.Itoa(s.Tags)},
	}
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{l[0] + ":", l[1]})
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	for _, line := range formatTable(nil, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

type pbRow struct {
	mode  model.Mode
	mode2 model.Mode2
	pb    model.PersonalBest
}

// RenderPersonalBests prints the personal best table.
func RenderPersonalBests(w io.Writer, pbs model.PersonalBests) error {
	var rows []pbRow
	pbs.Each(func(mode model.Mode, mode2 model.Mode2, pb model.PersonalBest) {
		rows = append(rows, pbRow{mode, mode2, pb})
	})
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No personal bests yet.")
		return err
	}
	order := map[model.Mode]int{}
	for i, m := range model.Modes {
		order[m] = i
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.mode != b.mode {
			return order[a.mode] < order[b.mode]
		}
		if a.mode2 != b.mode2 {
			an, aok := a.mode2.Int()
			bn, bok := b.mode2.Int()
			if aok && bok {
				return an < bn
			}
			return a.mode2 < b.mode2
		}
		return a.pb.WPM > b.pb.WPM
	})

	headers := []string{"Mode", "WPM", "Acc", "Raw", "Cons", "Language", "Variant", "Date"}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, []string{
			fmt.Sprintf("%s %s", r.mode, r.mode2),
			fmt.Sprintf("%.2f", r.pb.WPM),
			fmt.Sprintf("%.2f%%", r.pb.Acc),
			fmt.Sprintf("%.2f", r.pb.Raw),
			fmt.Sprintf("%.0f%%", r.pb.Consistency),
			r.pb.Language,
			VariantLabel(model.BoolValue(r.pb.Punctuation), model.BoolValue(r.pb.Numbers), r.pb.Difficulty, model.BoolValue(r.pb.LazyMode)),
			time.UnixMilli(r.pb.Timestamp).UTC().Format("2006-01-02"),
		})
	}
	if _, err := fmt.Fprintln(w, "Personal Bests"); err != nil {
		return err
	}
	for _, line := range formatTable(headers, table, map[int]bool{1: true, 2: true, 3: true, 4: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// VariantLabel describes the non-default dimensions of a variant.
func VariantLabel(punctuation, numbers bool, difficulty model.Difficulty, lazy bool) string {
	label := ""
	add := func(s string) {
		if label != "" {
			label += ","
		}
		label += s
	}
	if punctuation {
		add("punct")
	}
	if numbers {
		add("num")
	}
	if difficulty != "" && difficulty != model.DifficultyNormal {
		add(string(difficulty))
	}
	if lazy {
		add("lazy")
	}
	if label == "" {
		return "-"
	}
	return label
}

// RenderHistory prints wpm and accuracy sparklines, oldest to newest,
// smoothed over window results.
func RenderHistory(w io.Writer, results []model.Result, window, width int) error {
	if len(results) == 0 {
		return nil
	}
	wpm := make([]float64, len(results))
	acc := make([]float64, len(results))
	for i, r := range results {
		j := len(results) - 1 - i
		wpm[j] = r.WPM
		acc[j] = r.Acc
	}
	const labelWidth = len("Accuracy ")
	lineWidth := width - labelWidth
	if lineWidth < 10 {
		lineWidth = 10
	}
	if _, err := fmt.Fprintf(w, "History (moving average of %d)\n", window); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-*s%s\n", labelWidth, "WPM", Sparkline(MovingAverage(wpm, window), lineWidth)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-*s%s\n", labelWidth, "Accuracy", Sparkline(MovingAverage(acc, window), lineWidth)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderActivity prints a sparkline of daily test counts.
func RenderActivity(w io.Writer, days []int, width int) error {
	if len(days) == 0 {
		return nil
	}
	values := make([]float64, len(days))
	total, active := 0, 0
	for i, n := range days {
		values[i] = float64(n)
		total += n
		if n > 0 {
			active++
		}
	}
	if _, err := fmt.Fprintf(w, "Activity: %d tests on %d of %d days\n", total, active, len(days)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, Sparkline(values, width)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderTags prints tags with their activation state and PB count.
func RenderTags(w io.Writer, tags []model.Tag) error {
	if len(tags) == 0 {
		_, err := fmt.Fprintln(w, "No tags.")
		return err
	}
	rows := make([][]string, 0, len(tags))
	for _, t := range tags {
		active := ""
		if t.Active {
			active = "*"
		}
		pbs := 0
		t.PersonalBests.Each(func(model.Mode, model.Mode2, model.PersonalBest) { pbs++ })
		rows = append(rows, []string{active, t.Name, strconv.Itoa(pbs), t.ID})
	}
	for _, line := range formatTable([]string{"", "Name", "PBs", "ID"}, rows, map[int]bool{2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderThemes prints custom themes.
func RenderThemes(w io.Writer, themes []model.CustomTheme) error {
	if len(themes) == 0 {
		_, err := fmt.Fprintln(w, "No custom themes.")
		return err
	}
	rows := make([][]string, 0, len(themes))
	for _, t := range themes {
		rows = append(rows, []string{t.Name, strings.Join(t.Colors, " "), t.ID})
	}
	for _, line := range formatTable([]string{"Name", "Colors", "ID"}, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
