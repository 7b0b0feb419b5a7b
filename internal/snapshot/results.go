package snapshot

import (
	"context"
	"strconv"
	"time"

	"github.com/verte-zerg/typeledger/internal/metrics"
	"github.com/verte-zerg/typeledger/internal/model"
)

const (
	averageWindow = 10
	dailyWindow   = 24 * time.Hour
)

// LocalResult is a completed test together with its side effects on the
// snapshot. Nil fields leave the matching aggregate untouched.
type LocalResult struct {
	Result *model.Result
	XP     *int
	Streak *int
	IsPB   bool
}

// RecordResult folds a completed test into the snapshot and persists it
// without notifying observers. It reports false before Init.
func (s *Store) RecordResult(ctx context.Context, in LocalResult) bool {
	snap := s.snap
	if snap == nil {
		return false
	}

	if r := in.Result; r != nil {
		snap.Results = append([]model.Result{*r}, snap.Results...)
		if snap.TestActivity != nil {
			snap.TestActivity.Increment(r.Time().In(s.loc))
		}
		snap.TypingStats.TimeTyping += r.TestDuration + r.IncompleteTestSeconds - r.AfkDuration
		snap.TypingStats.StartedTests += r.RestartCount + 1
		snap.TypingStats.CompletedTests++
		s.metrics.ResultRecorded()

		if in.IsPB {
			stats := model.PBStats{WPM: r.WPM, Acc: r.Acc, Raw: r.RawWPM, Consistency: r.Consistency}
			if snap.PersonalBests.Upsert(r.Mode, r.Mode2, r.Variant(), stats, s.now()) {
				s.metrics.PersonalBest(metrics.ScopeGlobal)
			}
		}
	}

	if in.XP != nil {
		s.addXP(*in.XP)
	}

	if in.Streak != nil {
		snap.Streak = *in.Streak
		if snap.Streak > snap.MaxStreak {
			snap.MaxStreak = snap.Streak
		}
	}

	s.save(ctx)
	return true
}

// AddXP adds xp to the total and persists without notifying observers.
// Negative amounts are ignored so the total never decreases.
func (s *Store) AddXP(ctx context.Context, xp int) {
	if s.snap == nil {
		return
	}
	s.addXP(xp)
	s.save(ctx)
}

func (s *Store) addXP(xp int) {
	if xp <= 0 {
		return
	}
	s.snap.XP += xp
	s.metrics.XPAwarded(xp)
}

// filter selects results matching the variant and, when any tag is active,
// carrying at least one active tag. mode2 is not compared.
func (s *Store) filter() func(r model.Result, mode model.Mode, key model.VariantKey) bool {
	active := s.snap.ActiveTagIDs()
	return func(r model.Result, mode model.Mode, key model.VariantKey) bool {
		if !r.MatchesVariant(mode, key) {
			return false
		}
		return len(active) == 0 || r.HasAnyTag(active)
	}
}

// AverageOf10 returns the average wpm and accuracy of the ten newest
// results matching the variant. For a quote that was never typed before
// the ten newest quotes of any id are averaged instead. Both values are 0
// when nothing matches.
func (s *Store) AverageOf10(mode model.Mode, mode2 model.Mode2, key model.VariantKey) (float64, float64) {
	if s.snap == nil {
		return 0, 0
	}
	match := s.filter()

	var wpmSum, accSum, lastWPM, lastAcc float64
	count, lastCount := 0, 0
	for _, r := range s.snap.Results {
		if !match(r, mode, key) {
			continue
		}
		sameMode2 := r.Mode2 == mode2
		if !sameMode2 && mode != model.ModeQuote {
			continue
		}
		if lastCount < averageWindow {
			lastWPM += r.WPM
			lastAcc += r.Acc
			lastCount++
		}
		if sameMode2 {
			wpmSum += r.WPM
			accSum += r.Acc
			count++
			if count >= averageWindow {
				break
			}
		}
	}

	if count == 0 && mode == model.ModeQuote {
		return average(lastWPM, lastAcc, lastCount)
	}
	return average(wpmSum, accSum, count)
}

func average(wpm, acc float64, n int) (float64, float64) {
	if n == 0 {
		return 0, 0
	}
	return wpm / float64(n), acc / float64(n)
}

// DailyBest returns the best wpm among matching results of the last 24
// hours, or 0. For quotes every quote id counts.
func (s *Store) DailyBest(mode model.Mode, mode2 model.Mode2, key model.VariantKey) float64 {
	if s.snap == nil {
		return 0
	}
	match := s.filter()
	cutoff := s.now().Add(-dailyWindow).UnixMilli()

	best := 0.0
	for _, r := range s.snap.Results {
		if !match(r, mode, key) || r.Timestamp < cutoff {
			continue
		}
		if r.Mode2 != mode2 && mode != model.ModeQuote {
			continue
		}
		if r.WPM > best {
			best = r.WPM
		}
	}
	return best
}

// DeleteLocalTag removes tagID from every result. The snapshot is not
// persisted.
func (s *Store) DeleteLocalTag(tagID string) {
	if s.snap == nil {
		return
	}
	for i := range s.snap.Results {
		r := &s.snap.Results[i]
		kept := r.Tags[:0]
		for _, id := range r.Tags {
			if id != tagID {
				kept = append(kept, id)
			}
		}
		r.Tags = kept
	}
}

// HasResults reports whether history is loaded and holds more than offset
// results.
func (s *Store) HasResults(offset int) bool {
	return s.snap != nil && s.snap.Results != nil && len(s.snap.Results) > offset
}

// TestActivity returns per-day test counts. "current" selects the 365 days
// ending today; a year selects that calendar year.
func (s *Store) TestActivity(year string) ([]int, bool) {
	if s.snap == nil || s.snap.TestActivity == nil {
		return nil, false
	}
	now := s.now().In(s.loc)
	if year == "current" {
		return s.snap.TestActivity.Rolling(now), true
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return nil, false
	}
	return s.snap.TestActivity.Year(y, s.loc), true
}
