// Package xp computes experience gained from a completed test.
package xp

import (
	"math"
	"time"

	"github.com/verte-zerg/typeledger/internal/funbox"
	"github.com/verte-zerg/typeledger/internal/model"
)

const (
	minDailyBonus = 10
	maxDailyBonus = 1000
	dailyBonusPct = 0.05
)

// Breakdown keys.
const (
	Base         = "base"
	FullAccuracy = "fullAccuracy"
	Corrected    = "corrected"
	Quote        = "quote"
	Punctuation  = "punctuation"
	Numbers      = "numbers"
	Funbox       = "funbox"
	Incomplete   = "incomplete"
	Daily        = "daily"
	AccPenalty   = "accPenalty"
)

// Breakdown lists the contributing factors of an XP award. Absent keys did
// not apply.
type Breakdown map[string]int

// Calculator computes XP awards.
type Calculator struct {
	funboxes funbox.Lookup
	now      func() time.Time
	loc      *time.Location
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithClock overrides the time source used for the daily bonus.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLocation sets the location whose calendar days gate the daily bonus.
// Days are UTC by default.
func WithLocation(loc *time.Location) Option {
	return func(c *Calculator) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithFunboxes overrides the funbox metadata lookup.
func WithFunboxes(lookup funbox.Lookup) Option {
	return func(c *Calculator) {
		if lookup != nil {
			c.funboxes = lookup
		}
	}
}

// New returns a Calculator using the bundled funbox catalog.
func New(opts ...Option) *Calculator {
	c := &Calculator{
		funboxes: funbox.Get,
		now:      time.Now,
		loc:      time.UTC,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate returns the XP for ev given the user's current total and the
// time of their previous result. A zero lastResultAt means there is none.
// The total is not floored at zero.
func (c *Calculator) Calculate(ev model.CompletedEvent, currentTotalXP int, lastResultAt time.Time) (int, Breakdown) {
	if ev.Mode == model.ModeZen {
		return 0, Breakdown{}
	}
	breakdown := Breakdown{}

	base := round((ev.TestDuration - ev.AfkDuration) * 2)
	breakdown[Base] = int(base)

	modifier := 1.0
	if ev.Acc == 100 {
		modifier += 0.5
		breakdown[FullAccuracy] = int(round(base * 0.5))
	} else if correctedEverything(ev.CharStats) {
		modifier += 0.25
		breakdown[Corrected] = int(round(base * 0.25))
	}

	if ev.Mode == model.ModeQuote {
		modifier += 0.5
		breakdown[Quote] = int(round(base * 0.5))
	} else {
		if model.BoolValue(ev.Punctuation) {
			modifier += 0.4
			breakdown[Punctuation] = int(round(base * 0.4))
		}
		if model.BoolValue(ev.Numbers) {
			modifier += 0.1
			breakdown[Numbers] = int(round(base * 0.1))
		}
	}

	if len(ev.Funbox) > 0 {
		var level float64
		for _, name := range ev.Funbox {
			if md, ok := c.funboxes(name); ok {
				level += md.DifficultyLevel
			}
		}
		if level > 0 {
			modifier += level
			breakdown[Funbox] = int(round(base * level))
		}
	}

	var incomplete float64
	if len(ev.IncompleteTests) > 0 {
		for _, it := range ev.IncompleteTests {
			mod := math.Max(0, (it.Acc-50)/50)
			incomplete += round(it.Seconds * mod)
		}
		breakdown[Incomplete] = int(incomplete)
	} else if ev.IncompleteTestSeconds > 0 {
		incomplete = round(ev.IncompleteTestSeconds)
		breakdown[Incomplete] = int(incomplete)
	}

	accuracyModifier := (ev.Acc - 50) / 50

	daily := 0
	if !lastResultAt.IsZero() && !c.sameDay(lastResultAt, c.now()) {
		daily = DailyBonus(currentTotalXP)
		breakdown[Daily] = daily
	}

	withModifiers := round(base * modifier)
	afterAccuracy := round(withModifiers * accuracyModifier)
	breakdown[AccPenalty] = int(withModifiers - afterAccuracy)

	total := int(round(afterAccuracy+incomplete)) + daily
	return total, breakdown
}

// DailyBonus returns the first-test-of-the-day bonus for a total.
func DailyBonus(currentTotalXP int) int {
	bonus := int(round(float64(currentTotalXP) * dailyBonusPct))
	if bonus > maxDailyBonus {
		bonus = maxDailyBonus
	}
	if bonus < minDailyBonus {
		bonus = minDailyBonus
	}
	return bonus
}

func (c *Calculator) sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(c.loc).Date()
	by, bm, bd := b.In(c.loc).Date()
	return ay == by && am == bm && ad == bd
}

// correctedEverything reports whether every stat after the correct-character
// count is zero.
func correctedEverything(charStats []int) bool {
	if len(charStats) <= 1 {
		return true
	}
	for _, n := range charStats[1:] {
		if n != 0 {
			return false
		}
	}
	return true
}

// round rounds half toward positive infinity.
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}
