// Package model defines the snapshot data model shared by the store,
// persistence and practice layers.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Mode identifies a test mode. The set is closed.
type Mode string

// Supported modes.
const (
	ModeTime   Mode = "time"
	ModeWords  Mode = "words"
	ModeQuote  Mode = "quote"
	ModeZen    Mode = "zen"
	ModeCustom Mode = "custom"
)

// Modes lists every mode in table order.
var Modes = []Mode{ModeTime, ModeWords, ModeQuote, ModeZen, ModeCustom}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q", s)
	}
	return m, nil
}

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeTime, ModeWords, ModeQuote, ModeZen, ModeCustom:
		return true
	}
	return false
}

// Mode2 is the mode-specific sub-selector: seconds for time, word count for
// words, a quote id for quote, and the literal mode name for zen and custom.
type Mode2 string

// UnmarshalJSON accepts legacy numeric values and stores their shortest
// decimal form, so 15.0 and 15 both decode to "15". Decoded numbers compare
// equal to their string form everywhere, strict matching included.
func (m *Mode2) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Mode2(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("mode2: %w", err)
	}
	*m = Mode2(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// Int returns the numeric value of a time, words or quote mode2.
func (m Mode2) Int() (int, bool) {
	n, err := strconv.Atoi(string(m))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Mode2For formats a numeric selector for the given mode.
func Mode2For(mode Mode, n int) Mode2 {
	switch mode {
	case ModeZen:
		return "zen"
	case ModeCustom:
		return "custom"
	}
	return Mode2(strconv.Itoa(n))
}

// ValidMode2 checks that mode2 belongs to the domain bound to mode.
func ValidMode2(mode Mode, mode2 Mode2) bool {
	switch mode {
	case ModeTime, ModeWords:
		n, ok := mode2.Int()
		return ok && n >= 0
	case ModeQuote:
		n, ok := mode2.Int()
		return ok && n >= -1
	case ModeZen:
		return mode2 == "zen"
	case ModeCustom:
		return mode2 == "custom"
	}
	return false
}

// Difficulty is the failure policy of a test.
type Difficulty string

// Difficulties.
const (
	DifficultyNormal Difficulty = "normal"
	DifficultyExpert Difficulty = "expert"
	DifficultyMaster Difficulty = "master"
)

// ParseDifficulty validates a difficulty name.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case DifficultyNormal, DifficultyExpert, DifficultyMaster:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// VariantKey distinguishes personal bests inside one (mode, mode2) bucket.
type VariantKey struct {
	Punctuation bool
	Numbers     bool
	Difficulty  Difficulty
	Language    string
	LazyMode    bool
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// BoolValue treats a missing flag as false.
func BoolValue(p *bool) bool {
	return p != nil && *p
}

func strictBool(p *bool, want bool) bool {
	return p != nil && *p == want
}

// Result is one completed test attempt.
type Result struct {
	ID                    string     `json:"_id"`
	Mode                  Mode       `json:"mode"`
	Mode2                 Mode2      `json:"mode2"`
	Punctuation           *bool      `json:"punctuation,omitempty"`
	Numbers               *bool      `json:"numbers,omitempty"`
	LazyMode              *bool      `json:"lazyMode,omitempty"`
	Difficulty            Difficulty `json:"difficulty"`
	Language              string     `json:"language"`
	WPM                   float64    `json:"wpm"`
	Acc                   float64    `json:"acc"`
	RawWPM                float64    `json:"rawWpm"`
	Consistency           float64    `json:"consistency"`
	CharStats             []int      `json:"charStats,omitempty"`
	Funbox                []string   `json:"funbox,omitempty"`
	Timestamp             int64      `json:"timestamp"`
	Tags                  []string   `json:"tags"`
	TestDuration          float64    `json:"testDuration"`
	AfkDuration           float64    `json:"afkDuration"`
	IncompleteTestSeconds float64    `json:"incompleteTestSeconds"`
	RestartCount          int        `json:"restartCount"`
	BailedOut             bool       `json:"bailedOut,omitempty"`
	IsPB                  bool       `json:"isPb,omitempty"`
}

// Time returns the result timestamp.
func (r Result) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Variant returns the result's variant key with missing flags read as false.
func (r Result) Variant() VariantKey {
	return VariantKey{
		Punctuation: BoolValue(r.Punctuation),
		Numbers:     BoolValue(r.Numbers),
		Difficulty:  r.Difficulty,
		Language:    r.Language,
		LazyMode:    BoolValue(r.LazyMode),
	}
}

// MatchesVariant compares mode and variant key, ignoring mode2. Missing
// flags on legacy records match false.
func (r Result) MatchesVariant(mode Mode, key VariantKey) bool {
	return r.Mode == mode &&
		BoolValue(r.Punctuation) == key.Punctuation &&
		BoolValue(r.Numbers) == key.Numbers &&
		r.Language == key.Language &&
		r.Difficulty == key.Difficulty &&
		BoolValue(r.LazyMode) == key.LazyMode
}

// MatchesStrict compares every dimension without defaulting missing flags.
func (r Result) MatchesStrict(mode Mode, mode2 Mode2, key VariantKey) bool {
	return r.Mode == mode &&
		r.Mode2 == mode2 &&
		strictBool(r.Punctuation, key.Punctuation) &&
		strictBool(r.Numbers, key.Numbers) &&
		r.Language == key.Language &&
		r.Difficulty == key.Difficulty &&
		strictBool(r.LazyMode, key.LazyMode)
}

// HasTag reports whether the result is attributed to tagID.
func (r Result) HasTag(tagID string) bool {
	for _, id := range r.Tags {
		if id == tagID {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether the result carries at least one of tagIDs.
func (r Result) HasAnyTag(tagIDs []string) bool {
	for _, id := range tagIDs {
		if r.HasTag(id) {
			return true
		}
	}
	return false
}

// IncompleteTest describes an attempt abandoned before completion.
type IncompleteTest struct {
	Acc     float64 `json:"acc"`
	Seconds float64 `json:"seconds"`
}

// CompletedEvent is a finished test as seen by the XP engine: the result
// plus the attempts restarted before it.
type CompletedEvent struct {
	Result
	IncompleteTests []IncompleteTest `json:"incompleteTests,omitempty"`
}
