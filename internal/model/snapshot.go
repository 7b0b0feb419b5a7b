package model

import "time"

// MaxCustomThemes bounds Snapshot.CustomThemes.
const MaxCustomThemes = 20

// Snapshot is the complete local state of one user.
type Snapshot struct {
	Name            string            `json:"name"`
	AddedAt         int64             `json:"addedAt"`
	Results         []Result          `json:"results"`
	PersonalBests   PersonalBests     `json:"personalBests"`
	Tags            []Tag             `json:"tags"`
	LbMemory        LbMemory          `json:"lbMemory,omitempty"`
	TypingStats     TypingStats       `json:"typingStats"`
	XP              int               `json:"xp"`
	Streak          int               `json:"streak"`
	MaxStreak       int               `json:"maxStreak"`
	TestActivity    *ActivityCalendar `json:"testActivity,omitempty"`
	Banned          bool              `json:"banned,omitempty"`
	Verified        bool              `json:"verified,omitempty"`
	LbOptOut        bool              `json:"lbOptOut,omitempty"`
	CustomThemes    []CustomTheme     `json:"customThemes"`
	Inventory       Inventory         `json:"inventory"`
	InboxUnreadSize int               `json:"inboxUnreadSize"`
}

// DefaultSnapshot returns an empty snapshot created at now.
func DefaultSnapshot(now time.Time) *Snapshot {
	return &Snapshot{
		AddedAt:       now.UnixMilli(),
		Results:       []Result{},
		PersonalBests: NewPersonalBests(),
		Tags:          []Tag{},
		TestActivity:  NewActivityCalendar(),
		CustomThemes:  []CustomTheme{},
		Inventory:     Inventory{Badges: []Badge{}},
	}
}

// Tag returns the tag with the given id.
func (s *Snapshot) Tag(id string) (*Tag, bool) {
	for i := range s.Tags {
		if s.Tags[i].ID == id {
			return &s.Tags[i], true
		}
	}
	return nil, false
}

// ActiveTagIDs returns the ids of tags marked active, in tag order.
func (s *Snapshot) ActiveTagIDs() []string {
	var ids []string
	for _, t := range s.Tags {
		if t.Active {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// LastResult returns the newest result.
func (s *Snapshot) LastResult() (Result, bool) {
	if len(s.Results) == 0 {
		return Result{}, false
	}
	return s.Results[0], true
}

// Tag is a user label with its own personal best table.
type Tag struct {
	ID            string        `json:"_id"`
	Name          string        `json:"name"`
	Active        bool          `json:"active,omitempty"`
	PersonalBests PersonalBests `json:"personalBests"`
}

// TypingStats accumulates totals over all tests.
type TypingStats struct {
	TimeTyping     float64 `json:"timeTyping"`
	StartedTests   int     `json:"startedTests"`
	CompletedTests int     `json:"completedTests"`
}

// CustomTheme is a user-defined color theme.
type CustomTheme struct {
	ID     string   `json:"_id"`
	Name   string   `json:"name"`
	Colors []string `json:"colors"`
}

// Badge is an inventory item.
type Badge struct {
	ID       int  `json:"id"`
	Selected bool `json:"selected,omitempty"`
}

// Inventory holds earned items.
type Inventory struct {
	Badges []Badge `json:"badges"`
}

// LbMemory caches the last known leaderboard rank per mode, mode2 and
// language.
type LbMemory map[Mode]map[Mode2]map[string]int

// Rank returns the remembered rank.
func (m LbMemory) Rank(mode Mode, mode2 Mode2, language string) (int, bool) {
	rank, ok := m[mode][mode2][language]
	return rank, ok
}

// Remember stores rank for a time-mode leaderboard. Other modes have no
// leaderboards and are ignored.
func (m *LbMemory) Remember(mode Mode, mode2 Mode2, language string, rank int) bool {
	if mode != ModeTime {
		return false
	}
	if *m == nil {
		*m = LbMemory{}
	}
	byMode2, ok := (*m)[mode]
	if !ok || byMode2 == nil {
		byMode2 = map[Mode2]map[string]int{
			"15": {"english": 0},
			"60": {"english": 0},
		}
		(*m)[mode] = byMode2
	}
	byLang, ok := byMode2[mode2]
	if !ok || byLang == nil {
		byLang = map[string]int{}
		byMode2[mode2] = byLang
	}
	byLang[language] = rank
	return true
}
