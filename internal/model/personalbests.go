package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// PBStats holds the measured values stored in a personal best.
type PBStats struct {
	WPM         float64
	Acc         float64
	Raw         float64
	Consistency float64
}

// PersonalBest is the best known result for one variant key.
type PersonalBest struct {
	Acc         float64    `json:"acc"`
	Consistency float64    `json:"consistency"`
	Difficulty  Difficulty `json:"difficulty"`
	LazyMode    *bool      `json:"lazyMode,omitempty"`
	Language    string     `json:"language"`
	Numbers     *bool      `json:"numbers,omitempty"`
	Punctuation *bool      `json:"punctuation,omitempty"`
	Raw         float64    `json:"raw"`
	WPM         float64    `json:"wpm"`
	Timestamp   int64      `json:"timestamp"`
}

// Matches compares the variant fields of pb against key. Missing flags on
// legacy entries are read as false.
func (pb PersonalBest) Matches(key VariantKey) bool {
	return BoolValue(pb.Punctuation) == key.Punctuation &&
		BoolValue(pb.Numbers) == key.Numbers &&
		pb.Difficulty == key.Difficulty &&
		pb.Language == key.Language &&
		BoolValue(pb.LazyMode) == key.LazyMode
}

// Bucket holds the personal bests of one (mode, mode2) pair.
//
// A persisted cell that does not decode as a sequence is kept verbatim as
// legacy data so it survives a save; the first write to the bucket replaces
// it with an empty sequence.
type Bucket struct {
	Entries []PersonalBest
	legacy  json.RawMessage
}

// Legacy reports whether the bucket still holds undecodable persisted data.
func (b *Bucket) Legacy() bool {
	return b.legacy != nil
}

// MarshalJSON implements json.Marshaler.
func (b *Bucket) MarshalJSON() ([]byte, error) {
	if b.legacy != nil {
		return b.legacy, nil
	}
	if b.Entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(b.Entries)
}

// UnmarshalJSON implements json.Unmarshaler. It never fails.
func (b *Bucket) UnmarshalJSON(data []byte) error {
	b.legacy = nil
	var entries []PersonalBest
	if err := json.Unmarshal(data, &entries); err != nil {
		b.Entries = nil
		b.legacy = append(json.RawMessage(nil), bytes.TrimSpace(data)...)
		return nil
	}
	if entries == nil {
		entries = []PersonalBest{}
	}
	b.Entries = entries
	return nil
}

func (b *Bucket) find(key VariantKey) (PersonalBest, bool) {
	if b == nil || b.legacy != nil {
		return PersonalBest{}, false
	}
	for _, pb := range b.Entries {
		if pb.Matches(key) {
			return pb, true
		}
	}
	return PersonalBest{}, false
}

// ModeBests maps mode2 to its bucket.
type ModeBests map[Mode2]*Bucket

// UnmarshalJSON tolerates legacy shapes: a mode table that is not an
// object decodes as empty.
func (m *ModeBests) UnmarshalJSON(data []byte) error {
	var raw map[Mode2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*m = ModeBests{}
		return nil
	}
	out := make(ModeBests, len(raw))
	for mode2, cell := range raw {
		b := &Bucket{}
		_ = b.UnmarshalJSON(cell)
		out[mode2] = b
	}
	*m = out
	return nil
}

// PersonalBests is the PB table, one field per mode.
type PersonalBests struct {
	Time   ModeBests `json:"time"`
	Words  ModeBests `json:"words"`
	Quote  ModeBests `json:"quote"`
	Zen    ModeBests `json:"zen"`
	Custom ModeBests `json:"custom"`
}

// NewPersonalBests returns a table with every mode present and empty.
func NewPersonalBests() PersonalBests {
	return PersonalBests{
		Time:   ModeBests{},
		Words:  ModeBests{},
		Quote:  ModeBests{},
		Zen:    ModeBests{},
		Custom: ModeBests{},
	}
}

// UnmarshalJSON tolerates a table that is not an object by decoding it as
// empty. Modes missing from the object are present and empty.
func (p *PersonalBests) UnmarshalJSON(data []byte) error {
	type plain PersonalBests
	out := plain(NewPersonalBests())
	if err := json.Unmarshal(data, &out); err != nil {
		*p = NewPersonalBests()
		return nil
	}
	*p = PersonalBests(out)
	return nil
}

func (p *PersonalBests) table(mode Mode) *ModeBests {
	switch mode {
	case ModeTime:
		return &p.Time
	case ModeWords:
		return &p.Words
	case ModeQuote:
		return &p.Quote
	case ModeZen:
		return &p.Zen
	case ModeCustom:
		return &p.Custom
	}
	return nil
}

// Bucket returns the bucket for (mode, mode2) without creating it.
func (p *PersonalBests) Bucket(mode Mode, mode2 Mode2) (*Bucket, bool) {
	t := p.table(mode)
	if t == nil || *t == nil {
		return nil, false
	}
	b, ok := (*t)[mode2]
	if !ok || b == nil {
		return nil, false
	}
	return b, true
}

// ensureBucket gets or creates the bucket for (mode, mode2). A legacy cell
// is reset to an empty sequence.
func (p *PersonalBests) ensureBucket(mode Mode, mode2 Mode2) *Bucket {
	t := p.table(mode)
	if t == nil {
		return nil
	}
	if *t == nil {
		*t = ModeBests{}
	}
	b, ok := (*t)[mode2]
	if !ok || b == nil {
		b = &Bucket{Entries: []PersonalBest{}}
		(*t)[mode2] = b
	}
	if b.legacy != nil {
		b.legacy = nil
		b.Entries = []PersonalBest{}
	}
	return b
}

// Find returns the personal best for the variant key. Quote mode never has
// entries here.
func (p *PersonalBests) Find(mode Mode, mode2 Mode2, key VariantKey) (PersonalBest, bool) {
	if mode == ModeQuote {
		return PersonalBest{}, false
	}
	b, ok := p.Bucket(mode, mode2)
	if !ok {
		return PersonalBest{}, false
	}
	return b.find(key)
}

// Upsert overwrites the matching entry or appends a new one. It returns
// false for quote mode and unknown modes, which are left untouched.
func (p *PersonalBests) Upsert(mode Mode, mode2 Mode2, key VariantKey, stats PBStats, now time.Time) bool {
	if mode == ModeQuote {
		return false
	}
	b := p.ensureBucket(mode, mode2)
	if b == nil {
		return false
	}
	ts := now.UnixMilli()
	found := false
	for i := range b.Entries {
		pb := &b.Entries[i]
		if !pb.Matches(key) {
			continue
		}
		found = true
		pb.WPM = stats.WPM
		pb.Acc = stats.Acc
		pb.Raw = stats.Raw
		pb.Consistency = stats.Consistency
		pb.Timestamp = ts
		pb.LazyMode = Bool(key.LazyMode)
	}
	if found {
		return true
	}
	b.Entries = append(b.Entries, PersonalBest{
		Acc:         stats.Acc,
		Consistency: stats.Consistency,
		Difficulty:  key.Difficulty,
		LazyMode:    Bool(key.LazyMode),
		Language:    key.Language,
		Numbers:     Bool(key.Numbers),
		Punctuation: Bool(key.Punctuation),
		Raw:         stats.Raw,
		WPM:         stats.WPM,
		Timestamp:   ts,
	})
	return true
}

// Count returns the number of entries across all modes.
func (p *PersonalBests) Count() int {
	total := 0
	for _, mode := range Modes {
		t := p.table(mode)
		for _, b := range *t {
			if b != nil {
				total += len(b.Entries)
			}
		}
	}
	return total
}

// Each calls fn for every entry, mode by mode.
func (p *PersonalBests) Each(fn func(mode Mode, mode2 Mode2, pb PersonalBest)) {
	for _, mode := range Modes {
		t := p.table(mode)
		for mode2, b := range *t {
			if b == nil {
				continue
			}
			for _, pb := range b.Entries {
				fn(mode, mode2, pb)
			}
		}
	}
}
