// Package funbox provides metadata for practice-mode modifiers.
package funbox

// Metadata describes how a funbox affects XP and PB eligibility.
type Metadata struct {
	Name            string
	DifficultyLevel float64
	CanGetPB        bool
}

// Lookup resolves funbox metadata by name.
type Lookup func(name string) (Metadata, bool)

var catalog = map[string]Metadata{
	"58008":             {DifficultyLevel: 1, CanGetPB: false},
	"arrows":            {DifficultyLevel: 1, CanGetPB: false},
	"ascii":             {DifficultyLevel: 1, CanGetPB: false},
	"backwards":         {DifficultyLevel: 3, CanGetPB: true},
	"binary":            {DifficultyLevel: 1, CanGetPB: false},
	"capitals":          {DifficultyLevel: 1, CanGetPB: true},
	"choo_choo":         {DifficultyLevel: 2, CanGetPB: true},
	"crt":               {DifficultyLevel: 0, CanGetPB: true},
	"ddoouubblleedd":    {DifficultyLevel: 1, CanGetPB: true},
	"earthquake":        {DifficultyLevel: 1, CanGetPB: true},
	"gibberish":         {DifficultyLevel: 1, CanGetPB: false},
	"hexadecimal":       {DifficultyLevel: 1, CanGetPB: false},
	"instant_messaging": {DifficultyLevel: 1, CanGetPB: false},
	"layoutfluid":       {DifficultyLevel: 1, CanGetPB: true},
	"memory":            {DifficultyLevel: 3, CanGetPB: true},
	"mirror":            {DifficultyLevel: 3, CanGetPB: true},
	"morse":             {DifficultyLevel: 1, CanGetPB: false},
	"nausea":            {DifficultyLevel: 2, CanGetPB: true},
	"nospace":           {DifficultyLevel: 0, CanGetPB: false},
	"plus_one":          {DifficultyLevel: 0, CanGetPB: true},
	"plus_two":          {DifficultyLevel: 0, CanGetPB: true},
	"plus_zero":         {DifficultyLevel: 0, CanGetPB: true},
	"read_ahead":        {DifficultyLevel: 2, CanGetPB: true},
	"read_ahead_easy":   {DifficultyLevel: 1, CanGetPB: true},
	"read_ahead_hard":   {DifficultyLevel: 3, CanGetPB: true},
	"round_round_baby":  {DifficultyLevel: 3, CanGetPB: true},
	"rAnDoMcAsE":        {DifficultyLevel: 2, CanGetPB: false},
	"simon_says":        {DifficultyLevel: 1, CanGetPB: true},
	"specials":          {DifficultyLevel: 1, CanGetPB: false},
	"tts":               {DifficultyLevel: 1, CanGetPB: true},
	"upside_down":       {DifficultyLevel: 3, CanGetPB: true},
	"weakspot":          {DifficultyLevel: 1, CanGetPB: false},
	"zipf":              {DifficultyLevel: 1, CanGetPB: false},
}

// Get is the built-in Lookup over the bundled catalog.
func Get(name string) (Metadata, bool) {
	md, ok := catalog[name]
	if !ok {
		return Metadata{}, false
	}
	md.Name = name
	return md, true
}

// Resolve returns metadata for every known name, skipping unknown ones.
func Resolve(lookup Lookup, names []string) []Metadata {
	out := make([]Metadata, 0, len(names))
	for _, name := range names {
		if md, ok := lookup(name); ok {
			out = append(out, md)
		}
	}
	return out
}

// CanGetPB reports whether a test with these funboxes may set a personal
// best.
func CanGetPB(funboxes []Metadata) bool {
	for _, fb := range funboxes {
		if !fb.CanGetPB {
			return false
		}
	}
	return true
}
