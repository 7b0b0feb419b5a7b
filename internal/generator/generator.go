// Package generator builds typing text sequences.
package generator

import (
	"math/rand"
	"strconv"
	"time"
	"unicode"
)

// Options selects the text variant.
type Options struct {
	Punctuation bool
	Numbers     bool
}

// Generator produces randomized typing text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

const (
	numberChance = 0.1
	endChance    = 0.1
	commaChance  = 0.1
	otherChance  = 0.04
)

// Generate selects count words uniformly. With punctuation the words form
// capitalized sentences; with numbers some words become digit runs.
func (g *Generator) Generate(words []string, count int, opts Options) []string {
	if len(words) == 0 || count <= 0 {
		return nil
	}
	result := make([]string, 0, count)
	sentenceStart := true
	for i := 0; i < count; i++ {
		word := words[g.rnd.Intn(len(words))]
		if opts.Numbers && g.rnd.Float64() < numberChance {
			word = g.number()
		}
		if opts.Punctuation {
			if sentenceStart {
				word = capitalize(word)
			}
			word, sentenceStart = g.punctuate(word, i == count-1)
		}
		result = append(result, word)
	}
	return result
}

func (g *Generator) number() string {
	digits := 1 + g.rnd.Intn(4)
	n := 1 + g.rnd.Intn(9)
	for i := 1; i < digits; i++ {
		n = n*10 + g.rnd.Intn(10)
	}
	return strconv.Itoa(n)
}

// punctuate appends trailing punctuation and reports whether a new
// sentence starts after the word.
func (g *Generator) punctuate(word string, last bool) (string, bool) {
	if last {
		return word + ".", true
	}
	r := g.rnd.Float64()
	switch {
	case r < endChance:
		return word + string([]rune{'.', '.', '.', '?', '!'}[g.rnd.Intn(5)]), true
	case r < endChance+commaChance:
		return word + ",", false
	case r < endChance+commaChance+otherChance:
		return word + string([]rune{';', ':', '-'}[g.rnd.Intn(3)]), false
	}
	return word, false
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
