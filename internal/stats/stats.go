// Package stats contains typing metrics and text reports over a snapshot.
package stats

import (
	"math"
	"strings"
)

const sparkChars = " .:-=+*#%@"

// charsPerWord is the standard word length used by wpm figures.
const charsPerWord = 5.0

// WPM converts typed characters over seconds to words per minute.
func WPM(chars int, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return float64(chars) / charsPerWord * (60 / seconds)
}

// Accuracy returns the percentage of correct keystrokes.
func Accuracy(correct, incorrect int) float64 {
	total := correct + incorrect
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// Consistency maps the coefficient of variation of per-second raw speeds
// onto 0..100, where 100 is perfectly even typing.
func Consistency(raw []float64) float64 {
	if len(raw) == 0 {
		return 0
	}
	mean := Mean(raw)
	if mean == 0 {
		return 0
	}
	var sq float64
	for _, v := range raw {
		sq += (v - mean) * (v - mean)
	}
	cov := math.Sqrt(sq/float64(len(raw))) / mean
	return RoundTo2(100 * (1 - math.Tanh(cov+math.Pow(cov, 3)/3+math.Pow(cov, 5)/5)))
}

// Mean returns the arithmetic mean, 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// RoundTo2 rounds to two decimals.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline. When width is positive
// and smaller than the series, only the newest width values are drawn.
func Sparkline(values []float64, width int) string {
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[max(0, min(idx, len(sparkChars)-1))])
	}
	return b.String()
}
