// Package fuzzy decides whether two names denote the same person.
package fuzzy

import (
	"math"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// DefaultThreshold is the minimum ratio for two names to match.
const DefaultThreshold = 75

// Ratio returns the indel similarity of a and b in [0,100]: twice the longest
// common subsequence over the combined rune length, rounded half to even.
func Ratio(a, b string) int {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	lcs := edlib.LCS(a, b)
	return int(math.RoundToEven(200 * float64(lcs) / float64(total)))
}

// Matches reports whether candidate is at least threshold-similar to target.
func Matches(target, candidate string, threshold int) bool {
	return Ratio(target, candidate) >= threshold
}

// Matcher carries a tunable threshold.
type Matcher struct {
	Threshold int
}

// NewMatcher returns a matcher; non-positive thresholds fall back to DefaultThreshold.
func NewMatcher(threshold int) Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Matcher{Threshold: threshold}
}

// Match applies the matcher threshold.
func (m Matcher) Match(target, candidate string) bool {
	return Matches(target, candidate, m.Threshold)
}
