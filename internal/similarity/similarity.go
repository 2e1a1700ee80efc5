package similarity

import (
	"strings"
	"unicode"
)

// Checker flags near-duplicate texts by character n-gram overlap.
type Checker struct {
	threshold float64
	ngramSize int
}

func New(threshold float64, ngramSize int) *Checker {
	if ngramSize <= 0 {
		ngramSize = 3
	}
	return &Checker{threshold: threshold, ngramSize: ngramSize}
}

// normalize lowercases, removes punctuation, and collapses whitespace.
func (c *Checker) normalize(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevSpace = false
		} else if !prevSpace {
			sb.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(sb.String())
}

// NGrams extracts all character n-grams from the text.
func (c *Checker) NGrams(text string) map[string]struct{} {
	runes := []rune(c.normalize(text))
	set := make(map[string]struct{})
	for i := 0; i <= len(runes)-c.ngramSize; i++ {
		set[string(runes[i:i+c.ngramSize])] = struct{}{}
	}
	return set
}

// JaccardSimilarity computes |A intersection B| / |A union B|.
func JaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Set accumulates texts and reports whether a new one repeats an earlier one.
type Set struct {
	checker *Checker
	seen    []map[string]struct{}
}

func (c *Checker) NewSet() *Set {
	return &Set{checker: c}
}

// AddIfDistinct adds text unless it is at least threshold-similar to a text
// already in the set. It reports whether text was added.
func (s *Set) AddIfDistinct(text string) bool {
	grams := s.checker.NGrams(text)
	for _, existing := range s.seen {
		if JaccardSimilarity(grams, existing) >= s.checker.threshold {
			return false
		}
	}
	s.seen = append(s.seen, grams)
	return true
}
