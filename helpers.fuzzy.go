package main

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// FuzzyScoreThreshold is the highest score a field may have to still
// count as a match. Scores range from 0.0 (exact) to 1.0 (no match).
const FuzzyScoreThreshold = 0.4

var _ FuzzyMatcher = (*LevenshteinMatcher)(nil) // ensure LevenshteinMatcher implements FuzzyMatcher.

// FuzzyMatcher scores how well a candidate text matches a query,
// regardless of where inside the candidate the match sits.
type FuzzyMatcher interface {
	Score(candidate, query string) float64
}

// LevenshteinMatcher implements FuzzyMatcher with a normalized edit
// distance. The query is compared against every query-sized window of
// the candidate and the best window wins, so the position of the match
// within the field is ignored.
type LevenshteinMatcher struct{}

// NewLevenshteinMatcher returns a ready to use LevenshteinMatcher.
func NewLevenshteinMatcher() *LevenshteinMatcher {
	return &LevenshteinMatcher{}
}

// Score returns the normalized edit distance between the query and the
// closest region of the candidate, clamped to [0,1].
func (lm *LevenshteinMatcher) Score(candidate, query string) float64 {
	c := strings.ToLower(strings.TrimSpace(candidate))
	q := strings.ToLower(strings.TrimSpace(query))
	if c == "" || q == "" {
		return 1.0
	}
	if strings.Contains(c, q) {
		return 0.0
	}

	cr := []rune(c)
	qr := []rune(q)
	if len(cr) <= len(qr) {
		d := levenshtein.ComputeDistance(c, q)
		return normalizeDistance(d, len(qr))
	}

	// Candidate is longer than the query: slide a query-sized window
	// across it and keep the closest one.
	best := 1.0
	w := len(qr)
	for i := 0; i+w <= len(cr); i++ {
		d := levenshtein.ComputeDistance(string(cr[i:i+w]), q)
		if s := normalizeDistance(d, w); s < best {
			best = s
		}
	}
	return best
}

func normalizeDistance(distance, length int) float64 {
	if length == 0 {
		return 1.0
	}
	s := float64(distance) / float64(length)
	if s > 1.0 {
		return 1.0
	}
	return s
}
