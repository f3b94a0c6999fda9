// Package breedmatch reconciles the free-text breed strings found in adverse
// event reports against a canonical breed reference list. FDA reports write
// breeds in "Group - Breed" order ("Retriever - Labrador") while the breed
// APIs use natural order ("Labrador Retriever"), so a swap heuristic runs
// before fuzzy matching.
package breedmatch

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Unknown is returned when no reference entry matches.
const Unknown = "Unknown"

// DefaultThreshold is the minimum similarity ratio for a fuzzy match.
const DefaultThreshold = 0.6

// Matcher matches free-text breed strings against a fixed reference list.
type Matcher struct {
	threshold float64
	// order preserves the reference list order so first-best wins on ties.
	order     []string
	canonical map[string]string
}

// New builds a Matcher over the reference names. A threshold <= 0 falls back
// to DefaultThreshold. Duplicate names keep their first casing.
func New(names []string, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	m := &Matcher{
		threshold: threshold,
		canonical: make(map[string]string, len(names)),
	}
	for _, name := range names {
		lower := strings.ToLower(strings.TrimSpace(name))
		if lower == "" {
			continue
		}
		if _, seen := m.canonical[lower]; seen {
			continue
		}
		m.canonical[lower] = strings.TrimSpace(name)
		m.order = append(m.order, lower)
	}
	return m
}

// Match resolves raw to a canonical reference name. The second return is
// false when nothing reached the similarity threshold.
func (m *Matcher) Match(raw string) (string, bool) {
	input := strings.ToLower(strings.TrimSpace(raw))
	if input == "" {
		return Unknown, false
	}

	if name, ok := m.canonical[input]; ok {
		return name, true
	}

	if swapped := swapHyphenated(input); swapped != "" {
		if name, ok := m.canonical[swapped]; ok {
			return name, true
		}
	}

	best := ""
	bestRatio := 0.0
	for _, candidate := range m.order {
		ratio := similarity(input, candidate)
		if ratio > bestRatio {
			best, bestRatio = candidate, ratio
		}
	}
	if bestRatio >= m.threshold {
		return m.canonical[best], true
	}
	return Unknown, false
}

// Resolve is Match without the flag; unmatched strings come back as Unknown.
func (m *Matcher) Resolve(raw string) string {
	name, _ := m.Match(raw)
	return name
}

// swapHyphenated reverses a two-part "Group - Breed" string into
// "breed group". Returns "" when the shape does not apply.
func swapHyphenated(input string) string {
	if !strings.Contains(input, "-") {
		return ""
	}
	parts := strings.Split(input, "-")
	if len(parts) != 2 {
		return ""
	}
	left := strings.TrimSpace(parts[0])
	right := strings.TrimSpace(parts[1])
	if left == "" || right == "" {
		return ""
	}
	return right + " " + left
}

// similarity is the difflib sequence-match ratio over characters, matching
// the scoring difflib.get_close_matches uses.
func similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}
