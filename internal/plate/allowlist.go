package plate

import (
	"github.com/arbovm/levenshtein"

	"go-plate-inspector/pkg/models"
)

// AllowList is the ordered, read-only set of expected plates
type AllowList struct {
	entries []string
}

// NewAllowList copies entries into a new allow-list
func NewAllowList(entries []string) *AllowList {
	cp := make([]string, len(entries))
	copy(cp, entries)
	return &AllowList{entries: cp}
}

// Entries returns a copy of the entries in load order
func (a *AllowList) Entries() []string {
	cp := make([]string, len(a.entries))
	copy(cp, a.entries)
	return cp
}

// Len returns the number of entries
func (a *AllowList) Len() int {
	return len(a.entries)
}

// Contains reports exact, case-sensitive membership
func (a *AllowList) Contains(text string) bool {
	for _, e := range a.entries {
		if e == text {
			return true
		}
	}
	return false
}

// Evaluate implements Evaluator
func (a *AllowList) Evaluate(text string) models.MatchStatus {
	if a.Contains(text) {
		return models.Match
	}
	return models.NoMatch
}

// Closest returns the entry with the smallest edit distance to text. It is a
// hint for operators and never changes the match decision.
func (a *AllowList) Closest(text string) (models.NearestEntry, bool) {
	if len(a.entries) == 0 {
		return models.NearestEntry{}, false
	}
	best := models.NearestEntry{Entry: a.entries[0], Distance: levenshtein.Distance(text, a.entries[0])}
	for _, e := range a.entries[1:] {
		if d := levenshtein.Distance(text, e); d < best.Distance {
			best = models.NearestEntry{Entry: e, Distance: d}
		}
	}
	return best, true
}
