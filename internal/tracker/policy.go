package tracker

import (
	"fmt"

	"github.com/starford/fretwise/internal/theory"
)

// MatchPolicy decides when a selection completes a chord.
type MatchPolicy string

// Match policies.
const (
	// MatchSuperset accepts any selection containing every chord tone.
	MatchSuperset MatchPolicy = "superset"
	// MatchExact requires the selected pitch classes to equal the chord tones.
	MatchExact MatchPolicy = "exact"
)

// ParseMatchPolicy parses a policy name; empty selects MatchSuperset.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch MatchPolicy(s) {
	case "", MatchSuperset:
		return MatchSuperset, nil
	case MatchExact:
		return MatchExact, nil
	}
	return "", fmt.Errorf("unknown match policy %q", s)
}

// IsComplete reports whether selection satisfies target under policy.
// Duplicate pitch classes in the selection (same note on several cells) count once.
func IsComplete(selection []Selection, target []theory.PitchClass, policy MatchPolicy) bool {
	selected := make([]theory.PitchClass, len(selection))
	for i, s := range selection {
		selected[i] = s.Note
	}
	have := theory.Mask(selected)
	want := theory.Mask(target)
	if policy == MatchExact {
		return have == want
	}
	return have&want == want
}
