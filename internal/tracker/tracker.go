// Package tracker records which fretboard cells a player has toggled and
// checks the resulting note set against a target chord.
package tracker

import (
	"slices"

	"github.com/starford/fretwise/internal/theory"
)

// Selection is one toggled cell together with the note it sounds.
type Selection struct {
	Note theory.PitchClass `json:"note"`
	Cell theory.Cell       `json:"cell"`
}

// Snapshot is an immutable view of a tracker after a mutation.
type Snapshot struct {
	Version    uint64              `json:"version"`
	Target     []theory.PitchClass `json:"target,omitempty"`
	Visible    []theory.Cell       `json:"visible"`
	Selections []Selection         `json:"selections"`
	Complete   bool                `json:"complete"`
}

// Tracker is the mutable selection state of one round. It is not safe for
// concurrent use; callers serialize access.
type Tracker struct {
	policy     MatchPolicy
	target     []theory.PitchClass
	visible    map[theory.Cell]bool
	selections []Selection
	version    uint64
}

// New returns an empty tracker checking against target.
func New(target []theory.PitchClass, policy MatchPolicy) *Tracker {
	if policy == "" {
		policy = MatchSuperset
	}
	return &Tracker{
		policy:  policy,
		target:  slices.Clone(target),
		visible: make(map[theory.Cell]bool),
	}
}

// Policy returns the match policy in use.
func (t *Tracker) Policy() MatchPolicy { return t.policy }

// Toggle flips the cell's visibility. A newly visible cell appends
// {note, cell} to the selection list; a hidden one removes its entry.
func (t *Tracker) Toggle(cell theory.Cell, note theory.PitchClass) Snapshot {
	if t.visible[cell] {
		delete(t.visible, cell)
		t.selections = slices.DeleteFunc(t.selections, func(s Selection) bool {
			return s.Cell == cell
		})
	} else {
		t.visible[cell] = true
		t.selections = append(t.selections, Selection{Note: note, Cell: cell})
	}
	t.version++
	return t.Snapshot()
}

// Visible reports whether cell is currently toggled on.
func (t *Tracker) Visible(cell theory.Cell) bool { return t.visible[cell] }

// Complete reports whether the current selection satisfies the target.
func (t *Tracker) Complete() bool {
	return IsComplete(t.selections, t.target, t.policy)
}

// Reset clears all selections and retargets the tracker.
func (t *Tracker) Reset(target []theory.PitchClass) Snapshot {
	t.target = slices.Clone(target)
	t.visible = make(map[theory.Cell]bool)
	t.selections = nil
	t.version++
	return t.Snapshot()
}

// Clear drops all selections and keeps the target.
func (t *Tracker) Clear() Snapshot {
	t.visible = make(map[theory.Cell]bool)
	t.selections = nil
	t.version++
	return t.Snapshot()
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	visible := make([]theory.Cell, 0, len(t.visible))
	for c := range t.visible {
		visible = append(visible, c)
	}
	slices.SortFunc(visible, func(a, b theory.Cell) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	sel := make([]Selection, len(t.selections))
	copy(sel, t.selections)
	return Snapshot{
		Version:    t.version,
		Target:     slices.Clone(t.target),
		Visible:    visible,
		Selections: sel,
		Complete:   t.Complete(),
	}
}
