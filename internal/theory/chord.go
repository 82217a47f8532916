package theory

import (
	"errors"
	"fmt"
)

// ErrUnknownChord is returned when a chord type is not part of a chord set.
var ErrUnknownChord = errors.New("unknown chord type")

// ErrInvalidTemplate is returned when a template's offsets are malformed.
var ErrInvalidTemplate = errors.New("invalid chord template")

// ChordTemplate is a named list of semitone offsets from a root.
// It is immutable once built.
type ChordTemplate struct {
	name    string
	offsets []int
}

// NewChordTemplate validates offsets and returns a template.
// Offsets must be non-empty, start at 0, be non-negative and be pairwise
// distinct modulo 12.
func NewChordTemplate(name string, offsets ...int) (ChordTemplate, error) {
	if name == "" {
		return ChordTemplate{}, fmt.Errorf("%w: empty name", ErrInvalidTemplate)
	}
	if len(offsets) == 0 {
		return ChordTemplate{}, fmt.Errorf("%w: %s has no offsets", ErrInvalidTemplate, name)
	}
	if offsets[0] != 0 {
		return ChordTemplate{}, fmt.Errorf("%w: %s must start at 0", ErrInvalidTemplate, name)
	}
	var seen uint16
	for _, o := range offsets {
		if o < 0 {
			return ChordTemplate{}, fmt.Errorf("%w: %s has negative offset %d", ErrInvalidTemplate, name, o)
		}
		bit := uint16(1) << uint(o%Count)
		if seen&bit != 0 {
			return ChordTemplate{}, fmt.Errorf("%w: %s repeats pitch class at offset %d", ErrInvalidTemplate, name, o)
		}
		seen |= bit
	}
	cp := make([]int, len(offsets))
	copy(cp, offsets)
	return ChordTemplate{name: name, offsets: cp}, nil
}

// MustChordTemplate is like NewChordTemplate but panics on error.
// It is intended for package-level tables.
func MustChordTemplate(name string, offsets ...int) ChordTemplate {
	t, err := NewChordTemplate(name, offsets...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the template name.
func (t ChordTemplate) Name() string { return t.name }

// Offsets returns a copy of the semitone offsets.
func (t ChordTemplate) Offsets() []int {
	out := make([]int, len(t.offsets))
	copy(out, t.offsets)
	return out
}

// Len returns the number of chord tones.
func (t ChordTemplate) Len() int { return len(t.offsets) }

// Notes returns the pitch classes of this template rooted at root, in offset
// order. The root is always first.
func (t ChordTemplate) Notes(root PitchClass) []PitchClass {
	out := make([]PitchClass, len(t.offsets))
	for i, o := range t.offsets {
		out[i] = root.Transpose(o)
	}
	return out
}

// ChordSet is an ordered, named collection of chord templates.
type ChordSet struct {
	name        string
	description string
	templates   []ChordTemplate
	byName      map[string]int
}

// NewChordSet builds a set. Template names must be unique.
func NewChordSet(name, description string, templates ...ChordTemplate) (*ChordSet, error) {
	if name == "" {
		return nil, errors.New("chord set: empty name")
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("chord set %s: no templates", name)
	}
	s := &ChordSet{
		name:        name,
		description: description,
		templates:   make([]ChordTemplate, len(templates)),
		byName:      make(map[string]int, len(templates)),
	}
	for i, t := range templates {
		if t.name == "" || len(t.offsets) == 0 {
			return nil, fmt.Errorf("chord set %s: template %d is empty", name, i)
		}
		if _, dup := s.byName[t.name]; dup {
			return nil, fmt.Errorf("chord set %s: duplicate chord %q", name, t.name)
		}
		s.byName[t.name] = i
		s.templates[i] = t
	}
	return s, nil
}

// Name returns the set identifier.
func (s *ChordSet) Name() string { return s.name }

// Description returns the human-readable description.
func (s *ChordSet) Description() string { return s.description }

// Names returns the chord type names in table order.
func (s *ChordSet) Names() []string {
	out := make([]string, len(s.templates))
	for i, t := range s.templates {
		out[i] = t.name
	}
	return out
}

// Templates returns the templates in table order.
func (s *ChordSet) Templates() []ChordTemplate {
	out := make([]ChordTemplate, len(s.templates))
	copy(out, s.templates)
	return out
}

// Len returns the number of templates.
func (s *ChordSet) Len() int { return len(s.templates) }

// Lookup returns the template called name.
func (s *ChordSet) Lookup(name string) (ChordTemplate, error) {
	i, ok := s.byName[name]
	if !ok {
		return ChordTemplate{}, fmt.Errorf("%w: %q in set %s", ErrUnknownChord, name, s.name)
	}
	return s.templates[i], nil
}

// At returns the i-th template in table order.
func (s *ChordSet) At(i int) ChordTemplate { return s.templates[i] }
