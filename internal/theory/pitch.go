// Package theory implements pitch classes, chord templates, tunings and the
// fretboard note engine.
package theory

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPitch is returned when a note name cannot be parsed.
var ErrInvalidPitch = errors.New("invalid pitch class")

// PitchClass is one of the 12 chromatic pitch classes, C = 0 through B = 11.
type PitchClass uint8

// Pitch classes in chromatic order.
const (
	C PitchClass = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

// Count is the number of pitch classes in an octave.
const Count = 12

// Transpose returns p moved by semitones, wrapping modulo 12.
// Negative values move downwards.
func (p PitchClass) Transpose(semitones int) PitchClass {
	return PitchClass(((int(p)+semitones)%Count + Count) % Count)
}

// Index returns the chromatic index of p.
func (p PitchClass) Index() int { return int(p) % Count }

// String returns the sharp spelling of p.
func (p PitchClass) String() string { return Sharps.Name(p) }

// MarshalText implements encoding.TextMarshaler using the sharp spelling.
func (p PitchClass) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler accepting either spelling.
func (p *PitchClass) UnmarshalText(text []byte) error {
	pc, err := ParsePitchClass(string(text))
	if err != nil {
		return err
	}
	*p = pc
	return nil
}

// Spelling is a fixed table of enharmonic names indexed by pitch class.
type Spelling struct {
	name  string
	names [Count]string
}

// Spelling tables.
var (
	Sharps = Spelling{name: "sharp", names: [Count]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}}
	Flats  = Spelling{name: "flat", names: [Count]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}}
)

// SpellingByName returns the spelling table called name ("sharp" or "flat").
// An empty name selects sharps.
func SpellingByName(name string) (Spelling, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Sharps.name:
		return Sharps, nil
	case Flats.name:
		return Flats, nil
	default:
		return Spelling{}, fmt.Errorf("unknown spelling %q", name)
	}
}

// Name returns the label of p in this spelling.
func (s Spelling) Name(p PitchClass) string { return s.names[p.Index()] }

// Names returns all 12 labels in chromatic order starting at C.
func (s Spelling) Names() []string {
	out := make([]string, Count)
	copy(out, s.names[:])
	return out
}

// String returns the spelling identifier.
func (s Spelling) String() string { return s.name }

var letters = map[byte]PitchClass{'C': C, 'D': D, 'E': E, 'F': F, 'G': G, 'A': A, 'B': B}

// ParsePitchClass parses a note label such as "C", "f#", "Eb" or "B#".
// Any number of '#' or 'b' accidentals is accepted after the letter.
func ParsePitchClass(s string) (PitchClass, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidPitch)
	}
	base, ok := letters[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPitch, s)
	}
	shift := 0
	for _, r := range s[1:] {
		switch r {
		case '#', '♯':
			shift++
		case 'b', '♭':
			shift--
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidPitch, s)
		}
	}
	return base.Transpose(shift), nil
}

// ParsePitchClasses parses a list of note labels.
func ParsePitchClasses(names []string) ([]PitchClass, error) {
	out := make([]PitchClass, 0, len(names))
	for _, n := range names {
		pc, err := ParsePitchClass(n)
		if err != nil {
			return nil, err
		}
		out = append(out, pc)
	}
	return out, nil
}

// Mask returns a 12-bit set with bit i set for every pitch class i in pcs.
func Mask(pcs []PitchClass) uint16 {
	var m uint16
	for _, p := range pcs {
		m |= 1 << uint(p.Index())
	}
	return m
}

// FromMask expands a 12-bit mask back into pitch classes in chromatic order.
func FromMask(m uint16) []PitchClass {
	var out []PitchClass
	for i := 0; i < Count; i++ {
		if m&(1<<uint(i)) != 0 {
			out = append(out, PitchClass(i))
		}
	}
	return out
}
