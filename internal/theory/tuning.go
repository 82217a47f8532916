package theory

import (
	"errors"
	"fmt"
)

// Fretboard dimensions.
const (
	StringCount = 6
	MaxFret     = 12
	FretCount   = MaxFret + 1
)

// ErrCellOutOfRange is returned for coordinates outside the fretboard grid.
var ErrCellOutOfRange = errors.New("cell out of range")

// Tuning holds the open-string pitch classes, lowest string first.
type Tuning [StringCount]PitchClass

// StandardTuning is E A D G B E, low to high.
var StandardTuning = Tuning{E, A, D, G, B, E}

// Reversed returns the tuning ordered high string first.
func (t Tuning) Reversed() Tuning {
	var out Tuning
	for i := range t {
		out[i] = t[StringCount-1-i]
	}
	return out
}

// ParseTuning parses six note labels, lowest string first.
func ParseTuning(names []string) (Tuning, error) {
	if len(names) != StringCount {
		return Tuning{}, fmt.Errorf("tuning needs %d strings, got %d", StringCount, len(names))
	}
	var t Tuning
	for i, n := range names {
		pc, err := ParsePitchClass(n)
		if err != nil {
			return Tuning{}, fmt.Errorf("string %d: %w", i, err)
		}
		t[i] = pc
	}
	return t, nil
}

// Cell identifies a position on the fretboard. String 0 is the lowest string.
type Cell struct {
	String int `json:"string"`
	Fret   int `json:"fret"`
}

// Valid reports whether c lies on the 6×13 grid.
func (c Cell) Valid() bool {
	return c.String >= 0 && c.String < StringCount && c.Fret >= 0 && c.Fret <= MaxFret
}

// Key formats c as "string-fret".
func (c Cell) Key() string { return fmt.Sprintf("%d-%d", c.String, c.Fret) }

// Less orders cells by string, then fret.
func (c Cell) Less(o Cell) bool {
	if c.String != o.String {
		return c.String < o.String
	}
	return c.Fret < o.Fret
}
