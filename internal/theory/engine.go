package theory

import "fmt"

// Option configures an Engine.
type Option func(*Engine)

// Engine answers note and chord questions against an injected tuning,
// chord set and spelling. It holds no mutable state.
type Engine struct {
	tuning   Tuning
	chords   *ChordSet
	spelling Spelling
}

// WithTuning sets the open-string tuning.
func WithTuning(t Tuning) Option {
	return func(e *Engine) { e.tuning = t }
}

// WithChordSet sets the chord table.
func WithChordSet(s *ChordSet) Option {
	return func(e *Engine) {
		if s != nil {
			e.chords = s
		}
	}
}

// WithSpelling sets the note-name table used for labels.
func WithSpelling(s Spelling) Option {
	return func(e *Engine) { e.spelling = s }
}

// NewEngine returns an engine using standard tuning, the explorer chord set
// and sharp spelling unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		tuning:   StandardTuning,
		spelling: Sharps,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.chords == nil {
		e.chords = ExplorerSet()
	}
	return e
}

// Tuning returns the open-string tuning.
func (e *Engine) Tuning() Tuning { return e.tuning }

// ChordSet returns the chord table.
func (e *Engine) ChordSet() *ChordSet { return e.chords }

// Spelling returns the note-name table.
func (e *Engine) Spelling() Spelling { return e.spelling }

// NoteAt returns the pitch class sounding at fret on a string tuned to open.
func NoteAt(open PitchClass, fret int) PitchClass {
	return open.Transpose(fret)
}

// NoteAt is the engine-bound form of the package-level NoteAt.
func (e *Engine) NoteAt(open PitchClass, fret int) PitchClass {
	return NoteAt(open, fret)
}

// CellPitch returns the pitch class at a fretboard cell.
func (e *Engine) CellPitch(c Cell) (PitchClass, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("%w: string %d fret %d", ErrCellOutOfRange, c.String, c.Fret)
	}
	return NoteAt(e.tuning[c.String], c.Fret), nil
}

// ChordNotes returns the pitch classes of chord type name rooted at root, in
// template order with the root first.
func (e *Engine) ChordNotes(root PitchClass, name string) ([]PitchClass, error) {
	t, err := e.chords.Lookup(name)
	if err != nil {
		return nil, err
	}
	return t.Notes(root), nil
}

// Label spells p with the engine's spelling table.
func (e *Engine) Label(p PitchClass) string { return e.spelling.Name(p) }

// Labels spells every pitch class in ps.
func (e *Engine) Labels(ps []PitchClass) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = e.spelling.Name(p)
	}
	return out
}
