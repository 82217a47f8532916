package theory

// FretCell is one position of a rendered fretboard.
type FretCell struct {
	Cell
	Pitch     PitchClass `json:"pitch"`
	Name      string     `json:"name"`
	ChordTone bool       `json:"chord_tone"`
	Marker    int        `json:"marker,omitempty"`
}

// Board is a full fretboard grid, one row per string in Strings order.
type Board struct {
	Root    PitchClass   `json:"root"`
	Chord   string       `json:"chord"`
	Notes   []string     `json:"notes"`
	Strings []int        `json:"strings"`
	Rows    [][]FretCell `json:"rows"`
}

// fretMarker returns the number of inlay dots drawn under fret.
func fretMarker(fret int) int {
	switch fret {
	case 3, 5, 7, 9:
		return 1
	case 12:
		return 2
	}
	return 0
}

// Fretboard computes every cell of the grid and flags those belonging to the
// chord. When highFirst is true rows are ordered high string first; cell
// coordinates always refer to the low-first string index.
func (e *Engine) Fretboard(root PitchClass, chord string, highFirst bool) (*Board, error) {
	notes, err := e.ChordNotes(root, chord)
	if err != nil {
		return nil, err
	}
	mask := Mask(notes)

	b := &Board{
		Root:    root,
		Chord:   chord,
		Notes:   e.Labels(notes),
		Strings: make([]int, 0, StringCount),
		Rows:    make([][]FretCell, 0, StringCount),
	}
	open := e.tuning
	if highFirst {
		open = open.Reversed()
	}
	for i, pitch := range open {
		s := i
		if highFirst {
			s = StringCount - 1 - i
		}
		row := make([]FretCell, FretCount)
		for f := 0; f <= MaxFret; f++ {
			p := NoteAt(pitch, f)
			row[f] = FretCell{
				Cell:      Cell{String: s, Fret: f},
				Pitch:     p,
				Name:      e.spelling.Name(p),
				ChordTone: mask&(1<<uint(p.Index())) != 0,
				Marker:    fretMarker(f),
			}
		}
		b.Strings = append(b.Strings, s)
		b.Rows = append(b.Rows, row)
	}
	return b, nil
}
