package theory

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

func TestParsePitchClass(t *testing.T) {
	tests := []struct {
		in   string
		want PitchClass
	}{
		{"C", C},
		{"c", C},
		{"C#", CSharp},
		{"Db", CSharp},
		{"Eb", DSharp},
		{"E#", F},
		{"Fb", E},
		{"B#", C},
		{"Cb", B},
		{" G ", G},
		{"Bb", ASharp},
		{"F##", G},
	}
	for _, tt := range tests {
		got, err := ParsePitchClass(tt.in)
		if err != nil {
			t.Fatalf("ParsePitchClass(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParsePitchClass(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParsePitchClass_Invalid(t *testing.T) {
	for _, in := range []string{"", "H", "C$", "Xb", "#"} {
		if _, err := ParsePitchClass(in); !errors.Is(err, ErrInvalidPitch) {
			t.Errorf("ParsePitchClass(%q) err = %v, want ErrInvalidPitch", in, err)
		}
	}
}

func TestSpellings(t *testing.T) {
	if got := Flats.Name(DSharp); got != "Eb" {
		t.Errorf("flat D# = %q, want Eb", got)
	}
	if got := Sharps.Name(DSharp); got != "D#" {
		t.Errorf("sharp D# = %q, want D#", got)
	}
	for i, name := range Flats.Names() {
		pc, err := ParsePitchClass(name)
		if err != nil || pc != PitchClass(i) {
			t.Errorf("flat name %q parsed to %v, %v", name, pc, err)
		}
	}
	if _, err := SpellingByName("german"); err == nil {
		t.Error("expected error for unknown spelling")
	}
}

func TestNoteAt_OpenStringIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := PitchClass(rapid.IntRange(0, 11).Draw(t, "p"))
		if got := NoteAt(p, 0); got != p {
			t.Fatalf("NoteAt(%v, 0) = %v", p, got)
		}
	})
}

func TestNoteAt_Standard(t *testing.T) {
	e := NewEngine()
	tests := []struct {
		cell Cell
		want PitchClass
	}{
		{Cell{0, 0}, E},
		{Cell{0, 3}, G},
		{Cell{0, 8}, C},
		{Cell{1, 3}, C},
		{Cell{2, 2}, E},
		{Cell{3, 0}, G},
		{Cell{4, 1}, C},
		{Cell{5, 12}, E},
	}
	for _, tt := range tests {
		got, err := e.CellPitch(tt.cell)
		if err != nil {
			t.Fatalf("CellPitch(%v): %v", tt.cell, err)
		}
		if got != tt.want {
			t.Errorf("CellPitch(%v) = %v, want %v", tt.cell, got, tt.want)
		}
	}
}

func TestCellPitch_OutOfRange(t *testing.T) {
	e := NewEngine()
	for _, c := range []Cell{{-1, 0}, {6, 0}, {0, -1}, {0, 13}} {
		if _, err := e.CellPitch(c); !errors.Is(err, ErrCellOutOfRange) {
			t.Errorf("CellPitch(%v) err = %v, want ErrCellOutOfRange", c, err)
		}
	}
}

func TestChordNotes_Scenarios(t *testing.T) {
	quiz := NewEngine(WithChordSet(QuizSet()))
	tests := []struct {
		name   string
		engine *Engine
		root   PitchClass
		chord  string
		want   []PitchClass
	}{
		{"C major", quiz, C, "Major", []PitchClass{C, E, G}},
		{"A minor 7", quiz, A, "Minor 7", []PitchClass{A, C, E, G}},
		{"B diminished", quiz, B, "Diminished", []PitchClass{B, D, F}},
		{"C add9", NewEngine(), C, "add9", []PitchClass{C, E, G, D}},
		{"F# aug", NewEngine(), FSharp, "aug", []PitchClass{FSharp, ASharp, D}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.engine.ChordNotes(tt.root, tt.chord)
			if err != nil {
				t.Fatalf("ChordNotes: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ChordNotes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChordNotes_UnknownChord(t *testing.T) {
	e := NewEngine(WithChordSet(QuizSet()))
	if _, err := e.ChordNotes(C, "add9"); !errors.Is(err, ErrUnknownChord) {
		t.Fatalf("err = %v, want ErrUnknownChord", err)
	}
}

func TestBuiltinSets_Integrity(t *testing.T) {
	for _, set := range BuiltinSets() {
		for _, tpl := range set.Templates() {
			offs := tpl.Offsets()
			if offs[0] != 0 {
				t.Errorf("%s/%s: first offset %d", set.Name(), tpl.Name(), offs[0])
			}
			seen := map[int]bool{}
			for _, o := range offs {
				if seen[o%12] {
					t.Errorf("%s/%s: offsets not distinct mod 12: %v", set.Name(), tpl.Name(), offs)
				}
				seen[o%12] = true
			}
		}
	}
	if n := QuizSet().Len(); n != 7 {
		t.Errorf("quiz set has %d chords, want 7", n)
	}
}

func TestChordNotes_Properties(t *testing.T) {
	sets := BuiltinSets()
	rapid.Check(t, func(t *rapid.T) {
		set := rapid.SampledFrom(sets).Draw(t, "set")
		name := rapid.SampledFrom(set.Names()).Draw(t, "chord")
		root := PitchClass(rapid.IntRange(0, 11).Draw(t, "root"))
		e := NewEngine(WithChordSet(set))

		notes, err := e.ChordNotes(root, name)
		if err != nil {
			t.Fatalf("ChordNotes: %v", err)
		}
		tpl, _ := set.Lookup(name)
		if len(notes) != tpl.Len() {
			t.Fatalf("len = %d, want %d", len(notes), tpl.Len())
		}
		if notes[0] != root {
			t.Fatalf("first note %v, want root %v", notes[0], root)
		}
		if len(FromMask(Mask(notes))) != len(notes) {
			t.Fatalf("duplicate pitch classes in %v", notes)
		}
		again, _ := e.ChordNotes(root, name)
		if diff := cmp.Diff(notes, again); diff != "" {
			t.Fatalf("not deterministic:\n%s", diff)
		}
	})
}

func TestNewChordTemplate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		offsets []int
	}{
		{"empty", nil},
		{"no root", []int{4, 7}},
		{"negative", []int{0, -3}},
		{"duplicate mod 12", []int{0, 4, 16}},
	}
	for _, tt := range tests {
		if _, err := NewChordTemplate(tt.name, tt.offsets...); !errors.Is(err, ErrInvalidTemplate) {
			t.Errorf("%s: err = %v, want ErrInvalidTemplate", tt.name, err)
		}
	}
}

func TestTemplateOffsetsAreCopied(t *testing.T) {
	tpl := MustChordTemplate("Major", 0, 4, 7)
	offs := tpl.Offsets()
	offs[1] = 3
	if tpl.Offsets()[1] != 4 {
		t.Fatal("template mutated through Offsets slice")
	}
}

func TestNewChordSet_Duplicate(t *testing.T) {
	_, err := NewChordSet("x", "", MustChordTemplate("Major", 0, 4, 7), MustChordTemplate("Major", 0, 3, 7))
	if err == nil {
		t.Fatal("expected duplicate chord error")
	}
}

func TestFretboard(t *testing.T) {
	e := NewEngine(WithChordSet(QuizSet()), WithSpelling(Flats))
	b, err := e.Fretboard(C, "Minor", false)
	if err != nil {
		t.Fatalf("Fretboard: %v", err)
	}
	if diff := cmp.Diff([]string{"C", "Eb", "G"}, b.Notes); diff != "" {
		t.Errorf("notes (-want +got):\n%s", diff)
	}
	if len(b.Rows) != StringCount || len(b.Rows[0]) != FretCount {
		t.Fatalf("grid %dx%d", len(b.Rows), len(b.Rows[0]))
	}
	// Low E string, fret 3 is G: a chord tone.
	if c := b.Rows[0][3]; !c.ChordTone || c.Name != "G" || c.Marker != 1 {
		t.Errorf("cell 0-3 = %+v", c)
	}
	// Low E string, fret 0 is E: not in C minor.
	if b.Rows[0][0].ChordTone {
		t.Error("open E flagged as C minor tone")
	}
	if b.Rows[5][12].Marker != 2 {
		t.Errorf("fret 12 marker = %d, want 2", b.Rows[5][12].Marker)
	}
}

func TestFretboard_HighFirst(t *testing.T) {
	e := NewEngine()
	b, err := e.Fretboard(G, "Major", true)
	if err != nil {
		t.Fatal(err)
	}
	if b.Strings[0] != 5 || b.Rows[0][0].String != 5 {
		t.Errorf("first row string = %d, want 5", b.Strings[0])
	}
	if b.Rows[1][0].Pitch != B {
		t.Errorf("second row open = %v, want B", b.Rows[1][0].Pitch)
	}
}

func TestTuning(t *testing.T) {
	tn, err := ParseTuning([]string{"D", "A", "D", "G", "B", "E"})
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(WithTuning(tn))
	p, _ := e.CellPitch(Cell{String: 0, Fret: 0})
	if p != D {
		t.Errorf("drop D low string = %v", p)
	}
	if StandardTuning.Reversed()[1] != B {
		t.Errorf("reversed tuning = %v", StandardTuning.Reversed())
	}
	if _, err := ParseTuning([]string{"E"}); err == nil {
		t.Error("expected error for short tuning")
	}
}

func TestMaskRoundTrip(t *testing.T) {
	notes := []PitchClass{G, C, E}
	if diff := cmp.Diff([]PitchClass{C, E, G}, FromMask(Mask(notes))); diff != "" {
		t.Error(diff)
	}
}
