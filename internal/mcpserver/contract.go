package mcpserver

// TheoryReference describes the music theory conventions Fretwise tools use,
// so LLM consumers name notes and chords the way the tools expect.
const TheoryReference = `# Fretwise Chord Theory Reference

## Pitch classes

Twelve pitch classes in chromatic order starting at C. Arithmetic wraps
modulo 12, so the note one semitone above B is C.

| Index | Sharp | Flat |
|-------|-------|------|
| 0     | C     | C    |
| 1     | C#    | Db   |
| 2     | D     | D    |
| 3     | D#    | Eb   |
| 4     | E     | E    |
| 5     | F     | F    |
| 6     | F#    | Gb   |
| 7     | G     | G    |
| 8     | G#    | Ab   |
| 9     | A     | A    |
| 10    | A#    | Bb   |
| 11    | B     | B    |

Input accepts either spelling, a case-insensitive letter, and ` + "`#`" + ` or ` + "`b`" + `
accidentals. Output uses sharps unless ` + "`spelling=flat`" + ` is requested.

## Chords

A chord is a root plus the semitone offsets of its chord type. Notes are
returned root first, in offset order. Offsets above 11 (the 14 of add9)
fold back into the octave, so C add9 is C E G D.

Chord type names are case-sensitive and belong to a chord set. Call
` + "`list_chord_sets`" + ` for the active sets; the built-ins are:

- **explorer**: Major [0,4,7], minor [0,3,7], sus4 [0,5,7], dim [0,3,6],
  aug [0,4,8], 7th [0,4,7,10], maj7 [0,4,7,11], add9 [0,4,7,14]
- **quiz**: Major [0,4,7], Minor [0,3,7], Diminished [0,3,6],
  Augmented [0,4,8], Major 7 [0,4,7,11], Minor 7 [0,3,7,10],
  Dominant 7 [0,4,7,10]

## Fretboard

Standard tuning E A D G B E. Strings are numbered 0 (low E) to 5 (high E);
frets 0 (open) to 12. The note at a cell is (open note + fret) mod 12.

## Identifying chords

` + "`identify_chord`" + ` compares pitch-class sets, ignoring octave and order.

- **superset** (default): every chord tone is among the given notes; extra
  notes are allowed.
- **exact**: the given notes and the chord tones are the same set.
`
