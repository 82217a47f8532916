package theory

// Built-in chord set names.
const (
	ExplorerSetName = "explorer"
	QuizSetName     = "quiz"
)

// ExplorerSet is the chord table offered by the chord explorer.
func ExplorerSet() *ChordSet {
	s, err := NewChordSet(ExplorerSetName, "Triads, sevenths and add9 for fretboard exploration",
		MustChordTemplate("Major", 0, 4, 7),
		MustChordTemplate("minor", 0, 3, 7),
		MustChordTemplate("sus4", 0, 5, 7),
		MustChordTemplate("dim", 0, 3, 6),
		MustChordTemplate("aug", 0, 4, 8),
		MustChordTemplate("7th", 0, 4, 7, 10),
		MustChordTemplate("maj7", 0, 4, 7, 11),
		MustChordTemplate("add9", 0, 4, 7, 14),
	)
	if err != nil {
		panic(err)
	}
	return s
}

// QuizSet is the chord table rounds are drawn from.
func QuizSet() *ChordSet {
	s, err := NewChordSet(QuizSetName, "Triads and seventh chords for note-finding rounds",
		MustChordTemplate("Major", 0, 4, 7),
		MustChordTemplate("Minor", 0, 3, 7),
		MustChordTemplate("Diminished", 0, 3, 6),
		MustChordTemplate("Augmented", 0, 4, 8),
		MustChordTemplate("Major 7", 0, 4, 7, 11),
		MustChordTemplate("Minor 7", 0, 3, 7, 10),
		MustChordTemplate("Dominant 7", 0, 4, 7, 10),
	)
	if err != nil {
		panic(err)
	}
	return s
}

// BuiltinSets returns fresh copies of every compiled-in chord set.
func BuiltinSets() []*ChordSet {
	return []*ChordSet{ExplorerSet(), QuizSet()}
}
