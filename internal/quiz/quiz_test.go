package quiz

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/starford/fretwise/internal/theory"
	"github.com/starford/fretwise/internal/tracker"
)

// scripted replays fixed draws in order.
func scripted(draws ...int) Entropy {
	i := 0
	return func(n int) int {
		v := draws[i%len(draws)]
		i++
		return v
	}
}

func quizEngine() *theory.Engine {
	return theory.NewEngine(theory.WithChordSet(theory.QuizSet()))
}

func TestRandomizer_Deterministic(t *testing.T) {
	set := theory.QuizSet()
	r := NewRandomizer(set, scripted(9, 5, 0, 0, 9, 5))
	first := r.Next()
	if first.Root != theory.A || first.Chord != "Minor 7" {
		t.Fatalf("first round = %+v, want A Minor 7", first)
	}
	if second := r.Next(); second.Root != theory.C || second.Chord != "Major" {
		t.Fatalf("second round = %+v, want C Major", second)
	}
	// Draws are with replacement: the same round may repeat.
	if third := r.Next(); third != first {
		t.Fatalf("third round = %+v, want repeat of %+v", third, first)
	}
}

func TestRandomizer_ClampsEntropy(t *testing.T) {
	r := NewRandomizer(theory.QuizSet(), scripted(-1, 100))
	got := r.Next()
	if got.Root != theory.B {
		t.Errorf("root = %v, want B", got.Root)
	}
	if got.Chord != theory.QuizSet().Names()[100%7] {
		t.Errorf("chord = %q", got.Chord)
	}
}

func TestRandomizer_CoversTable(t *testing.T) {
	r := NewRandomizer(theory.QuizSet(), SeededEntropy(42))
	roots := map[theory.PitchClass]bool{}
	chords := map[string]bool{}
	for i := 0; i < 2000; i++ {
		round := r.Next()
		roots[round.Root] = true
		chords[round.Chord] = true
	}
	if len(roots) != 12 || len(chords) != 7 {
		t.Fatalf("coverage roots=%d chords=%d", len(roots), len(chords))
	}
}

func TestNewEntropy(t *testing.T) {
	e, err := NewEntropy()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		if v := e(12); v < 0 || v >= 12 {
			t.Fatalf("draw %d out of range", v)
		}
	}
}

func TestQuizSession_Flow(t *testing.T) {
	// C Major first, then A Minor 7.
	s, err := NewQuiz("q1", quizEngine(), tracker.MatchSuperset, scripted(0, 0, 9, 5))
	if err != nil {
		t.Fatal(err)
	}
	v := s.View()
	if v.State != StateSelecting || v.Root != "C" || v.Chord != "Major" {
		t.Fatalf("initial view = %+v", v)
	}
	if len(v.Notes) != 0 || len(v.Tracker.Target) != 0 {
		t.Fatal("quiz target must be hidden while selecting")
	}

	if _, err := s.Next(); !errors.Is(err, ErrRoundInProgress) {
		t.Fatalf("Next while selecting err = %v", err)
	}

	for _, c := range []theory.Cell{{String: 1, Fret: 3}, {String: 2, Fret: 2}} {
		if v, err = s.Toggle(c); err != nil {
			t.Fatal(err)
		}
	}
	if v.State != StateSelecting || v.CanAdvance {
		t.Fatalf("C+E: state %s", v.State)
	}
	v, err = s.Toggle(theory.Cell{String: 3, Fret: 0})
	if err != nil {
		t.Fatal(err)
	}
	if v.State != StateCorrect || !v.CanAdvance {
		t.Fatalf("C+E+G: state %s", v.State)
	}
	if len(v.Notes) != 3 {
		t.Fatalf("solved round should reveal notes, got %v", v.Notes)
	}

	if _, err := s.Toggle(theory.Cell{String: 0, Fret: 0}); !errors.Is(err, ErrRoundComplete) {
		t.Fatalf("toggle while correct err = %v", err)
	}

	v, err = s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if v.State != StateSelecting || v.Round != 2 || v.Root != "A" || v.Chord != "Minor 7" {
		t.Fatalf("next round view = %+v", v)
	}
	if len(v.Tracker.Selections) != 0 || len(v.Tracker.Visible) != 0 {
		t.Fatal("selection leaked into next round")
	}
}

func TestQuizSession_WrongSelectionsStaySelecting(t *testing.T) {
	s, _ := NewQuiz("q", quizEngine(), tracker.MatchSuperset, scripted(0, 0))
	for f := 0; f <= 2; f++ {
		v, err := s.Toggle(theory.Cell{String: 0, Fret: f * 2})
		if err != nil {
			t.Fatal(err)
		}
		if v.State != StateSelecting {
			t.Fatalf("state = %s", v.State)
		}
	}
}

func TestQuizSession_Reset(t *testing.T) {
	s, _ := NewQuiz("q", quizEngine(), tracker.MatchSuperset, scripted(0, 0))
	s.Toggle(theory.Cell{String: 1, Fret: 3})
	v, err := s.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Tracker.Selections) != 0 || v.Root != "C" || v.State != StateSelecting {
		t.Fatalf("reset view = %+v", v)
	}
}

func TestQuizSession_ResetRejectedWhileCorrect(t *testing.T) {
	s, _ := NewQuiz("q", quizEngine(), tracker.MatchSuperset, scripted(0, 0))
	for _, c := range []theory.Cell{{String: 1, Fret: 3}, {String: 2, Fret: 2}, {String: 3, Fret: 0}} {
		if _, err := s.Toggle(c); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Reset(); !errors.Is(err, ErrRoundComplete) {
		t.Fatalf("reset while correct err = %v", err)
	}
	v := s.View()
	if v.State != StateCorrect || v.Round != 1 || v.Chord != "Major" || len(v.Tracker.Selections) != 3 {
		t.Fatalf("view after rejected reset = %+v", v)
	}
	if _, err := s.Next(); err != nil {
		t.Fatalf("next after rejected reset: %v", err)
	}
}

func TestQuizSession_SetChordRejected(t *testing.T) {
	s, _ := NewQuiz("q", quizEngine(), tracker.MatchSuperset, scripted(0, 0))
	if _, err := s.SetChord(theory.D, "Major"); !errors.Is(err, ErrWrongMode) {
		t.Fatalf("err = %v", err)
	}
}

func TestExplorerSession(t *testing.T) {
	s, err := NewExplorer("e", theory.NewEngine(), tracker.MatchSuperset, theory.C, "Major")
	if err != nil {
		t.Fatal(err)
	}
	v, _ := s.Toggle(theory.Cell{String: 1, Fret: 3})
	if len(v.Notes) != 3 || v.Notes[0] != "C" {
		t.Fatalf("explorer notes = %v", v.Notes)
	}
	v, err = s.SetChord(theory.A, "minor")
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Tracker.Selections) != 0 || v.Root != "A" {
		t.Fatalf("chord change should reset: %+v", v)
	}
	if _, err := s.SetChord(theory.A, "Minor 7"); !errors.Is(err, theory.ErrUnknownChord) {
		t.Fatalf("err = %v, want ErrUnknownChord", err)
	}
	if _, err := s.Next(); !errors.Is(err, ErrWrongMode) {
		t.Fatalf("Next err = %v", err)
	}
	// Explorer never locks: completing the chord keeps toggles open.
	for _, c := range []theory.Cell{{String: 1, Fret: 0}, {String: 1, Fret: 3}, {String: 2, Fret: 2}} {
		v, _ = s.Toggle(c)
	}
	if !v.Tracker.Complete || v.State != StateSelecting {
		t.Fatalf("explorer complete view = %+v", v)
	}
	if _, err := s.Toggle(theory.Cell{String: 0, Fret: 0}); err != nil {
		t.Fatal(err)
	}
}

func TestToggleOutOfRange(t *testing.T) {
	s, _ := NewExplorer("e", theory.NewEngine(), tracker.MatchSuperset, theory.C, "Major")
	if _, err := s.Toggle(theory.Cell{String: 6, Fret: 0}); !errors.Is(err, theory.ErrCellOutOfRange) {
		t.Fatalf("err = %v", err)
	}
}

func TestStore(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	st := NewStore(2, time.Minute, WithClock(func() time.Time { return now }))

	a, _ := NewExplorer("a", theory.NewEngine(), "", theory.C, "Major")
	b, _ := NewExplorer("b", theory.NewEngine(), "", theory.C, "Major")
	c, _ := NewExplorer("c", theory.NewEngine(), "", theory.C, "Major")
	if err := st.Add(a); err != nil {
		t.Fatal(err)
	}
	if err := st.Add(b); err != nil {
		t.Fatal(err)
	}
	if err := st.Add(c); !errors.Is(err, ErrStoreFull) {
		t.Fatalf("err = %v, want ErrStoreFull", err)
	}

	now = now.Add(45 * time.Second)
	if _, err := st.Get("a"); err != nil {
		t.Fatal(err)
	}
	now = now.Add(30 * time.Second)
	expired := st.Sweep()
	if len(expired) != 1 || expired[0] != "b" {
		t.Fatalf("expired = %v, want [b]", expired)
	}
	if _, err := st.Get("b"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v", err)
	}
	if !st.Delete("a") || st.Delete("a") {
		t.Fatal("Delete should report existence once")
	}
	if st.Len() != 0 {
		t.Fatalf("Len = %d", st.Len())
	}
}

func TestJanitorStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	st := NewStore(0, time.Nanosecond)
	s, _ := NewExplorer("a", theory.NewEngine(), "", theory.C, "Major")
	_ = st.Add(s)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	expired := make(chan string, 1)
	done := make(chan struct{})
	go func() {
		st.Janitor(ctx, time.Millisecond, logger, func(id string) { expired <- id })
		close(done)
	}()

	select {
	case id := <-expired:
		if id != "a" {
			t.Errorf("expired %q", id)
		}
	case <-time.After(time.Second):
		t.Fatal("janitor did not sweep")
	}
	cancel()
	<-done
}
