package quiz

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/starford/fretwise/internal/theory"
	"github.com/starford/fretwise/internal/tracker"
)

// Session errors.
var (
	ErrRoundInProgress = errors.New("round not complete")
	ErrRoundComplete   = errors.New("round already complete")
	ErrWrongMode       = errors.New("operation not available in this mode")
)

// Mode selects the session variant.
type Mode string

// Session modes.
const (
	ModeExplorer Mode = "explorer"
	ModeQuiz     Mode = "quiz"
)

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeExplorer, ModeQuiz:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// State is the round state.
type State string

// Round states.
const (
	StateSelecting State = "selecting"
	StateCorrect   State = "correct"
)

// View is what clients render after every mutation.
type View struct {
	ID         string           `json:"id"`
	Mode       Mode             `json:"mode"`
	ChordSet   string           `json:"chord_set"`
	State      State            `json:"state"`
	Round      int              `json:"round"`
	Root       string           `json:"root"`
	Chord      string           `json:"chord"`
	Notes      []string         `json:"notes,omitempty"`
	CanAdvance bool             `json:"can_advance"`
	Policy     string           `json:"policy"`
	Tracker    tracker.Snapshot `json:"tracker"`
}

// Session is one player's explorer or quiz state. All methods are safe for
// concurrent use; mutations are serialized.
type Session struct {
	mu sync.Mutex

	id      string
	mode    Mode
	engine  *theory.Engine
	rnd     *Randomizer
	tracker *tracker.Tracker
	round   Round
	roundNo int
	state   State
	touched time.Time
}

// NewExplorer starts an explorer session showing chord at root.
func NewExplorer(id string, engine *theory.Engine, policy tracker.MatchPolicy, root theory.PitchClass, chord string) (*Session, error) {
	notes, err := engine.ChordNotes(root, chord)
	if err != nil {
		return nil, err
	}
	return &Session{
		id:      id,
		mode:    ModeExplorer,
		engine:  engine,
		tracker: tracker.New(notes, policy),
		round:   Round{Root: root, Chord: chord},
		roundNo: 1,
		state:   StateSelecting,
	}, nil
}

// NewQuiz starts a quiz session with a randomly drawn first round.
func NewQuiz(id string, engine *theory.Engine, policy tracker.MatchPolicy, entropy Entropy) (*Session, error) {
	rnd := NewRandomizer(engine.ChordSet(), entropy)
	round := rnd.Next()
	notes, err := engine.ChordNotes(round.Root, round.Chord)
	if err != nil {
		return nil, err
	}
	return &Session{
		id:      id,
		mode:    ModeQuiz,
		engine:  engine,
		rnd:     rnd,
		tracker: tracker.New(notes, policy),
		round:   round,
		roundNo: 1,
		state:   StateSelecting,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Mode returns the session variant.
func (s *Session) Mode() Mode { return s.mode }

// Engine returns the engine the session was created with.
func (s *Session) Engine() *theory.Engine { return s.engine }

// View returns the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(s.tracker.Snapshot())
}

// Toggle flips a fretboard cell. The note is derived from the engine.
func (s *Session) Toggle(cell theory.Cell) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCorrect {
		return View{}, ErrRoundComplete
	}
	pitch, err := s.engine.CellPitch(cell)
	if err != nil {
		return View{}, err
	}
	snap := s.tracker.Toggle(cell, pitch)
	if s.mode == ModeQuiz && snap.Complete {
		s.state = StateCorrect
	}
	return s.view(snap), nil
}

// SetChord changes the explorer target and clears the selection.
func (s *Session) SetChord(root theory.PitchClass, chord string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeExplorer {
		return View{}, ErrWrongMode
	}
	notes, err := s.engine.ChordNotes(root, chord)
	if err != nil {
		return View{}, err
	}
	s.round = Round{Root: root, Chord: chord}
	s.roundNo++
	return s.view(s.tracker.Reset(notes)), nil
}

// Reset clears the selection without changing the target. A solved quiz
// round only leaves Correct through Next.
func (s *Session) Reset() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeQuiz && s.state == StateCorrect {
		return View{}, ErrRoundComplete
	}
	return s.view(s.tracker.Clear()), nil
}

// Next starts a new quiz round. It is only allowed once the current round
// is correct.
func (s *Session) Next() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeQuiz {
		return View{}, ErrWrongMode
	}
	if s.state != StateCorrect {
		return View{}, ErrRoundInProgress
	}
	round := s.rnd.Next()
	notes, err := s.engine.ChordNotes(round.Root, round.Chord)
	if err != nil {
		return View{}, err
	}
	s.round = round
	s.roundNo++
	s.state = StateSelecting
	return s.view(s.tracker.Reset(notes)), nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.touched = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// view must be called with s.mu held.
func (s *Session) view(snap tracker.Snapshot) View {
	v := View{
		ID:         s.id,
		Mode:       s.mode,
		ChordSet:   s.engine.ChordSet().Name(),
		State:      s.state,
		Round:      s.roundNo,
		Root:       s.engine.Label(s.round.Root),
		Chord:      s.round.Chord,
		CanAdvance: s.mode == ModeQuiz && s.state == StateCorrect,
		Policy:     string(s.tracker.Policy()),
		Tracker:    snap,
	}
	// Quiz targets stay hidden until the round is solved.
	if s.mode == ModeQuiz && s.state != StateCorrect {
		v.Tracker.Target = nil
	} else {
		v.Notes = s.engine.Labels(snap.Target)
	}
	return v
}
