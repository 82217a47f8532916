// Package trainer coordinates the chord catalog, theory engines, live
// sessions, the chord index and the event broker behind one API.
package trainer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/fretwise/internal/catalog"
	"github.com/starford/fretwise/internal/index"
	"github.com/starford/fretwise/internal/quiz"
	"github.com/starford/fretwise/internal/theory"
	"github.com/starford/fretwise/internal/tracker"
)

// Publisher receives session and catalog events. *sse.Broker implements it.
type Publisher interface {
	PublishSnapshot(sessionID string, view any)
	PublishExpired(sessionID string)
	PublishCatalogEvent(version string)
}

type nopPublisher struct{}

func (nopPublisher) PublishSnapshot(string, any) {}
func (nopPublisher) PublishExpired(string)       {}
func (nopPublisher) PublishCatalogEvent(string)  {}

// Options configures a Service. Zero values select the defaults.
type Options struct {
	Policy      tracker.MatchPolicy
	ExplorerSet string
	QuizSet     string
	Publisher   Publisher
	Logger      *slog.Logger
	// Entropy builds the random source of each new quiz session.
	Entropy func() (quiz.Entropy, error)
	// NewID generates session identifiers.
	NewID func() string
}

// Service is the application core shared by the HTTP and MCP transports.
type Service struct {
	reg      *catalog.Registry
	idx      index.ChordIndex
	sessions *quiz.Store
	pub      Publisher
	logger   *slog.Logger

	policy      tracker.MatchPolicy
	explorerSet string
	quizSet     string
	entropy     func() (quiz.Entropy, error)
	newID       func() string
}

// NewService wires a service. idx may be nil, in which case Identify falls
// back to scanning the current catalog in memory.
func NewService(reg *catalog.Registry, idx index.ChordIndex, sessions *quiz.Store, opts Options) *Service {
	s := &Service{
		reg:         reg,
		idx:         idx,
		sessions:    sessions,
		pub:         opts.Publisher,
		logger:      opts.Logger,
		policy:      opts.Policy,
		explorerSet: opts.ExplorerSet,
		quizSet:     opts.QuizSet,
		entropy:     opts.Entropy,
		newID:       opts.NewID,
	}
	if s.pub == nil {
		s.pub = nopPublisher{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.policy == "" {
		s.policy = tracker.MatchSuperset
	}
	if s.explorerSet == "" {
		s.explorerSet = theory.ExplorerSetName
	}
	if s.quizSet == "" {
		s.quizSet = theory.QuizSetName
	}
	if s.entropy == nil {
		s.entropy = quiz.NewEntropy
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Policy returns the default match policy.
func (s *Service) Policy() tracker.MatchPolicy { return s.policy }

// Catalog returns the current catalog snapshot.
func (s *Service) Catalog() *catalog.Catalog { return s.reg.Current() }

// ChordInfo describes one chord template.
type ChordInfo struct {
	Name    string `json:"name"`
	Offsets []int  `json:"offsets"`
}

// ChordSetInfo describes one chord set.
type ChordSetInfo struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Source      string      `json:"source,omitempty"`
	Chords      []ChordInfo `json:"chords"`
}

// ChordResult is a resolved chord.
type ChordResult struct {
	ChordSet string              `json:"chord_set"`
	Root     string              `json:"root"`
	Chord    string              `json:"chord"`
	Notes    []string            `json:"notes"`
	Pitches  []theory.PitchClass `json:"pitches"`
	Mask     uint16              `json:"mask"`
}

// IdentifyResult lists chords matching a note set.
type IdentifyResult struct {
	Notes   []string      `json:"notes"`
	Policy  string        `json:"policy"`
	Matches []index.Match `json:"matches"`
}

// Notes returns the twelve pitch-class labels in chromatic order.
func (s *Service) Notes(spelling string) ([]string, error) {
	sp, err := spellingFor(spelling)
	if err != nil {
		return nil, err
	}
	return sp.Names(), nil
}

// ChordSets describes every chord set in the current catalog.
func (s *Service) ChordSets() []ChordSetInfo {
	c := s.reg.Current()
	sets := c.Sets()
	out := make([]ChordSetInfo, 0, len(sets))
	for _, set := range sets {
		info := ChordSetInfo{
			Name:        set.Name(),
			Description: set.Description(),
			Source:      c.Source(set.Name()),
			Chords:      make([]ChordInfo, 0, set.Len()),
		}
		for _, t := range set.Templates() {
			info.Chords = append(info.Chords, ChordInfo{Name: t.Name(), Offsets: t.Offsets()})
		}
		out = append(out, info)
	}
	return out
}

// Chord resolves the notes of chordType built on root in set.
func (s *Service) Chord(set, root, chordType, spelling string) (*ChordResult, error) {
	engine, err := s.engine(s.orExplorer(set), spelling)
	if err != nil {
		return nil, err
	}
	pc, err := theory.ParsePitchClass(root)
	if err != nil {
		return nil, classify(err)
	}
	notes, err := engine.ChordNotes(pc, chordType)
	if err != nil {
		return nil, classify(err)
	}
	return &ChordResult{
		ChordSet: engine.ChordSet().Name(),
		Root:     engine.Label(pc),
		Chord:    chordType,
		Notes:    engine.Labels(notes),
		Pitches:  notes,
		Mask:     theory.Mask(notes),
	}, nil
}

// Fretboard renders the 6x13 grid for a chord. orientation is "low"
// (default, low E first) or "high".
func (s *Service) Fretboard(set, root, chordType, orientation, spelling string) (*theory.Board, error) {
	var highFirst bool
	switch orientation {
	case "", "low":
	case "high":
		highFirst = true
	default:
		return nil, invalid(fmt.Errorf("unknown orientation %q", orientation))
	}
	engine, err := s.engine(s.orExplorer(set), spelling)
	if err != nil {
		return nil, err
	}
	pc, err := theory.ParsePitchClass(root)
	if err != nil {
		return nil, classify(err)
	}
	board, err := engine.Fretboard(pc, chordType, highFirst)
	if err != nil {
		return nil, classify(err)
	}
	return board, nil
}

// NoteAt returns the pitch class at fret on an open string.
func (s *Service) NoteAt(open string, fret int, spelling string) (string, error) {
	sp, err := spellingFor(spelling)
	if err != nil {
		return "", err
	}
	if fret < 0 {
		return "", invalid(fmt.Errorf("fret %d is negative", fret))
	}
	pc, err := theory.ParsePitchClass(open)
	if err != nil {
		return "", classify(err)
	}
	return sp.Name(theory.NoteAt(pc, fret)), nil
}

// Identify lists chords formed by notes. An empty set searches every set;
// an empty policy uses the service default.
func (s *Service) Identify(ctx context.Context, set string, notes []string, policy string) (*IdentifyResult, error) {
	pol := s.policy
	if policy != "" {
		p, err := tracker.ParseMatchPolicy(policy)
		if err != nil {
			return nil, invalid(err)
		}
		pol = p
	}
	if len(notes) == 0 {
		return nil, invalid(errors.New("no notes given"))
	}
	pcs, err := theory.ParsePitchClasses(notes)
	if err != nil {
		return nil, classify(err)
	}
	if set != "" {
		if _, err := s.reg.Current().Set(set); err != nil {
			return nil, err
		}
	}

	mask := theory.Mask(pcs)
	exact := pol == tracker.MatchExact
	var matches []index.Match
	if s.idx != nil {
		matches, err = s.idx.Identify(ctx, set, mask, exact)
		if err != nil {
			return nil, fmt.Errorf("identify: %w", err)
		}
	} else {
		matches = scan(s.reg.Current(), set, mask, exact)
	}
	if matches == nil {
		matches = []index.Match{}
	}
	selected := theory.FromMask(mask)
	names := make([]string, len(selected))
	for i, p := range selected {
		names[i] = p.String()
	}
	return &IdentifyResult{Notes: names, Policy: string(pol), Matches: matches}, nil
}

// scan mirrors index.DB.Identify over an in-memory catalog, including its
// ordering by set name, table position, then root.
func scan(c *catalog.Catalog, set string, mask uint16, exact bool) []index.Match {
	var out []index.Match
	for _, cs := range c.Sets() {
		if set != "" && cs.Name() != set {
			continue
		}
		for _, t := range cs.Templates() {
			for r := 0; r < theory.Count; r++ {
				root := theory.PitchClass(r)
				notes := t.Notes(root)
				m := theory.Mask(notes)
				if (exact && m != mask) || (!exact && m&mask != m) {
					continue
				}
				out = append(out, index.Match{
					ChordSet: cs.Name(),
					Chord:    t.Name(),
					Root:     root,
					Notes:    notes,
					Exact:    m == mask,
				})
			}
		}
	}
	slices.SortStableFunc(out, func(a, b index.Match) int { return cmp.Compare(a.ChordSet, b.ChordSet) })
	return out
}

// CreateSessionRequest describes a new session.
type CreateSessionRequest struct {
	Mode     string
	Set      string
	Root     string
	Chord    string
	Spelling string
	Policy   string
}

// CreateSession starts an explorer or quiz session. Explorer sessions
// default to root C and the first chord of their set when root or chord is
// empty.
func (s *Service) CreateSession(req CreateSessionRequest) (quiz.View, error) {
	mode, err := quiz.ParseMode(req.Mode)
	if err != nil {
		return quiz.View{}, invalid(err)
	}
	pol := s.policy
	if req.Policy != "" {
		if pol, err = tracker.ParseMatchPolicy(req.Policy); err != nil {
			return quiz.View{}, invalid(err)
		}
	}

	var sess *quiz.Session
	switch mode {
	case quiz.ModeExplorer:
		engine, err := s.engine(s.orExplorer(req.Set), req.Spelling)
		if err != nil {
			return quiz.View{}, err
		}
		root := theory.C
		if req.Root != "" {
			if root, err = theory.ParsePitchClass(req.Root); err != nil {
				return quiz.View{}, classify(err)
			}
		}
		chord := req.Chord
		if chord == "" {
			chord = engine.ChordSet().At(0).Name()
		}
		sess, err = quiz.NewExplorer(s.newID(), engine, pol, root, chord)
		if err != nil {
			return quiz.View{}, classify(err)
		}
	case quiz.ModeQuiz:
		set := req.Set
		if set == "" {
			set = s.quizSet
		}
		engine, err := s.engine(set, req.Spelling)
		if err != nil {
			return quiz.View{}, err
		}
		entropy, err := s.entropy()
		if err != nil {
			return quiz.View{}, fmt.Errorf("create session: %w", err)
		}
		sess, err = quiz.NewQuiz(s.newID(), engine, pol, entropy)
		if err != nil {
			return quiz.View{}, classify(err)
		}
	}

	if err := s.sessions.Add(sess); err != nil {
		return quiz.View{}, classify(err)
	}
	view := sess.View()
	s.logger.Info("session created", "id", view.ID, "mode", view.Mode, "chord_set", view.ChordSet)
	return view, nil
}

// GetSession returns the current view of a session.
func (s *Service) GetSession(id string) (quiz.View, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return quiz.View{}, classify(err)
	}
	return sess.View(), nil
}

// DeleteSession drops a session and notifies its subscribers.
func (s *Service) DeleteSession(id string) error {
	if !s.sessions.Delete(id) {
		return classify(fmt.Errorf("%w: %s", quiz.ErrSessionNotFound, id))
	}
	s.pub.PublishExpired(id)
	return nil
}

// Expire notifies subscribers of a session removed by the store janitor.
func (s *Service) Expire(id string) {
	s.logger.Info("session expired", "id", id)
	s.pub.PublishExpired(id)
}

// Toggle flips a fretboard cell in a session.
func (s *Service) Toggle(id string, cell theory.Cell) (quiz.View, error) {
	return s.mutate(id, func(sess *quiz.Session) (quiz.View, error) {
		return sess.Toggle(cell)
	})
}

// SetChord changes the target of an explorer session.
func (s *Service) SetChord(id, root, chord string) (quiz.View, error) {
	pc, err := theory.ParsePitchClass(root)
	if err != nil {
		return quiz.View{}, classify(err)
	}
	return s.mutate(id, func(sess *quiz.Session) (quiz.View, error) {
		return sess.SetChord(pc, chord)
	})
}

// Reset clears a session's selection.
func (s *Service) Reset(id string) (quiz.View, error) {
	return s.mutate(id, (*quiz.Session).Reset)
}

// Next advances a solved quiz session to a fresh round.
func (s *Service) Next(id string) (quiz.View, error) {
	return s.mutate(id, func(sess *quiz.Session) (quiz.View, error) {
		return sess.Next()
	})
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int { return s.sessions.Len() }

func (s *Service) mutate(id string, fn func(*quiz.Session) (quiz.View, error)) (quiz.View, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return quiz.View{}, classify(err)
	}
	view, err := fn(sess)
	if err != nil {
		return quiz.View{}, classify(err)
	}
	s.pub.PublishSnapshot(id, view)
	return view, nil
}

// SyncIndex rebuilds the chord index when it is behind the current catalog.
func (s *Service) SyncIndex(ctx context.Context) error {
	if s.idx == nil {
		return nil
	}
	c := s.reg.Current()
	v, err := s.idx.Version(ctx)
	if err != nil {
		return err
	}
	if v == c.Version() {
		s.logger.Debug("chord index up to date", "version", v)
		return nil
	}
	if err := s.idx.Rebuild(ctx, c.Sets(), c.Version()); err != nil {
		return err
	}
	s.logger.Info("chord index rebuilt", "version", c.Version(), "sets", strings.Join(c.Names(), ","))
	return nil
}

// OnCatalogReload is the library watcher callback: it reindexes and
// broadcasts the new version.
func (s *Service) OnCatalogReload(ctx context.Context, c *catalog.Catalog) {
	if err := s.SyncIndex(ctx); err != nil {
		s.logger.Error("chord index rebuild failed", "error", err)
	}
	s.pub.PublishCatalogEvent(c.Version())
}

func (s *Service) orExplorer(set string) string {
	if set == "" {
		return s.explorerSet
	}
	return set
}

func (s *Service) engine(set, spelling string) (*theory.Engine, error) {
	cs, err := s.reg.Current().Set(set)
	if err != nil {
		return nil, err
	}
	sp, err := spellingFor(spelling)
	if err != nil {
		return nil, err
	}
	return theory.NewEngine(theory.WithChordSet(cs), theory.WithSpelling(sp)), nil
}

func spellingFor(name string) (theory.Spelling, error) {
	if name == "" {
		return theory.Sharps, nil
	}
	sp, err := theory.SpellingByName(name)
	if err != nil {
		return theory.Spelling{}, invalid(err)
	}
	return sp, nil
}
