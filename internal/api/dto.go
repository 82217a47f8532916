package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/fretwise/internal/index"
	"github.com/starford/fretwise/internal/quiz"
	"github.com/starford/fretwise/internal/theory"
	"github.com/starford/fretwise/internal/tracker"
	"github.com/starford/fretwise/internal/trainer"
)

// CreateSessionRequest is the request body for starting a session.
type CreateSessionRequest struct {
	Mode     string `json:"mode" example:"quiz" validate:"required"`
	Set      string `json:"set,omitempty" example:"quiz"`
	Root     string `json:"root,omitempty" example:"C"`
	Type     string `json:"type,omitempty" example:"Major"`
	Spelling string `json:"spelling,omitempty" example:"sharp"`
	Policy   string `json:"policy,omitempty" example:"superset"`
}

// Validate checks the request fields.
func (r CreateSessionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Mode, validation.Required, validation.In(string(quiz.ModeExplorer), string(quiz.ModeQuiz))),
		validation.Field(&r.Spelling, validation.In("sharp", "flat")),
		validation.Field(&r.Policy, validation.In(string(tracker.MatchSuperset), string(tracker.MatchExact))),
		validation.Field(&r.Root, validation.When(r.Mode == string(quiz.ModeQuiz), validation.Empty)),
		validation.Field(&r.Type, validation.When(r.Mode == string(quiz.ModeQuiz), validation.Empty)),
	)
}

// ToggleRequest is the request body for flipping a fretboard cell. Strings
// are numbered 0 (low E) to 5 (high E).
type ToggleRequest struct {
	String *int `json:"string" example:"0" validate:"required"`
	Fret   *int `json:"fret" example:"3" validate:"required"`
}

// Validate checks the request fields.
func (r ToggleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.String, validation.NotNil, validation.Min(0), validation.Max(theory.StringCount-1)),
		validation.Field(&r.Fret, validation.NotNil, validation.Min(0), validation.Max(theory.MaxFret)),
	)
}

// Cell returns the requested cell.
func (r ToggleRequest) Cell() theory.Cell {
	return theory.Cell{String: *r.String, Fret: *r.Fret}
}

// SetChordRequest is the request body for changing an explorer chord.
type SetChordRequest struct {
	Root string `json:"root" example:"A" validate:"required"`
	Type string `json:"type" example:"minor" validate:"required"`
}

// Validate checks the request fields.
func (r SetChordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Root, validation.Required),
		validation.Field(&r.Type, validation.Required),
	)
}

// SessionView is the session snapshot returned by every session route
// (aliased from the domain layer).
type SessionView = quiz.View

// ChordSetInfo describes one chord set (aliased from the domain layer).
type ChordSetInfo = trainer.ChordSetInfo

// ChordResult is a resolved chord (aliased from the domain layer).
type ChordResult = trainer.ChordResult

// IdentifyResponse lists chords matching a note set (aliased from the domain layer).
type IdentifyResponse = trainer.IdentifyResult

// FretboardResponse is the rendered grid (aliased from the domain layer).
type FretboardResponse = theory.Board

// NotesResponse wraps the pitch-class labels.
type NotesResponse struct {
	Spelling string   `json:"spelling" example:"sharp" validate:"required"`
	Notes    []string `json:"notes" validate:"required"`
}

// ChordSetsResponse wraps the chord set listing.
type ChordSetsResponse struct {
	Version   string         `json:"version" validate:"required"`
	LoadedAt  time.Time      `json:"loaded_at" validate:"required"`
	ChordSets []ChordSetInfo `json:"chord_sets" validate:"required"`
}

// IdentifyMatch is one chord in an identify response.
type IdentifyMatch = index.Match
