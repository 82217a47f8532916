package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/fretwise/internal/sse"
	"github.com/starford/fretwise/internal/trainer"
)

// Streamer serves SSE responses. *sse.Broker implements it.
type Streamer interface {
	Stream(w http.ResponseWriter, r *http.Request, topic string, initial *sse.Event)
}

// Handler holds API route handlers.
type Handler struct {
	svc    *trainer.Service
	stream Streamer
}

// NewHandler creates a new Handler. stream may be nil when SSE is not served.
func NewHandler(svc *trainer.Service, stream Streamer) *Handler {
	return &Handler{svc: svc, stream: stream}
}

// Notes handles GET /api/notes.
//
//	@Summary		List the twelve pitch classes
//	@Tags			theory
//	@Produce		json
//	@Param			spelling	query		string	false	"Accidental table"	Enums(sharp, flat)
//	@Success		200			{object}	NotesResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) Notes(w http.ResponseWriter, r *http.Request) {
	spelling := r.URL.Query().Get("spelling")
	notes, err := h.svc.Notes(spelling)
	if err != nil {
		writeError(w, "notes", err)
		return
	}
	if spelling == "" {
		spelling = "sharp"
	}
	writeJSON(w, http.StatusOK, NotesResponse{Spelling: spelling, Notes: notes})
}

// ChordSets handles GET /api/chord-sets.
//
//	@Summary		List chord sets with their templates
//	@Tags			theory
//	@Produce		json
//	@Success		200	{object}	ChordSetsResponse
//	@Security		BearerAuth
//	@Router			/chord-sets [get]
func (h *Handler) ChordSets(w http.ResponseWriter, _ *http.Request) {
	c := h.svc.Catalog()
	writeJSON(w, http.StatusOK, ChordSetsResponse{
		Version:   c.Version(),
		LoadedAt:  c.LoadedAt(),
		ChordSets: h.svc.ChordSets(),
	})
}

// Chord handles GET /api/chords.
//
//	@Summary		Resolve the notes of a chord
//	@Tags			theory
//	@Produce		json
//	@Param			set			query		string	false	"Chord set"	default(explorer)
//	@Param			root		query		string	true	"Root note"
//	@Param			type		query		string	true	"Chord type"
//	@Param			spelling	query		string	false	"Accidental table"	Enums(sharp, flat)
//	@Success		200			{object}	ChordResult
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chords [get]
func (h *Handler) Chord(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("root") == "" || q.Get("type") == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameters 'root' and 'type' are required"))
		return
	}
	res, err := h.svc.Chord(q.Get("set"), q.Get("root"), q.Get("type"), q.Get("spelling"))
	if err != nil {
		writeError(w, "chord", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Fretboard handles GET /api/fretboard.
//
//	@Summary		Render the fretboard with chord tones flagged
//	@Tags			theory
//	@Produce		json
//	@Param			set			query		string	false	"Chord set"	default(explorer)
//	@Param			root		query		string	true	"Root note"
//	@Param			type		query		string	true	"Chord type"
//	@Param			orientation	query		string	false	"Row order"	Enums(low, high)
//	@Param			spelling	query		string	false	"Accidental table"	Enums(sharp, flat)
//	@Success		200			{object}	FretboardResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/fretboard [get]
func (h *Handler) Fretboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("root") == "" || q.Get("type") == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameters 'root' and 'type' are required"))
		return
	}
	board, err := h.svc.Fretboard(q.Get("set"), q.Get("root"), q.Get("type"), q.Get("orientation"), q.Get("spelling"))
	if err != nil {
		writeError(w, "fretboard", err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// Identify handles GET /api/identify.
//
//	@Summary		Find chords formed by a set of notes
//	@Tags			theory
//	@Produce		json
//	@Param			set		query		string	false	"Restrict to one chord set"
//	@Param			notes	query		string	true	"Comma-separated notes"	example(C,E,G)
//	@Param			policy	query		string	false	"Match policy"	Enums(superset, exact)
//	@Success		200		{object}	IdentifyResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/identify [get]
func (h *Handler) Identify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := q.Get("notes")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'notes' is required"))
		return
	}
	var notes []string
	for _, n := range strings.Split(raw, ",") {
		if n = strings.TrimSpace(n); n != "" {
			notes = append(notes, n)
		}
	}
	res, err := h.svc.Identify(r.Context(), q.Get("set"), notes, q.Get("policy"))
	if err != nil {
		writeError(w, "identify", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CreateSession handles POST /api/sessions.
//
//	@Summary		Start an explorer or quiz session
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateSessionRequest	true	"Session options"
//	@Success		201		{object}	SessionView
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "create session", err)
		return
	}
	view, err := h.svc.CreateSession(trainer.CreateSessionRequest{
		Mode:     req.Mode,
		Set:      req.Set,
		Root:     req.Root,
		Chord:    req.Type,
		Spelling: req.Spelling,
		Policy:   req.Policy,
	})
	if err != nil {
		writeError(w, "create session", err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+view.ID)
	writeJSON(w, http.StatusCreated, view)
}

// GetSession handles GET /api/sessions/{id}.
//
//	@Summary		Get a session snapshot
//	@Tags			sessions
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	SessionView
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id} [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetSession(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get session", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeleteSession handles DELETE /api/sessions/{id}.
//
//	@Summary		End a session
//	@Tags			sessions
//	@Param			id	path	string	true	"Session ID"
//	@Success		204	"Session deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id} [delete]
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSession(chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Toggle handles POST /api/sessions/{id}/toggle.
//
//	@Summary		Flip a fretboard cell
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Session ID"
//	@Param			body	body		ToggleRequest	true	"Cell to flip"
//	@Success		200		{object}	SessionView
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse	"Round already complete"
//	@Security		BearerAuth
//	@Router			/sessions/{id}/toggle [post]
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "toggle", err)
		return
	}
	view, err := h.svc.Toggle(chi.URLParam(r, "id"), req.Cell())
	if err != nil {
		writeError(w, "toggle", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SetChord handles PUT /api/sessions/{id}/chord.
//
//	@Summary		Change the chord of an explorer session
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Session ID"
//	@Param			body	body		SetChordRequest	true	"New chord"
//	@Success		200		{object}	SessionView
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse	"Not an explorer session"
//	@Security		BearerAuth
//	@Router			/sessions/{id}/chord [put]
func (h *Handler) SetChord(w http.ResponseWriter, r *http.Request) {
	var req SetChordRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "set chord", err)
		return
	}
	view, err := h.svc.SetChord(chi.URLParam(r, "id"), req.Root, req.Type)
	if err != nil {
		writeError(w, "set chord", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Reset handles POST /api/sessions/{id}/reset.
//
//	@Summary		Clear the selection
//	@Tags			sessions
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	SessionView
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/reset [post]
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Reset(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "reset", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Next handles POST /api/sessions/{id}/next.
//
//	@Summary		Advance a solved quiz to a new round
//	@Tags			sessions
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	SessionView
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse	"Round in progress or not a quiz"
//	@Security		BearerAuth
//	@Router			/sessions/{id}/next [post]
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Next(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "next", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SessionEvents handles GET /api/sessions/{id}/events.
//
//	@Summary		Stream session snapshots
//	@Tags			sessions
//	@Produce		text/event-stream
//	@Param			id	path	string	true	"Session ID"
//	@Success		200	"SSE stream"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/events [get]
func (h *Handler) SessionEvents(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetSession(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "session events", err)
		return
	}
	h.stream.Stream(w, r, view.ID, &sse.Event{Topic: view.ID, Type: sse.EventSnapshot, Data: view})
}
