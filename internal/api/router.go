package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/fretwise/internal/sse"
	"github.com/starford/fretwise/internal/trainer"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// broker, if non-nil, serves GET /events and GET /sessions/{id}/events
// inside the auth group.
func NewRouter(svc *trainer.Service, broker *sse.Broker, authEnabled bool, token string) chi.Router {
	var stream Streamer
	if broker != nil {
		stream = broker
	}
	h := NewHandler(svc, stream)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Theory lookups.
	r.Get("/notes", h.Notes)
	r.Get("/chord-sets", h.ChordSets)
	r.Get("/chords", h.Chord)
	r.Get("/fretboard", h.Fretboard)
	r.Get("/identify", h.Identify)

	// Sessions.
	r.Post("/sessions", h.CreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.DeleteSession)
		r.Post("/toggle", h.Toggle)
		r.Put("/chord", h.SetChord)
		r.Post("/reset", h.Reset)
		r.Post("/next", h.Next)
		if broker != nil {
			r.Get("/events", h.SessionEvents)
		}
	})

	// Catalog broadcast stream.
	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}
