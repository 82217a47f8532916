// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Fretwise chord tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/fretwise/internal/trainer"
)

// TheoryURI is the resource holding the music theory reference.
const TheoryURI = "fretwise://theory"

// Server wraps the MCP server with Fretwise tools.
type Server struct {
	mcp *server.MCPServer
	svc *trainer.Service
}

// New creates a new MCP server with all Fretwise tools registered.
func New(svc *trainer.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Fretwise",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_chord_sets",
		mcp.WithDescription("List every chord set with its chord types and semitone offsets."),
	), s.listChordSets)

	s.mcp.AddTool(mcp.NewTool("chord_notes",
		mcp.WithDescription("Return the notes of a chord, root first. Read "+TheoryURI+" for naming rules."),
		mcp.WithString("root", mcp.Required(), mcp.Description("Root note, e.g. C, F#, Bb")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Chord type name from the chord set, e.g. Major, minor, Dominant 7")),
		mcp.WithString("set", mcp.Description("Chord set name (default explorer)")),
		mcp.WithString("spelling", mcp.Description("sharp (default) or flat")),
	), s.chordNotes)

	s.mcp.AddTool(mcp.NewTool("note_at",
		mcp.WithDescription("Return the note sounding at a fret of an open string."),
		mcp.WithString("open", mcp.Required(), mcp.Description("Open string note, e.g. E")),
		mcp.WithNumber("fret", mcp.Required(), mcp.Description("Fret number, 0 for the open string")),
		mcp.WithString("spelling", mcp.Description("sharp (default) or flat")),
	), s.noteAt)

	s.mcp.AddTool(mcp.NewTool("identify_chord",
		mcp.WithDescription("Find chords formed by a set of notes."),
		mcp.WithString("notes", mcp.Required(), mcp.Description("Comma-separated notes, e.g. C,E,G")),
		mcp.WithString("set", mcp.Description("Restrict to one chord set (default all)")),
		mcp.WithString("policy", mcp.Description("superset: chord tones within the notes; exact: same pitch classes")),
	), s.identifyChord)

	s.mcp.AddTool(mcp.NewTool("fretboard",
		mcp.WithDescription("Draw a 6-string, 13-fret standard-tuning fretboard with the chord tones marked."),
		mcp.WithString("root", mcp.Required(), mcp.Description("Root note")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Chord type name")),
		mcp.WithString("set", mcp.Description("Chord set name (default explorer)")),
		mcp.WithString("orientation", mcp.Description("high (default, high E on top like tablature) or low")),
	), s.fretboard)

	// Resource: theory reference.
	s.mcp.AddResource(
		mcp.NewResource(TheoryURI, "Chord Theory Reference",
			mcp.WithResourceDescription("Pitch classes, spellings, chord formulas, and fretboard coordinates used by Fretwise."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTheoryResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listChordSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.ChordSets())
}

func (s *Server) chordNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := req.RequireString("root")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	chord, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Chord(req.GetString("set", ""), root, chord, req.GetString("spelling", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strings.Join(res.Notes, " ")), nil
}

func (s *Server) noteAt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	open, err := req.RequireString("open")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fret, err := req.RequireInt("fret")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.NoteAt(open, fret, req.GetString("spelling", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(note), nil
}

func (s *Server) identifyChord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("notes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
	res, err := s.svc.Identify(ctx, req.GetString("set", ""), notes, req.GetString("policy", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(res.Matches) == 0 {
		return mcp.NewToolResultText("no matching chords"), nil
	}
	lines := make([]string, len(res.Matches))
	for i, m := range res.Matches {
		lines[i] = m.Root.String() + " " + m.Chord + " (" + m.ChordSet + ")"
		if m.Exact {
			lines[i] += " exact"
		}
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) fretboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := req.RequireString("root")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	chord, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	board, err := s.svc.Fretboard(req.GetString("set", ""), root, chord, req.GetString("orientation", "high"), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(Render(board)), nil
}

func (s *Server) readTheoryResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      TheoryURI,
			MIMEType: "text/markdown",
			Text:     TheoryReference,
		},
	}, nil
}
