package index

import (
	"context"

	"github.com/starford/fretwise/internal/theory"
)

// ChordIndex defines the chord lookup operations the service depends on.
type ChordIndex interface {
	Rebuild(ctx context.Context, sets []*theory.ChordSet, version string) error
	Version(ctx context.Context) (string, error)
	Identify(ctx context.Context, chordSet string, mask uint16, exact bool) ([]Match, error)
	Count(ctx context.Context, chordSet string) (int, error)
	Close() error
}

// Verify *DB satisfies ChordIndex at compile time.
var _ ChordIndex = (*DB)(nil)
