package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/fretwise/internal/theory"
)

// Match is one chord whose tones relate to a queried note set.
type Match struct {
	ChordSet string              `json:"chord_set"`
	Chord    string              `json:"chord"`
	Root     theory.PitchClass   `json:"root"`
	Notes    []theory.PitchClass `json:"notes"`
	Exact    bool                `json:"exact"`
}

// Rebuild replaces the whole table with every (set, chord, root) of sets
// and records version. It runs in a single transaction.
func (db *DB) Rebuild(ctx context.Context, sets []*theory.ChordSet, version string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.ExecContext(ctx, `DELETE FROM chords`); err != nil {
		return fmt.Errorf("index: clear: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chords (chord_set, name, position, root, mask, size, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, set := range sets {
		for pos, tpl := range set.Templates() {
			for r := 0; r < theory.Count; r++ {
				root := theory.PitchClass(r)
				notes := tpl.Notes(root)
				notesJSON, _ := json.Marshal(notes)
				if _, err := stmt.ExecContext(ctx, set.Name(), tpl.Name(), pos, r, int(theory.Mask(notes)), len(notes), string(notesJSON)); err != nil {
					return fmt.Errorf("index: insert %s/%s: %w", set.Name(), tpl.Name(), err)
				}
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES ('version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, version); err != nil {
		return fmt.Errorf("index: set version: %w", err)
	}
	return tx.Commit()
}

// Version returns the catalog version the table was last built from.
func (db *DB) Version(ctx context.Context) (string, error) {
	var v string
	err := db.conn.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'version'`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: version: %w", err)
	}
	return v, nil
}

// Identify returns chords whose tones are all within mask. With exact set,
// only chords whose tones equal mask are returned. An empty chordSet
// searches every set. Results are ordered by set, table position, then root.
func (db *DB) Identify(ctx context.Context, chordSet string, mask uint16, exact bool) ([]Match, error) {
	q := `SELECT chord_set, name, root, mask, notes FROM chords WHERE (mask & ?) = mask`
	args := []any{int(mask)}
	if exact {
		q = `SELECT chord_set, name, root, mask, notes FROM chords WHERE mask = ?`
	}
	if chordSet != "" {
		q += ` AND chord_set = ?`
		args = append(args, chordSet)
	}
	q += ` ORDER BY chord_set, position, root`

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: identify: %w", err)
	}
	defer rows.Close()

	out := []Match{}
	for rows.Next() {
		var (
			m         Match
			root      int
			chordMask int
			notesJSON string
		)
		if err := rows.Scan(&m.ChordSet, &m.Chord, &root, &chordMask, &notesJSON); err != nil {
			return nil, err
		}
		m.Root = theory.PitchClass(root)
		m.Exact = uint16(chordMask) == mask
		if err := json.Unmarshal([]byte(notesJSON), &m.Notes); err != nil {
			return nil, fmt.Errorf("index: decode notes: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Count returns the number of indexed rows for chordSet, or all rows when empty.
func (db *DB) Count(ctx context.Context, chordSet string) (int, error) {
	var n int
	var err error
	if chordSet == "" {
		err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM chords`).Scan(&n)
	} else {
		err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM chords WHERE chord_set = ?`, chordSet).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
