// Package models defines shared value types for the chord library.
package models

import "time"

// LibraryFile is a lightweight description of a chord-set document on disk.
type LibraryFile struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
