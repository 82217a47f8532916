// Package quiz runs chord rounds: it draws random targets, tracks the
// Selecting/Correct state machine and keeps live sessions in memory.
package quiz

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/starford/fretwise/internal/theory"
)

// Entropy returns a uniformly distributed integer in [0, n).
type Entropy func(n int) int

// NewEntropy returns an Entropy backed by a PCG generator seeded from crypto/rand.
func NewEntropy() (Entropy, error) {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	rng := rand.New(rand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])))
	return rng.IntN, nil
}

// SeededEntropy returns a deterministic Entropy for a fixed seed.
func SeededEntropy(seed uint64) Entropy {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)).IntN
}

// Round is one quiz target.
type Round struct {
	Root  theory.PitchClass `json:"root"`
	Chord string            `json:"chord"`
}

// Randomizer draws rounds from a chord set.
type Randomizer struct {
	names   []string
	entropy Entropy
}

// NewRandomizer returns a randomizer over the chord types of set.
func NewRandomizer(set *theory.ChordSet, entropy Entropy) *Randomizer {
	return &Randomizer{names: set.Names(), entropy: entropy}
}

// Next draws a root uniformly from the twelve pitch classes and a chord type
// uniformly from the set, independently and with replacement.
func (r *Randomizer) Next() Round {
	root := theory.PitchClass(r.draw(theory.Count))
	name := r.names[r.draw(len(r.names))]
	return Round{Root: root, Chord: name}
}

// draw clamps misbehaving entropy sources into range.
func (r *Randomizer) draw(n int) int {
	v := r.entropy(n) % n
	if v < 0 {
		v += n
	}
	return v
}
