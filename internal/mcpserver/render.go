package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/fretwise/internal/theory"
)

// Render draws board as fixed-width text: one line per string labelled with
// its open note, chord tones spelled out and other frets shown as dashes,
// followed by a line of inlay markers.
func Render(board *theory.Board) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s\n", board.Root, board.Chord, strings.Join(board.Notes, " "))

	b.WriteString("   ")
	for f := 0; f <= theory.MaxFret; f++ {
		fmt.Fprintf(&b, "%-4d", f)
	}
	b.WriteString("\n")

	for _, row := range board.Rows {
		fmt.Fprintf(&b, "%-2s|", row[0].Name)
		for _, c := range row {
			label := "--"
			if c.ChordTone {
				label = c.Name
			}
			fmt.Fprintf(&b, "%-3s|", label)
		}
		b.WriteString("\n")
	}

	if len(board.Rows) > 0 {
		b.WriteString("   ")
		for _, c := range board.Rows[0] {
			fmt.Fprintf(&b, "%-4s", strings.Repeat("*", c.Marker))
		}
	}
	return strings.TrimRight(b.String(), " ") + "\n"
}
