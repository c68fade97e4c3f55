package editor

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// ClipEntry is one copied note, with its start stored relative to the
// earliest note in the copied selection.
type ClipEntry struct {
	RelativeStart float64
	Pitch         int
	Duration      float64
	Velocity      int
}

// Clipboard snapshots a selection on copy and re-anchors it to the playhead
// on paste. The buffer outlives selection changes and is never persisted.
type Clipboard struct {
	entries []ClipEntry

	// mirror writes a text rendering of the buffer to the system clipboard.
	// Best effort; failures are ignored.
	mirror func(string) error
}

func NewClipboard() *Clipboard {
	c := &Clipboard{}
	if !clipboard.Unsupported {
		c.mirror = clipboard.WriteAll
	}
	return c
}

func (c *Clipboard) IsEmpty() bool {
	return len(c.entries) == 0
}

// Copy snapshots the selected notes. An empty selection leaves the buffer
// unchanged. Returns the number of notes copied.
func (c *Clipboard) Copy(s *Store) int {
	sel := s.SelectedNotes()
	if len(sel) == 0 {
		return 0
	}
	minStart := sel[0].Start
	for _, n := range sel[1:] {
		if n.Start < minStart {
			minStart = n.Start
		}
	}
	entries := make([]ClipEntry, len(sel))
	for i, n := range sel {
		entries[i] = ClipEntry{
			RelativeStart: n.Start - minStart,
			Pitch:         n.Pitch,
			Duration:      n.Duration,
			Velocity:      n.Velocity,
		}
	}
	c.entries = entries

	if c.mirror != nil {
		_ = c.mirror(c.text())
	}
	return len(entries)
}

// Paste creates a copy of the buffer anchored at the playhead, snapped with
// the same rounding as note creation. Each pasted note records its own
// AddNote history entry. The pasted notes become the exclusive selection;
// overlap with existing notes is permitted. Returns the new ids.
func (c *Clipboard) Paste(s *Store, playheadBeat float64) []string {
	if len(c.entries) == 0 {
		return nil
	}
	anchor := SnapNearest(playheadBeat, s.GridSnap().Value())
	ids := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		id := s.AddNote(Note{
			Pitch:    e.Pitch,
			Start:    anchor + e.RelativeStart,
			Duration: e.Duration,
			Velocity: e.Velocity,
		})
		ids = append(ids, id)
	}
	s.SelectNotes(ids, true)
	return ids
}

// text renders the buffer one note per line for pasting outside the app.
func (c *Clipboard) text() string {
	var b strings.Builder
	for _, e := range c.entries {
		fmt.Fprintf(&b, "%s +%.4f %.4f v%d\n", PitchName(e.Pitch), e.RelativeStart, e.Duration, e.Velocity)
	}
	return b.String()
}
