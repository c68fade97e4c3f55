package editor

import (
	"fmt"

	"github.com/google/uuid"
)

// Pitch range covers the full MIDI note span
const (
	MinPitch   = 0
	MaxPitch   = 127
	PitchRange = MaxPitch - MinPitch + 1

	DefaultVelocity = 100
)

// Note is a single timed note on the grid. Start and Duration are in beats.
// IDs are stable for the lifetime of a note and never reused.
type Note struct {
	ID       string  `json:"id"`
	Pitch    int     `json:"pitch"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Velocity int     `json:"velocity"`
}

// End returns the beat where the note stops sounding.
func (n Note) End() float64 {
	return n.Start + n.Duration
}

// NewNoteID generates a fresh note id.
func NewNoteID() string {
	return uuid.NewString()
}

func ClampPitch(p int) int {
	if p < MinPitch {
		return MinPitch
	}
	if p > MaxPitch {
		return MaxPitch
	}
	return p
}

func ClampVelocity(v int) int {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return v
}

// GridSnap selects the quantization unit for note placement and resizing.
type GridSnap int

const (
	SnapBeat GridSnap = iota
	SnapHalf
	SnapQuarter
	SnapQuarterTriplet
	SnapEighth
	SnapEighthTriplet
	SnapSixteenth
	SnapSixteenthTriplet
)

var gridSnapValues = []float64{
	1.0,      // whole beat
	0.5,      // 1/2
	0.25,     // 1/4
	1.0 / 6,  // 1/4 triplet
	0.125,    // 1/8
	1.0 / 12, // 1/8 triplet
	0.0625,   // 1/16
	1.0 / 24, // 1/16 triplet
}

var gridSnapNames = []string{"1", "1/2", "1/4", "1/4T", "1/8", "1/8T", "1/16", "1/16T"}

// Value returns the snap unit in beats.
func (g GridSnap) Value() float64 {
	if g < 0 || int(g) >= len(gridSnapValues) {
		return gridSnapValues[SnapQuarter]
	}
	return gridSnapValues[g]
}

func (g GridSnap) String() string {
	if g < 0 || int(g) >= len(gridSnapNames) {
		return gridSnapNames[SnapQuarter]
	}
	return gridSnapNames[g]
}

// Next cycles to the following snap setting, wrapping around.
func (g GridSnap) Next() GridSnap {
	return GridSnap((int(g) + 1) % len(gridSnapValues))
}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchName formats a pitch as a note name with octave, e.g. "C4".
func PitchName(pitch int) string {
	pitch = ClampPitch(pitch)
	return fmt.Sprintf("%s%d", noteNames[pitch%12], pitch/12)
}
