package editor

import "math"

// Zoom bounds for the viewport scale factors
const (
	MinPixelsPerBeat = 1.0
	MaxPixelsPerBeat = 64.0
	MinPixelsPerKey  = 1.0
	MaxPixelsPerKey  = 16.0
)

// Viewport maps continuous (beat, pitch) content coordinates to screen
// pixels. ScrollX is the beat at the left edge, ScrollY the number of
// semitone rows scrolled down from MaxPitch. Width and Height are the
// visible size in pixels, set from layout measurement and never persisted.
type Viewport struct {
	ScrollX       float64 `json:"scrollX"`
	ScrollY       int     `json:"scrollY"`
	PixelsPerBeat float64 `json:"pixelsPerBeat"`
	PixelsPerKey  float64 `json:"pixelsPerKey"`

	Width  float64 `json:"-"`
	Height float64 `json:"-"`
}

// DefaultViewport starts centered around middle C at a mid zoom level.
func DefaultViewport() Viewport {
	return Viewport{
		ScrollX:       0,
		ScrollY:       MaxPitch - 72, // C5 on the top row
		PixelsPerBeat: 8,
		PixelsPerKey:  1,
	}
}

// measured reports whether the viewport has a usable scale. An unmeasured
// viewport degrades every mapping to the content origin rather than
// dividing by zero.
func (v Viewport) measured() bool {
	return v.PixelsPerBeat > 0 && v.PixelsPerKey > 0
}

// TopPitch returns the pitch of the topmost visible row.
func (v Viewport) TopPitch() int {
	return MaxPitch - v.ScrollY
}

// VisibleRows returns how many semitone rows fit in the viewport height.
func (v Viewport) VisibleRows() int {
	if !v.measured() || v.Height <= 0 {
		return 0
	}
	return int(v.Height / v.PixelsPerKey)
}

// ScreenToGrid converts a screen pixel position to a beat and pitch.
// The beat is clamped to >= 0 and the pitch to the valid range.
func (v Viewport) ScreenToGrid(px, py float64) (beat float64, pitch int) {
	if !v.measured() {
		return 0, ClampPitch(v.TopPitch())
	}
	beat = math.Max(0, px/v.PixelsPerBeat+v.ScrollX)
	pitch = ClampPitch(v.TopPitch() - int(math.Floor(py/v.PixelsPerKey)))
	return beat, pitch
}

// GridToScreen converts a beat and pitch to the top-left screen pixel of
// that pitch row. Exact inverse of ScreenToGrid for in-range values.
func (v Viewport) GridToScreen(beat float64, pitch int) (px, py float64) {
	if !v.measured() {
		return 0, 0
	}
	px = (beat - v.ScrollX) * v.PixelsPerBeat
	py = float64(v.TopPitch()-pitch) * v.PixelsPerKey
	return px, py
}

// Pan scrolls the viewport by a pixel delta, clamped to content bounds.
func (v Viewport) Pan(dx, dy float64) Viewport {
	if !v.measured() {
		return v
	}
	v.ScrollX += dx / v.PixelsPerBeat
	v.ScrollY += int(math.Round(dy / v.PixelsPerKey))
	return v.clamped()
}

// ZoomAtX changes the horizontal zoom by factor keeping the beat under
// focusPx stationary on screen.
func (v Viewport) ZoomAtX(factor, focusPx float64) Viewport {
	if !v.measured() {
		return v
	}
	old := v.PixelsPerBeat
	v.PixelsPerBeat = clampFloat(old*factor, MinPixelsPerBeat, MaxPixelsPerBeat)
	// keep focusPx/oldScale + oldScroll == focusPx/newScale + newScroll
	v.ScrollX = focusPx/old + v.ScrollX - focusPx/v.PixelsPerBeat
	return v.clamped()
}

// ZoomAtY changes the vertical zoom by factor keeping the pitch row under
// focusPy stationary on screen.
func (v Viewport) ZoomAtY(factor, focusPy float64) Viewport {
	if !v.measured() {
		return v
	}
	old := v.PixelsPerKey
	v.PixelsPerKey = clampFloat(old*factor, MinPixelsPerKey, MaxPixelsPerKey)
	v.ScrollY += int(math.Round(focusPy/old - focusPy/v.PixelsPerKey))
	return v.clamped()
}

func (v Viewport) clamped() Viewport {
	if v.ScrollX < 0 {
		v.ScrollX = 0
	}
	maxScrollY := PitchRange - v.VisibleRows()
	if maxScrollY < 0 {
		maxScrollY = 0
	}
	if v.ScrollY > maxScrollY {
		v.ScrollY = maxScrollY
	}
	if v.ScrollY < 0 {
		v.ScrollY = 0
	}
	return v
}

func clampFloat(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

// SnapNearest rounds a beat to the nearest grid boundary. Used for note
// creation and for anchoring a paste at the playhead.
func SnapNearest(beat, unit float64) float64 {
	if unit <= 0 {
		return math.Max(0, beat)
	}
	return math.Max(0, math.Round(beat/unit)*unit)
}

// SnapDown floors a beat to the grid boundary at or before it.
func SnapDown(beat, unit float64) float64 {
	if unit <= 0 {
		return math.Max(0, beat)
	}
	return math.Max(0, math.Floor(beat/unit)*unit)
}

// CellEnd returns the right edge of the grid cell containing beat. Dragging
// anywhere inside cell k yields (k+1)*unit, so motion within one cell is
// stable and crossing a cell boundary moves the result by a full unit.
func CellEnd(beat, unit float64) float64 {
	if unit <= 0 {
		return beat
	}
	return (math.Floor(beat/unit) + 1) * unit
}
