package editor

import (
	"math"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func testViewport() Viewport {
	return Viewport{
		ScrollX:       0,
		ScrollY:       MaxPitch - 72,
		PixelsPerBeat: 8,
		PixelsPerKey:  1,
		Width:         80,
		Height:        20,
	}
}

func TestScreenToGridRoundTrip(t *testing.T) {
	v := testViewport()
	v.ScrollX = 2.5
	v.ScrollY = 40

	tests := []struct {
		name  string
		beat  float64
		pitch int
	}{
		{"origin", 2.5, MaxPitch - 40},
		{"mid grid", 5.0, 60},
		{"fractional beat", 3.125, 72},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			px, py := v.GridToScreen(tt.beat, tt.pitch)
			beat, pitch := v.ScreenToGrid(px, py)
			if !almostEqual(beat, tt.beat) {
				t.Errorf("beat = %v, want %v", beat, tt.beat)
			}
			if pitch != tt.pitch {
				t.Errorf("pitch = %d, want %d", pitch, tt.pitch)
			}
		})
	}
}

func TestScreenToGridClamps(t *testing.T) {
	v := testViewport()

	beat, _ := v.ScreenToGrid(-100, 0)
	if beat != 0 {
		t.Errorf("beat left of content = %v, want 0", beat)
	}

	_, pitch := v.ScreenToGrid(0, 1e6)
	if pitch != MinPitch {
		t.Errorf("pitch below content = %d, want %d", pitch, MinPitch)
	}

	v.ScrollY = 0
	_, pitch = v.ScreenToGrid(0, -1e6)
	if pitch != MaxPitch {
		t.Errorf("pitch above content = %d, want %d", pitch, MaxPitch)
	}
}

func TestUnmeasuredViewportDoesNotPanic(t *testing.T) {
	var v Viewport // zero scale

	beat, _ := v.ScreenToGrid(42, 42)
	if beat != 0 {
		t.Errorf("beat = %v, want 0", beat)
	}
	px, py := v.GridToScreen(4, 60)
	if px != 0 || py != 0 {
		t.Errorf("GridToScreen = %v,%v, want 0,0", px, py)
	}
	if got := v.Pan(10, 10); got != v {
		t.Errorf("Pan changed an unmeasured viewport")
	}
	if got := v.ZoomAtX(2, 10); got != v {
		t.Errorf("ZoomAtX changed an unmeasured viewport")
	}
}

func TestZoomAtXKeepsFocusStationary(t *testing.T) {
	tests := []struct {
		name   string
		factor float64
		focus  float64
	}{
		{"zoom in at left", 2.0, 0},
		{"zoom in at middle", 2.0, 40},
		{"zoom out at middle", 0.5, 40},
		{"zoom in at right", 1.25, 79},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// far enough in that scroll clamping cannot kick in
			v := testViewport()
			v.ScrollX = 8

			beatBefore, _ := v.ScreenToGrid(tt.focus, 0)
			z := v.ZoomAtX(tt.factor, tt.focus)
			beatAfter, _ := z.ScreenToGrid(tt.focus, 0)

			if !almostEqual(beatBefore, beatAfter) {
				t.Errorf("beat under focus moved: %v -> %v", beatBefore, beatAfter)
			}
		})
	}
}

func TestZoomAtXClampsScale(t *testing.T) {
	v := testViewport()

	z := v.ZoomAtX(1000, 0)
	if z.PixelsPerBeat != MaxPixelsPerBeat {
		t.Errorf("PixelsPerBeat = %v, want %v", z.PixelsPerBeat, MaxPixelsPerBeat)
	}

	z = v.ZoomAtX(0.0001, 0)
	if z.PixelsPerBeat != MinPixelsPerBeat {
		t.Errorf("PixelsPerBeat = %v, want %v", z.PixelsPerBeat, MinPixelsPerBeat)
	}
}

func TestPanClampsToContent(t *testing.T) {
	v := testViewport()

	p := v.Pan(-1e6, 0)
	if p.ScrollX != 0 {
		t.Errorf("ScrollX = %v, want 0", p.ScrollX)
	}

	p = v.Pan(0, -1e6)
	if p.ScrollY != 0 {
		t.Errorf("ScrollY = %v, want 0", p.ScrollY)
	}

	p = v.Pan(0, 1e6)
	want := PitchRange - v.VisibleRows()
	if p.ScrollY != want {
		t.Errorf("ScrollY = %v, want %v", p.ScrollY, want)
	}
}

func TestSnapNearest(t *testing.T) {
	tests := []struct {
		name string
		beat float64
		unit float64
		want float64
	}{
		{"exact boundary", 2.0, 0.25, 2.0},
		{"rounds down", 2.1, 0.25, 2.0},
		{"rounds up", 2.2, 0.25, 2.25},
		{"negative clamps to zero", -0.3, 0.25, 0},
		{"zero unit passes through", 2.37, 0, 2.37},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SnapNearest(tt.beat, tt.unit); !almostEqual(got, tt.want) {
				t.Errorf("SnapNearest(%v, %v) = %v, want %v", tt.beat, tt.unit, got, tt.want)
			}
		})
	}
}

func TestSnapDown(t *testing.T) {
	tests := []struct {
		beat, unit, want float64
	}{
		{2.9, 1, 2},
		{2.0, 1, 2},
		{0.24, 0.25, 0},
	}

	for _, tt := range tests {
		if got := SnapDown(tt.beat, tt.unit); !almostEqual(got, tt.want) {
			t.Errorf("SnapDown(%v, %v) = %v, want %v", tt.beat, tt.unit, got, tt.want)
		}
	}
}

// Resize-end snapping is cell based: any pointer position inside a grid cell
// yields that cell's right edge.
func TestCellEnd(t *testing.T) {
	tests := []struct {
		name string
		beat float64
		unit float64
		want float64
	}{
		{"inside cell", 2.1, 0.5, 2.5},
		{"same cell further right", 2.4, 0.5, 2.5},
		{"previous cell", 1.9, 0.5, 2.0},
		{"next cell", 2.6, 0.5, 3.0},
		{"on boundary", 2.0, 0.5, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CellEnd(tt.beat, tt.unit); !almostEqual(got, tt.want) {
				t.Errorf("CellEnd(%v, %v) = %v, want %v", tt.beat, tt.unit, got, tt.want)
			}
		})
	}
}
