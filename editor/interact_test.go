package editor

import "testing"

// machineEnv wires a store, viewport and machine at a known zoom so tests
// can address cells in content terms.
type machineEnv struct {
	store *Store
	view  *Viewport
	m     *Machine
}

func newMachineEnv(pixelsPerBeat float64) *machineEnv {
	v := &Viewport{
		ScrollX:       0,
		ScrollY:       0, // MIDI 127 on the top row
		PixelsPerBeat: pixelsPerBeat,
		PixelsPerKey:  1,
		Width:         1024,
		Height:        128,
	}
	s := NewStore()
	return &machineEnv{store: s, view: v, m: NewMachine(s, v)}
}

// pt converts a beat and pitch to the screen pixel of that position.
func (e *machineEnv) pt(beat float64, pitch int) (float64, float64) {
	return e.view.GridToScreen(beat, pitch)
}

func (e *machineEnv) drag(fromBeat float64, fromPitch int, toBeat float64, toPitch int, mods Modifiers) {
	x0, y0 := e.pt(fromBeat, fromPitch)
	x1, y1 := e.pt(toBeat, toPitch)
	e.m.MouseDown(x0, y0, mods)
	e.m.MouseMove(x1, y1)
	e.m.MouseUp(x1, y1)
}

func TestCreateNoteByDrag(t *testing.T) {
	e := newMachineEnv(8)

	e.drag(2.1, 60, 3.1, 60, Modifiers{})

	notes := e.store.Notes()
	if len(notes) != 1 {
		t.Fatalf("len(notes) = %d, want 1", len(notes))
	}
	n := notes[0]
	if n.Pitch != 60 {
		t.Errorf("Pitch = %d, want 60", n.Pitch)
	}
	if n.Start != 2.0 {
		t.Errorf("Start = %v, want 2 (snapped)", n.Start)
	}
	if n.End() != 3.0 {
		t.Errorf("End = %v, want 3 (snapped)", n.End())
	}
	if !e.store.IsSelected(n.ID) {
		t.Error("created note not selected")
	}
	if _, ok := e.m.Mode().(DragNone); !ok {
		t.Errorf("mode after mouseup = %T, want DragNone", e.m.Mode())
	}
}

func TestClickWithoutDragCreatesNothing(t *testing.T) {
	e := newMachineEnv(8)

	x, y := e.pt(2, 60)
	e.m.MouseDown(x, y, Modifiers{})
	e.m.MouseUp(x, y)

	if e.store.Len() != 0 {
		t.Errorf("Len = %d, want 0 after click without motion", e.store.Len())
	}
	if e.store.History().CanUndo() {
		t.Error("click without motion recorded a history entry")
	}
}

func TestCreateDragAuditions(t *testing.T) {
	e := newMachineEnv(8)
	var auditioned []int
	e.m.Audition = func(n Note) { auditioned = append(auditioned, n.Pitch) }

	e.drag(0, 60, 1, 60, Modifiers{})

	if len(auditioned) != 1 || auditioned[0] != 60 {
		t.Errorf("auditioned = %v, want [60]", auditioned)
	}
}

func TestMoveNoteSnapsStart(t *testing.T) {
	e := newMachineEnv(8)
	id := addNote(t, e.store, 60, 2, 1)

	// grab mid-note and drag one beat right and two semitones down
	e.drag(2.5, 60, 3.6, 58, Modifiers{})

	n, _ := e.store.NoteByID(id)
	if n.Start != 3.0 {
		t.Errorf("Start = %v, want 3", n.Start)
	}
	if n.Pitch != 58 {
		t.Errorf("Pitch = %d, want 58", n.Pitch)
	}
	if n.Duration != 1 {
		t.Errorf("Duration = %v, want 1 (move preserves length)", n.Duration)
	}
}

func TestMoveClampsAtContentStart(t *testing.T) {
	e := newMachineEnv(8)
	id := addNote(t, e.store, 60, 0.25, 1)

	x0, y0 := e.pt(0.5, 60)
	e.m.MouseDown(x0, y0, Modifiers{})
	e.m.MouseMove(-100, y0)
	e.m.MouseUp(-100, y0)

	n, _ := e.store.NoteByID(id)
	if n.Start != 0 {
		t.Errorf("Start = %v, want 0", n.Start)
	}
}

func TestGroupMovePreservesSpacing(t *testing.T) {
	e := newMachineEnv(8)
	a := addNote(t, e.store, 60, 0, 1)
	b := addNote(t, e.store, 64, 2, 0.5)
	e.store.SelectNotes([]string{a, b}, true)

	// plain click on a selected note keeps the group
	e.drag(0.5, 60, 1.5, 59, Modifiers{})

	na, _ := e.store.NoteByID(a)
	nb, _ := e.store.NoteByID(b)
	if na.Start != 1 || na.Pitch != 59 {
		t.Errorf("a = start %v pitch %d, want 1/59", na.Start, na.Pitch)
	}
	if nb.Start != 3 || nb.Pitch != 63 {
		t.Errorf("b = start %v pitch %d, want 3/63", nb.Start, nb.Pitch)
	}
}

func TestDragCoalescesToOneHistoryEntry(t *testing.T) {
	e := newMachineEnv(8)
	id := addNote(t, e.store, 60, 0, 1)
	depth := e.store.History().UndoDepth()

	x, y := e.pt(0.5, 60)
	e.m.MouseDown(x, y, Modifiers{})
	for i := 1; i <= 10; i++ {
		mx, my := e.pt(0.5+float64(i)*0.25, 60)
		e.m.MouseMove(mx, my)
	}
	lx, ly := e.pt(3.0, 60)
	e.m.MouseUp(lx, ly)

	if got := e.store.History().UndoDepth(); got != depth+1 {
		t.Fatalf("UndoDepth = %d, want %d (one entry per gesture)", got, depth+1)
	}

	e.store.Undo()
	n, _ := e.store.NoteByID(id)
	if n.Start != 0 {
		t.Errorf("Start after undo = %v, want 0", n.Start)
	}
}

func TestDragWithoutNetChangeRecordsNothing(t *testing.T) {
	e := newMachineEnv(8)
	addNote(t, e.store, 60, 0, 1)
	depth := e.store.History().UndoDepth()

	// wiggle within the same snap cell and return
	x, y := e.pt(0.5, 60)
	e.m.MouseDown(x, y, Modifiers{})
	mx, my := e.pt(0.55, 60)
	e.m.MouseMove(mx, my)
	e.m.MouseMove(x, y)
	e.m.MouseUp(x, y)

	if got := e.store.History().UndoDepth(); got != depth {
		t.Errorf("UndoDepth = %d, want %d", got, depth)
	}
}

func TestResizeEndSnapsToCellEdges(t *testing.T) {
	e := newMachineEnv(32)
	e.store.SetGridSnap(SnapHalf)
	id := addNote(t, e.store, 60, 1, 1)

	x, y := e.pt(1.9, 60) // within the edge zone of beat 2 at this zoom
	e.m.MouseDown(x, y, Modifiers{})
	if _, ok := e.m.Mode().(DragResizingEnd); !ok {
		t.Fatalf("mode = %T, want DragResizingEnd", e.m.Mode())
	}

	steps := []struct {
		pointer float64
		wantEnd float64
	}{
		{2.1, 2.5},
		{2.4, 2.5}, // same cell, no churn
		{1.9, 2.0},
		{2.6, 3.0},
	}
	for _, st := range steps {
		mx, my := e.pt(st.pointer, 60)
		e.m.MouseMove(mx, my)
		n, _ := e.store.NoteByID(id)
		if !almostEqual(n.End(), st.wantEnd) {
			t.Errorf("pointer %v: End = %v, want %v", st.pointer, n.End(), st.wantEnd)
		}
	}

	lx, ly := e.pt(2.6, 60)
	e.m.MouseUp(lx, ly)
	n, _ := e.store.NoteByID(id)
	if n.Start != 1 {
		t.Errorf("Start = %v, want 1 (resize end keeps start)", n.Start)
	}
}

func TestResizeStartClampsToMinimumLength(t *testing.T) {
	e := newMachineEnv(32)
	e.store.SetGridSnap(SnapHalf)
	id := addNote(t, e.store, 60, 1, 2)

	x, y := e.pt(1.05, 60)
	e.m.MouseDown(x, y, Modifiers{})
	if _, ok := e.m.Mode().(DragResizingStart); !ok {
		t.Fatalf("mode = %T, want DragResizingStart", e.m.Mode())
	}

	mx, my := e.pt(0.6, 60)
	e.m.MouseMove(mx, my)
	n, _ := e.store.NoteByID(id)
	if n.Start != 0.5 || !almostEqual(n.End(), 3) {
		t.Errorf("after shrink from left: [%v,%v), want [0.5,3)", n.Start, n.End())
	}

	// dragging past the right edge pins the note at one grid unit
	mx, my = e.pt(2.9, 60)
	e.m.MouseMove(mx, my)
	n, _ = e.store.NoteByID(id)
	if n.Start != 2.5 || !almostEqual(n.Duration, 0.5) {
		t.Errorf("after over-shrink: start %v dur %v, want 2.5/0.5", n.Start, n.Duration)
	}

	e.m.MouseUp(mx, my)
}

func TestNarrowNoteAlwaysMoves(t *testing.T) {
	e := newMachineEnv(8) // one beat is 8px, inside both edge zones
	id := addNote(t, e.store, 60, 2, 1)

	x, y := e.pt(2.05, 60) // on the left edge
	e.m.MouseDown(x, y, Modifiers{})
	if _, ok := e.m.Mode().(DragMoving); !ok {
		t.Errorf("mode = %T, want DragMoving for a narrow note", e.m.Mode())
	}
	e.m.MouseUp(x, y)

	n, _ := e.store.NoteByID(id)
	if n.Start != 2 || n.Duration != 1 {
		t.Errorf("narrow note changed: [%v,+%v)", n.Start, n.Duration)
	}
}

func TestShiftClickAddsToSelection(t *testing.T) {
	e := newMachineEnv(8)
	a := addNote(t, e.store, 60, 0, 1)
	b := addNote(t, e.store, 64, 2, 1)
	e.store.SelectNotes([]string{a}, true)

	x, y := e.pt(2.5, 64)
	e.m.MouseDown(x, y, Modifiers{Shift: true})
	e.m.MouseUp(x, y)

	if !e.store.IsSelected(a) || !e.store.IsSelected(b) {
		t.Errorf("selection = %v, want both notes", e.store.Selection())
	}
}

func TestClickUnselectedNoteSelectsExclusively(t *testing.T) {
	e := newMachineEnv(8)
	a := addNote(t, e.store, 60, 0, 1)
	b := addNote(t, e.store, 64, 2, 1)
	e.store.SelectNotes([]string{a}, true)

	x, y := e.pt(2.5, 64)
	e.m.MouseDown(x, y, Modifiers{})
	e.m.MouseUp(x, y)

	if e.store.IsSelected(a) {
		t.Error("previous selection survived a plain click elsewhere")
	}
	if !e.store.IsSelected(b) {
		t.Error("clicked note not selected")
	}
}

func TestBoxSelectPicksOverlappingNotes(t *testing.T) {
	e := newMachineEnv(8)
	inLow := addNote(t, e.store, 60, 0, 1)
	inHigh := addNote(t, e.store, 62, 2, 1)
	outside := addNote(t, e.store, 50, 0, 1)

	// shift-drag a rectangle over pitches 59..63, beats 0..4
	x0, y0 := e.pt(4, 63)
	x1, y1 := e.pt(0, 59)
	e.m.MouseDown(x0, y0, Modifiers{Shift: true})
	if _, ok := e.m.Mode().(DragBoxSelect); !ok {
		t.Fatalf("mode = %T, want DragBoxSelect", e.m.Mode())
	}
	e.m.MouseMove(x1, y1)
	e.m.MouseUp(x1, y1)

	if !e.store.IsSelected(inLow) || !e.store.IsSelected(inHigh) {
		t.Errorf("selection = %v, want both in-box notes", e.store.Selection())
	}
	if e.store.IsSelected(outside) {
		t.Error("note outside the box selected")
	}
}

func TestDuplicateDragClonesSelection(t *testing.T) {
	e := newMachineEnv(8)
	a := addNote(t, e.store, 60, 0, 1)
	e.store.SelectNotes([]string{a}, true)

	e.drag(0.5, 60, 1.5, 60, Modifiers{Duplicate: true})

	if e.store.Len() != 2 {
		t.Fatalf("Len = %d, want 2", e.store.Len())
	}
	orig, _ := e.store.NoteByID(a)
	if orig.Start != 0 {
		t.Errorf("original moved to %v, want 0", orig.Start)
	}

	var clone Note
	for _, n := range e.store.Notes() {
		if n.ID != a {
			clone = n
		}
	}
	if clone.Start != 1 || clone.Pitch != 60 {
		t.Errorf("clone = [%v) pitch %d, want start 1 pitch 60", clone.Start, clone.Pitch)
	}
	if e.store.IsSelected(a) {
		t.Error("original still selected after duplicate drag")
	}
	if !e.store.IsSelected(clone.ID) {
		t.Error("clone not selected")
	}
}
