package editor

import "math"

// DefaultEdgeThreshold is the pixel distance from a note edge within which
// a mousedown starts a resize instead of a move.
const DefaultEdgeThreshold = 8.0

// Modifiers are the keyboard modifiers held during a pointer event.
type Modifiers struct {
	Shift     bool // add to selection / box select
	Duplicate bool // clone selection at drag start
}

// DragMode is the transient interaction state between mousedown and
// mouseup. Exactly one variant is active at a time; every transition point
// switches exhaustively over the variants.
type DragMode interface {
	dragMode()
}

type DragNone struct{}

type DragCreating struct {
	StartBeat   float64
	Pitch       int
	CurrentBeat float64
	Moved       bool
}

type DragMoving struct {
	NoteID     string
	GrabOffset float64 // pointer beat minus note start at mousedown
	GrabPitch  int
}

type DragResizingStart struct {
	NoteID       string
	OrigStart    float64
	OrigDuration float64
}

type DragResizingEnd struct {
	NoteID       string
	OrigStart    float64
	OrigDuration float64
}

type DragBoxSelect struct {
	StartX, StartY     float64
	CurrentX, CurrentY float64
}

func (DragNone) dragMode()          {}
func (DragCreating) dragMode()      {}
func (DragMoving) dragMode()        {}
func (DragResizingStart) dragMode() {}
func (DragResizingEnd) dragMode()   {}
func (DragBoxSelect) dragMode()     {}

// Machine disambiguates create/move/resize/box-select/duplicate from pointer
// events and drives all resulting note mutations through the store. All
// work happens synchronously inside the event that triggered it.
type Machine struct {
	store *Store
	view  *Viewport

	// EdgeThreshold is the resize hot zone in pixels from a note edge.
	EdgeThreshold float64

	// Audition, when set, is called with a freshly created or grabbed note
	// so the UI can echo it to a MIDI output.
	Audition func(Note)

	mode       DragMode
	dragStart  map[string]Note // note state at drag begin, keyed by id
	dragActive bool            // StartDrag has been issued for this gesture
}

// NewMachine creates an interaction machine operating on the given store
// and viewport. The viewport pointer is shared with the UI so pans and
// zooms between events are picked up automatically.
func NewMachine(store *Store, view *Viewport) *Machine {
	return &Machine{
		store:         store,
		view:          view,
		EdgeThreshold: DefaultEdgeThreshold,
		mode:          DragNone{},
	}
}

// Mode returns the current drag mode for rendering ghost notes and the
// box-select rectangle.
func (m *Machine) Mode() DragMode {
	return m.mode
}

// hitTest finds the first note in insertion order containing the pointer.
func (m *Machine) hitTest(beat float64, pitch int) (Note, bool) {
	for _, n := range m.store.Notes() {
		if n.Pitch == pitch && beat >= n.Start && beat < n.End() {
			return n, true
		}
	}
	return Note{}, false
}

// MouseDown begins a gesture. The mode chosen here decides what every
// following MouseMove does until MouseUp commits.
func (m *Machine) MouseDown(px, py float64, mods Modifiers) {
	beat, pitch := m.view.ScreenToGrid(px, py)
	unit := m.store.GridSnap().Value()

	n, ok := m.hitTest(beat, pitch)
	if !ok {
		if mods.Shift {
			m.mode = DragBoxSelect{StartX: px, StartY: py, CurrentX: px, CurrentY: py}
			return
		}
		m.store.DeselectAll()
		start := SnapNearest(beat, unit)
		m.mode = DragCreating{StartBeat: start, Pitch: pitch, CurrentBeat: start + unit}
		return
	}

	leftX, _ := m.view.GridToScreen(n.Start, n.Pitch)
	rightX, _ := m.view.GridToScreen(n.End(), n.Pitch)

	// Narrow notes always move; otherwise the edge zones would swallow the
	// whole body.
	wide := rightX-leftX > 2*m.EdgeThreshold
	switch {
	case wide && px-leftX <= m.EdgeThreshold:
		m.mode = DragResizingStart{NoteID: n.ID, OrigStart: n.Start, OrigDuration: n.Duration}
		m.dragStart = map[string]Note{n.ID: n}
	case wide && rightX-px <= m.EdgeThreshold:
		m.mode = DragResizingEnd{NoteID: n.ID, OrigStart: n.Start, OrigDuration: n.Duration}
		m.dragStart = map[string]Note{n.ID: n}
	default:
		target := n
		switch {
		case mods.Duplicate && m.store.IsSelected(n.ID):
			target = m.duplicateSelection(n)
		case mods.Shift:
			m.store.SelectNotes([]string{n.ID}, false)
		case !m.store.IsSelected(n.ID):
			m.store.SelectNotes([]string{n.ID}, true)
		}
		// a plain click on an already-selected note keeps the whole
		// multi-selection for a group move

		m.dragStart = make(map[string]Note)
		for _, sel := range m.store.SelectedNotes() {
			m.dragStart[sel.ID] = sel
		}
		m.mode = DragMoving{NoteID: target.ID, GrabOffset: beat - target.Start, GrabPitch: pitch}
		if m.Audition != nil {
			m.Audition(target)
		}
	}
}

// duplicateSelection clones every selected note, selects the clones and
// returns the clone of the grabbed note. Each clone records its own
// AddNoteEntry; the move that follows coalesces as usual.
func (m *Machine) duplicateSelection(grabbed Note) Note {
	var cloneIDs []string
	target := grabbed
	for _, sel := range m.store.SelectedNotes() {
		clone := sel
		clone.ID = NewNoteID()
		m.store.AddNote(clone)
		cloneIDs = append(cloneIDs, clone.ID)
		if sel.ID == grabbed.ID {
			target = clone
		}
	}
	m.store.SelectNotes(cloneIDs, true)
	return target
}

// beginDrag issues StartDrag once per gesture, on the first move after
// mousedown, so intermediate mutations skip the history.
func (m *Machine) beginDrag() {
	if !m.dragActive {
		m.store.History().StartDrag()
		m.dragActive = true
	}
}

// MouseMove advances the active gesture.
func (m *Machine) MouseMove(px, py float64) {
	beat, pitch := m.view.ScreenToGrid(px, py)
	unit := m.store.GridSnap().Value()

	switch mode := m.mode.(type) {
	case DragNone:

	case DragCreating:
		end := math.Max(mode.StartBeat+unit, SnapNearest(beat, unit))
		m.mode = DragCreating{
			StartBeat:   mode.StartBeat,
			Pitch:       mode.Pitch,
			CurrentBeat: end,
			Moved:       true,
		}

	case DragMoving:
		orig, ok := m.dragStart[mode.NoteID]
		if !ok {
			return
		}
		m.beginDrag()
		newStart := SnapNearest(beat-mode.GrabOffset, unit)
		deltaBeat := newStart - orig.Start
		deltaPitch := pitch - mode.GrabPitch
		for id, before := range m.dragStart {
			start := math.Max(0, before.Start+deltaBeat)
			p := ClampPitch(before.Pitch + deltaPitch)
			m.store.UpdateNote(id, func(n *Note) {
				n.Start = start
				n.Pitch = p
			})
		}

	case DragResizingStart:
		m.beginDrag()
		origEnd := mode.OrigStart + mode.OrigDuration
		newStart := SnapNearest(beat, unit)
		if newStart > origEnd-unit {
			newStart = origEnd - unit
		}
		if newStart < 0 {
			newStart = 0
		}
		dur := origEnd - newStart
		if dur < unit {
			return
		}
		m.store.UpdateNote(mode.NoteID, func(n *Note) {
			n.Start = newStart
			n.Duration = dur
		})

	case DragResizingEnd:
		m.beginDrag()
		end := CellEnd(beat, unit)
		dur := math.Max(unit, end-mode.OrigStart)
		m.store.UpdateNote(mode.NoteID, func(n *Note) {
			n.Duration = dur
		})

	case DragBoxSelect:
		mode.CurrentX, mode.CurrentY = px, py
		m.mode = mode
	}
}

// MouseUp commits the gesture and always returns to DragNone.
func (m *Machine) MouseUp(px, py float64) {
	switch mode := m.mode.(type) {
	case DragNone:

	case DragCreating:
		unit := m.store.GridSnap().Value()
		dur := mode.CurrentBeat - mode.StartBeat
		// a plain click with no drag creates nothing
		if mode.Moved && dur >= unit {
			id := m.store.AddNote(Note{
				Pitch:    mode.Pitch,
				Start:    mode.StartBeat,
				Duration: dur,
				Velocity: DefaultVelocity,
			})
			m.store.SelectNotes([]string{id}, true)
			if m.Audition != nil {
				if n, ok := m.store.NoteByID(id); ok {
					m.Audition(n)
				}
			}
		}

	case DragMoving, DragResizingStart, DragResizingEnd:
		m.finishDrag()

	case DragBoxSelect:
		m.selectInBox(mode)
	}

	m.mode = DragNone{}
	m.dragStart = nil
	m.dragActive = false
}

// finishDrag closes drag coalescing and pushes exactly one UpdateNotesEntry
// spanning drag start to final state for every note that actually moved.
func (m *Machine) finishDrag() {
	if !m.dragActive {
		return
	}
	m.store.History().EndDrag()

	var updates []NoteChange
	for _, id := range m.store.Selection() {
		before, ok := m.dragStart[id]
		if !ok {
			continue
		}
		after, ok := m.store.NoteByID(id)
		if !ok {
			continue
		}
		if before != after {
			updates = append(updates, NoteChange{ID: id, Before: before, After: after})
		}
	}
	// resizes operate outside the selection, cover those too
	for id, before := range m.dragStart {
		if m.store.IsSelected(id) {
			continue
		}
		after, ok := m.store.NoteByID(id)
		if !ok {
			continue
		}
		if before != after {
			updates = append(updates, NoteChange{ID: id, Before: before, After: after})
		}
	}
	if len(updates) > 0 {
		m.store.History().Push(UpdateNotesEntry{Updates: updates})
	}
}

// selectInBox converts the screen rectangle to content bounds and makes an
// exclusive selection of every note overlapping it.
func (m *Machine) selectInBox(box DragBoxSelect) {
	minX := math.Min(box.StartX, box.CurrentX)
	maxX := math.Max(box.StartX, box.CurrentX)
	minY := math.Min(box.StartY, box.CurrentY)
	maxY := math.Max(box.StartY, box.CurrentY)

	minBeat, maxPitch := m.view.ScreenToGrid(minX, minY)
	maxBeat, minPitch := m.view.ScreenToGrid(maxX, maxY)

	var ids []string
	for _, n := range m.store.Notes() {
		if n.Start < maxBeat && n.End() > minBeat &&
			n.Pitch >= minPitch && n.Pitch <= maxPitch {
			ids = append(ids, n.ID)
		}
	}
	m.store.SelectNotes(ids, true)
}
