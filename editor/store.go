package editor

import "sync"

// Store owns the canonical note collection, the current selection and the
// grid-snap setting. Every mutation is reported to the history unless a
// suppression flag is set, and every mutation fires a coalesced change
// notification for the UI.
//
// The collection keeps insertion order so iteration is deterministic; the
// order carries no musical meaning.
type Store struct {
	mu        sync.RWMutex // RWMutex for concurrent reads from the playback goroutine
	notes     map[string]*Note
	order     []string
	selection map[string]struct{}
	gridSnap  GridSnap
	history   *History

	changes chan struct{}
}

func NewStore() *Store {
	return &Store{
		notes:     make(map[string]*Note),
		selection: make(map[string]struct{}),
		gridSnap:  SnapQuarter,
		history:   NewHistory(),
		changes:   make(chan struct{}, 1),
	}
}

// Changed delivers a signal after any mutation. Signals are coalesced: a
// burst of mutations may produce a single receive.
func (s *Store) Changed() <-chan struct{} {
	return s.changes
}

func (s *Store) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// History exposes the undo/redo engine observing this store.
func (s *Store) History() *History {
	return s.history
}

func (s *Store) Undo() { s.history.Undo(s) }
func (s *Store) Redo() { s.history.Redo(s) }

func (s *Store) GridSnap() GridSnap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gridSnap
}

func (s *Store) SetGridSnap(g GridSnap) {
	s.mu.Lock()
	s.gridSnap = g
	s.mu.Unlock()
	s.notify()
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Notes returns copies of all notes in insertion order.
func (s *Store) Notes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Note, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.notes[id])
	}
	return out
}

// NoteByID returns a copy of the note with the given id.
func (s *Store) NoteByID(id string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notes[id]
	if !ok {
		return Note{}, false
	}
	return *n, true
}

// AddNote appends a note, assigning a fresh id when the note has none.
// Out-of-range fields are clamped, never rejected. Returns the note's id.
// The caller selects explicitly; adding has no selection side effect.
func (s *Store) AddNote(n Note) string {
	s.mu.Lock()
	if n.ID == "" {
		n.ID = NewNoteID()
	}
	n.Pitch = ClampPitch(n.Pitch)
	n.Velocity = ClampVelocity(n.Velocity)
	if n.Start < 0 {
		n.Start = 0
	}
	if n.Duration <= 0 {
		n.Duration = s.gridSnap.Value()
	}
	if _, exists := s.notes[n.ID]; !exists {
		s.order = append(s.order, n.ID)
	}
	s.notes[n.ID] = &n
	s.mu.Unlock()

	s.history.Push(AddNoteEntry{Note: n})
	s.notify()
	return n.ID
}

// UpdateNote applies mutate to the note with the given id, clamping the
// result. Unknown ids are silent no-ops. A single-element UpdateNotesEntry
// is recorded unless history is suppressed (mid-drag moves push one
// coalesced entry at drag end instead).
func (s *Store) UpdateNote(id string, mutate func(*Note)) (NoteChange, bool) {
	s.mu.Lock()
	n, ok := s.notes[id]
	if !ok {
		s.mu.Unlock()
		return NoteChange{}, false
	}
	before := *n
	mutate(n)
	n.ID = id // ids are stable for a note's lifetime
	n.Pitch = ClampPitch(n.Pitch)
	n.Velocity = ClampVelocity(n.Velocity)
	if n.Start < 0 {
		n.Start = 0
	}
	if n.Duration <= 0 {
		n.Duration = before.Duration
	}
	change := NoteChange{ID: id, Before: before, After: *n}
	s.mu.Unlock()

	s.history.Push(UpdateNotesEntry{Updates: []NoteChange{change}})
	s.notify()
	return change, true
}

// DeleteNotes removes the given notes, prunes them from the selection and
// records their full bodies for lossless undo. Unknown ids are skipped.
func (s *Store) DeleteNotes(ids []string) {
	s.mu.Lock()
	var removed []Note
	for _, id := range ids {
		n, ok := s.notes[id]
		if !ok {
			continue
		}
		removed = append(removed, *n)
		delete(s.notes, id)
		delete(s.selection, id)
		for i, oid := range s.order {
			if oid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if len(removed) == 0 {
		return
	}
	s.history.Push(DeleteNotesEntry{Notes: removed})
	s.notify()
}

// SelectNotes adds ids to the selection, or replaces it when exclusive.
// Ids without a live note are ignored. Selection changes never enter
// history.
func (s *Store) SelectNotes(ids []string, exclusive bool) {
	s.mu.Lock()
	if exclusive {
		s.selection = make(map[string]struct{})
	}
	for _, id := range ids {
		if _, ok := s.notes[id]; ok {
			s.selection[id] = struct{}{}
		}
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Store) DeselectAll() {
	s.mu.Lock()
	if len(s.selection) == 0 {
		s.mu.Unlock()
		return
	}
	s.selection = make(map[string]struct{})
	s.mu.Unlock()
	s.notify()
}

func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selection[id]
	return ok
}

// Selection returns the selected ids in insertion order.
func (s *Store) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.selection))
	for _, id := range s.order {
		if _, ok := s.selection[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// SelectedNotes returns copies of the selected notes in insertion order.
func (s *Store) SelectedNotes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Note, 0, len(s.selection))
	for _, id := range s.order {
		if _, ok := s.selection[id]; ok {
			out = append(out, *s.notes[id])
		}
	}
	return out
}

// Replace swaps in a restored note collection, emptying the selection and
// fully clearing history. This is the project-load boundary: restored notes
// must not be undoable back past the load point.
func (s *Store) Replace(notes []Note) {
	s.mu.Lock()
	s.notes = make(map[string]*Note, len(notes))
	s.order = s.order[:0]
	s.selection = make(map[string]struct{})
	for _, n := range notes {
		if n.ID == "" {
			n.ID = NewNoteID()
		}
		n.Pitch = ClampPitch(n.Pitch)
		n.Velocity = ClampVelocity(n.Velocity)
		if n.Start < 0 {
			n.Start = 0
		}
		if n.Duration <= 0 {
			n.Duration = s.gridSnap.Value()
		}
		if _, exists := s.notes[n.ID]; exists {
			continue
		}
		c := n
		s.notes[n.ID] = &c
		s.order = append(s.order, n.ID)
	}
	s.mu.Unlock()

	s.history.Clear()
	s.notify()
}
