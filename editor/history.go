package editor

// MaxHistoryDepth bounds both the undo and redo stacks; the oldest entry is
// evicted past this depth.
const MaxHistoryDepth = 50

// Entry is one undoable unit of work. AddNoteEntry and DeleteNotesEntry
// carry full note bodies so undo restores the exact prior state;
// UpdateNotesEntry carries before/after snapshots for every touched note so
// a whole multi-note drag coalesces into one entry.
type Entry interface {
	historyEntry()
}

type AddNoteEntry struct {
	Note Note
}

type DeleteNotesEntry struct {
	Notes []Note
}

type NoteChange struct {
	ID     string
	Before Note
	After  Note
}

type UpdateNotesEntry struct {
	Updates []NoteChange
}

func (AddNoteEntry) historyEntry()     {}
func (DeleteNotesEntry) historyEntry() {}
func (UpdateNotesEntry) historyEntry() {}

// History holds the undo/redo stacks plus the suppression flags that keep
// replayed or mid-drag mutations from polluting the stacks.
type History struct {
	undo []Entry
	redo []Entry

	undoing bool
	redoing bool
	inDrag  bool
}

func NewHistory() *History {
	return &History{}
}

// suppressed reports whether store mutations should skip recording.
func (h *History) suppressed() bool {
	return h.undoing || h.redoing || h.inDrag
}

// Push records a new entry and invalidates the redo stack. No-op while any
// suppression flag is set.
func (h *History) Push(e Entry) {
	if h.suppressed() {
		return
	}
	h.undo = push(h.undo, e)
	h.redo = nil
}

// StartDrag suppresses per-mousemove history entries until EndDrag. The
// caller is responsible for pushing one coalesced UpdateNotesEntry after
// EndDrag.
func (h *History) StartDrag() {
	h.inDrag = true
}

func (h *History) EndDrag() {
	h.inDrag = false
}

// InDrag reports whether a drag gesture is currently coalescing.
func (h *History) InDrag() bool {
	return h.inDrag
}

// Undo replays the inverse of the most recent entry through the store and
// moves the entry to the redo stack. No-op on an empty stack.
func (h *History) Undo(s *Store) {
	if len(h.undo) == 0 {
		return
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]

	h.undoing = true
	defer func() { h.undoing = false }()

	switch e := e.(type) {
	case AddNoteEntry:
		s.DeleteNotes([]string{e.Note.ID})
	case DeleteNotesEntry:
		for _, n := range e.Notes {
			s.AddNote(n)
		}
	case UpdateNotesEntry:
		for _, u := range e.Updates {
			before := u.Before
			s.UpdateNote(u.ID, func(n *Note) { *n = before })
		}
	}

	h.redo = push(h.redo, e)
}

// Redo re-applies the most recently undone entry and moves it back to the
// undo stack without invalidating the remaining redo stack.
func (h *History) Redo(s *Store) {
	if len(h.redo) == 0 {
		return
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]

	h.redoing = true
	defer func() { h.redoing = false }()

	switch e := e.(type) {
	case AddNoteEntry:
		s.AddNote(e.Note)
	case DeleteNotesEntry:
		ids := make([]string, len(e.Notes))
		for i, n := range e.Notes {
			ids[i] = n.ID
		}
		s.DeleteNotes(ids)
	case UpdateNotesEntry:
		for _, u := range e.Updates {
			after := u.After
			s.UpdateNote(u.ID, func(n *Note) { *n = after })
		}
	}

	h.undo = push(h.undo, e)
}

// Clear drops both stacks. Called whenever a project is loaded: restored
// notes must not be undoable back past the load point.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoDepth returns the number of undoable entries.
func (h *History) UndoDepth() int { return len(h.undo) }

// RedoDepth returns the number of redoable entries.
func (h *History) RedoDepth() int { return len(h.redo) }

func push(stack []Entry, e Entry) []Entry {
	stack = append(stack, e)
	if len(stack) > MaxHistoryDepth {
		stack = append(stack[:0], stack[1:]...)
	}
	return stack
}
