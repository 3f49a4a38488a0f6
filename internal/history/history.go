// Package history implements a linear undo/redo stack. Recording a new entry
// after undoing discards the undone entries; there is no redo branching.
package history

// Entry is one recorded command: the state before and after it ran.
type Entry[T any] struct {
	Label  string
	Before T
	After  T
}

// History is a cursor over recorded entries. Entries before the cursor can be
// undone, entries at or after it can be redone.
type History[T any] struct {
	entries []Entry[T]
	cursor  int
	limit   int
}

// New creates an empty history. A positive limit caps the number of retained
// entries; the oldest are dropped first.
func New[T any](limit int) *History[T] {
	return &History[T]{limit: limit}
}

// Record truncates everything after the cursor, appends e and advances the cursor.
func (h *History[T]) Record(e Entry[T]) {
	h.entries = append(h.entries[:h.cursor], e)
	h.cursor++
	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		h.entries = append(h.entries[:0:0], h.entries[drop:]...)
		h.cursor -= drop
	}
}

// Undo steps the cursor back and returns the entry to reverse. ok is false at
// the start of history.
func (h *History[T]) Undo() (e Entry[T], ok bool) {
	if !h.CanUndo() {
		return e, false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Redo returns the entry to re-apply and steps the cursor forward. ok is
// false at the end of history.
func (h *History[T]) Redo() (e Entry[T], ok bool) {
	if !h.CanRedo() {
		return e, false
	}
	e = h.entries[h.cursor]
	h.cursor++
	return e, true
}

func (h *History[T]) CanUndo() bool { return h.cursor > 0 }
func (h *History[T]) CanRedo() bool { return h.cursor < len(h.entries) }
func (h *History[T]) Len() int      { return len(h.entries) }
func (h *History[T]) Cursor() int   { return h.cursor }

// UndoLabel returns the label of the entry Undo would reverse.
func (h *History[T]) UndoLabel() string {
	if !h.CanUndo() {
		return ""
	}
	return h.entries[h.cursor-1].Label
}

// RedoLabel returns the label of the entry Redo would re-apply.
func (h *History[T]) RedoLabel() string {
	if !h.CanRedo() {
		return ""
	}
	return h.entries[h.cursor].Label
}

// Labels lists every entry label, oldest first.
func (h *History[T]) Labels() []string {
	labels := make([]string, len(h.entries))
	for i, e := range h.entries {
		labels[i] = e.Label
	}
	return labels
}

// Clear drops every entry.
func (h *History[T]) Clear() {
	h.entries = nil
	h.cursor = 0
}
