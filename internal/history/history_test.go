package history

import (
	"slices"
	"testing"
)

func entry(label string, before, after int) Entry[int] {
	return Entry[int]{Label: label, Before: before, After: after}
}

func TestUndoRedo(t *testing.T) {
	h := New[int](0)
	if h.CanUndo() || h.CanRedo() {
		t.Fatal("empty history should allow neither undo nor redo")
	}
	if _, ok := h.Undo(); ok {
		t.Fatal("undo at start of history should be a no-op")
	}

	h.Record(entry("one", 0, 1))
	h.Record(entry("two", 1, 2))

	e, ok := h.Undo()
	if !ok || e.Before != 1 || e.Label != "two" {
		t.Fatalf("Undo = %+v, %v", e, ok)
	}
	if !h.CanRedo() || h.RedoLabel() != "two" || h.UndoLabel() != "one" {
		t.Errorf("labels after undo: undo=%q redo=%q", h.UndoLabel(), h.RedoLabel())
	}

	e, ok = h.Redo()
	if !ok || e.After != 2 {
		t.Fatalf("Redo = %+v, %v", e, ok)
	}
	if _, ok := h.Redo(); ok {
		t.Error("redo at end of history should be a no-op")
	}
}

func TestRecordDiscardsRedoTail(t *testing.T) {
	h := New[int](0)
	h.Record(entry("a", 0, 1))
	h.Record(entry("b", 1, 2))
	h.Record(entry("c", 2, 3))
	h.Undo()
	h.Undo()

	h.Record(entry("d", 1, 9))

	if got := h.Labels(); !slices.Equal(got, []string{"a", "d"}) {
		t.Errorf("labels = %v, want [a d]", got)
	}
	if h.CanRedo() {
		t.Error("redo tail should have been discarded")
	}
	if h.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2", h.Cursor())
	}
}

func TestLimitDropsOldest(t *testing.T) {
	h := New[int](2)
	h.Record(entry("a", 0, 1))
	h.Record(entry("b", 1, 2))
	h.Record(entry("c", 2, 3))

	if got := h.Labels(); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("labels = %v, want [b c]", got)
	}
	h.Undo()
	h.Undo()
	if h.CanUndo() {
		t.Error("dropped entry should not be undoable")
	}
}

func TestClear(t *testing.T) {
	h := New[int](0)
	h.Record(entry("a", 0, 1))
	h.Clear()
	if h.Len() != 0 || h.CanUndo() {
		t.Errorf("Clear left len=%d canUndo=%v", h.Len(), h.CanUndo())
	}
}
