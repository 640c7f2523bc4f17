package history

import "testing"

func TestUndoRedoRoundTrip(t *testing.T) {
	h := New()

	h.RecordLocalEdit("v1") // editing away from v1
	h.RecordLocalEdit("v2") // editing away from v2, current is now v3

	if !h.CanUndo() {
		t.Fatal("expected undo to be available")
	}

	restored, ok := h.Undo("v3")
	if !ok || restored != "v2" {
		t.Fatalf("Undo = %q, %v; want v2, true", restored, ok)
	}
	if !h.CanRedo() {
		t.Fatal("expected redo to be available after undo")
	}

	// The application of the undo reports itself as a local edit; the
	// state machine must swallow exactly that one.
	if h.RecordLocalEdit("v3") {
		t.Fatal("history-applied change must not be recorded")
	}

	restored, ok = h.Redo("v2")
	if !ok || restored != "v3" {
		t.Fatalf("Redo = %q, %v; want v3, true", restored, ok)
	}
	if h.RecordLocalEdit("v2") {
		t.Fatal("redo application must not be recorded either")
	}
}

func TestLocalEditClearsRedo(t *testing.T) {
	h := New()

	h.RecordLocalEdit("v1")
	if _, ok := h.Undo("v2"); !ok {
		t.Fatal("expected undo")
	}
	h.RecordLocalEdit("v1") // swallowed by ApplyingHistory

	// A genuinely new edit clears the redo stack.
	if !h.RecordLocalEdit("v1") {
		t.Fatal("organic edit must be recorded")
	}
	if h.CanRedo() {
		t.Fatal("redo stack must be cleared by a new local edit")
	}
}

func TestEmptyStacks(t *testing.T) {
	h := New()

	if h.CanUndo() || h.CanRedo() {
		t.Fatal("fresh history must expose no capabilities")
	}
	if _, ok := h.Undo("current"); ok {
		t.Fatal("Undo on empty stack must report false")
	}
	if _, ok := h.Redo("current"); ok {
		t.Fatal("Redo on empty stack must report false")
	}

	// Failed undo/redo must not poison the next organic edit.
	if !h.RecordLocalEdit("v1") {
		t.Fatal("edit after failed undo must be recorded")
	}
}

func TestSuppressionIsOneShot(t *testing.T) {
	h := New()

	h.RecordLocalEdit("v1")
	h.Undo("v2")

	if h.RecordLocalEdit("v2") {
		t.Fatal("first record after undo must be suppressed")
	}
	if !h.RecordLocalEdit("v1") {
		t.Fatal("second record must go through")
	}
}

func TestInterleavedEdits(t *testing.T) {
	h := New()

	// v1 -> v2 -> v3, undo twice, then branch with a new edit.
	h.RecordLocalEdit("v1")
	h.RecordLocalEdit("v2")

	s, _ := h.Undo("v3")
	if s != "v2" {
		t.Fatalf("first undo = %q, want v2", s)
	}
	h.RecordLocalEdit("v3")

	s, _ = h.Undo("v2")
	if s != "v1" {
		t.Fatalf("second undo = %q, want v1", s)
	}
	h.RecordLocalEdit("v2")

	// New edit from v1: redo history (v2, v3) is gone.
	h.RecordLocalEdit("v1")
	if h.CanRedo() {
		t.Fatal("redo must be cleared after branching")
	}

	s, _ = h.Undo("v4")
	if s != "v1" {
		t.Fatalf("undo after branch = %q, want v1", s)
	}
}
