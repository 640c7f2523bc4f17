// Package history implements client-side undo/redo over full document
// snapshots. It is a plain data structure with no goroutine safety; the
// editor loop that owns it is single-threaded.
package history

// state distinguishes an organic local edit from the snapshot change an
// undo or redo itself produces. Without it, pressing undo would push the
// restored snapshot back onto the undo stack and the user would be stuck
// toggling between two states.
type state int

const (
	stateIdle state = iota
	stateApplyingHistory
)

// History tracks the undo and redo stacks for one editing session.
// Remote updates must never be recorded here; only the local user's own
// edits are undoable.
type History struct {
	undo  []string
	redo  []string
	state state
}

func New() *History {
	return &History{}
}

// RecordLocalEdit is called with the snapshot that was current *before*
// the edit. It returns false when the change was produced by Undo or Redo,
// in which case nothing is recorded and the suppression flag resets, so
// exactly one history-applied change is swallowed.
func (h *History) RecordLocalEdit(previous string) bool {
	if h.state == stateApplyingHistory {
		h.state = stateIdle
		return false
	}
	h.undo = append(h.undo, previous)
	h.redo = h.redo[:0]
	return true
}

// Undo returns the snapshot to restore, handing the caller's current
// snapshot to the redo stack. ok is false when there is nothing to undo.
func (h *History) Undo(current string) (string, bool) {
	if len(h.undo) == 0 {
		return "", false
	}
	restored := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	h.state = stateApplyingHistory
	return restored, true
}

// Redo is the inverse of Undo.
func (h *History) Redo(current string) (string, bool) {
	if len(h.redo) == 0 {
		return "", false
	}
	restored := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current)
	h.state = stateApplyingHistory
	return restored, true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }

func (h *History) CanRedo() bool { return len(h.redo) > 0 }
