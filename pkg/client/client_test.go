package client

import (
	"testing"
	"time"

	ws "collab-docs-be/internal/websocket"
	"collab-docs-be/pkg/history"

	"github.com/google/uuid"
)

// newOfflineSession builds a session with no transport: the debouncer is
// stopped so local edits never try to write to the wire.
func newOfflineSession(handlers Handlers) *Session {
	s := &Session{
		handlers: handlers,
		hist:     history.New(),
		debounce: NewDebouncer(time.Hour),
		done:     make(chan struct{}),
	}
	s.debounce.Stop()
	return s
}

func TestRemoteUpdateBypassesHistory(t *testing.T) {
	var delivered string
	s := newOfflineSession(Handlers{
		OnDocumentUpdate: func(content string, updatedBy uuid.UUID) {
			delivered = content
		},
	})

	s.Edit("local edit")
	if !s.CanUndo() {
		t.Fatal("local edit must be undoable")
	}

	remoteUser := uuid.New()
	s.dispatch(ws.MarshalEnvelope(ws.TypeDocumentUpdate, ws.DocumentUpdatePayload{
		DocumentId: uuid.New(),
		Content:    "remote snapshot",
		UpdatedBy:  remoteUser,
	}))

	if s.Content() != "remote snapshot" {
		t.Fatalf("content = %q; want the remote snapshot", s.Content())
	}
	if delivered != "remote snapshot" {
		t.Fatalf("handler saw %q; want the remote snapshot", delivered)
	}
	if s.CanRedo() {
		t.Fatal("remote update must not create redo history")
	}

	// The undo stack still holds exactly the one local entry: undoing
	// restores the pre-local-edit snapshot, then nothing remains.
	if !s.Undo() {
		t.Fatal("undo should still be available")
	}
	if s.Content() != "" {
		t.Fatalf("undo restored %q; want the pre-edit snapshot", s.Content())
	}
	if s.CanUndo() {
		t.Fatal("remote update must not have pushed extra undo entries")
	}
}

func TestInitialDocumentDataSeedsContentWithoutHistory(t *testing.T) {
	s := newOfflineSession(Handlers{})

	s.dispatch(ws.MarshalEnvelope(ws.TypeDocumentData, ws.DocumentDataPayload{
		DocumentId: uuid.New(),
		Content:    "persisted snapshot",
	}))

	if s.Content() != "persisted snapshot" {
		t.Fatalf("content = %q; want the persisted snapshot", s.Content())
	}
	if s.CanUndo() || s.CanRedo() {
		t.Fatal("loading the document must not seed history")
	}
}

func TestUndoRedoRoundTripThroughSession(t *testing.T) {
	s := newOfflineSession(Handlers{})

	s.Edit("v1")
	s.Edit("v2")

	if !s.Undo() {
		t.Fatal("expected undo")
	}
	if s.Content() != "v1" {
		t.Fatalf("after undo content = %q; want v1", s.Content())
	}
	if !s.Redo() {
		t.Fatal("expected redo")
	}
	if s.Content() != "v2" {
		t.Fatalf("after redo content = %q; want v2", s.Content())
	}

	// A fresh edit clears the redo branch.
	s.Edit("v3")
	if s.Redo() {
		t.Fatal("redo must be cleared by a new local edit")
	}
}
