// Package client is a headless collaborative editor session, used by the
// simulation tool and by integration tests. It mirrors what a browser
// client does: authenticate over the websocket, keep a local snapshot,
// batch keystrokes behind a trailing debounce window, and maintain its own
// private undo/redo stacks.
package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	ws "collab-docs-be/internal/websocket"
	"collab-docs-be/pkg/history"
	"collab-docs-be/pkg/richtext"

	"github.com/fasthttp/websocket"
	"github.com/google/uuid"
)

const defaultDebounceWindow = time.Second

// Handlers receive server-pushed events. All callbacks run on the
// session's read goroutine; nil callbacks are skipped.
type Handlers struct {
	OnDocumentData   func(content string)
	OnActiveUsers    func(users []ws.Participant)
	OnUserJoined     func(user ws.PresencePayload)
	OnUserLeft       func(user ws.PresencePayload)
	OnDocumentUpdate func(content string, updatedBy uuid.UUID)
	OnCursorUpdate   func(update ws.CursorUpdatePayload)
	OnError          func(message string)
}

// Session is one participant's connection to one document.
type Session struct {
	conn     *websocket.Conn
	handlers Handlers

	userId     uuid.UUID
	documentId uuid.UUID

	mu      sync.Mutex
	content string
	hist    *history.History

	debounce *Debouncer

	done     chan struct{}
	closeOne sync.Once
}

// Dial connects to the collaboration endpoint. The session is not usable
// until Authenticate succeeds.
func Dial(url string, handlers Handlers) (*Session, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Session{
		conn:     conn,
		handlers: handlers,
		hist:     history.New(),
		debounce: NewDebouncer(defaultDebounceWindow),
		done:     make(chan struct{}),
	}, nil
}

// Authenticate sends the auth frame and starts the read loop. The server
// replies with document_data and active_users, delivered via Handlers.
func (s *Session) Authenticate(userId, documentId uuid.UUID) error {
	s.userId = userId
	s.documentId = documentId

	if err := s.write(ws.TypeAuth, ws.AuthPayload{UserId: userId, DocumentId: documentId}); err != nil {
		return err
	}
	go s.readLoop()
	return nil
}

// Content returns the session's current local snapshot.
func (s *Session) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// Edit replaces the local snapshot as a local mutation: the pre-edit
// snapshot goes to history and transmission is debounced, so a typing
// burst collapses into one edit frame.
func (s *Session) Edit(content string) {
	s.mu.Lock()
	s.hist.RecordLocalEdit(s.content)
	s.content = content
	s.mu.Unlock()

	s.scheduleSend(content)
}

// Command applies a formatting command to the current snapshot and pushes
// the result through the local-edit path. The snapshot is untouched when
// the command is rejected.
func (s *Session) Command(cmd richtext.Command, sel richtext.Selection, value interface{}) error {
	s.mu.Lock()
	current := s.content
	s.mu.Unlock()

	next, err := richtext.Apply(current, cmd, sel, value)
	if err != nil {
		return err
	}
	s.Edit(next)
	return nil
}

// Undo restores the previous snapshot from this session's own stack.
// Returns false when there is nothing to undo.
func (s *Session) Undo() bool {
	s.mu.Lock()
	restored, ok := s.hist.Undo(s.content)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.hist.RecordLocalEdit(s.content) // swallowed by the history state
	s.content = restored
	s.mu.Unlock()

	s.scheduleSend(restored)
	return true
}

// Redo is the inverse of Undo.
func (s *Session) Redo() bool {
	s.mu.Lock()
	restored, ok := s.hist.Redo(s.content)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.hist.RecordLocalEdit(s.content)
	s.content = restored
	s.mu.Unlock()

	s.scheduleSend(restored)
	return true
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo()
}

// SendCursor relays a cursor position immediately; cursor traffic is
// never debounced or recorded.
func (s *Session) SendCursor(position json.RawMessage) error {
	return s.write(ws.TypeCursorPosition, ws.CursorPositionPayload{Position: position})
}

// Flush transmits a pending debounced edit right away.
func (s *Session) Flush() {
	s.debounce.Flush()
}

// Done closes when the read loop exits.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close flushes any pending edit and tears the connection down.
func (s *Session) Close() error {
	s.debounce.Flush()
	s.debounce.Stop()
	var err error
	s.closeOne.Do(func() {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = s.conn.Close()
	})
	return err
}

func (s *Session) scheduleSend(content string) {
	s.debounce.Schedule(func() {
		s.write(ws.TypeDocumentEdit, ws.DocumentEditPayload{
			DocumentId: s.documentId,
			Content:    content,
		})
	})
}

func (s *Session) write(msgType ws.MessageType, payload interface{}) error {
	return s.conn.WriteMessage(websocket.TextMessage, ws.MarshalEnvelope(msgType, payload))
}

func (s *Session) readLoop() {
	defer close(s.done)
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		s.dispatch(raw)
	}
}

func (s *Session) dispatch(raw []byte) {
	var env ws.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return
	}

	switch env.Type {
	case ws.TypeDocumentData:
		var payload ws.DocumentDataPayload
		if json.Unmarshal(env.Data, &payload) != nil {
			return
		}
		s.mu.Lock()
		s.content = payload.Content
		s.mu.Unlock()
		if s.handlers.OnDocumentData != nil {
			s.handlers.OnDocumentData(payload.Content)
		}

	case ws.TypeActiveUsers:
		var payload ws.ActiveUsersPayload
		if json.Unmarshal(env.Data, &payload) != nil {
			return
		}
		if s.handlers.OnActiveUsers != nil {
			s.handlers.OnActiveUsers(payload.Users)
		}

	case ws.TypeUserJoined:
		var payload ws.PresencePayload
		if json.Unmarshal(env.Data, &payload) != nil {
			return
		}
		if s.handlers.OnUserJoined != nil {
			s.handlers.OnUserJoined(payload)
		}

	case ws.TypeUserLeft:
		var payload ws.PresencePayload
		if json.Unmarshal(env.Data, &payload) != nil {
			return
		}
		if s.handlers.OnUserLeft != nil {
			s.handlers.OnUserLeft(payload)
		}

	case ws.TypeDocumentUpdate:
		var payload ws.DocumentUpdatePayload
		if json.Unmarshal(env.Data, &payload) != nil {
			return
		}
		// Remote snapshots replace local state but never enter the undo
		// stack; history is private to each session.
		s.mu.Lock()
		s.content = payload.Content
		s.mu.Unlock()
		if s.handlers.OnDocumentUpdate != nil {
			s.handlers.OnDocumentUpdate(payload.Content, payload.UpdatedBy)
		}

	case ws.TypeCursorUpdate:
		var payload ws.CursorUpdatePayload
		if json.Unmarshal(env.Data, &payload) != nil {
			return
		}
		if s.handlers.OnCursorUpdate != nil {
			s.handlers.OnCursorUpdate(payload)
		}

	case ws.TypeError:
		var payload ws.ErrorPayload
		if json.Unmarshal(env.Data, &payload) != nil {
			return
		}
		if s.handlers.OnError != nil {
			s.handlers.OnError(payload.Message)
		}
	}
}
