package websocket

import (
	"context"
	"encoding/json"

	"collab-docs-be/internal/entity"
	"collab-docs-be/internal/repository/memory"

	"github.com/google/uuid"
)

// Message types exchanged over the collaboration connection.
type MessageType string

const (
	// client -> server
	TypeAuth           MessageType = "auth"
	TypeDocumentEdit   MessageType = "document_edit"
	TypeCursorPosition MessageType = "cursor_position"

	// server -> client
	TypeDocumentData   MessageType = "document_data"
	TypeActiveUsers    MessageType = "active_users"
	TypeUserJoined     MessageType = "user_joined"
	TypeUserLeft       MessageType = "user_left"
	TypeDocumentUpdate MessageType = "document_update"
	TypeCursorUpdate   MessageType = "cursor_update"
	TypeError          MessageType = "error"
)

// Envelope frames every message with a type discriminator.
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type AuthPayload struct {
	UserId     uuid.UUID `json:"userId"`
	DocumentId uuid.UUID `json:"documentId"`
}

type DocumentDataPayload struct {
	DocumentId uuid.UUID `json:"documentId"`
	Content    string    `json:"content"`
}

type Participant struct {
	UserId   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
}

type ActiveUsersPayload struct {
	Users []Participant `json:"users"`
}

type PresencePayload struct {
	UserId   uuid.UUID `json:"userId"`
	Username string    `json:"username,omitempty"`
	Name     string    `json:"name,omitempty"`
}

type DocumentEditPayload struct {
	DocumentId uuid.UUID `json:"documentId"`
	Content    string    `json:"content"`
}

type DocumentUpdatePayload struct {
	DocumentId uuid.UUID `json:"documentId"`
	Content    string    `json:"content"`
	UpdatedBy  uuid.UUID `json:"updatedBy"`
}

// Cursor positions are opaque to the protocol: broadcast as received,
// never persisted, never interpreted.
type CursorPositionPayload struct {
	Position json.RawMessage `json:"position"`
}

type CursorUpdatePayload struct {
	UserId   uuid.UUID       `json:"userId"`
	Username string          `json:"username"`
	Name     string          `json:"name"`
	Position json.RawMessage `json:"position"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// MarshalEnvelope frames a payload; marshal errors cannot occur for the
// payload types above, so the result is returned directly.
func MarshalEnvelope(msgType MessageType, payload interface{}) []byte {
	data, _ := json.Marshal(payload)
	out, _ := json.Marshal(Envelope{Type: msgType, Data: data})
	return out
}

// DocumentStore is the persistence collaborator consumed by the protocol.
// It is awaited per message; the protocol holds no document state itself.
type DocumentStore interface {
	GetDocument(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	UpdateDocumentContent(ctx context.Context, id uuid.UUID, content string, editedBy uuid.UUID) error
	GetCollaborators(ctx context.Context, documentId uuid.UUID) ([]*entity.Collaborator, error)
}

// IdentityResolver maps a user id to a display identity, or nil when the
// user does not exist.
type IdentityResolver interface {
	Resolve(ctx context.Context, userId uuid.UUID) (*memory.Identity, error)
}
