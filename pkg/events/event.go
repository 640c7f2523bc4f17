package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_SHARED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Domain event codes published over the bus.
const (
	TypeDocumentCreated = "DOCUMENT_CREATED"
	TypeDocumentUpdated = "DOCUMENT_UPDATED"
	TypeDocumentDeleted = "DOCUMENT_DELETED"
	TypeDocumentShared  = "DOCUMENT_SHARED"
	TypeCommentCreated  = "COMMENT_CREATED"
)

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
