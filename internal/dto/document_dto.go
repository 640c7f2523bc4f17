package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
}

type CreateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowDocumentResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	OwnerId   uuid.UUID  `json:"owner_id"`
	IsOwner   bool       `json:"is_owner"`
	Role      string     `json:"role,omitempty"` // empty for the owner
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ListDocumentItem struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	IsOwner   bool       `json:"is_owner"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type UpdateDocumentRequest struct {
	Id      uuid.UUID
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type UpdateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type RevisionItem struct {
	Id        uuid.UUID `json:"id"`
	EditedBy  uuid.UUID `json:"edited_by"`
	CreatedAt time.Time `json:"created_at"`
}

// ArchiveRevisionMessage is the in-process pipeline payload published after
// every accepted edit (REST or websocket) for asynchronous archiving.
type ArchiveRevisionMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	Content    string    `json:"content"`
	EditedBy   uuid.UUID `json:"edited_by"`
}
