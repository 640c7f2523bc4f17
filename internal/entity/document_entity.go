package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id        uuid.UUID
	Title     string
	Content   string // full serialized snapshot, last write wins
	OwnerId   uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// DocumentRevision is an archived snapshot written asynchronously after
// every accepted edit. Revisions are history only; they never feed back
// into conflict resolution.
type DocumentRevision struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	Content    string
	EditedBy   uuid.UUID
	CreatedAt  time.Time
}
