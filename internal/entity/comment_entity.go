package entity

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	UserId     uuid.UUID
	Content    string
	Quote      string // quoted document text the comment anchors to
	Resolved   bool
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
