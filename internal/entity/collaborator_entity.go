package entity

import (
	"time"

	"github.com/google/uuid"
)

type CollaboratorRole string

const (
	RoleEditor    CollaboratorRole = "editor"
	RoleViewer    CollaboratorRole = "viewer"
	RoleCommenter CollaboratorRole = "commenter"
)

// CanEdit reports whether the role is allowed to mutate document content.
func (r CollaboratorRole) CanEdit() bool {
	return r == RoleEditor
}

// CanComment reports whether the role may post comments.
func (r CollaboratorRole) CanComment() bool {
	return r == RoleEditor || r == RoleCommenter
}

func (r CollaboratorRole) Valid() bool {
	switch r {
	case RoleEditor, RoleViewer, RoleCommenter:
		return true
	}
	return false
}

type Collaborator struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	UserId     uuid.UUID
	Role       CollaboratorRole
	CreatedAt  time.Time
}
