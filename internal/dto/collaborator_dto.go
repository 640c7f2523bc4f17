package dto

import (
	"time"

	"github.com/google/uuid"
)

type GrantCollaboratorRequest struct {
	DocumentId uuid.UUID
	Email      string `json:"email" validate:"required,email"`
	Role       string `json:"role" validate:"required,oneof=editor viewer commenter"`
}

type GrantCollaboratorResponse struct {
	Id uuid.UUID `json:"id"`
}

type CollaboratorItem struct {
	UserId    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
