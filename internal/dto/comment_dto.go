package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCommentRequest struct {
	DocumentId uuid.UUID
	Content    string `json:"content" validate:"required"`
	Quote      string `json:"quote"`
}

type CreateCommentResponse struct {
	Id uuid.UUID `json:"id"`
}

type CommentItem struct {
	Id        uuid.UUID `json:"id"`
	UserId    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Quote     string    `json:"quote,omitempty"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
}
