package mapper

import (
	"time"

	"collab-docs-be/internal/entity"
	"collab-docs-be/internal/model"
)

type CommentMapper struct{}

func NewCommentMapper() *CommentMapper {
	return &CommentMapper{}
}

func (m *CommentMapper) ToEntity(c *model.Comment) *entity.Comment {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Comment{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		UserId:     c.UserId,
		Content:    c.Content,
		Quote:      c.Quote,
		Resolved:   c.Resolved,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *CommentMapper) ToModel(c *entity.Comment) *model.Comment {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Comment{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		UserId:     c.UserId,
		Content:    c.Content,
		Quote:      c.Quote,
		Resolved:   c.Resolved,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *CommentMapper) ToEntities(comments []*model.Comment) []*entity.Comment {
	entities := make([]*entity.Comment, len(comments))
	for i, c := range comments {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
