package mapper

import (
	"time"

	"collab-docs-be/internal/entity"
	"collab-docs-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Document{
		Id:        d.Id,
		Title:     d.Title,
		Content:   string(d.Content),
		OwnerId:   d.OwnerId,
		CreatedAt: d.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: d.DeletedAt.Valid,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Document{
		Id:        d.Id,
		Title:     d.Title,
		Content:   datatypes.JSON(d.Content),
		OwnerId:   d.OwnerId,
		CreatedAt: d.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

type DocumentRevisionMapper struct{}

func NewDocumentRevisionMapper() *DocumentRevisionMapper {
	return &DocumentRevisionMapper{}
}

func (m *DocumentRevisionMapper) ToEntity(r *model.DocumentRevision) *entity.DocumentRevision {
	if r == nil {
		return nil
	}
	return &entity.DocumentRevision{
		Id:         r.Id,
		DocumentId: r.DocumentId,
		Content:    string(r.Content),
		EditedBy:   r.EditedBy,
		CreatedAt:  r.CreatedAt,
	}
}

func (m *DocumentRevisionMapper) ToModel(r *entity.DocumentRevision) *model.DocumentRevision {
	if r == nil {
		return nil
	}
	return &model.DocumentRevision{
		Id:         r.Id,
		DocumentId: r.DocumentId,
		Content:    datatypes.JSON(r.Content),
		EditedBy:   r.EditedBy,
		CreatedAt:  r.CreatedAt,
	}
}

func (m *DocumentRevisionMapper) ToEntities(revs []*model.DocumentRevision) []*entity.DocumentRevision {
	entities := make([]*entity.DocumentRevision, len(revs))
	for i, r := range revs {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
