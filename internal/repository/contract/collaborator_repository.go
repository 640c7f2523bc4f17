package contract

import (
	"context"

	"collab-docs-be/internal/entity"
	"collab-docs-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CollaboratorRepository interface {
	Create(ctx context.Context, collab *entity.Collaborator) error
	Update(ctx context.Context, collab *entity.Collaborator) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Collaborator, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Collaborator, error)
}
