package service

import (
	"context"
	"fmt"
	"time"

	"collab-docs-be/internal/dto"
	"collab-docs-be/internal/entity"
	"collab-docs-be/internal/pkg/serverutils"
	"collab-docs-be/internal/repository/specification"
	"collab-docs-be/internal/repository/unitofwork"
	"collab-docs-be/pkg/events"
	pktNats "collab-docs-be/pkg/nats"

	"github.com/google/uuid"
)

type ICollaboratorService interface {
	Grant(ctx context.Context, userId uuid.UUID, req *dto.GrantCollaboratorRequest) (*dto.GrantCollaboratorResponse, error)
	Revoke(ctx context.Context, userId uuid.UUID, documentId uuid.UUID, collaboratorUserId uuid.UUID) error
	List(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) ([]*dto.CollaboratorItem, error)
}

type collaboratorService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewCollaboratorService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher) ICollaboratorService {
	return &collaboratorService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func (s *collaboratorService) ownedDocument(ctx context.Context, uow unitofwork.UnitOfWork, documentId, userId uuid.UUID) (*entity.Document, error) {
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, serverutils.NewNotFoundError("document")
	}
	if doc.OwnerId != userId {
		return nil, serverutils.NewPermissionError("only the owner can manage collaborators")
	}
	return doc, nil
}

func (s *collaboratorService) Grant(ctx context.Context, userId uuid.UUID, req *dto.GrantCollaboratorRequest) (*dto.GrantCollaboratorResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := s.ownedDocument(ctx, uow, req.DocumentId, userId)
	if err != nil {
		return nil, err
	}

	role := entity.CollaboratorRole(req.Role)
	if !role.Valid() {
		return nil, &serverutils.ValidationError{Message: "invalid role"}
	}

	target, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, serverutils.NewNotFoundError("user")
	}
	if target.Id == doc.OwnerId {
		return nil, &serverutils.ValidationError{Message: "owner is already a collaborator"}
	}

	existing, err := uow.CollaboratorRepository().FindOne(ctx,
		specification.ForDocument{DocumentID: doc.Id},
		specification.ForUser{UserID: target.Id},
	)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.Role = role
		if err := uow.CollaboratorRepository().Update(ctx, existing); err != nil {
			return nil, err
		}
		return &dto.GrantCollaboratorResponse{Id: existing.Id}, nil
	}

	grant := entity.Collaborator{
		Id:         uuid.New(),
		DocumentId: doc.Id,
		UserId:     target.Id,
		Role:       role,
		CreatedAt:  time.Now(),
	}
	if err := uow.CollaboratorRepository().Create(ctx, &grant); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		ownerName := ""
		if owner, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId}); err == nil && owner != nil {
			ownerName = owner.FullName
		}
		evt := events.BaseEvent{
			Type: events.TypeDocumentShared,
			Data: map[string]interface{}{
				"document_id":    doc.Id,
				"document_title": doc.Title,
				"owner_id":       userId,
				"owner_name":     ownerName,
				"target_email":   target.Email,
				"role":           string(role),
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish DOCUMENT_SHARED event: %v\n", err)
		}
	}

	return &dto.GrantCollaboratorResponse{Id: grant.Id}, nil
}

func (s *collaboratorService) Revoke(ctx context.Context, userId uuid.UUID, documentId uuid.UUID, collaboratorUserId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.ownedDocument(ctx, uow, documentId, userId); err != nil {
		return err
	}

	grant, err := uow.CollaboratorRepository().FindOne(ctx,
		specification.ForDocument{DocumentID: documentId},
		specification.ForUser{UserID: collaboratorUserId},
	)
	if err != nil {
		return err
	}
	if grant == nil {
		return serverutils.NewNotFoundError("collaborator")
	}

	return uow.CollaboratorRepository().Delete(ctx, grant.Id)
}

func (s *collaboratorService) List(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) ([]*dto.CollaboratorItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, serverutils.NewNotFoundError("document")
	}

	if doc.OwnerId != userId {
		grant, err := uow.CollaboratorRepository().FindOne(ctx,
			specification.ForDocument{DocumentID: documentId},
			specification.ForUser{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if grant == nil {
			return nil, serverutils.NewPermissionError("you do not have access to this document")
		}
	}

	grants, err := uow.CollaboratorRepository().FindAll(ctx, specification.ForDocument{DocumentID: documentId})
	if err != nil {
		return nil, err
	}

	items := make([]*dto.CollaboratorItem, 0, len(grants))
	for _, grant := range grants {
		user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: grant.UserId})
		if err != nil {
			return nil, err
		}
		if user == nil {
			continue
		}
		items = append(items, &dto.CollaboratorItem{
			UserId:    grant.UserId,
			Username:  user.Username,
			Email:     user.Email,
			Role:      string(grant.Role),
			CreatedAt: grant.CreatedAt,
		})
	}
	return items, nil
}
