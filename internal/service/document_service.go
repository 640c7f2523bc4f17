package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"collab-docs-be/internal/dto"
	"collab-docs-be/internal/entity"
	"collab-docs-be/internal/pkg/serverutils"
	"collab-docs-be/internal/repository/specification"
	"collab-docs-be/internal/repository/unitofwork"
	pktNats "collab-docs-be/pkg/nats"
	"collab-docs-be/pkg/events"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ListDocumentItem, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Revisions(ctx context.Context, userId uuid.UUID, id uuid.UUID) ([]*dto.RevisionItem, error)

	// Document store surface consumed by the collaboration protocol.
	GetDocument(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	UpdateDocumentContent(ctx context.Context, id uuid.UUID, content string, editedBy uuid.UUID) error
	GetCollaborators(ctx context.Context, documentId uuid.UUID) ([]*entity.Collaborator, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
	}
}

// resolveAccess returns (isOwner, role, found). A zero role with
// isOwner=false and found=false means the user has no grant at all.
func (s *documentService) resolveAccess(ctx context.Context, uow unitofwork.UnitOfWork, doc *entity.Document, userId uuid.UUID) (bool, entity.CollaboratorRole, bool, error) {
	if doc.OwnerId == userId {
		return true, "", true, nil
	}
	grant, err := uow.CollaboratorRepository().FindOne(ctx,
		specification.ForDocument{DocumentID: doc.Id},
		specification.ForUser{UserID: userId},
	)
	if err != nil {
		return false, "", false, err
	}
	if grant == nil {
		return false, "", false, nil
	}
	return false, grant.Role, true, nil
}

func (s *documentService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc := entity.Document{
		Id:        uuid.New(),
		Title:     req.Title,
		Content:   req.Content,
		OwnerId:   userId,
		CreatedAt: time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeDocumentCreated, map[string]interface{}{
		"document_id": doc.Id,
		"title":       doc.Title,
		"user_id":     userId,
	})

	return &dto.CreateDocumentResponse{Id: doc.Id}, nil
}

func (s *documentService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, serverutils.NewNotFoundError("document")
	}

	isOwner, role, found, err := s.resolveAccess(ctx, uow, doc, userId)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, serverutils.NewPermissionError("you do not have access to this document")
	}

	return &dto.ShowDocumentResponse{
		Id:        doc.Id,
		Title:     doc.Title,
		Content:   doc.Content,
		OwnerId:   doc.OwnerId,
		IsOwner:   isOwner,
		Role:      string(role),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (s *documentService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ListDocumentItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.AccessibleBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ListDocumentItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, &dto.ListDocumentItem{
			Id:        doc.Id,
			Title:     doc.Title,
			IsOwner:   doc.OwnerId == userId,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	return items, nil
}

func (s *documentService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, serverutils.NewNotFoundError("document")
	}

	isOwner, role, found, err := s.resolveAccess(ctx, uow, doc, userId)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, serverutils.NewPermissionError("you do not have access to this document")
	}
	if !isOwner && !role.CanEdit() {
		return nil, serverutils.NewPermissionError("your role does not allow editing")
	}

	now := time.Now()
	if req.Title != nil {
		doc.Title = *req.Title
	}
	if req.Content != nil {
		doc.Content = *req.Content
	}
	doc.UpdatedAt = &now

	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return nil, err
	}

	if req.Content != nil {
		s.archiveRevision(ctx, doc.Id, doc.Content, userId)
	}

	s.publishEvent(ctx, events.TypeDocumentUpdated, map[string]interface{}{
		"document_id": doc.Id,
		"user_id":     userId,
	})

	return &dto.UpdateDocumentResponse{Id: doc.Id}, nil
}

func (s *documentService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if doc == nil {
		return serverutils.NewNotFoundError("document")
	}
	if doc.OwnerId != userId {
		return serverutils.NewPermissionError("only the owner can delete a document")
	}

	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}

	s.publishEvent(ctx, events.TypeDocumentDeleted, map[string]interface{}{
		"document_id": id,
		"user_id":     userId,
	})

	return nil
}

func (s *documentService) Revisions(ctx context.Context, userId uuid.UUID, id uuid.UUID) ([]*dto.RevisionItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, serverutils.NewNotFoundError("document")
	}

	_, _, found, err := s.resolveAccess(ctx, uow, doc, userId)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, serverutils.NewPermissionError("you do not have access to this document")
	}

	revs, err := uow.DocumentRevisionRepository().FindAll(ctx,
		specification.ForDocument{DocumentID: id},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.RevisionItem, 0, len(revs))
	for _, rev := range revs {
		items = append(items, &dto.RevisionItem{
			Id:        rev.Id,
			EditedBy:  rev.EditedBy,
			CreatedAt: rev.CreatedAt,
		})
	}
	return items, nil
}

// GetDocument implements the collaboration protocol's document store.
// Returns nil when the document does not exist.
func (s *documentService) GetDocument(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
}

// UpdateDocumentContent persists a full snapshot. Last write wins: no
// merge of concurrent snapshots is attempted. Role checks happen at the
// protocol's edit-message stage, not here.
func (s *documentService) UpdateDocumentContent(ctx context.Context, id uuid.UUID, content string, editedBy uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if doc == nil {
		return serverutils.NewNotFoundError("document")
	}

	now := time.Now()
	doc.Content = content
	doc.UpdatedAt = &now

	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return err
	}

	s.archiveRevision(ctx, id, content, editedBy)

	s.publishEvent(ctx, events.TypeDocumentUpdated, map[string]interface{}{
		"document_id": id,
		"user_id":     editedBy,
	})

	return nil
}

func (s *documentService) GetCollaborators(ctx context.Context, documentId uuid.UUID) ([]*entity.Collaborator, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.CollaboratorRepository().FindAll(ctx, specification.ForDocument{DocumentID: documentId})
}

func (s *documentService) archiveRevision(ctx context.Context, documentId uuid.UUID, content string, editedBy uuid.UUID) {
	msg := dto.ArchiveRevisionMessage{
		DocumentId: documentId,
		Content:    content,
		EditedBy:   editedBy,
	}
	msgJson, err := json.Marshal(msg)
	if err != nil {
		return
	}
	// Archiving is auxiliary; a publish failure must not fail the edit.
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		fmt.Printf("[WARN] Failed to publish revision archive message: %v\n", err)
	}
}

func (s *documentService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		fmt.Printf("[WARN] Failed to publish %s event: %v\n", eventType, err)
	}
}
