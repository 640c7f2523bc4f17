package service

import (
	"context"
	"time"

	"collab-docs-be/internal/dto"
	"collab-docs-be/internal/entity"
	"collab-docs-be/internal/pkg/serverutils"
	"collab-docs-be/internal/repository/specification"
	"collab-docs-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type ICommentService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateCommentRequest) (*dto.CreateCommentResponse, error)
	List(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) ([]*dto.CommentItem, error)
	Resolve(ctx context.Context, userId uuid.UUID, commentId uuid.UUID) error
}

type commentService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewCommentService(uowFactory unitofwork.RepositoryFactory) ICommentService {
	return &commentService{
		uowFactory: uowFactory,
	}
}

func (s *commentService) access(ctx context.Context, uow unitofwork.UnitOfWork, documentId, userId uuid.UUID) (*entity.Document, bool, entity.CollaboratorRole, error) {
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, false, "", err
	}
	if doc == nil {
		return nil, false, "", serverutils.NewNotFoundError("document")
	}
	if doc.OwnerId == userId {
		return doc, true, "", nil
	}
	grant, err := uow.CollaboratorRepository().FindOne(ctx,
		specification.ForDocument{DocumentID: documentId},
		specification.ForUser{UserID: userId},
	)
	if err != nil {
		return nil, false, "", err
	}
	if grant == nil {
		return nil, false, "", serverutils.NewPermissionError("you do not have access to this document")
	}
	return doc, false, grant.Role, nil
}

func (s *commentService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateCommentRequest) (*dto.CreateCommentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	_, isOwner, role, err := s.access(ctx, uow, req.DocumentId, userId)
	if err != nil {
		return nil, err
	}
	if !isOwner && !role.CanComment() {
		return nil, serverutils.NewPermissionError("your role does not allow commenting")
	}

	comment := entity.Comment{
		Id:         uuid.New(),
		DocumentId: req.DocumentId,
		UserId:     userId,
		Content:    req.Content,
		Quote:      req.Quote,
		CreatedAt:  time.Now(),
	}

	if err := uow.CommentRepository().Create(ctx, &comment); err != nil {
		return nil, err
	}

	return &dto.CreateCommentResponse{Id: comment.Id}, nil
}

func (s *commentService) List(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) ([]*dto.CommentItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, _, _, err := s.access(ctx, uow, documentId, userId); err != nil {
		return nil, err
	}

	comments, err := uow.CommentRepository().FindAll(ctx,
		specification.ForDocument{DocumentID: documentId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.CommentItem, 0, len(comments))
	for _, comment := range comments {
		user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: comment.UserId})
		if err != nil {
			return nil, err
		}
		username := ""
		if user != nil {
			username = user.Username
		}
		items = append(items, &dto.CommentItem{
			Id:        comment.Id,
			UserId:    comment.UserId,
			Username:  username,
			Content:   comment.Content,
			Quote:     comment.Quote,
			Resolved:  comment.Resolved,
			CreatedAt: comment.CreatedAt,
		})
	}
	return items, nil
}

func (s *commentService) Resolve(ctx context.Context, userId uuid.UUID, commentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	comment, err := uow.CommentRepository().FindOne(ctx, specification.ByID{ID: commentId})
	if err != nil {
		return err
	}
	if comment == nil {
		return serverutils.NewNotFoundError("comment")
	}

	doc, isOwner, _, err := s.access(ctx, uow, comment.DocumentId, userId)
	if err != nil {
		return err
	}
	_ = doc
	if !isOwner && comment.UserId != userId {
		return serverutils.NewPermissionError("only the owner or the author can resolve a comment")
	}

	now := time.Now()
	comment.Resolved = true
	comment.UpdatedAt = &now
	return uow.CommentRepository().Update(ctx, comment)
}
