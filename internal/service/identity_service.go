package service

import (
	"context"

	"collab-docs-be/internal/repository/memory"
	"collab-docs-be/internal/repository/specification"
	"collab-docs-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IIdentityService interface {
	Resolve(ctx context.Context, userId uuid.UUID) (*memory.Identity, error)
}

// identityService resolves user ids to display identities for presence and
// cursor events, caching results so cursor chatter stays off the database.
type identityService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.IdentityCache
}

func NewIdentityService(uowFactory unitofwork.RepositoryFactory, cache *memory.IdentityCache) IIdentityService {
	return &identityService{
		uowFactory: uowFactory,
		cache:      cache,
	}
}

// Resolve returns nil when the user does not exist.
func (s *identityService) Resolve(ctx context.Context, userId uuid.UUID) (*memory.Identity, error) {
	if identity, found := s.cache.Get(userId); found {
		return identity, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	identity := &memory.Identity{
		UserId:   user.Id,
		Username: user.Username,
		Name:     user.FullName,
	}
	s.cache.Save(identity)
	return identity, nil
}
