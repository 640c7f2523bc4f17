package implementation

import (
	"context"

	"collab-docs-be/internal/entity"
	"collab-docs-be/internal/mapper"
	"collab-docs-be/internal/model"
	"collab-docs-be/internal/repository/contract"
	"collab-docs-be/internal/repository/specification"

	"gorm.io/gorm"
)

type DocumentRevisionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentRevisionMapper
}

func NewDocumentRevisionRepository(db *gorm.DB) contract.DocumentRevisionRepository {
	return &DocumentRevisionRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentRevisionMapper(),
	}
}

func (r *DocumentRevisionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentRevisionRepositoryImpl) Create(ctx context.Context, rev *entity.DocumentRevision) error {
	m := r.mapper.ToModel(rev)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*rev = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentRevisionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentRevision, error) {
	var models []*model.DocumentRevision
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DocumentRevisionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.DocumentRevision{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
