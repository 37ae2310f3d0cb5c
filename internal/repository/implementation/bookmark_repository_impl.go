package implementation

import (
	"context"
	"errors"

	"ai-jobagent-be/internal/entity"
	"ai-jobagent-be/internal/mapper"
	"ai-jobagent-be/internal/model"
	"ai-jobagent-be/internal/repository/contract"
	"ai-jobagent-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type BookmarkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BookmarkMapper
}

func NewBookmarkRepository(db *gorm.DB) contract.BookmarkRepository {
	return &BookmarkRepositoryImpl{
		db:     db,
		mapper: mapper.NewBookmarkMapper(),
	}
}

func (r *BookmarkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *BookmarkRepositoryImpl) Create(ctx context.Context, bookmark *entity.Bookmark, embedding []float32) error {
	m := r.mapper.ToModel(bookmark)
	if len(embedding) > 0 {
		m.Embedding = pgvector.NewVector(embedding)
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*bookmark = *r.mapper.ToEntity(m)
	return nil
}

func (r *BookmarkRepositoryImpl) Update(ctx context.Context, bookmark *entity.Bookmark) error {
	m := r.mapper.ToModel(bookmark)
	// Partial update so a missing embedding does not clobber the
	// stored vector.
	err := r.db.WithContext(ctx).Model(&model.Bookmark{}).
		Where("id = ?", m.Id).
		Updates(map[string]interface{}{
			"title":    m.Title,
			"company":  m.Company,
			"url":      m.URL,
			"location": m.Location,
			"score":    m.Score,
			"reason":   m.Reason,
			"salary":   m.Salary,
			"notes":    m.Notes,
		}).Error
	if err != nil {
		return err
	}
	return nil
}

func (r *BookmarkRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Bookmark{}, id).Error
}

func (r *BookmarkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Bookmark, error) {
	var m model.Bookmark
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *BookmarkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Bookmark, error) {
	var models []*model.Bookmark
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Bookmark, 0, len(models))
	for _, m := range models {
		entities = append(entities, r.mapper.ToEntity(m))
	}
	return entities, nil
}

// SearchSimilar orders by pgvector cosine distance: embedding <=> query
func (r *BookmarkRepositoryImpl) SearchSimilar(ctx context.Context, userId uuid.UUID, embedding []float32, limit int) ([]*entity.Bookmark, error) {
	if limit <= 0 {
		limit = 10
	}
	queryVector := pgvector.NewVector(embedding)

	var models []*model.Bookmark
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Where("embedding IS NOT NULL").
		Order(gorm.Expr("embedding <=> ?", queryVector)).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.Bookmark, 0, len(models))
	for _, m := range models {
		entities = append(entities, r.mapper.ToEntity(m))
	}
	return entities, nil
}

func (r *BookmarkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Bookmark{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
