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
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferencesRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PreferencesMapper
}

func NewPreferencesRepository(db *gorm.DB) contract.PreferencesRepository {
	return &PreferencesRepositoryImpl{
		db:     db,
		mapper: mapper.NewPreferencesMapper(),
	}
}

func (r *PreferencesRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PreferencesRepositoryImpl) Upsert(ctx context.Context, prefs *entity.Preferences) error {
	m := r.mapper.ToModel(prefs)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"location_type", "target_roles", "excluded_companies", "min_salary", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*prefs = *r.mapper.ToEntity(m)
	return nil
}

func (r *PreferencesRepositoryImpl) DeleteByUserId(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.Preferences{}).Error
}

func (r *PreferencesRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Preferences, error) {
	var m model.Preferences
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
