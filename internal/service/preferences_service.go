package service

import (
	"context"
	"time"

	"ai-jobagent-be/internal/dto"
	"ai-jobagent-be/internal/entity"
	"ai-jobagent-be/internal/repository/specification"
	"ai-jobagent-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IPreferencesService interface {
	GetPreferences(ctx context.Context, userId uuid.UUID) (*dto.PreferencesResponse, error)
	UpdatePreferences(ctx context.Context, userId uuid.UUID, req *dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error)
	ResetPreferences(ctx context.Context, userId uuid.UUID) error
}

type preferencesService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPreferencesService(uowFactory unitofwork.RepositoryFactory) IPreferencesService {
	return &preferencesService{uowFactory: uowFactory}
}

// GetPreferences returns stored filters, or the defaults when the
// user has never saved any.
func (s *preferencesService) GetPreferences(ctx context.Context, userId uuid.UUID) (*dto.PreferencesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	prefs, err := uow.PreferencesRepository().FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = defaultPreferences(userId)
	}
	return toPreferencesResponse(prefs), nil
}

func (s *preferencesService) UpdatePreferences(ctx context.Context, userId uuid.UUID, req *dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.PreferencesRepository()

	prefs, err := repo.FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = defaultPreferences(userId)
	}

	if req.LocationType != "" {
		prefs.LocationType = entity.LocationType(req.LocationType)
	}
	if req.TargetRoles != nil {
		prefs.TargetRoles = req.TargetRoles
	}
	if req.ExcludedCompanies != nil {
		prefs.ExcludedCompanies = req.ExcludedCompanies
	}
	if req.MinSalary != nil {
		prefs.MinSalary = req.MinSalary
	}
	prefs.UpdatedAt = time.Now()

	if err := repo.Upsert(ctx, prefs); err != nil {
		return nil, err
	}
	return toPreferencesResponse(prefs), nil
}

func (s *preferencesService) ResetPreferences(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.PreferencesRepository().DeleteByUserId(ctx, userId)
}

func defaultPreferences(userId uuid.UUID) *entity.Preferences {
	return &entity.Preferences{
		Id:                uuid.New(),
		UserId:            userId,
		LocationType:      entity.LocationTypeAny,
		TargetRoles:       []string{},
		ExcludedCompanies: []string{},
		UpdatedAt:         time.Now(),
	}
}

func toPreferencesResponse(p *entity.Preferences) *dto.PreferencesResponse {
	return &dto.PreferencesResponse{
		LocationType:      string(p.LocationType),
		TargetRoles:       p.TargetRoles,
		ExcludedCompanies: p.ExcludedCompanies,
		MinSalary:         p.MinSalary,
		UpdatedAt:         p.UpdatedAt,
	}
}
