package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-jobagent-be/internal/dto"
	"ai-jobagent-be/internal/pkg/logger"
	"ai-jobagent-be/internal/repository/specification"
	"ai-jobagent-be/internal/repository/unitofwork"
	"ai-jobagent-be/pkg/agent/orchestrator"
	"ai-jobagent-be/pkg/extract"
	"ai-jobagent-be/pkg/llm"
	"ai-jobagent-be/pkg/tools"

	"ai-jobagent-be/internal/entity"

	"github.com/google/uuid"
)

const cvParsePromptTemplate = `Extract a structured profile from this CV.
Return ONLY a JSON object, no other text:
{"skills": ["top 10 skills max"], "experience_years": <number>, "titles": ["up to 3 job titles held"], "summary": "2-3 sentence professional summary"}

CV text:
%s`

type IProfileService interface {
	UploadCV(ctx context.Context, userId uuid.UUID, req *dto.UploadCVRequest) (*dto.ProfileResponse, error)
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	DeleteProfile(ctx context.Context, userId uuid.UUID) error
}

type profileService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   llm.LLMProvider
	extractor  tools.CVExtractor
	log        logger.ILogger
}

func NewProfileService(
	uowFactory unitofwork.RepositoryFactory,
	provider llm.LLMProvider,
	extractor tools.CVExtractor,
	log logger.ILogger,
) IProfileService {
	return &profileService{
		uowFactory: uowFactory,
		provider:   provider,
		extractor:  extractor,
		log:        log,
	}
}

// UploadCV validates the upload, trims the CV to its informative
// sections, asks the model for a structured profile and upserts the
// result. A model reply that yields an empty profile is an error so
// the user knows extraction failed rather than silently storing junk.
func (s *profileService) UploadCV(ctx context.Context, userId uuid.UUID, req *dto.UploadCVRequest) (*dto.ProfileResponse, error) {
	cvText, err := s.extractor.Extract(req.Filename, []byte(req.Content))
	if err != nil {
		return nil, fmt.Errorf("could not read CV: %w", err)
	}

	trimmed := orchestrator.TrimCV(cvText, 0)

	reply, err := s.provider.Generate(ctx, fmt.Sprintf(cvParsePromptTemplate, trimmed), llm.WithTemperature(0.1))
	if err != nil {
		s.log.Error("profile_service", "CV parse model call failed", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return nil, errors.New("profile extraction is temporarily unavailable")
	}

	parsed := extract.ParseProfile(reply)
	if parsed.IsEmpty() {
		return nil, errors.New("could not extract a profile from this CV")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ProfileRepository()

	profile := &entity.Profile{
		Id:              uuid.New(),
		UserId:          userId,
		Skills:          parsed.Skills,
		ExperienceYears: parsed.ExperienceYears,
		Titles:          parsed.Titles,
		Summary:         parsed.Summary,
		CvText:          trimmed,
		UploadedAt:      time.Now(),
	}
	if err := repo.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	s.log.Info("profile_service", "CV parsed and profile stored", map[string]interface{}{
		"user_id": userId.String(),
		"skills":  len(parsed.Skills),
	})
	return toProfileResponse(profile), nil
}

func (s *profileService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.ProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	profile, err := uow.ProfileRepository().FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.New("no profile uploaded yet")
	}
	return toProfileResponse(profile), nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ProfileRepository()

	profile, err := repo.FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.New("no profile uploaded yet")
	}

	if req.Skills != nil {
		profile.Skills = req.Skills
	}
	if req.ExperienceYears != nil {
		profile.ExperienceYears = req.ExperienceYears
	}
	if req.Titles != nil {
		profile.Titles = req.Titles
	}
	if req.Summary != "" {
		profile.Summary = req.Summary
	}

	if err := repo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return toProfileResponse(profile), nil
}

func (s *profileService) DeleteProfile(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ProfileRepository().DeleteByUserId(ctx, userId)
}

func toProfileResponse(p *entity.Profile) *dto.ProfileResponse {
	return &dto.ProfileResponse{
		Id:              p.Id,
		Skills:          p.Skills,
		ExperienceYears: p.ExperienceYears,
		Titles:          p.Titles,
		Summary:         p.Summary,
		UploadedAt:      p.UploadedAt,
	}
}
