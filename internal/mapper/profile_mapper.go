package mapper

import (
	"time"

	"ai-jobagent-be/internal/entity"
	"ai-jobagent-be/internal/model"
)

type ProfileMapper struct{}

func NewProfileMapper() *ProfileMapper {
	return &ProfileMapper{}
}

func (m *ProfileMapper) ToEntity(p *model.Profile) *entity.Profile {
	if p == nil {
		return nil
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.Profile{
		Id:              p.Id,
		UserId:          p.UserId,
		Skills:          jsonToStrings(p.Skills),
		ExperienceYears: p.ExperienceYears,
		Titles:          jsonToStrings(p.Titles),
		Summary:         p.Summary,
		CvText:          p.CvText,
		UploadedAt:      p.UploadedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *ProfileMapper) ToModel(p *entity.Profile) *model.Profile {
	if p == nil {
		return nil
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return &model.Profile{
		Id:              p.Id,
		UserId:          p.UserId,
		Skills:          stringsToJSON(p.Skills),
		ExperienceYears: p.ExperienceYears,
		Titles:          stringsToJSON(p.Titles),
		Summary:         p.Summary,
		CvText:          p.CvText,
		UploadedAt:      p.UploadedAt,
		UpdatedAt:       updatedAt,
	}
}
