package mapper

import (
	"ai-jobagent-be/internal/entity"
	"ai-jobagent-be/internal/model"
)

type PreferencesMapper struct{}

func NewPreferencesMapper() *PreferencesMapper {
	return &PreferencesMapper{}
}

func (m *PreferencesMapper) ToEntity(p *model.Preferences) *entity.Preferences {
	if p == nil {
		return nil
	}
	locationType := entity.LocationType(p.LocationType)
	if locationType == "" {
		locationType = entity.LocationTypeAny
	}
	return &entity.Preferences{
		Id:                p.Id,
		UserId:            p.UserId,
		LocationType:      locationType,
		TargetRoles:       jsonToStrings(p.TargetRoles),
		ExcludedCompanies: jsonToStrings(p.ExcludedCompanies),
		MinSalary:         p.MinSalary,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (m *PreferencesMapper) ToModel(p *entity.Preferences) *model.Preferences {
	if p == nil {
		return nil
	}
	locationType := string(p.LocationType)
	if locationType == "" {
		locationType = string(entity.LocationTypeAny)
	}
	return &model.Preferences{
		Id:                p.Id,
		UserId:            p.UserId,
		LocationType:      locationType,
		TargetRoles:       stringsToJSON(p.TargetRoles),
		ExcludedCompanies: stringsToJSON(p.ExcludedCompanies),
		MinSalary:         p.MinSalary,
		UpdatedAt:         p.UpdatedAt,
	}
}
