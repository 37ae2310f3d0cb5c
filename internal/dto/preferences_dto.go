package dto

import "time"

type UpdatePreferencesRequest struct {
	LocationType      string   `json:"location_type" validate:"omitempty,oneof=any remote hybrid onsite"`
	TargetRoles       []string `json:"target_roles" validate:"max=10,dive,min=1"`
	ExcludedCompanies []string `json:"excluded_companies" validate:"max=50,dive,min=1"`
	MinSalary         *int     `json:"min_salary" validate:"omitempty,min=0"`
}

type PreferencesResponse struct {
	LocationType      string    `json:"location_type"`
	TargetRoles       []string  `json:"target_roles"`
	ExcludedCompanies []string  `json:"excluded_companies"`
	MinSalary         *int      `json:"min_salary"`
	UpdatedAt         time.Time `json:"updated_at"`
}
