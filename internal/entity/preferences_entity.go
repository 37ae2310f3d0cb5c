package entity

import (
	"time"

	"github.com/google/uuid"
)

type LocationType string

const (
	LocationTypeAny    LocationType = "any"
	LocationTypeRemote LocationType = "remote"
	LocationTypeHybrid LocationType = "hybrid"
	LocationTypeOnsite LocationType = "onsite"
)

// Preferences are the user's standing search filters.
type Preferences struct {
	Id                uuid.UUID
	UserId            uuid.UUID
	LocationType      LocationType
	TargetRoles       []string
	ExcludedCompanies []string
	MinSalary         *int
	UpdatedAt         time.Time
}
