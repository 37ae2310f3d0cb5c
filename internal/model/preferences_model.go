package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Preferences struct {
	Id                uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId            uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	LocationType      string         `gorm:"type:varchar(20);not null;default:'any'"`
	TargetRoles       datatypes.JSON `gorm:"type:jsonb"`
	ExcludedCompanies datatypes.JSON `gorm:"type:jsonb"`
	MinSalary         *int
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (Preferences) TableName() string {
	return "preferences"
}
