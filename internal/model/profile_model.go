package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Profile struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	Skills          datatypes.JSON `gorm:"type:jsonb"`
	ExperienceYears *int
	Titles          datatypes.JSON `gorm:"type:jsonb"`
	Summary         string         `gorm:"type:text"`
	CvText          string         `gorm:"type:text"`
	UploadedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}
