package entity

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the structured CV extraction stored per user.
type Profile struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	Skills          []string
	ExperienceYears *int
	Titles          []string
	Summary         string
	CvText          string
	UploadedAt      time.Time
	UpdatedAt       *time.Time
}
