package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadCVRequest struct {
	Filename string `json:"filename" validate:"required"`
	// Content is the raw CV text. File uploads land here after the
	// controller reads the multipart part.
	Content string `json:"content" validate:"required,min=20"`
}

type ProfileResponse struct {
	Id              uuid.UUID `json:"id"`
	Skills          []string  `json:"skills"`
	ExperienceYears *int      `json:"experience_years"`
	Titles          []string  `json:"titles"`
	Summary         string    `json:"summary"`
	UploadedAt      time.Time `json:"uploaded_at"`
}

type UpdateProfileRequest struct {
	Skills          []string `json:"skills" validate:"max=10,dive,min=1"`
	ExperienceYears *int     `json:"experience_years" validate:"omitempty,min=0,max=60"`
	Titles          []string `json:"titles" validate:"max=3,dive,min=1"`
	Summary         string   `json:"summary" validate:"max=500"`
}
