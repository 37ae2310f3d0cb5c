package entity

import (
	"time"

	"github.com/google/uuid"
)

// Bookmark is a job result the user saved from a search session.
type Bookmark struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	Company   string
	URL       string
	Location  string
	Score     int
	Reason    string
	Salary    *string
	Notes     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
