package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateBookmarkRequest struct {
	Title    string  `json:"title" validate:"required,min=2,max=200"`
	Company  string  `json:"company" validate:"max=200"`
	URL      string  `json:"url" validate:"required,url"`
	Location string  `json:"location" validate:"max=100"`
	Score    int     `json:"score" validate:"min=0,max=100"`
	Reason   string  `json:"reason" validate:"max=500"`
	Salary   *string `json:"salary" validate:"omitempty,max=100"`
	Notes    string  `json:"notes" validate:"max=2000"`
}

type UpdateBookmarkRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

type BookmarkResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	URL       string    `json:"url"`
	Location  string    `json:"location"`
	Score     int       `json:"score"`
	Reason    string    `json:"reason"`
	Salary    *string   `json:"salary,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SearchBookmarksRequest struct {
	Query string `json:"query" validate:"required,min=2,max=200"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=50"`
}
