package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type Bookmark struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title     string          `gorm:"type:text;not null"`
	Company   string          `gorm:"type:varchar(255)"`
	URL       string          `gorm:"type:text;not null"`
	Location  string          `gorm:"type:varchar(100)"`
	Score     int             `gorm:"default:0"`
	Reason    string          `gorm:"type:text"`
	Salary    *string         `gorm:"type:varchar(100)"`
	Notes     string          `gorm:"type:text"`
	Embedding pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text dimension
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt  `gorm:"index"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}
