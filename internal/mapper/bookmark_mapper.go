package mapper

import (
	"time"

	"ai-jobagent-be/internal/entity"
	"ai-jobagent-be/internal/model"

	"gorm.io/gorm"
)

type BookmarkMapper struct{}

func NewBookmarkMapper() *BookmarkMapper {
	return &BookmarkMapper{}
}

func (m *BookmarkMapper) ToEntity(b *model.Bookmark) *entity.Bookmark {
	if b == nil {
		return nil
	}

	var deletedAt *time.Time
	if b.DeletedAt.Valid {
		t := b.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !b.UpdatedAt.IsZero() {
		t := b.UpdatedAt
		updatedAt = &t
	}

	return &entity.Bookmark{
		Id:        b.Id,
		UserId:    b.UserId,
		Title:     b.Title,
		Company:   b.Company,
		URL:       b.URL,
		Location:  b.Location,
		Score:     b.Score,
		Reason:    b.Reason,
		Salary:    b.Salary,
		Notes:     b.Notes,
		CreatedAt: b.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: b.DeletedAt.Valid,
	}
}

// ToModel maps everything except the embedding, which the repository
// sets when it has a vector to store.
func (m *BookmarkMapper) ToModel(b *entity.Bookmark) *model.Bookmark {
	if b == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if b.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *b.DeletedAt, Valid: true}
	} else if b.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if b.UpdatedAt != nil {
		updatedAt = *b.UpdatedAt
	}

	return &model.Bookmark{
		Id:        b.Id,
		UserId:    b.UserId,
		Title:     b.Title,
		Company:   b.Company,
		URL:       b.URL,
		Location:  b.Location,
		Score:     b.Score,
		Reason:    b.Reason,
		Salary:    b.Salary,
		Notes:     b.Notes,
		CreatedAt: b.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}
