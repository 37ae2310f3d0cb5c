package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// checkpointRow is the GORM model backing the store. One row per
// thread; Save overwrites the whole blob.
type checkpointRow struct {
	ThreadId  string         `gorm:"column:thread_id;primaryKey"`
	State     datatypes.JSON `gorm:"column:state"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (checkpointRow) TableName() string {
	return "agent_checkpoints"
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, threadID string) (json.RawMessage, error) {
	var row checkpointRow
	err := s.db.WithContext(ctx).Where("thread_id = ?", threadID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return json.RawMessage(row.State), nil
}

func (s *GormStore) Save(ctx context.Context, threadID string, state json.RawMessage) error {
	row := checkpointRow{
		ThreadId:  threadID,
		State:     datatypes.JSON(state),
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "thread_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).Create(&row).Error
}

func (s *GormStore) Delete(ctx context.Context, threadID string) error {
	return s.db.WithContext(ctx).Where("thread_id = ?", threadID).Delete(&checkpointRow{}).Error
}
