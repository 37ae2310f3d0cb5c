package contract

import (
	"context"

	"ai-jobagent-be/internal/entity"
	"ai-jobagent-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PreferencesRepository interface {
	Upsert(ctx context.Context, prefs *entity.Preferences) error
	DeleteByUserId(ctx context.Context, userId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Preferences, error)
}
