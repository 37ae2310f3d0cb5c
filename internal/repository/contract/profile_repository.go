package contract

import (
	"context"

	"ai-jobagent-be/internal/entity"
	"ai-jobagent-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	// Upsert creates or replaces the user's single profile row.
	Upsert(ctx context.Context, profile *entity.Profile) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserId(ctx context.Context, userId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Profile, error)
}
