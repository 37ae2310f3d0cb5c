package contract

import (
	"context"

	"ai-jobagent-be/internal/entity"
	"ai-jobagent-be/internal/repository/specification"

	"github.com/google/uuid"
)

type BookmarkRepository interface {
	// Create stores the bookmark; embedding may be nil when the
	// embedding provider is unavailable.
	Create(ctx context.Context, bookmark *entity.Bookmark, embedding []float32) error
	Update(ctx context.Context, bookmark *entity.Bookmark) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Bookmark, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Bookmark, error)
	// SearchSimilar ranks the user's bookmarks by cosine distance to
	// the query embedding.
	SearchSimilar(ctx context.Context, userId uuid.UUID, embedding []float32, limit int) ([]*entity.Bookmark, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
