package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"ai-jobagent-be/internal/dto"
	"ai-jobagent-be/internal/entity"
	"ai-jobagent-be/internal/pkg/logger"
	"ai-jobagent-be/internal/repository/specification"
	"ai-jobagent-be/internal/repository/unitofwork"
	"ai-jobagent-be/pkg/embedding"

	"github.com/google/uuid"
)

const defaultSearchLimit = 10

type IBookmarkService interface {
	CreateBookmark(ctx context.Context, userId uuid.UUID, req *dto.CreateBookmarkRequest) (*dto.BookmarkResponse, error)
	GetBookmarks(ctx context.Context, userId uuid.UUID) ([]*dto.BookmarkResponse, error)
	UpdateBookmark(ctx context.Context, userId uuid.UUID, bookmarkId uuid.UUID, req *dto.UpdateBookmarkRequest) (*dto.BookmarkResponse, error)
	DeleteBookmark(ctx context.Context, userId uuid.UUID, bookmarkId uuid.UUID) error
	SearchBookmarks(ctx context.Context, userId uuid.UUID, req *dto.SearchBookmarksRequest) ([]*dto.BookmarkResponse, error)
}

type bookmarkService struct {
	uowFactory unitofwork.RepositoryFactory
	embedder   embedding.EmbeddingProvider
	log        logger.ILogger
}

func NewBookmarkService(
	uowFactory unitofwork.RepositoryFactory,
	embedder embedding.EmbeddingProvider,
	log logger.ILogger,
) IBookmarkService {
	return &bookmarkService{
		uowFactory: uowFactory,
		embedder:   embedder,
		log:        log,
	}
}

// CreateBookmark stores the listing with an embedding of its text so
// it can be found by semantic search later. Embedding failures are
// logged and the bookmark is stored without a vector.
func (s *bookmarkService) CreateBookmark(ctx context.Context, userId uuid.UUID, req *dto.CreateBookmarkRequest) (*dto.BookmarkResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.BookmarkRepository()

	existing, err := repo.FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.Filter("url", req.URL),
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("this job is already bookmarked")
	}

	bookmark := &entity.Bookmark{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     req.Title,
		Company:   req.Company,
		URL:       req.URL,
		Location:  req.Location,
		Score:     req.Score,
		Reason:    req.Reason,
		Salary:    req.Salary,
		Notes:     req.Notes,
		CreatedAt: time.Now(),
	}

	vector := s.embed(bookmarkText(bookmark), "RETRIEVAL_DOCUMENT")
	if err := repo.Create(ctx, bookmark, vector); err != nil {
		return nil, err
	}
	return toBookmarkResponse(bookmark), nil
}

func (s *bookmarkService) GetBookmarks(ctx context.Context, userId uuid.UUID) ([]*dto.BookmarkResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	bookmarks, err := uow.BookmarkRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	responses := make([]*dto.BookmarkResponse, 0, len(bookmarks))
	for _, b := range bookmarks {
		responses = append(responses, toBookmarkResponse(b))
	}
	return responses, nil
}

func (s *bookmarkService) UpdateBookmark(ctx context.Context, userId uuid.UUID, bookmarkId uuid.UUID, req *dto.UpdateBookmarkRequest) (*dto.BookmarkResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.BookmarkRepository()

	bookmark, err := s.findOwned(ctx, repo.FindOne, userId, bookmarkId)
	if err != nil {
		return nil, err
	}

	bookmark.Notes = req.Notes
	if err := repo.Update(ctx, bookmark); err != nil {
		return nil, err
	}
	return toBookmarkResponse(bookmark), nil
}

func (s *bookmarkService) DeleteBookmark(ctx context.Context, userId uuid.UUID, bookmarkId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.BookmarkRepository()

	if _, err := s.findOwned(ctx, repo.FindOne, userId, bookmarkId); err != nil {
		return err
	}
	return repo.Delete(ctx, bookmarkId)
}

// SearchBookmarks embeds the query and ranks the user's bookmarks by
// vector similarity. When the embedder is down it falls back to a
// plain substring match so search still returns something.
func (s *bookmarkService) SearchBookmarks(ctx context.Context, userId uuid.UUID, req *dto.SearchBookmarksRequest) ([]*dto.BookmarkResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.BookmarkRepository()

	vector := s.embed(req.Query, "RETRIEVAL_QUERY")
	if vector != nil {
		bookmarks, err := repo.SearchSimilar(ctx, userId, vector, limit)
		if err != nil {
			return nil, err
		}
		responses := make([]*dto.BookmarkResponse, 0, len(bookmarks))
		for _, b := range bookmarks {
			responses = append(responses, toBookmarkResponse(b))
		}
		return responses, nil
	}

	all, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	query := strings.ToLower(req.Query)
	responses := make([]*dto.BookmarkResponse, 0, limit)
	for _, b := range all {
		if len(responses) >= limit {
			break
		}
		haystack := strings.ToLower(bookmarkText(b))
		if strings.Contains(haystack, query) {
			responses = append(responses, toBookmarkResponse(b))
		}
	}
	return responses, nil
}

type bookmarkFinder func(ctx context.Context, specs ...specification.Specification) (*entity.Bookmark, error)

func (s *bookmarkService) findOwned(ctx context.Context, find bookmarkFinder, userId, bookmarkId uuid.UUID) (*entity.Bookmark, error) {
	bookmark, err := find(ctx, specification.ByID{ID: bookmarkId}, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	if bookmark == nil {
		return nil, errors.New("bookmark not found")
	}
	return bookmark, nil
}

func (s *bookmarkService) embed(text, taskType string) []float32 {
	if s.embedder == nil {
		return nil
	}
	resp, err := s.embedder.Generate(text, taskType)
	if err != nil {
		s.log.Warn("bookmark_service", "embedding generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	if len(resp.Embedding.Values) == 0 {
		return nil
	}
	return resp.Embedding.Values
}

func bookmarkText(b *entity.Bookmark) string {
	parts := []string{b.Title, b.Company, b.Location, b.Reason, b.Notes}
	return strings.Join(parts, " ")
}

func toBookmarkResponse(b *entity.Bookmark) *dto.BookmarkResponse {
	return &dto.BookmarkResponse{
		Id:        b.Id,
		Title:     b.Title,
		Company:   b.Company,
		URL:       b.URL,
		Location:  b.Location,
		Score:     b.Score,
		Reason:    b.Reason,
		Salary:    b.Salary,
		Notes:     b.Notes,
		CreatedAt: b.CreatedAt,
	}
}
