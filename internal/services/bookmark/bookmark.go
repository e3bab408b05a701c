// Package bookmark содержит бизнес-логику закладок читателя.
package bookmark

import (
	"context"
	"log/slog"

	"github.com/danengatsby/poesisverse/internal/models"
)

// BookmarkRepository определяет методы для работы с закладками в хранилище.
type BookmarkRepository interface {
	// MarkBookmark ставит закладку, повторная установка идемпотентна.
	MarkBookmark(ctx context.Context, userUID string, poemID int) error
	// UnmarkBookmark снимает закладку и возвращает число затронутых строк.
	UnmarkBookmark(ctx context.Context, userUID string, poemID int) (int, error)
	// ListBookmarkedPoems возвращает стихотворения с активной закладкой.
	ListBookmarkedPoems(ctx context.Context, userUID string, limit, offset int) ([]*models.Poem, error)
	// ReadPoem возвращает стихотворение по ID.
	ReadPoem(ctx context.Context, id int) (*models.Poem, error)
}

// BookmarkService реализует операции с закладками.
type BookmarkService struct {
	repo BookmarkRepository
	log  *slog.Logger
}

// NewBookmarkService создает новый экземпляр BookmarkService.
func NewBookmarkService(repo BookmarkRepository, log *slog.Logger) *BookmarkService {
	return &BookmarkService{
		repo: repo,
		log:  log,
	}
}

// Mark ставит закладку на существующее стихотворение.
func (s *BookmarkService) Mark(ctx context.Context, userUID string, poemID int) error {
	// Закладка на несуществующее стихотворение — ошибка, а не тихий успех
	if _, err := s.repo.ReadPoem(ctx, poemID); err != nil {
		return err
	}

	if err := s.repo.MarkBookmark(ctx, userUID, poemID); err != nil {
		return err
	}

	s.log.Info("bookmark set", slog.String("user_uid", userUID), slog.Int("poem_id", poemID))
	return nil
}

// Unmark снимает закладку. Снятие несуществующей закладки не является ошибкой.
func (s *BookmarkService) Unmark(ctx context.Context, userUID string, poemID int) error {
	_, err := s.repo.UnmarkBookmark(ctx, userUID, poemID)
	return err
}

// List возвращает страницу закладок читателя.
func (s *BookmarkService) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Poem, error) {
	return s.repo.ListBookmarkedPoems(ctx, userUID, limit, offset)
}
