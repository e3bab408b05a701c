// Package poem содержит бизнес-логику каталога стихотворений с кешированием.
package poem

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/danengatsby/poesisverse/internal/models"
)

// PoemRepository определяет методы для работы со стихотворениями в хранилище.
type PoemRepository interface {
	// CreatePoem добавляет новое стихотворение и возвращает его ID.
	CreatePoem(ctx context.Context, poem models.Poem) (int, error)
	// ReadPoem возвращает стихотворение по ID.
	ReadPoem(ctx context.Context, id int) (*models.Poem, error)
	// UpdatePoem обновляет стихотворение по ID и возвращает число затронутых строк.
	UpdatePoem(ctx context.Context, poem models.Poem, id int) (int, error)
	// RemovePoem удаляет стихотворение по ID и возвращает число затронутых строк.
	RemovePoem(ctx context.Context, id int) (int, error)
	// ListPoems возвращает список стихотворений с пагинацией.
	ListPoems(ctx context.Context, limit, offset int) ([]*models.Poem, error)
	// TitleExists сообщает, занято ли название другим стихотворением.
	TitleExists(ctx context.Context, title string, excludeID int) (bool, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// PoemService реализует операции каталога, включая кеширование отдельных стихотворений.
type PoemService struct {
	repo  PoemRepository
	cache Cache
	log   *slog.Logger
}

// NewPoemService создает новый экземпляр PoemService.
func NewPoemService(repo PoemRepository, cache Cache, log *slog.Logger) *PoemService {
	return &PoemService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create добавляет стихотворение после проверки уникальности названия.
func (s *PoemService) Create(ctx context.Context, req models.DummyPoem) (int, error) {
	taken, err := s.repo.TitleExists(ctx, req.Title, 0)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, models.ErrTitleTaken
	}

	id, err := s.repo.CreatePoem(ctx, req.ToPoem())
	if err != nil {
		return 0, err
	}

	s.log.Info("created new poem", slog.Int("id", id), slog.String("title", req.Title))
	return id, nil
}

// Read возвращает стихотворение по ID, используя кеш или репозиторий.
func (s *PoemService) Read(ctx context.Context, id int) (*models.Poem, error) {
	var result *models.Poem
	cacheKey := fmt.Sprintf("poem:%d", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("cache lookup failed", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.ReadPoem(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

// List возвращает страницу каталога.
func (s *PoemService) List(ctx context.Context, limit, offset int) ([]*models.Poem, error) {
	return s.repo.ListPoems(ctx, limit, offset)
}

// Update обновляет стихотворение и кеш. Название не должно быть занято другим стихотворением.
func (s *PoemService) Update(ctx context.Context, req models.DummyPoem, id int) (int, error) {
	taken, err := s.repo.TitleExists(ctx, req.Title, id)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, models.ErrTitleTaken
	}

	count, err := s.repo.UpdatePoem(ctx, req.ToPoem(), id)
	if err != nil {
		return 0, err
	}

	cacheKey := fmt.Sprintf("poem:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return count, nil
}

// Remove удаляет стихотворение и инвалидирует кеш.
func (s *PoemService) Remove(ctx context.Context, id int) (int, error) {
	cacheKey := fmt.Sprintf("poem:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	count, err := s.repo.RemovePoem(ctx, id)
	if err != nil {
		return 0, err
	}
	return count, nil
}
