package poem

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/danengatsby/poesisverse/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreatePoem(ctx context.Context, poem models.Poem) (int, error) {
	args := m.Called(ctx, poem)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ReadPoem(ctx context.Context, id int) (*models.Poem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Poem), args.Error(1)
}
func (m *RepoMock) UpdatePoem(ctx context.Context, poem models.Poem, id int) (int, error) {
	args := m.Called(ctx, poem, id)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) RemovePoem(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ListPoems(ctx context.Context, limit, offset int) ([]*models.Poem, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Poem), args.Error(1)
}
func (m *RepoMock) TitleExists(ctx context.Context, title string, excludeID int) (bool, error) {
	args := m.Called(ctx, title, excludeID)
	return args.Bool(0), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestPoemService_Create(t *testing.T) {
	req := models.DummyPoem{
		Title:    "Парус",
		Author:   "М.Ю. Лермонтов",
		Content:  "Белеет парус одинокой",
		ImageURL: "https://example.com/img.jpg",
	}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
		wantID     int
		wantErr    error
	}{
		{
			name: "успешное создание",
			setupMocks: func(r *RepoMock) {
				r.On("TitleExists", mock.Anything, "Парус", 0).Return(false, nil).Once()
				r.On("CreatePoem", mock.Anything, mock.MatchedBy(func(p models.Poem) bool {
					return p.Title == "Парус" && p.Author == "М.Ю. Лермонтов"
				})).Return(42, nil).Once()
			},
			wantID: 42,
		},
		{
			name: "название занято",
			setupMocks: func(r *RepoMock) {
				r.On("TitleExists", mock.Anything, "Парус", 0).Return(true, nil).Once()
			},
			wantErr: models.ErrTitleTaken,
		},
		{
			name: "ошибка хранилища",
			setupMocks: func(r *RepoMock) {
				r.On("TitleExists", mock.Anything, "Парус", 0).Return(false, nil).Once()
				r.On("CreatePoem", mock.Anything, mock.Anything).
					Return(0, errors.New("db down")).Once()
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewPoemService(repo, new(CacheMock), newNoopLogger())

			tt.setupMocks(repo)

			id, err := svc.Create(context.Background(), req)
			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, models.ErrTitleTaken) {
					require.ErrorIs(t, err, models.ErrTitleTaken)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestPoemService_Read(t *testing.T) {
	poem := &models.Poem{ID: 1, Title: "Парус", Content: "Белеет парус одинокой"}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock)
		wantErr    error
	}{
		{
			name: "попадание в кеш не трогает хранилище",
			setupMocks: func(_ *RepoMock, c *CacheMock) {
				c.On("Get", "poem:1", mock.Anything).Return(true, nil).Once()
			},
		},
		{
			name: "промах кеша читает хранилище и кеширует",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", "poem:1", mock.Anything).Return(false, nil).Once()
				r.On("ReadPoem", mock.Anything, 1).Return(poem, nil).Once()
				c.On("Set", "poem:1", mock.Anything, time.Hour).Return(nil).Once()
			},
		},
		{
			name: "несуществующее стихотворение",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", "poem:1", mock.Anything).Return(false, nil).Once()
				r.On("ReadPoem", mock.Anything, 1).Return(nil, models.ErrNotFound).Once()
			},
			wantErr: models.ErrNotFound,
		},
		{
			name: "ошибка кеша не мешает чтению",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", "poem:1", mock.Anything).Return(false, errors.New("redis down")).Once()
				r.On("ReadPoem", mock.Anything, 1).Return(poem, nil).Once()
				c.On("Set", "poem:1", mock.Anything, time.Hour).Return(errors.New("redis down")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			svc := NewPoemService(repo, cache, newNoopLogger())

			tt.setupMocks(repo, cache)

			_, err := svc.Read(context.Background(), 1)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestPoemService_Update(t *testing.T) {
	req := models.DummyPoem{
		Title:    "Парус",
		Author:   "М.Ю. Лермонтов",
		Content:  "Белеет парус одинокой",
		ImageURL: "https://example.com/img.jpg",
	}

	t.Run("успешное обновление инвалидирует кеш", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("TitleExists", mock.Anything, "Парус", 1).Return(false, nil).Once()
		repo.On("UpdatePoem", mock.Anything, mock.Anything, 1).Return(1, nil).Once()
		cache.On("Invalidate", "poem:1").Return(nil).Once()
		svc := NewPoemService(repo, cache, newNoopLogger())

		count, err := svc.Update(context.Background(), req, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("название занято другим стихотворением", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("TitleExists", mock.Anything, "Парус", 1).Return(true, nil).Once()
		svc := NewPoemService(repo, new(CacheMock), newNoopLogger())

		_, err := svc.Update(context.Background(), req, 1)
		require.ErrorIs(t, err, models.ErrTitleTaken)
		repo.AssertExpectations(t)
	})
}

func TestPoemService_Remove(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	cache.On("Invalidate", "poem:1").Return(nil).Once()
	repo.On("RemovePoem", mock.Anything, 1).Return(1, nil).Once()
	svc := NewPoemService(repo, cache, newNoopLogger())

	count, err := svc.Remove(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}
