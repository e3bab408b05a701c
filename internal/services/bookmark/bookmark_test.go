package bookmark

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/danengatsby/poesisverse/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) MarkBookmark(ctx context.Context, userUID string, poemID int) error {
	return m.Called(ctx, userUID, poemID).Error(0)
}
func (m *RepoMock) UnmarkBookmark(ctx context.Context, userUID string, poemID int) (int, error) {
	args := m.Called(ctx, userUID, poemID)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ListBookmarkedPoems(ctx context.Context, userUID string, limit, offset int) ([]*models.Poem, error) {
	args := m.Called(ctx, userUID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Poem), args.Error(1)
}
func (m *RepoMock) ReadPoem(ctx context.Context, id int) (*models.Poem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Poem), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestBookmarkService_Mark(t *testing.T) {
	poem := &models.Poem{ID: 7, Title: "Парус"}

	t.Run("успешная установка закладки", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ReadPoem", mock.Anything, 7).Return(poem, nil).Once()
		repo.On("MarkBookmark", mock.Anything, "uid-1", 7).Return(nil).Once()
		svc := NewBookmarkService(repo, newNoopLogger())

		require.NoError(t, svc.Mark(context.Background(), "uid-1", 7))
		repo.AssertExpectations(t)
	})

	t.Run("закладка на несуществующее стихотворение", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ReadPoem", mock.Anything, 9999).Return(nil, models.ErrNotFound).Once()
		svc := NewBookmarkService(repo, newNoopLogger())

		err := svc.Mark(context.Background(), "uid-1", 9999)
		require.ErrorIs(t, err, models.ErrNotFound)
		repo.AssertNotCalled(t, "MarkBookmark", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBookmarkService_Unmark(t *testing.T) {
	t.Run("снятие существующей закладки", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("UnmarkBookmark", mock.Anything, "uid-1", 7).Return(1, nil).Once()
		svc := NewBookmarkService(repo, newNoopLogger())

		require.NoError(t, svc.Unmark(context.Background(), "uid-1", 7))
		repo.AssertExpectations(t)
	})

	t.Run("снятие несуществующей закладки не является ошибкой", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("UnmarkBookmark", mock.Anything, "uid-1", 7).Return(0, nil).Once()
		svc := NewBookmarkService(repo, newNoopLogger())

		require.NoError(t, svc.Unmark(context.Background(), "uid-1", 7))
		repo.AssertExpectations(t)
	})
}

func TestBookmarkService_List(t *testing.T) {
	poems := []*models.Poem{
		{ID: 1, Title: "Первое"},
		{ID: 2, Title: "Второе"},
	}

	repo := new(RepoMock)
	repo.On("ListBookmarkedPoems", mock.Anything, "uid-1", 10, 0).Return(poems, nil).Once()
	svc := NewBookmarkService(repo, newNoopLogger())

	got, err := svc.List(context.Background(), "uid-1", 10, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	repo.AssertExpectations(t)
}
