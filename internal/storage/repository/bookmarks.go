package repository

import (
	"context"
	"fmt"

	"github.com/danengatsby/poesisverse/internal/models"
)

// MarkBookmark ставит закладку пользователя на стихотворение.
// Строка связи создаётся один раз; повторная установка только
// поднимает флаг is_bookmarked.
func (s *Storage) MarkBookmark(ctx context.Context, userUID string, poemID int) error {
	const op = "storage.MarkBookmark"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO bookmarks (user_uid, poem_id, is_bookmarked)
			  VALUES ($1, $2, TRUE)
			  ON CONFLICT (user_uid, poem_id)
			  DO UPDATE SET is_bookmarked = TRUE`
	_, err := s.DB.ExecContext(ctx, query, userUID, poemID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UnmarkBookmark снимает закладку: флаг сбрасывается, строка связи остаётся.
// Возвращает количество изменённых строк.
func (s *Storage) UnmarkBookmark(ctx context.Context, userUID string, poemID int) (int, error) {
	const op = "storage.UnmarkBookmark"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE bookmarks
			  SET is_bookmarked = FALSE
			  WHERE user_uid = $1 AND poem_id = $2 AND is_bookmarked = TRUE`
	result, err := s.DB.ExecContext(ctx, query, userUID, poemID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListBookmarkedPoems возвращает стихотворения с активной закладкой пользователя.
func (s *Storage) ListBookmarkedPoems(ctx context.Context, userUID string, limit, offset int) ([]*models.Poem, error) {
	const op = "storage.ListBookmarkedPoems"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, p.title, p.author, p.content, p.description, p.year, p.category,
			      p.image_url, p.audio_url, p.is_premium, p.created_at
			  FROM poems p
			  JOIN bookmarks b ON b.poem_id = p.id
			  WHERE b.user_uid = $1 AND b.is_bookmarked = TRUE
			  ORDER BY b.created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Poem
	for rows.Next() {
		poem, err := scanPoem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, poem)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
