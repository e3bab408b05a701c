package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danengatsby/poesisverse/internal/models"
)

const poemColumns = `id, title, author, content, description, year, category,
			      image_url, audio_url, is_premium, created_at`

// CreatePoem вставляет новое стихотворение и возвращает его ID.
func (s *Storage) CreatePoem(ctx context.Context, poem models.Poem) (int, error) {
	const op = "storage.CreatePoem"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO poems (title, author, content, description, year, category,
			      image_url, audio_url, is_premium)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		poem.Title, poem.Author, poem.Content, poem.Description, poem.Year,
		poem.Category, poem.ImageURL, poem.AudioURL, poem.IsPremium).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadPoem возвращает стихотворение по его ID.
func (s *Storage) ReadPoem(ctx context.Context, id int) (*models.Poem, error) {
	const op = "storage.ReadPoem"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + poemColumns + `
			  FROM poems WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	poem, err := scanPoem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return poem, nil
}

// UpdatePoem обновляет данные стихотворения по его ID и возвращает количество изменённых строк.
func (s *Storage) UpdatePoem(ctx context.Context, poem models.Poem, id int) (int, error) {
	const op = "storage.UpdatePoem"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE poems
			  SET title = $1, author = $2, content = $3, description = $4,
			      year = $5, category = $6, image_url = $7, audio_url = $8, is_premium = $9
			  WHERE id = $10`
	result, err := s.DB.ExecContext(ctx, query,
		poem.Title, poem.Author, poem.Content, poem.Description, poem.Year,
		poem.Category, poem.ImageURL, poem.AudioURL, poem.IsPremium, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemovePoem физически удаляет стихотворение и возвращает количество удалённых строк.
func (s *Storage) RemovePoem(ctx context.Context, id int) (int, error) {
	const op = "storage.RemovePoem"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM poems WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListPoems возвращает список стихотворений с пагинацией.
func (s *Storage) ListPoems(ctx context.Context, limit, offset int) ([]*models.Poem, error) {
	const op = "storage.ListPoems"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + poemColumns + `
			  FROM poems
			  ORDER BY id
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
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

// TitleExists проверяет, занято ли название другим стихотворением.
// excludeID исключает из проверки само обновляемое стихотворение (0 при создании).
func (s *Storage) TitleExists(ctx context.Context, title string, excludeID int) (bool, error) {
	const op = "storage.TitleExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
			      SELECT 1 FROM poems WHERE title = $1 AND id <> $2
			  )`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, title, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

func scanPoem(row rowScanner) (*models.Poem, error) {
	var poem models.Poem
	var description, category, audioURL sql.NullString
	var year sql.NullInt64

	if err := row.Scan(&poem.ID, &poem.Title, &poem.Author, &poem.Content, &description,
		&year, &category, &poem.ImageURL, &audioURL, &poem.IsPremium, &poem.CreatedAt); err != nil {
		return nil, err
	}

	if description.Valid {
		poem.Description = &description.String
	}
	if year.Valid {
		y := int(year.Int64)
		poem.Year = &y
	}
	if category.Valid {
		poem.Category = &category.String
	}
	if audioURL.Valid {
		poem.AudioURL = &audioURL.String
	}
	return &poem, nil
}
