// Package sessions реализует серверное хранилище сессий поверх redis.
// Сессия — непрозрачный идентификатор из cookie, по которому хранится
// {user_uid, is_authenticated} с временем жизни. Logout удаляет запись,
// по истечении TTL redis удаляет её сам.
package sessions

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danengatsby/poesisverse/internal/cache"
	"github.com/danengatsby/poesisverse/internal/models"
)

// ErrNotFound возвращается, когда сессии нет в хранилище или её TTL истёк.
var ErrNotFound = errors.New("session not found")

// Store хранит сессии в redis с заданным TTL.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
}

// New создает новое хранилище сессий.
func New(c *cache.Cache, ttl time.Duration) *Store {
	return &Store{
		cache: c,
		ttl:   ttl,
	}
}

// Create заводит новую сессию для пользователя и возвращает её идентификатор.
func (s *Store) Create(userUID string) (string, error) {
	const op = "sessions.Create"
	id := uuid.NewString()
	session := models.Session{
		UserUID:         userUID,
		IsAuthenticated: true,
	}
	if err := s.cache.Set(key(id), session, s.ttl); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Get возвращает сессию по идентификатору или ErrNotFound.
func (s *Store) Get(id string) (*models.Session, error) {
	const op = "sessions.Get"
	var session models.Session
	found, err := s.cache.Get(key(id), &session)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return &session, nil
}

// Destroy удаляет сессию. Удаление несуществующей сессии не является ошибкой.
func (s *Store) Destroy(id string) error {
	const op = "sessions.Destroy"
	if err := s.cache.Invalidate(key(id)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func key(id string) string {
	return "session:" + id
}
