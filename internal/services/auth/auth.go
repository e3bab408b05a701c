// Package services содержит логику бизнес-уровня для регистрации,
// входа и серверных сессий пользователей.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danengatsby/poesisverse/internal/lib/password"
	"github.com/danengatsby/poesisverse/internal/lib/sl"
	"github.com/danengatsby/poesisverse/internal/lib/token"
	"github.com/danengatsby/poesisverse/internal/models"
	"github.com/danengatsby/poesisverse/internal/sessions"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// SetEmailVerified помечает адрес пользователя подтвержденным.
	SetEmailVerified(ctx context.Context, userUID string) error
}

// SessionStore описывает серверное хранилище сессий.
type SessionStore interface {
	Create(userUID string) (string, error)
	Get(id string) (*models.Session, error)
	Destroy(id string) error
}

// Notifier публикует событие регистрации для отправки приветственного письма.
type Notifier interface {
	PublishWelcome(info models.WelcomeInfo) error
}

// AuthService отвечает за регистрацию, вход, выход и проверку сессий.
type AuthService struct {
	users    UserRepository
	sessions SessionStore
	tokens   *token.Maker
	notifier Notifier
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, store SessionStore, tokens *token.Maker, notifier Notifier, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: store,
		tokens:   tokens,
		notifier: notifier,
		log:      log,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной
// ролью "user", открывает сессию и публикует приветственное событие.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (sessionID, userUID string, err error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", "", err
	}
	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: &hashed,
		Role:         "user", // дефолтная роль при регистрации
	}
	userUID, err = s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", "", err
	}

	sessionID, err = s.sessions.Create(userUID)
	if err != nil {
		return "", "", err
	}

	// Письмо не должно блокировать регистрацию
	verificationToken, err := s.tokens.Generate(userUID, email)
	if err != nil {
		s.log.Error("failed to generate verification token", sl.Err(err))
		return sessionID, userUID, nil
	}
	err = s.notifier.PublishWelcome(models.WelcomeInfo{
		Email:             email,
		Username:          username,
		VerificationToken: verificationToken,
	})
	if err != nil {
		s.log.Error("failed to publish welcome event", sl.Err(err))
	}

	return sessionID, userUID, nil
}

// Login проверяет пароль пользователя и открывает новую сессию.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (string, *models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", nil, models.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if user.PasswordHash == nil {
		return "", nil, models.ErrInvalidCredentials
	}
	if err := password.CompareHash(*user.PasswordHash, rawPassword); err != nil {
		return "", nil, models.ErrInvalidCredentials
	}

	sessionID, err := s.sessions.Create(user.UID)
	if err != nil {
		return "", nil, err
	}
	return sessionID, user, nil
}

// Logout закрывает сессию. Повторный выход не является ошибкой.
func (s *AuthService) Logout(sessionID string) error {
	return s.sessions.Destroy(sessionID)
}

// ValidateSession возвращает пользователя по идентификатору сессии.
// Сессия удаленного пользователя считается недействительной.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*models.User, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(ctx, session.UserUID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, sessions.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// VerifyEmail проверяет токен подтверждения и помечает адрес подтвержденным.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenStr string) error {
	claims, err := s.tokens.Parse(tokenStr)
	if err != nil {
		return err
	}
	return s.users.SetEmailVerified(ctx, claims.UserUID)
}
