package services

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

	"github.com/danengatsby/poesisverse/internal/lib/password"
	"github.com/danengatsby/poesisverse/internal/lib/token"
	"github.com/danengatsby/poesisverse/internal/models"
	"github.com/danengatsby/poesisverse/internal/sessions"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}
func (m *UsersMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) SetEmailVerified(ctx context.Context, userUID string) error {
	return m.Called(ctx, userUID).Error(0)
}

type SessionsMock struct{ mock.Mock }

func (m *SessionsMock) Create(userUID string) (string, error) {
	args := m.Called(userUID)
	return args.String(0), args.Error(1)
}
func (m *SessionsMock) Get(id string) (*models.Session, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}
func (m *SessionsMock) Destroy(id string) error {
	return m.Called(id).Error(0)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) PublishWelcome(info models.WelcomeInfo) error {
	return m.Called(info).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newTestMaker() *token.Maker {
	return token.NewMaker("test-secret", time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(u *UsersMock, s *SessionsMock, n *NotifierMock)
		wantErr    bool
	}{
		{
			name: "успешная регистрация",
			setupMocks: func(u *UsersMock, s *SessionsMock, n *NotifierMock) {
				u.On("RegisterUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Username == "reader" && user.Role == "user" && user.PasswordHash != nil
				})).Return("uid-1", nil).Once()
				s.On("Create", "uid-1").Return("session-1", nil).Once()
				n.On("PublishWelcome", mock.MatchedBy(func(info models.WelcomeInfo) bool {
					return info.Email == "reader@example.com" && info.VerificationToken != ""
				})).Return(nil).Once()
			},
		},
		{
			name: "имя пользователя занято",
			setupMocks: func(u *UsersMock, _ *SessionsMock, _ *NotifierMock) {
				u.On("RegisterUser", mock.Anything, mock.Anything).
					Return("", models.ErrUsernameTaken).Once()
			},
			wantErr: true,
		},
		{
			name: "сбой публикации не мешает регистрации",
			setupMocks: func(u *UsersMock, s *SessionsMock, n *NotifierMock) {
				u.On("RegisterUser", mock.Anything, mock.Anything).Return("uid-1", nil).Once()
				s.On("Create", "uid-1").Return("session-1", nil).Once()
				n.On("PublishWelcome", mock.Anything).Return(errors.New("rabbitmq down")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			store := new(SessionsMock)
			notifier := new(NotifierMock)
			svc := NewAuthService(users, store, newTestMaker(), notifier, newNoopLogger())

			tt.setupMocks(users, store, notifier)

			sessionID, userUID, err := svc.Register(context.Background(), "reader@example.com", "reader", "secret123")
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "session-1", sessionID)
				assert.Equal(t, "uid-1", userUID)
			}

			users.AssertExpectations(t)
			store.AssertExpectations(t)
			notifier.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("secret123")
	require.NoError(t, err)

	user := &models.User{
		UID:          "uid-1",
		Username:     "reader",
		PasswordHash: &hash,
	}

	tests := []struct {
		name        string
		username    string
		rawPassword string
		setupMocks  func(u *UsersMock, s *SessionsMock)
		wantErr     error
	}{
		{
			name:        "успешный вход",
			username:    "reader",
			rawPassword: "secret123",
			setupMocks: func(u *UsersMock, s *SessionsMock) {
				u.On("GetUserByUsername", mock.Anything, "reader").Return(user, nil).Once()
				s.On("Create", "uid-1").Return("session-1", nil).Once()
			},
		},
		{
			name:        "неверный пароль",
			username:    "reader",
			rawPassword: "wrong",
			setupMocks: func(u *UsersMock, _ *SessionsMock) {
				u.On("GetUserByUsername", mock.Anything, "reader").Return(user, nil).Once()
			},
			wantErr: models.ErrInvalidCredentials,
		},
		{
			name:        "неизвестный пользователь",
			username:    "ghost",
			rawPassword: "secret123",
			setupMocks: func(u *UsersMock, _ *SessionsMock) {
				u.On("GetUserByUsername", mock.Anything, "ghost").
					Return(nil, models.ErrNotFound).Once()
			},
			wantErr: models.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			store := new(SessionsMock)
			svc := NewAuthService(users, store, newTestMaker(), new(NotifierMock), newNoopLogger())

			tt.setupMocks(users, store)

			sessionID, got, err := svc.Login(context.Background(), tt.username, tt.rawPassword)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "session-1", sessionID)
				assert.Equal(t, "uid-1", got.UID)
			}

			users.AssertExpectations(t)
			store.AssertExpectations(t)
		})
	}
}

func TestAuthService_ValidateSession(t *testing.T) {
	user := &models.User{UID: "uid-1", Username: "reader"}

	tests := []struct {
		name       string
		setupMocks func(u *UsersMock, s *SessionsMock)
		wantErr    error
	}{
		{
			name: "действующая сессия",
			setupMocks: func(u *UsersMock, s *SessionsMock) {
				s.On("Get", "session-1").
					Return(&models.Session{UserUID: "uid-1", IsAuthenticated: true}, nil).Once()
				u.On("GetUser", mock.Anything, "uid-1").Return(user, nil).Once()
			},
		},
		{
			name: "сессия не найдена",
			setupMocks: func(_ *UsersMock, s *SessionsMock) {
				s.On("Get", "session-1").Return(nil, sessions.ErrNotFound).Once()
			},
			wantErr: sessions.ErrNotFound,
		},
		{
			name: "пользователь удален, сессия недействительна",
			setupMocks: func(u *UsersMock, s *SessionsMock) {
				s.On("Get", "session-1").
					Return(&models.Session{UserUID: "uid-1", IsAuthenticated: true}, nil).Once()
				u.On("GetUser", mock.Anything, "uid-1").Return(nil, models.ErrNotFound).Once()
			},
			wantErr: sessions.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			store := new(SessionsMock)
			svc := NewAuthService(users, store, newTestMaker(), new(NotifierMock), newNoopLogger())

			tt.setupMocks(users, store)

			got, err := svc.ValidateSession(context.Background(), "session-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "uid-1", got.UID)
			}

			users.AssertExpectations(t)
			store.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	store := new(SessionsMock)
	store.On("Destroy", "session-1").Return(nil).Once()
	svc := NewAuthService(new(UsersMock), store, newTestMaker(), new(NotifierMock), newNoopLogger())

	require.NoError(t, svc.Logout("session-1"))
	store.AssertExpectations(t)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	maker := newTestMaker()

	t.Run("валидный токен помечает адрес подтвержденным", func(t *testing.T) {
		tokenStr, err := maker.Generate("uid-1", "reader@example.com")
		require.NoError(t, err)

		users := new(UsersMock)
		users.On("SetEmailVerified", mock.Anything, "uid-1").Return(nil).Once()
		svc := NewAuthService(users, new(SessionsMock), maker, new(NotifierMock), newNoopLogger())

		require.NoError(t, svc.VerifyEmail(context.Background(), tokenStr))
		users.AssertExpectations(t)
	})

	t.Run("мусорный токен отклоняется", func(t *testing.T) {
		users := new(UsersMock)
		svc := NewAuthService(users, new(SessionsMock), maker, new(NotifierMock), newNoopLogger())

		require.Error(t, svc.VerifyEmail(context.Background(), "not-a-token"))
		users.AssertNotCalled(t, "SetEmailVerified", mock.Anything, mock.Anything)
	})
}
