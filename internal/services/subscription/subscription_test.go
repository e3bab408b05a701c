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

	"github.com/danengatsby/poesisverse/internal/lib/plan"
	"github.com/danengatsby/poesisverse/internal/models"
	"github.com/danengatsby/poesisverse/internal/paymentprovider"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) UpdateSubscription(ctx context.Context, userUID string, isSubscribed bool, subscribedAt, endDate time.Time) error {
	return m.Called(ctx, userUID, isSubscribed, subscribedAt, endDate).Error(0)
}
func (m *UsersMock) SetSubscriptionFlag(ctx context.Context, userUID string, isSubscribed bool) error {
	return m.Called(ctx, userUID, isSubscribed).Error(0)
}
func (m *UsersMock) SetStripeSubscriptionID(ctx context.Context, userUID, subscriptionID string) error {
	return m.Called(ctx, userUID, subscriptionID).Error(0)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) PublishSubscriptionActivated(info models.ActivationInfo) error {
	return m.Called(info).Error(0)
}

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) GetSubscription(ctx context.Context, subscriptionID string) (*paymentprovider.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Subscription), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSubscriptionService_Activate(t *testing.T) {
	user := &models.User{
		UID:      "uid-1",
		Username: "reader",
		Email:    "reader@example.com",
	}

	tests := []struct {
		name       string
		planType   string
		setupMocks func(u *UsersMock, n *NotifierMock)
		wantErr    bool
	}{
		{
			name:     "успешная активация месячного плана",
			planType: "monthly",
			setupMocks: func(u *UsersMock, n *NotifierMock) {
				u.On("GetUser", mock.Anything, "uid-1").Return(user, nil).Once()
				u.On("UpdateSubscription", mock.Anything, "uid-1", true, mock.Anything, mock.Anything).
					Return(nil).Once()
				n.On("PublishSubscriptionActivated", mock.MatchedBy(func(info models.ActivationInfo) bool {
					return info.Email == "reader@example.com" && info.PlanType == "monthly"
				})).Return(nil).Once()
			},
		},
		{
			name:     "синоним yearly нормализуется в annual",
			planType: "yearly",
			setupMocks: func(u *UsersMock, n *NotifierMock) {
				u.On("GetUser", mock.Anything, "uid-1").Return(user, nil).Once()
				u.On("UpdateSubscription", mock.Anything, "uid-1", true, mock.Anything, mock.Anything).
					Return(nil).Once()
				n.On("PublishSubscriptionActivated", mock.MatchedBy(func(info models.ActivationInfo) bool {
					return info.PlanType == "annual"
				})).Return(nil).Once()
			},
		},
		{
			name:     "неизвестный план трактуется как месячный",
			planType: "weekly",
			setupMocks: func(u *UsersMock, n *NotifierMock) {
				u.On("GetUser", mock.Anything, "uid-1").Return(user, nil).Once()
				u.On("UpdateSubscription", mock.Anything, "uid-1", true, mock.Anything, mock.Anything).
					Return(nil).Once()
				n.On("PublishSubscriptionActivated", mock.MatchedBy(func(info models.ActivationInfo) bool {
					return info.PlanType == "monthly"
				})).Return(nil).Once()
			},
		},
		{
			name:     "сбой уведомления не откатывает активацию",
			planType: "annual",
			setupMocks: func(u *UsersMock, n *NotifierMock) {
				u.On("GetUser", mock.Anything, "uid-1").Return(user, nil).Once()
				u.On("UpdateSubscription", mock.Anything, "uid-1", true, mock.Anything, mock.Anything).
					Return(nil).Once()
				n.On("PublishSubscriptionActivated", mock.Anything).
					Return(errors.New("rabbitmq down")).Once()
			},
		},
		{
			name:     "пользователь не найден",
			planType: "monthly",
			setupMocks: func(u *UsersMock, _ *NotifierMock) {
				u.On("GetUser", mock.Anything, "uid-1").Return(nil, models.ErrNotFound).Once()
			},
			wantErr: true,
		},
		{
			name:     "ошибка записи в хранилище",
			planType: "monthly",
			setupMocks: func(u *UsersMock, _ *NotifierMock) {
				u.On("GetUser", mock.Anything, "uid-1").Return(user, nil).Once()
				u.On("UpdateSubscription", mock.Anything, "uid-1", true, mock.Anything, mock.Anything).
					Return(errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			notifier := new(NotifierMock)
			gateway := new(GatewayMock)
			svc := NewSubscriptionService(users, notifier, gateway, newNoopLogger())

			tt.setupMocks(users, notifier)

			info, err := svc.Activate(context.Background(), "uid-1", tt.planType)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.True(t, info.IsActive)
				kind := plan.Normalize(tt.planType)
				assert.True(t, plan.EndDate(kind, info.StartDate).Equal(info.EndDate))
				assert.Positive(t, info.DaysRemaining)
			}

			users.AssertExpectations(t)
			notifier.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_Status(t *testing.T) {
	now := time.Now().UTC()
	start := now.AddDate(0, -1, 0)
	futureEnd := now.Add(10*24*time.Hour + time.Hour)
	pastEnd := now.AddDate(0, 0, -3)

	tests := []struct {
		name              string
		user              *models.User
		wantActive        bool
		wantDaysRemaining int
	}{
		{
			name: "действующая подписка",
			user: &models.User{
				UID:                 "uid-1",
				IsSubscribed:        true,
				SubscribedAt:        &start,
				SubscriptionEndDate: &futureEnd,
			},
			wantActive:        true,
			wantDaysRemaining: 11,
		},
		{
			name: "истекшая подписка при поднятом флаге",
			user: &models.User{
				UID:                 "uid-1",
				IsSubscribed:        true,
				SubscribedAt:        &start,
				SubscriptionEndDate: &pastEnd,
			},
			wantActive:        false,
			wantDaysRemaining: -3,
		},
		{
			name:       "пользователь без подписки",
			user:       &models.User{UID: "uid-1"},
			wantActive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			users.On("GetUser", mock.Anything, "uid-1").Return(tt.user, nil).Once()
			svc := NewSubscriptionService(users, new(NotifierMock), new(GatewayMock), newNoopLogger())

			info, err := svc.Status(context.Background(), "uid-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantActive, info.IsActive)
			assert.Equal(t, tt.wantDaysRemaining, info.DaysRemaining)

			// Статус читается, ничего не перезаписывая
			users.AssertNotCalled(t, "SetSubscriptionFlag", mock.Anything, mock.Anything, mock.Anything)
			users.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_StatusWithGateway(t *testing.T) {
	now := time.Now().UTC()
	start := now.AddDate(0, -1, 0)
	futureEnd := now.AddDate(0, 1, 0)
	subID := "sub_123"

	tests := []struct {
		name       string
		user       *models.User
		setupMocks func(u *UsersMock, g *GatewayMock)
		wantActive bool
	}{
		{
			name: "шлюз согласен с локальным флагом",
			user: &models.User{
				UID:                  "uid-1",
				IsSubscribed:         true,
				SubscribedAt:         &start,
				SubscriptionEndDate:  &futureEnd,
				StripeSubscriptionID: &subID,
			},
			setupMocks: func(u *UsersMock, g *GatewayMock) {
				g.On("GetSubscription", mock.Anything, subID).
					Return(&paymentprovider.Subscription{ID: subID, Status: "active"}, nil).Once()
			},
			wantActive: true,
		},
		{
			name: "шлюз сообщает об отмене, флаг корректируется",
			user: &models.User{
				UID:                  "uid-1",
				IsSubscribed:         true,
				SubscribedAt:         &start,
				SubscriptionEndDate:  &futureEnd,
				StripeSubscriptionID: &subID,
			},
			setupMocks: func(u *UsersMock, g *GatewayMock) {
				g.On("GetSubscription", mock.Anything, subID).
					Return(&paymentprovider.Subscription{ID: subID, Status: "canceled"}, nil).Once()
				u.On("SetSubscriptionFlag", mock.Anything, "uid-1", false).Return(nil).Once()
			},
			wantActive: true, // ответ строится по локальным датам до коррекции
		},
		{
			name: "ошибка шлюза не мешает ответить локальными данными",
			user: &models.User{
				UID:                  "uid-1",
				IsSubscribed:         true,
				SubscribedAt:         &start,
				SubscriptionEndDate:  &futureEnd,
				StripeSubscriptionID: &subID,
			},
			setupMocks: func(_ *UsersMock, g *GatewayMock) {
				g.On("GetSubscription", mock.Anything, subID).
					Return(nil, errors.New("gateway timeout")).Once()
			},
			wantActive: true,
		},
		{
			name: "без идентификатора подписки шлюз не опрашивается",
			user: &models.User{
				UID:                 "uid-1",
				IsSubscribed:        true,
				SubscribedAt:        &start,
				SubscriptionEndDate: &futureEnd,
			},
			setupMocks: func(_ *UsersMock, _ *GatewayMock) {},
			wantActive: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			gateway := new(GatewayMock)
			users.On("GetUser", mock.Anything, "uid-1").Return(tt.user, nil).Once()
			tt.setupMocks(users, gateway)
			svc := NewSubscriptionService(users, new(NotifierMock), gateway, newNoopLogger())

			info, err := svc.StatusWithGateway(context.Background(), "uid-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantActive, info.IsActive)

			users.AssertExpectations(t)
			gateway.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_ReconcileFromGateway(t *testing.T) {
	knownSubID := "sub_123"
	user := &models.User{UID: "uid-1", IsSubscribed: true, StripeSubscriptionID: &knownSubID}
	userWithoutSubID := &models.User{UID: "uid-1", IsSubscribed: true}

	tests := []struct {
		name           string
		customerID     string
		subscriptionID string
		active         bool
		setupMocks     func(u *UsersMock)
		wantErr        bool
	}{
		{
			name:           "отмена подписки на стороне шлюза",
			customerID:     "cus_123",
			subscriptionID: "sub_123",
			active:         false,
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByStripeCustomerID", mock.Anything, "cus_123").Return(user, nil).Once()
				u.On("SetSubscriptionFlag", mock.Anything, "uid-1", false).Return(nil).Once()
			},
		},
		{
			name:           "флаг выставляется безусловно, даже без изменений",
			customerID:     "cus_123",
			subscriptionID: "sub_123",
			active:         true,
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByStripeCustomerID", mock.Anything, "cus_123").Return(user, nil).Once()
				u.On("SetSubscriptionFlag", mock.Anything, "uid-1", true).Return(nil).Once()
			},
		},
		{
			name:           "новый идентификатор подписки шлюза сохраняется",
			customerID:     "cus_123",
			subscriptionID: "sub_456",
			active:         true,
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByStripeCustomerID", mock.Anything, "cus_123").
					Return(userWithoutSubID, nil).Once()
				u.On("SetStripeSubscriptionID", mock.Anything, "uid-1", "sub_456").Return(nil).Once()
				u.On("SetSubscriptionFlag", mock.Anything, "uid-1", true).Return(nil).Once()
			},
		},
		{
			name:           "сбой сохранения идентификатора не мешает выставить флаг",
			customerID:     "cus_123",
			subscriptionID: "sub_456",
			active:         false,
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByStripeCustomerID", mock.Anything, "cus_123").
					Return(userWithoutSubID, nil).Once()
				u.On("SetStripeSubscriptionID", mock.Anything, "uid-1", "sub_456").
					Return(errors.New("db down")).Once()
				u.On("SetSubscriptionFlag", mock.Anything, "uid-1", false).Return(nil).Once()
			},
		},
		{
			name:           "неизвестный клиент шлюза",
			customerID:     "cus_unknown",
			subscriptionID: "sub_123",
			active:         false,
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByStripeCustomerID", mock.Anything, "cus_unknown").
					Return(nil, models.ErrNotFound).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			tt.setupMocks(users)
			svc := NewSubscriptionService(users, new(NotifierMock), new(GatewayMock), newNoopLogger())

			err := svc.ReconcileFromGateway(context.Background(), tt.customerID, tt.subscriptionID, tt.active)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			users.AssertExpectations(t)
		})
	}
}
