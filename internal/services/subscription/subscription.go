// Package services содержит бизнес-логику жизненного цикла подписки.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/danengatsby/poesisverse/internal/lib/plan"
	"github.com/danengatsby/poesisverse/internal/lib/sl"
	"github.com/danengatsby/poesisverse/internal/models"
	"github.com/danengatsby/poesisverse/internal/paymentprovider"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// GetUserByStripeCustomerID возвращает пользователя по идентификатору клиента шлюза.
	GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	// UpdateSubscription записывает полное состояние подписки пользователя.
	UpdateSubscription(ctx context.Context, userUID string, isSubscribed bool, subscribedAt, endDate time.Time) error
	// SetSubscriptionFlag выставляет только флаг подписки, не трогая даты.
	SetSubscriptionFlag(ctx context.Context, userUID string, isSubscribed bool) error
	// SetStripeSubscriptionID привязывает идентификатор подписки шлюза к пользователю.
	SetStripeSubscriptionID(ctx context.Context, userUID, subscriptionID string) error
}

// Notifier публикует события для последующей отправки писем.
type Notifier interface {
	PublishSubscriptionActivated(info models.ActivationInfo) error
}

// Gateway запрашивает состояние подписки у платежного шлюза.
type Gateway interface {
	GetSubscription(ctx context.Context, subscriptionID string) (*paymentprovider.Subscription, error)
}

// SubscriptionService реализует активацию подписки и расчет её статуса.
type SubscriptionService struct {
	users    UserRepository
	notifier Notifier
	gateway  Gateway
	log      *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(users UserRepository, notifier Notifier, gateway Gateway, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		users:    users,
		notifier: notifier,
		gateway:  gateway,
		log:      log,
	}
}

// Activate включает подписку пользователя с текущего момента.
// Повторная активация перезаписывает прежние даты, побеждает последняя запись.
func (s *SubscriptionService) Activate(ctx context.Context, userUID, planType string) (*models.SubscriptionInfo, error) {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	kind := plan.Normalize(planType)
	now := time.Now().UTC()
	endDate := plan.EndDate(kind, now)

	if err := s.users.UpdateSubscription(ctx, userUID, true, now, endDate); err != nil {
		return nil, err
	}

	s.log.Info("subscription activated",
		slog.String("user_uid", userUID),
		slog.String("plan", string(kind)),
		slog.Time("end_date", endDate))

	// Сбой уведомления не должен откатывать уже активированную подписку
	err = s.notifier.PublishSubscriptionActivated(models.ActivationInfo{
		Email:    user.Email,
		Username: user.Username,
		PlanType: string(kind),
		EndDate:  endDate,
	})
	if err != nil {
		s.log.Error("failed to publish activation event", sl.Err(err))
	}

	return &models.SubscriptionInfo{
		StartDate:     now,
		EndDate:       endDate,
		DaysRemaining: plan.DaysRemaining(endDate, now),
		IsActive:      true,
	}, nil
}

// Status возвращает состояние подписки, вычисленное по датам на момент запроса.
// Сохраненный флаг при чтении не перезаписывается.
func (s *SubscriptionService) Status(ctx context.Context, userUID string) (*models.SubscriptionInfo, error) {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	return buildInfo(user, time.Now().UTC()), nil
}

// StatusWithGateway возвращает состояние подписки и лениво сверяет флаг
// с платежным шлюзом. Ошибки шлюза не мешают ответить по локальным данным.
func (s *SubscriptionService) StatusWithGateway(ctx context.Context, userUID string) (*models.SubscriptionInfo, error) {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	info := buildInfo(user, now)

	if user.StripeSubscriptionID == nil {
		return info, nil
	}

	remote, err := s.gateway.GetSubscription(ctx, *user.StripeSubscriptionID)
	if err != nil {
		s.log.Warn("failed to query payment gateway, serving local state", sl.Err(err))
		return info, nil
	}

	if remote.IsActive() != user.IsSubscribed {
		s.log.Info("reconciling subscription flag with gateway",
			slog.String("user_uid", userUID),
			slog.Bool("gateway_active", remote.IsActive()))
		if err := s.users.SetSubscriptionFlag(ctx, userUID, remote.IsActive()); err != nil {
			s.log.Error("failed to reconcile subscription flag", sl.Err(err))
		}
	}

	return info, nil
}

// ReconcileFromGateway применяет состояние подписки, пришедшее через вебхук.
// Вызывается по идентификатору клиента шлюза, флаг выставляется безусловно.
// Идентификатор подписки шлюза запоминается для ленивой сверки при чтении статуса.
func (s *SubscriptionService) ReconcileFromGateway(ctx context.Context, customerID, subscriptionID string, active bool) error {
	user, err := s.users.GetUserByStripeCustomerID(ctx, customerID)
	if err != nil {
		return err
	}

	if subscriptionID != "" && (user.StripeSubscriptionID == nil || *user.StripeSubscriptionID != subscriptionID) {
		if err := s.users.SetStripeSubscriptionID(ctx, user.UID, subscriptionID); err != nil {
			s.log.Error("failed to save gateway subscription id", sl.Err(err))
		}
	}

	s.log.Info("applying gateway subscription state",
		slog.String("user_uid", user.UID),
		slog.Bool("active", active))

	return s.users.SetSubscriptionFlag(ctx, user.UID, active)
}

func buildInfo(user *models.User, now time.Time) *models.SubscriptionInfo {
	info := &models.SubscriptionInfo{}
	if user.SubscribedAt != nil {
		info.StartDate = *user.SubscribedAt
	}
	if user.SubscriptionEndDate != nil {
		info.EndDate = *user.SubscriptionEndDate
		info.DaysRemaining = plan.DaysRemaining(*user.SubscriptionEndDate, now)
		info.IsActive = info.DaysRemaining > 0
		return info
	}
	info.IsActive = user.IsSubscribed
	return info
}
