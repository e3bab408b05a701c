// Package payment содержит сервис создания платежей за подписку
// через внешний платежный шлюз.
package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/danengatsby/poesisverse/internal/lib/plan"
	"github.com/danengatsby/poesisverse/internal/lib/sl"
	"github.com/danengatsby/poesisverse/internal/models"
	"github.com/danengatsby/poesisverse/internal/paymentprovider"
)

type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	SetStripeCustomerID(ctx context.Context, userUID, customerID string) error
}

type Gateway interface {
	CreateCustomer(ctx context.Context, req paymentprovider.CreateCustomerRequest) (*paymentprovider.Customer, error)
	CreatePaymentIntent(ctx context.Context, req paymentprovider.CreatePaymentIntentRequest) (*paymentprovider.PaymentIntent, error)
}

// Pricing задает стоимость тарифов в минимальных единицах валюты.
type Pricing struct {
	MonthlyCents int64
	AnnualCents  int64
	Currency     string
}

type PaymentService struct {
	users   UserRepository
	gateway Gateway
	pricing Pricing
	log     *slog.Logger
}

func New(users UserRepository, gateway Gateway, pricing Pricing, log *slog.Logger) *PaymentService {
	return &PaymentService{
		users:   users,
		gateway: gateway,
		pricing: pricing,
		log:     log,
	}
}

// CreateIntent создает намерение платежа за подписку выбранного тарифа.
// Если у пользователя нет клиента в шлюзе, он создается и привязывается.
func (s *PaymentService) CreateIntent(ctx context.Context, userUID, planType string) (*paymentprovider.PaymentIntent, error) {
	const op = "services.payment.CreateIntent"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	kind := plan.Normalize(planType)
	amount := s.pricing.MonthlyCents
	if kind == plan.Annual {
		amount = s.pricing.AnnualCents
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, paymentprovider.CreatePaymentIntentRequest{
		Amount:   amount,
		Currency: s.pricing.Currency,
		Customer: customerID,
		Metadata: map[string]string{
			"user_uid":  user.UID,
			"plan_type": string(kind),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("payment intent created",
		slog.String("user_uid", user.UID),
		slog.String("intent_id", intent.ID),
		slog.Int64("amount", amount))
	return intent, nil
}

// ensureCustomer возвращает идентификатор клиента в шлюзе,
// создавая и сохраняя его при первом обращении.
func (s *PaymentService) ensureCustomer(ctx context.Context, user *models.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	customer, err := s.gateway.CreateCustomer(ctx, paymentprovider.CreateCustomerRequest{
		Email: user.Email,
		Name:  user.Username,
		Metadata: map[string]string{
			"user_uid": user.UID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}

	if err := s.users.SetStripeCustomerID(ctx, user.UID, customer.ID); err != nil {
		// Клиент в шлюзе уже существует, при следующем запросе будет создан заново.
		s.log.Error("failed to save stripe customer id", sl.Err(err))
		return "", fmt.Errorf("failed to save customer id: %w", err)
	}

	return customer.ID, nil
}
