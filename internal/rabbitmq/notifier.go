package rabbitmq

import (
	"github.com/streadway/amqp"

	"github.com/danengatsby/poesisverse/internal/models"
)

// Notifier публикует события для воркера отправки писем.
type Notifier struct {
	ch *amqp.Channel
}

// NewNotifier создает Notifier поверх готового канала.
func NewNotifier(ch *amqp.Channel) *Notifier {
	return &Notifier{ch: ch}
}

// PublishSubscriptionActivated отправляет событие активации подписки.
func (n *Notifier) PublishSubscriptionActivated(info models.ActivationInfo) error {
	return PublishMessage(n.ch, "notifications", RoutingKeyActivated, info)
}

// PublishWelcome отправляет событие регистрации нового пользователя.
func (n *Notifier) PublishWelcome(info models.WelcomeInfo) error {
	return PublishMessage(n.ch, "notifications", RoutingKeyWelcome, info)
}
