package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации в обменнике notifications.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Ключи маршрутизации для писем подписчикам и новым пользователям.
const (
	RoutingKeyActivated = "subscription.activated"
	RoutingKeyWelcome   = "welcome"
)

// GetNotificationQueues возвращает очереди воркера отправки писем.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.subscription.activated", RoutingKey: RoutingKeyActivated},
		{QueueName: "notification.welcome", RoutingKey: RoutingKeyWelcome},
	}
}
