package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danengatsby/poesisverse/internal/models"
)

func TestNotifier_Publish(t *testing.T) {
	ctx := context.Background()
	rmqContainer, cleanup := SetupRabbitMQContainer(ctx, t)
	defer cleanup()

	amqpURI, err := GetAmqpURI(ctx, rmqContainer)
	require.NoError(t, err)

	conn, err := Connect(amqpURI, 3, time.Second)
	require.NoError(t, err)
	defer func() {
		if err := conn.Close(); err != nil {
			t.Errorf("failed to close connection: %v", err)
		}
	}()

	ch, err := SetupChannel(conn, GetNotificationQueues())
	require.NoError(t, err)
	defer func() {
		if err := ch.Close(); err != nil {
			t.Errorf("failed to close channel: %v", err)
		}
	}()

	notifier := NewNotifier(ch)

	t.Run("событие активации подписки доходит до очереди", func(t *testing.T) {
		endDate := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
		info := models.ActivationInfo{
			Email:    "reader@example.com",
			Username: "reader",
			PlanType: "annual",
			EndDate:  endDate,
		}

		err := notifier.PublishSubscriptionActivated(info)
		require.NoError(t, err)

		deliveries, err := ch.Consume("notification.subscription.activated", "test-consumer", true, false, false, false, nil)
		require.NoError(t, err)

		select {
		case d := <-deliveries:
			var got models.ActivationInfo
			require.NoError(t, json.Unmarshal(d.Body, &got))
			assert.Equal(t, info.Email, got.Email)
			assert.Equal(t, info.PlanType, got.PlanType)
			assert.True(t, endDate.Equal(got.EndDate))
			assert.Equal(t, "application/json", d.ContentType)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for message")
		}
	})

	t.Run("событие регистрации доходит до очереди", func(t *testing.T) {
		info := models.WelcomeInfo{
			Email:             "new@example.com",
			Username:          "newcomer",
			VerificationToken: "token123",
		}

		err := notifier.PublishWelcome(info)
		require.NoError(t, err)

		deliveries, err := ch.Consume("notification.welcome", "test-consumer2", true, false, false, false, nil)
		require.NoError(t, err)

		select {
		case d := <-deliveries:
			var got models.WelcomeInfo
			require.NoError(t, json.Unmarshal(d.Body, &got))
			assert.Equal(t, info, got)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for message")
		}
	})
}
