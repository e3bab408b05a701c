// Package webhook реализует HTTP-обработчик событий платежного шлюза.
// Шлюз подписывает тело запроса HMAC-SHA256, подпись передается
// в заголовке X-Api-Signature.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/danengatsby/poesisverse/internal/lib/sl"
	"github.com/danengatsby/poesisverse/internal/models"
)

type Service interface {
	Activate(ctx context.Context, userUID, planType string) (*models.SubscriptionInfo, error)
	ReconcileFromGateway(ctx context.Context, customerID, subscriptionID string, active bool) error
}

type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
	}
}

type Payload struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Status   string            `json:"status"`
			Customer string            `json:"customer"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

const (
	EventPaymentSucceeded    = "payment_intent.succeeded"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// Проверка подписи webhook (X-Api-Signature)
func (h *Handler) verifySignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expectedSig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expectedSig), []byte(signature))
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("X-Api-Signature")
	if signature == "" || !h.verifySignature(h.webhookSecret, body, signature) {
		log.Error("invalid or missing webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch payload.Type {
	case EventPaymentSucceeded:
		userUID := payload.Data.Object.Metadata["user_uid"]
		planType := payload.Data.Object.Metadata["plan_type"]
		if userUID == "" {
			log.Error("webhook payment event without user_uid in metadata",
				slog.String("payment_id", payload.Data.Object.ID))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if _, err := h.service.Activate(r.Context(), userUID, planType); err != nil {
			log.Error("failed to activate subscription from webhook", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	case EventSubscriptionUpdated:
		active := payload.Data.Object.Status == "active" || payload.Data.Object.Status == "trialing"
		if err := h.service.ReconcileFromGateway(r.Context(), payload.Data.Object.Customer, payload.Data.Object.ID, active); err != nil {
			log.Error("failed to reconcile subscription from webhook", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	case EventSubscriptionDeleted:
		// Удаленная подписка неактивна независимо от статуса в payload.
		if err := h.service.ReconcileFromGateway(r.Context(), payload.Data.Object.Customer, payload.Data.Object.ID, false); err != nil {
			log.Error("failed to reconcile subscription from webhook", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	default:
		log.Info("ignored webhook event", slog.String("type", payload.Type))
	}

	log.Info("webhook processed successfully",
		slog.String("type", payload.Type),
		slog.String("object_id", payload.Data.Object.ID))
	w.WriteHeader(http.StatusOK)
}
