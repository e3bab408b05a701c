// Package intent реализует HTTP-обработчик создания намерения платежа
// за подписку. Клиенту возвращается client_secret для завершения
// оплаты на стороне шлюза.
package intent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/danengatsby/poesisverse/internal/http/middlewarectx"
	"github.com/danengatsby/poesisverse/internal/http/response"
	"github.com/danengatsby/poesisverse/internal/lib/sl"
	"github.com/danengatsby/poesisverse/internal/paymentprovider"
)

type Request struct {
	PlanType string `json:"plan_type" validate:"required"`
}

type Service interface {
	CreateIntent(ctx context.Context, userUID, planType string) (*paymentprovider.PaymentIntent, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.intent"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("no user in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var validateErr validator.ValidationErrors
		errors.As(err, &validateErr)
		log.Error("invalid request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(validateErr))
		return
	}

	intent, err := h.service.CreateIntent(r.Context(), user.UID, req.PlanType)
	if err != nil {
		var apiErr *paymentprovider.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Category() {
			case paymentprovider.CategoryAuth:
				log.Error("gateway authentication failed", sl.Err(err))
				render.Status(r, http.StatusBadGateway)
				render.JSON(w, r, response.Error("payment provider configuration error"))
				return
			case paymentprovider.CategoryInvalidRequest:
				log.Error("gateway rejected payment intent", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("payment request rejected"))
				return
			default:
				log.Error("gateway temporarily unavailable", sl.Err(err))
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, response.Error("payment provider unavailable, try again later"))
				return
			}
		}
		log.Error("failed to create payment intent", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create payment intent"))
		return
	}

	log.Info("payment intent created",
		slog.String("user_uid", user.UID),
		slog.String("intent_id", intent.ID),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"intent_id":     intent.ID,
		"client_secret": intent.ClientSecret,
		"amount":        intent.Amount,
		"currency":      intent.Currency,
	}))
}
