// Package verify реализует HTTP-обработчик подтверждения электронной почты
// по токену из приветственного письма.
package verify

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/danengatsby/poesisverse/internal/http/response"
	"github.com/danengatsby/poesisverse/internal/lib/sl"
)

type Service interface {
	VerifyEmail(ctx context.Context, token string) error
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := r.URL.Query().Get("token")
	if token == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("token is required"))
		return
	}

	if err := h.service.VerifyEmail(r.Context(), token); err != nil {
		log.Info("email verification failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid or expired token"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "email verified",
	}))
}
