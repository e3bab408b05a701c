// Package userremove реализует HTTP-обработчик удаления пользователя
// администратором.
package userremove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/danengatsby/poesisverse/internal/http/response"
	"github.com/danengatsby/poesisverse/internal/lib/sl"
)

type Service interface {
	DeleteUser(ctx context.Context, userUID string) (int, error)
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
	const op = "handlers.admin.userremove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "uid")
	if userUID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing user uid"))
		return
	}

	count, err := h.service.DeleteUser(r.Context(), userUID)
	if err != nil {
		log.Error("failed to delete user", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete user"))
		return
	}
	if count == 0 {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}

	log.Info("user deleted", slog.String("user_uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid": userUID,
	}))
}
