// Package logout реализует HTTP-обработчик выхода пользователя.
// Сессия удаляется на сервере, cookie стирается. Повторный выход безопасен.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/danengatsby/poesisverse/internal/http/middlewarectx"
	"github.com/danengatsby/poesisverse/internal/http/response"
	"github.com/danengatsby/poesisverse/internal/lib/sl"
)

type Service interface {
	Logout(sessionID string) error
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
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	cookie, err := r.Cookie(middlewarectx.SessionCookie)
	if err == nil && cookie.Value != "" {
		if err := h.service.Logout(cookie.Value); err != nil {
			log.Error("failed to destroy session", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to logout"))
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middlewarectx.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "logged out",
	}))
}
