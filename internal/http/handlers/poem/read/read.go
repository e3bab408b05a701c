// Package read реализует HTTP-обработчик для получения стихотворения по ID.
//
// Handler извлекает ID из URL-параметров, читает стихотворение через
// бизнес-логику и строит проекцию для текущего читателя: премиальный текст
// урезается до превью, если у читателя нет активной подписки.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/danengatsby/poesisverse/internal/http/middlewarectx"
	"github.com/danengatsby/poesisverse/internal/http/response"
	"github.com/danengatsby/poesisverse/internal/lib/sl"
	"github.com/danengatsby/poesisverse/internal/models"
	"github.com/danengatsby/poesisverse/internal/services/access"
)

// Handler обрабатывает запросы на получение стихотворения по идентификатору.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения стихотворения.
type Service interface {
	Read(ctx context.Context, id int) (*models.Poem, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.poem.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	poem, err := h.service.Read(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("poem not found"))
			return
		}
		log.Error("failed to read poem", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read poem"))
		return
	}

	caller := access.Caller{}
	if user, ok := middlewarectx.UserFromContext(r.Context()); ok {
		caller = access.Caller{Authenticated: true, User: user}
	}
	projection := access.Evaluate(poem, caller, time.Now().UTC())

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"poem": projection,
	}))
}
