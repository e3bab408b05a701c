// Package list реализует HTTP-обработчик списка стихотворений каталога.
// Каждое стихотворение проходит через проекцию доступа текущего читателя.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/danengatsby/poesisverse/internal/http/middlewarectx"
	"github.com/danengatsby/poesisverse/internal/http/response"
	"github.com/danengatsby/poesisverse/internal/lib/sl"
	"github.com/danengatsby/poesisverse/internal/models"
	"github.com/danengatsby/poesisverse/internal/services/access"
)

const defaultLimit = 20

type Service interface {
	List(ctx context.Context, limit, offset int) ([]*models.Poem, error)
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
	const op = "handlers.poem.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	poems, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list poems", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list poems"))
		return
	}

	caller := access.Caller{}
	if user, ok := middlewarectx.UserFromContext(r.Context()); ok {
		caller = access.Caller{Authenticated: true, User: user}
	}

	now := time.Now().UTC()
	projections := make([]access.Projection, 0, len(poems))
	for _, poem := range poems {
		projections = append(projections, access.Evaluate(poem, caller, now))
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"poems": projections,
		"count": len(projections),
	}))
}
