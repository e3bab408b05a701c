// Package list реализует HTTP-обработчик списка закладок пользователя.
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
	List(ctx context.Context, userUID string, limit, offset int) ([]*models.Poem, error)
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
	const op = "handlers.bookmark.list"

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

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	poems, err := h.service.List(r.Context(), user.UID, limit, offset)
	if err != nil {
		log.Error("failed to list bookmarks", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list bookmarks"))
		return
	}

	caller := access.Caller{Authenticated: true, User: user}
	now := time.Now().UTC()
	projections := make([]access.Projection, 0, len(poems))
	for _, p := range poems {
		projections = append(projections, access.Evaluate(p, caller, now))
	}

	log.Info("bookmarks listed", slog.Int("count", len(projections)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"poems": projections,
		"count": len(projections),
	}))
}
