// Package userlist реализует HTTP-обработчик списка пользователей
// для административной панели.
package userlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/danengatsby/poesisverse/internal/http/response"
	"github.com/danengatsby/poesisverse/internal/lib/sl"
	"github.com/danengatsby/poesisverse/internal/models"
)

const defaultLimit = 20

type Service interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
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

// UserView — проекция пользователя для админки, без чувствительных полей.
type UserView struct {
	UID                 string     `json:"uid"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	Role                string     `json:"role"`
	IsSubscribed        bool       `json:"is_subscribed"`
	SubscriptionEndDate *time.Time `json:"subscription_end_date,omitempty"`
	EmailVerified       bool       `json:"email_verified"`
	CreatedAt           time.Time  `json:"created_at"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	users, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list users"))
		return
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, UserView{
			UID:                 u.UID,
			Username:            u.Username,
			Email:               u.Email,
			Role:                u.Role,
			IsSubscribed:        u.IsSubscribed,
			SubscriptionEndDate: u.SubscriptionEndDate,
			EmailVerified:       u.EmailVerified,
			CreatedAt:           u.CreatedAt,
		})
	}

	log.Info("users listed", slog.Int("count", len(views)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"users": views,
		"count": len(views),
	}))
}
