// Package poesisverse предоставляет маршруты для основного приложения.
package poesisverse

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danengatsby/poesisverse/internal/config"
	"github.com/danengatsby/poesisverse/internal/http/handlers/admin/userlist"
	"github.com/danengatsby/poesisverse/internal/http/handlers/admin/userremove"
	"github.com/danengatsby/poesisverse/internal/http/handlers/auth/login"
	"github.com/danengatsby/poesisverse/internal/http/handlers/auth/logout"
	"github.com/danengatsby/poesisverse/internal/http/handlers/auth/register"
	"github.com/danengatsby/poesisverse/internal/http/handlers/auth/verify"
	bookmarklist "github.com/danengatsby/poesisverse/internal/http/handlers/bookmark/list"
	"github.com/danengatsby/poesisverse/internal/http/handlers/bookmark/mark"
	"github.com/danengatsby/poesisverse/internal/http/handlers/bookmark/unmark"
	"github.com/danengatsby/poesisverse/internal/http/handlers/health"
	"github.com/danengatsby/poesisverse/internal/http/handlers/payment/intent"
	"github.com/danengatsby/poesisverse/internal/http/handlers/payment/webhook"
	"github.com/danengatsby/poesisverse/internal/http/handlers/poem/create"
	poemlist "github.com/danengatsby/poesisverse/internal/http/handlers/poem/list"
	"github.com/danengatsby/poesisverse/internal/http/handlers/poem/read"
	"github.com/danengatsby/poesisverse/internal/http/handlers/poem/remove"
	"github.com/danengatsby/poesisverse/internal/http/handlers/poem/update"
	"github.com/danengatsby/poesisverse/internal/http/handlers/subscription/activate"
	"github.com/danengatsby/poesisverse/internal/http/handlers/subscription/status"
	"github.com/danengatsby/poesisverse/internal/http/middlewarectx"
	authservice "github.com/danengatsby/poesisverse/internal/services/auth"
	"github.com/danengatsby/poesisverse/internal/services/bookmark"
	"github.com/danengatsby/poesisverse/internal/services/payment"
	"github.com/danengatsby/poesisverse/internal/services/poem"
	subservice "github.com/danengatsby/poesisverse/internal/services/subscription"
	"github.com/danengatsby/poesisverse/internal/storage/repository"
)

// Services объединяет доменные сервисы, нужные маршрутам.
type Services struct {
	Auth         *authservice.AuthService
	Poems        *poem.PoemService
	Bookmarks    *bookmark.BookmarkService
	Subscription *subservice.SubscriptionService
	Payments     *payment.PaymentService
	Users        *repository.Storage
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, s *Services) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	r.Use(middlewarectx.RateLimitMiddleware(logger))
	r.Use(middlewarectx.SessionMiddleware(s.Auth, logger))

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth, cfg.SessionTTL).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth, cfg.SessionTTL).ServeHTTP)
		r.Get("/verify", verify.New(logger, s.Auth).ServeHTTP)
		r.Get("/poems", poemlist.New(logger, s.Poems).ServeHTTP)
		r.Get("/poems/{id}", read.New(logger, s.Poems).ServeHTTP)

		// Webhook endpoint (без аутентификации, подпись в заголовке)
		r.Post("/payments/webhook", webhook.New(logger, s.Subscription, cfg.Payment.WebhookSecret).ServeHTTP)

		// Группа с обязательной сессией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireAuth(logger))
			r.Post("/logout", logout.New(logger, s.Auth).ServeHTTP)
			r.Post("/bookmarks/{id}", mark.New(logger, s.Bookmarks).ServeHTTP)
			r.Delete("/bookmarks/{id}", unmark.New(logger, s.Bookmarks).ServeHTTP)
			r.Get("/bookmarks", bookmarklist.New(logger, s.Bookmarks).ServeHTTP)
			r.Post("/subscription/activate", activate.New(logger, s.Subscription).ServeHTTP)
			r.Get("/subscription", status.New(logger, s.Subscription).ServeHTTP)
			r.Post("/payments/intent", intent.New(logger, s.Payments).ServeHTTP)
		})

		// Административная панель
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireAdmin(logger))
			r.Post("/poems", create.New(logger, s.Poems).ServeHTTP)
			r.Put("/poems/{id}", update.New(logger, s.Poems).ServeHTTP)
			r.Delete("/poems/{id}", remove.New(logger, s.Poems).ServeHTTP)
			r.Get("/admin/users", userlist.New(logger, s.Users).ServeHTTP)
			r.Delete("/admin/users/{uid}", userremove.New(logger, s.Users).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", health.New(logger).ServeHTTP)
}
