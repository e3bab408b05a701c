// Package middlewarectx содержит HTTP middleware сессионной аутентификации
// и вспомогательные функции доступа к данным запроса в контексте.
//
// SessionMiddleware читает cookie с идентификатором сессии и, если сессия
// действительна, кладет пользователя в контекст запроса. Анонимные запросы
// проходят дальше без пользователя: решение о доступе принимают
// RequireAuth и RequireAdmin.
package middlewarectx

import (
	"context"

	"github.com/danengatsby/poesisverse/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User — ключ для пользователя текущей сессии в контексте.
const User Key = "user"

// SessionCookie — имя cookie с идентификатором сессии.
const SessionCookie = "session_id"

// UserFromContext возвращает пользователя текущей сессии, если он есть.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(User).(*models.User)
	return user, ok && user != nil
}
