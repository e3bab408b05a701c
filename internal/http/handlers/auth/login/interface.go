package login

import (
	"context"

	"github.com/danengatsby/poesisverse/internal/models"
)

type Service interface {
	Login(ctx context.Context, username, password string) (string, *models.User, error)
}
