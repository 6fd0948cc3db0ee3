package users

import (
	"context"

	"github.com/dmitrijs2005/gophtodo/internal/server/models"
)

// Repository stores user accounts. Lookups return common.ErrorNotFound for
// absent users; Create returns common.ErrUsernameTaken on a duplicate name.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}
