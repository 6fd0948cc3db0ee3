package todos

import (
	"context"

	"github.com/dmitrijs2005/gophtodo/internal/server/models"
)

// Repository stores todos. Single-row lookups return common.ErrorNotFound
// for absent ids. Ownership is checked by the caller.
type Repository interface {
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	GetByID(ctx context.Context, id int64) (*models.Todo, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Todo, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Todo, error)
	Update(ctx context.Context, todo *models.Todo) error
	Delete(ctx context.Context, id int64) error
}
