package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/dbx"
	"github.com/dmitrijs2005/gophtodo/internal/server/forms"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/dmitrijs2005/gophtodo/internal/server/repositories/repomanager"
)

// TodoService manages the todos of an authenticated user. Every method takes
// the subject id and refuses todos owned by someone else with
// common.ErrorForbidden.
type TodoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTodoService(db *sql.DB, m repomanager.RepositoryManager) *TodoService {
	return &TodoService{db: db, repomanager: m}
}

// List returns the user's todos ordered by id.
func (s *TodoService) List(ctx context.Context, userID int64) ([]*models.Todo, error) {
	list, err := s.repomanager.Todos(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return list, nil
}

// Create stores a new, incomplete todo for userID.
func (s *TodoService) Create(ctx context.Context, userID int64, form forms.TodoForm) (*models.Todo, error) {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}
	todo, err := s.repomanager.Todos(s.db).Create(ctx, &models.Todo{
		UserID:      userID,
		Title:       form.Title,
		Description: form.Description,
		Importance:  form.Importance,
	})
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return todo, nil
}

// Get returns todo id if userID owns it.
func (s *TodoService) Get(ctx context.Context, userID, id int64) (*models.Todo, error) {
	todo, err := s.repomanager.Todos(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !todo.OwnedBy(userID) {
		return nil, common.ErrorForbidden
	}
	return todo, nil
}

// Update replaces the title, description and importance of todo id.
func (s *TodoService) Update(ctx context.Context, userID, id int64, form forms.TodoForm) (*models.Todo, error) {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	var out *models.Todo
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Todos(tx)
		todo, err := ownedForUpdate(ctx, repo.GetByIDForUpdate, userID, id)
		if err != nil {
			return err
		}
		todo.Title = form.Title
		todo.Description = form.Description
		todo.Importance = form.Importance
		if err := repo.Update(ctx, todo); err != nil {
			return err
		}
		out = todo
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update todo %d: %w", id, err)
	}
	return out, nil
}

// ToggleComplete flips the completion flag of todo id under a row lock.
func (s *TodoService) ToggleComplete(ctx context.Context, userID, id int64) (*models.Todo, error) {
	var out *models.Todo
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Todos(tx)
		todo, err := ownedForUpdate(ctx, repo.GetByIDForUpdate, userID, id)
		if err != nil {
			return err
		}
		todo.Complete = !todo.Complete
		if err := repo.Update(ctx, todo); err != nil {
			return err
		}
		out = todo
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("toggle todo %d: %w", id, err)
	}
	return out, nil
}

// Delete removes todo id if userID owns it.
func (s *TodoService) Delete(ctx context.Context, userID, id int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Todos(tx)
		if _, err := ownedForUpdate(ctx, repo.GetByIDForUpdate, userID, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	return nil
}

func ownedForUpdate(ctx context.Context, get func(context.Context, int64) (*models.Todo, error), userID, id int64) (*models.Todo, error) {
	todo, err := get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !todo.OwnedBy(userID) {
		return nil, common.ErrorForbidden
	}
	return todo, nil
}
