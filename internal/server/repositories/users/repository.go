// Package users persists user accounts and their role assignments.
package users

import (
	"context"

	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	AssignRole(ctx context.Context, userID, roleName string) error
	// FindByUsername returns every user with the given username. Callers
	// treat anything other than exactly one match as a failure.
	FindByUsername(ctx context.Context, userName string) ([]*models.User, error)
	FindByIDAndSalt(ctx context.Context, id, salt string) (*models.User, error)
	Find(ctx context.Context, filter models.UserFilter) ([]*models.User, error)
	UpdateSalt(ctx context.Context, id, salt string) error
	Update(ctx context.Context, update models.UserUpdate) error
}
