// Package users stores registered accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/focustank/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills in its generated id. A taken
	// username yields common.ErrUserExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
