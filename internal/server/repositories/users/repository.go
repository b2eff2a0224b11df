// Package users declares the credential storage contract and its
// PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

// Repository persists users.
type Repository interface {
	// Create inserts user and fills its ID and CreatedAt. A duplicate
	// username yields common.ErrConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByLogin returns the user with the exact username, or
	// common.ErrorNotFound.
	GetUserByLogin(ctx context.Context, userName string) (*models.User, error)
}
