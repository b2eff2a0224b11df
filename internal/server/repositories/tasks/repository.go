// Package tasks declares the storage contract for owned task records and its
// PostgreSQL implementation. Every lookup and write is keyed by both the
// task id and the owning user id.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

type Repository interface {
	// Create inserts task and fills its ID and CreatedAt.
	Create(ctx context.Context, task *models.Task) (*models.Task, error)

	// ListByUser returns all tasks owned by userID ordered by id.
	ListByUser(ctx context.Context, userID string) ([]*models.Task, error)

	// GetByUser returns the task only if userID owns it, otherwise
	// common.ErrorNotFound.
	GetByUser(ctx context.Context, userID string, id int64) (*models.Task, error)

	// GetForUpdate is GetByUser that also locks the row until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, userID string, id int64) (*models.Task, error)

	// Update stores the mutable fields of task. common.ErrorNotFound when no
	// row matched task.ID and task.UserID.
	Update(ctx context.Context, task *models.Task) error

	// Delete removes the task. common.ErrorNotFound when nothing matched.
	Delete(ctx context.Context, userID string, id int64) error
}
