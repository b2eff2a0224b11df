package memory

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

type TaskRepository struct {
	s *Store
}

func cloneTask(t *models.Task) *models.Task {
	out := *t
	out.DueDate = copyTime(t.DueDate)
	out.CompletedAt = copyTime(t.CompletedAt)
	return &out
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextTaskID++
	task.ID = r.s.nextTaskID
	if task.CreatedAt.IsZero() {
		task.CreatedAt = r.s.now()
	}
	r.s.tasks[task.ID] = cloneTask(task)

	return task, nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*models.Task, 0)
	for _, t := range r.s.tasks {
		if t.UserID == userID {
			result = append(result, cloneTask(t))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

func (r *TaskRepository) GetByUser(ctx context.Context, userID string, id int64) (*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return cloneTask(t), nil
}

// GetForUpdate relies on Store.InTx for exclusion.
func (r *TaskRepository) GetForUpdate(ctx context.Context, userID string, id int64) (*models.Task, error) {
	return r.GetByUser(ctx, userID, id)
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[task.ID]
	if !ok || t.UserID != task.UserID {
		return common.ErrorNotFound
	}

	stored := cloneTask(task)
	stored.CreatedAt = t.CreatedAt
	r.s.tasks[task.ID] = stored

	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID string, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok || t.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.s.tasks, id)

	return nil
}
