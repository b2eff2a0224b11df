package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/dbx"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/gotodo/internal/timex"
)

// TaskInput is the payload of a create request. DueDate is YYYY-MM-DD.
type TaskInput struct {
	Name    string
	IsDone  bool
	DueDate *string
}

// TaskPatch lists the fields an update supplies; nil means unchanged.
// An empty DueDate clears it.
type TaskPatch struct {
	Name    *string
	IsDone  *bool
	DueDate *string
}

// TaskService performs task operations on behalf of an authenticated
// identity. Tasks of other users are reported as common.ErrorNotFound.
type TaskService struct {
	db          dbx.Runner
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewTaskService(db dbx.Runner, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m, now: time.Now}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name can not be blank", common.ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > models.MaxTaskNameLength {
		return "", fmt.Errorf("%w: name must be at most %d characters", common.ErrInvalidInput, models.MaxTaskNameLength)
	}
	return name, nil
}

func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := timex.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%w: due_date: %v", common.ErrInvalidInput, err)
	}
	return &d, nil
}

func (s *TaskService) setDone(t *models.Task, done bool) {
	t.IsDone = done
	if done {
		now := s.now().UTC()
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
}

func (s *TaskService) List(ctx context.Context, identity *Identity) ([]*models.Task, error) {
	list, err := s.repomanager.Tasks(s.db.Conn()).ListByUser(ctx, identity.User.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	return list, nil
}

func (s *TaskService) Create(ctx context.Context, identity *Identity, in TaskInput) (*models.Task, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}

	// created_at and a completion stamp set at creation share one clock reading.
	now := s.now().UTC()
	task := &models.Task{UserID: identity.User.ID, Name: name, CreatedAt: now}

	if in.DueDate != nil {
		if task.DueDate, err = parseDueDate(*in.DueDate); err != nil {
			return nil, err
		}
	}
	if in.IsDone {
		completed := now
		task.IsDone = true
		task.CompletedAt = &completed
	}

	task, err = s.repomanager.Tasks(s.db.Conn()).Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, identity *Identity, id int64) (*models.Task, error) {
	return s.ownedTask(ctx, s.repomanager.Tasks(s.db.Conn()), identity, id, false)
}

// Update applies the supplied fields of patch in one transaction. Marking
// the task done stamps completed_at with the current time. Marking it not
// done clears completed_at.
func (s *TaskService) Update(ctx context.Context, identity *Identity, id int64, patch TaskPatch) (*models.Task, error) {
	var (
		name    string
		dueDate *time.Time
		err     error
	)
	if patch.Name != nil {
		if name, err = validateName(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.DueDate != nil {
		if dueDate, err = parseDueDate(*patch.DueDate); err != nil {
			return nil, err
		}
	}

	var updated *models.Task
	err = s.db.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)

		task, err := s.ownedTask(ctx, repo, identity, id, true)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			task.Name = name
		}
		if patch.DueDate != nil {
			task.DueDate = dueDate
		}
		if patch.IsDone != nil {
			s.setDone(task, *patch.IsDone)
		}

		if err := repo.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, identity *Identity, id int64) error {
	return s.db.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)
		if _, err := s.ownedTask(ctx, repo, identity, id, true); err != nil {
			return err
		}
		return repo.Delete(ctx, identity.User.ID, id)
	})
}

// ownedTask is the single place where a task id is resolved for a caller.
// Absent and foreign tasks are both common.ErrorNotFound.
func (s *TaskService) ownedTask(ctx context.Context, repo tasks.Repository, identity *Identity, id int64, forUpdate bool) (*models.Task, error) {
	if identity == nil || identity.User == nil {
		return nil, common.ErrorUnauthorized
	}

	var (
		task *models.Task
		err  error
	)
	if forUpdate {
		task, err = repo.GetForUpdate(ctx, identity.User.ID, id)
	} else {
		task, err = repo.GetByUser(ctx, identity.User.ID, id)
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}
