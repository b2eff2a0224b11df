package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/dbx"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

const selectColumns = `SELECT id, user_id, name, is_done, created_at, due_date, completed_at FROM tasks`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t         models.Task
		due       sql.NullTime
		completed sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.IsDone, &t.CreatedAt, &due, &completed); err != nil {
		return nil, err
	}
	t.DueDate = nullTimePtr(due)
	t.CompletedAt = nullTimePtr(completed)
	return &t, nil
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (user_id, name, is_done, due_date, completed_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`

	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	err := r.db.QueryRowContext(ctx, query, task.UserID, task.Name, task.IsDone, task.DueDate, task.CompletedAt, task.CreatedAt).
		Scan(&task.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByUser(ctx context.Context, userID string, id int64) (*models.Task, error) {
	return r.get(ctx, selectColumns+` WHERE id = $1 AND user_id = $2`, userID, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, userID string, id int64) (*models.Task, error) {
	return r.get(ctx, selectColumns+` WHERE id = $1 AND user_id = $2 FOR UPDATE`, userID, id)
}

func (r *PostgresRepository) get(ctx context.Context, query string, userID string, id int64) (*models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) error {
	query :=
		`UPDATE tasks SET name = $3, is_done = $4, due_date = $5, completed_at = $6
		 WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, task.ID, task.UserID, task.Name, task.IsDone, task.DueDate, task.CompletedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
