package client

import (
	"context"

	"github.com/dmitrijs2005/gotodo/internal/client/models"
)

type Client interface {
	Username() string
	LoggedIn() bool
	Ping(ctx context.Context) error
	Register(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	ListTasks(ctx context.Context) ([]*models.Task, error)
	CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	UpdateTask(ctx context.Context, id int64, in models.TaskInput) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}
