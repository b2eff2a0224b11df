// Package models holds the client-side view of GoTodo resources as they
// travel over the HTTP API.
package models

import "time"

// Task mirrors the task JSON returned by the server.
type Task struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	IsDone      bool       `json:"is_done"`
	CreatedAt   time.Time  `json:"created_at"`
	DueDate     *string    `json:"due_date"`
	CompletedAt *time.Time `json:"completed_date"`
}

// TaskInput is the body of a create or update request. Nil fields are not
// sent; an empty DueDate clears the due date on update.
type TaskInput struct {
	Name    *string `json:"name,omitempty"`
	IsDone  *bool   `json:"is_done,omitempty"`
	DueDate *string `json:"due_date,omitempty"`
}
