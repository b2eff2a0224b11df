package models

import "time"

// MaxTaskNameLength bounds Task.Name, counted in characters.
const MaxTaskNameLength = 140

// Task is a to-do item owned by exactly one user.
//
// CompletedAt is set when IsDone becomes true and cleared when it becomes
// false again. DueDate holds a calendar day at midnight UTC.
type Task struct {
	ID          int64
	UserID      string
	Name        string
	IsDone      bool
	CreatedAt   time.Time
	DueDate     *time.Time
	CompletedAt *time.Time
}
