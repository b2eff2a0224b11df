package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskInput_OmitsNilFields(t *testing.T) {
	done := false
	b, err := json.Marshal(TaskInput{IsDone: &done})
	require.NoError(t, err)
	assert.JSONEq(t, `{"is_done":false}`, string(b))

	empty := ""
	b, err = json.Marshal(TaskInput{DueDate: &empty})
	require.NoError(t, err)
	assert.JSONEq(t, `{"due_date":""}`, string(b))
}

func TestTask_DecodesNullDates(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"name":"n","is_done":false,"created_at":"2026-01-02T03:04:05Z","due_date":null,"completed_date":null}`), &task))

	assert.Equal(t, int64(3), task.ID)
	assert.Nil(t, task.DueDate)
	assert.Nil(t, task.CompletedAt)
}

func TestSession_LoggedIn(t *testing.T) {
	var s *Session
	assert.False(t, s.LoggedIn())
	assert.False(t, (&Session{Username: "bob"}).LoggedIn())
	assert.True(t, (&Session{RefreshToken: "r"}).LoggedIn())
}
