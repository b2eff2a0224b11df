package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/gotodo/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSessionStore_LoadMissing(t *testing.T) {
	s := NewFileSessionStore(filepath.Join(t.TempDir(), "session.json"))

	sess, err := s.Load()
	require.NoError(t, err)
	assert.False(t, sess.LoggedIn())
}

func TestFileSessionStore_SaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewFileSessionStore(path)

	in := &models.Session{Username: "alice", AccessToken: "a", RefreshToken: "r"}
	require.NoError(t, s.Save(in))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear(), "clearing twice is fine")

	out, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, &models.Session{}, out)
}

func TestFileSessionStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))

	_, err := NewFileSessionStore(path).Load()
	assert.ErrorContains(t, err, "session decode error")
}
