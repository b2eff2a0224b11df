package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/gotodo/internal/client/models"
	"github.com/dmitrijs2005/gotodo/internal/filex"
)

// SessionStore persists the CLI login session.
type SessionStore interface {
	Load() (*models.Session, error)
	Save(s *models.Session) error
	Clear() error
}

// FileSessionStore keeps the session as JSON in a single file readable only
// by its owner.
type FileSessionStore struct {
	path string
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// Load returns an empty session when the file does not exist yet.
func (s *FileSessionStore) Load() (*models.Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &models.Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session read error: %w", err)
	}

	sess := &models.Session{}
	if err := json.Unmarshal(data, sess); err != nil {
		return nil, fmt.Errorf("session decode error: %w", err)
	}
	return sess, nil
}

func (s *FileSessionStore) Save(sess *models.Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("session encode error: %w", err)
	}

	if err := filex.EnsureParentDir(s.path); err != nil {
		return fmt.Errorf("session write error: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("session write error: %w", err)
	}
	return nil
}

func (s *FileSessionStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session remove error: %w", err)
	}
	return nil
}
