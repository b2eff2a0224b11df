// Package memory is a process-local storage backend. It implements the users,
// tasks and revokedtokens repositories over maps and serves as a dbx.Runner
// so services run against it unchanged. Data is lost on restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gotodo/internal/dbx"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users      map[string]*models.User
	tasks      map[int64]*models.Task
	nextTaskID int64
	revoked    map[string]models.RevokedToken

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:   make(map[string]*models.User),
		tasks:   make(map[int64]*models.Task),
		revoked: make(map[string]models.RevokedToken),
		now:     time.Now,
	}
}

// Conn returns nil; the memory repositories ignore the handle.
func (s *Store) Conn() dbx.DBTX { return nil }

// InTx runs units of work one at a time. Writes made by fn before it fails
// are kept.
func (s *Store) InTx(ctx context.Context, fn dbx.TxFunc) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, nil)
}

func (s *Store) PingContext(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

func (s *Store) Tasks() *TaskRepository { return &TaskRepository{s: s} }

func (s *Store) RevokedTokens() *RevokedTokenRepository { return &RevokedTokenRepository{s: s} }

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
