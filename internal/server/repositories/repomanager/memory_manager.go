package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gotodo/internal/dbx"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/users"
)

// MemoryRepositoryManager serves every repository from one memory.Store.
// The db handle passed to the factories is ignored.
type MemoryRepositoryManager struct {
	store *memory.Store
}

func NewMemoryRepositoryManager(store *memory.Store) *MemoryRepositoryManager {
	return &MemoryRepositoryManager{store: store}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.store.Users() }

func (m *MemoryRepositoryManager) Tasks(dbx.DBTX) tasks.Repository { return m.store.Tasks() }

func (m *MemoryRepositoryManager) RevokedTokens(dbx.DBTX) revokedtokens.Repository {
	return m.store.RevokedTokens()
}
