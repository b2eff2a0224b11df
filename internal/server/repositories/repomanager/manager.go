package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gotodo/internal/dbx"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	RevokedTokens(db dbx.DBTX) revokedtokens.Repository
}
