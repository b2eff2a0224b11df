// Package repomanager vends repository implementations for the configured
// storage backend and runs schema migrations (via goose) where they apply.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gotodo/internal/dbx"
	"github.com/dmitrijs2005/gotodo/internal/server/migrations"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories. Revoked
// tokens may be kept in redis instead, see WithRedisRevocations.
type PostgresRepositoryManager struct {
	revocations *revokedtokens.RedisRepository
}

type Option func(*PostgresRepositoryManager)

// WithRedisRevocations stores revoked token ids in redis. The redis
// repository is not transactional, so RevokedTokens ignores db.
func WithRedisRevocations(client *redis.Client) Option {
	return func(m *PostgresRepositoryManager) {
		m.revocations = revokedtokens.NewRedisRepository(client)
	}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Tasks(db dbx.DBTX) tasks.Repository {
	return tasks.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RevokedTokens(db dbx.DBTX) revokedtokens.Repository {
	if m.revocations != nil {
		return m.revocations
	}
	return revokedtokens.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations to db.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

func NewPostgresRepositoryManager(opts ...Option) *PostgresRepositoryManager {
	m := &PostgresRepositoryManager{}
	for _, o := range opts {
		o(m)
	}
	return m
}
