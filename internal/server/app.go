// Package server wires the GoTodo server together: it selects the storage
// backend, builds the services, and runs the HTTP API, the gRPC health
// endpoint and the revocation pruner until shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gotodo/internal/dbx"
	"github.com/dmitrijs2005/gotodo/internal/logging"
	"github.com/dmitrijs2005/gotodo/internal/server/config"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gotodo/internal/server/rest"
	"github.com/dmitrijs2005/gotodo/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/gotodo/internal/server/grpc"
)

const healthCheckInterval = 10 * time.Second

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	runner       dbx.Runner
	repomanager  repomanager.RepositoryManager
	redis        *redis.Client
	userService  *services.UserService
	tokenService *services.TokenService
	taskService  *services.TaskService
	pruner       *services.Pruner
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	app := &App{config: c, logger: logger}

	if c.UsesMemoryBackend() {
		store := memory.NewStore()
		app.runner = store
		app.repomanager = repomanager.NewMemoryRepositoryManager(store)
		if c.RedisAddr != "" {
			logger.Warn(context.Background(), "redis is ignored with the memory backend")
		}
	} else {
		db, err := sql.Open("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		app.runner = dbx.NewSQLRunner(db, dbx.WithTxOptions(&sql.TxOptions{Isolation: sql.LevelReadCommitted}))

		var opts []repomanager.Option
		if c.RedisAddr != "" {
			app.redis = redis.NewClient(&redis.Options{
				Addr:     c.RedisAddr,
				Password: c.RedisPassword,
				DB:       c.RedisDB,
			})
			opts = append(opts, repomanager.WithRedisRevocations(app.redis))
		}
		app.repomanager = repomanager.NewPostgresRepositoryManager(opts...)
	}

	app.userService = services.NewUserService(app.runner, app.repomanager, c)
	app.tokenService = services.NewTokenService(app.runner, app.repomanager, app.userService, c)
	app.taskService = services.NewTaskService(app.runner, app.repomanager)
	app.pruner = services.NewPruner(app.runner, app.repomanager, c.PruneInterval, logger)

	return app, nil
}

// ready reports whether every storage dependency answers.
func (app *App) ready(ctx context.Context) error {
	if err := app.runner.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if app.redis != nil {
		if err := app.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	api := rest.NewAPI(app.userService, app.tokenService, app.taskService, app.ready, app.logger)
	s := rest.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, api.Handler())

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger, app.ready, healthCheckInterval)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run migrates the schema and serves until ctx is cancelled or a signal
// arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.pruner.Run(ctx)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return app.close()
}

func (app *App) close() error {
	var errs []error
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}
