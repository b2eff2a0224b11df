package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gotodo/internal/dbx"
	"github.com/dmitrijs2005/gotodo/internal/logging"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/repomanager"
)

// Pruner periodically drops revocations of tokens that have expired anyway.
type Pruner struct {
	db          dbx.Runner
	repomanager repomanager.RepositoryManager
	interval    time.Duration
	logger      logging.Logger
	now         func() time.Time
}

func NewPruner(db dbx.Runner, m repomanager.RepositoryManager, interval time.Duration, logger logging.Logger) *Pruner {
	return &Pruner{
		db:          db,
		repomanager: m,
		interval:    interval,
		logger:      logger.With("module", "pruner"),
		now:         time.Now,
	}
}

// PruneOnce removes revocations whose token expired before now.
func (p *Pruner) PruneOnce(ctx context.Context) (int64, error) {
	n, err := p.repomanager.RevokedTokens(p.db.Conn()).Prune(ctx, p.now())
	if err != nil {
		return 0, fmt.Errorf("error pruning revoked tokens: %w", err)
	}
	return n, nil
}

// Run prunes every interval until ctx is done. A non-positive interval
// disables pruning.
func (p *Pruner) Run(ctx context.Context) {
	if p.interval <= 0 {
		p.logger.Info(ctx, "pruning disabled")
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PruneOnce(ctx)
			if err != nil {
				p.logger.Error(ctx, "prune failed", "error", err)
				continue
			}
			if n > 0 {
				p.logger.Info(ctx, "pruned revoked tokens", "count", n)
			}
		}
	}
}
