package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/habitkit/backend/internal/infrastructure/journal"
)

// PrunerConfig controls how often the journal is compacted and how long
// entries are retained.
type PrunerConfig struct {
	Interval  time.Duration
	Retention time.Duration
}

// JournalPruner periodically drops journal entries past the retention
// window so the bolt file stays small.
type JournalPruner struct {
	store  *journal.Store
	logger *zap.Logger
	cron   *cron.Cron
	cfg    PrunerConfig
}

func NewJournalPruner(store *journal.Store, logger *zap.Logger, cfg PrunerConfig) *JournalPruner {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &JournalPruner{
		store:  store,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = p.cron.AddFunc(schedule, p.pruneOnce)

	return p
}

// Start launches the cron scheduler.
func (p *JournalPruner) Start() {
	if p == nil || p.cron == nil {
		return
	}
	p.cron.Start()
	p.logger.Info("journal pruner started")
}

// Stop gracefully stops the scheduler.
func (p *JournalPruner) Stop(ctx context.Context) {
	if p == nil || p.cron == nil {
		return
	}
	stopCtx := p.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	p.logger.Info("journal pruner stopped")
}

func (p *JournalPruner) pruneOnce() {
	if p.store == nil {
		return
	}
	cutoff := time.Now().Add(-p.cfg.Retention)
	removed, err := p.store.Prune(cutoff)
	if err != nil {
		p.logger.Error("journal prune failed", zap.Error(err))
		return
	}
	if removed > 0 {
		p.logger.Info("journal pruned", zap.Int("removed", removed))
	}
}
