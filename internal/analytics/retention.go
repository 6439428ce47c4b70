package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/talenthub/search-platform/pkg/config"
)

// Janitor runs the scheduled maintenance jobs: pruning aged search history
// and persisting periodic aggregator snapshots.
type Janitor struct {
	store      *Store
	aggregator *Aggregator
	cfg        config.RetentionConfig
	cron       *cron.Cron
	logger     *slog.Logger
}

// NewJanitor creates a Janitor over the given store and aggregator. The
// aggregator may be nil, in which case snapshot persistence is skipped.
func NewJanitor(store *Store, aggregator *Aggregator, cfg config.RetentionConfig) *Janitor {
	return &Janitor{
		store:      store,
		aggregator: aggregator,
		cfg:        cfg,
		cron:       cron.New(),
		logger:     slog.Default().With("component", "retention-janitor"),
	}
}

// Start registers and launches the scheduled jobs.
func (j *Janitor) Start() error {
	if j.cfg.PruneSpec != "" && j.cfg.HistoryMaxAge > 0 {
		if _, err := j.cron.AddFunc(j.cfg.PruneSpec, j.pruneHistory); err != nil {
			return err
		}
	}
	if j.aggregator != nil && j.cfg.SnapshotInterval > 0 {
		if _, err := j.cron.AddFunc("@every "+j.cfg.SnapshotInterval.String(), j.snapshotStats); err != nil {
			return err
		}
	}
	j.cron.Start()
	j.logger.Info("retention janitor started",
		"prune_spec", j.cfg.PruneSpec,
		"history_max_age", j.cfg.HistoryMaxAge,
		"snapshot_interval", j.cfg.SnapshotInterval,
	)
	return nil
}

// Stop halts the schedule and waits for running jobs to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *Janitor) pruneHistory() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	deleted, err := j.store.PruneHistory(ctx, j.cfg.HistoryMaxAge)
	if err != nil {
		j.logger.Error("history prune failed", "error", err)
		return
	}
	j.logger.Info("history pruned", "rows_deleted", deleted)
}

func (j *Janitor) snapshotStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := j.store.SaveSnapshot(ctx, j.aggregator.Stats()); err != nil {
		j.logger.Error("snapshot persist failed", "error", err)
	}
}
