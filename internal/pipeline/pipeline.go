package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/parking-schedule-service/internal/domain"
	"github.com/couchcryptid/parking-schedule-service/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// ErrEmptyDataset is returned when the source yields no records. The active
// snapshot is kept rather than replaced with an empty one.
var ErrEmptyDataset = errors.New("source returned no records")

// Extractor fetches the complete set of raw location records.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.RawRecord, error)
}

// Loader receives every snapshot after it becomes active. Name labels the
// sink in logs and metrics.
type Loader interface {
	Name() string
	Load(ctx context.Context, snap *domain.Snapshot) error
}

// Pipeline orchestrates the fetch-parse-swap-publish refresh loop.
type Pipeline struct {
	extractor Extractor
	builder   *SnapshotBuilder
	store     *Store
	loaders   []Loader
	interval  time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Pipeline that refreshes store from e every interval and hands
// each new snapshot to loaders.
func New(e Extractor, store *Store, loaders []Loader, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor: e,
		builder:   NewSnapshotBuilder(logger, metrics),
		store:     store,
		loaders:   loaders,
		interval:  interval,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a snapshot has been loaded, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.store.Current() == nil {
		return errors.New("no parking snapshot loaded yet")
	}
	return nil
}

// WarmStart installs a snapshot built from previously persisted records so
// queries can be served before the first remote fetch completes. Loaders are
// not invoked.
func (p *Pipeline) WarmStart(ctx context.Context, source Extractor) error {
	records, err := source.Extract(ctx)
	if err != nil {
		return fmt.Errorf("warm start: %w", err)
	}
	if len(records) == 0 {
		return nil
	}
	snap := p.builder.Build(records, domain.Clock().Now())
	if p.store.Current() == nil {
		p.install(snap)
		p.logger.Info("warm start snapshot loaded", "locations", snap.Len())
	}
	return nil
}

// Run refreshes immediately, then every interval, until ctx is cancelled.
// Failed refreshes are retried with exponential backoff.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("refresh loop started", "interval", p.interval)
	p.metrics.RefreshRunning.Set(1)
	defer p.metrics.RefreshRunning.Set(0)

	backoff := initialBackoff
	for {
		if err := p.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("refresh loop stopping", "reason", ctx.Err())
				return nil
			}
			p.logger.Error("refresh failed", "error", err, "retry_in", backoff)
			if !retry.SleepWithContext(ctx, backoff) {
				p.logger.Info("refresh loop stopping", "reason", ctx.Err())
				return nil
			}
			backoff = retry.NextBackoff(backoff, maxBackoff)
			continue
		}

		backoff = initialBackoff
		if !retry.SleepWithContext(ctx, p.interval) {
			p.logger.Info("refresh loop stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// Refresh runs one fetch-parse-swap-publish cycle. Extraction failures leave
// the active snapshot untouched and are returned. Loader failures are logged
// and counted but do not fail the refresh: the new snapshot is already
// serving and the next refresh republishes.
func (p *Pipeline) Refresh(ctx context.Context) error {
	start := time.Now()

	records, err := p.extractor.Extract(ctx)
	if err != nil {
		p.metrics.RefreshRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("extract records: %w", err)
	}
	if len(records) == 0 {
		p.metrics.RefreshRuns.WithLabelValues("error").Inc()
		return ErrEmptyDataset
	}
	p.metrics.RecordsLoaded.Add(float64(len(records)))

	snap := p.builder.Build(records, domain.Clock().Now())
	p.install(snap)

	for _, l := range p.loaders {
		if err := l.Load(ctx, snap); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Error("publish snapshot failed", "sink", l.Name(), "error", err, "locations", snap.Len())
			continue
		}
		p.metrics.RecordsPublished.WithLabelValues(l.Name()).Add(float64(snap.Len()))
	}

	p.metrics.RefreshRuns.WithLabelValues("success").Inc()
	p.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("snapshot refreshed", "locations", snap.Len(), "duration", time.Since(start))
	return nil
}

func (p *Pipeline) install(snap *domain.Snapshot) {
	p.store.Swap(snap)
	p.metrics.SnapshotSize.Set(float64(snap.Len()))
	p.metrics.SnapshotAge.Set(float64(snap.LoadedAt().Unix()))
}
