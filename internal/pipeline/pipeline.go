package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quakewatch/internal/adapter/jma"
	"github.com/couchcryptid/quakewatch/internal/domain"
	"github.com/couchcryptid/quakewatch/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Fetcher retrieves the current earthquake records. An unreachable or
// undecodable feed is an error; an empty feed is not.
type Fetcher interface {
	FetchRecords(ctx context.Context, opts ...jma.FetchOption) ([]domain.EarthquakeRecord, error)
}

// BatchLoader writes newly seen records to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, records []domain.EarthquakeRecord) error
}

// Options tune a Poller. Zero values fall back to defaults.
type Options struct {
	Interval      time.Duration
	MaxDepthKm    *float64
	SeenCacheSize int
	Clock         clockwork.Clock
}

// Poller periodically fetches the feed and publishes bulletins it has not seen
// before. A revised bulletin for a known event counts as new.
type Poller struct {
	fetcher  Fetcher
	loader   BatchLoader
	logger   *slog.Logger
	metrics  *observability.Metrics
	seen     *seenSet
	clock    clockwork.Clock
	interval time.Duration
	maxDepth *float64
	ready    atomic.Bool
}

// New creates a Poller. A nil loader disables publishing; records are still
// fetched, counted, and aggregated.
func New(f Fetcher, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.SeenCacheSize <= 0 {
		opts.SeenCacheSize = 1000
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Poller{
		fetcher:  f,
		loader:   l,
		logger:   logger,
		metrics:  metrics,
		seen:     newSeenSet(opts.SeenCacheSize),
		clock:    opts.Clock,
		interval: opts.Interval,
		maxDepth: opts.MaxDepthKm,
	}
}

// CheckReadiness returns nil once a poll has reached the feed and published its
// new bulletins, or an error describing why the service is not yet ready.
func (p *Poller) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("poller has not completed a poll yet")
	}
	return nil
}

// Run polls immediately and then every interval until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started", "interval", p.interval)
	p.metrics.PollerRunning.Set(1)
	defer p.metrics.PollerRunning.Set(0)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.Poll(ctx)

		select {
		case <-ctx.Done():
			p.logger.Info("poller stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// Poll runs one fetch-publish cycle. A failed fetch is logged and counted but
// leaves the gauges and readiness as they were.
func (p *Poller) Poll(ctx context.Context) {
	start := p.clock.Now()

	var opts []jma.FetchOption
	if p.maxDepth != nil {
		opts = append(opts, jma.WithMaxDepth(*p.maxDepth))
	}
	records, err := p.fetcher.FetchRecords(ctx, opts...)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		p.metrics.PollsTotal.WithLabelValues("failed").Inc()
		p.logger.Error("feed fetch failed", "error", err)
		return
	}

	outcome := "ok"
	if len(records) == 0 {
		outcome = "empty"
	}
	p.metrics.PollsTotal.WithLabelValues(outcome).Inc()
	p.metrics.RecordsFetched.Add(float64(len(records)))
	p.metrics.LastPollRecords.Set(float64(len(records)))
	if len(records) > 0 {
		p.metrics.AverageDepthKm.Set(domain.AverageDepth(records))
	}

	fresh := p.unseen(records)
	if !p.publish(ctx, fresh) {
		return
	}

	p.metrics.PollDuration.Observe(p.clock.Since(start).Seconds())
	p.ready.Store(true)
	p.logger.Info("poll complete",
		"records", len(records),
		"new", len(fresh),
		"average_depth_km", domain.AverageDepth(records),
	)
}

// unseen returns the records whose revision keys have not been published,
// preserving order.
func (p *Poller) unseen(records []domain.EarthquakeRecord) []domain.EarthquakeRecord {
	fresh := make([]domain.EarthquakeRecord, 0, len(records))
	batch := make(map[string]struct{}, len(records))
	for _, r := range records {
		key := r.RevisionKey()
		if _, dup := batch[key]; dup || p.seen.contains(key) {
			continue
		}
		batch[key] = struct{}{}
		fresh = append(fresh, r)
	}
	return fresh
}

// publish loads fresh records and marks them seen. Returns false if the load
// failed; the records stay unseen so the next poll retries them.
func (p *Poller) publish(ctx context.Context, fresh []domain.EarthquakeRecord) bool {
	if len(fresh) == 0 {
		return true
	}
	if p.loader != nil {
		if err := p.loader.LoadBatch(ctx, fresh); err != nil {
			p.logger.Error("publish batch failed", "error", err, "batch_size", len(fresh))
			p.metrics.PublishErrors.Inc()
			return false
		}
		p.metrics.RecordsPublished.Add(float64(len(fresh)))
	}
	for _, r := range fresh {
		p.seen.add(r.RevisionKey())
	}
	return true
}
