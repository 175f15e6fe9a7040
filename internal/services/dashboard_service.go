package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"covidboard/internal/amqp"
	"covidboard/internal/cache"
	"covidboard/internal/core"
	applog "covidboard/internal/log"
)

// DashboardService answers dashboard queries against the table loaded at
// startup. The table is never mutated, so cached aggregations stay valid for
// the life of the process.
type DashboardService struct {
	table     *core.Table
	summary   core.Summary
	charts    *cache.Memo[[]core.RegionCount]
	publisher amqp.Publisher

	pending sync.WaitGroup
}

// Options tune the aggregation cache.
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
}

func NewDashboardService(t *core.Table, publisher amqp.Publisher, opts Options) *DashboardService {
	if t == nil {
		t = core.NewTable(nil)
	}
	if publisher == nil {
		publisher = amqp.NoopPublisher{}
	}
	if opts.CacheSize < 1 {
		opts.CacheSize = len(core.Filters())
	}
	return &DashboardService{
		table:     t,
		summary:   core.Summarize(t),
		charts:    cache.NewMemo(cache.NewLRUCache[[]core.RegionCount](opts.CacheSize, opts.CacheTTL)),
		publisher: publisher,
	}
}

// Summary returns the card values computed at construction.
func (s *DashboardService) Summary() core.Summary {
	return s.summary
}

// Rows returns the number of loaded rows.
func (s *DashboardService) Rows() int {
	return s.table.Len()
}

// Charts exposes the aggregation cache for registration with a cache.Manager.
func (s *DashboardService) Charts() cache.Cleaner {
	return s.charts
}

// Chart aggregates the table for the raw filter value. An unknown value
// fails with core.ErrInvalidFilter.
func (s *DashboardService) Chart(ctx context.Context, raw string) (core.Chart, error) {
	f, err := core.ParseFilter(raw)
	if err != nil {
		return core.Chart{}, err
	}

	bars, hit, err := s.charts.Get(string(f), func() ([]core.RegionCount, error) {
		return core.AggregateStatus(s.table, string(f))
	})
	if err != nil {
		return core.Chart{}, err
	}
	// Callers get their own copy of the cached slice.
	bars = append(make([]core.RegionCount, 0, len(bars)), bars...)

	chart := core.NewChart(f, bars)
	fields := applog.NewFields().
		WithOperation(applog.OpAggregate).
		WithChart(string(f), len(bars), chart.Rows)
	fields["cache_hit"] = hit
	applog.FromContext(ctx).Fields(ctx, slog.LevelDebug, "Chart aggregated", fields)

	s.publish(ctx, chart)
	return chart, nil
}

func (s *DashboardService) publish(ctx context.Context, chart core.Chart) {
	msg := amqp.NewFilterSelectedMessage(string(chart.Filter), len(chart.Bars), chart.Rows)
	ctx = context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.publisher.PublishFilterSelected(ctx, msg); err != nil {
			fields := applog.NewFields().WithOperation(applog.OpPublish).WithError(err)
			fields[applog.FieldFilter] = msg.Filter
			applog.FromContext(ctx).Fields(ctx, slog.LevelWarn, "Failed to publish filter selected message", fields)
		}
	}()
}

// Close waits for in-flight event publishes.
func (s *DashboardService) Close() error {
	s.pending.Wait()
	return nil
}

// CachedCharts reports how many aggregations are currently cached.
func (s *DashboardService) CachedCharts() int {
	return s.charts.Size()
}
