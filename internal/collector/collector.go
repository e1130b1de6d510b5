package collector

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/ledger-category-export/internal/period"
	"github.com/lox/ledger-category-export/internal/report"
	"github.com/lox/ledger-category-export/internal/source"
	"github.com/lox/ledger-category-export/internal/types"
	"golang.org/x/sync/errgroup"
)

// Cache stores parsed reports for months that can no longer change
type Cache interface {
	Get(ctx context.Context, scope string, p types.Period) (*report.MonthlyReport, error)
	Store(ctx context.Context, scope string, r *report.MonthlyReport) error
}

// Config controls a collection run
type Config struct {
	// Concurrency is the number of months fetched at once
	Concurrency int
	// Progress shows a progress bar on stderr
	Progress bool
	// Refresh ignores cached months and fetches everything again
	Refresh bool
	// Options is passed to report.Parse for every month
	Options report.Options
}

// Collector fetches and parses one report per month
type Collector struct {
	source source.Source
	cache  Cache
	scope  string
	logger *log.Logger
	now    func() time.Time
}

// New creates a collector. cache may be nil to disable caching.
func New(src source.Source, cache Cache, scope string, logger *log.Logger) *Collector {
	return &Collector{
		source: src,
		cache:  cache,
		scope:  scope,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the time used to decide which months are closed
func (c *Collector) WithClock(now func() time.Time) *Collector {
	c.now = now
	return c
}

// Collect produces one result per period, in the same order as periods.
// A month that fails to fetch or parse is reported in its Result; the
// returned error is only set when the context is cancelled.
func (c *Collector) Collect(ctx context.Context, periods []types.Period, config Config) ([]report.Result, error) {
	concurrency := config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var progress Progress = NoopProgress{}
	if config.Progress {
		progress = NewBarProgress(len(periods))
	}
	defer progress.Close()

	now := c.now()
	results := make([]report.Result, len(periods))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for idx, p := range periods {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			start := time.Now()
			r, err := c.collectMonth(gCtx, p, period.IsClosed(p, now), config)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				c.logger.Error("Failed to collect month", "period", p, "error", err)
				results[idx] = report.Result{Period: p, Err: err}
			} else {
				c.logger.Debug("Collected month", "period", p, "amounts", r.Len(), "duration", time.Since(start))
				results[idx] = report.Result{Period: p, Report: r}
			}

			if err := progress.Done(p, results[idx].Err); err != nil {
				c.logger.Warn("Failed to update progress", "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (c *Collector) collectMonth(ctx context.Context, p types.Period, closed bool, config Config) (*report.MonthlyReport, error) {
	useCache := c.cache != nil && closed

	if useCache && !config.Refresh {
		cached, err := c.cache.Get(ctx, c.scope, p)
		if err != nil {
			c.logger.Warn("Failed to read cached report", "period", p, "error", err)
		} else if cached != nil {
			c.logger.Debug("Using cached report", "period", p)
			return cached, nil
		}
	}

	output, err := c.source.Fetch(ctx, p)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &report.MonthError{Period: p, Err: err}
	}

	r, err := report.Parse(p, output, config.Options)
	if err != nil {
		return nil, err
	}

	if useCache {
		if err := c.cache.Store(ctx, c.scope, r); err != nil {
			c.logger.Warn("Failed to cache report", "period", p, "error", err)
		}
	}

	return r, nil
}
