package scrape

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pkgpulse/pkg/dataset"
	"github.com/matzehuels/pkgpulse/pkg/observability"
	"github.com/matzehuels/pkgpulse/pkg/registry"
)

// DefaultConcurrency bounds parallel page fetches per run.
const DefaultConcurrency = 8

// Fetcher retrieves the scraped record for one package.
type Fetcher interface {
	// FetchPackage fetches and parses a package page. See [Client.FetchPackage]
	// for the record/error contract.
	FetchPackage(ctx context.Context, name string, refresh bool, now string) (*dataset.PackageInfo, error)
}

// Options control a scrape run.
type Options struct {
	// Limit caps how many packages are scraped. Negative means unlimited.
	Limit int

	// OlderThan restricts the run to packages whose last scrape is at least
	// this old. Zero means every package qualifies.
	OlderThan time.Duration

	// Concurrency bounds parallel fetches. Zero means DefaultConcurrency.
	Concurrency int

	// Refresh bypasses the page cache.
	Refresh bool
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// Report summarizes a completed scrape run.
type Report struct {
	RunID   string        // unique identifier for log correlation
	Cutoff  string        // the last-scraped cutoff applied by the planner
	Planned int           // packages selected by the planner
	Scraped int           // records with install statistics
	Failed  int           // records with a fail_reason
	Skipped int           // transport errors, no record written
	Elapsed time.Duration // wall time of the fetch phase
}

// PerPackage returns the mean fetch time across all written records.
func (r *Report) PerPackage() time.Duration {
	if n := r.Scraped + r.Failed; n > 0 {
		return r.Elapsed / time.Duration(n)
	}
	return 0
}

// Runner executes scrape runs against a dataset store.
type Runner struct {
	fetcher Fetcher
	store   dataset.Store
}

// NewRunner creates a Runner.
func NewRunner(fetcher Fetcher, store dataset.Store) *Runner {
	return &Runner{fetcher: fetcher, store: store}
}

// Run loads the dataset, plans the run against reg, fetches the planned
// packages concurrently, merges the results, and saves the dataset.
//
// Per-package failures never abort the run: non-200 responses are recorded
// with a fail_reason, transport errors are skipped. The run itself fails
// only on dataset I/O errors or context cancellation; on cancellation the
// dataset is left as it was.
func (r *Runner) Run(ctx context.Context, reg *registry.Registry, opts Options) (*Report, error) {
	opts = opts.withDefaults()

	existing, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	nowStamp := dataset.FormatTime(now)
	cutoff := dataset.FormatTime(now.Add(-opts.OlderThan))

	names := Plan(reg.Names(), existing, cutoff, opts.Limit)

	report := &Report{
		RunID:   uuid.NewString(),
		Cutoff:  cutoff,
		Planned: len(names),
	}

	observability.Scrape().OnRunStart(ctx, len(names))
	if len(names) == 0 {
		observability.Scrape().OnRunComplete(ctx, 0, 0, 0)
		return report, nil
	}

	var (
		mu      sync.Mutex
		results []dataset.PackageInfo
	)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for _, name := range names {
		g.Go(func() error {
			observability.Scrape().OnPackageStart(gctx, name)
			t0 := time.Now()

			info, err := r.fetcher.FetchPackage(gctx, name, opts.Refresh, nowStamp)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				observability.Scrape().OnPackageDone(gctx, name, "", time.Since(t0), err)
				mu.Lock()
				report.Skipped++
				mu.Unlock()
				return nil
			}

			observability.Scrape().OnPackageDone(gctx, name, info.FailReason, time.Since(t0), nil)
			mu.Lock()
			results = append(results, *info)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		observability.Scrape().OnRunComplete(ctx, 0, 0, time.Since(start))
		return nil, err
	}
	report.Elapsed = time.Since(start)

	for _, res := range results {
		if res.Failed() {
			report.Failed++
		} else {
			report.Scraped++
		}
	}

	existing.Merge(results)
	if err := r.store.Save(ctx, existing); err != nil {
		return nil, err
	}

	observability.Scrape().OnRunComplete(ctx, report.Scraped, report.Failed, report.Elapsed)
	return report, nil
}
