package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pkgpulse/pkg/dataset"
	"github.com/matzehuels/pkgpulse/pkg/errors"
	"github.com/matzehuels/pkgpulse/pkg/observability"
	"github.com/matzehuels/pkgpulse/pkg/registry"
	"github.com/matzehuels/pkgpulse/pkg/scrape"
)

// scrapeOpts holds the command-line flags for the scrape command.
type scrapeOpts struct {
	registry    string  // registry file path
	output      string  // dataset file path
	limit       int     // max packages this run
	noLimit     bool    // scrape everything due
	olderThan   float64 // minimum staleness in hours
	concurrency int     // parallel fetches
	refresh     bool    // bypass the page cache
	noCache     bool    // disable the page cache entirely
	config      string  // config file path override
}

// scrapeCommand creates the scrape command. It selects the stalest packages
// from the registry, fetches their pages, and merges install statistics into
// the dataset.
func (c *CLI) scrapeCommand() *cobra.Command {
	var opts scrapeOpts

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape install statistics into the local dataset",
		Long: `Scrape install statistics from packagecontrol.io into the local dataset.

Packages are picked from the registry, oldest scrape first, so repeated runs
work through the whole registry a batch at a time.

Examples:
  pkgpulse scrape                      # 20 stalest packages
  pkgpulse scrape --limit 100          # bigger batch
  pkgpulse scrape --no-limit           # everything
  pkgpulse scrape --if-older-than 24   # only packages not scraped today`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runScrape(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.registry, "registry", "r", "", "registry file (default ./registry.json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "dataset file (default ./packages_info.json)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "maximum packages to scrape (default 20)")
	cmd.Flags().BoolVar(&opts.noLimit, "no-limit", false, "scrape all due packages")
	cmd.Flags().Float64Var(&opts.olderThan, "if-older-than", 0, "only scrape packages last scraped at least this many hours ago")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "parallel page fetches (default 8)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the page cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the page cache")
	cmd.Flags().StringVar(&opts.config, "config", "", "config file path")

	return cmd
}

func (c *CLI) runScrape(cmd *cobra.Command, opts scrapeOpts) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	if flags.Changed("limit") && opts.noLimit {
		return errors.New(errors.ErrCodeInvalidInput, "--limit and --no-limit are mutually exclusive")
	}

	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}

	// Flags override config, config overrides defaults.
	if !flags.Changed("registry") {
		opts.registry = cfg.Scrape.Registry
	}
	if !flags.Changed("limit") {
		opts.limit = cfg.Scrape.Limit
	}
	if !flags.Changed("concurrency") {
		opts.concurrency = cfg.Scrape.Concurrency
	}

	limit := opts.limit
	if opts.noLimit {
		limit = -1
	}

	reg, err := registry.Load(opts.registry)
	if err != nil {
		return err
	}

	backend, err := newCacheBackend(ctx, cfg.Cache, opts.noCache)
	if err != nil {
		return err
	}
	defer backend.Close()

	outputPath := opts.output
	if outputPath == "" && cfg.Store.Backend != "mongo" {
		outputPath = cfg.Scrape.Output
	}
	store, err := newStore(ctx, cfg.Store, outputPath)
	if err != nil {
		return err
	}
	defer store.Close()

	// ctrl-c inside the raw-mode progress bar never reaches the signal
	// handler, so the UI gets its own way to cancel the run.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	observability.SetScrapeHooks(newScrapeUI(c.Logger, cancel))
	defer observability.Reset()

	client := scrape.NewClient(backend, time.Duration(cfg.Cache.TTLHours)*time.Hour, cfg.Scrape.UserAgent)
	runner := scrape.NewRunner(client, store)

	report, err := runner.Run(ctx, reg, scrape.Options{
		Limit:       limit,
		OlderThan:   time.Duration(opts.olderThan * float64(time.Hour)),
		Concurrency: opts.concurrency,
		Refresh:     opts.refresh,
	})
	if err != nil {
		return err
	}

	if report.Planned == 0 {
		if opts.olderThan > 0 {
			printInfo("No packages scraped before %s, nothing to do.", cutoffLocal(report.Cutoff))
		} else {
			printInfo("Nothing to scrape.")
		}
		return nil
	}

	written := report.Scraped + report.Failed
	printSuccess("Scraped %d packages, %d ms per package", written, report.PerPackage().Milliseconds())
	if report.Failed > 0 {
		printWarning("%d packages recorded a failure", report.Failed)
	}
	if report.Skipped > 0 {
		printError("%d packages skipped (network errors)", report.Skipped)
	}
	printFile(store.Describe())

	c.Logger.Debug("scrape run complete",
		"run_id", report.RunID,
		"planned", report.Planned,
		"scraped", report.Scraped,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"elapsed", report.Elapsed,
	)
	return nil
}

// cutoffLocal renders a dataset timestamp in the machine's local zone for
// display; the stored value stays UTC.
func cutoffLocal(cutoff string) string {
	t, err := dataset.ParseTime(cutoff)
	if err != nil {
		return cutoff
	}
	return t.Local().Format(dataset.TimeLayout)
}
