// Package cli implements the pkgpulse command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pkgpulse/pkg/buildinfo"
	"github.com/matzehuels/pkgpulse/pkg/cache"
	"github.com/matzehuels/pkgpulse/pkg/dataset"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pkgpulse"

	// mongoTimeout bounds the initial connection to a Mongo store.
	mongoTimeout = 10 * time.Second
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "pkgpulse",
		Short:        "Pkgpulse tracks install statistics for Sublime Text packages",
		Long:         `Pkgpulse scrapes install statistics from packagecontrol.io into a local dataset, keeps the package registry up to date, and serves the collected data over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.scrapeCommand())
	root.AddCommand(c.registryCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Backend Factories
// =============================================================================

// newCacheBackend creates the HTTP response cache from config. noCache and
// the "none" backend both yield a null cache; an unusable file cache degrades
// to null rather than failing the command.
func newCacheBackend(ctx context.Context, cfg CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	if cfg.Backend == "redis" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	dir := cfg.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// newStore creates the dataset store from config. An explicit output path
// always selects the file backend.
func newStore(ctx context.Context, cfg StoreConfig, outputPath string) (dataset.Store, error) {
	if cfg.Backend == "mongo" && outputPath == "" {
		ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
		defer cancel()
		return dataset.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
	}
	if outputPath == "" {
		outputPath = defaultConfig().Scrape.Output
	}
	return dataset.NewFileStore(outputPath), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pkgpulse/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
