package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pkgpulse/pkg/cache"
	"github.com/matzehuels/pkgpulse/pkg/httputil"
	"github.com/matzehuels/pkgpulse/pkg/registry"
)

// registryCommand creates the registry command group.
func (c *CLI) registryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Fetch or rebuild the package registry",
	}

	cmd.AddCommand(c.registryFetchCommand())
	cmd.AddCommand(c.registryBuildCommand())

	return cmd
}

// registryFetchCommand downloads the published registry artifact.
func (c *CLI) registryFetchCommand() *cobra.Command {
	var (
		fetchURL   string
		output     string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the latest published registry",
		Long: `Download the latest registry from the crawler's release artifact.

The registry lists every known package name and is the input for scrape runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("url") {
				fetchURL = cfg.Registry.URL
			}
			if !cmd.Flags().Changed("output") {
				output = cfg.Scrape.Registry
			}

			spin := newSpinner(ctx, "Downloading registry")
			spin.Start()

			// Registry downloads are always fresh; no point caching a file
			// that changes every crawler run.
			client := httputil.NewClient(cache.NewNullCache(), 0, map[string]string{
				"User-Agent": cfg.Scrape.UserAgent,
			})
			reg, err := registry.Fetch(ctx, client, fetchURL)
			if err != nil {
				spin.Stop()
				return err
			}

			if err := registry.Write(output, reg); err != nil {
				spin.Stop()
				return err
			}

			spin.StopWithSuccess("Registry downloaded")
			printDetail("%d packages (schema %s)", len(reg.Packages), reg.SchemaVersion)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVar(&fetchURL, "url", registry.DefaultURL, "registry download URL")
	cmd.Flags().StringVarP(&output, "output", "o", "./registry.json", "where to write the registry")
	cmd.Flags().StringVar(&configPath, "config", "", "config file path")

	return cmd
}

// registryBuildCommand regenerates the registry from local crawl documents.
func (c *CLI) registryBuildCommand() *cobra.Command {
	var (
		crawlDir   string
		output     string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Rebuild the registry from crawl documents",
		Long: `Rebuild the registry from a directory of crawl documents.

Each *.json file in the directory is a crawler output document listing
packages from one source. Documents are merged in filename order; the first
occurrence of a package wins, later ones only fill in missing fields.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("crawl") {
				crawlDir = cfg.Registry.CrawlDir
			}
			if !cmd.Flags().Changed("output") {
				output = cfg.Scrape.Registry
			}

			logger := loggerFromContext(cmd.Context())
			logger.Infof("Building registry from %s", crawlDir)

			prog := newProgress(logger)
			reg, err := registry.Build(crawlDir, time.Now().UTC())
			if err != nil {
				return err
			}
			if err := registry.Write(output, reg); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Built registry with %d packages", len(reg.Packages)))

			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVar(&crawlDir, "crawl", "./crawl", "directory of crawl documents")
	cmd.Flags().StringVarP(&output, "output", "o", "./registry.json", "where to write the registry")
	cmd.Flags().StringVar(&configPath, "config", "", "config file path")

	return cmd
}
