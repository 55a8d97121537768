package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pkgpulse/internal/server"
)

// serveCommand creates the serve command, exposing the dataset over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scraped dataset over HTTP",
		Long: `Serve the scraped dataset as a small JSON API.

Endpoints:
  GET /healthz                 liveness check
  GET /api/packages            all packages (?sort=, ?limit=)
  GET /api/packages/{name}     a single package
  GET /api/registry            the registry file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Serve.Addr
			}

			outputPath := cfg.Scrape.Output
			if cfg.Store.Backend == "mongo" {
				outputPath = ""
			}
			store, err := newStore(ctx, cfg.Store, outputPath)
			if err != nil {
				return err
			}
			defer store.Close()

			// Server.Run logs the listen address once it is up.
			return server.New(store, cfg.Scrape.Registry, c.Logger).Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	cmd.Flags().StringVar(&configPath, "config", "", "config file path")

	return cmd
}
