package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pkgpulse/pkg/buildinfo"
	"github.com/matzehuels/pkgpulse/pkg/registry"
)

// Config holds the optional pkgpulse configuration file, loaded from
// $XDG_CONFIG_HOME/pkgpulse/config.toml (or --config). Values resolve in
// three layers: built-in defaults, then the config file, then explicit
// command-line flags.
type Config struct {
	Scrape   ScrapeConfig   `toml:"scrape"`
	Cache    CacheConfig    `toml:"cache"`
	Store    StoreConfig    `toml:"store"`
	Registry RegistryConfig `toml:"registry"`
	Serve    ServeConfig    `toml:"serve"`
}

// ScrapeConfig configures the scrape command.
type ScrapeConfig struct {
	Registry    string `toml:"registry"`    // registry file path
	Output      string `toml:"output"`      // dataset file path
	Limit       int    `toml:"limit"`       // max packages per run
	Concurrency int    `toml:"concurrency"` // parallel fetches
	UserAgent   string `toml:"user_agent"`
}

// CacheConfig configures the HTTP response cache.
type CacheConfig struct {
	Backend       string `toml:"backend"` // "file", "redis", or "none"
	Dir           string `toml:"dir"`     // file backend directory ("" = default)
	TTLHours      int    `toml:"ttl_hours"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// StoreConfig configures the dataset store.
type StoreConfig struct {
	Backend  string `toml:"backend"` // "file" or "mongo"
	MongoURI string `toml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db"`
}

// RegistryConfig configures registry fetch and build.
type RegistryConfig struct {
	URL      string `toml:"url"`       // release artifact URL
	CrawlDir string `toml:"crawl_dir"` // crawl documents for local builds
}

// ServeConfig configures the serve command.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// defaultConfig returns the built-in defaults.
func defaultConfig() Config {
	return Config{
		Scrape: ScrapeConfig{
			Registry:    "./registry.json",
			Output:      "./packages_info.json",
			Limit:       20,
			Concurrency: 8,
			UserAgent:   fmt.Sprintf("pkgpulse/%s (+https://github.com/matzehuels/pkgpulse)", buildinfo.Version),
		},
		Cache: CacheConfig{
			Backend:  "file",
			TTLHours: 24,
		},
		Store: StoreConfig{
			Backend: "file",
		},
		Registry: RegistryConfig{
			URL:      registry.DefaultURL,
			CrawlDir: "./crawl",
		},
		Serve: ServeConfig{
			Addr: "localhost:8080",
		},
	}
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing file yields the built-in defaults; a broken file
// is an error.
func loadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = configPath(); err != nil {
			return defaultConfig(), nil
		}
	}

	cfg := defaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// configPath returns the config file location using the XDG standard
// (~/.config/pkgpulse/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
