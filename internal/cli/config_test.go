package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Scrape.Registry != "./registry.json" {
		t.Errorf("Scrape.Registry = %q, want ./registry.json", cfg.Scrape.Registry)
	}
	if cfg.Scrape.Output != "./packages_info.json" {
		t.Errorf("Scrape.Output = %q, want ./packages_info.json", cfg.Scrape.Output)
	}
	if cfg.Scrape.Limit != 20 {
		t.Errorf("Scrape.Limit = %d, want 20", cfg.Scrape.Limit)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("Store.Backend = %q, want file", cfg.Store.Backend)
	}
	if cfg.Serve.Addr != "localhost:8080" {
		t.Errorf("Serve.Addr = %q, want localhost:8080", cfg.Serve.Addr)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	// Point XDG at an empty dir so no config file is found.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Scrape.Limit != 20 {
		t.Errorf("missing config should yield defaults, Limit = %d", cfg.Scrape.Limit)
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Error("explicit missing config file should be an error")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[scrape]
limit = 100
registry = "/data/registry.json"

[cache]
backend = "redis"
redis_addr = "localhost:6379"

[store]
backend = "mongo"
mongo_uri = "mongodb://localhost:27017"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.Scrape.Limit != 100 {
		t.Errorf("Scrape.Limit = %d, want 100", cfg.Scrape.Limit)
	}
	if cfg.Scrape.Registry != "/data/registry.json" {
		t.Errorf("Scrape.Registry = %q, want /data/registry.json", cfg.Scrape.Registry)
	}
	if cfg.Cache.Backend != "redis" {
		t.Errorf("Cache.Backend = %q, want redis", cfg.Cache.Backend)
	}
	if cfg.Store.Backend != "mongo" {
		t.Errorf("Store.Backend = %q, want mongo", cfg.Store.Backend)
	}

	// Unset keys keep their defaults.
	if cfg.Scrape.Output != "./packages_info.json" {
		t.Errorf("Scrape.Output = %q, want default", cfg.Scrape.Output)
	}
	if cfg.Cache.TTLHours != 24 {
		t.Errorf("Cache.TTLHours = %d, want 24", cfg.Cache.TTLHours)
	}
}

func TestLoadConfigBroken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadConfig(path); err == nil {
		t.Error("broken config file should be an error")
	}
}
