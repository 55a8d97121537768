// Package registry defines the package registry consumed by the scraper.
//
// The registry is a JSON document listing every known package. It is
// produced by the pkgcrawl crawler project and obtained one of two ways:
// downloaded pre-built from the crawler's release artifact ([Fetch]), or
// regenerated locally from the crawler's raw crawl documents ([Build]).
// The scraper only consumes package names; descriptive fields are carried
// through for the serve API.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/matzehuels/pkgpulse/pkg/errors"
)

// SchemaVersion is the registry schema written by [Build].
const SchemaVersion = "4.0.0"

// Registry is the package index consumed by the scraper.
type Registry struct {
	SchemaVersion string  `json:"schema_version"`
	GeneratedAt   string  `json:"generated_at,omitempty"` // RFC 3339, set by Build
	Packages      []Entry `json:"packages"`
}

// Entry describes one package in the registry.
type Entry struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Homepage    string   `json:"homepage,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Authors     []string `json:"authors,omitempty"`
}

// Names returns all package names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.Packages))
	for i, p := range r.Packages {
		names[i] = p.Name
	}
	return names
}

// Lookup returns the entry for name, if present.
func (r *Registry) Lookup(name string) (Entry, bool) {
	for _, p := range r.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return Entry{}, false
}

// Validate checks registry invariants: at least one package, no empty or
// duplicate names.
func (r *Registry) Validate() error {
	if len(r.Packages) == 0 {
		return errors.New(errors.ErrCodeInvalidRegistry, "registry contains no packages")
	}
	seen := make(map[string]bool, len(r.Packages))
	for _, p := range r.Packages {
		if p.Name == "" {
			return errors.New(errors.ErrCodeInvalidRegistry, "registry entry with empty name")
		}
		if seen[p.Name] {
			return errors.New(errors.ErrCodeInvalidRegistry, "duplicate package %q", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// sortByName orders packages alphabetically for stable output.
func (r *Registry) sortByName() {
	sort.Slice(r.Packages, func(i, j int) bool {
		return r.Packages[i].Name < r.Packages[j].Name
	})
}

// Parse decodes and validates a registry document.
func Parse(data []byte) (*Registry, error) {
	var r Registry
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRegistry, err, "parse registry")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Load reads and validates the registry file at path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "registry %s not found (run 'pkgpulse registry fetch' first)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	return Parse(data)
}

// Write stores the registry at path as indented JSON.
func Write(path string, r *Registry) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
