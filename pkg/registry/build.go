package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/matzehuels/pkgpulse/pkg/errors"
)

// CrawlDoc is one raw crawl document produced by the pkgcrawl crawler:
// the packages discovered in a single crawled source (a channel or
// repository listing).
type CrawlDoc struct {
	Source    string  `json:"source"`
	FetchedAt string  `json:"fetched_at,omitempty"`
	Packages  []Entry `json:"packages"`
}

// Build regenerates the registry from a directory of crawl documents
// (*.json). Documents are processed in filename order; the first occurrence
// of a package wins, with later occurrences only filling in missing
// description and homepage fields. The result is sorted by name and
// validated.
func Build(dir string, now time.Time) (*Registry, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan crawl dir: %w", err)
	}
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no crawl documents in %s", dir)
	}
	sort.Strings(paths)

	byName := make(map[string]*Entry)
	var order []string
	for _, path := range paths {
		doc, err := readCrawlDoc(path)
		if err != nil {
			return nil, err
		}
		for _, pkg := range doc.Packages {
			if pkg.Name == "" {
				return nil, errors.New(errors.ErrCodeInvalidInput, "entry with empty name in %s", filepath.Base(path))
			}
			existing, ok := byName[pkg.Name]
			if !ok {
				p := pkg
				byName[pkg.Name] = &p
				order = append(order, pkg.Name)
				continue
			}
			if existing.Description == "" {
				existing.Description = pkg.Description
			}
			if existing.Homepage == "" {
				existing.Homepage = pkg.Homepage
			}
		}
	}

	r := &Registry{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   now.UTC().Format(time.RFC3339),
		Packages:      make([]Entry, 0, len(order)),
	}
	for _, name := range order {
		r.Packages = append(r.Packages, *byName[name])
	}
	r.sortByName()

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func readCrawlDoc(path string) (*CrawlDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read crawl document: %w", err)
	}
	var doc CrawlDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse crawl document %s", filepath.Base(path))
	}
	return &doc, nil
}
