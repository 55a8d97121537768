package dataset

import "context"

// Store is the interface for dataset storage backends.
type Store interface {
	// Load reads the full dataset. A backend with no data yet returns an
	// empty (non-nil) Dataset, not an error.
	Load(ctx context.Context) (Dataset, error)

	// Save persists the full dataset.
	Save(ctx context.Context, d Dataset) error

	// Describe returns a human-readable location for status output
	// (a file path, a connection target).
	Describe() string

	// Close releases any resources held by the backend.
	Close() error
}
