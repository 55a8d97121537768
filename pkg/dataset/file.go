package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the dataset as a single indented JSON file.
// Writes go through a temp file and rename, so a crashed run never leaves
// a half-written dataset behind.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the JSON file at path.
// The file does not have to exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the dataset file. A missing file yields an empty dataset.
func (s *FileStore) Load(ctx context.Context) (Dataset, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Dataset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var d Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", s.path, err)
	}
	if d == nil {
		d = Dataset{}
	}
	return d, nil
}

// Save writes the dataset atomically.
func (s *FileStore) Save(ctx context.Context, d Dataset) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".pkgpulse-*.json")
	if err != nil {
		return fmt.Errorf("create temp dataset: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close dataset: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename dataset: %w", err)
	}
	return nil
}

// Describe returns the dataset file path.
func (s *FileStore) Describe() string { return s.path }

// Close does nothing for file stores.
func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
