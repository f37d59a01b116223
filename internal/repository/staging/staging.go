package staging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// StagedFile is the handle to one staged upload.
type StagedFile struct {
	Path string
}

// Store stages uploaded prescription images on local disk for the duration
// of a single request. Filenames carry a per-request UUID, so concurrent
// uploads never contend on the same path.
type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the staging directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the accepted bytes under a collision-resistant name derived
// from the original file's extension and returns the handle later stages use.
func (s *Store) Save(data []byte, originalName string) (*StagedFile, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	name := "prescription-" + uuid.New().String() + filepath.Ext(originalName)
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write staged file: %w", err)
	}

	return &StagedFile{Path: path}, nil
}

// Read returns the full content of a staged file.
func (s *Store) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read staged file: %w", err)
	}
	return data, nil
}

// Remove deletes a staged file. Removal is idempotent: a file already gone
// is not an error.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove staged file: %w", err)
	}
	return nil
}
