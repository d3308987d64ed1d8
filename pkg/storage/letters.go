package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LetterStore keeps issued sanction letters on disk under a single base
// directory. Filenames are flattened to their base name so callers cannot
// escape the directory.
type LetterStore struct {
	baseDir string
}

// NewLetterStore ensures the base directory exists and returns a handle.
func NewLetterStore(baseDir string) (*LetterStore, error) {
	if baseDir == "" {
		baseDir = "./letters"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create letters directory: %w", err)
	}
	return &LetterStore{baseDir: baseDir}, nil
}

// Save writes data under filename, replacing any previous copy.
func (s *LetterStore) Save(filename string, data []byte) error {
	if err := os.WriteFile(s.resolve(filename), data, 0o644); err != nil {
		return fmt.Errorf("write letter file: %w", err)
	}
	return nil
}

// Read returns the stored bytes for filename.
func (s *LetterStore) Read(filename string) ([]byte, error) {
	data, err := os.ReadFile(s.resolve(filename))
	if err != nil {
		return nil, fmt.Errorf("read letter file: %w", err)
	}
	return data, nil
}

// Delete removes a stored letter if present.
func (s *LetterStore) Delete(filename string) error {
	if err := os.Remove(s.resolve(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete letter file: %w", err)
	}
	return nil
}

// CleanupOlderThan removes letters whose modification time predates the
// retention window and returns the removed names.
func (s *LetterStore) CleanupOlderThan(retention time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-retention)

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("scan letters directory: %w", err)
	}

	var removed []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove expired letter: %w", err)
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}

func (s *LetterStore) resolve(filename string) string {
	return filepath.Join(s.baseDir, filepath.Base(filename))
}
