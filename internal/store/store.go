// Package store locates and opens the user-maintained files a conversion
// run depends on: the rule table and extra format descriptors.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/statement-csv/internal/logging"
)

// Store opens configuration artifacts by name.
type Store interface {
	FindConfigFile(filename string) (string, error)
	Open(filename string) (io.ReadCloser, string, error)
}

// FileStore resolves names against the working directory and the user's
// configuration directories.
type FileStore struct {
	// HomeDir overrides os.UserHomeDir, mainly for tests.
	HomeDir string
	logger  logging.Logger
}

// NewFileStore creates a FileStore.
func NewFileStore(logger logging.Logger) *FileStore {
	return &FileStore{logger: logging.OrDefault(logger)}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *FileStore) FindConfigFile(filename string) (string, error) {
	if filename == "" {
		return "", os.ErrNotExist
	}

	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join(".statement-csv", filename),
	}

	home := s.HomeDir
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}
	if home != "" {
		locations = append(locations,
			filepath.Join(home, ".statement-csv", filename),
			filepath.Join(home, ".config", "statement-csv", filename),
		)
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	return "", os.ErrNotExist
}

// Open resolves filename and opens it. The resolved path is returned for
// logging.
func (s *FileStore) Open(filename string) (io.ReadCloser, string, error) {
	path, err := s.FindConfigFile(filename)
	if err != nil {
		s.logger.Warn("Configuration file not found", logging.F(logging.FieldFile, filename))
		return nil, "", fmt.Errorf("configuration file %q: %w", filename, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, path, fmt.Errorf("error opening %s: %w", path, err)
	}
	s.logger.Debug("Opened configuration file", logging.F(logging.FieldFile, path))
	return f, path, nil
}
