package store

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// MockStore serves files from memory.
type MockStore struct {
	Files map[string]string
}

// FindConfigFile reports name when it is present in Files.
func (m *MockStore) FindConfigFile(filename string) (string, error) {
	if _, ok := m.Files[filename]; !ok {
		return "", os.ErrNotExist
	}
	return filename, nil
}

// Open returns the in-memory content of filename.
func (m *MockStore) Open(filename string) (io.ReadCloser, string, error) {
	content, ok := m.Files[filename]
	if !ok {
		return nil, "", fmt.Errorf("configuration file %q: %w", filename, os.ErrNotExist)
	}
	return io.NopCloser(strings.NewReader(content)), filename, nil
}
