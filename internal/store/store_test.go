package store

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/statement-csv/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestFindConfigFile_Absolute(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "payees.csv")
	writeFile(t, testFile, "Biedronka,Biedronka\n")

	s := NewFileStore(logging.NewMockLogger())

	file, err := s.FindConfigFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, testFile, file)

	_, err = s.FindConfigFile(filepath.Join(dir, "nonexistent.csv"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFindConfigFile_SearchPath(t *testing.T) {
	work := t.TempDir()
	home := t.TempDir()
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(work))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	writeFile(t, filepath.Join(work, "config", "local.csv"), "x")
	writeFile(t, filepath.Join(home, ".config", "statement-csv", "home.csv"), "y")

	s := NewFileStore(logging.NewMockLogger())
	s.HomeDir = home

	got, err := s.FindConfigFile("local.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("config", "local.csv"), got)

	got, err = s.FindConfigFile("home.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "statement-csv", "home.csv"), got)

	_, err = s.FindConfigFile("")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formats.yaml")
	writeFile(t, path, "formats: []\n")

	logger := logging.NewMockLogger()
	s := NewFileStore(logger)

	rc, resolved, err := s.Open(path)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "formats: []\n", string(data))
	assert.Equal(t, path, resolved)

	_, _, err = s.Open(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
	assert.True(t, logger.HasEntry("WARN", "Configuration file not found"))
}

func TestMockStore(t *testing.T) {
	m := &MockStore{Files: map[string]string{"rules.csv": "a,b\n"}}
	rc, _, err := m.Open("rules.csv")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "a,b\n", string(data))

	_, _, err = m.Open("other.csv")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
