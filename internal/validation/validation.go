// Package validation checks command inputs before any work starts.
package validation

import (
	"fmt"
	"os"
	"strings"
)

// IsInputFile checks that path exists and is a regular file.
func IsInputFile(path string) error {
	info, err := stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("input %s is not a regular file", path)
	}
	return nil
}

// IsInputDir checks that path exists and is a directory.
func IsInputDir(path string) error {
	info, err := stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("input %s is not a directory", path)
	}
	return nil
}

func stat(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("error checking path %s: %w", path, err)
	}
	return info, nil
}

// IsValidReportFormat checks if the given summary format is supported.
func IsValidReportFormat(format string, supported ...string) error {
	for _, s := range supported {
		if format == s {
			return nil
		}
	}
	return fmt.Errorf("unsupported report format: %s. Supported formats are %s", format, strings.Join(quoted(supported), ", "))
}

func quoted(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = "'" + v + "'"
	}
	return out
}
