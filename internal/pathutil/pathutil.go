// Package pathutil provides shared path validation helpers.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateFilePath rejects paths that cannot name a regular file: empty
// paths, paths containing null bytes, and paths ending in a separator.
func ValidateFilePath(filePath string) error {
	if strings.TrimSpace(filePath) == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	if strings.Contains(filePath, "\x00") {
		return fmt.Errorf("file path contains invalid characters")
	}
	if strings.HasSuffix(filepath.ToSlash(filePath), "/") {
		return fmt.Errorf("file path names a directory: %q", filePath)
	}
	return nil
}

// EnsureParentDir creates every missing directory above filePath.
func EnsureParentDir(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}
