package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FileAssertions provides utilities for asserting file system state in tests.
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates a new file assertions helper.
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

// AssertFileExists validates that a file exists.
func (fa *FileAssertions) AssertFileExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, filepath.FromSlash(relativePath))
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		fa.t.Errorf("Expected file to exist: %s", fullPath)
	}
	return fa
}

// AssertFileNotExists validates that a file does not exist.
func (fa *FileAssertions) AssertFileNotExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, filepath.FromSlash(relativePath))
	if _, err := os.Stat(fullPath); err == nil {
		fa.t.Errorf("Expected file to not exist: %s", fullPath)
	}
	return fa
}

// AssertFileContains validates that a file contains expected content.
func (fa *FileAssertions) AssertFileContains(relativePath, expected string) *FileAssertions {
	fa.t.Helper()
	if content := fa.GetFileContent(relativePath); !strings.Contains(content, expected) {
		fa.t.Errorf("Expected %s to contain %q, got:\n%s", relativePath, expected, content)
	}
	return fa
}

// AssertFileNotContains validates that a file lacks some content.
func (fa *FileAssertions) AssertFileNotContains(relativePath, unexpected string) *FileAssertions {
	fa.t.Helper()
	if content := fa.GetFileContent(relativePath); strings.Contains(content, unexpected) {
		fa.t.Errorf("Expected %s not to contain %q", relativePath, unexpected)
	}
	return fa
}

// GetFileContent returns file content, failing the test if unreadable.
func (fa *FileAssertions) GetFileContent(relativePath string) string {
	fa.t.Helper()
	data, err := os.ReadFile(filepath.Join(fa.baseDir, filepath.FromSlash(relativePath)))
	if err != nil {
		fa.t.Fatalf("Failed to read %s: %v", relativePath, err)
	}
	return string(data)
}
