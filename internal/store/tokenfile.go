package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenFile keeps the anonymous state token on disk, the CLI's stand-in
// for the URL query slot.
type TokenFile struct {
	path string
}

// NewTokenFile returns a slot stored at path.
func NewTokenFile(path string) *TokenFile {
	return &TokenFile{path: path}
}

// Path returns the file location.
func (f *TokenFile) Path() string {
	return f.path
}

// Read returns the stored token, or "" when the slot is empty.
func (f *TokenFile) Read() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Write replaces the stored token atomically.
func (f *TokenFile) Write(token string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "token-*")
	if err != nil {
		return fmt.Errorf("failed to create temp token: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmp.WriteString(token + "\n"); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close token: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// Clear empties the slot.
func (f *TokenFile) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
