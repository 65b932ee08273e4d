package adapter

import (
	"bytes"
	"fmt"
	"os"
)

// WorkdirAdapter abstracts the per-evaluation artefact files in the working
// directory so the fitness evaluator can be tested without touching disk.
type WorkdirAdapter interface {
	// WriteFile writes content to path.
	WriteFile(path string, content []byte) error

	// ReadFile loads a file from disk.
	ReadFile(path string) ([]byte, error)

	// Remove deletes the given paths, ignoring files that do not exist.
	// Used to clear stale artefacts from earlier runs before spawning a
	// harness.
	Remove(paths ...string)

	// CountLines returns the number of newline-terminated lines in the file
	// at path. A missing file counts as zero lines.
	CountLines(path string) (int, error)
}

// LocalWorkdirAdapter is the os-backed implementation.
type LocalWorkdirAdapter struct{}

// NewLocalWorkdirAdapter constructs a LocalWorkdirAdapter.
func NewLocalWorkdirAdapter() *LocalWorkdirAdapter {
	return &LocalWorkdirAdapter{}
}

// WriteFile writes content to path with 0600 permissions.
func (a *LocalWorkdirAdapter) WriteFile(path string, content []byte) error {
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// ReadFile loads file contents from disk.
func (a *LocalWorkdirAdapter) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Remove deletes paths best-effort.
func (a *LocalWorkdirAdapter) Remove(paths ...string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}

// CountLines counts newline-terminated lines.
func (a *LocalWorkdirAdapter) CountLines(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}

		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return bytes.Count(content, []byte("\n")), nil
}
