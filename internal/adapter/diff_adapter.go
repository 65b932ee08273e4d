package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// DiffAdapter measures how far a candidate source strays from the baseline.
type DiffAdapter interface {
	// DiffSize returns the byte count of a minimal edit-script diff between
	// the candidate and the baseline file.
	DiffSize(ctx context.Context, candidate, baseline string) (int, error)
}

// LocalDiffAdapter shells out to `diff -e`, mirroring
// `diff -e <candidate> <baseline> | wc -c`.
type LocalDiffAdapter struct{}

// NewLocalDiffAdapter constructs a LocalDiffAdapter.
func NewLocalDiffAdapter() *LocalDiffAdapter {
	return &LocalDiffAdapter{}
}

// DiffSize runs diff and counts the bytes of the edit script. diff exits 1
// when the files differ, which is not an error here.
func (a *LocalDiffAdapter) DiffSize(ctx context.Context, candidate, baseline string) (int, error) {
	cmd := exec.CommandContext(ctx, "diff", "-e", candidate, baseline)

	var stdout bytes.Buffer

	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() > 1 {
			return 0, fmt.Errorf("failed to diff %s against %s: %w", candidate, baseline, err)
		}
	}

	return stdout.Len(), nil
}
