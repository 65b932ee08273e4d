// Package controller provides output adapters for displaying repair-run
// progress and results.
package controller

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"

	m "mendc.dev/pkg/mendc/internal/model"
)

// UI is the interface the search reports through. Implementations render as
// plain text or as a live TUI.
type UI interface {
	Start(ctx context.Context) error
	Close(ctx context.Context)
	RunStarted(ctx context.Context, stem m.Stem, generations, population int)
	GenerationStarted(ctx context.Context, generation, total int)
	GenerationCompleted(ctx context.Context, stats m.GenerationStats)
	BestImproved(ctx context.Context, best m.BestResult)
	RunCompleted(ctx context.Context, summary m.RunSummary)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
