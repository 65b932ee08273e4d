package controller

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	m "mendc.dev/pkg/mendc/internal/model"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	improveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// SimpleUI prints one line per generation through the cobra command's
// output stream.
type SimpleUI struct {
	cmd   *cobra.Command
	color bool
}

// NewSimpleUI creates a SimpleUI. When color is false styles degrade to
// plain text.
func NewSimpleUI(cmd *cobra.Command, color bool) *SimpleUI {
	return &SimpleUI{cmd: cmd, color: color}
}

// Start implements UI.
func (u *SimpleUI) Start(_ context.Context) error {
	return nil
}

// Close implements UI.
func (u *SimpleUI) Close(_ context.Context) {}

// RunStarted announces the search parameters.
func (u *SimpleUI) RunStarted(_ context.Context, stem m.Stem, generations, population int) {
	u.cmd.Println(u.style(headerStyle, fmt.Sprintf("repairing %s: %d generations, population %d", stem, generations, population)))
}

// GenerationStarted implements UI. The simple UI stays quiet until the
// generation completes.
func (u *SimpleUI) GenerationStarted(_ context.Context, _, _ int) {}

// GenerationCompleted prints the generation summary line.
func (u *SimpleUI) GenerationCompleted(_ context.Context, stats m.GenerationStats) {
	line := fmt.Sprintf("gen %3d: evaluated %d, survivors %d, best %.1f, mean %.2f",
		stats.Generation, stats.Evaluated, stats.Survivors, stats.BestFitness, stats.MeanFitness)

	if stats.Doublings > 0 {
		line += u.style(subtleStyle, fmt.Sprintf(" (doubled x%d)", stats.Doublings))
	}

	if stats.CacheHits > 0 {
		line += u.style(subtleStyle, fmt.Sprintf(" (%d cached)", stats.CacheHits))
	}

	u.cmd.Println(line)
}

// BestImproved reports a new best-so-far.
func (u *SimpleUI) BestImproved(_ context.Context, best m.BestResult) {
	u.cmd.Println(u.style(improveStyle,
		fmt.Sprintf("new best: fitness %.1f, diff %d bytes (evaluation %d)", best.Fitness, best.DiffSize, best.Serial)))
}

// RunCompleted prints the final verdict.
func (u *SimpleUI) RunCompleted(_ context.Context, summary m.RunSummary) {
	if summary.RepairFound {
		u.cmd.Println(u.style(okStyle,
			fmt.Sprintf("repair found: fitness %.1f, diff %d bytes, first solution after %s",
				summary.BestFitness, summary.BestDiffSize, summary.FirstSolution.Round(timeRound))))
	} else {
		u.cmd.Println(u.style(badStyle, "no adequate program found"))
	}

	u.cmd.Printf("evaluations: %d (%d cached, %d compile failures), elapsed %s\n",
		summary.Evaluations, summary.CacheHits, summary.CompileFailures, summary.Elapsed.Round(timeRound))
}

func (u *SimpleUI) style(s lipgloss.Style, text string) string {
	if !u.color {
		return text
	}

	return s.Render(text)
}
