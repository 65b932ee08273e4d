package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "mendc.dev/pkg/mendc/internal/model"
)

const timeRound = time.Millisecond * 10

// TUI renders a live progress view of the search with bubbletea.
type TUI struct {
	program *tea.Program
	done    chan struct{}
	once    sync.Once
}

// NewTUI creates a TUI controller.
func NewTUI() *TUI {
	return &TUI{done: make(chan struct{})}
}

type tuiModel struct {
	spinner     spinner.Model
	progress    progress.Model
	stem        m.Stem
	generations int
	population  int
	generation  int
	stats       []m.GenerationStats
	best        *m.BestResult
	summary     *m.RunSummary
	quitting    bool
}

type runStartedMsg struct {
	stem        m.Stem
	generations int
	population  int
}

type generationStartedMsg struct{ generation int }

type generationCompletedMsg struct{ stats m.GenerationStats }

type bestImprovedMsg struct{ best m.BestResult }

type runCompletedMsg struct{ summary m.RunSummary }

func newTUIModel() tuiModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return tuiModel{
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

// Init implements tea.Model.
func (mdl tuiModel) Init() tea.Cmd {
	return mdl.spinner.Tick
}

// Update implements tea.Model.
func (mdl tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			mdl.quitting = true
			return mdl, tea.Quit
		}
	case runStartedMsg:
		mdl.stem = msg.stem
		mdl.generations = msg.generations
		mdl.population = msg.population
	case generationStartedMsg:
		mdl.generation = msg.generation
	case generationCompletedMsg:
		mdl.stats = append(mdl.stats, msg.stats)
	case bestImprovedMsg:
		best := msg.best
		mdl.best = &best
	case runCompletedMsg:
		summary := msg.summary
		mdl.summary = &summary

		return mdl, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		mdl.spinner, cmd = mdl.spinner.Update(msg)

		return mdl, cmd
	}

	return mdl, nil
}

// View implements tea.Model.
func (mdl tuiModel) View() string {
	if mdl.quitting {
		return ""
	}

	view := headerStyle.Render(fmt.Sprintf("repairing %s", mdl.stem)) + "\n"

	if mdl.generations > 0 {
		ratio := float64(mdl.generation) / float64(mdl.generations)
		view += mdl.progress.ViewAs(ratio) + "\n"
		view += fmt.Sprintf("%s generation %d/%d, population %d\n",
			mdl.spinner.View(), mdl.generation, mdl.generations, mdl.population)
	}

	if n := len(mdl.stats); n > 0 {
		last := mdl.stats[n-1]
		view += subtleStyle.Render(fmt.Sprintf("last: evaluated %d, survivors %d, best %.1f, mean %.2f",
			last.Evaluated, last.Survivors, last.BestFitness, last.MeanFitness)) + "\n"
	}

	if mdl.best != nil {
		view += improveStyle.Render(fmt.Sprintf("best so far: fitness %.1f, diff %d bytes",
			mdl.best.Fitness, mdl.best.DiffSize)) + "\n"
	}

	if mdl.summary != nil {
		if mdl.summary.RepairFound {
			view += okStyle.Render("repair found") + "\n"
		} else {
			view += badStyle.Render("no adequate program found") + "\n"
		}
	}

	return lipgloss.NewStyle().Padding(0, 1).Render(view)
}

// Start launches the bubbletea program in the background.
func (t *TUI) Start(_ context.Context) error {
	t.program = tea.NewProgram(newTUIModel())

	go func() {
		defer close(t.done)
		_, _ = t.program.Run()
	}()

	return nil
}

// Close shuts the program down and waits for the render loop to exit.
func (t *TUI) Close(_ context.Context) {
	t.once.Do(func() {
		if t.program != nil {
			t.program.Quit()
		}

		<-t.done
	})
}

// RunStarted implements UI.
func (t *TUI) RunStarted(_ context.Context, stem m.Stem, generations, population int) {
	t.program.Send(runStartedMsg{stem: stem, generations: generations, population: population})
}

// GenerationStarted implements UI.
func (t *TUI) GenerationStarted(_ context.Context, generation, _ int) {
	t.program.Send(generationStartedMsg{generation: generation})
}

// GenerationCompleted implements UI.
func (t *TUI) GenerationCompleted(_ context.Context, stats m.GenerationStats) {
	t.program.Send(generationCompletedMsg{stats: stats})
}

// BestImproved implements UI.
func (t *TUI) BestImproved(_ context.Context, best m.BestResult) {
	t.program.Send(bestImprovedMsg{best: best})
}

// RunCompleted implements UI.
func (t *TUI) RunCompleted(_ context.Context, summary m.RunSummary) {
	t.program.Send(runCompletedMsg{summary: summary})
	<-t.done
}

var _ UI = (*TUI)(nil)
var _ UI = (*SimpleUI)(nil)
