package domain

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"gopkg.in/yaml.v3"

	"mendc.dev/pkg/mendc/internal/adapter"
	"mendc.dev/pkg/mendc/internal/cast"
	"mendc.dev/pkg/mendc/internal/controller"
	m "mendc.dev/pkg/mendc/internal/model"
	"mendc.dev/pkg/mendc/pkg"
)

// RepairArgs parameterises one repair run. Defaults mirror the CLI flags.
type RepairArgs struct {
	Stem           m.Stem
	Seed           int64
	Compiler       string
	Ldflags        string
	GoodCommand    string
	BadCommand     string
	Generations    int
	Population     int
	MaxFitness     float64
	MutationChance float64
	InsChance      float64
	DelChance      float64
	SwapChance     float64
	BadFactor      float64
	GoodPathFactor float64
	Jobs           int
	Labels         bool
}

// ExtractArgs parameterises stem bootstrapping from C source.
type ExtractArgs struct {
	Sources []m.Path
	Stem    m.Stem
}

// Workflow is the top-level use-case layer the CLI talks to.
type Workflow interface {
	// Repair loads a stem, runs the genetic search and writes the result
	// files. A run that finds no repair still returns nil.
	Repair(ctx context.Context, args RepairArgs) error

	// Extract parses C sources and writes the stem files (.ast, .ht, .path)
	// a repair run starts from.
	Extract(ctx context.Context, args ExtractArgs) error
}

type workflow struct {
	stems    adapter.StemAdapter
	workdir  adapter.WorkdirAdapter
	compiler adapter.CompilerAdapter
	harness  adapter.HarnessAdapter
	diff     adapter.DiffAdapter
	cfiles   adapter.CFileAdapter
	ui       controller.UI
}

// NewWorkflow wires the workflow from its collaborators.
func NewWorkflow(
	stems adapter.StemAdapter,
	workdir adapter.WorkdirAdapter,
	compiler adapter.CompilerAdapter,
	harness adapter.HarnessAdapter,
	diff adapter.DiffAdapter,
	cfiles adapter.CFileAdapter,
	ui controller.UI,
) Workflow {
	return &workflow{
		stems:    stems,
		workdir:  workdir,
		compiler: compiler,
		harness:  harness,
		diff:     diff,
		cfiles:   cfiles,
		ui:       ui,
	}
}

func (w *workflow) Repair(ctx context.Context, args RepairArgs) error {
	started := time.Now()

	root, index, err := w.loadRoot(args)
	if err != nil {
		return err
	}

	slog.Info("loaded inputs", "stem", args.Stem, "statements", index.Count(), "path_steps", len(root.Path()))

	if err := w.writeBaseline(args.Stem, root); err != nil {
		return err
	}

	spool, err := pkg.NewSpool[m.EvalRecord](args.Stem.Evals())
	if err != nil {
		return err
	}

	defer func() { _ = spool.Close() }()

	rng := rand.New(rand.NewSource(args.Seed))

	eval := NewEvaluator(EvaluatorConfig{
		Compiler:    args.Compiler,
		Ldflags:     args.Ldflags,
		GoodCommand: args.GoodCommand,
		BadCommand:  args.BadCommand,
		BadFactor:   args.BadFactor,
		MaxFitness:  args.MaxFitness,
		Baseline:    args.Stem.Baseline(),
		FirstPort:   800 + rng.Intn(800),
	}, w.compiler, w.harness, w.diff, w.workdir, spool)

	genetic := NewGenetic(rng, args.SwapChance, args.DelChance, args.InsChance)

	driver := NewDriver(SearchConfig{
		Generations:    args.Generations,
		Population:     args.Population,
		MutationChance: args.MutationChance,
		Jobs:           args.Jobs,
	}, eval, genetic, rng, w.ui)

	if err := w.ui.Start(ctx); err != nil {
		return fmt.Errorf("failed to start ui: %w", err)
	}

	defer w.ui.Close(ctx)

	w.ui.RunStarted(ctx, args.Stem, args.Generations, args.Population)

	best, found, searchErr := driver.Search(ctx, root)

	summary := m.RunSummary{
		Stem:            string(args.Stem),
		Seed:            args.Seed,
		Generations:     args.Generations,
		Evaluations:     eval.Evaluations(),
		CacheHits:       eval.CacheHits(),
		CompileFailures: eval.CompileFailures(),
		RepairFound:     found,
		Elapsed:         time.Since(started),
	}

	if found {
		summary.BestFitness = best.Fitness
		summary.BestDiffSize = best.DiffSize
		summary.FirstSolution = best.Found.Sub(started)

		if err := w.workdir.WriteFile(args.Stem.Best(), []byte(best.Source)); err != nil {
			return err
		}

		slog.Info("repair found", "fitness", best.Fitness, "diff_size", best.DiffSize,
			"first_solution", summary.FirstSolution, "evaluations", summary.Evaluations)
	} else {
		slog.Info("no adequate program found", "evaluations", summary.Evaluations)
	}

	if err := w.writeSummary(args.Stem, summary); err != nil {
		return err
	}

	w.ui.RunCompleted(ctx, summary)

	return searchErr
}

// loadRoot builds the shared bank, index and root variant from the stem
// files, validating the invariants the search relies on.
func (w *workflow) loadRoot(args RepairArgs) (*Variant, *StatementIndex, error) {
	files, err := w.stems.LoadBank(args.Stem)
	if err != nil {
		return nil, nil, err
	}

	bank, err := NewCodeBank(files)
	if err != nil {
		return nil, nil, err
	}

	index, err := BuildStatementIndex(bank)
	if err != nil {
		return nil, nil, err
	}

	info, err := w.stems.LoadIndexInfo(args.Stem)
	if err != nil {
		return nil, nil, err
	}

	if info.Count != index.Count() {
		return nil, nil, fmt.Errorf("ht file counts %d statements but the ast contains %d", info.Count, index.Count())
	}

	path, err := w.stems.LoadWeightedPath(args.Stem, args.GoodPathFactor)
	if err != nil {
		return nil, nil, err
	}

	for _, step := range path {
		if !index.Has(step.Sid) {
			return nil, nil, fmt.Errorf("path references unknown statement %d", step.Sid)
		}
	}

	root := NewVariant(bank, index, path)
	root.SetLabels(args.Labels)

	return root, index, nil
}

// writeBaseline renders the unedited bank, the diff target every repair
// candidate is measured against.
func (w *workflow) writeBaseline(stem m.Stem, root *Variant) error {
	units, err := root.EmitSource()
	if err != nil {
		return err
	}

	return w.workdir.WriteFile(stem.Baseline(), []byte(units[0].Source))
}

func (w *workflow) writeSummary(stem m.Stem, summary m.RunSummary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	return w.workdir.WriteFile(stem.Report(), data)
}

func (w *workflow) Extract(ctx context.Context, args ExtractArgs) error {
	if len(args.Sources) == 0 {
		return fmt.Errorf("no source files given")
	}

	files := make(map[string]*cast.File, len(args.Sources))
	next := 1

	for _, source := range args.Sources {
		content, err := w.workdir.ReadFile(string(source))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", source, err)
		}

		file, err := w.cfiles.Parse(ctx, string(source), content)
		if err != nil {
			return err
		}

		next = cast.Number(file, next)
		files[string(source)] = file
	}

	bank, err := NewCodeBank(files)
	if err != nil {
		return err
	}

	index, err := BuildStatementIndex(bank)
	if err != nil {
		return err
	}

	if err := w.stems.SaveBank(args.Stem, files); err != nil {
		return err
	}

	byFile := make(map[int]string, index.Count())
	sids := make([]m.Sid, 0, index.Count())

	for sid := 1; sid <= index.Count(); sid++ {
		file, _, err := index.GetStmt(m.Sid(sid))
		if err != nil {
			return err
		}

		byFile[sid] = file
		sids = append(sids, m.Sid(sid))
	}

	if err := w.stems.SaveIndexInfo(args.Stem, adapter.IndexInfo{Count: index.Count(), Files: byFile}); err != nil {
		return err
	}

	if err := w.stems.SavePath(args.Stem.PathFile(), sids); err != nil {
		return err
	}

	slog.Info("extracted stem", "stem", args.Stem, "files", len(files), "statements", index.Count())

	return nil
}
