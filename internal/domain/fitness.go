package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"mendc.dev/pkg/mendc/internal/adapter"
	m "mendc.dev/pkg/mendc/internal/model"
	"mendc.dev/pkg/mendc/pkg"
)

// EvaluatorConfig carries the externally configured pieces of fitness
// evaluation.
type EvaluatorConfig struct {
	Compiler    string
	Ldflags     string
	GoodCommand string
	BadCommand  string
	BadFactor   float64
	MaxFitness  float64
	Baseline    string
	// FirstPort seeds the monotonic port counter handed to harnesses.
	FirstPort int
}

// Evaluator turns a variant into a scalar fitness by rendering its source,
// compiling it and running the good/bad harnesses. Results are memoised by
// a digest of the rendered source, so two variants that collapse to the
// same text compile once. Safe for concurrent use.
type Evaluator struct {
	cfg      EvaluatorConfig
	compiler adapter.CompilerAdapter
	harness  adapter.HarnessAdapter
	diff     adapter.DiffAdapter
	workdir  adapter.WorkdirAdapter
	spool    pkg.Spool[m.EvalRecord]

	serial atomic.Int64
	port   atomic.Int64

	memoMu sync.Mutex
	memo   map[string]float64

	bestMu sync.Mutex
	best   *m.BestResult

	cacheHits       atomic.Int64
	compileFailures atomic.Int64
}

// NewEvaluator wires an evaluator. spool may be nil when no evaluation
// journal is wanted.
func NewEvaluator(
	cfg EvaluatorConfig,
	compiler adapter.CompilerAdapter,
	harness adapter.HarnessAdapter,
	diff adapter.DiffAdapter,
	workdir adapter.WorkdirAdapter,
	spool pkg.Spool[m.EvalRecord],
) *Evaluator {
	e := &Evaluator{
		cfg:      cfg,
		compiler: compiler,
		harness:  harness,
		diff:     diff,
		workdir:  workdir,
		spool:    spool,
		memo:     make(map[string]float64),
	}

	e.port.Store(int64(cfg.FirstPort))

	return e
}

// Evaluate computes the fitness of one variant. Candidate failures (compile
// errors, harness failures) map to fitness 0 and never abort the search;
// only configuration errors (an unprintable history) are returned.
func (e *Evaluator) Evaluate(ctx context.Context, v *Variant) (float64, error) {
	serial := int(e.serial.Add(1))

	units, err := v.EmitSource()
	if err != nil {
		return 0, err
	}

	digest := sourceDigest(units)

	// Diagnostic labels are not part of the memoisation key: a labelled
	// variant is keyed on the digest of its unlabelled source.
	if v.labels {
		plain := v.Clone()
		plain.SetLabels(false)

		plainUnits, err := plain.EmitSource()
		if err != nil {
			return 0, err
		}

		digest = sourceDigest(plainUnits)
	}

	if fitness, ok := e.lookup(digest); ok {
		e.cacheHits.Add(1)
		e.record(m.EvalRecord{Serial: serial, Digest: digest, Fitness: fitness, Cached: true})
		slog.Debug("fitness cache hit", "serial", serial, "digest", digest, "fitness", fitness)

		return fitness, nil
	}

	art := m.ArtefactsFor(serial)
	e.workdir.Remove(art.Source, art.Exe, art.GoodLog, art.BadLog, art.Fitness, art.Size)

	sources := make([]string, 0, len(units))

	for i, unit := range units {
		path := art.SourceFor(i)
		if err := e.workdir.WriteFile(path, []byte(unit.Source)); err != nil {
			return e.fail(serial, digest, "write", err), nil
		}

		sources = append(sources, path)
	}

	output, err := e.compiler.Compile(ctx, e.cfg.Compiler, e.cfg.Ldflags, sources, art.Exe)
	if err != nil {
		e.compileFailures.Add(1)
		slog.Debug("compile failed", "serial", serial, "error", err, "output", output)

		return e.fail(serial, digest, "compile", err), nil
	}

	goodLines, err := e.runHarness(ctx, e.cfg.GoodCommand, art.Exe, art.GoodLog)
	if err != nil {
		return e.fail(serial, digest, "good harness", err), nil
	}

	badLines, err := e.runHarness(ctx, e.cfg.BadCommand, art.Exe, art.BadLog)
	if err != nil {
		return e.fail(serial, digest, "bad harness", err), nil
	}

	fitness := float64(goodLines) + e.cfg.BadFactor*float64(badLines)

	_ = e.workdir.WriteFile(art.Fitness, []byte(fmt.Sprintf("%f\n", fitness)))

	diffSize := 0

	if fitness >= e.cfg.MaxFitness {
		diffSize = e.trackBest(ctx, serial, art, units, fitness)
	}

	e.store(digest, fitness)
	e.record(m.EvalRecord{Serial: serial, Digest: digest, Fitness: fitness, DiffSize: diffSize, Compiled: true})
	slog.Debug("evaluated variant", "serial", serial, "fitness", fitness, "good", goodLines, "bad", badLines)

	return fitness, nil
}

// Best returns a copy of the best-so-far result, if any candidate has
// reached max fitness.
func (e *Evaluator) Best() (m.BestResult, bool) {
	e.bestMu.Lock()
	defer e.bestMu.Unlock()

	if e.best == nil {
		return m.BestResult{}, false
	}

	return *e.best, true
}

// Evaluations returns the number of serials issued so far.
func (e *Evaluator) Evaluations() int {
	return int(e.serial.Load())
}

// CacheHits returns the number of memoised evaluations.
func (e *Evaluator) CacheHits() int {
	return int(e.cacheHits.Load())
}

// CompileFailures returns the number of candidates that failed to compile.
func (e *Evaluator) CompileFailures() int {
	return int(e.compileFailures.Load())
}

// runHarness invokes the harness with a fresh port and counts the
// passing-test lines it wrote. Stale logs are removed by Evaluate before the
// candidate is compiled.
func (e *Evaluator) runHarness(ctx context.Context, command, exe, logPath string) (int, error) {
	port := int(e.port.Add(1))

	if _, err := e.harness.RunHarness(ctx, command, exe, logPath, port); err != nil {
		return 0, err
	}

	return e.workdir.CountLines(logPath)
}

// trackBest measures the candidate's distance from the baseline and updates
// the best-so-far under lock. A candidate replaces the current best only
// when its diff is no larger and its fitness no smaller.
func (e *Evaluator) trackBest(ctx context.Context, serial int, art m.Artefacts, units []SourceFile, fitness float64) int {
	diffSize, err := e.diff.DiffSize(ctx, art.Source, e.cfg.Baseline)
	if err != nil {
		slog.Warn("failed to size diff for repair candidate", "serial", serial, "error", err)
		return 0
	}

	_ = e.workdir.WriteFile(art.Size, []byte(strconv.Itoa(diffSize)+"\n"))

	e.bestMu.Lock()
	defer e.bestMu.Unlock()

	if e.best == nil || e.best.Dominates(diffSize, fitness) {
		e.best = &m.BestResult{
			Fitness:  fitness,
			DiffSize: diffSize,
			Source:   units[0].Source,
			Serial:   serial,
			Found:    time.Now(),
		}

		slog.Info("new best repair candidate", "serial", serial, "fitness", fitness, "diff_size", diffSize)
	}

	return diffSize
}

// fail maps a candidate error to fitness zero, caching the digest so the
// same broken source is not retried.
func (e *Evaluator) fail(serial int, digest, stage string, err error) float64 {
	slog.Warn("candidate failed", "serial", serial, "stage", stage, "error", err)
	e.store(digest, 0)
	e.record(m.EvalRecord{Serial: serial, Digest: digest})

	return 0
}

func (e *Evaluator) lookup(digest string) (float64, bool) {
	e.memoMu.Lock()
	defer e.memoMu.Unlock()

	fitness, ok := e.memo[digest]

	return fitness, ok
}

func (e *Evaluator) store(digest string, fitness float64) {
	e.memoMu.Lock()
	defer e.memoMu.Unlock()

	e.memo[digest] = fitness
}

func (e *Evaluator) record(rec m.EvalRecord) {
	if e.spool == nil {
		return
	}

	if err := e.spool.Append(rec); err != nil {
		slog.Warn("failed to journal evaluation", "serial", rec.Serial, "error", err)
	}
}

// sourceDigest hashes the rendered sources of a candidate. Two histories
// that collapse to the same text share a digest.
func sourceDigest(units []SourceFile) string {
	h := sha256.New()

	for _, unit := range units {
		h.Write([]byte(unit.Name))
		h.Write([]byte{0})
		h.Write([]byte(unit.Source))
	}

	return hex.EncodeToString(h.Sum(nil))
}
