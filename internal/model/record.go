package model

import "time"

// EvalRecord describes one fitness evaluation. Records are appended to the
// evaluation spool so runs can be inspected after the fact.
type EvalRecord struct {
	Serial   int
	Digest   string
	Fitness  float64
	DiffSize int
	Cached   bool
	Compiled bool
}

// BestResult is the best variant seen so far. A candidate replaces the
// current best only when its diff size is no larger and its fitness is no
// smaller.
type BestResult struct {
	Fitness  float64
	DiffSize int
	Source   string
	Serial   int
	Found    time.Time
}

// Dominates reports whether a candidate (diffSize, fitness) pair should
// replace this best.
func (b BestResult) Dominates(diffSize int, fitness float64) bool {
	return diffSize <= b.DiffSize && fitness >= b.Fitness
}

// GenerationStats summarises one generation of the search.
type GenerationStats struct {
	Generation  int
	Evaluated   int
	Survivors   int
	Doublings   int
	BestFitness float64
	MeanFitness float64
	CacheHits   int
}

// RunSummary is written to the stem's report file at termination.
type RunSummary struct {
	Stem            string        `yaml:"stem"`
	Seed            int64         `yaml:"seed"`
	Generations     int           `yaml:"generations"`
	Evaluations     int           `yaml:"evaluations"`
	CacheHits       int           `yaml:"cache_hits"`
	CompileFailures int           `yaml:"compile_failures"`
	RepairFound     bool          `yaml:"repair_found"`
	BestFitness     float64       `yaml:"best_fitness"`
	BestDiffSize    int           `yaml:"best_diff_size"`
	FirstSolution   time.Duration `yaml:"first_solution,omitempty"`
	Elapsed         time.Duration `yaml:"elapsed"`
}
