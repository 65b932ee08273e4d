package model

import "fmt"

// Stem is the input path stem all run files derive from.
type Stem string

// AST is the serialised original AST.
func (s Stem) AST() string { return string(s) + ".ast" }

// HT is the serialised (count, statement index) pair.
func (s Stem) HT() string { return string(s) + ".ht" }

// PathFile is the weighted execution path, one sid per line.
func (s Stem) PathFile() string { return string(s) + ".path" }

// GoodPathFile is the optional list of sids on the successful path.
func (s Stem) GoodPathFile() string { return string(s) + ".goodpath" }

// DebugLog is the diagnostic log file.
func (s Stem) DebugLog() string { return string(s) + ".debug" }

// Baseline is the pretty-printed original used as the diff baseline.
func (s Stem) Baseline() string { return string(s) + "-baseline.c" }

// Best is the pretty-printed best variant written at termination.
func (s Stem) Best() string { return string(s) + "-best.c" }

// Report is the yaml run summary.
func (s Stem) Report() string { return string(s) + "-report.yaml" }

// Evals is the gob spool of evaluation records.
func (s Stem) Evals() string { return string(s) + ".evals" }

// Artefacts names the per-evaluation files for one serial number.
type Artefacts struct {
	Source  string
	Exe     string
	GoodLog string
	BadLog  string
	Fitness string
	Size    string
}

// ArtefactsFor derives the artefact file names for an evaluation serial.
func ArtefactsFor(serial int) Artefacts {
	return Artefacts{
		Source:  fmt.Sprintf("%05d-file.c", serial),
		Exe:     fmt.Sprintf("%05d-prog", serial),
		GoodLog: fmt.Sprintf("%05d-good", serial),
		BadLog:  fmt.Sprintf("%05d-bad", serial),
		Fitness: fmt.Sprintf("%05d-fitness", serial),
		Size:    fmt.Sprintf("%05d-size", serial),
	}
}

// SourceFor names the source artefact for one bank file of a multi-file
// candidate. The primary (first) file keeps the plain name.
func (a Artefacts) SourceFor(index int) string {
	if index == 0 {
		return a.Source
	}

	return fmt.Sprintf("%s.%d.c", a.Source[:len(a.Source)-2], index)
}
