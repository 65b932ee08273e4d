// Package domain provides the core logic for patch-based program repair:
// the shared code bank, the patch transform, variant representation, fitness
// evaluation and the genetic search driver.
package domain

import (
	"fmt"
	"sort"

	"mendc.dev/pkg/mendc/internal/cast"
	m "mendc.dev/pkg/mendc/internal/model"
)

// CodeBank is the immutable mapping from file name to original AST. It is
// the canonical "before" image every variant prints against. Variants never
// mutate it, so a single bank is shared by the whole population.
type CodeBank struct {
	files map[string]*cast.File
	names []string
}

// NewCodeBank wraps parsed files into a bank. An empty bank is a
// configuration error.
func NewCodeBank(files map[string]*cast.File) (*CodeBank, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("code bank is empty")
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}

	sort.Strings(names)

	return &CodeBank{files: files, names: names}, nil
}

// Base returns the underlying file map. Callers must treat it as read-only.
func (b *CodeBank) Base() map[string]*cast.File {
	return b.files
}

// Names returns the file names in stable (sorted) order.
func (b *CodeBank) Names() []string {
	return b.names
}

// File returns the AST for one file name.
func (b *CodeBank) File(name string) (*cast.File, bool) {
	f, ok := b.files[name]
	return f, ok
}

type indexEntry struct {
	file string
	stmt *cast.Stmt
}

// StatementIndex is the bidirectional mapping between statement identifiers
// and statements of the original AST. It is built once at startup by walking
// the bank and is read-only afterwards.
type StatementIndex struct {
	count   int
	entries map[m.Sid]indexEntry
}

// BuildStatementIndex collects every numbered statement in the bank. The
// mapping must be injective: a duplicated sid is a configuration error.
func BuildStatementIndex(bank *CodeBank) (*StatementIndex, error) {
	entries := make(map[m.Sid]indexEntry)

	var dup error

	for _, name := range bank.Names() {
		file, _ := bank.File(name)

		cast.WalkStmts(file, func(s *cast.Stmt) {
			sid := m.Sid(s.ID)
			if sid == m.NoSid {
				return
			}

			if _, ok := entries[sid]; ok && dup == nil {
				dup = fmt.Errorf("statement id %d appears twice in the code bank", sid)
				return
			}

			entries[sid] = indexEntry{file: name, stmt: s}
		})
	}

	if dup != nil {
		return nil, dup
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("code bank contains no numbered statements")
	}

	return &StatementIndex{count: len(entries), entries: entries}, nil
}

// GetStmt returns the file and kind of the statement with the given id.
// Unknown ids are a configuration error.
func (ix *StatementIndex) GetStmt(sid m.Sid) (string, cast.Kind, error) {
	entry, ok := ix.entries[sid]
	if !ok {
		return "", nil, fmt.Errorf("no statement with id %d in the index", sid)
	}

	return entry.file, entry.stmt.Kind, nil
}

// Count returns the total number of indexed statements. Valid sids are
// 1..Count.
func (ix *StatementIndex) Count() int {
	return ix.count
}

// Has reports whether sid is present in the index.
func (ix *StatementIndex) Has(sid m.Sid) bool {
	_, ok := ix.entries[sid]
	return ok
}
