// Package model defines the data structures for patch-based program repair.
package model

import (
	"fmt"

	"mendc.dev/pkg/mendc/internal/cast"
)

// Sid is a statement identifier, unique within a run. Statements in the
// original program are numbered from 1; 0 marks a statement that is not
// indexed (freshly copied fragments).
type Sid int

// NoSid is the sentinel for statements outside the statement index.
const NoSid Sid = 0

// EditOp represents the category of an edit operation.
type EditOp string

const (
	// EditDelete replaces a statement with an empty block.
	EditDelete EditOp = "delete"
	// EditAppend replaces a statement with a block containing the original
	// followed by a copy of another statement.
	EditAppend EditOp = "append"
	// EditSwap exchanges the kinds of two statements.
	EditSwap EditOp = "swap"
	// EditPut replaces a statement's kind with a given kind.
	EditPut EditOp = "put"
	// EditReplaceSubatom is reserved for expression-level representations.
	// Printing a variant that carries one is a fatal error.
	EditReplaceSubatom EditOp = "replace-subatom"
	// EditCrossover is reserved. Crossover is realised as history-level
	// exchange, never as an edit of its own.
	EditCrossover EditOp = "crossover"
)

// AtomKind tags the payload carried by an Atom.
type AtomKind int

const (
	// AtomStmt is a statement payload.
	AtomStmt AtomKind = iota
	// AtomExp is an expression payload. Rejected by the core representation.
	AtomExp
)

// Atom is the operand of Put and ReplaceSubatom edits. Stmt holds the
// statement payload when Kind is AtomStmt; Exp holds raw expression text
// when Kind is AtomExp.
type Atom struct {
	Kind AtomKind
	Stmt cast.Kind
	Exp  string
}

// StmtAtom wraps a statement payload.
func StmtAtom(stmt cast.Kind) Atom {
	return Atom{Kind: AtomStmt, Stmt: stmt}
}

// ExpAtom wraps raw expression text.
func ExpAtom(text string) Atom {
	return Atom{Kind: AtomExp, Exp: text}
}

// Edit is one atomic operation on a statement. Target is the statement the
// edit fires on; Source is the second statement for Append and Swap; Atom is
// the payload for Put and ReplaceSubatom; Subatom selects the operand slot
// for ReplaceSubatom.
type Edit struct {
	Op      EditOp
	Target  Sid
	Source  Sid
	Atom    Atom
	Subatom int
}

func (e Edit) String() string {
	switch e.Op {
	case EditDelete:
		return fmt.Sprintf("delete(%d)", e.Target)
	case EditAppend:
		return fmt.Sprintf("append(%d,%d)", e.Target, e.Source)
	case EditSwap:
		return fmt.Sprintf("swap(%d,%d)", e.Target, e.Source)
	case EditPut:
		return fmt.Sprintf("put(%d)", e.Target)
	case EditReplaceSubatom:
		return fmt.Sprintf("replace-subatom(%d,%d)", e.Target, e.Subatom)
	case EditCrossover:
		return fmt.Sprintf("crossover(%d,%d)", e.Target, e.Source)
	}

	return fmt.Sprintf("%s(%d)", string(e.Op), e.Target)
}

// History is the ordered list of edits owned by one variant. Earlier edits
// are applied first; later edits observe the result of earlier edits when
// they target the same statement.
type History []Edit

// Clone returns an independent copy of the history.
func (h History) Clone() History {
	out := make(History, len(h))
	copy(out, h)

	return out
}

// Targets returns every sid mentioned as a target by any edit. For swaps
// both sids count as targets.
func (h History) Targets() map[Sid]struct{} {
	targets := make(map[Sid]struct{}, len(h))

	for _, e := range h {
		targets[e.Target] = struct{}{}
		if e.Op == EditSwap {
			targets[e.Source] = struct{}{}
		}
	}

	return targets
}

func (h History) String() string {
	if len(h) == 0 {
		return "(empty)"
	}

	s := ""

	for i, e := range h {
		if i > 0 {
			s += " "
		}

		s += e.String()
	}

	return s
}
