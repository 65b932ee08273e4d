package domain

import (
	"fmt"

	"mendc.dev/pkg/mendc/internal/cast"
	m "mendc.dev/pkg/mendc/internal/model"
)

// pending is one application an edit is still owed. Most edits owe exactly
// one; a swap owes two, one per side, so both statements exchange kinds off
// a single edit. editIdx is the owning edit's position in the history, used
// to resolve source kinds against the prefix of strictly earlier edits.
type pending struct {
	editIdx int
	key     m.Sid
	edit    m.Edit
	tag     string
	// other is the statement whose kind this application copies in
	// (swap sides, append source).
	other m.Sid
}

// expand flattens a history into its pending applications, in history
// order.
func expand(history m.History) []pending {
	out := make([]pending, 0, len(history))

	for i, e := range history {
		switch e.Op {
		case m.EditSwap:
			out = append(out,
				pending{editIdx: i, key: e.Target, edit: e, tag: "swap1", other: e.Source},
				pending{editIdx: i, key: e.Source, edit: e, tag: "swap2", other: e.Target},
			)
		case m.EditAppend:
			out = append(out, pending{editIdx: i, key: e.Target, edit: e, tag: "app", other: e.Source})
		case m.EditDelete:
			out = append(out, pending{editIdx: i, key: e.Target, edit: e, tag: "del"})
		case m.EditPut:
			out = append(out, pending{editIdx: i, key: e.Target, edit: e, tag: "put"})
		default:
			out = append(out, pending{editIdx: i, key: e.Target, edit: e})
		}
	}

	return out
}

// xform is the state of one print run: the full expanded history (for
// prefix lookups) and the applications that have not fired yet.
type xform struct {
	ix         *StatementIndex
	all        []pending
	remaining  []pending
	withLabels bool
}

// BuildTransform compiles a history into the per-statement rewriter the
// printer streams the original AST through. The transform is fast in the
// common case of a statement no edit targets.
//
// Each pending application fires at most once per print run: once applied
// it is removed, so a block produced by an append that re-contains the
// original statement does not re-trigger the same edit on the nested visit.
// Applications fire in history order, threading an accumulator statement,
// so later edits observe the result of earlier ones. A swap or append
// resolves the other statement's kind under the history prefix that
// precedes it, which is what makes a repeated swap cancel out.
//
// When withLabels is set the rewritten statement carries a synthetic label
// naming the edit. Labels are diagnostics only and never feed the fitness
// digest.
func BuildTransform(history m.History, ix *StatementIndex, withLabels bool) cast.Transform {
	targets := history.Targets()
	all := expand(history)

	t := &xform{
		ix:         ix,
		all:        all,
		remaining:  append([]pending(nil), all...),
		withLabels: withLabels,
	}

	return func(s *cast.Stmt) (*cast.Stmt, error) {
		sid := m.Sid(s.ID)
		if sid == m.NoSid {
			return s, nil
		}

		if _, ok := targets[sid]; !ok {
			return s, nil
		}

		return t.rewrite(s, sid)
	}
}

// rewrite folds the statement's still-pending applications over it.
func (t *xform) rewrite(s *cast.Stmt, sid m.Sid) (*cast.Stmt, error) {
	acc := s
	kept := t.remaining[:0]

	var failed error

	for _, p := range t.remaining {
		if failed != nil || p.key != sid {
			kept = append(kept, p)
			continue
		}

		next, err := t.apply(p, acc)
		if err != nil {
			failed = err
			kept = append(kept, p)

			continue
		}

		acc = next
	}

	t.remaining = kept

	if failed != nil {
		return nil, failed
	}

	return acc, nil
}

// apply performs one pending application on the accumulator.
func (t *xform) apply(p pending, acc *cast.Stmt) (*cast.Stmt, error) {
	switch p.edit.Op {
	case m.EditPut:
		if p.edit.Atom.Kind != m.AtomStmt {
			return nil, fmt.Errorf("cannot put a non-statement atom at statement %d", p.key)
		}

		return t.label(acc.WithKind(cast.CopyKind(p.edit.Atom.Stmt)), p.tag), nil

	case m.EditSwap:
		kind, err := t.kindBefore(p.other, p.editIdx)
		if err != nil {
			return nil, err
		}

		return t.label(acc.WithKind(cast.CopyKind(kind)), p.tag), nil

	case m.EditAppend:
		kind, err := t.kindBefore(p.other, p.editIdx)
		if err != nil {
			return nil, err
		}

		// The appended copy is re-numbered to the "not indexed" sentinel so
		// the transform never re-targets it on the nested visit.
		appended := &cast.Stmt{ID: int(m.NoSid), Kind: cast.CopyKind(kind)}

		return t.label(&cast.Stmt{ID: acc.ID, Kind: cast.BlockOf(acc, appended)}, p.tag), nil

	case m.EditDelete:
		return t.label(acc.WithKind(cast.EmptyBlock()), p.tag), nil

	case m.EditReplaceSubatom:
		return nil, fmt.Errorf("replace-subatom is not supported by the patch representation (statement %d)", p.key)

	case m.EditCrossover:
		return nil, fmt.Errorf("crossover is not an applicable edit (statement %d)", p.key)
	}

	return nil, fmt.Errorf("unknown edit %s at statement %d", p.edit.Op, p.key)
}

// kindBefore resolves the kind of sid as visible after the edits strictly
// preceding position uptoEdit in the history. Both sides of a swap resolve
// against the same prefix, which is what makes one swap exchange kinds and
// a repeated swap cancel out. Recursion always moves to a strictly earlier
// prefix, so it terminates.
func (t *xform) kindBefore(sid m.Sid, uptoEdit int) (cast.Kind, error) {
	_, kind, err := t.ix.GetStmt(sid)
	if err != nil {
		return nil, err
	}

	acc := &cast.Stmt{ID: int(sid), Kind: kind}

	for _, p := range t.all {
		if p.editIdx >= uptoEdit {
			break
		}

		if p.key != sid {
			continue
		}

		switch p.edit.Op {
		case m.EditPut:
			if p.edit.Atom.Kind != m.AtomStmt {
				return nil, fmt.Errorf("cannot put a non-statement atom at statement %d", p.key)
			}

			acc = acc.WithKind(cast.CopyKind(p.edit.Atom.Stmt))

		case m.EditSwap:
			other, err := t.kindBefore(p.other, p.editIdx)
			if err != nil {
				return nil, err
			}

			acc = acc.WithKind(cast.CopyKind(other))

		case m.EditAppend:
			other, err := t.kindBefore(p.other, p.editIdx)
			if err != nil {
				return nil, err
			}

			appended := &cast.Stmt{ID: int(m.NoSid), Kind: cast.CopyKind(other)}
			acc = &cast.Stmt{ID: acc.ID, Kind: cast.BlockOf(acc, appended)}

		case m.EditDelete:
			acc = acc.WithKind(cast.EmptyBlock())

		case m.EditReplaceSubatom, m.EditCrossover:
			return nil, fmt.Errorf("edit %s is not applicable (statement %d)", p.edit.Op, p.key)
		}
	}

	return acc.Kind, nil
}

func (t *xform) label(s *cast.Stmt, tag string) *cast.Stmt {
	if !t.withLabels {
		return s
	}

	return s.WithLabel(fmt.Sprintf("mend_%s_%d", tag, s.ID))
}
