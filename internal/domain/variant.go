package domain

import (
	"fmt"

	"mendc.dev/pkg/mendc/internal/cast"
	m "mendc.dev/pkg/mendc/internal/model"
)

// SourceFile is one rendered source unit of a variant.
type SourceFile struct {
	Name   string
	Source string
}

// Variant is a candidate repair: a reference to the shared code bank plus an
// owned edit history. The weighted path and statement index are inherited
// unchanged from parent to child. All operations are pure with respect to
// the bank.
type Variant struct {
	bank    *CodeBank
	index   *StatementIndex
	history m.History
	path    m.WeightedPath
	labels  bool
}

// NewVariant builds the root variant from the loaded inputs. The path is
// deduplicated before use.
func NewVariant(bank *CodeBank, index *StatementIndex, path m.WeightedPath) *Variant {
	return &Variant{
		bank:  bank,
		index: index,
		path:  path.Dedup(),
	}
}

// Clone returns a child sharing the bank, index and path, with an
// independent copy of the history.
func (v *Variant) Clone() *Variant {
	return &Variant{
		bank:    v.bank,
		index:   v.index,
		history: v.history.Clone(),
		path:    v.path,
		labels:  v.labels,
	}
}

// SetLabels toggles diagnostic edit labels in emitted source.
func (v *Variant) SetLabels(on bool) {
	v.labels = on
}

// History returns the variant's edit history. Callers must not mutate it.
func (v *Variant) History() m.History {
	return v.history
}

// SetHistory replaces the history wholesale. Used by crossover and
// deserialisation.
func (v *Variant) SetHistory(h m.History) {
	v.history = h
}

// Path returns the variant's weighted path.
func (v *Variant) Path() m.WeightedPath {
	return v.path
}

// Index returns the shared statement index.
func (v *Variant) Index() *StatementIndex {
	return v.index
}

// Delete appends a delete edit for sid.
func (v *Variant) Delete(sid m.Sid) {
	v.history = append(v.history, m.Edit{Op: m.EditDelete, Target: sid})
}

// Append appends an append edit copying source after target.
func (v *Variant) Append(target, source m.Sid) {
	v.history = append(v.history, m.Edit{Op: m.EditAppend, Target: target, Source: source})
}

// Swap appends a swap edit exchanging the kinds of a and b.
func (v *Variant) Swap(a, b m.Sid) {
	v.history = append(v.history, m.Edit{Op: m.EditSwap, Target: a, Source: b})
}

// Put appends a put edit replacing sid's kind.
func (v *Variant) Put(sid m.Sid, kind cast.Kind) {
	v.history = append(v.history, m.Edit{Op: m.EditPut, Target: sid, Atom: m.StmtAtom(kind)})
}

// ReplaceSubatom records the intent of an expression-level replacement.
// Other representations implement it; printing this variant afterwards is a
// fatal error.
func (v *Variant) ReplaceSubatom(sid m.Sid, subatom int, atom m.Atom) {
	v.history = append(v.history, m.Edit{Op: m.EditReplaceSubatom, Target: sid, Subatom: subatom, Atom: atom})
}

// Get returns the post-edit kind visible at sid.
func (v *Variant) Get(sid m.Sid) (cast.Kind, error) {
	_, kind, err := v.index.GetStmt(sid)
	if err != nil {
		return nil, err
	}

	xform := BuildTransform(v.history, v.index, false)

	stmt, err := xform(&cast.Stmt{ID: int(sid), Kind: kind})
	if err != nil {
		return nil, err
	}

	return stmt.Kind, nil
}

// EmitSource renders every file of the code bank with the variant's edits
// applied. One transform instance spans all files so each edit fires at most
// once per emission.
func (v *Variant) EmitSource() ([]SourceFile, error) {
	xform := BuildTransform(v.history, v.index, v.labels)
	printer := cast.NewPrinter()

	out := make([]SourceFile, 0, len(v.bank.Names()))

	for _, name := range v.bank.Names() {
		file, _ := v.bank.File(name)

		source, err := printer.Print(file, xform)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", name, err)
		}

		out = append(out, SourceFile{Name: name, Source: source})
	}

	return out, nil
}
