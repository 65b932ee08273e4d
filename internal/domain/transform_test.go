package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mendc.dev/pkg/mendc/internal/cast"
	m "mendc.dev/pkg/mendc/internal/model"
)

// testBank builds a four-statement program:
//
//	sid 1: the function body block
//	sid 2: int a = 12;
//	sid 3: a = a - 4;
//	sid 4: return a;
func testBank(t *testing.T) (*CodeBank, *StatementIndex) {
	t.Helper()

	file := &cast.File{
		Name: "prog.c",
		Decls: []cast.Decl{
			&cast.RawDecl{Text: "#include <stdio.h>"},
			&cast.FuncDef{
				Header: "int main(int argc, char **argv)",
				Body: &cast.Stmt{Kind: &cast.Block{Stmts: []*cast.Stmt{
					{Kind: &cast.Instr{Instrs: []cast.Expr{"int a = 12"}}},
					{Kind: &cast.Instr{Instrs: []cast.Expr{"a = a - 4"}}},
					{Kind: &cast.Return{Expr: "a"}},
				}}},
			},
		},
	}

	cast.Number(file, 1)

	bank, err := NewCodeBank(map[string]*cast.File{"prog.c": file})
	require.NoError(t, err)

	index, err := BuildStatementIndex(bank)
	require.NoError(t, err)
	require.Equal(t, 4, index.Count())

	return bank, index
}

func testPath() m.WeightedPath {
	return m.WeightedPath{
		{Weight: 1.0, Sid: 2},
		{Weight: 1.0, Sid: 3},
		{Weight: 1.0, Sid: 4},
	}
}

func emit(t *testing.T, v *Variant) string {
	t.Helper()

	units, err := v.EmitSource()
	require.NoError(t, err)
	require.Len(t, units, 1)

	return units[0].Source
}

func TestDeleteReplacesStatementWithEmptyBlock(t *testing.T) {
	bank, index := testBank(t)

	baseline := emit(t, NewVariant(bank, index, testPath()))

	v := NewVariant(bank, index, testPath())
	v.Delete(3)

	source := emit(t, v)

	require.NotContains(t, source, "a = a - 4;")
	require.Contains(t, source, "int a = 12;")
	require.Contains(t, source, "return a;")
	require.NotEqual(t, baseline, source)
}

func TestSwapExchangesBothStatements(t *testing.T) {
	bank, index := testBank(t)

	v := NewVariant(bank, index, testPath())
	v.Swap(2, 4)

	source := emit(t, v)

	// Statement 2 now prints as the return, statement 4 as the
	// declaration.
	wantOrder := strings.Index(source, "return a;") < strings.Index(source, "int a = 12;")
	require.True(t, wantOrder, "swap did not exchange statement positions:\n%s", source)

	require.Equal(t, 1, strings.Count(source, "return a;"))
	require.Equal(t, 1, strings.Count(source, "int a = 12;"))
}

func TestSwapTwiceIsIdentity(t *testing.T) {
	bank, index := testBank(t)

	baseline := emit(t, NewVariant(bank, index, testPath()))

	v := NewVariant(bank, index, testPath())
	v.Swap(2, 4)
	v.Swap(2, 4)

	require.Equal(t, baseline, emit(t, v))
}

func TestAppendFiresExactlyOnce(t *testing.T) {
	bank, index := testBank(t)

	baseline := emit(t, NewVariant(bank, index, testPath()))

	v := NewVariant(bank, index, testPath())
	v.Append(2, 4)

	source := emit(t, v)

	// Exactly one more copy of the appended statement than the baseline,
	// even though the produced block re-contains statement 2.
	require.Equal(t, strings.Count(baseline, "return a;")+1, strings.Count(source, "return a;"))
	require.Equal(t, strings.Count(baseline, "int a = 12;"), strings.Count(source, "int a = 12;"))
}

func TestDeleteThenAppendComposes(t *testing.T) {
	bank, index := testBank(t)

	v := NewVariant(bank, index, testPath())
	v.Delete(2)
	v.Append(2, 4)

	source := emit(t, v)

	// Position 2 holds a block of an empty block followed by the appended
	// statement.
	require.NotContains(t, source, "int a = 12;")
	require.Equal(t, 2, strings.Count(source, "return a;"))
}

func TestUnusedEditOrderDoesNotMatter(t *testing.T) {
	bank, index := testBank(t)

	a := NewVariant(bank, index, testPath())
	a.Delete(2)
	a.Delete(4)

	b := NewVariant(bank, index, testPath())
	b.Delete(4)
	b.Delete(2)

	require.Equal(t, emit(t, a), emit(t, b))
}

func TestConflictingEditOrderMatters(t *testing.T) {
	bank, index := testBank(t)

	// Delete-then-append leaves the appended copy; append-then-delete
	// erases everything at that position.
	a := NewVariant(bank, index, testPath())
	a.Delete(2)
	a.Append(2, 4)

	b := NewVariant(bank, index, testPath())
	b.Append(2, 4)
	b.Delete(2)

	require.NotEqual(t, emit(t, a), emit(t, b))
}

func TestPutReplacesKind(t *testing.T) {
	bank, index := testBank(t)

	v := NewVariant(bank, index, testPath())
	v.Put(3, &cast.Instr{Instrs: []cast.Expr{"a = 0"}})

	source := emit(t, v)

	require.Contains(t, source, "a = 0;")
	require.NotContains(t, source, "a = a - 4;")
}

func TestPutExpressionAtomIsFatal(t *testing.T) {
	bank, index := testBank(t)

	v := NewVariant(bank, index, testPath())
	v.SetHistory(m.History{{Op: m.EditPut, Target: 3, Atom: m.ExpAtom("a + 1")}})

	_, err := v.EmitSource()
	require.Error(t, err)
	require.Contains(t, err.Error(), "statement 3")
}

func TestReplaceSubatomIsFatalWhenPrinted(t *testing.T) {
	bank, index := testBank(t)

	v := NewVariant(bank, index, testPath())
	v.ReplaceSubatom(3, 0, m.ExpAtom("a + 1"))

	_, err := v.EmitSource()
	require.Error(t, err)
	require.Contains(t, err.Error(), "replace-subatom")
}

func TestCrossoverEditIsFatalWhenPrinted(t *testing.T) {
	bank, index := testBank(t)

	v := NewVariant(bank, index, testPath())
	v.SetHistory(m.History{{Op: m.EditCrossover, Target: 3, Source: 4}})

	_, err := v.EmitSource()
	require.Error(t, err)
	require.Contains(t, err.Error(), "crossover")
}

func TestEditOnUnknownSidIsFatal(t *testing.T) {
	bank, index := testBank(t)

	v := NewVariant(bank, index, testPath())
	v.Swap(2, 99)

	_, err := v.EmitSource()
	require.Error(t, err)
	require.Contains(t, err.Error(), "99")
}

func TestGetReturnsPostEditKind(t *testing.T) {
	bank, index := testBank(t)

	v := NewVariant(bank, index, testPath())
	v.Delete(3)

	kind, err := v.Get(3)
	require.NoError(t, err)

	block, ok := kind.(*cast.Block)
	require.True(t, ok)
	require.Empty(t, block.Stmts)
}

func TestLabelsMarkEditedStatements(t *testing.T) {
	bank, index := testBank(t)

	v := NewVariant(bank, index, testPath())
	v.SetLabels(true)
	v.Delete(3)

	source := emit(t, v)

	require.Contains(t, source, "mend_del_3:")
}
