package cast

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCopyKindIsDeep(t *testing.T) {
	original := &Block{Stmts: []*Stmt{
		{ID: 7, Kind: &Instr{Instrs: []Expr{"x = 1"}}},
		{ID: 8, Kind: &If{Cond: "x", Then: &Stmt{ID: 9, Kind: &Return{Expr: "x"}}}},
	}}

	clone := CopyKind(original).(*Block)

	// Mutating the copy must not leak into the original.
	clone.Stmts[0].Kind.(*Instr).Instrs[0] = "x = 2"
	clone.Stmts[1].Kind.(*If).Cond = "y"

	require.Equal(t, Expr("x = 1"), original.Stmts[0].Kind.(*Instr).Instrs[0])
	require.Equal(t, Expr("x"), original.Stmts[1].Kind.(*If).Cond)
}

func TestCopyStmtResetsIdentifiers(t *testing.T) {
	s := &Stmt{ID: 3, Kind: &Block{Stmts: []*Stmt{
		{ID: 4, Kind: &Return{}},
		{ID: 5, Kind: &While{Cond: "1", Body: &Stmt{ID: 6, Kind: &Block{}}}},
	}}}

	clone := CopyStmt(s)

	var ids []int

	walkStmt(clone, func(st *Stmt) {
		ids = append(ids, st.ID)
	})

	require.Equal(t, []int{0, 0, 0, 0}, ids)
}

func TestNumberAssignsTraversalOrder(t *testing.T) {
	file := sampleFile()

	next := Number(file, 1)
	require.Equal(t, 6, next)

	var ids []int

	WalkStmts(file, func(s *Stmt) {
		ids = append(ids, s.ID)
	})

	require.Equal(t, []int{1, 2, 3, 4, 5}, ids)
}

func TestGobRoundTrip(t *testing.T) {
	file := sampleFile()
	Number(file, 1)

	files := map[string]*File{"prog.c": file}

	var buf bytes.Buffer

	require.NoError(t, EncodeFiles(&buf, files))

	decoded, err := DecodeFiles(&buf)
	require.NoError(t, err)
	require.Len(t, decoded, 1)

	original, err := NewPrinter().Print(file, nil)
	require.NoError(t, err)

	restored, err := NewPrinter().Print(decoded["prog.c"], nil)
	require.NoError(t, err)

	require.Equal(t, original, restored)
}

func TestSummary(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{&Block{}, "{ }"},
		{&If{Cond: "a > b"}, "if (a > b)"},
		{&While{Cond: "1"}, "while (1)"},
		{&Return{Expr: "0"}, "return 0"},
		{&Return{}, "return"},
		{&Instr{Instrs: []Expr{"x = 1", "y = 2"}}, "x = 1; y = 2"},
		{&Raw{Text: "goto out;\nmore"}, "goto out;"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, Summary(tt.kind))
	}
}
