package cast

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleFile() *File {
	return &File{
		Name: "prog.c",
		Decls: []Decl{
			&RawDecl{Text: "#include <stdio.h>"},
			&FuncDef{
				Header: "int main(int argc, char **argv)",
				Body: &Stmt{Kind: &Block{Stmts: []*Stmt{
					{Kind: &Instr{Instrs: []Expr{"int a = 12"}}},
					{Kind: &If{
						Cond: "a > 0",
						Then: &Stmt{Kind: &Instr{Instrs: []Expr{"a = a - 4"}}},
					}},
					{Kind: &Return{Expr: "a"}},
				}}},
			},
		},
	}
}

func TestPrintSampleFile(t *testing.T) {
	source, err := NewPrinter().Print(sampleFile(), nil)
	require.NoError(t, err)

	expected := `#include <stdio.h>

int main(int argc, char **argv)
{
    int a = 12;
    if (a > 0)
        a = a - 4;
    return a;
}
`
	require.Equal(t, expected, source)
}

func TestPrintLoopForms(t *testing.T) {
	file := &File{
		Name: "loops.c",
		Decls: []Decl{&FuncDef{
			Header: "void f(void)",
			Body: &Stmt{Kind: &Block{Stmts: []*Stmt{
				{Kind: &While{Cond: "i < 10", Body: &Stmt{Kind: &Instr{Instrs: []Expr{"i++"}}}}},
				{Kind: &DoWhile{Cond: "j > 0", Body: &Stmt{Kind: &Instr{Instrs: []Expr{"j--"}}}}},
				{Kind: &For{Init: "k = 0", Cond: "k < 3", Post: "k++", Body: &Stmt{Kind: &Block{}}}},
				{Kind: &Raw{Text: "goto done;"}},
				{Labels: []string{"done"}, Kind: &Return{}},
			}}},
		}},
	}

	source, err := NewPrinter().Print(file, nil)
	require.NoError(t, err)

	expected := `void f(void)
{
    while (i < 10)
        i++;
    do
        j--;
    while (j > 0);
    for (k = 0; k < 3; k++)
        {
        }
    goto done;
    done:
    return;
}
`
	require.Equal(t, expected, source)
}

func TestPrintTransformRewritesStatements(t *testing.T) {
	file := sampleFile()
	Number(file, 1)

	// Replace every return with an empty block.
	source, err := NewPrinter().Print(file, func(s *Stmt) (*Stmt, error) {
		if _, ok := s.Kind.(*Return); ok {
			return s.WithKind(EmptyBlock()), nil
		}

		return s, nil
	})
	require.NoError(t, err)

	require.NotContains(t, source, "return a;")
	require.Contains(t, source, "{\n    }\n")
}

func TestPrintTransformRecursesIntoRewrittenStatements(t *testing.T) {
	file := sampleFile()
	Number(file, 1)

	visited := make(map[int]int)

	_, err := NewPrinter().Print(file, func(s *Stmt) (*Stmt, error) {
		visited[s.ID]++
		return s, nil
	})
	require.NoError(t, err)

	// All five statements are visited exactly once: the body block, the
	// two instructions, the if and the return.
	require.Len(t, visited, 5)
	for id, n := range visited {
		require.Equal(t, 1, n, "statement %d visited %d times", id, n)
	}
}

func TestPrintTransformErrorAborts(t *testing.T) {
	file := sampleFile()

	_, err := NewPrinter().Print(file, func(s *Stmt) (*Stmt, error) {
		if _, ok := s.Kind.(*Return); ok {
			return nil, fmt.Errorf("boom at statement %d", s.ID)
		}

		return s, nil
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
}

func TestPrintIsDeterministic(t *testing.T) {
	file := sampleFile()
	Number(file, 1)

	first, err := NewPrinter().Print(file, nil)
	require.NoError(t, err)

	second, err := NewPrinter().Print(file, nil)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestKindText(t *testing.T) {
	text := KindText(&Return{Expr: "0"})
	require.Equal(t, "return 0;\n", text)
}
