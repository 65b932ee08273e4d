package domain

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mendc.dev/pkg/mendc/internal/adapter"
	"mendc.dev/pkg/mendc/internal/cast"
	m "mendc.dev/pkg/mendc/internal/model"
)

// fakeCFiles hands back a pre-built AST regardless of the source text.
type fakeCFiles struct {
	file func(name string) *cast.File
}

func (f *fakeCFiles) Parse(_ context.Context, name string, _ []byte) (*cast.File, error) {
	return f.file(name), nil
}

func testCFile(name string) *cast.File {
	return &cast.File{
		Name: name,
		Decls: []cast.Decl{&cast.FuncDef{
			Header: "int main(void)",
			Body: &cast.Stmt{Kind: &cast.Block{Stmts: []*cast.Stmt{
				{Kind: &cast.Instr{Instrs: []cast.Expr{"int a = 12"}}},
				{Kind: &cast.Instr{Instrs: []cast.Expr{"a = a - 4"}}},
				{Kind: &cast.Return{Expr: "a"}},
			}}},
		}},
	}
}

func newTestWorkflow(fs *memFS, eval *evalFixture, cfiles adapter.CFileAdapter) Workflow {
	return NewWorkflow(
		adapter.NewLocalStemAdapter(),
		fs,
		eval.compiler,
		eval.harness,
		eval.diff,
		cfiles,
		&nopUI{},
	)
}

func TestExtractThenRepairRoundTrip(t *testing.T) {
	dir := t.TempDir()
	stem := m.Stem(filepath.Join(dir, "prog"))
	source := filepath.Join(dir, "prog.c")

	// The workflow's working directory is the fixture's memFS, so the fake
	// compiler and harness see the candidate sources the evaluator writes.
	fx := newEvalFixture(t, EvaluatorConfig{})
	fs := fx.fs
	require.NoError(t, fs.WriteFile(source, []byte("int main(void) { ... }")))

	w := newTestWorkflow(fs, fx, &fakeCFiles{file: testCFile})

	require.NoError(t, w.Extract(context.Background(), ExtractArgs{
		Sources: []m.Path{m.Path(source)},
		Stem:    stem,
	}))

	// The stem files exist and decode back to the same program.
	stems := adapter.NewLocalStemAdapter()

	files, err := stems.LoadBank(stem)
	require.NoError(t, err)
	require.Len(t, files, 1)

	info, err := stems.LoadIndexInfo(stem)
	require.NoError(t, err)
	require.Equal(t, 4, info.Count)

	path, err := stems.LoadWeightedPath(stem, 0)
	require.NoError(t, err)
	require.Len(t, path, 4)

	// And a repair run over the extracted stem completes end to end.
	fx.harness.goodLines = func(src string) int {
		if strings.Contains(src, "a = a - 4;") {
			return 1
		}

		return 2
	}

	err = w.Repair(context.Background(), RepairArgs{
		Stem:           stem,
		Seed:           42,
		Compiler:       "gcc",
		GoodCommand:    "./test-good.sh",
		BadCommand:     "./test-bad.sh",
		Generations:    6,
		Population:     16,
		MaxFitness:     2,
		MutationChance: 0.5,
		InsChance:      1,
		DelChance:      1,
		SwapChance:     1,
		BadFactor:      0,
	})
	require.NoError(t, err)

	// Baseline, best variant and the yaml summary are written out.
	baseline, err := fs.ReadFile(stem.Baseline())
	require.NoError(t, err)
	require.Contains(t, string(baseline), "a = a - 4;")

	best, err := fs.ReadFile(stem.Best())
	require.NoError(t, err)
	require.NotContains(t, string(best), "a = a - 4;")

	report, err := fs.ReadFile(stem.Report())
	require.NoError(t, err)
	require.Contains(t, string(report), "repair_found: true")
}

func TestRepairRejectsPathWithUnknownSids(t *testing.T) {
	dir := t.TempDir()
	stem := m.Stem(filepath.Join(dir, "prog"))

	stems := adapter.NewLocalStemAdapter()

	file := testCFile("prog.c")
	cast.Number(file, 1)

	require.NoError(t, stems.SaveBank(stem, map[string]*cast.File{"prog.c": file}))
	require.NoError(t, stems.SaveIndexInfo(stem, adapter.IndexInfo{Count: 4, Files: map[int]string{1: "prog.c", 2: "prog.c", 3: "prog.c", 4: "prog.c"}}))
	require.NoError(t, stems.SavePath(stem.PathFile(), []m.Sid{2, 99}))

	fs := newMemFS()
	fx := newEvalFixture(t, EvaluatorConfig{})
	w := newTestWorkflow(fs, fx, &fakeCFiles{file: testCFile})

	err := w.Repair(context.Background(), RepairArgs{
		Stem:        stem,
		Generations: 1,
		Population:  4,
		MaxFitness:  2,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "99")
}

func TestRepairRejectsMismatchedIndexCount(t *testing.T) {
	dir := t.TempDir()
	stem := m.Stem(filepath.Join(dir, "prog"))

	stems := adapter.NewLocalStemAdapter()

	file := testCFile("prog.c")
	cast.Number(file, 1)

	require.NoError(t, stems.SaveBank(stem, map[string]*cast.File{"prog.c": file}))
	require.NoError(t, stems.SaveIndexInfo(stem, adapter.IndexInfo{Count: 7}))
	require.NoError(t, stems.SavePath(stem.PathFile(), []m.Sid{2}))

	fs := newMemFS()
	fx := newEvalFixture(t, EvaluatorConfig{})
	w := newTestWorkflow(fs, fx, &fakeCFiles{file: testCFile})

	err := w.Repair(context.Background(), RepairArgs{
		Stem:        stem,
		Generations: 1,
		Population:  4,
		MaxFitness:  2,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "counts 7")
}
